package tables

import (
	"time"

	"github.com/google/uuid"
)

// Category and SubCategory are read-mostly lookup data. Category has many
// SubCategory; SubCategory has many Product.

type Category struct {
	tableName struct{}  `bun:"table:categories,alias:c"`
	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	ImageURL  string    `bun:"image_url" json:"image_url,omitempty"`
	Position  int       `bun:"position,notnull,default:0" json:"position"`
	CreatedAt time.Time `bun:"created_at,notnull,default:now()" json:"created_at"`

	SubCategories []SubCategory `bun:"rel:has-many,join:id=category_id" json:"sub_categories,omitempty"`
}

type SubCategory struct {
	tableName  struct{}  `bun:"table:sub_categories,alias:sc"`
	ID         uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	CategoryID uuid.UUID `bun:"category_id,notnull,type:uuid" json:"category_id"`
	Name       string    `bun:"name,notnull" json:"name"`
	ImageURL   string    `bun:"image_url" json:"image_url,omitempty"`
	Position   int       `bun:"position,notnull,default:0" json:"position"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:now()" json:"created_at"`
}
