package tables

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DiscountType selects how a product's discount_value is interpreted.
type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Product struct {
	tableName        struct{}     `bun:"table:products,alias:p"`
	ID               uuid.UUID    `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Name             string       `bun:"name,notnull" json:"name"`
	Code             string       `bun:"code,notnull" json:"code"` // human-readable product code shown on cart lines
	BasePrice        uint64       `bun:"base_price,notnull" json:"base_price"` // stored in cents
	DiscountType     DiscountType `bun:"discount_type,notnull,default:'none'" json:"discount_type"`
	DiscountValue    uint64       `bun:"discount_value" json:"discount_value,omitempty"` // percent for percentage, cents for fixed; meaningless when type is none
	Description      string       `bun:"description" json:"description,omitempty"`
	Material         string       `bun:"material" json:"material,omitempty"`
	CareInstructions string       `bun:"care_instructions" json:"care_instructions,omitempty"`
	SubCategoryID    uuid.UUID    `bun:"sub_category_id,type:uuid" json:"sub_category_id"`
	CreatedAt        time.Time    `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt        time.Time    `bun:"updated_at,notnull,default:now()" json:"updated_at"`
	DeletedAt        *time.Time   `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`

	ImageGroups []ProductImageGroup `bun:"rel:has-many,join:id=product_id" json:"image_groups,omitempty"`
	Variants    []ProductVariant    `bun:"rel:has-many,join:id=product_id" json:"variants,omitempty"`
}

// FinalPrice applies the product's discount rule to its base price:
//
//	none:       base_price
//	percentage: base_price - base_price * discount_value / 100
//	fixed:      base_price - discount_value
//
// The result is clamped at zero; a negative price is never returned.
func (p *Product) FinalPrice() uint64 {
	switch p.DiscountType {
	case DiscountPercentage:
		off := p.BasePrice * p.DiscountValue / 100
		if off >= p.BasePrice {
			return 0
		}
		return p.BasePrice - off
	case DiscountFixed:
		if p.DiscountValue >= p.BasePrice {
			return 0
		}
		return p.BasePrice - p.DiscountValue
	default:
		return p.BasePrice
	}
}

// ProductVariant is a purchasable (color, size) combination with its own
// stock count. Stock is the authoritative field; IsAvailable is derived from
// it and recomputed on every stock write. A row where the two disagree is a
// defect state that reconciliation treats as unavailable.
type ProductVariant struct {
	tableName   struct{}   `bun:"table:product_variants,alias:pv"`
	ID          uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	ProductID   uuid.UUID  `bun:"product_id,notnull,type:uuid" json:"product_id"`
	Color       string     `bun:"color,notnull" json:"color"`
	Size        string     `bun:"size,notnull" json:"size"`
	Stock       int        `bun:"stock,notnull" json:"stock"`
	IsAvailable bool       `bun:"is_available,notnull" json:"is_available"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:now()" json:"updated_at"`
	DeletedAt   *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
}

// Matches reports whether this variant is the one identified by the given
// trimmed color and size labels.
func (pv *ProductVariant) Matches(color, size string) bool {
	return strings.TrimSpace(pv.Color) == color && strings.TrimSpace(pv.Size) == size
}

// Purchasable reports whether the variant can satisfy a purchase of qty
// units right now. Both the stock count and the derived flag must agree;
// stale disagreement makes the variant unpurchasable.
func (pv *ProductVariant) Purchasable(qty int) bool {
	return pv.IsAvailable && pv.Stock >= qty && qty > 0
}

// ProductImageGroup is an ordered set of image URLs for one color of a
// product, with the swatch value shown in the color picker.
type ProductImageGroup struct {
	tableName struct{}  `bun:"table:product_image_groups,alias:pig"`
	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	ProductID uuid.UUID `bun:"product_id,notnull,type:uuid" json:"product_id"`
	Color     string    `bun:"color,notnull" json:"color"`
	Swatch    string    `bun:"swatch" json:"swatch,omitempty"` // hex value or CSS color
	ImageURLs []string  `bun:"image_urls,array" json:"image_urls"`
	Position  int       `bun:"position,notnull,default:0" json:"position"`
}
