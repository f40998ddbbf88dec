package structs

import (
	"strings"

	"github.com/google/uuid"
)

// CartLine is one entry in a client's cart. It is not server-authoritative:
// the cached UnitPrice and Name are allowed to go stale and are refreshed by
// reconciliation before checkout.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Color     string    `json:"color" validate:"required"`
	Size      string    `json:"size" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`

	// Cached display fields, refreshed on reconcile.
	Name      string `json:"name"`
	UnitPrice uint64 `json:"unit_price"` // in cents, discount applied
}

// VariantKey identifies a purchasable variant: a (product, color, size)
// combination. Color and size are compared after trimming.
type VariantKey struct {
	ProductID uuid.UUID `json:"product_id"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
}

// Key returns the merge key for this line. Two lines with the same key are
// the same variant and must collapse into a single line.
func (cl *CartLine) Key() VariantKey {
	return VariantKey{
		ProductID: cl.ProductID,
		Color:     strings.TrimSpace(cl.Color),
		Size:      strings.TrimSpace(cl.Size),
	}
}

// ReconcileResult is the output of a cart reconciliation pass: the corrected
// lines plus the keys of every line that was pruned, for user notification.
type ReconcileResult struct {
	Lines   []CartLine   `json:"lines"`
	Removed []VariantKey `json:"removed"`
	Changed bool         `json:"changed"`
}
