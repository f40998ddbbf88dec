package structs

import "github.com/google/uuid"

// VariantSnapshot is the availability view of a single variant at read time.
type VariantSnapshot struct {
	ID          uuid.UUID `json:"id"`
	Color       string    `json:"color"`
	Size        string    `json:"size"`
	Stock       int       `json:"stock"`
	IsAvailable bool      `json:"is_available"`
}

// ProductSnapshot is what the catalog reader returns per product: the current
// name, the price with the active discount applied, and every variant's
// availability. It is the single source the cart reconciler refreshes from.
type ProductSnapshot struct {
	ProductID  uuid.UUID         `json:"product_id"`
	Name       string            `json:"name"`
	Code       string            `json:"code"`
	FinalPrice uint64            `json:"final_price"` // in cents, clamped at zero
	Variants   []VariantSnapshot `json:"variants"`
}

// Variant returns the variant matching the trimmed color and size, or nil.
func (ps *ProductSnapshot) Variant(color, size string) *VariantSnapshot {
	for i := range ps.Variants {
		v := &ps.Variants[i]
		if v.Color == color && v.Size == size {
			return v
		}
	}
	return nil
}
