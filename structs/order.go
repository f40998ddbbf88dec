package structs

import "github.com/google/uuid"

// OrderItemRequest is one requested line of a checkout submission.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Color     string    `json:"color" validate:"required"`
	Size      string    `json:"size" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// OrderRequest is the checkout form payload. The total is the client's view
// of the cart total; the server recomputes it from live pricing and rejects
// the request when the two disagree.
type OrderRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Phone   string `json:"phone" validate:"required,min=8,max=20"`
	City    string `json:"city" validate:"required,min=2,max=100"`
	Address string `json:"address" validate:"required,min=5,max=500"`

	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Total uint64             `json:"total"` // in cents
}
