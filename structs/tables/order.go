package tables

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	// Table Name and identifiers
	tableName   struct{}  `bun:"table:orders,alias:o"`
	Id          uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id" validate:"omitempty,uuid4"`
	OrderNumber string    `bun:"order_number,notnull,unique" json:"order_number"`

	// Customer Data (encrypted at rest)
	Name    string `bun:"name,notnull" json:"name"`
	Phone   string `bun:"phone,notnull" json:"phone"`
	City    string `bun:"city,notnull" json:"city"`
	Address string `bun:"address,notnull" json:"address"`

	// Optional link to the auth provider's user; nil for guest checkout.
	UserId *uuid.UUID `bun:"user_id,type:uuid,nullzero" json:"user_id,omitempty"`

	// Order Data
	TotalAmount uint64      `bun:"total_amount,notnull" json:"total_amount"` // in cents
	Status      OrderStatus `bun:"status,notnull,default:'pending'" json:"status"`
	CreatedAt   time.Time   `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time   `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt   *time.Time  `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`

	Lines []OrderLine `bun:"rel:has-many,join:id=order_id" json:"lines,omitempty"`
}

// OrderLine is the immutable snapshot of one purchased line. UnitPrice is
// the price at the moment the order was placed; later catalog changes never
// touch it.
type OrderLine struct {
	tableName struct{}  `bun:"table:order_lines,alias:ol"`
	Id        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	OrderId   uuid.UUID `bun:"order_id,notnull,type:uuid" json:"order_id"`
	ProductId uuid.UUID `bun:"product_id,notnull,type:uuid" json:"product_id"`
	VariantId uuid.UUID `bun:"variant_id,notnull,type:uuid" json:"variant_id"`

	Color    string `bun:"color,notnull" json:"color"`
	Size     string `bun:"size,notnull" json:"size"`
	Quantity int    `bun:"quantity,notnull" json:"quantity"`

	// Snapshot at time of order
	ProductName string `bun:"product_name,notnull" json:"product_name"`
	ProductCode string `bun:"product_code,notnull" json:"product_code"`
	UnitPrice   uint64 `bun:"unit_price,notnull" json:"unit_price"` // discount applied, in cents
	LineTotal   uint64 `bun:"line_total,notnull" json:"line_total"` // quantity * unit_price
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// next returns the sole forward step in the linear progression
// pending -> processing -> shipped -> delivered.
func (s OrderStatus) next() (OrderStatus, bool) {
	switch s {
	case OrderStatusPending:
		return OrderStatusProcessing, true
	case OrderStatusProcessing:
		return OrderStatusShipped, true
	case OrderStatusShipped:
		return OrderStatusDelivered, true
	default:
		return "", false
	}
}

// CanTransitionTo reports whether the status may move from s to next.
// Progression is strictly linear; cancellation is reachable from any
// non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if next == OrderStatusCancelled {
		return !s.Terminal()
	}
	step, ok := s.next()
	return ok && step == next
}
