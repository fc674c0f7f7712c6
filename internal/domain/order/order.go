// Package order defines customer orders: line items with prices frozen at
// checkout, order-level charges, the status lifecycle, and the pure summary
// calculator the admin back-office displays.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a completed checkout. Items and their prices are frozen at
// creation; afterwards only the status and shipping fields are mutated by
// admin action.
type Order struct {
	ID        string
	Status    Status
	Items     []Item
	Charges   Charges
	Shipping  Shipping
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is a single order line item. Price is the unit price at order time.
type Item struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Charges holds the order-level monetary adjustments. The zero value of every
// field means "absent" and the summary treats it as 0; missing charges are
// never an error.
type Charges struct {
	Discount            decimal.Decimal // absolute amount, not a percentage
	Tax                 decimal.Decimal // precomputed absolute amount
	DeliveryCharge      decimal.Decimal
	ExtraDeliveryCharge decimal.Decimal // e.g. cash-on-delivery surcharge
	OtherCharges        decimal.Decimal
}

// Shipping holds the fulfilment fields an operator maintains after checkout.
type Shipping struct {
	Method       string
	Terms        string
	Address      map[string]string
	ShipmentDate *time.Time
	DeliveryDate *time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	UpdateShipping(ctx context.Context, id string, shipping Shipping) error
	Delete(ctx context.Context, id string) error
}
