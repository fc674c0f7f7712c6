// Package cart implements the shopping cart: a per-session list of line items
// keyed by product and variant selection, with stock-capped merging and a
// pluggable durable store.
package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// Key is the composite identity of a line item. Two line items with the same
// product but different variant selections are distinct entries; an absent
// selection and a selection of a different value never match.
type Key struct {
	ProductID     string `json:"productId"`
	SelectedSize  string `json:"selectedSize"`
	SelectedColor string `json:"selectedColor"`
}

// LineItem is one entry in the cart: a product plus a specific variant
// selection and quantity. UnitPrice is captured at add time, after the
// product discount when one applies. The display fields are denormalized so
// the cart can render without re-fetching the catalog.
type LineItem struct {
	Key

	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	Name      string           `json:"name"`
	Slug      string           `json:"slug"`
	ImageURL  string           `json:"imageUrl"`
	Discount  *decimal.Decimal `json:"discount,omitempty"`
}

// Subtotal returns quantity * unit price for this line item.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Store is the durable per-session cart record. Save replaces the whole item
// list for the session; there is no incremental patch, so readers never
// observe a half-updated cart. Last write wins across devices.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]LineItem, error)
	Save(ctx context.Context, sessionID string, items []LineItem) error
}

// Subscriber is notified with the full item list after every successful
// mutation of a session's cart.
type Subscriber func(sessionID string, items []LineItem)
