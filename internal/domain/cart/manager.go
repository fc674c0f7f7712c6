package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/bazaarline/storefront/internal/domain/product"
)

// OutOfStockError indicates the product has no stock left at add time.
type OutOfStockError struct {
	ProductID string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %s is out of stock", e.ProductID)
}

// QuantityExceedsStockError indicates the requested quantity, alone or merged
// with the quantity already in the cart, exceeds the product's current stock.
type QuantityExceedsStockError struct {
	ProductID string
	Requested int
	Stock     int
}

func (e *QuantityExceedsStockError) Error() string {
	return fmt.Sprintf("cannot add %d of product %s: only %d available in stock", e.Requested, e.ProductID, e.Stock)
}

// MissingVariantSelectionError indicates the product defines sizes and/or
// colors but the corresponding selection was not supplied.
type MissingVariantSelectionError struct {
	ProductID string
	Variant   string // "size" or "color"
}

func (e *MissingVariantSelectionError) Error() string {
	return fmt.Sprintf("a %s selection is required for product %s", e.Variant, e.ProductID)
}

// ErrInvalidQuantity is returned for non-positive requested quantities.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Manager maintains per-session carts on top of an injected Store. Every
// mutation loads the session's items, applies the change to a fresh list,
// saves the whole list back, and only then notifies subscribers. Validation
// failures leave both the store and the published state untouched.
type Manager struct {
	store Store
	subs  []Subscriber
}

// NewManager creates a Manager backed by the given store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Subscribe registers a callback invoked with the full item list after each
// successful mutation. Not safe to call concurrently with mutations; register
// all subscribers during wiring.
func (m *Manager) Subscribe(fn Subscriber) {
	m.subs = append(m.subs, fn)
}

// Items returns the current line items for the session.
func (m *Manager) Items(ctx context.Context, sessionID string) ([]LineItem, error) {
	items, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return items, nil
}

// Add validates the selection against the product's current state and merges
// the requested quantity into the session cart.
//
// Failure modes, in check order: OutOfStockError when the product has zero
// stock, QuantityExceedsStockError when qty exceeds stock,
// MissingVariantSelectionError when a defined variant axis has no selection,
// and QuantityExceedsStockError again when the merged quantity of an existing
// matching line item would exceed stock. All failures are atomic: the stored
// cart is not modified.
func (m *Manager) Add(ctx context.Context, sessionID string, p product.Product, qty int, size, color string) ([]LineItem, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	if !p.InStock() {
		return nil, &OutOfStockError{ProductID: p.ID}
	}
	if qty > p.Stock {
		return nil, &QuantityExceedsStockError{ProductID: p.ID, Requested: qty, Stock: p.Stock}
	}
	if p.RequiresSize() && size == "" {
		return nil, &MissingVariantSelectionError{ProductID: p.ID, Variant: "size"}
	}
	if p.RequiresColor() && color == "" {
		return nil, &MissingVariantSelectionError{ProductID: p.ID, Variant: "color"}
	}

	items, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	item := LineItem{
		Key: Key{
			ProductID:     p.ID,
			SelectedSize:  size,
			SelectedColor: color,
		},
		Quantity:  qty,
		UnitPrice: p.EffectiveUnitPrice(),
		Name:      p.Name,
		Slug:      p.Slug,
		Discount:  p.Discount,
	}
	if len(p.Images) > 0 {
		item.ImageURL = p.Images[0].URL
	}

	merged, err := merge(items, item, p.Stock)
	if err != nil {
		return nil, err
	}

	return m.commit(ctx, sessionID, merged)
}

// merge folds item into items: an entry with the exact same Key absorbs the
// new quantity (capped at stock), anything else appends. The input slice is
// never mutated.
func merge(items []LineItem, item LineItem, stock int) ([]LineItem, error) {
	out := make([]LineItem, len(items))
	copy(out, items)

	for i := range out {
		if out[i].Key != item.Key {
			continue
		}
		newQty := out[i].Quantity + item.Quantity
		if newQty > stock {
			return nil, &QuantityExceedsStockError{
				ProductID: item.ProductID,
				Requested: newQty,
				Stock:     stock,
			}
		}
		out[i].Quantity = newQty
		return out, nil
	}

	return append(out, item), nil
}

// Remove deletes the line item with the given key. Removing a key that is not
// present is a no-op, not an error.
func (m *Manager) Remove(ctx context.Context, sessionID string, key Key) ([]LineItem, error) {
	items, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	out := make([]LineItem, 0, len(items))
	for _, li := range items {
		if li.Key == key {
			continue
		}
		out = append(out, li)
	}
	if len(out) == len(items) {
		return items, nil
	}

	return m.commit(ctx, sessionID, out)
}

// Increment raises the quantity of the line item with the given key by one,
// capped at stock when stock is known (> 0) and unbounded otherwise. Unknown
// keys are a no-op.
func (m *Manager) Increment(ctx context.Context, sessionID string, key Key, stock int) ([]LineItem, error) {
	return m.adjust(ctx, sessionID, key, func(qty int) int {
		if stock > 0 && qty >= stock {
			return qty
		}
		return qty + 1
	})
}

// Decrement lowers the quantity of the line item with the given key by one,
// flooring at 1. Removal is never implicit; use Remove. Unknown keys are a
// no-op.
func (m *Manager) Decrement(ctx context.Context, sessionID string, key Key) ([]LineItem, error) {
	return m.adjust(ctx, sessionID, key, func(qty int) int {
		if qty <= 1 {
			return 1
		}
		return qty - 1
	})
}

func (m *Manager) adjust(ctx context.Context, sessionID string, key Key, f func(int) int) ([]LineItem, error) {
	items, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	out := make([]LineItem, len(items))
	copy(out, items)

	changed := false
	for i := range out {
		if out[i].Key != key {
			continue
		}
		if next := f(out[i].Quantity); next != out[i].Quantity {
			out[i].Quantity = next
			changed = true
		}
		break
	}
	if !changed {
		return items, nil
	}

	return m.commit(ctx, sessionID, out)
}

// Clear empties the session cart. Checkout calls this after the order is
// persisted.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	_, err := m.commit(ctx, sessionID, []LineItem{})
	return err
}

// commit saves the whole list and publishes it to subscribers.
func (m *Manager) commit(ctx context.Context, sessionID string, items []LineItem) ([]LineItem, error) {
	if err := m.store.Save(ctx, sessionID, items); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	for _, fn := range m.subs {
		fn(sessionID, items)
	}
	return items, nil
}
