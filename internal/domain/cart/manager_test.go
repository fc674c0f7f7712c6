package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaarline/storefront/internal/domain/product"
)

const session = "sess-1"

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pct(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newTestProduct(id string, stock int) product.Product {
	return product.Product{
		ID:    id,
		Slug:  id + "-slug",
		Name:  "Product " + id,
		Price: price("500.00"),
		Stock: stock,
		Images: []product.Image{
			{ID: "img-1", URL: "/uploads/" + id + ".jpg"},
		},
	}
}

// failingStore fails Save to verify fail-atomic behavior on storage errors.
type failingStore struct {
	*MemoryStore
	saveErr error
}

func (s *failingStore) Save(ctx context.Context, sessionID string, items []LineItem) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.MemoryStore.Save(ctx, sessionID, items)
}

func TestAdd_NewItem(t *testing.T) {
	m := NewManager(NewMemoryStore())

	items, err := m.Add(context.Background(), session, newTestProduct("p1", 10), 2, "", "")
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, price("500.00").Equal(items[0].UnitPrice))
	assert.Equal(t, "/uploads/p1.jpg", items[0].ImageURL)
}

func TestAdd_CapturesDiscountedUnitPrice(t *testing.T) {
	m := NewManager(NewMemoryStore())
	p := newTestProduct("p1", 10)
	p.Discount = pct("20")

	items, err := m.Add(context.Background(), session, p, 1, "", "")
	require.NoError(t, err)
	assert.True(t, price("400.00").Equal(items[0].UnitPrice))
}

func TestAdd_MergesIdenticalSelection(t *testing.T) {
	m := NewManager(NewMemoryStore())
	p := newTestProduct("p1", 10)
	p.Sizes = []product.Size{{Name: "M", Stock: 5}}
	p.Colors = []product.Color{{Name: "Red"}}

	_, err := m.Add(context.Background(), session, p, 2, "M", "Red")
	require.NoError(t, err)

	items, err := m.Add(context.Background(), session, p, 3, "M", "Red")
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAdd_DistinctVariantsNeverMerge(t *testing.T) {
	m := NewManager(NewMemoryStore())
	p := newTestProduct("p1", 10)
	p.Sizes = []product.Size{{Name: "M", Stock: 5}, {Name: "L", Stock: 5}}
	p.Colors = []product.Color{{Name: "Red"}, {Name: "Blue"}}

	_, err := m.Add(context.Background(), session, p, 1, "M", "Red")
	require.NoError(t, err)
	_, err = m.Add(context.Background(), session, p, 1, "M", "Blue")
	require.NoError(t, err)
	items, err := m.Add(context.Background(), session, p, 1, "L", "Red")
	require.NoError(t, err)

	assert.Len(t, items, 3)
	for _, li := range items {
		assert.Equal(t, 1, li.Quantity)
	}
}

func TestAdd_OutOfStock(t *testing.T) {
	m := NewManager(NewMemoryStore())

	_, err := m.Add(context.Background(), session, newTestProduct("p1", 0), 1, "", "")

	var oosErr *OutOfStockError
	require.ErrorAs(t, err, &oosErr)
	assert.Equal(t, "p1", oosErr.ProductID)
}

func TestAdd_QuantityExceedsStock(t *testing.T) {
	m := NewManager(NewMemoryStore())

	_, err := m.Add(context.Background(), session, newTestProduct("p1", 3), 4, "", "")

	var qesErr *QuantityExceedsStockError
	require.ErrorAs(t, err, &qesErr)
	assert.Equal(t, 4, qesErr.Requested)
	assert.Equal(t, 3, qesErr.Stock)
}

func TestAdd_MergedQuantityExceedsStock_CartUnchanged(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store)
	p := newTestProduct("p1", 5)

	_, err := m.Add(context.Background(), session, p, 3, "", "")
	require.NoError(t, err)

	before, err := store.Load(context.Background(), session)
	require.NoError(t, err)

	_, err = m.Add(context.Background(), session, p, 3, "", "")
	var qesErr *QuantityExceedsStockError
	require.ErrorAs(t, err, &qesErr)
	assert.Equal(t, 6, qesErr.Requested)

	after, err := store.Load(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAdd_MissingVariantSelection(t *testing.T) {
	m := NewManager(NewMemoryStore())
	p := newTestProduct("p1", 10)
	p.Sizes = []product.Size{{Name: "M", Stock: 5}}
	p.Colors = []product.Color{{Name: "Red"}}

	_, err := m.Add(context.Background(), session, p, 1, "", "Red")
	var mvErr *MissingVariantSelectionError
	require.ErrorAs(t, err, &mvErr)
	assert.Equal(t, "size", mvErr.Variant)

	_, err = m.Add(context.Background(), session, p, 1, "M", "")
	require.ErrorAs(t, err, &mvErr)
	assert.Equal(t, "color", mvErr.Variant)
}

func TestAdd_InvalidQuantity(t *testing.T) {
	m := NewManager(NewMemoryStore())

	_, err := m.Add(context.Background(), session, newTestProduct("p1", 10), 0, "", "")
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAdd_SaveFailureLeavesNothingPublished(t *testing.T) {
	store := &failingStore{
		MemoryStore: NewMemoryStore(),
		saveErr:     errors.New("disk full"),
	}
	m := NewManager(store)

	published := 0
	m.Subscribe(func(string, []LineItem) { published++ })

	_, err := m.Add(context.Background(), session, newTestProduct("p1", 10), 1, "", "")
	require.Error(t, err)
	assert.Zero(t, published)
}

func TestRemove_Idempotent(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store)

	_, err := m.Add(context.Background(), session, newTestProduct("p1", 10), 1, "", "")
	require.NoError(t, err)

	missing := Key{ProductID: "nope"}
	items, err := m.Remove(context.Background(), session, missing)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	key := Key{ProductID: "p1"}
	items, err = m.Remove(context.Background(), session, key)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Removing again is still fine.
	items, err = m.Remove(context.Background(), session, key)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestIncrement_CeilsAtKnownStock(t *testing.T) {
	m := NewManager(NewMemoryStore())
	p := newTestProduct("p1", 3)

	_, err := m.Add(context.Background(), session, p, 2, "", "")
	require.NoError(t, err)
	key := Key{ProductID: "p1"}

	items, err := m.Increment(context.Background(), session, key, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, items[0].Quantity)

	// Already at the ceiling: no change.
	items, err = m.Increment(context.Background(), session, key, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestIncrement_UnboundedWhenStockUnknown(t *testing.T) {
	m := NewManager(NewMemoryStore())

	_, err := m.Add(context.Background(), session, newTestProduct("p1", 2), 2, "", "")
	require.NoError(t, err)

	items, err := m.Increment(context.Background(), session, Key{ProductID: "p1"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestDecrement_FloorsAtOne(t *testing.T) {
	m := NewManager(NewMemoryStore())

	_, err := m.Add(context.Background(), session, newTestProduct("p1", 10), 2, "", "")
	require.NoError(t, err)
	key := Key{ProductID: "p1"}

	items, err := m.Decrement(context.Background(), session, key)
	require.NoError(t, err)
	assert.Equal(t, 1, items[0].Quantity)

	// Floors at 1, never removes.
	items, err = m.Decrement(context.Background(), session, key)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestSubscribers_ReceiveWholeListAfterMutation(t *testing.T) {
	m := NewManager(NewMemoryStore())

	var got []LineItem
	m.Subscribe(func(_ string, items []LineItem) { got = items })

	_, err := m.Add(context.Background(), session, newTestProduct("p1", 10), 2, "", "")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Quantity)
}

func TestClear(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store)

	_, err := m.Add(context.Background(), session, newTestProduct("p1", 10), 2, "", "")
	require.NoError(t, err)

	require.NoError(t, m.Clear(context.Background(), session))

	items, err := store.Load(context.Background(), session)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLineItemSubtotal(t *testing.T) {
	li := LineItem{Quantity: 3, UnitPrice: price("450.00")}
	assert.True(t, price("1350.00").Equal(li.Subtotal()))
}
