// Package product defines the catalog domain: products with variant options
// (colors, per-size stock), percentage discounts, and the repository surface
// the rest of the application reads the catalog through.
package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
//
// Discount, when non-nil, is a percentage in [0, 100] applied to the unit
// price at cart-add time. Stock is the product-level quantity available;
// sizes carry their own per-size stock on top of it.
type Product struct {
	ID              string
	Slug            string
	Name            string
	Description     string
	Price           decimal.Decimal
	Stock           int
	Discount        *decimal.Decimal
	SubcategorySlug string
	Images          []Image
	Colors          []Color
	Sizes           []Size
}

// Image holds a single product image URL.
type Image struct {
	ID  string
	URL string
}

// Color is a selectable color variant.
type Color struct {
	ID   string
	Name string
	Hex  string
}

// Size is a selectable size variant with its own stock count.
type Size struct {
	ID    string
	Name  string
	Stock int
}

var hundred = decimal.NewFromInt(100)

// EffectiveUnitPrice returns the price a unit sells for after the product
// discount: price - price*discount/100 when a discount is set, the plain
// price otherwise. Never negative.
func (p Product) EffectiveUnitPrice() decimal.Decimal {
	if p.Discount == nil {
		return p.Price
	}
	price := p.Price.Sub(p.Price.Mul(*p.Discount).Div(hundred))
	if price.IsNegative() {
		return decimal.Zero
	}
	return price.Round(2)
}

// RequiresSize reports whether a size selection is mandatory for this product.
func (p Product) RequiresSize() bool {
	return len(p.Sizes) > 0
}

// RequiresColor reports whether a color selection is mandatory.
func (p Product) RequiresColor() bool {
	return len(p.Colors) > 0
}

// AvailableSizes returns the sizes that still have stock.
func (p Product) AvailableSizes() []Size {
	out := make([]Size, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		if s.Stock > 0 {
			out = append(out, s)
		}
	}
	return out
}

// SizeByName returns the size variant with the given name, if any.
func (p Product) SizeByName(name string) (Size, bool) {
	for _, s := range p.Sizes {
		if s.Name == name {
			return s, true
		}
	}
	return Size{}, false
}

// InStock reports whether the product has any product-level stock left.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// Repository defines read and write operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	ListBySubcategory(ctx context.Context, subcategorySlug string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
