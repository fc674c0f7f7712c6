package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/bazaarline/storefront/internal/domain/cart"
	"github.com/bazaarline/storefront/internal/domain/product"
)

// Sentinel errors for order operations.
var (
	ErrNotFound  = errors.New("order not found")
	ErrEmptyCart = errors.New("cart is empty")
)

// ProductNotFoundError indicates a cart line item references a product that
// no longer exists in the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return "product " + e.ProductID + " not found"
}

// CheckoutRequest holds the input for turning a session cart into an order.
type CheckoutRequest struct {
	SessionID string
	Charges   Charges
	Shipping  Shipping
}

// Service encapsulates checkout and order administration logic.
type Service struct {
	products product.Repository
	orders   Repository
	carts    *cart.Manager
	policy   TransitionPolicy
}

// NewService creates an order Service. A nil policy defaults to
// AllowAnyTransition.
func NewService(products product.Repository, orders Repository, carts *cart.Manager, policy TransitionPolicy) *Service {
	if policy == nil {
		policy = AllowAnyTransition{}
	}
	return &Service{
		products: products,
		orders:   orders,
		carts:    carts,
		policy:   policy,
	}
}

// Checkout creates a PENDING order from the session's cart, freezing each
// line item's captured unit price into the order, then clears the cart. The
// cart is only cleared after the order is durably persisted.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	items, err := s.carts.Items(ctx, req.SessionID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	orderItems := make([]Item, len(items))
	for i, li := range items {
		if _, err := s.products.GetByID(ctx, li.ProductID); err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, &ProductNotFoundError{ProductID: li.ProductID}
			}
			return nil, errors.Wrap(err, "get product")
		}
		orderItems[i] = Item{
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
			Price:     li.UnitPrice,
		}
	}

	o := &Order{
		ID:       uuid.New().String(),
		Status:   StatusPending,
		Items:    orderItems,
		Charges:  req.Charges,
		Shipping: req.Shipping,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if err := s.carts.Clear(ctx, req.SessionID); err != nil {
		// The order exists; a stale cart is recoverable by the session owner.
		return o, errors.Wrap(err, "clear cart after checkout")
	}

	return o, nil
}

// UpdateStatus replaces the order's status, leaving every other field
// untouched. Setting the current status again is a no-op that still succeeds.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Allow(o.Status, status); err != nil {
		return nil, err
	}

	if o.Status != status {
		if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
			return nil, errors.Wrap(err, "update status")
		}
		o.Status = status
	}

	return o, nil
}

// UpdateShipping replaces the order's shipping fields.
func (s *Service) UpdateShipping(ctx context.Context, id string, shipping Shipping) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdateShipping(ctx, id, shipping); err != nil {
		return nil, errors.Wrap(err, "update shipping")
	}
	o.Shipping = shipping

	return o, nil
}

// Get returns a single order by ID.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns all orders.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}
