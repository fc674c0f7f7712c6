package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarline/storefront/internal/domain/order"
)

const (
	orderColumns = `id, status,
		COALESCE(discount, 0), COALESCE(tax, 0), COALESCE(delivery_charge, 0),
		COALESCE(extra_delivery_charge, 0), COALESCE(other_charges, 0),
		shipping_method, shipping_terms, shipment_date, delivery_date, shipping_address,
		created_at, updated_at`

	insertOrderSQL = `INSERT INTO orders
		(id, status, discount, tax, delivery_charge, extra_delivery_charge, other_charges,
		 shipping_method, shipping_terms, shipment_date, delivery_date, shipping_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	insertOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)`

	getOrderSQL   = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	listOrderItemsSQL = `SELECT order_id, product_id, quantity, price
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`

	updateOrderShippingSQL = `UPDATE orders
		SET shipping_method = $2, shipping_terms = $3, shipment_date = $4, delivery_date = $5,
		    shipping_address = $6, updated_at = now()
		WHERE id = $1`

	deleteOrderItemsSQL = `DELETE FROM order_items WHERE order_id = $1`
	deleteOrderSQL      = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items live in the order_items table so the category cascade can remove
// them per product.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order and its line items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	addrJSON, err := json.Marshal(o.Shipping.Address)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertOrderSQL,
			o.ID, o.Status,
			o.Charges.Discount, o.Charges.Tax, o.Charges.DeliveryCharge,
			o.Charges.ExtraDeliveryCharge, o.Charges.OtherCharges,
			o.Shipping.Method, o.Shipping.Terms, o.Shipping.ShipmentDate, o.Shipping.DeliveryDate,
			addrJSON,
		)
		if err != nil {
			return err
		}

		for _, it := range o.Items {
			_, err := tx.Exec(ctx, insertOrderItemSQL,
				uuid.New().String(), o.ID, it.ProductID, it.Quantity, it.Price,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order with its line items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	if err := r.attachItems(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns all orders with their line items, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	out, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	refs := make([]*order.Order, len(out))
	for i := range out {
		refs[i] = &out[i]
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*order.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := r.pool.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing order items: %w", err)
	}

	type itemRow struct {
		order.Item
		orderID string
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (itemRow, error) {
		var ir itemRow
		err := row.Scan(&ir.orderID, &ir.ProductID, &ir.Quantity, &ir.Price)
		return ir, err
	})
	if err != nil {
		return fmt.Errorf("listing order items: %w", err)
	}

	for _, ir := range items {
		o := byID[ir.orderID]
		o.Items = append(o.Items, ir.Item)
	}
	return nil
}

// UpdateStatus replaces the order's status only.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, status)
	if err != nil {
		return fmt.Errorf("updating order %q status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// UpdateShipping replaces the order's shipping fields only.
func (r *OrderRepository) UpdateShipping(ctx context.Context, id string, shipping order.Shipping) error {
	addrJSON, err := json.Marshal(shipping.Address)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}

	tag, err := r.pool.Exec(ctx, updateOrderShippingSQL,
		id, shipping.Method, shipping.Terms, shipping.ShipmentDate, shipping.DeliveryDate, addrJSON,
	)
	if err != nil {
		return fmt.Errorf("updating order %q shipping: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Delete removes an order and its line items.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteOrderItemsSQL, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, deleteOrderSQL, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return order.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.ErrNotFound
		}
		return fmt.Errorf("deleting order %q: %w", id, err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o        order.Order
		status   string
		addrJSON []byte
	)
	err := row.Scan(
		&o.ID, &status,
		&o.Charges.Discount, &o.Charges.Tax, &o.Charges.DeliveryCharge,
		&o.Charges.ExtraDeliveryCharge, &o.Charges.OtherCharges,
		&o.Shipping.Method, &o.Shipping.Terms, &o.Shipping.ShipmentDate, &o.Shipping.DeliveryDate,
		&addrJSON,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}

	o.Status = order.Status(status)
	if len(addrJSON) > 0 {
		if err := json.Unmarshal(addrJSON, &o.Shipping.Address); err != nil {
			return o, fmt.Errorf("unmarshaling shipping address: %w", err)
		}
	}
	return o, nil
}
