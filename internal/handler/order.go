package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bazaarline/storefront/internal/domain/order"
)

type chargesRequest struct {
	Discount            float64 `json:"discount"`
	Tax                 float64 `json:"tax"`
	DeliveryCharge      float64 `json:"deliveryCharge"`
	ExtraDeliveryCharge float64 `json:"extraDeliveryCharge"`
	OtherCharges        float64 `json:"otherCharges"`
}

func (c chargesRequest) toDomain() order.Charges {
	return order.Charges{
		Discount:            decimal.NewFromFloat(c.Discount),
		Tax:                 decimal.NewFromFloat(c.Tax),
		DeliveryCharge:      decimal.NewFromFloat(c.DeliveryCharge),
		ExtraDeliveryCharge: decimal.NewFromFloat(c.ExtraDeliveryCharge),
		OtherCharges:        decimal.NewFromFloat(c.OtherCharges),
	}
}

type shippingRequest struct {
	Method       string            `json:"method"`
	Terms        string            `json:"terms"`
	Address      map[string]string `json:"address"`
	ShipmentDate *time.Time        `json:"shipmentDate"`
	DeliveryDate *time.Time        `json:"deliveryDate"`
}

func (s shippingRequest) toDomain() order.Shipping {
	return order.Shipping{
		Method:       s.Method,
		Terms:        s.Terms,
		Address:      s.Address,
		ShipmentDate: s.ShipmentDate,
		DeliveryDate: s.DeliveryDate,
	}
}

type checkoutRequest struct {
	Charges  chargesRequest  `json:"charges"`
	Shipping shippingRequest `json:"shipping"`
}

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type summaryResponse struct {
	Subtotal              float64 `json:"subtotal"`
	Discount              float64 `json:"discount"`
	SubtotalAfterDiscount float64 `json:"subtotalAfterDiscount"`
	Tax                   float64 `json:"tax"`
	DeliveryCharge        float64 `json:"deliveryCharge"`
	ExtraDeliveryCharge   float64 `json:"extraDeliveryCharge"`
	OtherCharges          float64 `json:"otherCharges"`
	Total                 float64 `json:"total"`
}

type orderResponse struct {
	ID        string              `json:"id"`
	Status    string              `json:"status"`
	Items     []orderItemResponse `json:"items"`
	Summary   summaryResponse     `json:"summary"`
	Shipping  shippingRequest     `json:"shipping"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	s := o.Summary()
	resp := orderResponse{
		ID:     o.ID,
		Status: string(o.Status),
		Items:  make([]orderItemResponse, 0, len(o.Items)),
		Summary: summaryResponse{
			Subtotal:              s.Subtotal.InexactFloat64(),
			Discount:              s.Discount.InexactFloat64(),
			SubtotalAfterDiscount: s.SubtotalAfterDiscount.InexactFloat64(),
			Tax:                   s.Tax.InexactFloat64(),
			DeliveryCharge:        s.DeliveryCharge.InexactFloat64(),
			ExtraDeliveryCharge:   s.ExtraDeliveryCharge.InexactFloat64(),
			OtherCharges:          s.OtherCharges.InexactFloat64(),
			Total:                 s.Total.InexactFloat64(),
		},
		Shipping: shippingRequest{
			Method:       o.Shipping.Method,
			Terms:        o.Shipping.Terms,
			Address:      o.Shipping.Address,
			ShipmentDate: o.Shipping.ShipmentDate,
			DeliveryDate: o.Shipping.DeliveryDate,
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price.InexactFloat64(),
		})
	}
	return resp
}

// Checkout creates a PENDING order from the session cart and clears the cart.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := session(w, r)

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.Checkout(ctx, order.CheckoutRequest{
		SessionID: sid,
		Charges:   req.Charges.toDomain(),
		Shipping:  req.Shipping.toDomain(),
	})
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, toOrderResponse(o))
}

// ListOrders returns every order with its computed summary.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orders, err := h.orders.List(ctx)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	respondJSON(ctx, w, http.StatusOK, resp)
}

// GetOrder returns a single order by ID.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	o, err := h.orders.Get(ctx, r.PathValue("id"))
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toOrderResponse(o))
}

// UpdateOrderStatus sets the order's status after validating the value and
// the transition policy.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.UpdateStatus(ctx, r.PathValue("id"), status)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toOrderResponse(o))
}

// UpdateOrderShipping replaces the order's shipping fields.
func (h *Handler) UpdateOrderShipping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req shippingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.UpdateShipping(ctx, r.PathValue("id"), req.toDomain())
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toOrderResponse(o))
}

// DeleteOrder removes an order.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.orders.Delete(ctx, r.PathValue("id")); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
