package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazaarline/storefront/internal/domain/cart"
)

type cartItemRequest struct {
	ProductID     string `json:"productId"`
	Quantity      int    `json:"quantity"`
	SelectedSize  string `json:"selectedSize"`
	SelectedColor string `json:"selectedColor"`
}

type cartItemResponse struct {
	ProductID     string   `json:"productId"`
	SelectedSize  string   `json:"selectedSize,omitempty"`
	SelectedColor string   `json:"selectedColor,omitempty"`
	Quantity      int      `json:"quantity"`
	UnitPrice     float64  `json:"unitPrice"`
	Subtotal      float64  `json:"subtotal"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	Discount      *float64 `json:"discount,omitempty"`
}

type cartResponse struct {
	SessionID string             `json:"sessionId"`
	Items     []cartItemResponse `json:"items"`
	Total     float64            `json:"total"`
}

// session returns the cart session identifier from the request, issuing a new
// one when the client sent none. The identifier is always echoed back so the
// client can persist it.
func session(w http.ResponseWriter, r *http.Request) string {
	sid := r.Header.Get(sessionHeader)
	if sid == "" {
		sid = uuid.New().String()
	}
	w.Header().Set(sessionHeader, sid)
	return sid
}

func (h *Handler) toCartResponse(sessionID string, items []cart.LineItem) cartResponse {
	resp := cartResponse{
		SessionID: sessionID,
		Items:     make([]cartItemResponse, 0, len(items)),
	}
	total := decimal.Zero
	for _, li := range items {
		item := cartItemResponse{
			ProductID:     li.ProductID,
			SelectedSize:  li.SelectedSize,
			SelectedColor: li.SelectedColor,
			Quantity:      li.Quantity,
			UnitPrice:     li.UnitPrice.InexactFloat64(),
			Subtotal:      li.Subtotal().InexactFloat64(),
			Name:          li.Name,
			Slug:          li.Slug,
			ImageURL:      h.imageURL(li.ImageURL),
		}
		if li.Discount != nil {
			d := li.Discount.InexactFloat64()
			item.Discount = &d
		}
		total = total.Add(li.Subtotal())
		resp.Items = append(resp.Items, item)
	}
	resp.Total = total.InexactFloat64()
	return resp
}

// GetCart returns the current session cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := session(w, r)

	items, err := h.carts.Items(ctx, sid)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, h.toCartResponse(sid, items))
}

// AddCartItem validates the product selection and merges it into the session
// cart.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := session(w, r)

	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.products.GetByID(ctx, req.ProductID)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	items, err := h.carts.Add(ctx, sid, *p, req.Quantity, req.SelectedSize, req.SelectedColor)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, h.toCartResponse(sid, items))
}

func cartKey(req cartItemRequest) cart.Key {
	return cart.Key{
		ProductID:     req.ProductID,
		SelectedSize:  req.SelectedSize,
		SelectedColor: req.SelectedColor,
	}
}

// RemoveCartItem deletes a line item by its composite key. Removing an absent
// item succeeds.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := session(w, r)

	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.carts.Remove(ctx, sid, cartKey(req))
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, h.toCartResponse(sid, items))
}

// IncrementCartItem raises a line item's quantity by one, capped at the
// product's current stock.
func (h *Handler) IncrementCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := session(w, r)

	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	stock := 0
	if p, err := h.products.GetByID(ctx, req.ProductID); err == nil {
		stock = p.Stock
	}

	items, err := h.carts.Increment(ctx, sid, cartKey(req), stock)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, h.toCartResponse(sid, items))
}

// DecrementCartItem lowers a line item's quantity by one, never below one.
func (h *Handler) DecrementCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := session(w, r)

	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.carts.Decrement(ctx, sid, cartKey(req))
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, h.toCartResponse(sid, items))
}
