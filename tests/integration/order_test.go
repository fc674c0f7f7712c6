//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestCheckout_EmptyCart(t *testing.T) {
	resp := do(t, http.MethodPost, "/api/orders", checkoutRequest{},
		sessionHeaders("it-order-empty"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCheckout_CreatesOrderAndClearsCart(t *testing.T) {
	headers := sessionHeaders("it-order-checkout")
	pid := productIDBySlug(t, "linen-shirt")

	resp := do(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: pid, Quantity: 2}, headers)
	resp.Body.Close()

	var req checkoutRequest
	req.Charges.Tax = 5
	req.Charges.DeliveryCharge = 10

	resp = do(t, http.MethodPost, "/api/orders", req, headers)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if !uuidPattern.MatchString(order.ID) {
		t.Errorf("order ID %q is not a UUID", order.ID)
	}
	if order.Status != "PENDING" {
		t.Errorf("status: got %q, want PENDING", order.Status)
	}
	if order.Summary.Subtotal != 100 {
		t.Errorf("subtotal: got %v, want 100", order.Summary.Subtotal)
	}
	if order.Summary.Total != 115 {
		t.Errorf("total: got %v, want 115", order.Summary.Total)
	}

	// The cart is cleared once the order is persisted.
	cartResp := do(t, http.MethodGet, "/api/cart", nil, headers)
	defer cartResp.Body.Close()
	cart := decodeJSON[cartResponse](t, cartResp)
	if len(cart.Items) != 0 {
		t.Errorf("expected cleared cart, got %d items", len(cart.Items))
	}
}

func TestCheckout_DiscountLargerThanSubtotal(t *testing.T) {
	headers := sessionHeaders("it-order-negative")
	pid := productIDBySlug(t, "wool-cap")

	resp := do(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: pid, Quantity: 1}, headers)
	resp.Body.Close()

	var req checkoutRequest
	req.Charges.Discount = 100

	resp = do(t, http.MethodPost, "/api/orders", req, headers)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	// The discount is not clamped: a 100 discount on a 25 cart goes negative.
	order := decodeJSON[orderResponse](t, resp)
	if order.Summary.SubtotalAfterDiscount != -75 {
		t.Errorf("subtotalAfterDiscount: got %v, want -75", order.Summary.SubtotalAfterDiscount)
	}
	if order.Summary.Total != -75 {
		t.Errorf("total: got %v, want -75", order.Summary.Total)
	}
}

func TestAdminOrders_NoAuth(t *testing.T) {
	resp := do(t, http.MethodGet, "/api/admin/orders", nil, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdminOrders_InvalidKey(t *testing.T) {
	resp := do(t, http.MethodGet, "/api/admin/orders", nil,
		map[string]string{"X-API-Key": "wrong-key"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdminOrders_StatusLifecycle(t *testing.T) {
	headers := sessionHeaders("it-order-status")
	pid := productIDBySlug(t, "linen-shirt")

	resp := do(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: pid, Quantity: 1}, headers)
	resp.Body.Close()

	resp = do(t, http.MethodPost, "/api/orders", checkoutRequest{}, headers)
	order := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	resp = do(t, http.MethodPut, "/api/admin/orders/"+order.ID+"/status",
		map[string]string{"status": "PAID"}, adminHeaders())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	updated := decodeJSON[orderResponse](t, resp)
	if updated.Status != "PAID" {
		t.Errorf("status: got %q, want PAID", updated.Status)
	}

	badResp := do(t, http.MethodPut, "/api/admin/orders/"+order.ID+"/status",
		map[string]string{"status": "TELEPORTED"}, adminHeaders())
	defer badResp.Body.Close()
	if badResp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown status: expected 400, got %d", badResp.StatusCode)
	}
}

func TestAdminOrders_Delete(t *testing.T) {
	headers := sessionHeaders("it-order-delete")
	pid := productIDBySlug(t, "wool-cap")

	resp := do(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: pid, Quantity: 1}, headers)
	resp.Body.Close()

	resp = do(t, http.MethodPost, "/api/orders", checkoutRequest{}, headers)
	order := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	resp = do(t, http.MethodDelete, "/api/admin/orders/"+order.ID, nil, adminHeaders())
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	getResp := do(t, http.MethodGet, "/api/admin/orders/"+order.ID, nil, adminHeaders())
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", getResp.StatusCode)
	}
}
