//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"
)

func TestCart_SessionIssued(t *testing.T) {
	resp := doGet(t, "/api/cart")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Cart-Session") == "" {
		t.Error("X-Cart-Session header not issued")
	}
}

func TestCart_AddAndMerge(t *testing.T) {
	headers := sessionHeaders("it-cart-merge")

	resp := do(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: productIDBySlug(t, "linen-shirt"), Quantity: 2}, headers)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cart := decodeJSON[cartResponse](t, resp)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart after first add: %+v", cart)
	}
	if cart.Total != 100 {
		t.Errorf("total: got %v, want 100", cart.Total)
	}

	// Same product with no variant selection merges into the existing line.
	resp2 := do(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: productIDBySlug(t, "linen-shirt"), Quantity: 1}, headers)
	defer resp2.Body.Close()

	cart = decodeJSON[cartResponse](t, resp2)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("expected merged line with quantity 3, got %+v", cart.Items)
	}
}

func TestCart_AddOutOfStock(t *testing.T) {
	resp := do(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: productIDBySlug(t, "parka-jacket"), Quantity: 1},
		sessionHeaders("it-cart-oos"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if !strings.Contains(body.Message, "out of stock") {
		t.Errorf("message %q does not name the stock constraint", body.Message)
	}
}

func TestCart_AddMissingSize(t *testing.T) {
	resp := do(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: productIDBySlug(t, "denim-jacket"), Quantity: 1},
		sessionHeaders("it-cart-size"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if !strings.Contains(body.Message, "size") {
		t.Errorf("message %q does not name the missing variant", body.Message)
	}
}

func TestCart_QuantityExceedsStock(t *testing.T) {
	resp := do(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: productIDBySlug(t, "denim-jacket"), Quantity: 5, SelectedSize: "M", SelectedColor: "Blue"},
		sessionHeaders("it-cart-stock"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCart_IncrementDecrementRemove(t *testing.T) {
	headers := sessionHeaders("it-cart-adjust")
	pid := productIDBySlug(t, "wool-cap")

	resp := do(t, http.MethodPost, "/api/cart/items",
		cartItemRequest{ProductID: pid, Quantity: 1}, headers)
	resp.Body.Close()

	resp = do(t, http.MethodPost, "/api/cart/items/increment",
		cartItemRequest{ProductID: pid}, headers)
	cart := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2 after increment, got %d", cart.Items[0].Quantity)
	}

	// Decrement twice: 2 -> 1, then floors at 1.
	for range 2 {
		resp = do(t, http.MethodPost, "/api/cart/items/decrement",
			cartItemRequest{ProductID: pid}, headers)
		cart = decodeJSON[cartResponse](t, resp)
		resp.Body.Close()
	}
	if cart.Items[0].Quantity != 1 {
		t.Fatalf("expected quantity floored at 1, got %d", cart.Items[0].Quantity)
	}

	resp = do(t, http.MethodDelete, "/api/cart/items",
		cartItemRequest{ProductID: pid}, headers)
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart after remove, got %+v", cart.Items)
	}
}

// productIDBySlug resolves a seeded product's ID through the public API.
func productIDBySlug(t *testing.T, slug string) string {
	t.Helper()

	resp := doGet(t, "/api/products/"+slug)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get product %s: status %d", slug, resp.StatusCode)
	}
	detail := decodeJSON[productDetailResponse](t, resp)
	return detail.ID
}
