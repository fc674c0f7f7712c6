//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != seededProducts {
		t.Fatalf("expected %d products, got %d", seededProducts, len(products))
	}
}

func TestListProducts_DiscountedPrice(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var oxford *productResponse
	for i := range products {
		if products[i].Slug == "oxford-shirt" {
			oxford = &products[i]
			break
		}
	}

	if oxford == nil {
		t.Fatal("product oxford-shirt not found")
	}
	if oxford.Price != 65 {
		t.Errorf("price: got %v, want 65", oxford.Price)
	}
	if oxford.Discount == nil || *oxford.Discount != 20 {
		t.Errorf("discount: got %v, want 20", oxford.Discount)
	}
	if oxford.EffectivePrice != 52 {
		t.Errorf("effectivePrice: got %v, want 52", oxford.EffectivePrice)
	}
}

func TestGetProduct_Related(t *testing.T) {
	resp := doGet(t, "/api/products/linen-shirt")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	detail := decodeJSON[productDetailResponse](t, resp)
	if detail.Slug != "linen-shirt" {
		t.Errorf("slug: got %q, want %q", detail.Slug, "linen-shirt")
	}

	foundRelated := false
	for _, rp := range detail.RelatedProducts {
		if rp.Slug == detail.Slug {
			t.Error("related products include the product itself")
		}
		if rp.Slug == "oxford-shirt" {
			foundRelated = true
		}
	}
	if !foundRelated {
		t.Error("expected oxford-shirt among related products")
	}
}

func TestGetProduct_Variants(t *testing.T) {
	resp := doGet(t, "/api/products/denim-jacket")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	detail := decodeJSON[productDetailResponse](t, resp)
	if len(detail.Sizes) != 2 {
		t.Fatalf("expected 2 sizes, got %d", len(detail.Sizes))
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/no-such-product")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusNotFound {
		t.Errorf("error code: got %d, want 404", body.Code)
	}
}

func TestListCategoryProducts(t *testing.T) {
	resp := doGet(t, "/api/categories/clothing/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 4 {
		t.Fatalf("expected 4 clothing products, got %d", len(products))
	}
}
