// Package handler exposes the storefront and admin HTTP API. Handlers decode
// requests, delegate to the domain services, and map domain errors to the
// shared {"code", "message"} payload.
package handler

import (
	"net/http"
	"strings"

	"github.com/bazaarline/storefront/internal/domain/cart"
	"github.com/bazaarline/storefront/internal/domain/category"
	"github.com/bazaarline/storefront/internal/domain/order"
	"github.com/bazaarline/storefront/internal/domain/product"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string
}

// Handler serves the public storefront routes and the API-key protected admin
// routes.
type Handler struct {
	products     product.Repository
	categories   category.Repository
	cascade      *category.Cascade
	orders       *order.Service
	carts        *cart.Manager
	imageBaseURL string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	products product.Repository,
	categories category.Repository,
	cascade *category.Cascade,
	orders *order.Service,
	carts *cart.Manager,
) *Handler {
	return &Handler{
		products:     products,
		categories:   categories,
		cascade:      cascade,
		orders:       orders,
		carts:        carts,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Register mounts all API routes on mux. Admin routes go through the given
// authentication middleware.
func (h *Handler) Register(mux *http.ServeMux, requireAPIKey func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{slug}", h.GetProduct)
	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("GET /api/categories/{slug}/products", h.ListCategoryProducts)

	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart/items", h.AddCartItem)
	mux.HandleFunc("DELETE /api/cart/items", h.RemoveCartItem)
	mux.HandleFunc("POST /api/cart/items/increment", h.IncrementCartItem)
	mux.HandleFunc("POST /api/cart/items/decrement", h.DecrementCartItem)

	mux.HandleFunc("POST /api/orders", h.Checkout)

	admin := http.NewServeMux()
	admin.HandleFunc("POST /api/admin/categories", h.CreateCategory)
	admin.HandleFunc("PUT /api/admin/categories/{id}", h.UpdateCategory)
	admin.HandleFunc("DELETE /api/admin/categories/{id}", h.DeleteCategory)
	admin.HandleFunc("POST /api/admin/subcategories", h.CreateSubcategory)
	admin.HandleFunc("PUT /api/admin/subcategories/{id}", h.UpdateSubcategory)
	admin.HandleFunc("DELETE /api/admin/subcategories/{id}", h.DeleteSubcategory)
	admin.HandleFunc("POST /api/admin/products", h.CreateProduct)
	admin.HandleFunc("PUT /api/admin/products/{id}", h.UpdateProduct)
	admin.HandleFunc("DELETE /api/admin/products/{id}", h.DeleteProduct)
	admin.HandleFunc("GET /api/admin/orders", h.ListOrders)
	admin.HandleFunc("GET /api/admin/orders/{id}", h.GetOrder)
	admin.HandleFunc("PUT /api/admin/orders/{id}/status", h.UpdateOrderStatus)
	admin.HandleFunc("PUT /api/admin/orders/{id}/shipping", h.UpdateOrderShipping)
	admin.HandleFunc("DELETE /api/admin/orders/{id}", h.DeleteOrder)

	mux.Handle("/api/admin/", requireAPIKey(admin))
}

// imageURL resolves a stored image path against the configured base URL.
// Absolute URLs pass through unchanged.
func (h *Handler) imageURL(path string) string {
	if path == "" || h.imageBaseURL == "" {
		return path
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(h.imageBaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// Session identifier header shared with the storefront client. The server
// issues a new identifier when the client sends none and echoes it back on
// every cart response.
const sessionHeader = "X-Cart-Session"
