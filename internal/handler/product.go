package handler

import (
	"net/http"

	"github.com/bazaarline/storefront/internal/domain/product"
)

type productResponse struct {
	ID              string          `json:"id"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           float64         `json:"price"`
	EffectivePrice  float64         `json:"effectivePrice"`
	Stock           int             `json:"stock"`
	Discount        *float64        `json:"discount,omitempty"`
	SubcategorySlug string          `json:"subcategorySlug"`
	Images          []imageResponse `json:"images"`
	Colors          []colorResponse `json:"colors"`
	Sizes           []sizeResponse  `json:"sizes"`
}

type imageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type colorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

type sizeResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

type productDetailResponse struct {
	productResponse

	RelatedProducts []productResponse `json:"relatedProducts"`
}

func (h *Handler) toProductResponse(p product.Product) productResponse {
	resp := productResponse{
		ID:              p.ID,
		Slug:            p.Slug,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price.InexactFloat64(),
		EffectivePrice:  p.EffectiveUnitPrice().InexactFloat64(),
		Stock:           p.Stock,
		SubcategorySlug: p.SubcategorySlug,
		Images:          make([]imageResponse, 0, len(p.Images)),
		Colors:          make([]colorResponse, 0, len(p.Colors)),
		Sizes:           make([]sizeResponse, 0, len(p.Sizes)),
	}
	if p.Discount != nil {
		d := p.Discount.InexactFloat64()
		resp.Discount = &d
	}
	for _, img := range p.Images {
		resp.Images = append(resp.Images, imageResponse{ID: img.ID, URL: h.imageURL(img.URL)})
	}
	for _, c := range p.Colors {
		resp.Colors = append(resp.Colors, colorResponse{ID: c.ID, Name: c.Name, Hex: c.Hex})
	}
	for _, s := range p.Sizes {
		resp.Sizes = append(resp.Sizes, sizeResponse{ID: s.ID, Name: s.Name, Stock: s.Stock})
	}
	return resp
}

// ListProducts returns the whole catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.products.List(ctx)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, h.toProductResponse(p))
	}
	respondJSON(ctx, w, http.StatusOK, resp)
}

// GetProduct returns a single product by slug together with other products
// from the same subcategory.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := r.PathValue("slug")

	p, err := h.products.GetBySlug(ctx, slug)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	related, err := h.products.ListBySubcategory(ctx, p.SubcategorySlug)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	resp := productDetailResponse{
		productResponse: h.toProductResponse(*p),
		RelatedProducts: make([]productResponse, 0, len(related)),
	}
	for _, rp := range related {
		if rp.ID == p.ID {
			continue
		}
		resp.RelatedProducts = append(resp.RelatedProducts, h.toProductResponse(rp))
	}
	respondJSON(ctx, w, http.StatusOK, resp)
}

type categoryResponse struct {
	ID            string                `json:"id"`
	Slug          string                `json:"slug"`
	Name          string                `json:"name"`
	ImageURL      string                `json:"imageUrl,omitempty"`
	Subcategories []subcategoryResponse `json:"subcategories"`
}

type subcategoryResponse struct {
	ID         string `json:"id"`
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	ImageURL   string `json:"imageUrl,omitempty"`
	CategoryID string `json:"categoryId"`
}

// ListCategories returns all categories with their subcategories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cats, err := h.categories.ListCategories(ctx)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	resp := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		subs, err := h.categories.ListSubcategories(ctx, c.ID)
		if err != nil {
			respondDomainError(ctx, w, err)
			return
		}
		cr := categoryResponse{
			ID:            c.ID,
			Slug:          c.Slug,
			Name:          c.Name,
			ImageURL:      h.imageURL(c.ImageURL),
			Subcategories: make([]subcategoryResponse, 0, len(subs)),
		}
		for _, sc := range subs {
			cr.Subcategories = append(cr.Subcategories, subcategoryResponse{
				ID:         sc.ID,
				Slug:       sc.Slug,
				Name:       sc.Name,
				ImageURL:   h.imageURL(sc.ImageURL),
				CategoryID: sc.CategoryID,
			})
		}
		resp = append(resp, cr)
	}
	respondJSON(ctx, w, http.StatusOK, resp)
}

// ListCategoryProducts returns every product under the category's
// subcategories.
func (h *Handler) ListCategoryProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := r.PathValue("slug")

	c, err := h.categories.GetCategoryBySlug(ctx, slug)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	subs, err := h.categories.ListSubcategories(ctx, c.ID)
	if err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	resp := make([]productResponse, 0)
	for _, sc := range subs {
		products, err := h.products.ListBySubcategory(ctx, sc.Slug)
		if err != nil {
			respondDomainError(ctx, w, err)
			return
		}
		for _, p := range products {
			resp = append(resp, h.toProductResponse(p))
		}
	}
	respondJSON(ctx, w, http.StatusOK, resp)
}
