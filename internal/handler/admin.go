package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazaarline/storefront/internal/domain/category"
	"github.com/bazaarline/storefront/internal/domain/product"
)

type categoryRequest struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// CreateCategory adds a top-level category.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Slug == "" || req.Name == "" {
		respondError(ctx, w, http.StatusBadRequest, "slug and name are required")
		return
	}

	c := &category.Category{
		ID:       uuid.New().String(),
		Slug:     req.Slug,
		Name:     req.Name,
		ImageURL: req.ImageURL,
	}
	if err := h.categories.CreateCategory(ctx, c); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, categoryResponse{
		ID:            c.ID,
		Slug:          c.Slug,
		Name:          c.Name,
		ImageURL:      h.imageURL(c.ImageURL),
		Subcategories: []subcategoryResponse{},
	})
}

// UpdateCategory replaces a category's mutable fields.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	c := &category.Category{
		ID:       r.PathValue("id"),
		Slug:     req.Slug,
		Name:     req.Name,
		ImageURL: req.ImageURL,
	}
	if err := h.categories.UpdateCategory(ctx, c); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCategory removes the category and everything under it, bottom-up, in
// one transaction.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.cascade.DeleteCategory(ctx, r.PathValue("id")); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type subcategoryRequest struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	ImageURL   string `json:"imageUrl"`
	CategoryID string `json:"categoryId"`
}

// CreateSubcategory adds a subcategory under an existing category.
func (h *Handler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req subcategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Slug == "" || req.Name == "" || req.CategoryID == "" {
		respondError(ctx, w, http.StatusBadRequest, "slug, name and categoryId are required")
		return
	}

	if _, err := h.categories.GetCategory(ctx, req.CategoryID); err != nil {
		respondDomainError(ctx, w, err)
		return
	}

	sc := &category.Subcategory{
		ID:         uuid.New().String(),
		Slug:       req.Slug,
		Name:       req.Name,
		ImageURL:   req.ImageURL,
		CategoryID: req.CategoryID,
	}
	if err := h.categories.CreateSubcategory(ctx, sc); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, subcategoryResponse{
		ID:         sc.ID,
		Slug:       sc.Slug,
		Name:       sc.Name,
		ImageURL:   h.imageURL(sc.ImageURL),
		CategoryID: sc.CategoryID,
	})
}

// UpdateSubcategory replaces a subcategory's mutable fields.
func (h *Handler) UpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req subcategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	sc := &category.Subcategory{
		ID:         r.PathValue("id"),
		Slug:       req.Slug,
		Name:       req.Name,
		ImageURL:   req.ImageURL,
		CategoryID: req.CategoryID,
	}
	if err := h.categories.UpdateSubcategory(ctx, sc); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSubcategory removes the subcategory subtree bottom-up in one
// transaction.
func (h *Handler) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.cascade.DeleteSubcategory(ctx, r.PathValue("id")); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type productRequest struct {
	Slug            string   `json:"slug"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	Stock           int      `json:"stock"`
	Discount        *float64 `json:"discount"`
	SubcategorySlug string   `json:"subcategorySlug"`
	Images          []struct {
		URL string `json:"url"`
	} `json:"images"`
	Colors []struct {
		Name string `json:"name"`
		Hex  string `json:"hex"`
	} `json:"colors"`
	Sizes []struct {
		Name  string `json:"name"`
		Stock int    `json:"stock"`
	} `json:"sizes"`
}

func (req productRequest) toDomain(id string) *product.Product {
	p := &product.Product{
		ID:              id,
		Slug:            req.Slug,
		Name:            req.Name,
		Description:     req.Description,
		Price:           decimal.NewFromFloat(req.Price),
		Stock:           req.Stock,
		SubcategorySlug: req.SubcategorySlug,
		Images:          make([]product.Image, 0, len(req.Images)),
		Colors:          make([]product.Color, 0, len(req.Colors)),
		Sizes:           make([]product.Size, 0, len(req.Sizes)),
	}
	if req.Discount != nil {
		d := decimal.NewFromFloat(*req.Discount)
		p.Discount = &d
	}
	for _, img := range req.Images {
		p.Images = append(p.Images, product.Image{ID: uuid.New().String(), URL: img.URL})
	}
	for _, c := range req.Colors {
		p.Colors = append(p.Colors, product.Color{ID: uuid.New().String(), Name: c.Name, Hex: c.Hex})
	}
	for _, s := range req.Sizes {
		p.Sizes = append(p.Sizes, product.Size{ID: uuid.New().String(), Name: s.Name, Stock: s.Stock})
	}
	return p
}

func validateProductRequest(req productRequest) string {
	switch {
	case req.Slug == "" || req.Name == "":
		return "slug and name are required"
	case req.Price < 0:
		return "price must not be negative"
	case req.Stock < 0:
		return "stock must not be negative"
	case req.Discount != nil && (*req.Discount < 0 || *req.Discount > 100):
		return "discount must be a percentage between 0 and 100"
	default:
		return ""
	}
}

// CreateProduct adds a product with its images and variant options.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateProductRequest(req); msg != "" {
		respondError(ctx, w, http.StatusBadRequest, msg)
		return
	}

	p := req.toDomain(uuid.New().String())
	if err := h.products.Create(ctx, p); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, h.toProductResponse(*p))
}

// UpdateProduct replaces a product and its images and variant options.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateProductRequest(req); msg != "" {
		respondError(ctx, w, http.StatusBadRequest, msg)
		return
	}

	p := req.toDomain(r.PathValue("id"))
	if err := h.products.Update(ctx, p); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, h.toProductResponse(*p))
}

// DeleteProduct removes a single product.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.products.Delete(ctx, r.PathValue("id")); err != nil {
		respondDomainError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
