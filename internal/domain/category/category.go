// Package category defines the two-level catalog grouping (categories and
// subcategories) and the bottom-up cascade that removes a group together with
// everything that references it.
package category

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested category or subcategory does not
// exist.
var ErrNotFound = errors.New("category not found")

// Category is a top-level product grouping.
type Category struct {
	ID        string
	Slug      string
	Name      string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subcategory belongs to exactly one Category. Products reference it by slug.
type Subcategory struct {
	ID         string
	Slug       string
	Name       string
	ImageURL   string
	CategoryID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository defines CRUD operations for categories and subcategories.
// Deletion is not here: it goes through the Cascade service so dependent
// records never dangle.
type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error

	ListSubcategories(ctx context.Context, categoryID string) ([]Subcategory, error)
	GetSubcategory(ctx context.Context, id string) (*Subcategory, error)
	CreateSubcategory(ctx context.Context, sc *Subcategory) error
	UpdateSubcategory(ctx context.Context, sc *Subcategory) error
}
