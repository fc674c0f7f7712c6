package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarline/storefront/internal/domain/category"
)

const (
	categoryColumns    = `id, slug, name, image_url, created_at, updated_at`
	subcategoryColumns = `id, slug, name, image_url, category_id, created_at, updated_at`

	listCategoriesSQL    = `SELECT ` + categoryColumns + ` FROM categories ORDER BY name`
	getCategorySQL       = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	getCategoryBySlugSQL = `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`
	insertCategorySQL    = `INSERT INTO categories (id, slug, name, image_url) VALUES ($1, $2, $3, $4)`
	updateCategorySQL    = `UPDATE categories SET slug = $2, name = $3, image_url = $4, updated_at = now() WHERE id = $1`
	deleteCategoryRowSQL = `DELETE FROM categories WHERE id = $1`

	listSubcategoriesSQL    = `SELECT ` + subcategoryColumns + ` FROM subcategories WHERE category_id = $1 ORDER BY name`
	getSubcategorySQL       = `SELECT ` + subcategoryColumns + ` FROM subcategories WHERE id = $1`
	insertSubcategorySQL    = `INSERT INTO subcategories (id, slug, name, image_url, category_id) VALUES ($1, $2, $3, $4, $5)`
	updateSubcategorySQL    = `UPDATE subcategories SET slug = $2, name = $3, image_url = $4, category_id = $5, updated_at = now() WHERE id = $1`
	deleteSubcategoryRowSQL = `DELETE FROM subcategories WHERE id = $1`

	subcategoryIDsSQL = `SELECT id FROM subcategories WHERE category_id = $1 ORDER BY id`

	productIDsBySubcategorySQL = `SELECT p.id FROM products p
		JOIN subcategories sc ON sc.slug = p.subcategory_slug
		WHERE sc.id = $1 ORDER BY p.id`

	deleteOrderItemsByProductSQL = `DELETE FROM order_items WHERE product_id = $1`
	deleteImagesByProductSQL     = `DELETE FROM product_images WHERE product_id = $1`
	deleteColorsByProductSQL     = `DELETE FROM product_colors WHERE product_id = $1`
	deleteSizesByProductSQL      = `DELETE FROM product_sizes WHERE product_id = $1`
	deleteProductRowSQL          = `DELETE FROM products WHERE id = $1`
)

var _ category.Repository = (*CategoryRepository)(nil)
var _ category.TxRunner = (*CategoryRepository)(nil)

// CategoryRepository implements category.Repository and the transactional
// cascade runner backed by PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// ListCategories returns all categories ordered by name.
func (r *CategoryRepository) ListCategories(ctx context.Context) ([]category.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// GetCategory returns a single category by its identifier.
func (r *CategoryRepository) GetCategory(ctx context.Context, id string) (*category.Category, error) {
	return r.getCategory(ctx, getCategorySQL, id)
}

// GetCategoryBySlug returns a single category by its slug.
func (r *CategoryRepository) GetCategoryBySlug(ctx context.Context, slug string) (*category.Category, error) {
	return r.getCategory(ctx, getCategoryBySlugSQL, slug)
}

func (r *CategoryRepository) getCategory(ctx context.Context, sql, arg string) (*category.Category, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting category %q: %w", arg, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.ErrNotFound
		}
		return nil, fmt.Errorf("getting category %q: %w", arg, err)
	}
	return &c, nil
}

// CreateCategory inserts a new category.
func (r *CategoryRepository) CreateCategory(ctx context.Context, c *category.Category) error {
	_, err := r.pool.Exec(ctx, insertCategorySQL, c.ID, c.Slug, c.Name, c.ImageURL)
	if err != nil {
		return fmt.Errorf("creating category %q: %w", c.Slug, err)
	}
	return nil
}

// UpdateCategory rewrites an existing category.
func (r *CategoryRepository) UpdateCategory(ctx context.Context, c *category.Category) error {
	tag, err := r.pool.Exec(ctx, updateCategorySQL, c.ID, c.Slug, c.Name, c.ImageURL)
	if err != nil {
		return fmt.Errorf("updating category %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return category.ErrNotFound
	}
	return nil
}

// ListSubcategories returns the subcategories of one category.
func (r *CategoryRepository) ListSubcategories(ctx context.Context, categoryID string) ([]category.Subcategory, error) {
	rows, err := r.pool.Query(ctx, listSubcategoriesSQL, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing subcategories: %w", err)
	}
	return pgx.CollectRows(rows, scanSubcategory)
}

// GetSubcategory returns a single subcategory by its identifier.
func (r *CategoryRepository) GetSubcategory(ctx context.Context, id string) (*category.Subcategory, error) {
	rows, err := r.pool.Query(ctx, getSubcategorySQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting subcategory %q: %w", id, err)
	}

	sc, err := pgx.CollectExactlyOneRow(rows, scanSubcategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.ErrNotFound
		}
		return nil, fmt.Errorf("getting subcategory %q: %w", id, err)
	}
	return &sc, nil
}

// CreateSubcategory inserts a new subcategory.
func (r *CategoryRepository) CreateSubcategory(ctx context.Context, sc *category.Subcategory) error {
	_, err := r.pool.Exec(ctx, insertSubcategorySQL, sc.ID, sc.Slug, sc.Name, sc.ImageURL, sc.CategoryID)
	if err != nil {
		return fmt.Errorf("creating subcategory %q: %w", sc.Slug, err)
	}
	return nil
}

// UpdateSubcategory rewrites an existing subcategory.
func (r *CategoryRepository) UpdateSubcategory(ctx context.Context, sc *category.Subcategory) error {
	tag, err := r.pool.Exec(ctx, updateSubcategorySQL, sc.ID, sc.Slug, sc.Name, sc.ImageURL, sc.CategoryID)
	if err != nil {
		return fmt.Errorf("updating subcategory %q: %w", sc.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return category.ErrNotFound
	}
	return nil
}

// RunCascade executes fn against a transaction-scoped Deleter. The
// transaction commits only when fn returns nil, so a failure at any cascade
// stage rolls the whole delete back.
func (r *CategoryRepository) RunCascade(ctx context.Context, fn func(category.Deleter) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&txDeleter{tx: tx})
	})
}

// txDeleter implements category.Deleter inside one pgx transaction.
type txDeleter struct {
	tx pgx.Tx
}

var _ category.Deleter = (*txDeleter)(nil)

func (d *txDeleter) SubcategoryIDs(ctx context.Context, categoryID string) ([]string, error) {
	rows, err := d.tx.Query(ctx, subcategoryIDsSQL, categoryID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (d *txDeleter) ProductIDs(ctx context.Context, subcategoryID string) ([]string, error) {
	rows, err := d.tx.Query(ctx, productIDsBySubcategorySQL, subcategoryID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (d *txDeleter) DeleteOrderItemsByProduct(ctx context.Context, productID string) error {
	_, err := d.tx.Exec(ctx, deleteOrderItemsByProductSQL, productID)
	return err
}

func (d *txDeleter) DeleteImagesByProduct(ctx context.Context, productID string) error {
	_, err := d.tx.Exec(ctx, deleteImagesByProductSQL, productID)
	return err
}

func (d *txDeleter) DeleteVariantsByProduct(ctx context.Context, productID string) error {
	if _, err := d.tx.Exec(ctx, deleteColorsByProductSQL, productID); err != nil {
		return err
	}
	_, err := d.tx.Exec(ctx, deleteSizesByProductSQL, productID)
	return err
}

func (d *txDeleter) DeleteProduct(ctx context.Context, productID string) error {
	_, err := d.tx.Exec(ctx, deleteProductRowSQL, productID)
	return err
}

func (d *txDeleter) DeleteSubcategory(ctx context.Context, subcategoryID string) error {
	_, err := d.tx.Exec(ctx, deleteSubcategoryRowSQL, subcategoryID)
	return err
}

func (d *txDeleter) DeleteCategory(ctx context.Context, categoryID string) error {
	_, err := d.tx.Exec(ctx, deleteCategoryRowSQL, categoryID)
	return err
}

func scanCategory(row pgx.CollectableRow) (category.Category, error) {
	var c category.Category
	err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanSubcategory(row pgx.CollectableRow) (category.Subcategory, error) {
	var sc category.Subcategory
	err := row.Scan(&sc.ID, &sc.Slug, &sc.Name, &sc.ImageURL, &sc.CategoryID, &sc.CreatedAt, &sc.UpdatedAt)
	return sc, err
}
