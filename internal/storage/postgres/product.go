package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bazaarline/storefront/internal/domain/product"
)

const (
	productColumns = `id, slug, name, description, price, stock, discount, subcategory_slug`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	getProductBySlugSQL = `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	listBySubcategorySQL = `SELECT ` + productColumns + ` FROM products WHERE subcategory_slug = $1 ORDER BY created_at DESC`

	insertProductSQL = `INSERT INTO products (id, slug, name, description, price, stock, discount, subcategory_slug)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	updateProductSQL = `UPDATE products
		SET slug = $2, name = $3, description = $4, price = $5, stock = $6, discount = $7, subcategory_slug = $8, updated_at = now()
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	listImagesSQL = `SELECT id, product_id, url FROM product_images WHERE product_id = ANY($1) ORDER BY id`
	listColorsSQL = `SELECT id, product_id, name, hex FROM product_colors WHERE product_id = ANY($1) ORDER BY id`
	listSizesSQL  = `SELECT id, product_id, name, stock FROM product_sizes WHERE product_id = ANY($1) ORDER BY id`

	deleteImagesSQL = `DELETE FROM product_images WHERE product_id = $1`
	deleteColorsSQL = `DELETE FROM product_colors WHERE product_id = $1`
	deleteSizesSQL  = `DELETE FROM product_sizes WHERE product_id = $1`

	insertImageSQL = `INSERT INTO product_images (id, product_id, url) VALUES ($1, $2, $3)`
	insertColorSQL = `INSERT INTO product_colors (id, product_id, name, hex) VALUES ($1, $2, $3, $4)`
	insertSizeSQL  = `INSERT INTO product_sizes (id, product_id, name, stock) VALUES ($1, $2, $3, $4)`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
// Images, colors and sizes live in side tables and are attached in a second
// batched query.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the whole catalog, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	return r.queryProducts(ctx, listProductsSQL)
}

// ListBySubcategory returns the products belonging to the subcategory slug.
func (r *ProductRepository) ListBySubcategory(ctx context.Context, subcategorySlug string) ([]product.Product, error) {
	return r.queryProducts(ctx, listBySubcategorySQL, subcategorySlug)
}

// GetBySlug returns a single product by its slug, variants included.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return r.getOne(ctx, getProductBySlugSQL, slug)
}

// GetByID returns a single product by its identifier, variants included.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return r.getOne(ctx, getProductByIDSQL, id)
}

func (r *ProductRepository) getOne(ctx context.Context, sql, arg string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", arg, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", arg, err)
	}

	if err := r.attachVariants(ctx, []*product.Product{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, sql string, args ...any) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	refs := make([]*product.Product, len(products))
	for i := range products {
		refs[i] = &products[i]
	}
	if err := r.attachVariants(ctx, refs); err != nil {
		return nil, err
	}
	return products, nil
}

// attachVariants loads images, colors and sizes for all given products with
// one batched query per side table.
func (r *ProductRepository) attachVariants(ctx context.Context, products []*product.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	byID := make(map[string]*product.Product, len(products))
	for i, p := range products {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	imgRows, err := r.pool.Query(ctx, listImagesSQL, ids)
	if err != nil {
		return fmt.Errorf("listing product images: %w", err)
	}
	type imageRow struct {
		product.Image
		productID string
	}
	images, err := pgx.CollectRows(imgRows, func(row pgx.CollectableRow) (imageRow, error) {
		var ir imageRow
		err := row.Scan(&ir.ID, &ir.productID, &ir.URL)
		return ir, err
	})
	if err != nil {
		return fmt.Errorf("listing product images: %w", err)
	}
	for _, ir := range images {
		p := byID[ir.productID]
		p.Images = append(p.Images, ir.Image)
	}

	colorRows, err := r.pool.Query(ctx, listColorsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing product colors: %w", err)
	}
	type colorRow struct {
		product.Color
		productID string
	}
	colors, err := pgx.CollectRows(colorRows, func(row pgx.CollectableRow) (colorRow, error) {
		var cr colorRow
		err := row.Scan(&cr.ID, &cr.productID, &cr.Name, &cr.Hex)
		return cr, err
	})
	if err != nil {
		return fmt.Errorf("listing product colors: %w", err)
	}
	for _, cr := range colors {
		p := byID[cr.productID]
		p.Colors = append(p.Colors, cr.Color)
	}

	sizeRows, err := r.pool.Query(ctx, listSizesSQL, ids)
	if err != nil {
		return fmt.Errorf("listing product sizes: %w", err)
	}
	type sizeRow struct {
		product.Size
		productID string
	}
	sizes, err := pgx.CollectRows(sizeRows, func(row pgx.CollectableRow) (sizeRow, error) {
		var sr sizeRow
		err := row.Scan(&sr.ID, &sr.productID, &sr.Name, &sr.Stock)
		return sr, err
	})
	if err != nil {
		return fmt.Errorf("listing product sizes: %w", err)
	}
	for _, sr := range sizes {
		p := byID[sr.productID]
		p.Sizes = append(p.Sizes, sr.Size)
	}

	return nil
}

// Create inserts the product together with its images, colors and sizes in
// one transaction.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertProductSQL,
			p.ID, p.Slug, p.Name, p.Description, p.Price, p.Stock, p.Discount, p.SubcategorySlug,
		)
		if err != nil {
			return err
		}
		return insertVariants(ctx, tx, p)
	})
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.Slug, err)
	}
	return nil
}

// Update rewrites the product row and replaces its variant rows.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateProductSQL,
			p.ID, p.Slug, p.Name, p.Description, p.Price, p.Stock, p.Discount, p.SubcategorySlug,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return product.ErrNotFound
		}

		for _, sql := range []string{deleteImagesSQL, deleteColorsSQL, deleteSizesSQL} {
			if _, err := tx.Exec(ctx, sql, p.ID); err != nil {
				return err
			}
		}
		return insertVariants(ctx, tx, p)
	})
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return product.ErrNotFound
		}
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	return nil
}

func insertVariants(ctx context.Context, tx pgx.Tx, p *product.Product) error {
	for _, img := range p.Images {
		if _, err := tx.Exec(ctx, insertImageSQL, img.ID, p.ID, img.URL); err != nil {
			return err
		}
	}
	for _, c := range p.Colors {
		if _, err := tx.Exec(ctx, insertColorSQL, c.ID, p.ID, c.Name, c.Hex); err != nil {
			return err
		}
	}
	for _, s := range p.Sizes {
		if _, err := tx.Exec(ctx, insertSizeSQL, s.ID, p.ID, s.Name, s.Stock); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a single product and its variant rows. Order items referring
// to the product are left alone; use the category cascade for full removal.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, sql := range []string{deleteImagesSQL, deleteColorsSQL, deleteSizesSQL} {
			if _, err := tx.Exec(ctx, sql, id); err != nil {
				return err
			}
		}
		tag, err := tx.Exec(ctx, deleteProductSQL, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return product.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return product.ErrNotFound
		}
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p        product.Product
		price    decimal.Decimal
		discount *decimal.Decimal
	)
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &price, &p.Stock, &discount, &p.SubcategorySlug,
	)
	p.Price = price
	p.Discount = discount
	return p, err
}
