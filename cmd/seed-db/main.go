// Command seed-db loads a catalog seed file (categories, subcategories,
// products) and a default admin API key into the database. Existing records
// are upserted by slug so re-running is safe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bazaarline/storefront/internal/domain/auth"
	"github.com/bazaarline/storefront/internal/domain/category"
	"github.com/bazaarline/storefront/internal/domain/product"
	"github.com/bazaarline/storefront/internal/storage/postgres"
)

type seedFile struct {
	Categories []categoryJSON `json:"categories"`
}

type categoryJSON struct {
	Slug          string            `json:"slug"`
	Name          string            `json:"name"`
	ImageURL      string            `json:"imageUrl"`
	Subcategories []subcategoryJSON `json:"subcategories"`
}

type subcategoryJSON struct {
	Slug     string        `json:"slug"`
	Name     string        `json:"name"`
	ImageURL string        `json:"imageUrl"`
	Products []productJSON `json:"products"`
}

type productJSON struct {
	Slug        string           `json:"slug"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Stock       int              `json:"stock"`
	Discount    *decimal.Decimal `json:"discount"`
	Images      []string         `json:"images"`
	Colors      []struct {
		Name string `json:"name"`
		Hex  string `json:"hex"`
	} `json:"colors"`
	Sizes []struct {
		Name  string `json:"name"`
		Stock int    `json:"stock"`
	} `json:"sizes"`
}

func main() {
	var (
		databaseURL  string
		catalogFile  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog seed JSON file")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or BAZAAR_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or BAZAAR_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("BAZAAR_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or BAZAAR_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("BAZAAR_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	categories := postgres.NewCategoryRepository(pool)
	products := postgres.NewProductRepository(pool)

	if err := seedCatalog(ctx, categories, products, catalogFile); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedCatalog(ctx context.Context, categories *postgres.CategoryRepository, products *postgres.ProductRepository, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	for _, cj := range seed.Categories {
		c, err := upsertCategory(ctx, categories, cj)
		if err != nil {
			return errors.Wrapf(err, "category %s", cj.Slug)
		}
		slog.Info("upserted category", slog.String("slug", c.Slug))

		for _, scj := range cj.Subcategories {
			sc, err := upsertSubcategory(ctx, categories, c, scj)
			if err != nil {
				return errors.Wrapf(err, "subcategory %s", scj.Slug)
			}
			slog.Info("upserted subcategory", slog.String("slug", sc.Slug))

			for _, pj := range scj.Products {
				if err := upsertProduct(ctx, products, sc.Slug, pj); err != nil {
					return errors.Wrapf(err, "product %s", pj.Slug)
				}
				slog.Info("upserted product", slog.String("slug", pj.Slug))
			}
		}
	}

	return nil
}

func upsertCategory(ctx context.Context, repo *postgres.CategoryRepository, cj categoryJSON) (*category.Category, error) {
	c, err := repo.GetCategoryBySlug(ctx, cj.Slug)
	switch {
	case err == nil:
		c.Name = cj.Name
		c.ImageURL = cj.ImageURL
		return c, repo.UpdateCategory(ctx, c)
	case errors.Is(err, category.ErrNotFound):
		c = &category.Category{
			ID:       uuid.New().String(),
			Slug:     cj.Slug,
			Name:     cj.Name,
			ImageURL: cj.ImageURL,
		}
		return c, repo.CreateCategory(ctx, c)
	default:
		return nil, err
	}
}

func upsertSubcategory(ctx context.Context, repo *postgres.CategoryRepository, parent *category.Category, scj subcategoryJSON) (*category.Subcategory, error) {
	subs, err := repo.ListSubcategories(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].Slug == scj.Slug {
			sc := subs[i]
			sc.Name = scj.Name
			sc.ImageURL = scj.ImageURL
			return &sc, repo.UpdateSubcategory(ctx, &sc)
		}
	}

	sc := &category.Subcategory{
		ID:         uuid.New().String(),
		Slug:       scj.Slug,
		Name:       scj.Name,
		ImageURL:   scj.ImageURL,
		CategoryID: parent.ID,
	}
	return sc, repo.CreateSubcategory(ctx, sc)
}

func upsertProduct(ctx context.Context, repo *postgres.ProductRepository, subcategorySlug string, pj productJSON) error {
	p := &product.Product{
		Slug:            pj.Slug,
		Name:            pj.Name,
		Description:     pj.Description,
		Price:           pj.Price,
		Stock:           pj.Stock,
		Discount:        pj.Discount,
		SubcategorySlug: subcategorySlug,
	}
	for _, url := range pj.Images {
		p.Images = append(p.Images, product.Image{ID: uuid.New().String(), URL: url})
	}
	for _, c := range pj.Colors {
		p.Colors = append(p.Colors, product.Color{ID: uuid.New().String(), Name: c.Name, Hex: c.Hex})
	}
	for _, s := range pj.Sizes {
		p.Sizes = append(p.Sizes, product.Size{ID: uuid.New().String(), Name: s.Name, Stock: s.Stock})
	}

	existing, err := repo.GetBySlug(ctx, pj.Slug)
	switch {
	case err == nil:
		p.ID = existing.ID
		return repo.Update(ctx, p)
	case errors.Is(err, product.ErrNotFound):
		p.ID = uuid.New().String()
		return repo.Create(ctx, p)
	default:
		return err
	}
}

const upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, scopes)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET key_hash = EXCLUDED.key_hash, name = EXCLUDED.name, scopes = EXCLUDED.scopes`

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding default admin API key")

	keyHash := auth.HashKey(apiKey, []byte(pepper))

	if _, err := pool.Exec(ctx, upsertAPIKeySQL, "default", keyHash, "Default admin key", []string{"admin"}); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"), slog.String("name", "Default admin key"))

	return nil
}
