// Command catalog-import bulk-loads supplier product feeds into the catalog.
// Feeds are gzip-compressed JSON-lines files (one product per line). Files
// are parsed concurrently; a shared bloom filter drops duplicate slugs across
// feeds so the first occurrence wins.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bazaarline/storefront/internal/domain/product"
	"github.com/bazaarline/storefront/internal/storage/postgres"
)

const (
	// Sized for the largest supplier feeds seen so far. A false positive
	// drops a product as a duplicate, so the rate is kept low.
	bloomCapacity = 10_000_000
	bloomFPR      = 0.0001

	progressEvery = 100_000
)

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz product feeds")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "list feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz feeds found in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewProductRepository(pool)
	imp := newImporter(repo)

	slog.Info("importing feeds", slog.Int("files", len(files)))

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(imp.importFile(ctx, f))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("import summary",
		slog.Uint64("created", imp.created.Load()),
		slog.Uint64("skipped", imp.skipped.Load()),
	)

	return nil
}

// importer shares the slug dedupe filter and counters across feed workers.
type importer struct {
	repo *postgres.ProductRepository

	mu   sync.Mutex
	seen *bloom.BloomFilter

	created atomic.Uint64
	skipped atomic.Uint64
}

func newImporter(repo *postgres.ProductRepository) *importer {
	return &importer{
		repo: repo,
		seen: bloom.NewWithEstimates(bloomCapacity, bloomFPR),
	}
}

// markSeen records the slug and reports whether it was already present.
func (imp *importer) markSeen(slug string) bool {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	return imp.seen.TestAndAddString(slug)
}

func (imp *importer) importFile(ctx context.Context, path string) func() error {
	return func() error {
		var count uint64

		err := streamGzLines(ctx, path, func(line []byte) error {
			count++
			if count%progressEvery == 0 {
				slog.Info("feed progress", slog.String("file", filepath.Base(path)), slog.Uint64("lines", count))
			}

			p, err := parseFeedProduct(line)
			if err != nil {
				return errors.Wrapf(err, "line %d", count)
			}
			if p.Slug == "" {
				imp.skipped.Add(1)
				return nil
			}

			if imp.markSeen(p.Slug) {
				imp.skipped.Add(1)
				return nil
			}

			if _, err := imp.repo.GetBySlug(ctx, p.Slug); err == nil {
				imp.skipped.Add(1)
				return nil
			} else if !errors.Is(err, product.ErrNotFound) {
				return errors.Wrapf(err, "check slug %s", p.Slug)
			}

			if err := imp.repo.Create(ctx, p); err != nil {
				return errors.Wrapf(err, "create product %s", p.Slug)
			}
			imp.created.Add(1)
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "import %s", filepath.Base(path))
		}

		slog.Info("feed complete", slog.String("file", filepath.Base(path)), slog.Uint64("lines", count))
		return nil
	}
}

// parseFeedProduct decodes one feed line. Unknown keys are skipped so feeds
// can carry supplier-specific extras.
func parseFeedProduct(line []byte) (*product.Product, error) {
	p := &product.Product{ID: uuid.New().String()}

	d := jx.DecodeBytes(line)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "slug":
			s, err := d.Str()
			p.Slug = s
			return err
		case "name":
			s, err := d.Str()
			p.Name = s
			return err
		case "description":
			s, err := d.Str()
			p.Description = s
			return err
		case "price":
			n, err := d.Num()
			if err != nil {
				return err
			}
			dec, err := decimal.NewFromString(n.String())
			p.Price = dec
			return err
		case "stock":
			n, err := d.Int()
			p.Stock = n
			return err
		case "discount":
			if d.Next() == jx.Null {
				return d.Null()
			}
			n, err := d.Num()
			if err != nil {
				return err
			}
			dec, err := decimal.NewFromString(n.String())
			if err != nil {
				return err
			}
			p.Discount = &dec
			return nil
		case "subcategory":
			s, err := d.Str()
			p.SubcategorySlug = s
			return err
		case "images":
			return d.Arr(func(d *jx.Decoder) error {
				s, err := d.Str()
				if err != nil {
					return err
				}
				p.Images = append(p.Images, product.Image{ID: uuid.New().String(), URL: s})
				return nil
			})
		case "colors":
			return d.Arr(func(d *jx.Decoder) error {
				c := product.Color{ID: uuid.New().String()}
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "name":
						s, err := d.Str()
						c.Name = s
						return err
					case "hex":
						s, err := d.Str()
						c.Hex = s
						return err
					default:
						return d.Skip()
					}
				}); err != nil {
					return err
				}
				p.Colors = append(p.Colors, c)
				return nil
			})
		case "sizes":
			return d.Arr(func(d *jx.Decoder) error {
				s := product.Size{ID: uuid.New().String()}
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "name":
						v, err := d.Str()
						s.Name = v
						return err
					case "stock":
						v, err := d.Int()
						s.Stock = v
						return err
					default:
						return d.Skip()
					}
				}); err != nil {
					return err
				}
				p.Sizes = append(p.Sizes, s)
				return nil
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode product")
	}

	return p, nil
}

// streamGzLines opens a gzip-compressed file and calls fn for each non-empty
// line.
func streamGzLines(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
