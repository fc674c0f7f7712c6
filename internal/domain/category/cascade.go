package category

import (
	"context"
	"fmt"
)

// Stage identifies which step of the cascade a failure occurred in.
type Stage string

const (
	StageOrderItems  Stage = "order_items"
	StageImages      Stage = "images"
	StageVariants    Stage = "variants"
	StageProduct     Stage = "product"
	StageSubcategory Stage = "subcategory"
	StageCategory    Stage = "category"
	StageEnumerate   Stage = "enumerate"
)

// CascadeError reports the stage and entity at which a cascade delete failed.
// The transaction wrapping the cascade is rolled back, so a CascadeError
// never leaves partially deleted state behind.
type CascadeError struct {
	Stage    Stage
	EntityID string
	Err      error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade delete failed at stage %s (entity %s): %v", e.Stage, e.EntityID, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }

// Deleter is the fine-grained delete surface the cascade executes against.
// Implementations run all calls of one cascade inside a single transaction.
type Deleter interface {
	SubcategoryIDs(ctx context.Context, categoryID string) ([]string, error)
	ProductIDs(ctx context.Context, subcategoryID string) ([]string, error)

	DeleteOrderItemsByProduct(ctx context.Context, productID string) error
	DeleteImagesByProduct(ctx context.Context, productID string) error
	DeleteVariantsByProduct(ctx context.Context, productID string) error
	DeleteProduct(ctx context.Context, productID string) error
	DeleteSubcategory(ctx context.Context, subcategoryID string) error
	DeleteCategory(ctx context.Context, categoryID string) error
}

// TxRunner runs fn against a Deleter inside one atomic transaction: either
// every delete fn issued commits, or none of them do.
type TxRunner interface {
	RunCascade(ctx context.Context, fn func(Deleter) error) error
}

// Cascade removes categories and subcategories bottom-up: for each product,
// its order items, then its images and variant rows, then the product itself;
// then the emptied subcategory; then the category. Leaf records always go
// before their parents so foreign keys are never violated mid-sequence, and
// the whole run is a single transaction.
type Cascade struct {
	tx TxRunner
}

// NewCascade creates a Cascade backed by the given transaction runner.
func NewCascade(tx TxRunner) *Cascade {
	return &Cascade{tx: tx}
}

// DeleteCategory removes the category with all its subcategories, their
// products, and every record referencing those products.
func (c *Cascade) DeleteCategory(ctx context.Context, categoryID string) error {
	return c.tx.RunCascade(ctx, func(d Deleter) error {
		subIDs, err := d.SubcategoryIDs(ctx, categoryID)
		if err != nil {
			return &CascadeError{Stage: StageEnumerate, EntityID: categoryID, Err: err}
		}

		for _, subID := range subIDs {
			if err := deleteSubcategoryTree(ctx, d, subID); err != nil {
				return err
			}
		}

		if err := d.DeleteCategory(ctx, categoryID); err != nil {
			return &CascadeError{Stage: StageCategory, EntityID: categoryID, Err: err}
		}
		return nil
	})
}

// DeleteSubcategory removes a single subcategory subtree.
func (c *Cascade) DeleteSubcategory(ctx context.Context, subcategoryID string) error {
	return c.tx.RunCascade(ctx, func(d Deleter) error {
		return deleteSubcategoryTree(ctx, d, subcategoryID)
	})
}

func deleteSubcategoryTree(ctx context.Context, d Deleter, subID string) error {
	productIDs, err := d.ProductIDs(ctx, subID)
	if err != nil {
		return &CascadeError{Stage: StageEnumerate, EntityID: subID, Err: err}
	}

	for _, pid := range productIDs {
		if err := d.DeleteOrderItemsByProduct(ctx, pid); err != nil {
			return &CascadeError{Stage: StageOrderItems, EntityID: pid, Err: err}
		}
		if err := d.DeleteImagesByProduct(ctx, pid); err != nil {
			return &CascadeError{Stage: StageImages, EntityID: pid, Err: err}
		}
		if err := d.DeleteVariantsByProduct(ctx, pid); err != nil {
			return &CascadeError{Stage: StageVariants, EntityID: pid, Err: err}
		}
		if err := d.DeleteProduct(ctx, pid); err != nil {
			return &CascadeError{Stage: StageProduct, EntityID: pid, Err: err}
		}
	}

	if err := d.DeleteSubcategory(ctx, subID); err != nil {
		return &CascadeError{Stage: StageSubcategory, EntityID: subID, Err: err}
	}
	return nil
}
