package store

import (
	"context"
	"errors"
	"fmt"

	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/store/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation      = "23505"
	activeCodeConstraint = "products_code_active_key"
)

var _ ProductStore = (*PgStore)(nil)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
	q  *db.Queries
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
		q:  db.New(dbp),
	}
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no active product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*db.Product, error) {
	product, err := p.q.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalogerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

// FindAll retrieves all active products.
// It returns a slice of products, which is empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context) ([]db.Product, error) {
	products, err := p.q.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	if products == nil {
		products = []db.Product{}
	}
	return products, nil
}

// ExistsByCode checks whether an active product other than excludeID uses code.
func (p *PgStore) ExistsByCode(ctx context.Context, code string, excludeID *int64) (bool, error) {
	var (
		exists bool
		err    error
	)
	if excludeID == nil {
		exists, err = p.q.ExistsByCode(ctx, code)
	} else {
		exists, err = p.q.ExistsByCodeExcludingID(ctx, db.ExistsByCodeExcludingIDParams{Code: code, ID: *excludeID})
	}
	if err != nil {
		return false, fmt.Errorf("failed to check product code: %w", err)
	}
	return exists, nil
}

// Save creates the product when it has no ID yet and updates it otherwise.
func (p *PgStore) Save(ctx context.Context, product *db.Product) (*db.Product, error) {
	if product.ID == 0 {
		created, err := p.q.Create(ctx, db.CreateParams{
			Code:        product.Code,
			Name:        product.Name,
			PriceSource: product.PriceSource,
			PriceTarget: product.PriceTarget,
			Description: product.Description,
			IsAvailable: product.IsAvailable,
		})
		if err != nil {
			return nil, mapWriteError("failed to create product", err)
		}
		return &created, nil
	}

	updated, err := p.q.Update(ctx, db.UpdateParams{
		ID:          product.ID,
		Code:        product.Code,
		Name:        product.Name,
		PriceSource: product.PriceSource,
		PriceTarget: product.PriceTarget,
		Description: product.Description,
		IsAvailable: product.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalogerrors.ErrProductNotFound
		}
		return nil, mapWriteError("failed to update product", err)
	}
	return &updated, nil
}

// SoftDelete sets deleted_at on an active product.
// Returns ErrProductNotFound if no active product exists with the given ID.
func (p *PgStore) SoftDelete(ctx context.Context, id int64) error {
	count, err := p.q.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if count == 0 {
		return catalogerrors.ErrProductNotFound
	}
	return nil
}

// mapWriteError turns a violation of the active-code index into ErrConflict.
func mapWriteError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == activeCodeConstraint {
		return catalogerrors.ErrConflict
	}
	return fmt.Errorf("%s: %w", msg, err)
}
