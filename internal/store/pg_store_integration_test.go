package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/store/db"
	"github.com/abgdnv/catalog/internal/store/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "CATALOG_SKIP_INTEGRATION_TESTS"

// PgStoreSuite runs the ProductStore contract against a real PostgreSQL.
type PgStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       ProductStore
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite starts PostgreSQL, applies the embedded migrations and creates the store.
func (s *PgStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	require.NoError(s.T(), migrations.Up(connStr, s.logger), "Failed to apply migrations")
	// a second run is a no-op
	require.NoError(s.T(), migrations.Up(connStr, slog.New(slog.NewTextHandler(io.Discard, nil))))

	s.store = NewPgStore(s.dbPool)
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *PgStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest prepares the database for each test by truncating the products table.
func (s *PgStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

// TestPgStoreIntegration runs the PgStore integration tests.
func TestPgStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PgStoreSuite))
}

func (s *PgStoreSuite) create(code string) *db.Product {
	s.T().Helper()
	p, err := s.store.Save(s.ctx, newProduct(code))
	require.NoError(s.T(), err, "create helper failed to save product")
	return p
}

func (s *PgStoreSuite) TestSaveAndFindByID() {
	// given
	desc := "Three-pack of cotton socks"
	toCreate := newProduct("SOCKS00001")
	toCreate.Description = &desc

	// when
	created, err := s.store.Save(s.ctx, toCreate)

	// then
	s.Require().NoError(err)
	s.Require().NotZero(created.ID)
	s.True(decimal.RequireFromString("75.00").Equal(created.PriceSource))
	s.True(decimal.RequireFromString("10.00").Equal(created.PriceTarget))
	s.Require().NotNil(created.Description)
	s.Equal(desc, *created.Description)
	s.Nil(created.DeletedAt)
	s.False(created.CreatedAt.IsZero())

	fetched, err := s.store.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.Code, fetched.Code)
	s.Equal(created.Name, fetched.Name)
	s.True(created.PriceSource.Equal(fetched.PriceSource))
	s.WithinDuration(created.CreatedAt, fetched.CreatedAt, time.Second)
}

func (s *PgStoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, 987654)
	s.ErrorIs(err, catalogerrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestFindAll() {
	// given
	a := s.create("AAAAAAAAAA")
	b := s.create("BBBBBBBBBB")
	c := s.create("CCCCCCCCCC")
	s.Require().NoError(s.store.SoftDelete(s.ctx, b.ID))

	// when
	products, err := s.store.FindAll(s.ctx)

	// then
	s.Require().NoError(err)
	s.Require().Len(products, 2)
	s.Equal(a.ID, products[0].ID)
	s.Equal(c.ID, products[1].ID)
}

func (s *PgStoreSuite) TestFindAll_Empty() {
	products, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.NotNil(products)
	s.Empty(products)
}

func (s *PgStoreSuite) TestUpdate() {
	// given
	created := s.create("AAAAAAAAAA")
	changed := created.WithInput(inputFor("ZZZZZZZZZZ"), decimal.RequireFromString("1.33"))

	// when
	updated, err := s.store.Save(s.ctx, &changed)

	// then
	s.Require().NoError(err)
	s.Equal(created.ID, updated.ID)
	s.Equal("ZZZZZZZZZZ", updated.Code)
	s.True(decimal.RequireFromString("1.33").Equal(updated.PriceTarget))
	s.False(updated.UpdatedAt.Before(created.UpdatedAt))
	s.WithinDuration(created.CreatedAt, updated.CreatedAt, time.Millisecond)
}

func (s *PgStoreSuite) TestUpdate_DeletedProduct() {
	// given
	created := s.create("AAAAAAAAAA")
	s.Require().NoError(s.store.SoftDelete(s.ctx, created.ID))

	// when
	_, err := s.store.Save(s.ctx, created)

	// then
	s.ErrorIs(err, catalogerrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestSave_ActiveCodeConflict() {
	// given
	s.create("AAAAAAAAAA")

	// when
	_, err := s.store.Save(s.ctx, newProduct("AAAAAAAAAA"))

	// then
	s.ErrorIs(err, catalogerrors.ErrConflict)
}

func (s *PgStoreSuite) TestSave_ReuseCodeOfDeletedProduct() {
	// given
	old := s.create("AAAAAAAAAA")
	s.Require().NoError(s.store.SoftDelete(s.ctx, old.ID))

	// when
	reused, err := s.store.Save(s.ctx, newProduct("AAAAAAAAAA"))

	// then
	s.Require().NoError(err)
	s.NotEqual(old.ID, reused.ID)
}

func (s *PgStoreSuite) TestSave_ConcurrentCreatesWithSameCode() {
	// given
	const workers = 5
	var wg sync.WaitGroup
	errs := make([]error, workers)

	// when
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.store.Save(s.ctx, newProduct("RACE000001"))
		}()
	}
	wg.Wait()

	// then
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, catalogerrors.ErrConflict)
	}
	s.Equal(1, succeeded)
}

func (s *PgStoreSuite) TestExistsByCode() {
	// given
	active := s.create("AAAAAAAAAA")
	deleted := s.create("BBBBBBBBBB")
	s.Require().NoError(s.store.SoftDelete(s.ctx, deleted.ID))
	other := active.ID + 100

	tests := []struct {
		name      string
		code      string
		excludeID *int64
		want      bool
	}{
		{name: "active code", code: "AAAAAAAAAA", want: true},
		{name: "active code excluding other id", code: "AAAAAAAAAA", excludeID: &other, want: true},
		{name: "active code excluding its owner", code: "AAAAAAAAAA", excludeID: &active.ID, want: false},
		{name: "deleted code", code: "BBBBBBBBBB", want: false},
		{name: "unknown code", code: "CCCCCCCCCC", want: false},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := s.store.ExistsByCode(s.ctx, tt.code, tt.excludeID)
			s.Require().NoError(err)
			s.Equal(tt.want, got)
		})
	}
}

func (s *PgStoreSuite) TestSoftDelete() {
	// given
	created := s.create("AAAAAAAAAA")

	// when
	err := s.store.SoftDelete(s.ctx, created.ID)

	// then
	s.Require().NoError(err)
	_, err = s.store.FindByID(s.ctx, created.ID)
	s.ErrorIs(err, catalogerrors.ErrProductNotFound)
	s.ErrorIs(s.store.SoftDelete(s.ctx, created.ID), catalogerrors.ErrProductNotFound, "second delete")

	var deletedAt *time.Time
	row := s.dbPool.QueryRow(s.ctx, "SELECT deleted_at FROM products WHERE id = $1", created.ID)
	s.Require().NoError(row.Scan(&deletedAt))
	s.NotNil(deletedAt, "row is kept and marked")
}

func (s *PgStoreSuite) TestSoftDelete_NotFound() {
	s.ErrorIs(s.store.SoftDelete(s.ctx, 987654), catalogerrors.ErrProductNotFound)
}
