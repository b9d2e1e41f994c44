package store

import (
	"context"
	"testing"

	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/store/db"
	"github.com/abgdnv/catalog/internal/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(code string) *db.Product {
	return &db.Product{
		Code:        code,
		Name:        "Product " + code,
		PriceSource: decimal.RequireFromString("75.00"),
		PriceTarget: decimal.RequireFromString("10.00"),
		IsAvailable: true,
	}
}

func TestInMemoryStore_SaveAndFind(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewInMemoryStore()

	// when
	first, err := s.Save(ctx, newProduct("AAAAAAAAAA"))
	require.NoError(t, err)
	second, err := s.Save(ctx, newProduct("BBBBBBBBBB"))
	require.NoError(t, err)

	// then
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())

	found, err := s.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "AAAAAAAAAA", found.Code)

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
}

func TestInMemoryStore_FindAllEmpty(t *testing.T) {
	// when
	all, err := NewInMemoryStore().FindAll(context.Background())

	// then
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestInMemoryStore_Update(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewInMemoryStore()
	created, err := s.Save(ctx, newProduct("AAAAAAAAAA"))
	require.NoError(t, err)

	// when
	changed := *created
	changed.Name = "Renamed"
	updated, err := s.Save(ctx, &changed)

	// then
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestInMemoryStore_UpdateMissing(t *testing.T) {
	// given
	p := newProduct("AAAAAAAAAA")
	p.ID = 99

	// when
	_, err := NewInMemoryStore().Save(context.Background(), p)

	// then
	assert.ErrorIs(t, err, catalogerrors.ErrProductNotFound)
}

func TestInMemoryStore_CodeUniqueness(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		setup     func(s *InMemoryStore) *db.Product
		wantErr   error
		wantSaved bool
	}{
		{
			name: "duplicate active code conflicts",
			setup: func(s *InMemoryStore) *db.Product {
				_, _ = s.Save(ctx, newProduct("AAAAAAAAAA"))
				return newProduct("AAAAAAAAAA")
			},
			wantErr: catalogerrors.ErrConflict,
		},
		{
			name: "code of deleted product can be reused",
			setup: func(s *InMemoryStore) *db.Product {
				p, _ := s.Save(ctx, newProduct("AAAAAAAAAA"))
				_ = s.SoftDelete(ctx, p.ID)
				return newProduct("AAAAAAAAAA")
			},
			wantSaved: true,
		},
		{
			name: "product may keep its own code",
			setup: func(s *InMemoryStore) *db.Product {
				p, _ := s.Save(ctx, newProduct("AAAAAAAAAA"))
				return p
			},
			wantSaved: true,
		},
		{
			name: "update to another product's code conflicts",
			setup: func(s *InMemoryStore) *db.Product {
				_, _ = s.Save(ctx, newProduct("AAAAAAAAAA"))
				p, _ := s.Save(ctx, newProduct("BBBBBBBBBB"))
				p.Code = "AAAAAAAAAA"
				return p
			},
			wantErr: catalogerrors.ErrConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			s := NewInMemoryStore()
			p := tt.setup(s)

			// when
			saved, err := s.Save(ctx, p)

			// then
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, saved)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, saved)
		})
	}
}

func TestInMemoryStore_ExistsByCode(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewInMemoryStore()
	active, err := s.Save(ctx, newProduct("AAAAAAAAAA"))
	require.NoError(t, err)
	deleted, err := s.Save(ctx, newProduct("BBBBBBBBBB"))
	require.NoError(t, err)
	require.NoError(t, s.SoftDelete(ctx, deleted.ID))
	other := int64(42)

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
		t.Run(tt.name, func(t *testing.T) {
			// when
			got, err := s.ExistsByCode(ctx, tt.code, tt.excludeID)

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInMemoryStore_SoftDelete(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewInMemoryStore()
	p, err := s.Save(ctx, newProduct("AAAAAAAAAA"))
	require.NoError(t, err)

	// when
	err = s.SoftDelete(ctx, p.ID)

	// then
	require.NoError(t, err)
	_, err = s.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, catalogerrors.ErrProductNotFound)
	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.ErrorIs(t, s.SoftDelete(ctx, p.ID), catalogerrors.ErrProductNotFound, "second delete")
	assert.ErrorIs(t, s.SoftDelete(ctx, 1234), catalogerrors.ErrProductNotFound, "unknown id")

	// deleted products cannot be updated
	_, err = s.Save(ctx, p)
	assert.ErrorIs(t, err, catalogerrors.ErrProductNotFound)
}

func inputFor(code string) *validation.ProductInput {
	price := decimal.RequireFromString("10.00")
	available := false
	return &validation.ProductInput{
		Code:        code,
		Name:        "Updated " + code,
		PriceSource: &price,
		IsAvailable: &available,
	}
}
