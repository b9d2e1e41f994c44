package db

import (
	"testing"
	"time"

	"github.com/abgdnv/catalog/internal/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_WithInput(t *testing.T) {
	// given
	created := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	oldDesc := "old"
	original := Product{
		ID:          7,
		Code:        "AAAAAAAAAA",
		Name:        "Old",
		PriceSource: decimal.RequireFromString("15.00"),
		PriceTarget: decimal.RequireFromString("2.00"),
		Description: &oldDesc,
		IsAvailable: false,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	price := decimal.RequireFromString("75.00")
	available := true
	input := &validation.ProductInput{
		Code:        "BBBBBBBBBB",
		Name:        "New",
		PriceSource: &price,
		IsAvailable: &available,
	}

	// when
	updated := original.WithInput(input, decimal.RequireFromString("10.00"))

	// then
	assert.Equal(t, int64(7), updated.ID)
	assert.Equal(t, "BBBBBBBBBB", updated.Code)
	assert.Equal(t, "New", updated.Name)
	assert.True(t, price.Equal(updated.PriceSource))
	assert.True(t, decimal.RequireFromString("10.00").Equal(updated.PriceTarget))
	assert.Nil(t, updated.Description)
	assert.True(t, updated.IsAvailable)
	assert.Equal(t, created, updated.CreatedAt)
	assert.False(t, updated.IsDeleted())

	// original is untouched
	assert.Equal(t, "AAAAAAAAAA", original.Code)
	assert.Equal(t, "old", *original.Description)
	assert.False(t, original.IsAvailable)
}

func TestProduct_WithInput_CopiesDescription(t *testing.T) {
	// given
	desc := "fresh"
	price := decimal.RequireFromString("1")
	available := false
	input := &validation.ProductInput{Code: "CCCCCCCCCC", Name: "n", PriceSource: &price, Description: &desc, IsAvailable: &available}

	// when
	updated := Product{}.WithInput(input, decimal.Zero)
	desc = "mutated"

	// then
	assert.Equal(t, "fresh", *updated.Description)
}
