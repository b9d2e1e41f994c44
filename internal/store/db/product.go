package db

import (
	"github.com/abgdnv/catalog/internal/validation"
	"github.com/shopspring/decimal"
)

// IsDeleted reports whether the product has been soft-deleted.
func (p Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// WithInput returns a copy of p carrying the client-editable fields of input and the given
// converted price. Identity and timestamps are preserved. input must already be validated.
func (p Product) WithInput(input *validation.ProductInput, priceTarget decimal.Decimal) Product {
	updated := p
	updated.Code = input.Code
	updated.Name = input.Name
	if input.PriceSource != nil {
		updated.PriceSource = *input.PriceSource
	}
	updated.PriceTarget = priceTarget
	if input.Description != nil {
		d := *input.Description
		updated.Description = &d
	} else {
		updated.Description = nil
	}
	if input.IsAvailable != nil {
		updated.IsAvailable = *input.IsAvailable
	}
	return updated
}
