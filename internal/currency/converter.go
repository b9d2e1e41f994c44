// Package currency converts source-currency prices into the target currency.
package currency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrRateNotAvailable is returned by a RateProvider that could not produce a rate.
var ErrRateNotAvailable = errors.New("exchange rate not available")

// ConversionUnavailable returns the converted price recorded when no conversion could be made.
func ConversionUnavailable() decimal.Decimal {
	return decimal.New(0, 0)
}

// Places is the number of decimal places of a converted price.
const Places = 2

// RateProvider returns the current middle rate of one unit of currencyCode in the source currency.
type RateProvider interface {
	FetchRate(ctx context.Context, currencyCode string) (decimal.Decimal, error)
}

// Converter turns source-currency amounts into the target currency using the provider's rate.
type Converter struct {
	provider    RateProvider
	currency    string
	logger      *slog.Logger
	unavailable metric.Int64Counter
}

// NewConverter creates a Converter into currencyCode backed by provider.
func NewConverter(provider RateProvider, currencyCode string, logger *slog.Logger) *Converter {
	meter := otel.Meter("catalog")
	unavailable, err := meter.Int64Counter("catalog_conversion_unavailable",
		metric.WithDescription("Total number of price conversions that fell back to the unavailable sentinel"))
	if err != nil {
		panic(fmt.Sprintf("failed to create catalog_conversion_unavailable counter: %v", err))
	}
	return &Converter{
		provider:    provider,
		currency:    currencyCode,
		logger:      logger.With("component", "converter"),
		unavailable: unavailable,
	}
}

// Convert returns amount divided by the current rate, rounded half-to-even to two places.
// A nil or zero amount converts to zero without consulting the provider. Any provider failure
// or non-positive rate yields ConversionUnavailable; the error is logged, never returned.
func (c *Converter) Convert(ctx context.Context, amount *decimal.Decimal) decimal.Decimal {
	if amount == nil {
		return ConversionUnavailable()
	}
	if amount.IsZero() {
		return decimal.Zero
	}

	rate, err := c.provider.FetchRate(ctx, c.currency)
	if err != nil {
		c.logger.WarnContext(ctx, "Exchange rate unavailable, using fallback price", "currency", c.currency, "error", err)
		c.unavailable.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "provider")))
		return ConversionUnavailable()
	}
	if !rate.IsPositive() {
		c.logger.WarnContext(ctx, "Exchange rate is not positive, using fallback price", "currency", c.currency, "rate", rate.String())
		c.unavailable.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "rate")))
		return ConversionUnavailable()
	}

	return DivideHalfEven(*amount, rate, Places)
}

// DivideHalfEven returns amount/divisor rounded to places using round-half-to-even.
// The remainder is compared exactly, so no intermediate rounding takes place. divisor must not be zero.
func DivideHalfEven(amount, divisor decimal.Decimal, places int32) decimal.Decimal {
	q, r := amount.QuoRem(divisor, places)
	if r.IsZero() {
		return q
	}
	// one unit in the last place, signed like the quotient
	step := decimal.New(1, -places)
	if amount.Sign()*divisor.Sign() < 0 {
		step = step.Neg()
	}
	// 2|r| against |divisor| * 10^-places
	cmp := r.Abs().Mul(decimal.NewFromInt(2)).Cmp(divisor.Abs().Shift(-places))
	if cmp > 0 || (cmp == 0 && q.Shift(places).IntPart()%2 != 0) {
		q = q.Add(step)
	}
	return q
}
