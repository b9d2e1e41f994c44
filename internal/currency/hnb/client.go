// Package hnb fetches exchange rates from the Croatian National Bank (HNB) rate list API.
package hnb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abgdnv/catalog/internal/currency"
	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/resilience"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	currencyParam = "valuta"
	dateParam     = "datum"
	dateLayout    = "2006-01-02"
	// middleRateField holds the middle rate for foreign exchange, e.g. "7,534500".
	middleRateField = "Srednji za devize"
)

var _ currency.RateProvider = (*Client)(nil)

// Client is a RateProvider backed by the HNB API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	executor   *resilience.Executor[decimal.Decimal]
	budget     time.Duration
	logger     *slog.Logger
}

// NewClient creates a Client for the rate list at cfg.URL. Each attempt is bounded by cfg.Timeout
// and runs through a retry and circuit breaker policy built from res; a whole lookup, retries
// included, is bounded by cfg.Budget.
func NewClient(cfg config.RateProviderConfig, res config.ResilienceConfig, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid rate provider URL: %w", err)
	}
	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		executor: resilience.NewExecutor[decimal.Decimal]("hnb-rates", res, logger),
		budget:   cfg.Budget,
		logger:   logger.With("component", "hnb"),
	}, nil
}

// FetchRate returns today's middle rate for currencyCode.
func (c *Client) FetchRate(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	return c.FetchRateOn(ctx, currencyCode, time.Time{})
}

// FetchRateOn returns the middle rate for currencyCode on date. A zero date means the current list.
// Every failure is reported as currency.ErrRateNotAvailable.
func (c *Client) FetchRateOn(ctx context.Context, currencyCode string, date time.Time) (decimal.Decimal, error) {
	if c.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.budget)
		defer cancel()
	}
	reqURL := c.rateURL(currencyCode, date)
	rate, err := c.executor.Execute(ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return c.fetch(ctx, reqURL)
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %w", currency.ErrRateNotAvailable, currencyCode, err)
	}
	c.logger.DebugContext(ctx, "Fetched exchange rate", "currency", currencyCode, "rate", rate.String())
	return rate, nil
}

func (c *Client) rateURL(currencyCode string, date time.Time) string {
	u := *c.baseURL
	q := u.Query()
	q.Set(currencyParam, currencyCode)
	if !date.IsZero() {
		q.Set(dateParam, date.Format(dateLayout))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// fetch performs a single request. Transport failures and 5xx responses are transient.
func (c *Client) fetch(ctx context.Context, reqURL string) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return decimal.Zero, err
		}
		return decimal.Zero, resilience.Transient(fmt.Errorf("rate request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return decimal.Zero, resilience.Transient(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return parseMiddleRate(json.NewDecoder(resp.Body))
}

func parseMiddleRate(dec *json.Decoder) (decimal.Decimal, error) {
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode rate list: %w", err)
	}
	if len(rows) == 0 {
		return decimal.Zero, errors.New("rate list is empty")
	}
	raw, ok := rows[0][middleRateField]
	if !ok {
		return decimal.Zero, fmt.Errorf("rate list entry has no %q field", middleRateField)
	}
	value, ok := raw.(string)
	if !ok {
		return decimal.Zero, fmt.Errorf("field %q is not a string", middleRateField)
	}
	rate, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(value), ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("field %q is not a number: %w", middleRateField, err)
	}
	return rate, nil
}
