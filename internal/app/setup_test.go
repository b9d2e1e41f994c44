package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/catalog/internal/currency/hnb"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateServer(t *testing.T, rate string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"Valuta":"EUR","Srednji za devize":"` + rate + `"}]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandler(t *testing.T, rateURL string) http.Handler {
	t.Helper()
	return newTestHandlerWith(t, config.RateProviderConfig{URL: rateURL, Currency: "EUR", Timeout: time.Second, Budget: time.Second}, 1)
}

func newTestHandlerWith(t *testing.T, ratesCfg config.RateProviderConfig, attempts uint) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	res := config.ResilienceConfig{
		Retry:          config.RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond},
		CircuitBreaker: config.CircuitBreakerConfig{ConsecutiveFailures: 5, ErrorRatePercent: 100, OpenTimeout: time.Second},
	}
	rates, err := hnb.NewClient(ratesCfg, res, logger)
	require.NoError(t, err)
	deps := NewDependencies(store.NewInMemoryStore(), rates, "EUR", logger)
	deps.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	return SetupHttpHandler(deps)
}

func send(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func productBody(code string, price float64) map[string]any {
	return map[string]any{"product": map[string]any{
		"code":        code,
		"name":        "Widget " + code,
		"priceHrk":    price,
		"isAvailable": true,
	}}
}

func TestCatalogFlow_ConvertsWithProviderRate(t *testing.T) {
	// given
	h := newTestHandler(t, newRateServer(t, "7,500000").URL)

	// when
	created := send(t, h, http.MethodPost, "/api/v1/products", productBody("AAAAAAAAAA", 75))

	// then
	require.Equal(t, http.StatusCreated, created.Code)
	assert.Contains(t, created.Body.String(), `"priceEur":10.00`)
	assert.Contains(t, created.Body.String(), `"priceHrk":75.00`)

	list := send(t, h, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), `"code":"AAAAAAAAAA"`)

	dup := send(t, h, http.MethodPost, "/api/v1/products", productBody("AAAAAAAAAA", 1))
	assert.Equal(t, http.StatusConflict, dup.Code)

	del := send(t, h, http.MethodDelete, "/api/v1/products/1", nil)
	assert.Equal(t, http.StatusNoContent, del.Code)
	again := send(t, h, http.MethodDelete, "/api/v1/products/1", nil)
	assert.Equal(t, http.StatusNotFound, again.Code)

	reused := send(t, h, http.MethodPost, "/api/v1/products", productBody("AAAAAAAAAA", 1))
	assert.Equal(t, http.StatusCreated, reused.Code)
}

func TestCatalogFlow_ProviderDownStoresSentinel(t *testing.T) {
	// given
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	h := newTestHandler(t, url)

	// when
	created := send(t, h, http.MethodPost, "/api/v1/products", productBody("AAAAAAAAAA", 75))

	// then
	require.Equal(t, http.StatusCreated, created.Code)
	assert.Contains(t, created.Body.String(), `"priceEur":0.00`)
}

func TestCatalogFlow_HangingProviderStillAnswersWithinWriteTimeout(t *testing.T) {
	// given
	release := make(chan struct{})
	rates := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer rates.Close()
	defer close(release)

	h := newTestHandlerWith(t, config.RateProviderConfig{
		URL:      rates.URL,
		Currency: "EUR",
		Timeout:  200 * time.Millisecond,
		Budget:   400 * time.Millisecond,
	}, 3)
	api := httptest.NewUnstartedServer(h)
	api.Config.WriteTimeout = time.Second
	api.Start()
	defer api.Close()

	payload, err := json.Marshal(productBody("AAAAAAAAAA", 75))
	require.NoError(t, err)

	// when
	start := time.Now()
	resp, err := api.Client().Post(api.URL+"/api/v1/products", "application/json", bytes.NewReader(payload))
	elapsed := time.Since(start)

	// then
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, string(body), `"priceEur":0.00`)
	assert.Less(t, elapsed, time.Second)
}

func TestSetupHttpHandler_ServesMetrics(t *testing.T) {
	// given
	h := newTestHandler(t, newRateServer(t, "7,5").URL)

	// when
	rec := send(t, h, http.MethodGet, "/metrics", nil)

	// then
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}
