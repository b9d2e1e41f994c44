// Package app contains the application setup for the catalog service.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/currency"
	"github.com/abgdnv/catalog/internal/currency/hnb"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/internal/transport/rest"
	"github.com/abgdnv/catalog/internal/validation"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

// ServiceName identifies the service in env var prefixes, traces and metrics.
const ServiceName = "catalog"

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
	Health         *health.Server
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

// SetupDependencies wires the PostgreSQL store and the HNB rate client into the product service.
func SetupDependencies(dbPool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	rates, err := hnb.NewClient(cfg.Rates, cfg.Resilience, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate provider: %w", err)
	}
	return NewDependencies(store.NewPgStore(dbPool), rates, cfg.Rates.Currency, logger), nil
}

// NewDependencies builds the product service from an arbitrary store and rate provider.
func NewDependencies(productStore store.ProductStore, rates currency.RateProvider, currencyCode string, logger *slog.Logger) *Dependencies {
	converter := currency.NewConverter(rates, currencyCode, logger)
	pService := service.NewService(productStore, validation.NewEngine(), converter, logger)
	return &Dependencies{
		ProductService: pService,
		Logger:         logger,
		Health:         health.NewServer(),
	}
}

// SetupHttpHandler initializes the routes and middleware of the catalog API.
// Used by E2E tests to run the application handler in an httptest server.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return server.Instrument(ServiceName, mux)
}

// wireRoutes sets up the HTTP routes for the catalog application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the catalog application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

// SetupGrpcServer initializes the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(reflectionEnabled, server.WithHealth(deps.Health))
}
