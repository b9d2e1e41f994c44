// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"errors"
	"log/slog"
	"net/http"

	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
)

// messageTerminator ends every error message returned to clients.
const messageTerminator = ";"

// ProductResponse is the envelope returned by create and update, and by delete on failure.
type ProductResponse struct {
	Product      *service.ProductDto `json:"product"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
}

// ProductsResponse is the envelope returned by the fetch endpoints.
type ProductsResponse struct {
	Products     []service.ProductDto `json:"products"`
	ErrorMessage string               `json:"errorMessage,omitempty"`
}

type Handler struct {
	service service.ProductService
	logger  *slog.Logger
}

// NewHandler creates a new Handler backed by the given service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FetchAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FetchByID)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), &req)
	if err != nil {
		status, msg := h.mapError(r, err, "failed to create product")
		h.respondProduct(w, status, nil, msg)
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Code", created.Code)
	h.respondProduct(w, http.StatusCreated, created, "")
}

// Update replaces the editable fields of a product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req service.ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		status, msg := h.mapError(r, err, "failed to update product")
		h.respondProduct(w, status, nil, msg)
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Code", updated.Code)
	h.respondProduct(w, http.StatusOK, updated, "")
}

// Delete soft-deletes a product by its ID.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		status, msg := h.mapError(r, err, "failed to delete product")
		h.respondProduct(w, status, nil, msg)
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// FetchAll lists all active products.
func (h *Handler) FetchAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.FetchAll(r.Context())
	if err != nil {
		status, msg := h.mapError(r, err, "failed to fetch products")
		h.respondProducts(w, status, []service.ProductDto{}, msg)
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	h.respondProducts(w, http.StatusOK, list, "")
}

// FetchByID returns a single product wrapped in a list.
func (h *Handler) FetchByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found, err := h.service.FetchByID(r.Context(), id)
	if err != nil {
		status, msg := h.mapError(r, err, "failed to fetch product")
		h.respondProducts(w, status, []service.ProductDto{}, msg)
		return
	}
	h.respondProducts(w, http.StatusOK, []service.ProductDto{*found}, "")
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decode reads the request envelope, answering 400 itself when the body is absent or malformed.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req *service.ProductRequest) bool {
	err := web.DecodeJSON(r, req)
	if err == nil {
		return true
	}
	if errors.Is(err, web.ErrEmptyBody) {
		h.respondProduct(w, http.StatusBadRequest, nil, catalogerrors.ErrEmptyRequest.Error()+messageTerminator)
		return false
	}
	h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
	h.respondProduct(w, http.StatusBadRequest, nil, "malformed request body"+messageTerminator)
	return false
}

// mapError maps service errors to a status code and client message. Unknown errors are logged
// and reported with fallback.
func (h *Handler) mapError(r *http.Request, err error, fallback string) (int, string) {
	var vErr *catalogerrors.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.logger.InfoContext(r.Context(), "Validation failed", "errors", vErr.Message)
		return http.StatusBadRequest, vErr.Message + messageTerminator
	case errors.Is(err, catalogerrors.ErrEmptyRequest):
		return http.StatusBadRequest, catalogerrors.ErrEmptyRequest.Error() + messageTerminator
	case errors.Is(err, catalogerrors.ErrConflict):
		return http.StatusConflict, catalogerrors.ErrConflict.Error() + messageTerminator
	case errors.Is(err, catalogerrors.ErrProductNotFound):
		h.logger.InfoContext(r.Context(), "Product not found", "error", err)
		return http.StatusNotFound, catalogerrors.ErrProductNotFound.Error() + messageTerminator
	default:
		h.logger.ErrorContext(r.Context(), "Request failed", "error", err)
		return http.StatusInternalServerError, fallback + messageTerminator
	}
}

func (h *Handler) respondProduct(w http.ResponseWriter, status int, p *service.ProductDto, msg string) {
	web.RespondJSON(w, h.logger, status, ProductResponse{Product: p, ErrorMessage: msg})
}

func (h *Handler) respondProducts(w http.ResponseWriter, status int, list []service.ProductDto, msg string) {
	web.RespondJSON(w, h.logger, status, ProductsResponse{Products: list, ErrorMessage: msg})
}
