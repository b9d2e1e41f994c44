// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/abgdnv/catalog/internal/currency"
	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/internal/store/db"
	"github.com/abgdnv/catalog/internal/validation"
	ctxlog "github.com/abgdnv/catalog/pkg/logger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing products.
type ProductService interface {
	// Create validates and stores a new product with its converted price.
	// Returns ErrEmptyRequest, a ValidationError or ErrConflict for rejected input.
	Create(ctx context.Context, req *ProductRequest) (*ProductDto, error)

	// Update replaces the editable fields of the active product id.
	// Returns ErrProductNotFound if id is malformed or no active product has it.
	Update(ctx context.Context, id string, req *ProductRequest) (*ProductDto, error)

	// Delete soft-deletes the active product id.
	// Returns ErrProductNotFound if id is malformed or no active product has it.
	Delete(ctx context.Context, id string) error

	// FetchAll returns all active products. Returns an empty slice if none exist.
	FetchAll(ctx context.Context) ([]ProductDto, error)

	// FetchByID returns the active product id.
	// Returns ErrProductNotFound if id is malformed or no active product has it.
	FetchByID(ctx context.Context, id string) (*ProductDto, error)
}

// Validator checks product input.
type Validator interface {
	Validate(input *validation.ProductInput) (validation.Outcome, error)
}

// PriceConverter converts a source-currency price. It never fails; see currency.Converter.
type PriceConverter interface {
	Convert(ctx context.Context, amount *decimal.Decimal) decimal.Decimal
}

// ProductRequest is the envelope clients send for create and update.
type ProductRequest struct {
	Product *validation.ProductInput `json:"product"`
}

// Amount is a decimal rendered in JSON as a number with two decimal places.
type Amount struct {
	decimal.Decimal
}

// MarshalJSON writes the amount as a bare number with two decimal places.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(currency.Places)), nil
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	PriceHrk    Amount  `json:"priceHrk"`
	PriceEur    Amount  `json:"priceEur"`
	Description *string `json:"description,omitempty"`
	IsAvailable bool    `json:"isAvailable"`
}

// Service implements ProductService.
type Service struct {
	store     store.ProductStore
	validator Validator
	converter PriceConverter
	logger    *slog.Logger
	mutations metric.Int64Counter
}

// NewService creates a new Service.
func NewService(productStore store.ProductStore, validator Validator, converter PriceConverter, logger *slog.Logger) *Service {
	meter := otel.Meter("catalog")
	mutations, err := meter.Int64Counter("catalog_product_mutations", metric.WithDescription("Total number of product create, update and delete operations"))
	if err != nil {
		panic(fmt.Sprintf("failed to create catalog_product_mutations counter: %v", err))
	}
	return &Service{
		store:     productStore,
		validator: validator,
		converter: converter,
		logger:    logger.With("component", "service"),
		mutations: mutations,
	}
}

// Create validates the request, checks that the code is free, converts the price and saves the product.
func (s *Service) Create(ctx context.Context, req *ProductRequest) (*ProductDto, error) {
	input, err := s.checkInput(req)
	if err != nil {
		return nil, err
	}
	ctx = ctxlog.WithAttrs(ctx, slog.String("code", input.Code))

	exists, err := s.store.ExistsByCode(ctx, input.Code, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check product code: %w", err)
	}
	if exists {
		s.logger.InfoContext(ctx, "Product code already in use")
		return nil, catalogerrors.ErrConflict
	}

	priceTarget := s.converter.Convert(ctx, input.PriceSource)
	product := db.Product{}.WithInput(input, priceTarget)
	saved, err := s.store.Save(ctx, &product)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "create")))
	s.logger.InfoContext(ctx, "Product created", "product_id", saved.ID)
	return toDto(saved), nil
}

// Update validates the request and replaces the product's editable fields.
// The product is loaded before conversion so a missing id never costs a rate lookup.
func (s *Service) Update(ctx context.Context, id string, req *ProductRequest) (*ProductDto, error) {
	if req == nil || req.Product == nil {
		return nil, catalogerrors.ErrEmptyRequest
	}
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	ctx = ctxlog.WithAttrs(ctx, slog.Int64("product_id", productID))

	input, err := s.checkInput(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.ExistsByCode(ctx, input.Code, &productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check product code: %w", err)
	}
	if exists {
		s.logger.InfoContext(ctx, "Product code already in use", "code", input.Code)
		return nil, catalogerrors.ErrConflict
	}

	current, err := s.store.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", productID, err)
	}

	priceTarget := s.converter.Convert(ctx, input.PriceSource)
	updated := current.WithInput(input, priceTarget)
	saved, err := s.store.Save(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", productID, err)
	}
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "update")))
	s.logger.InfoContext(ctx, "Product updated")
	return toDto(saved), nil
}

// Delete soft-deletes the product. Deleting it again reports ErrProductNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}
	ctx = ctxlog.WithAttrs(ctx, slog.Int64("product_id", productID))

	if _, err := s.store.FindByID(ctx, productID); err != nil {
		return fmt.Errorf("failed to load product %d: %w", productID, err)
	}
	if err := s.store.SoftDelete(ctx, productID); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", productID, err)
	}
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "delete")))
	s.logger.InfoContext(ctx, "Product deleted")
	return nil
}

// FetchAll returns every active product.
func (s *Service) FetchAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toDto(&products[i])
	}
	return dtos, nil
}

// FetchByID returns a single active product.
func (s *Service) FetchByID(ctx context.Context, id string) (*ProductDto, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	product, err := s.store.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", productID, err)
	}
	return toDto(product), nil
}

// checkInput rejects an empty envelope and invalid input.
func (s *Service) checkInput(req *ProductRequest) (*validation.ProductInput, error) {
	if req == nil || req.Product == nil {
		return nil, catalogerrors.ErrEmptyRequest
	}
	outcome, err := s.validator.Validate(req.Product)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNilInput) {
			return nil, catalogerrors.ErrEmptyRequest
		}
		return nil, fmt.Errorf("failed to validate product: %w", err)
	}
	if !outcome.Valid() {
		return nil, &catalogerrors.ValidationError{Message: outcome.Message()}
	}
	return req.Product, nil
}

// parseID accepts positive decimal integers. Anything else names no product.
func parseID(id string) (int64, error) {
	productID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || productID <= 0 {
		return 0, fmt.Errorf("invalid productId %q: %w", id, catalogerrors.ErrProductNotFound)
	}
	return productID, nil
}

// toDto converts a db.Product to a ProductDto.
func toDto(p *db.Product) *ProductDto {
	return &ProductDto{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		PriceHrk:    Amount{p.PriceSource},
		PriceEur:    Amount{p.PriceTarget},
		Description: p.Description,
		IsAvailable: p.IsAvailable,
	}
}
