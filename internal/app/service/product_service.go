package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/peterbokern/makibeans/internal/app/dto"
	"github.com/peterbokern/makibeans/internal/app/query"
	"github.com/peterbokern/makibeans/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductService handles product use cases
type ProductService struct {
	repo                  domain.ProductRepository
	catalog               domain.CatalogRepository
	engine                *query.ProductEngine
	tracer                trace.Tracer
	logger                *slog.Logger
	productCreatedCounter metric.Int64Counter
	productOperations     metric.Int64Counter
	queryResults          metric.Int64Histogram
}

// NewProductService creates a new product service
func NewProductService(
	repo domain.ProductRepository,
	catalog domain.CatalogRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	// Initialize metrics
	productCreatedCounter, _ := meter.Int64Counter(
		"products.created.total",
		metric.WithDescription("Total number of products created"),
	)

	productOperations, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)

	queryResults, _ := meter.Int64Histogram(
		"products.query.results",
		metric.WithDescription("Number of products matching a product query"),
		metric.WithUnit("{product}"),
	)

	return &ProductService{
		repo:                  repo,
		catalog:               catalog,
		engine:                query.NewProductEngine(logger),
		tracer:                tracer,
		logger:                logger,
		productCreatedCounter: productCreatedCounter,
		productOperations:     productOperations,
		queryResults:          queryResults,
	}
}

func (s *ProductService) recordOperation(ctx context.Context, operation, result string) {
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

// QueryProducts filters, sorts and paginates the current product snapshot
func (s *ProductService) QueryProducts(ctx context.Context, params query.Params) (*dto.ProductPage, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.QueryProducts")
	defer span.End()

	span.SetAttributes(attribute.Int("query.param_count", len(params)))

	// Attribute template names are the extra filter keys a query may use
	templates, err := s.catalog.FindAttributeTemplates(ctx)
	if err != nil {
		return nil, s.queryFailed(ctx, span, err)
	}
	attributeKeys := make([]string, len(templates))
	for i, t := range templates {
		attributeKeys[i] = t.Name
	}

	// Take a snapshot of the catalog
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.queryFailed(ctx, span, err)
	}

	// Filter, sort and paginate
	page, err := s.engine.Apply(params, products, attributeKeys)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid filter")
		s.logger.WarnContext(ctx, "Rejected product query",
			slog.String("error", err.Error()),
		)
		s.recordOperation(ctx, "query", "invalid_filter")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("query.total_elements", page.TotalElements),
		attribute.Int("query.page", page.Page),
		attribute.Int("query.size", page.Size),
	)
	// Record metrics
	s.queryResults.Record(ctx, int64(page.TotalElements))
	s.recordOperation(ctx, "query", "success")

	s.logger.InfoContext(ctx, "Products queried successfully",
		slog.Int("candidates", len(products)),
		slog.Int("total_elements", page.TotalElements),
		slog.Int("page", page.Page),
	)

	span.SetStatus(codes.Ok, "Products queried successfully")
	return dto.ToProductPage(page), nil
}

func (s *ProductService) queryFailed(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "Failed to load catalog snapshot")
	s.logger.ErrorContext(ctx, "Failed to load catalog snapshot",
		slog.String("error", err.Error()),
	)
	s.recordOperation(ctx, "query", "failure")
	return err
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.name", req.Name),
		attribute.Int("product.variant_count", len(req.Variants)),
	)

	s.logger.InfoContext(ctx, "Creating product",
		slog.String("name", req.Name),
	)

	// Resolve references and validate, then persist
	product, err := s.buildProduct(ctx, req)
	if err == nil {
		span.SetAttributes(attribute.String("product.id", product.ID))
		err = s.repo.Create(ctx, product)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create product")
		s.logger.ErrorContext(ctx, "Failed to create product",
			slog.String("error", err.Error()),
		)
		s.recordOperation(ctx, "create", "failure")
		return nil, err
	}

	// Record metrics
	s.productCreatedCounter.Add(ctx, 1)
	s.recordOperation(ctx, "create", "success")

	s.logger.InfoContext(ctx, "Product created successfully",
		slog.String("product_id", product.ID),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return dto.ToProductResponse(product), nil
}

// buildProduct resolves the request's category, size and attribute references
func (s *ProductService) buildProduct(ctx context.Context, req *dto.CreateProductRequest) (*domain.Product, error) {
	var category *domain.Category
	if req.CategoryID != 0 {
		categories, err := s.catalog.FindCategories(ctx)
		if err != nil {
			return nil, err
		}
		category = findByID(categories, req.CategoryID, func(c *domain.Category) int64 { return c.ID })
		if category == nil {
			return nil, fmt.Errorf("%w: category %d", domain.ErrUnknownRef, req.CategoryID)
		}
	}

	// Variants without a size id stay unsized
	sizes, err := s.catalog.FindSizes(ctx)
	if err != nil {
		return nil, err
	}
	variants := make([]domain.ProductVariant, 0, len(req.Variants))
	for _, v := range req.Variants {
		variant := domain.ProductVariant{PriceInCents: v.PriceInCents, SKU: v.SKU, Stock: v.Stock}
		if v.SizeID != 0 {
			variant.Size = findByID(sizes, v.SizeID, func(s *domain.Size) int64 { return s.ID })
			if variant.Size == nil {
				return nil, fmt.Errorf("%w: size %d", domain.ErrUnknownRef, v.SizeID)
			}
		}
		variants = append(variants, variant)
	}

	attributes, err := s.resolveAttributes(ctx, req.Attributes)
	if err != nil {
		return nil, err
	}

	return domain.NewProduct(req.Name, req.Description, category, variants, attributes)
}

func (s *ProductService) resolveAttributes(ctx context.Context, requested map[string][]string) ([]domain.ProductAttribute, error) {
	if len(requested) == 0 {
		return nil, nil
	}
	templates, err := s.catalog.FindAttributeTemplates(ctx)
	if err != nil {
		return nil, err
	}
	values, err := s.catalog.FindAttributeValues(ctx)
	if err != nil {
		return nil, err
	}

	var attributes []domain.ProductAttribute
	for _, t := range templates {
		var wanted []string
		for name, vs := range requested {
			if strings.EqualFold(name, t.Name) {
				wanted = append(wanted, vs...)
			}
		}
		if len(wanted) == 0 {
			continue
		}
		attr := domain.ProductAttribute{Template: t}
		for _, w := range wanted {
			var found *domain.AttributeValue
			for _, v := range values {
				if v.TemplateID == t.ID && strings.EqualFold(v.Value, w) {
					found = v
					break
				}
			}
			if found == nil {
				return nil, fmt.Errorf("%w: value %q for attribute %q", domain.ErrUnknownRef, w, t.Name)
			}
			attr.Values = append(attr.Values, *found)
		}
		attributes = append(attributes, attr)
	}

	// Reject attribute names that match no template
	for name := range requested {
		if !containsFold(templates, name) {
			return nil, fmt.Errorf("%w: attribute %q", domain.ErrUnknownRef, name)
		}
	}
	return attributes, nil
}

func containsFold(templates []*domain.AttributeTemplate, name string) bool {
	for _, t := range templates {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

func findByID[T any](items []*T, id int64, idOf func(*T) int64) *T {
	for _, item := range items {
		if idOf(item) == id {
			return item
		}
	}
	return nil
}

// GetProductByID retrieves a product by ID
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProductByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrProductNotFound) {
			span.SetStatus(codes.Error, "Product not found")
			s.recordOperation(ctx, "read", "not_found")
		} else {
			span.SetStatus(codes.Error, "Failed to read product")
			s.recordOperation(ctx, "read", "failure")
		}
		return nil, err
	}

	s.recordOperation(ctx, "read", "success")

	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return dto.ToProductResponse(product), nil
}
