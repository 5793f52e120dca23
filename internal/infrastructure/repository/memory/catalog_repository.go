package memory

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/peterbokern/makibeans/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CatalogRepository is an in-memory implementation of domain.ProductRepository
// and domain.CatalogRepository. Products keep insertion order.
type CatalogRepository struct {
	mu         sync.RWMutex
	products   []*domain.Product
	byID       map[string]*domain.Product
	categories []*domain.Category
	sizes      []*domain.Size
	templates  []*domain.AttributeTemplate
	values     []*domain.AttributeValue
	users      []*domain.User
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewCatalogRepository creates a new in-memory catalog repository
func NewCatalogRepository(tracer trace.Tracer, logger *slog.Logger) *CatalogRepository {
	return &CatalogRepository{
		byID:   make(map[string]*domain.Product),
		tracer: tracer,
		logger: logger,
	}
}

// Create stores a new product
func (r *CatalogRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "CatalogRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.id", product.ID),
		attribute.String("product.name", product.Name),
	)

	r.mu.Lock()
	defer r.mu.Unlock()

	if sku, taken := r.skuTaken(product); taken {
		span.RecordError(domain.ErrDuplicateSKU)
		span.SetStatus(codes.Error, "Duplicate SKU")
		r.logger.WarnContext(ctx, "Product SKU already exists",
			slog.String("sku", sku),
		)
		return domain.ErrDuplicateSKU
	}

	// Store product
	r.products = append(r.products, product)
	r.byID[product.ID] = product

	r.logger.InfoContext(ctx, "Product created in repository",
		slog.String("product_id", product.ID),
		slog.String("product_name", product.Name),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return nil
}

// skuTaken reports the first SKU of product that is already stored or repeated
// within the product itself; SKUs compare case-insensitively.
func (r *CatalogRepository) skuTaken(product *domain.Product) (string, bool) {
	for i, nv := range product.Variants {
		for _, other := range product.Variants[:i] {
			if strings.EqualFold(other.SKU, nv.SKU) {
				return nv.SKU, true
			}
		}
	}

	for _, existing := range r.products {
		for _, ev := range existing.Variants {
			for _, nv := range product.Variants {
				if strings.EqualFold(ev.SKU, nv.SKU) {
					return nv.SKU, true
				}
			}
		}
	}
	return "", false
}

// FindByID retrieves a product by ID
func (r *CatalogRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "CatalogRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.byID[id]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		r.logger.WarnContext(ctx, "Product not found",
			slog.String("product_id", id),
		)
		return nil, domain.ErrProductNotFound
	}

	span.SetStatus(codes.Ok, "Product found")
	return product, nil
}

// FindAll returns a snapshot of all products in insertion order
func (r *CatalogRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "CatalogRepository.FindAll")
	defer span.End()

	r.mu.RLock()
	products := snapshot(r.products)
	r.mu.RUnlock()

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.DebugContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// FindCategories returns a snapshot of all categories
func (r *CatalogRepository) FindCategories(ctx context.Context) ([]*domain.Category, error) {
	return find(ctx, r, "categories", func() []*domain.Category { return r.categories })
}

// FindSizes returns a snapshot of all sizes
func (r *CatalogRepository) FindSizes(ctx context.Context) ([]*domain.Size, error) {
	return find(ctx, r, "sizes", func() []*domain.Size { return r.sizes })
}

// FindAttributeTemplates returns a snapshot of all attribute templates
func (r *CatalogRepository) FindAttributeTemplates(ctx context.Context) ([]*domain.AttributeTemplate, error) {
	return find(ctx, r, "attribute_templates", func() []*domain.AttributeTemplate { return r.templates })
}

// FindAttributeValues returns a snapshot of all attribute values
func (r *CatalogRepository) FindAttributeValues(ctx context.Context) ([]*domain.AttributeValue, error) {
	return find(ctx, r, "attribute_values", func() []*domain.AttributeValue { return r.values })
}

// FindUsers returns a snapshot of all users
func (r *CatalogRepository) FindUsers(ctx context.Context) ([]*domain.User, error) {
	return find(ctx, r, "users", func() []*domain.User { return r.users })
}

func find[T any](ctx context.Context, r *CatalogRepository, entity string, items func() []T) ([]T, error) {
	_, span := r.tracer.Start(ctx, "CatalogRepository.Find",
		trace.WithAttributes(attribute.String("catalog.entity", entity)),
	)
	defer span.End()

	r.mu.RLock()
	out := snapshot(items())
	r.mu.RUnlock()

	span.SetAttributes(attribute.Int("catalog.count", len(out)))
	span.SetStatus(codes.Ok, "Entities retrieved successfully")
	return out, nil
}

func snapshot[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
