package service

import (
	"cmp"
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/peterbokern/makibeans/internal/app/dto"
	"github.com/peterbokern/makibeans/internal/app/query"
	"github.com/peterbokern/makibeans/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CatalogService searches the reference entities of the catalog
type CatalogService struct {
	repo       domain.CatalogRepository
	tracer     trace.Tracer
	logger     *slog.Logger
	operations metric.Int64Counter
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo domain.CatalogRepository, tracer trace.Tracer, meter metric.Meter, logger *slog.Logger) *CatalogService {
	operations, _ := meter.Int64Counter(
		"catalog.searches",
		metric.WithDescription("Total number of catalog entity searches"),
	)

	return &CatalogService{
		repo:       repo,
		tracer:     tracer,
		logger:     logger,
		operations: operations,
	}
}

func byID[T any](id func(T) int64) query.Comparator[T] {
	return func(a, b T) int { return cmp.Compare(id(a), id(b)) }
}

func byText[T any](text func(T) string) query.Comparator[T] {
	return func(a, b T) int { return cmp.Compare(strings.ToLower(text(a)), strings.ToLower(text(b))) }
}

var (
	categoryFields = query.Fields[*domain.Category]{
		"name":        query.Text(func(c *domain.Category) string { return c.Name }),
		"description": query.Text(func(c *domain.Category) string { return c.Description }),
	}
	categorySorts = query.Sorts[*domain.Category]{
		"id":   byID(func(c *domain.Category) int64 { return c.ID }),
		"name": byText(func(c *domain.Category) string { return c.Name }),
	}

	sizeFields = query.Fields[*domain.Size]{
		"name": query.Text(func(s *domain.Size) string { return s.Name }),
	}
	sizeSorts = query.Sorts[*domain.Size]{
		"id":   byID(func(s *domain.Size) int64 { return s.ID }),
		"name": byText(func(s *domain.Size) string { return s.Name }),
	}

	templateFields = query.Fields[*domain.AttributeTemplate]{
		"name": query.Text(func(t *domain.AttributeTemplate) string { return t.Name }),
	}
	templateSorts = query.Sorts[*domain.AttributeTemplate]{
		"id":   byID(func(t *domain.AttributeTemplate) int64 { return t.ID }),
		"name": byText(func(t *domain.AttributeTemplate) string { return t.Name }),
	}

	valueFields = query.Fields[*domain.AttributeValue]{
		"value":      query.Text(func(v *domain.AttributeValue) string { return v.Value }),
		"templateId": query.Text(func(v *domain.AttributeValue) string { return strconv.FormatInt(v.TemplateID, 10) }),
	}
	valueSorts = query.Sorts[*domain.AttributeValue]{
		"id":         byID(func(v *domain.AttributeValue) int64 { return v.ID }),
		"value":      byText(func(v *domain.AttributeValue) string { return v.Value }),
		"templateId": byID(func(v *domain.AttributeValue) int64 { return v.TemplateID }),
	}

	userFields = query.Fields[*domain.User]{
		"username": query.Text(func(u *domain.User) string { return u.Username }),
		"email":    query.Text(func(u *domain.User) string { return u.Email }),
		"role":     query.Text(func(u *domain.User) string { return u.Role }),
	}
	userSorts = query.Sorts[*domain.User]{
		"id":       byID(func(u *domain.User) int64 { return u.ID }),
		"username": byText(func(u *domain.User) string { return u.Username }),
		"email":    byText(func(u *domain.User) string { return u.Email }),
		"role":     byText(func(u *domain.User) string { return u.Role }),
	}
)

// SearchCategories filters and sorts categories
func (s *CatalogService) SearchCategories(ctx context.Context, params query.Params) ([]*dto.CategoryResponse, error) {
	return search(ctx, s, "categories", s.repo.FindCategories, params, categoryFields, categorySorts, dto.ToCategoryResponse)
}

// SearchSizes filters and sorts sizes
func (s *CatalogService) SearchSizes(ctx context.Context, params query.Params) ([]*dto.SizeResponse, error) {
	return search(ctx, s, "sizes", s.repo.FindSizes, params, sizeFields, sizeSorts, dto.ToSizeResponse)
}

// SearchAttributeTemplates filters and sorts attribute templates
func (s *CatalogService) SearchAttributeTemplates(ctx context.Context, params query.Params) ([]*dto.AttributeTemplateResponse, error) {
	return search(ctx, s, "attribute_templates", s.repo.FindAttributeTemplates, params, templateFields, templateSorts, dto.ToAttributeTemplateResponse)
}

// SearchAttributeValues filters and sorts attribute values
func (s *CatalogService) SearchAttributeValues(ctx context.Context, params query.Params) ([]*dto.AttributeValueResponse, error) {
	return search(ctx, s, "attribute_values", s.repo.FindAttributeValues, params, valueFields, valueSorts, dto.ToAttributeValueResponse)
}

// SearchUsers filters and sorts users
func (s *CatalogService) SearchUsers(ctx context.Context, params query.Params) ([]*dto.UserResponse, error) {
	return search(ctx, s, "users", s.repo.FindUsers, params, userFields, userSorts, dto.ToUserResponse)
}

func search[T, R any](
	ctx context.Context,
	s *CatalogService,
	entity string,
	load func(context.Context) ([]T, error),
	params query.Params,
	fields query.Fields[T],
	sorts query.Sorts[T],
	toResponse func(T) R,
) ([]R, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Search",
		trace.WithAttributes(attribute.String("catalog.entity", entity)),
	)
	defer span.End()

	// Load the entity list from the repository
	items, err := load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load entities")
		s.record(ctx, entity, "failure")
		return nil, err
	}

	// Apply search, field filters and sorting
	found, err := query.Search(items, params, fields, sorts, s.logger.With(slog.String("entity", entity)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid filter")
		s.logger.WarnContext(ctx, "Rejected catalog search",
			slog.String("entity", entity),
			slog.String("error", err.Error()),
		)
		s.record(ctx, entity, "invalid_filter")
		return nil, err
	}

	// Record metrics
	span.SetAttributes(attribute.Int("catalog.count", len(found)))
	s.record(ctx, entity, "success")

	s.logger.DebugContext(ctx, "Catalog search completed",
		slog.String("entity", entity),
		slog.Int("count", len(found)),
	)

	span.SetStatus(codes.Ok, "Search completed")
	return dto.ToResponseList(found, toResponse), nil
}

func (s *CatalogService) record(ctx context.Context, entity, result string) {
	s.operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("entity", entity),
			attribute.String("result", result),
		),
	)
}
