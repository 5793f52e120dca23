package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/peterbokern/makibeans/internal/app/dto"
	"github.com/peterbokern/makibeans/internal/app/query"
	"github.com/peterbokern/makibeans/internal/domain"
	"github.com/peterbokern/makibeans/internal/infrastructure/repository/memory"
)

func newServices(t *testing.T) (*ProductService, *CatalogService) {
	t.Helper()
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	meter := metricnoop.NewMeterProvider().Meter("test")
	logger := slog.New(slog.DiscardHandler)

	repo := memory.NewCatalogRepository(tracer, logger)
	require.NoError(t, repo.LoadSeedFile(context.Background(), ""))

	return NewProductService(repo, repo, tracer, meter, logger),
		NewCatalogService(repo, tracer, meter, logger)
}

func names(products []*dto.ProductResponse) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestQueryProducts_AttributeFilters(t *testing.T) {
	products, _ := newServices(t)
	ctx := context.Background()

	page, err := products.QueryProducts(ctx, query.Params{"origin": "ethiopia"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Yirgacheffe", "Sidamo"}, names(page.Content))

	page, err = products.QueryProducts(ctx, query.Params{"origin": "ethiopia", "intensity": "strong"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sidamo"}, names(page.Content))

	page, err = products.QueryProducts(ctx, query.Params{"flavor": "bubblegum"})
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Equal(t, 0, page.TotalElements)
	assert.Equal(t, 0, page.TotalPages)
}

func TestQueryProducts_RejectsUnknownKey(t *testing.T) {
	products, _ := newServices(t)

	_, err := products.QueryProducts(context.Background(), query.Params{"flaver": "bubblegum"})
	require.ErrorIs(t, err, query.ErrInvalidFilter)
}

func TestQueryProducts_PageEnvelope(t *testing.T) {
	products, _ := newServices(t)

	page, err := products.QueryProducts(context.Background(), query.Params{"sort": "productName", "page": "1", "size": "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hand Grinder", "Huehuetenango", "Kenya AA"}, names(page.Content))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.Size)
	assert.Equal(t, 10, page.TotalElements)
	assert.Equal(t, 4, page.TotalPages)
}

func TestQueryProducts_MapsViews(t *testing.T) {
	products, _ := newServices(t)

	page, err := products.QueryProducts(context.Background(), query.Params{"search": "kenya"})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)

	view := page.Content[0]
	assert.Equal(t, "Kenya AA", view.Name)
	require.NotNil(t, view.Category)
	assert.Equal(t, "Beans", view.Category.Name)
	require.Len(t, view.Variants, 1)
	assert.Equal(t, "500g", view.Variants[0].Size.Name)
	assert.Equal(t, int64(2100), view.Variants[0].PriceInCents)
	assert.Contains(t, view.Attributes, dto.AttributeResponse{Name: "origin", Values: []string{"kenya"}})
}

func TestCreateProduct(t *testing.T) {
	products, _ := newServices(t)
	ctx := context.Background()

	created, err := products.CreateProduct(ctx, &dto.CreateProductRequest{
		Name:        "Ethiopia Guji",
		Description: "Peach and bergamot",
		CategoryID:  1,
		Variants:    []dto.CreateVariantRequest{{SizeID: 1, PriceInCents: 1350, SKU: "GUJ-250", Stock: 10}},
		Attributes:  map[string][]string{"Origin": {"Ethiopia"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := products.GetProductByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ethiopia Guji", got.Name)

	page, err := products.QueryProducts(ctx, query.Params{"origin": "ethiopia"})
	require.NoError(t, err)
	assert.Contains(t, names(page.Content), "Ethiopia Guji")
}

func TestCreateProduct_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  dto.CreateProductRequest
		want error
	}{
		{"unknown category", dto.CreateProductRequest{Name: "X", CategoryID: 42}, domain.ErrUnknownRef},
		{"unknown size", dto.CreateProductRequest{Name: "X", Variants: []dto.CreateVariantRequest{{SizeID: 9, SKU: "X-1"}}}, domain.ErrUnknownRef},
		{"unknown attribute", dto.CreateProductRequest{Name: "X", Attributes: map[string][]string{"acidity": {"high"}}}, domain.ErrUnknownRef},
		{"unknown value", dto.CreateProductRequest{Name: "X", Attributes: map[string][]string{"origin": {"peru"}}}, domain.ErrUnknownRef},
		{"missing name", dto.CreateProductRequest{Name: " "}, domain.ErrInvalidProductName},
		{"negative stock", dto.CreateProductRequest{Name: "X", Variants: []dto.CreateVariantRequest{{SKU: "X-1", Stock: -1}}}, domain.ErrInvalidVariantStock},
		{"duplicate sku", dto.CreateProductRequest{Name: "X", Variants: []dto.CreateVariantRequest{{SKU: "ken-500"}}}, domain.ErrDuplicateSKU},
		{"duplicate sku within request", dto.CreateProductRequest{Name: "X", Variants: []dto.CreateVariantRequest{{SKU: "DUP-1"}, {SKU: "dup-1"}}}, domain.ErrDuplicateSKU},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, _ := newServices(t)
			_, err := products.CreateProduct(context.Background(), &tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetProductByID_NotFound(t *testing.T) {
	products, _ := newServices(t)

	_, err := products.GetProductByID(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCatalogSearches(t *testing.T) {
	_, catalog := newServices(t)
	ctx := context.Background()

	categories, err := catalog.SearchCategories(ctx, query.Params{"sort": "name", "order": "desc"})
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Tea", categories[0].Name)

	sizes, err := catalog.SearchSizes(ctx, query.Params{"search": "G"})
	require.NoError(t, err)
	assert.Len(t, sizes, 3)

	users, err := catalog.SearchUsers(ctx, query.Params{"role": "user", "sort": "username"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "barista", users[0].Username)
	assert.Equal(t, "roaster", users[1].Username)

	templates, err := catalog.SearchAttributeTemplates(ctx, query.Params{"name": "ORIGIN"})
	require.NoError(t, err)
	require.Len(t, templates, 1)

	values, err := catalog.SearchAttributeValues(ctx, query.Params{"templateId": "2", "sort": "value"})
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, "medium", values[0].Value)
	assert.Equal(t, "mild", values[1].Value)
	assert.Equal(t, "strong", values[2].Value)

	_, err = catalog.SearchUsers(ctx, query.Params{"password": "hunter2"})
	require.ErrorIs(t, err, query.ErrInvalidFilter)
}
