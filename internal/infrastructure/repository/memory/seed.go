package memory

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterbokern/makibeans/internal/domain"
)

//go:embed seed/catalog.json
var defaultSeed []byte

type seedFile struct {
	Categories []struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"categories"`
	Sizes []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"sizes"`
	AttributeTemplates []struct {
		ID     int64    `json:"id"`
		Name   string   `json:"name"`
		Values []string `json:"values"`
	} `json:"attributeTemplates"`
	Users []struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	} `json:"users"`
	Products []seedProduct `json:"products"`
}

type seedProduct struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  int64  `json:"categoryId"`
	Variants    []struct {
		SizeID       int64  `json:"sizeId"`
		PriceInCents int64  `json:"priceInCents"`
		SKU          string `json:"sku"`
		Stock        int64  `json:"stock"`
	} `json:"variants"`
	Attributes map[string][]string `json:"attributes"`
}

// LoadSeedFile loads the catalog from path, or the embedded default catalog when path is empty.
func (r *CatalogRepository) LoadSeedFile(ctx context.Context, path string) error {
	if path == "" {
		return r.LoadSeed(ctx, bytes.NewReader(defaultSeed))
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	return r.LoadSeed(ctx, f)
}

// LoadSeed replaces the repository contents with the JSON catalog read from src.
func (r *CatalogRepository) LoadSeed(ctx context.Context, src io.Reader) error {
	ctx, span := r.tracer.Start(ctx, "CatalogRepository.LoadSeed")
	defer span.End()

	var seed seedFile
	if err := json.NewDecoder(src).Decode(&seed); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to decode seed: %w", err)
	}

	categories := make(map[int64]*domain.Category, len(seed.Categories))
	sizes := make(map[int64]*domain.Size, len(seed.Sizes))
	templates := make(map[string]*domain.AttributeTemplate, len(seed.AttributeTemplates))
	values := make(map[string]map[string]domain.AttributeValue, len(seed.AttributeTemplates))

	next := &CatalogRepository{byID: make(map[string]*domain.Product)}

	for _, c := range seed.Categories {
		cat := &domain.Category{ID: c.ID, Name: c.Name, Description: c.Description}
		categories[c.ID] = cat
		next.categories = append(next.categories, cat)
	}
	for _, s := range seed.Sizes {
		size := &domain.Size{ID: s.ID, Name: s.Name}
		sizes[s.ID] = size
		next.sizes = append(next.sizes, size)
	}

	var valueID int64
	for _, t := range seed.AttributeTemplates {
		tmpl := &domain.AttributeTemplate{ID: t.ID, Name: t.Name}
		key := strings.ToLower(t.Name)
		templates[key] = tmpl
		values[key] = make(map[string]domain.AttributeValue, len(t.Values))
		next.templates = append(next.templates, tmpl)
		for _, v := range t.Values {
			valueID++
			av := domain.AttributeValue{ID: valueID, TemplateID: t.ID, Value: v}
			values[key][strings.ToLower(v)] = av
			next.values = append(next.values, &av)
		}
	}

	for _, u := range seed.Users {
		next.users = append(next.users, &domain.User{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role})
	}

	for _, sp := range seed.Products {
		p, err := sp.toDomain(categories, sizes, templates, values)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("seed product %q: %w", sp.Name, err)
		}
		if _, dup := next.skuTaken(p); dup {
			return fmt.Errorf("seed product %q: %w", sp.Name, domain.ErrDuplicateSKU)
		}
		next.products = append(next.products, p)
		next.byID[p.ID] = p
	}

	r.mu.Lock()
	r.products = next.products
	r.byID = next.byID
	r.categories = next.categories
	r.sizes = next.sizes
	r.templates = next.templates
	r.values = next.values
	r.users = next.users
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "Catalog seed loaded",
		slog.Int("products", len(next.products)),
		slog.Int("categories", len(next.categories)),
		slog.Int("attribute_templates", len(next.templates)),
	)
	return nil
}

func (sp seedProduct) toDomain(
	categories map[int64]*domain.Category,
	sizes map[int64]*domain.Size,
	templates map[string]*domain.AttributeTemplate,
	values map[string]map[string]domain.AttributeValue,
) (*domain.Product, error) {
	now := time.Now()
	p := &domain.Product{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	if sp.CategoryID != 0 {
		cat, ok := categories[sp.CategoryID]
		if !ok {
			return nil, fmt.Errorf("unknown category id %d", sp.CategoryID)
		}
		p.Category = cat
	}

	for _, sv := range sp.Variants {
		v := domain.ProductVariant{
			ID:           uuid.New().String(),
			PriceInCents: sv.PriceInCents,
			SKU:          sv.SKU,
			Stock:        sv.Stock,
		}
		if sv.SizeID != 0 {
			size, ok := sizes[sv.SizeID]
			if !ok {
				return nil, fmt.Errorf("unknown size id %d", sv.SizeID)
			}
			v.Size = size
		}
		p.Variants = append(p.Variants, v)
	}

	for _, name := range slices.Sorted(maps.Keys(sp.Attributes)) {
		key := strings.ToLower(name)
		tmpl, ok := templates[key]
		if !ok {
			return nil, fmt.Errorf("unknown attribute template %q", name)
		}
		attr := domain.ProductAttribute{Template: tmpl}
		for _, raw := range sp.Attributes[name] {
			av, ok := values[key][strings.ToLower(raw)]
			if !ok {
				return nil, fmt.Errorf("value %q is not permitted for attribute %q", raw, name)
			}
			attr.Values = append(attr.Values, av)
		}
		p.Attributes = append(p.Attributes, attr)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
