package query

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"github.com/peterbokern/makibeans/internal/domain"
)

// Structured product query keys. Any other key must name an attribute template.
const (
	KeyCategoryID   = "categoryId"
	KeyCategoryName = "categoryName"
	KeyMinPrice     = "minPrice"
	KeyMaxPrice     = "maxPrice"
	KeySizeID       = "sizeId"
	KeySizeName     = "sizeName"
	KeySKU          = "sku"
	KeyStock        = "stock"
	KeySearch       = "search"
	KeySort         = "sort"
	KeyOrder        = "order"
	KeyPage         = "page"
	KeySize         = "size"
)

// Product sort keys.
const (
	SortCategoryName = "categoryName"
	SortPrice        = "priceInCents"
	SortProductName  = "productName"
	SortSizeName     = "sizeName"
)

const DefaultPageSize = 12

var productKeys = NewKeySet(
	KeyCategoryID, KeyCategoryName, KeyMinPrice, KeyMaxPrice,
	KeySizeID, KeySizeName, KeySKU, KeyStock,
	KeySearch, KeySort, KeyOrder, KeyPage, KeySize,
)

// ProductCriteria is the typed form of a product query, built once per call.
type ProductCriteria struct {
	CategoryIDs   []int64
	CategoryNames []string
	SizeIDs       []int64
	SizeNames     []string
	SKUs          []string
	MinPrice      *int64
	MaxPrice      *int64
	Stock         *int64
	Search        string
	Sort          string
	Order         string
	Page          int
	Size          int
	// Attributes maps lower-cased template names to their accepted lower-cased values.
	Attributes map[string][]string
}

// ParseProductCriteria validates params against the structured keys plus attributeKeys
// (matched case-insensitively) and extracts the typed criteria.
func ParseProductCriteria(params Params, attributeKeys []string) (*ProductCriteria, error) {
	attrs := make(KeySet, len(attributeKeys))
	for _, k := range attributeKeys {
		attrs[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
	}
	err := validate(params, func(key string) bool {
		return productKeys.Has(key) || attrs.Has(strings.ToLower(key))
	})
	if err != nil {
		return nil, err
	}

	c := &ProductCriteria{
		CategoryNames: ExtractList(params, KeyCategoryName),
		SizeNames:     ExtractList(params, KeySizeName),
		SKUs:          ExtractList(params, KeySKU),
		Sort:          SortPrice,
		Order:         orderAsc,
		Size:          DefaultPageSize,
		Attributes:    map[string][]string{},
	}

	if c.CategoryIDs, err = ExtractInt64List(params, KeyCategoryID); err != nil {
		return nil, err
	}
	if c.SizeIDs, err = ExtractInt64List(params, KeySizeID); err != nil {
		return nil, err
	}
	if c.MinPrice, err = optionalInt64(params, KeyMinPrice); err != nil {
		return nil, err
	}
	if c.MaxPrice, err = optionalInt64(params, KeyMaxPrice); err != nil {
		return nil, err
	}
	if c.Stock, err = optionalInt64(params, KeyStock); err != nil {
		return nil, err
	}
	if page, ok, err := ExtractInt(params, KeyPage); err != nil {
		return nil, err
	} else if ok {
		c.Page = page
	}
	if size, ok, err := ExtractInt(params, KeySize); err != nil {
		return nil, err
	} else if ok {
		c.Size = size
	}
	if c.Size <= 0 {
		return nil, invalidFilter(KeySize, params[KeySize], "page size must be positive for")
	}

	c.Search, _ = ExtractLowerCase(params, KeySearch)
	if sort, ok := ExtractString(params, KeySort); ok {
		c.Sort = sort
	}
	if order, ok := ExtractLowerCase(params, KeyOrder); ok {
		c.Order = order
	}

	for key, raw := range params {
		if productKeys.Has(key) {
			continue
		}
		if values := splitList(raw); len(values) > 0 {
			name := strings.ToLower(key)
			c.Attributes[name] = append(c.Attributes[name], values...)
		}
	}

	return c, nil
}

func optionalInt64(params Params, key string) (*int64, error) {
	v, ok, err := ExtractInt64(params, key)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

// productStage is one predicate of the product pipeline. Stages combine with AND.
type productStage struct {
	name   string
	active bool
	keep   func(*domain.Product) bool
}

func (c *ProductCriteria) stages() []productStage {
	return []productStage{
		{"category", len(c.CategoryIDs) > 0 || len(c.CategoryNames) > 0, c.matchCategory},
		{"price", c.MinPrice != nil || c.MaxPrice != nil, c.matchPrice},
		{"size", len(c.SizeIDs) > 0 || len(c.SizeNames) > 0, c.matchSize},
		{"sku_stock", len(c.SKUs) > 0 || c.Stock != nil, c.matchSKUAndStock},
		{"attributes", len(c.Attributes) > 0, c.matchAttributes},
		{"search", c.Search != "", c.matchSearch},
	}
}

func (c *ProductCriteria) matchCategory(p *domain.Product) bool {
	if len(c.CategoryIDs) > 0 && (p.Category == nil || !slices.Contains(c.CategoryIDs, p.Category.ID)) {
		return false
	}
	// uncategorized products have an empty name, which never appears in the list
	if len(c.CategoryNames) > 0 && !slices.Contains(c.CategoryNames, strings.ToLower(p.CategoryName())) {
		return false
	}
	return true
}

// matchPrice checks each bound against the variants independently, so two different
// variants may satisfy minPrice and maxPrice respectively.
func (c *ProductCriteria) matchPrice(p *domain.Product) bool {
	if c.MinPrice != nil && !anyVariant(p, func(v domain.ProductVariant) bool { return v.PriceInCents >= *c.MinPrice }) {
		return false
	}
	if c.MaxPrice != nil && !anyVariant(p, func(v domain.ProductVariant) bool { return v.PriceInCents <= *c.MaxPrice }) {
		return false
	}
	return true
}

func (c *ProductCriteria) matchSize(p *domain.Product) bool {
	if len(c.SizeIDs) > 0 && !anyVariant(p, func(v domain.ProductVariant) bool {
		return v.Size != nil && slices.Contains(c.SizeIDs, v.Size.ID)
	}) {
		return false
	}
	if len(c.SizeNames) > 0 && !anyVariant(p, func(v domain.ProductVariant) bool {
		return v.Size != nil && slices.Contains(c.SizeNames, strings.ToLower(v.Size.Name))
	}) {
		return false
	}
	return true
}

func (c *ProductCriteria) matchSKUAndStock(p *domain.Product) bool {
	if len(c.SKUs) > 0 && !anyVariant(p, func(v domain.ProductVariant) bool {
		return slices.Contains(c.SKUs, strings.ToLower(v.SKU))
	}) {
		return false
	}
	if c.Stock != nil && !anyVariant(p, func(v domain.ProductVariant) bool { return v.Stock >= *c.Stock }) {
		return false
	}
	return true
}

// matchAttributes requires, for every filtered template, one product attribute of that
// template holding at least one of the requested values.
func (c *ProductCriteria) matchAttributes(p *domain.Product) bool {
	for name, wanted := range c.Attributes {
		found := slices.ContainsFunc(p.Attributes, func(a domain.ProductAttribute) bool {
			if a.Template == nil || strings.ToLower(a.Template.Name) != name {
				return false
			}
			return slices.ContainsFunc(a.Values, func(v domain.AttributeValue) bool {
				return slices.Contains(wanted, strings.ToLower(v.Value))
			})
		})
		if !found {
			return false
		}
	}
	return true
}

func (c *ProductCriteria) matchSearch(p *domain.Product) bool {
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), c.Search) }
	if contains(p.Name) || contains(p.Description) {
		return true
	}
	for _, a := range p.Attributes {
		if a.Template != nil && contains(a.Template.Name) {
			return true
		}
		for _, v := range a.Values {
			if contains(v.Value) {
				return true
			}
		}
	}
	return false
}

func anyVariant(p *domain.Product, pred func(domain.ProductVariant) bool) bool {
	return slices.ContainsFunc(p.Variants, pred)
}

var productSorts = map[string]Comparator[*domain.Product]{
	SortCategoryName: func(a, b *domain.Product) int {
		return cmp.Compare(strings.ToLower(a.CategoryName()), strings.ToLower(b.CategoryName()))
	},
	SortPrice: func(a, b *domain.Product) int {
		return compareOptional(a.MinPrice, b.MinPrice)
	},
	SortProductName: func(a, b *domain.Product) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	},
	SortSizeName: func(a, b *domain.Product) int {
		return compareOptional(a.MinSizeName, b.MinSizeName)
	},
}

// compareOptional orders present keys before absent ones.
func compareOptional[K cmp.Ordered](a, b func() (K, bool)) int {
	ka, okA := a()
	kb, okB := b()
	switch {
	case okA && okB:
		return cmp.Compare(ka, kb)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}

func (c *ProductCriteria) comparator() Comparator[*domain.Product] {
	compare, ok := productSorts[c.Sort]
	if !ok {
		compare = productSorts[SortPrice]
	}
	if c.Order == orderDesc {
		compare = reversed(compare)
	}
	return compare
}

// ProductEngine filters, sorts and paginates a product snapshot. It keeps no state
// between calls and never mutates the snapshot it is given.
type ProductEngine struct {
	logger *slog.Logger
}

// NewProductEngine creates a product engine that logs pipeline details at debug level.
func NewProductEngine(logger *slog.Logger) *ProductEngine {
	return &ProductEngine{logger: logger}
}

// Apply runs a product query. attributeKeys are the attribute template names
// accepted as extra filter keys.
func (e *ProductEngine) Apply(params Params, products []*domain.Product, attributeKeys []string) (Page[*domain.Product], error) {
	criteria, err := ParseProductCriteria(params, attributeKeys)
	if err != nil {
		return Page[*domain.Product]{}, err
	}
	return e.Run(criteria, products)
}

// Run executes already-parsed criteria against products.
func (e *ProductEngine) Run(criteria *ProductCriteria, products []*domain.Product) (Page[*domain.Product], error) {
	result := slices.Clone(products)
	for _, stage := range criteria.stages() {
		if !stage.active {
			continue
		}
		result = slices.DeleteFunc(result, func(p *domain.Product) bool { return !stage.keep(p) })
		e.logger.Debug("Product filter stage applied",
			slog.String("stage", stage.name),
			slog.Int("remaining", len(result)),
		)
	}

	slices.SortStableFunc(result, criteria.comparator())

	return Paginate(result, criteria.Page, criteria.Size)
}
