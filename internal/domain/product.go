package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidProductName    = errors.New("product name is required")
	ErrInvalidVariantPrice   = errors.New("variant price cannot be negative")
	ErrInvalidVariantStock   = errors.New("variant stock cannot be negative")
	ErrInvalidVariantSKU     = errors.New("variant sku is required")
	ErrInvalidAttributeValue = errors.New("attribute must reference a template and hold at least one value")
)

// Product represents the product entity
type Product struct {
	ID          string
	Name        string
	Description string
	Category    *Category
	Variants    []ProductVariant
	Attributes  []ProductAttribute
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductVariant is a purchasable size of a product. Price is in minor currency units.
type ProductVariant struct {
	ID           string
	Size         *Size
	PriceInCents int64
	SKU          string
	Stock        int64
}

// ProductAttribute binds a template (e.g. "origin") to the values a product carries for it.
type ProductAttribute struct {
	Template *AttributeTemplate
	Values   []AttributeValue
}

// NewProduct creates a new product with validation
func NewProduct(name, description string, category *Category, variants []ProductVariant, attributes []ProductAttribute) (*Product, error) {
	now := time.Now()
	product := &Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Category:    category,
		Variants:    variants,
		Attributes:  attributes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for i := range product.Variants {
		if product.Variants[i].ID == "" {
			product.Variants[i].ID = uuid.New().String()
		}
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidProductName
	}
	for _, v := range p.Variants {
		if v.PriceInCents < 0 {
			return ErrInvalidVariantPrice
		}
		if v.Stock < 0 {
			return ErrInvalidVariantStock
		}
		if strings.TrimSpace(v.SKU) == "" {
			return ErrInvalidVariantSKU
		}
	}
	for _, a := range p.Attributes {
		if a.Template == nil || len(a.Values) == 0 {
			return ErrInvalidAttributeValue
		}
	}
	return nil
}

// CategoryName returns the product's category name, or "" when uncategorized.
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// MinPrice returns the cheapest variant price. ok is false when the product has no variants.
func (p *Product) MinPrice() (price int64, ok bool) {
	for i, v := range p.Variants {
		if i == 0 || v.PriceInCents < price {
			price = v.PriceInCents
		}
	}
	return price, len(p.Variants) > 0
}

// MinSizeName returns the lexically smallest lower-cased size name across variants.
func (p *Product) MinSizeName() (name string, ok bool) {
	for _, v := range p.Variants {
		if v.Size == nil {
			continue
		}
		n := strings.ToLower(v.Size.Name)
		if !ok || n < name {
			name, ok = n, true
		}
	}
	return name, ok
}
