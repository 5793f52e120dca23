package dto

import (
	"time"

	"github.com/peterbokern/makibeans/internal/app/query"
	"github.com/peterbokern/makibeans/internal/domain"
)

// CreateProductRequest represents the request to create a product
type CreateProductRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	CategoryID  int64                  `json:"categoryId"`
	Variants    []CreateVariantRequest `json:"variants"`
	Attributes  map[string][]string    `json:"attributes"`
}

// CreateVariantRequest describes one variant of a new product
type CreateVariantRequest struct {
	SizeID       int64  `json:"sizeId"`
	PriceInCents int64  `json:"priceInCents"`
	SKU          string `json:"sku"`
	Stock        int64  `json:"stock"`
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    *CategoryResponse   `json:"category,omitempty"`
	Variants    []VariantResponse   `json:"variants"`
	Attributes  []AttributeResponse `json:"attributes"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type VariantResponse struct {
	ID           string        `json:"id"`
	Size         *SizeResponse `json:"size,omitempty"`
	PriceInCents int64         `json:"priceInCents"`
	SKU          string        `json:"sku"`
	Stock        int64         `json:"stock"`
}

type AttributeResponse struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ProductPage is the page envelope returned by product queries
type ProductPage struct {
	Content       []*ProductResponse `json:"content"`
	Page          int                `json:"page"`
	Size          int                `json:"size"`
	TotalElements int                `json:"totalElements"`
	TotalPages    int                `json:"totalPages"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	resp := &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Variants:    make([]VariantResponse, len(p.Variants)),
		Attributes:  make([]AttributeResponse, 0, len(p.Attributes)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		resp.Category = ToCategoryResponse(p.Category)
	}
	for i, v := range p.Variants {
		resp.Variants[i] = VariantResponse{
			ID:           v.ID,
			PriceInCents: v.PriceInCents,
			SKU:          v.SKU,
			Stock:        v.Stock,
		}
		if v.Size != nil {
			resp.Variants[i].Size = ToSizeResponse(v.Size)
		}
	}
	for _, a := range p.Attributes {
		if a.Template == nil {
			continue
		}
		values := make([]string, len(a.Values))
		for i, v := range a.Values {
			values[i] = v.Value
		}
		resp.Attributes = append(resp.Attributes, AttributeResponse{Name: a.Template.Name, Values: values})
	}
	return resp
}

// ToProductPage converts an engine page into the response envelope
func ToProductPage(p query.Page[*domain.Product]) *ProductPage {
	mapped := query.MapPage(p, ToProductResponse)
	return &ProductPage{
		Content:       mapped.Content,
		Page:          mapped.Page,
		Size:          mapped.Size,
		TotalElements: mapped.TotalElements,
		TotalPages:    mapped.TotalPages,
	}
}
