package domain

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSKU    = errors.New("sku already exists")
	ErrUnknownRef      = errors.New("referenced catalog entity does not exist")
)

// ProductRepository defines the contract for product storage
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
}

// CatalogRepository exposes the reference entities the query layer searches over.
// Every Find* call returns a fresh slice the caller may treat as a read-only snapshot.
type CatalogRepository interface {
	FindCategories(ctx context.Context) ([]*Category, error)
	FindSizes(ctx context.Context) ([]*Size, error)
	FindAttributeTemplates(ctx context.Context) ([]*AttributeTemplate, error)
	FindAttributeValues(ctx context.Context) ([]*AttributeValue, error)
	FindUsers(ctx context.Context) ([]*User, error)
}
