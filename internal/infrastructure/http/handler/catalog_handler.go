package handler

import (
	"context"
	"net/http"

	"github.com/peterbokern/makibeans/internal/app/query"
	"github.com/peterbokern/makibeans/internal/app/service"
	"github.com/peterbokern/makibeans/internal/infrastructure/http/response"
)

// CatalogHandler serves searches over categories, sizes, attributes and users
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListCategories handles GET /categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.service.SearchCategories)
}

// ListSizes handles GET /sizes
func (h *CatalogHandler) ListSizes(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.service.SearchSizes)
}

// ListAttributeTemplates handles GET /attribute-templates
func (h *CatalogHandler) ListAttributeTemplates(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.service.SearchAttributeTemplates)
}

// ListAttributeValues handles GET /attribute-values
func (h *CatalogHandler) ListAttributeValues(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.service.SearchAttributeValues)
}

// ListUsers handles GET /users
func (h *CatalogHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.service.SearchUsers)
}

func list[R any](w http.ResponseWriter, r *http.Request, search func(context.Context, query.Params) ([]R, error)) {
	items, err := search(r.Context(), flattenQuery(r.URL.Query()))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, items)
}
