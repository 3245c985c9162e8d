package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/madina-markt/api/internal/domain"
	"github.com/madina-markt/api/internal/platform/httpx"
	"github.com/madina-markt/api/internal/platform/pagination"
	"github.com/madina-markt/api/internal/services"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

var catalogPageOptions = pagination.Options{
	DefaultPageSize: defaultPageSize,
	MaxPageSize:     maxPageSize,
}

// PublicCatalogHandlers serves the unauthenticated catalog reads backing the
// storefront.
type PublicCatalogHandlers struct {
	catalog services.CatalogService
}

// NewPublicCatalogHandlers constructs the public catalog handlers.
func NewPublicCatalogHandlers(catalog services.CatalogService) *PublicCatalogHandlers {
	return &PublicCatalogHandlers{catalog: catalog}
}

// Routes wires the public catalog endpoints onto the /public group.
func (h *PublicCatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/offers", h.listOffers)
	r.Get("/categories", h.listCategories)
}

// parsePagination validates pageSize/pageToken and rejects malformed values
// before any repository work happens.
func parsePagination(ctx context.Context, w http.ResponseWriter, r *http.Request) (domain.Pagination, bool) {
	params, err := pagination.FromRequest(r, catalogPageOptions)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return domain.Pagination{}, false
	}
	return domain.Pagination{PageSize: params.PageSize, PageToken: params.PageToken}, true
}

func (h *PublicCatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pager, ok := parsePagination(ctx, w, r)
	if !ok {
		return
	}
	page, err := h.catalog.ListProducts(ctx, services.ProductListQuery{
		CategoryID: strings.TrimSpace(r.URL.Query().Get("category")),
		Pager:      pager,
	})
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	items := make([]productPayload, 0, len(page.Items))
	for _, product := range page.Items {
		items = append(items, buildProductPayload(product))
	}
	writeJSONResponse(w, http.StatusOK, struct {
		Items         []productPayload `json:"items"`
		NextPageToken string           `json:"nextPageToken,omitempty"`
	}{Items: items, NextPageToken: page.NextPageToken})
}

func (h *PublicCatalogHandlers) listOffers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pager, ok := parsePagination(ctx, w, r)
	if !ok {
		return
	}
	page, err := h.catalog.ListActiveOffers(ctx, pager)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	items := make([]offerPayload, 0, len(page.Items))
	for _, offer := range page.Items {
		items = append(items, buildOfferPayload(offer))
	}
	writeJSONResponse(w, http.StatusOK, struct {
		Items         []offerPayload `json:"items"`
		NextPageToken string         `json:"nextPageToken,omitempty"`
	}{Items: items, NextPageToken: page.NextPageToken})
}

func (h *PublicCatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	items := make([]categoryPayload, 0, len(categories))
	for _, category := range categories {
		items = append(items, buildCategoryPayload(category))
	}
	writeJSONResponse(w, http.StatusOK, struct {
		Items []categoryPayload `json:"items"`
	}{Items: items})
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCatalogNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", err.Error(), http.StatusNotFound))
	case errors.Is(err, services.ErrCatalogConflict):
		httpx.WriteError(ctx, w, httpx.NewError("conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrCatalogUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog backend is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unexpected catalog failure", http.StatusInternalServerError))
	}
}
