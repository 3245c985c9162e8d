package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/madina-markt/api/internal/platform/httpx"
	"github.com/madina-markt/api/internal/services"
)

const maxCatalogBodySize = 64 * 1024

// AdminCatalogHandlers serves the authenticated catalog CRUD endpoints.
type AdminCatalogHandlers struct {
	catalog services.CatalogService
}

// NewAdminCatalogHandlers constructs the admin catalog handlers.
func NewAdminCatalogHandlers(catalog services.CatalogService) *AdminCatalogHandlers {
	return &AdminCatalogHandlers{catalog: catalog}
}

// Routes wires the catalog CRUD endpoints onto the /admin group.
func (h *AdminCatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Post("/", h.createProduct)
		pr.Get("/{productID}", h.getProduct)
		pr.Put("/{productID}", h.updateProduct)
		pr.Delete("/{productID}", h.deleteProduct)
	})
	r.Route("/offers", func(or chi.Router) {
		or.Get("/", h.listOffers)
		or.Post("/", h.createOffer)
		or.Get("/{offerID}", h.getOffer)
		or.Put("/{offerID}", h.updateOffer)
		or.Delete("/{offerID}", h.deleteOffer)
	})
	r.Route("/categories", func(cr chi.Router) {
		cr.Get("/", h.listCategories)
		cr.Post("/", h.createCategory)
		cr.Put("/{categoryID}", h.updateCategory)
		cr.Delete("/{categoryID}", h.deleteCategory)
	})
}

type productRequest struct {
	Name       string `json:"name"`
	NameNL     string `json:"nameNl"`
	NameAR     string `json:"nameAr"`
	Price      string `json:"price"`
	InStock    bool   `json:"inStock"`
	Image      string `json:"image"`
	CategoryID string `json:"categoryId"`
}

type offerRequest struct {
	Title       string  `json:"title"`
	TitleNL     string  `json:"titleNl"`
	TitleAR     string  `json:"titleAr"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	PriceBefore *string `json:"priceBefore"`
	PriceAfter  *string `json:"priceAfter"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	IsActive    bool    `json:"isActive"`
	Image       string  `json:"image"`
}

type categoryRequest struct {
	Name     string `json:"name"`
	NameNL   string `json:"nameNl"`
	NameAR   string `json:"nameAr"`
	Position int    `json:"position"`
}

func decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := readLimitedBody(r, maxCatalogBodySize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return false
	}
	return true
}

// parsePrice accepts canonical period-decimal amounts ("4.50"). An empty value
// parses to zero; the service rejects it where a price is required.
func parsePrice(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, true
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

func parseOptionalPrice(raw *string) (*decimal.Decimal, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	value, ok := parsePrice(*raw)
	if !ok {
		return nil, false
	}
	return &value, true
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), true
	}
	if day, err := time.Parse("2006-01-02", raw); err == nil {
		return day.UTC(), true
	}
	return time.Time{}, false
}

func (h *AdminCatalogHandlers) buildProductCommand(ctx context.Context, w http.ResponseWriter, r *http.Request, id string) (services.UpsertProductCommand, bool) {
	var req productRequest
	if !decodeRequest(ctx, w, r, &req) {
		return services.UpsertProductCommand{}, false
	}
	price, ok := parsePrice(req.Price)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "price must be a decimal amount", http.StatusBadRequest))
		return services.UpsertProductCommand{}, false
	}
	return services.UpsertProductCommand{
		ID:         id,
		Name:       req.Name,
		NameNL:     req.NameNL,
		NameAR:     req.NameAR,
		Price:      price,
		InStock:    req.InStock,
		Image:      req.Image,
		CategoryID: req.CategoryID,
	}, true
}

func (h *AdminCatalogHandlers) buildOfferCommand(ctx context.Context, w http.ResponseWriter, r *http.Request, id string) (services.UpsertOfferCommand, bool) {
	var req offerRequest
	if !decodeRequest(ctx, w, r, &req) {
		return services.UpsertOfferCommand{}, false
	}
	price, ok := parsePrice(req.Price)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "price must be a decimal amount", http.StatusBadRequest))
		return services.UpsertOfferCommand{}, false
	}
	priceBefore, ok := parseOptionalPrice(req.PriceBefore)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "priceBefore must be a decimal amount", http.StatusBadRequest))
		return services.UpsertOfferCommand{}, false
	}
	priceAfter, ok := parseOptionalPrice(req.PriceAfter)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "priceAfter must be a decimal amount", http.StatusBadRequest))
		return services.UpsertOfferCommand{}, false
	}
	startDate, ok := parseDate(req.StartDate)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "startDate must be RFC 3339 or YYYY-MM-DD", http.StatusBadRequest))
		return services.UpsertOfferCommand{}, false
	}
	endDate, ok := parseDate(req.EndDate)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "endDate must be RFC 3339 or YYYY-MM-DD", http.StatusBadRequest))
		return services.UpsertOfferCommand{}, false
	}
	return services.UpsertOfferCommand{
		ID:          id,
		Title:       req.Title,
		TitleNL:     req.TitleNL,
		TitleAR:     req.TitleAR,
		Description: req.Description,
		Price:       price,
		PriceBefore: priceBefore,
		PriceAfter:  priceAfter,
		StartDate:   startDate,
		EndDate:     endDate,
		IsActive:    req.IsActive,
		Image:       req.Image,
	}, true
}

func (h *AdminCatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
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

func (h *AdminCatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildProductPayload(product))
}

func (h *AdminCatalogHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cmd, ok := h.buildProductCommand(ctx, w, r, "")
	if !ok {
		return
	}
	product, err := h.catalog.UpsertProduct(ctx, cmd)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildProductPayload(product))
}

func (h *AdminCatalogHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cmd, ok := h.buildProductCommand(ctx, w, r, chi.URLParam(r, "productID"))
	if !ok {
		return
	}
	product, err := h.catalog.UpsertProduct(ctx, cmd)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildProductPayload(product))
}

func (h *AdminCatalogHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.catalog.DeleteProduct(ctx, chi.URLParam(r, "productID")); err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminCatalogHandlers) listOffers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pager, ok := parsePagination(ctx, w, r)
	if !ok {
		return
	}
	page, err := h.catalog.ListOffers(ctx, pager)
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

func (h *AdminCatalogHandlers) getOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offer, err := h.catalog.GetOffer(ctx, chi.URLParam(r, "offerID"))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOfferPayload(offer))
}

func (h *AdminCatalogHandlers) createOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cmd, ok := h.buildOfferCommand(ctx, w, r, "")
	if !ok {
		return
	}
	offer, err := h.catalog.UpsertOffer(ctx, cmd)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildOfferPayload(offer))
}

func (h *AdminCatalogHandlers) updateOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cmd, ok := h.buildOfferCommand(ctx, w, r, chi.URLParam(r, "offerID"))
	if !ok {
		return
	}
	offer, err := h.catalog.UpsertOffer(ctx, cmd)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOfferPayload(offer))
}

func (h *AdminCatalogHandlers) deleteOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.catalog.DeleteOffer(ctx, chi.URLParam(r, "offerID")); err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminCatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
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

func (h *AdminCatalogHandlers) createCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req categoryRequest
	if !decodeRequest(ctx, w, r, &req) {
		return
	}
	category, err := h.catalog.UpsertCategory(ctx, services.UpsertCategoryCommand{
		Name:     req.Name,
		NameNL:   req.NameNL,
		NameAR:   req.NameAR,
		Position: req.Position,
	})
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildCategoryPayload(category))
}

func (h *AdminCatalogHandlers) updateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req categoryRequest
	if !decodeRequest(ctx, w, r, &req) {
		return
	}
	category, err := h.catalog.UpsertCategory(ctx, services.UpsertCategoryCommand{
		ID:       chi.URLParam(r, "categoryID"),
		Name:     req.Name,
		NameNL:   req.NameNL,
		NameAR:   req.NameAR,
		Position: req.Position,
	})
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCategoryPayload(category))
}

func (h *AdminCatalogHandlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.catalog.DeleteCategory(ctx, chi.URLParam(r, "categoryID")); err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
