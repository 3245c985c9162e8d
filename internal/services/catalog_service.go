package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	domain "github.com/madina-markt/api/internal/domain"
	"github.com/madina-markt/api/internal/repositories"
)

var (
	errCatalogRepositoryRequired = errors.New("catalog service: repository is required")
	errCatalogClockRequired      = errors.New("catalog service: clock is required")
)

// ErrCatalogInvalidInput indicates the caller supplied invalid input.
var ErrCatalogInvalidInput = errors.New("catalog service: invalid input")

// ErrCatalogNotFound indicates the requested catalog entity does not exist.
var ErrCatalogNotFound = errors.New("catalog service: not found")

// ErrCatalogConflict indicates the catalog entity could not be changed due to a conflicting state.
var ErrCatalogConflict = errors.New("catalog service: conflict")

// ErrCatalogUnavailable indicates the catalog backend cannot fulfil the request.
var ErrCatalogUnavailable = errors.New("catalog service: unavailable")

// ProductListQuery narrows public and admin product listings.
type ProductListQuery struct {
	CategoryID string
	Pager      Pagination
}

// UpsertProductCommand carries the writable product fields. An empty ID creates
// a new product with a minted identifier.
type UpsertProductCommand struct {
	ID         string
	Name       string
	NameNL     string
	NameAR     string
	Price      decimal.Decimal
	InStock    bool
	Image      string
	CategoryID string
}

// UpsertOfferCommand carries the writable offer fields. An empty ID creates a
// new offer with a minted identifier.
type UpsertOfferCommand struct {
	ID          string
	Title       string
	TitleNL     string
	TitleAR     string
	Description string
	Price       decimal.Decimal
	PriceBefore *decimal.Decimal
	PriceAfter  *decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
	IsActive    bool
	Image       string
}

// UpsertCategoryCommand carries the writable category fields.
type UpsertCategoryCommand struct {
	ID       string
	Name     string
	NameNL   string
	NameAR   string
	Position int
}

// CatalogServiceDeps wires persistence and time for catalog operations.
type CatalogServiceDeps struct {
	Repository  repositories.CatalogRepository
	Clock       func() time.Time
	Logger      func(context.Context, string, map[string]any)
	IDGenerator func() string
}

type catalogService struct {
	repo   repositories.CatalogRepository
	now    func() time.Time
	newID  func() string
	logger func(context.Context, string, map[string]any)
}

// NewCatalogService constructs a CatalogService enforcing dependency validation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Repository == nil {
		return nil, errCatalogRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errCatalogClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	service := &catalogService{
		repo:   deps.Repository,
		now:    func() time.Time { return deps.Clock().UTC() },
		newID:  idGen,
		logger: logger,
	}
	return service, nil
}

// ListProducts returns a product page, optionally scoped to a category.
func (s *catalogService) ListProducts(ctx context.Context, query ProductListQuery) (domain.CursorPage[Product], error) {
	page, err := s.repo.ListProducts(ctx, repositories.ProductListFilter{
		CategoryID: strings.TrimSpace(query.CategoryID),
		Pager:      query.Pager,
	})
	if err != nil {
		return domain.CursorPage[Product]{}, s.translate("list products", err)
	}
	return page, nil
}

// ListActiveOffers returns the offers currently inside their active window.
// Filtering happens after the page read, so a page can come back short; the
// storefront renders offers as a single page in practice.
func (s *catalogService) ListActiveOffers(ctx context.Context, pager Pagination) (domain.CursorPage[Offer], error) {
	page, err := s.repo.ListOffers(ctx, pager)
	if err != nil {
		return domain.CursorPage[Offer]{}, s.translate("list offers", err)
	}

	now := s.now()
	active := make([]Offer, 0, len(page.Items))
	for _, offer := range page.Items {
		if offer.CurrentAt(now) {
			active = append(active, offer)
		}
	}
	page.Items = active
	return page, nil
}

// ListCategories returns all categories ordered by position.
func (s *catalogService) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, s.translate("list categories", err)
	}
	return categories, nil
}

// GetProduct loads a single product by identifier.
func (s *catalogService) GetProduct(ctx context.Context, productID string) (Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return Product{}, s.translate("get product", err)
	}
	return product, nil
}

// UpsertProduct creates or updates a product, minting an identifier when absent.
func (s *catalogService) UpsertProduct(ctx context.Context, cmd UpsertProductCommand) (Product, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return Product{}, fmt.Errorf("%w: product name is required", ErrCatalogInvalidInput)
	}
	if cmd.Price.IsNegative() {
		return Product{}, fmt.Errorf("%w: product price must not be negative", ErrCatalogInvalidInput)
	}

	now := s.now()
	product := domain.Product{
		ID:         strings.TrimSpace(cmd.ID),
		Name:       strings.TrimSpace(cmd.Name),
		NameNL:     strings.TrimSpace(cmd.NameNL),
		NameAR:     strings.TrimSpace(cmd.NameAR),
		Price:      cmd.Price,
		InStock:    cmd.InStock,
		Image:      strings.TrimSpace(cmd.Image),
		CategoryID: strings.TrimSpace(cmd.CategoryID),
		UpdatedAt:  now,
	}

	if product.ID == "" {
		product.ID = s.newID()
		product.CreatedAt = now
	} else {
		existing, err := s.repo.GetProduct(ctx, product.ID)
		if err != nil {
			return Product{}, s.translate("get product", err)
		}
		product.CreatedAt = existing.CreatedAt
	}

	saved, err := s.repo.UpsertProduct(ctx, product)
	if err != nil {
		return Product{}, s.translate("upsert product", err)
	}
	s.logger(ctx, "catalog.product.upserted", map[string]any{"product_id": saved.ID})
	return saved, nil
}

// DeleteProduct removes a product; deleting an absent product is not an error.
func (s *catalogService) DeleteProduct(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil && !isRepoNotFound(err) {
		return s.translate("delete product", err)
	}
	return nil
}

// ListOffers returns an unfiltered offer page for the admin surface.
func (s *catalogService) ListOffers(ctx context.Context, pager Pagination) (domain.CursorPage[Offer], error) {
	page, err := s.repo.ListOffers(ctx, pager)
	if err != nil {
		return domain.CursorPage[Offer]{}, s.translate("list offers", err)
	}
	return page, nil
}

// GetOffer loads a single offer by identifier.
func (s *catalogService) GetOffer(ctx context.Context, offerID string) (Offer, error) {
	offerID = strings.TrimSpace(offerID)
	if offerID == "" {
		return Offer{}, fmt.Errorf("%w: offer id is required", ErrCatalogInvalidInput)
	}
	offer, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		return Offer{}, s.translate("get offer", err)
	}
	return offer, nil
}

// UpsertOffer creates or updates an offer, minting an identifier when absent.
func (s *catalogService) UpsertOffer(ctx context.Context, cmd UpsertOfferCommand) (Offer, error) {
	if strings.TrimSpace(cmd.Title) == "" {
		return Offer{}, fmt.Errorf("%w: offer title is required", ErrCatalogInvalidInput)
	}
	if cmd.Price.IsNegative() {
		return Offer{}, fmt.Errorf("%w: offer price must not be negative", ErrCatalogInvalidInput)
	}
	if !cmd.StartDate.IsZero() && !cmd.EndDate.IsZero() && cmd.EndDate.Before(cmd.StartDate) {
		return Offer{}, fmt.Errorf("%w: offer end date precedes start date", ErrCatalogInvalidInput)
	}

	now := s.now()
	offer := domain.Offer{
		ID:          strings.TrimSpace(cmd.ID),
		Title:       strings.TrimSpace(cmd.Title),
		TitleNL:     strings.TrimSpace(cmd.TitleNL),
		TitleAR:     strings.TrimSpace(cmd.TitleAR),
		Description: strings.TrimSpace(cmd.Description),
		Price:       cmd.Price,
		PriceBefore: cmd.PriceBefore,
		PriceAfter:  cmd.PriceAfter,
		StartDate:   cmd.StartDate,
		EndDate:     cmd.EndDate,
		IsActive:    cmd.IsActive,
		Image:       strings.TrimSpace(cmd.Image),
		UpdatedAt:   now,
	}

	if offer.ID == "" {
		offer.ID = s.newID()
		offer.CreatedAt = now
	} else {
		existing, err := s.repo.GetOffer(ctx, offer.ID)
		if err != nil {
			return Offer{}, s.translate("get offer", err)
		}
		offer.CreatedAt = existing.CreatedAt
	}

	saved, err := s.repo.UpsertOffer(ctx, offer)
	if err != nil {
		return Offer{}, s.translate("upsert offer", err)
	}
	s.logger(ctx, "catalog.offer.upserted", map[string]any{"offer_id": saved.ID})
	return saved, nil
}

// DeleteOffer removes an offer; deleting an absent offer is not an error.
func (s *catalogService) DeleteOffer(ctx context.Context, offerID string) error {
	offerID = strings.TrimSpace(offerID)
	if offerID == "" {
		return fmt.Errorf("%w: offer id is required", ErrCatalogInvalidInput)
	}
	if err := s.repo.DeleteOffer(ctx, offerID); err != nil && !isRepoNotFound(err) {
		return s.translate("delete offer", err)
	}
	return nil
}

// UpsertCategory creates or updates a category, minting an identifier when absent.
func (s *catalogService) UpsertCategory(ctx context.Context, cmd UpsertCategoryCommand) (Category, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return Category{}, fmt.Errorf("%w: category name is required", ErrCatalogInvalidInput)
	}
	if cmd.Position < 0 {
		return Category{}, fmt.Errorf("%w: category position must not be negative", ErrCatalogInvalidInput)
	}

	now := s.now()
	category := domain.Category{
		ID:        strings.TrimSpace(cmd.ID),
		Name:      strings.TrimSpace(cmd.Name),
		NameNL:    strings.TrimSpace(cmd.NameNL),
		NameAR:    strings.TrimSpace(cmd.NameAR),
		Position:  cmd.Position,
		UpdatedAt: now,
	}
	if category.ID == "" {
		category.ID = s.newID()
		category.CreatedAt = now
	} else {
		existing, err := s.repo.GetCategory(ctx, category.ID)
		if err != nil {
			return Category{}, s.translate("get category", err)
		}
		category.CreatedAt = existing.CreatedAt
	}

	saved, err := s.repo.UpsertCategory(ctx, category)
	if err != nil {
		return Category{}, s.translate("upsert category", err)
	}
	s.logger(ctx, "catalog.category.upserted", map[string]any{"category_id": saved.ID})
	return saved, nil
}

// DeleteCategory removes a category. Categories still referenced by products
// are refused with a conflict.
func (s *catalogService) DeleteCategory(ctx context.Context, categoryID string) error {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return fmt.Errorf("%w: category id is required", ErrCatalogInvalidInput)
	}
	err := s.repo.DeleteCategory(ctx, categoryID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrCategoryInUse):
		return fmt.Errorf("%w: category %s still has products", ErrCatalogConflict, categoryID)
	case isRepoNotFound(err):
		return nil
	default:
		return s.translate("delete category", err)
	}
}

func (s *catalogService) translate(op string, err error) error {
	switch {
	case isRepoNotFound(err):
		return fmt.Errorf("%w: %s", ErrCatalogNotFound, op)
	case isRepoConflict(err):
		return fmt.Errorf("%w: %s", ErrCatalogConflict, op)
	default:
		return fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, op, err)
	}
}
