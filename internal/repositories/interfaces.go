package repositories

import (
	"context"
	"errors"

	domain "github.com/madina-markt/api/internal/domain"
)

// ErrCategoryInUse signals a category delete was refused because products still reference it.
var ErrCategoryInUse = errors.New("catalog repository: category still referenced by products")

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Carts() CartRepository
	Catalog() CatalogRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CartRepository persists cart lines keyed by the cookie-held cart ID. The
// stored payload mirrors the in-memory line slice; the open/closed flag is
// presentational and never persisted.
type CartRepository interface {
	Save(ctx context.Context, cartID string, lines []domain.CartLine) error
	Load(ctx context.Context, cartID string) ([]domain.CartLine, error)
	Delete(ctx context.Context, cartID string) error
}

// ProductListFilter narrows product listings.
type ProductListFilter struct {
	CategoryID string
	Pager      domain.Pagination
}

// CatalogRepository owns products, offers, and categories persistence.
type CatalogRepository interface {
	ListProducts(ctx context.Context, filter ProductListFilter) (domain.CursorPage[domain.Product], error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	UpsertProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error

	ListOffers(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Offer], error)
	GetOffer(ctx context.Context, offerID string) (domain.Offer, error)
	UpsertOffer(ctx context.Context, offer domain.Offer) (domain.Offer, error)
	DeleteOffer(ctx context.Context, offerID string) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, categoryID string) (domain.Category, error)
	UpsertCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
}

// HealthRepository aggregates dependency probes for readiness reporting.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
