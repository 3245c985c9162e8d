package services

import (
	"context"

	domain "github.com/madina-markt/api/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Pagination          = domain.Pagination
	Locale              = domain.Locale
	Product             = domain.Product
	Offer               = domain.Offer
	Category            = domain.Category
	Cart                = domain.Cart
	CartLine            = domain.CartLine
	Fulfillment         = domain.Fulfillment
	SystemHealthReport  = domain.SystemHealthReport
	SignedAssetResponse = domain.SignedAssetResponse
)

// CartService owns the mutable cart state for every storefront session. All
// mutations are serialised per cart; line changes persist to the repository
// with failures logged and swallowed, the in-memory state staying authoritative.
type CartService interface {
	Get(ctx context.Context, cartID string) (Cart, error)
	AddProduct(ctx context.Context, cartID, productID string) (Cart, error)
	AddOffer(ctx context.Context, cartID, offerID string) (Cart, error)
	RemoveLine(ctx context.Context, cartID, lineID string) (Cart, error)
	Clear(ctx context.Context, cartID string) (Cart, error)
	Toggle(ctx context.Context, cartID string) (Cart, error)
	Close(ctx context.Context, cartID string) (Cart, error)
}

// CheckoutLink is the rendered WhatsApp order message and deep link.
type CheckoutLink struct {
	Message string
	URL     string
}

// CheckoutService renders cart contents into a WhatsApp order message. It is a
// pure formatter: clearing and closing the cart after dispatch is the caller's job.
type CheckoutService interface {
	BuildOrderLink(lines []CartLine, locale Locale, fulfillment Fulfillment) (CheckoutLink, error)
}

// CatalogService serves public catalog reads and admin CRUD.
type CatalogService interface {
	ListProducts(ctx context.Context, query ProductListQuery) (domain.CursorPage[Product], error)
	ListActiveOffers(ctx context.Context, pager Pagination) (domain.CursorPage[Offer], error)
	ListCategories(ctx context.Context) ([]Category, error)

	GetProduct(ctx context.Context, productID string) (Product, error)
	UpsertProduct(ctx context.Context, cmd UpsertProductCommand) (Product, error)
	DeleteProduct(ctx context.Context, productID string) error

	ListOffers(ctx context.Context, pager Pagination) (domain.CursorPage[Offer], error)
	GetOffer(ctx context.Context, offerID string) (Offer, error)
	UpsertOffer(ctx context.Context, cmd UpsertOfferCommand) (Offer, error)
	DeleteOffer(ctx context.Context, offerID string) error

	UpsertCategory(ctx context.Context, cmd UpsertCategoryCommand) (Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
}

// AuthService gates the admin surface behind the configured password with
// per-client lockout bookkeeping.
type AuthService interface {
	Login(ctx context.Context, clientKey, password string) error
	LockoutRemaining(clientKey string) (attempts int, locked bool)
}

// AssetService issues signed upload and download URLs for catalog images.
type AssetService interface {
	SignUpload(ctx context.Context, cmd SignUploadCommand) (SignedAssetResponse, error)
	SignDownload(ctx context.Context, cmd SignDownloadCommand) (SignedAssetResponse, error)
}

// SystemService provides health reports and runtime metadata.
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}
