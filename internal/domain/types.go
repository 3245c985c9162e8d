package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pagination defines standard cursor-based paging inputs for list operations.
type Pagination struct {
	PageSize  int
	PageToken string
}

// CursorPage packages list results with an encoded next token.
type CursorPage[T any] struct {
	Items         []T
	NextPageToken string
}

// Locale identifies one of the storefront display languages.
type Locale string

const (
	// LocaleEN is the English storefront locale and the fallback for missing translations.
	LocaleEN Locale = "en"
	// LocaleNL is the Dutch storefront locale.
	LocaleNL Locale = "nl"
	// LocaleAR is the Arabic storefront locale.
	LocaleAR Locale = "ar"
)

// SupportedLocales lists the locales the storefront renders, fallback first.
var SupportedLocales = []Locale{LocaleEN, LocaleNL, LocaleAR}

// Product is a catalog item as stored and served to the storefront.
type Product struct {
	ID         string
	Name       string
	NameNL     string
	NameAR     string
	Price      decimal.Decimal
	InStock    bool
	Image      string
	CategoryID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LocalizedName resolves the display name for the locale, falling back to the default name.
func (p Product) LocalizedName(locale Locale) string {
	switch locale {
	case LocaleNL:
		if p.NameNL != "" {
			return p.NameNL
		}
	case LocaleAR:
		if p.NameAR != "" {
			return p.NameAR
		}
	}
	return p.Name
}

// Offer is a time-bounded discounted item with its own identity, distinct from a Product.
type Offer struct {
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
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LocalizedTitle resolves the display title for the locale, falling back to the default title.
func (o Offer) LocalizedTitle(locale Locale) string {
	switch locale {
	case LocaleNL:
		if o.TitleNL != "" {
			return o.TitleNL
		}
	case LocaleAR:
		if o.TitleAR != "" {
			return o.TitleAR
		}
	}
	return o.Title
}

// CurrentAt reports whether the offer should be shown at the given instant.
func (o Offer) CurrentAt(now time.Time) bool {
	if !o.IsActive {
		return false
	}
	if !o.StartDate.IsZero() && now.Before(o.StartDate) {
		return false
	}
	if !o.EndDate.IsZero() && now.After(o.EndDate) {
		return false
	}
	return true
}

// Category groups products for storefront navigation.
type Category struct {
	ID        string
	Name      string
	NameNL    string
	NameAR    string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocalizedName resolves the display name for the locale, falling back to the default name.
func (c Category) LocalizedName(locale Locale) string {
	switch locale {
	case LocaleNL:
		if c.NameNL != "" {
			return c.NameNL
		}
	case LocaleAR:
		if c.NameAR != "" {
			return c.NameAR
		}
	}
	return c.Name
}

// LineKind discriminates the two cart line variants.
type LineKind string

const (
	// LineKindProduct marks a cart line holding a product snapshot.
	LineKindProduct LineKind = "product"
	// LineKindOffer marks a cart line holding an offer snapshot.
	LineKindOffer LineKind = "offer"
)

// CartLine is one entry in the cart. ID equals the underlying product or offer
// identifier, never a synthetic per-line id. Exactly one of Product/Offer is set,
// matching Kind; the snapshot is taken by value at add time and never re-fetched.
type CartLine struct {
	ID                string
	Kind              LineKind
	Product           *Product
	Offer             *Offer
	Quantity          int
	UnitPrice         decimal.Decimal
	OriginalUnitPrice decimal.Decimal
}

// DisplayName resolves the line's locale display name from its snapshot.
func (l CartLine) DisplayName(locale Locale) string {
	switch l.Kind {
	case LineKindProduct:
		if l.Product != nil {
			return l.Product.LocalizedName(locale)
		}
	case LineKindOffer:
		if l.Offer != nil {
			return l.Offer.LocalizedTitle(locale)
		}
	}
	return l.ID
}

// LineTotal returns Quantity × UnitPrice.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart aggregates the mutable shopping cart state for one storefront session.
// IsOpen is presentational drawer state and is never persisted.
type Cart struct {
	ID     string
	Lines  []CartLine
	IsOpen bool
}

// TotalItemCount sums the quantities across all lines.
func (c Cart) TotalItemCount() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// Subtotal sums Quantity × UnitPrice across all lines.
func (c Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	return subtotal
}

// FulfillmentKind discriminates order-receipt methods.
type FulfillmentKind string

const (
	// FulfillmentPickup indicates the customer collects the order in store.
	FulfillmentPickup FulfillmentKind = "pickup"
	// FulfillmentDelivery indicates the order is delivered to an address.
	FulfillmentDelivery FulfillmentKind = "delivery"
)

// DeliveryAddress is the address block interpolated into delivery checkout messages.
type DeliveryAddress struct {
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
}

// Fulfillment is the chosen order-receipt method; Address is set only for delivery.
type Fulfillment struct {
	Kind    FulfillmentKind
	Address *DeliveryAddress
}

const (
	// HealthStatusOK indicates all dependencies are healthy.
	HealthStatusOK = "ok"
	// HealthStatusDegraded indicates at least one dependency is degraded but service remains running.
	HealthStatusDegraded = "degraded"
	// HealthStatusError indicates the service or a critical dependency is unavailable.
	HealthStatusError = "error"
)

// SystemHealthCheck describes the outcome of an individual dependency probe.
type SystemHealthCheck struct {
	Status    string
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency status for health endpoints.
type SystemHealthReport struct {
	Status      string
	Checks      map[string]SystemHealthCheck
	Version     string
	CommitSHA   string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}

// SignedAssetResponse returns signed URL payloads for image upload/download flows.
type SignedAssetResponse struct {
	AssetID   string
	URL       string
	ExpiresAt time.Time
	Method    string
	Headers   map[string]string
}
