package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/madina-markt/api/internal/domain"
)

// JSON payloads carry prices as canonical period-decimal strings. The comma
// rendering is a concern of the WhatsApp message body only.

type productPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NameNL     string `json:"nameNl,omitempty"`
	NameAR     string `json:"nameAr,omitempty"`
	Price      string `json:"price"`
	InStock    bool   `json:"inStock"`
	Image      string `json:"image,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

type offerPayload struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	TitleNL     string  `json:"titleNl,omitempty"`
	TitleAR     string  `json:"titleAr,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       string  `json:"price"`
	PriceBefore *string `json:"priceBefore,omitempty"`
	PriceAfter  *string `json:"priceAfter,omitempty"`
	StartDate   string  `json:"startDate,omitempty"`
	EndDate     string  `json:"endDate,omitempty"`
	IsActive    bool    `json:"isActive"`
	Image       string  `json:"image,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

type categoryPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	NameNL   string `json:"nameNl,omitempty"`
	NameAR   string `json:"nameAr,omitempty"`
	Position int    `json:"position"`
}

type cartLinePayload struct {
	ID                string          `json:"id"`
	Kind              string          `json:"kind"`
	Quantity          int             `json:"quantity"`
	UnitPrice         string          `json:"unitPrice"`
	OriginalUnitPrice string          `json:"originalUnitPrice"`
	LineTotal         string          `json:"lineTotal"`
	Product           *productPayload `json:"product,omitempty"`
	Offer             *offerPayload   `json:"offer,omitempty"`
}

type cartPayload struct {
	ID             string            `json:"id"`
	Lines          []cartLinePayload `json:"lines"`
	IsOpen         bool              `json:"isOpen"`
	TotalItemCount int               `json:"totalItemCount"`
	Subtotal       string            `json:"subtotal"`
}

func formatPrice(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func formatOptionalPrice(amount *decimal.Decimal) *string {
	if amount == nil {
		return nil
	}
	value := amount.StringFixed(2)
	return &value
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func buildProductPayload(product domain.Product) productPayload {
	return productPayload{
		ID:         product.ID,
		Name:       product.Name,
		NameNL:     product.NameNL,
		NameAR:     product.NameAR,
		Price:      formatPrice(product.Price),
		InStock:    product.InStock,
		Image:      product.Image,
		CategoryID: product.CategoryID,
		CreatedAt:  formatTimestamp(product.CreatedAt),
		UpdatedAt:  formatTimestamp(product.UpdatedAt),
	}
}

func buildOfferPayload(offer domain.Offer) offerPayload {
	return offerPayload{
		ID:          offer.ID,
		Title:       offer.Title,
		TitleNL:     offer.TitleNL,
		TitleAR:     offer.TitleAR,
		Description: offer.Description,
		Price:       formatPrice(offer.Price),
		PriceBefore: formatOptionalPrice(offer.PriceBefore),
		PriceAfter:  formatOptionalPrice(offer.PriceAfter),
		StartDate:   formatTimestamp(offer.StartDate),
		EndDate:     formatTimestamp(offer.EndDate),
		IsActive:    offer.IsActive,
		Image:       offer.Image,
		CreatedAt:   formatTimestamp(offer.CreatedAt),
		UpdatedAt:   formatTimestamp(offer.UpdatedAt),
	}
}

func buildCategoryPayload(category domain.Category) categoryPayload {
	return categoryPayload{
		ID:       category.ID,
		Name:     category.Name,
		NameNL:   category.NameNL,
		NameAR:   category.NameAR,
		Position: category.Position,
	}
}

func buildCartLinePayload(line domain.CartLine) cartLinePayload {
	payload := cartLinePayload{
		ID:                line.ID,
		Kind:              string(line.Kind),
		Quantity:          line.Quantity,
		UnitPrice:         formatPrice(line.UnitPrice),
		OriginalUnitPrice: formatPrice(line.OriginalUnitPrice),
		LineTotal:         formatPrice(line.LineTotal()),
	}
	switch line.Kind {
	case domain.LineKindProduct:
		if line.Product != nil {
			product := buildProductPayload(*line.Product)
			payload.Product = &product
		}
	case domain.LineKindOffer:
		if line.Offer != nil {
			offer := buildOfferPayload(*line.Offer)
			payload.Offer = &offer
		}
	}
	return payload
}

func buildCartPayload(cart domain.Cart) cartPayload {
	lines := make([]cartLinePayload, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, buildCartLinePayload(line))
	}
	return cartPayload{
		ID:             cart.ID,
		Lines:          lines,
		IsOpen:         cart.IsOpen,
		TotalItemCount: cart.TotalItemCount(),
		Subtotal:       formatPrice(cart.Subtotal()),
	}
}
