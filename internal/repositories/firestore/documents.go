package firestore

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/madina-markt/api/internal/domain"
)

// Prices are stored as canonical decimal strings ("2.50"). decimal.Decimal has
// unexported fields and cannot round-trip through Firestore's struct codec.

type productDocument struct {
	Name       string    `firestore:"name"`
	NameNL     string    `firestore:"nameNl,omitempty"`
	NameAR     string    `firestore:"nameAr,omitempty"`
	Price      string    `firestore:"price"`
	InStock    bool      `firestore:"inStock"`
	Image      string    `firestore:"image,omitempty"`
	CategoryID string    `firestore:"categoryId,omitempty"`
	CreatedAt  time.Time `firestore:"createdAt"`
	UpdatedAt  time.Time `firestore:"updatedAt"`
}

type offerDocument struct {
	Title       string    `firestore:"title"`
	TitleNL     string    `firestore:"titleNl,omitempty"`
	TitleAR     string    `firestore:"titleAr,omitempty"`
	Description string    `firestore:"description,omitempty"`
	Price       string    `firestore:"price"`
	PriceBefore string    `firestore:"priceBefore,omitempty"`
	PriceAfter  string    `firestore:"priceAfter,omitempty"`
	StartDate   time.Time `firestore:"startDate"`
	EndDate     time.Time `firestore:"endDate"`
	IsActive    bool      `firestore:"isActive"`
	Image       string    `firestore:"image,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

type categoryDocument struct {
	Name      string    `firestore:"name"`
	NameNL    string    `firestore:"nameNl,omitempty"`
	NameAR    string    `firestore:"nameAr,omitempty"`
	Position  int       `firestore:"position"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type cartLineDocument struct {
	ID                string           `firestore:"id"`
	Kind              string           `firestore:"kind"`
	Quantity          int              `firestore:"quantity"`
	UnitPrice         string           `firestore:"unitPrice"`
	OriginalUnitPrice string           `firestore:"originalUnitPrice,omitempty"`
	Product           *productDocument `firestore:"product,omitempty"`
	ProductID         string           `firestore:"productId,omitempty"`
	Offer             *offerDocument   `firestore:"offer,omitempty"`
	OfferID           string           `firestore:"offerId,omitempty"`
}

type cartDocument struct {
	Lines     []cartLineDocument `firestore:"lines"`
	UpdatedAt time.Time          `firestore:"updatedAt"`
}

func encodePrice(value decimal.Decimal) string {
	return value.String()
}

func encodeOptionalPrice(value *decimal.Decimal) string {
	if value == nil {
		return ""
	}
	return value.String()
}

func decodePrice(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode %s %q: %w", field, raw, err)
	}
	return value, nil
}

func decodeOptionalPrice(field, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := decodePrice(field, raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func productToDocument(product domain.Product) productDocument {
	return productDocument{
		Name:       product.Name,
		NameNL:     product.NameNL,
		NameAR:     product.NameAR,
		Price:      encodePrice(product.Price),
		InStock:    product.InStock,
		Image:      product.Image,
		CategoryID: product.CategoryID,
		CreatedAt:  product.CreatedAt.UTC(),
		UpdatedAt:  product.UpdatedAt.UTC(),
	}
}

func productFromDocument(id string, doc productDocument) (domain.Product, error) {
	price, err := decodePrice("price", doc.Price)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ID:         id,
		Name:       doc.Name,
		NameNL:     doc.NameNL,
		NameAR:     doc.NameAR,
		Price:      price,
		InStock:    doc.InStock,
		Image:      doc.Image,
		CategoryID: doc.CategoryID,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

func offerToDocument(offer domain.Offer) offerDocument {
	return offerDocument{
		Title:       offer.Title,
		TitleNL:     offer.TitleNL,
		TitleAR:     offer.TitleAR,
		Description: offer.Description,
		Price:       encodePrice(offer.Price),
		PriceBefore: encodeOptionalPrice(offer.PriceBefore),
		PriceAfter:  encodeOptionalPrice(offer.PriceAfter),
		StartDate:   offer.StartDate.UTC(),
		EndDate:     offer.EndDate.UTC(),
		IsActive:    offer.IsActive,
		Image:       offer.Image,
		CreatedAt:   offer.CreatedAt.UTC(),
		UpdatedAt:   offer.UpdatedAt.UTC(),
	}
}

func offerFromDocument(id string, doc offerDocument) (domain.Offer, error) {
	price, err := decodePrice("price", doc.Price)
	if err != nil {
		return domain.Offer{}, err
	}
	priceBefore, err := decodeOptionalPrice("priceBefore", doc.PriceBefore)
	if err != nil {
		return domain.Offer{}, err
	}
	priceAfter, err := decodeOptionalPrice("priceAfter", doc.PriceAfter)
	if err != nil {
		return domain.Offer{}, err
	}
	return domain.Offer{
		ID:          id,
		Title:       doc.Title,
		TitleNL:     doc.TitleNL,
		TitleAR:     doc.TitleAR,
		Description: doc.Description,
		Price:       price,
		PriceBefore: priceBefore,
		PriceAfter:  priceAfter,
		StartDate:   doc.StartDate,
		EndDate:     doc.EndDate,
		IsActive:    doc.IsActive,
		Image:       doc.Image,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

func categoryToDocument(category domain.Category) categoryDocument {
	return categoryDocument{
		Name:      category.Name,
		NameNL:    category.NameNL,
		NameAR:    category.NameAR,
		Position:  category.Position,
		CreatedAt: category.CreatedAt.UTC(),
		UpdatedAt: category.UpdatedAt.UTC(),
	}
}

func categoryFromDocument(id string, doc categoryDocument) domain.Category {
	return domain.Category{
		ID:        id,
		Name:      doc.Name,
		NameNL:    doc.NameNL,
		NameAR:    doc.NameAR,
		Position:  doc.Position,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func cartLineToDocument(line domain.CartLine) cartLineDocument {
	doc := cartLineDocument{
		ID:                line.ID,
		Kind:              string(line.Kind),
		Quantity:          line.Quantity,
		UnitPrice:         encodePrice(line.UnitPrice),
		OriginalUnitPrice: encodePrice(line.OriginalUnitPrice),
	}
	if line.Product != nil {
		snapshot := productToDocument(*line.Product)
		doc.Product = &snapshot
		doc.ProductID = line.Product.ID
	}
	if line.Offer != nil {
		snapshot := offerToDocument(*line.Offer)
		doc.Offer = &snapshot
		doc.OfferID = line.Offer.ID
	}
	return doc
}

func cartLineFromDocument(doc cartLineDocument) (domain.CartLine, error) {
	unitPrice, err := decodePrice("unitPrice", doc.UnitPrice)
	if err != nil {
		return domain.CartLine{}, err
	}
	originalPrice, err := decodePrice("originalUnitPrice", doc.OriginalUnitPrice)
	if err != nil {
		return domain.CartLine{}, err
	}

	line := domain.CartLine{
		ID:                doc.ID,
		Kind:              domain.LineKind(doc.Kind),
		Quantity:          doc.Quantity,
		UnitPrice:         unitPrice,
		OriginalUnitPrice: originalPrice,
	}
	if doc.Product != nil {
		product, err := productFromDocument(doc.ProductID, *doc.Product)
		if err != nil {
			return domain.CartLine{}, err
		}
		if product.ID == "" {
			product.ID = doc.ID
		}
		line.Product = &product
	}
	if doc.Offer != nil {
		offer, err := offerFromDocument(doc.OfferID, *doc.Offer)
		if err != nil {
			return domain.CartLine{}, err
		}
		if offer.ID == "" {
			offer.ID = doc.ID
		}
		line.Offer = &offer
	}
	return line, nil
}
