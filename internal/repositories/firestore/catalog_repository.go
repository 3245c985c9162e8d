package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"

	domain "github.com/madina-markt/api/internal/domain"
	pfirestore "github.com/madina-markt/api/internal/platform/firestore"
	"github.com/madina-markt/api/internal/platform/pagination"
	"github.com/madina-markt/api/internal/repositories"
)

const (
	productCollection  = "products"
	offerCollection    = "offers"
	categoryCollection = "categories"

	maxListPageSize = 100
)

// CatalogRepository persists products, offers, and categories in Firestore.
type CatalogRepository struct {
	provider   *pfirestore.Provider
	products   *pfirestore.BaseRepository[productDocument]
	offers     *pfirestore.BaseRepository[offerDocument]
	categories *pfirestore.BaseRepository[categoryDocument]
}

var _ repositories.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository constructs a Firestore-backed catalog repository.
func NewCatalogRepository(provider *pfirestore.Provider) (*CatalogRepository, error) {
	if provider == nil {
		return nil, errors.New("catalog repository requires firestore provider")
	}
	return &CatalogRepository{
		provider:   provider,
		products:   pfirestore.NewBaseRepository[productDocument](provider, productCollection, nil, nil),
		offers:     pfirestore.NewBaseRepository[offerDocument](provider, offerCollection, nil, nil),
		categories: pfirestore.NewBaseRepository[categoryDocument](provider, categoryCollection, nil, nil),
	}, nil
}

// ListProducts returns products ordered by name, optionally narrowed to a
// category, as one cursor page.
func (r *CatalogRepository) ListProducts(ctx context.Context, filter repositories.ProductListFilter) (domain.CursorPage[domain.Product], error) {
	pageSize := normalisePageSize(filter.Pager.PageSize)
	cursor, err := pagination.DecodeToken(filter.Pager.PageToken)
	if err != nil {
		return domain.CursorPage[domain.Product]{}, err
	}

	docs, err := r.products.Query(ctx, func(q firestore.Query) firestore.Query {
		if categoryID := strings.TrimSpace(filter.CategoryID); categoryID != "" {
			q = q.Where("categoryId", "==", categoryID)
		}
		q = q.OrderBy("name", firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)
		if len(cursor.StartAfter) > 0 {
			q = q.StartAfter(cursor.StartAfter...)
		}
		return q.Limit(pageSize + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.Product]{}, err
	}

	page := domain.CursorPage[domain.Product]{}
	for i, doc := range docs {
		if i == pageSize {
			break
		}
		product, err := productFromDocument(doc.ID, doc.Data)
		if err != nil {
			return domain.CursorPage[domain.Product]{}, fmt.Errorf("catalog repository: product %s: %w", doc.ID, err)
		}
		page.Items = append(page.Items, product)
	}

	if len(docs) > pageSize {
		last := page.Items[len(page.Items)-1]
		token, err := pagination.EncodeToken(pagination.Cursor{StartAfter: []any{last.Name, last.ID}})
		if err != nil {
			return domain.CursorPage[domain.Product]{}, err
		}
		page.NextPageToken = token
	}
	return page, nil
}

// GetProduct fetches a single product by ID.
func (r *CatalogRepository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	doc, err := r.products.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	product, err := productFromDocument(doc.ID, doc.Data)
	if err != nil {
		return domain.Product{}, fmt.Errorf("catalog repository: product %s: %w", doc.ID, err)
	}
	return product, nil
}

// UpsertProduct writes the product document under its ID.
func (r *CatalogRepository) UpsertProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if strings.TrimSpace(product.ID) == "" {
		return domain.Product{}, errors.New("catalog repository: product id is required")
	}
	result, err := r.products.Set(ctx, product.ID, productToDocument(product))
	if err != nil {
		return domain.Product{}, err
	}
	product.UpdatedAt = result.UpdateTime
	return product, nil
}

// DeleteProduct removes the product document.
func (r *CatalogRepository) DeleteProduct(ctx context.Context, productID string) error {
	_, err := r.products.Delete(ctx, productID)
	return err
}

// ListOffers returns offers ordered by start date descending as one cursor
// page. Active-window filtering happens in the service so expired offers stay
// queryable for the admin surface.
func (r *CatalogRepository) ListOffers(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Offer], error) {
	pageSize := normalisePageSize(pager.PageSize)
	cursor, err := pagination.DecodeToken(pager.PageToken)
	if err != nil {
		return domain.CursorPage[domain.Offer]{}, err
	}

	docs, err := r.offers.Query(ctx, func(q firestore.Query) firestore.Query {
		q = q.OrderBy("startDate", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Asc)
		if len(cursor.StartAfter) > 0 {
			q = q.StartAfter(cursor.StartAfter...)
		}
		return q.Limit(pageSize + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.Offer]{}, err
	}

	page := domain.CursorPage[domain.Offer]{}
	for i, doc := range docs {
		if i == pageSize {
			break
		}
		offer, err := offerFromDocument(doc.ID, doc.Data)
		if err != nil {
			return domain.CursorPage[domain.Offer]{}, fmt.Errorf("catalog repository: offer %s: %w", doc.ID, err)
		}
		page.Items = append(page.Items, offer)
	}

	if len(docs) > pageSize {
		last := page.Items[len(page.Items)-1]
		token, err := pagination.EncodeToken(pagination.Cursor{StartAfter: []any{last.StartDate, last.ID}})
		if err != nil {
			return domain.CursorPage[domain.Offer]{}, err
		}
		page.NextPageToken = token
	}
	return page, nil
}

// GetOffer fetches a single offer by ID.
func (r *CatalogRepository) GetOffer(ctx context.Context, offerID string) (domain.Offer, error) {
	doc, err := r.offers.Get(ctx, offerID)
	if err != nil {
		return domain.Offer{}, err
	}
	offer, err := offerFromDocument(doc.ID, doc.Data)
	if err != nil {
		return domain.Offer{}, fmt.Errorf("catalog repository: offer %s: %w", doc.ID, err)
	}
	return offer, nil
}

// UpsertOffer writes the offer document under its ID.
func (r *CatalogRepository) UpsertOffer(ctx context.Context, offer domain.Offer) (domain.Offer, error) {
	if strings.TrimSpace(offer.ID) == "" {
		return domain.Offer{}, errors.New("catalog repository: offer id is required")
	}
	result, err := r.offers.Set(ctx, offer.ID, offerToDocument(offer))
	if err != nil {
		return domain.Offer{}, err
	}
	offer.UpdatedAt = result.UpdateTime
	return offer, nil
}

// DeleteOffer removes the offer document.
func (r *CatalogRepository) DeleteOffer(ctx context.Context, offerID string) error {
	_, err := r.offers.Delete(ctx, offerID)
	return err
}

// ListCategories returns all categories ordered by their storefront position.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	docs, err := r.categories.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("position", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, categoryFromDocument(doc.ID, doc.Data))
	}
	return categories, nil
}

// GetCategory fetches a single category by ID.
func (r *CatalogRepository) GetCategory(ctx context.Context, categoryID string) (domain.Category, error) {
	doc, err := r.categories.Get(ctx, categoryID)
	if err != nil {
		return domain.Category{}, err
	}
	return categoryFromDocument(doc.ID, doc.Data), nil
}

// UpsertCategory writes the category document under its ID.
func (r *CatalogRepository) UpsertCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	if strings.TrimSpace(category.ID) == "" {
		return domain.Category{}, errors.New("catalog repository: category id is required")
	}
	result, err := r.categories.Set(ctx, category.ID, categoryToDocument(category))
	if err != nil {
		return domain.Category{}, err
	}
	category.UpdatedAt = result.UpdateTime
	return category, nil
}

// DeleteCategory removes the category document. The check-then-delete runs in a
// transaction so a concurrent product create cannot race the referential guard.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return errors.New("catalog repository: category id is required")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}

	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		query := client.Collection(productCollection).
			Where("categoryId", "==", categoryID).
			Limit(1)
		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return pfirestore.WrapError("categories.delete", err)
		}
		if len(docs) > 0 {
			return repositories.ErrCategoryInUse
		}
		ref := client.Collection(categoryCollection).Doc(categoryID)
		if err := tx.Delete(ref); err != nil {
			return pfirestore.WrapError("categories.delete", err)
		}
		return nil
	})
}

func normalisePageSize(size int) int {
	if size <= 0 {
		return pagination.DefaultPageSize
	}
	if size > maxListPageSize {
		return maxListPageSize
	}
	return size
}
