package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/madina-markt/api/internal/domain"
)

type stubCartRepository struct {
	saveFunc   func(ctx context.Context, cartID string, lines []domain.CartLine) error
	loadFunc   func(ctx context.Context, cartID string) ([]domain.CartLine, error)
	deleteFunc func(ctx context.Context, cartID string) error
	saves      int
}

func (s *stubCartRepository) Save(ctx context.Context, cartID string, lines []domain.CartLine) error {
	s.saves++
	if s.saveFunc != nil {
		return s.saveFunc(ctx, cartID, lines)
	}
	return nil
}

func (s *stubCartRepository) Load(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	if s.loadFunc != nil {
		return s.loadFunc(ctx, cartID)
	}
	return nil, nil
}

func (s *stubCartRepository) Delete(ctx context.Context, cartID string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, cartID)
	}
	return nil
}

type stubProductFinder struct {
	getFunc func(ctx context.Context, productID string) (domain.Product, error)
}

func (s *stubProductFinder) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	return s.getFunc(ctx, productID)
}

type stubOfferFinder struct {
	getFunc func(ctx context.Context, offerID string) (domain.Offer, error)
}

func (s *stubOfferFinder) GetOffer(ctx context.Context, offerID string) (domain.Offer, error) {
	return s.getFunc(ctx, offerID)
}

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func newCartServiceForTest(t *testing.T, repo *stubCartRepository, products *stubProductFinder, offers *stubOfferFinder) CartService {
	t.Helper()
	if repo == nil {
		repo = &stubCartRepository{}
	}
	if products == nil {
		products = &stubProductFinder{getFunc: func(context.Context, string) (domain.Product, error) {
			return domain.Product{}, errors.New("no products configured")
		}}
	}
	if offers == nil {
		offers = &stubOfferFinder{getFunc: func(context.Context, string) (domain.Offer, error) {
			return domain.Offer{}, errors.New("no offers configured")
		}}
	}
	service, err := NewCartService(CartServiceDeps{
		Repository: repo,
		Products:   products,
		Offers:     offers,
	})
	if err != nil {
		t.Fatalf("unexpected error constructing cart service: %v", err)
	}
	return service
}

func TestCartServiceAddProductAppendsLine(t *testing.T) {
	repo := &stubCartRepository{}
	products := &stubProductFinder{getFunc: func(_ context.Context, productID string) (domain.Product, error) {
		if productID != "prod-1" {
			t.Fatalf("unexpected product id %q", productID)
		}
		return domain.Product{ID: "prod-1", Name: "Bread", Price: decimal.RequireFromString("1.50"), InStock: true}, nil
	}}
	service := newCartServiceForTest(t, repo, products, nil)

	cart, err := service.AddProduct(context.Background(), "cart-1", " prod-1 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}
	line := cart.Lines[0]
	if line.ID != "prod-1" || line.Kind != domain.LineKindProduct {
		t.Fatalf("unexpected line identity %q/%q", line.ID, line.Kind)
	}
	if line.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", line.Quantity)
	}
	if !line.UnitPrice.Equal(decimal.RequireFromString("1.50")) {
		t.Fatalf("expected unit price 1.50, got %s", line.UnitPrice)
	}
	if line.Product == nil || line.Product.Name != "Bread" {
		t.Fatalf("expected product snapshot on the line")
	}
	if repo.saves != 1 {
		t.Fatalf("expected 1 save, got %d", repo.saves)
	}
}

func TestCartServiceAddProductMergesDuplicateKeepingFirstPrice(t *testing.T) {
	price := "1.50"
	products := &stubProductFinder{getFunc: func(context.Context, string) (domain.Product, error) {
		return domain.Product{ID: "prod-1", Name: "Bread", Price: decimal.RequireFromString(price), InStock: true}, nil
	}}
	service := newCartServiceForTest(t, nil, products, nil)

	ctx := context.Background()
	if _, err := service.AddProduct(ctx, "cart-1", "prod-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	price = "2.00" // the catalog price changed between adds
	cart, err := service.AddProduct(ctx, "cart-1", "prod-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("expected merged single line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart.Lines[0].Quantity)
	}
	if !cart.Lines[0].UnitPrice.Equal(decimal.RequireFromString("1.50")) {
		t.Fatalf("expected first snapshot price kept, got %s", cart.Lines[0].UnitPrice)
	}
}

func TestCartServiceAddProductAcceptsOutOfStockSnapshot(t *testing.T) {
	products := &stubProductFinder{getFunc: func(context.Context, string) (domain.Product, error) {
		return domain.Product{ID: "prod-1", Name: "Bread", InStock: false}, nil
	}}
	service := newCartServiceForTest(t, nil, products, nil)

	cart, err := service.AddProduct(context.Background(), "cart-1", "prod-1")
	if err != nil {
		t.Fatalf("expected out-of-stock snapshot to be accepted, got %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].Product.InStock {
		t.Fatalf("expected snapshot with InStock=false, got %+v", cart.Lines)
	}
}

func TestCartServiceAddProductMissingProduct(t *testing.T) {
	products := &stubProductFinder{getFunc: func(context.Context, string) (domain.Product, error) {
		return domain.Product{}, ErrCatalogNotFound
	}}
	service := newCartServiceForTest(t, nil, products, nil)

	_, err := service.AddProduct(context.Background(), "cart-1", "missing")
	if !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestCartServiceAddOfferUsesDiscountedPrice(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	offers := &stubOfferFinder{getFunc: func(context.Context, string) (domain.Offer, error) {
		return domain.Offer{
			ID:          "offer-1",
			Title:       "Dates box",
			Price:       decimal.RequireFromString("6.00"),
			PriceBefore: decPtr("6.00"),
			PriceAfter:  decPtr("4.50"),
			StartDate:   now.Add(-time.Hour),
			EndDate:     now.Add(time.Hour),
			IsActive:    true,
		}, nil
	}}
	service := newCartServiceForTest(t, nil, nil, offers)

	cart, err := service.AddOffer(context.Background(), "cart-1", "offer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line := cart.Lines[0]
	if line.Kind != domain.LineKindOffer {
		t.Fatalf("expected offer line, got %q", line.Kind)
	}
	if !line.UnitPrice.Equal(decimal.RequireFromString("4.50")) {
		t.Fatalf("expected discounted unit price 4.50, got %s", line.UnitPrice)
	}
	if !line.OriginalUnitPrice.Equal(decimal.RequireFromString("6.00")) {
		t.Fatalf("expected original price 6.00, got %s", line.OriginalUnitPrice)
	}
}

func TestCartServiceAddOpensDrawer(t *testing.T) {
	products := &stubProductFinder{getFunc: func(context.Context, string) (domain.Product, error) {
		return domain.Product{ID: "prod-1", Name: "Bread", Price: decimal.RequireFromString("1.50"), InStock: true}, nil
	}}
	repo := &stubCartRepository{}
	service := newCartServiceForTest(t, repo, products, nil)

	ctx := context.Background()
	if _, err := service.Close(ctx, "cart-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart, err := service.AddProduct(ctx, "cart-1", "prod-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cart.IsOpen {
		t.Fatalf("expected drawer to open after adding a line")
	}
}

func TestCartServiceProductAndOfferWithDistinctIdentifiersCoexist(t *testing.T) {
	products := &stubProductFinder{getFunc: func(context.Context, string) (domain.Product, error) {
		return domain.Product{ID: "prod-1", Name: "Bread", Price: decimal.RequireFromString("1.50"), InStock: true}, nil
	}}
	offers := &stubOfferFinder{getFunc: func(context.Context, string) (domain.Offer, error) {
		return domain.Offer{ID: "offer-1", Title: "Deal", Price: decimal.RequireFromString("4.00"), IsActive: true}, nil
	}}
	service := newCartServiceForTest(t, nil, products, offers)

	ctx := context.Background()
	if _, err := service.AddProduct(ctx, "cart-1", "prod-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart, err := service.AddOffer(ctx, "cart-1", "offer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart.Lines))
	}
	if cart.TotalItemCount() != 2 {
		t.Fatalf("expected total item count 2, got %d", cart.TotalItemCount())
	}
	if !cart.Subtotal().Equal(decimal.RequireFromString("5.50")) {
		t.Fatalf("expected subtotal 5.50, got %s", cart.Subtotal())
	}
}

func TestCartServiceProductAndOfferSharingIdentifierStayDistinct(t *testing.T) {
	products := &stubProductFinder{getFunc: func(context.Context, string) (domain.Product, error) {
		return domain.Product{ID: "weekend-mix", Name: "Mix", Price: decimal.RequireFromString("2.50"), InStock: true}, nil
	}}
	offers := &stubOfferFinder{getFunc: func(context.Context, string) (domain.Offer, error) {
		return domain.Offer{ID: "weekend-mix", Title: "Mix Deal", Price: decimal.RequireFromString("10"), PriceBefore: decPtr("15"), IsActive: true}, nil
	}}
	service := newCartServiceForTest(t, nil, products, offers)

	ctx := context.Background()
	if _, err := service.AddProduct(ctx, "cart-1", "weekend-mix"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.AddProduct(ctx, "cart-1", "weekend-mix"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart, err := service.AddOffer(ctx, "cart-1", "weekend-mix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Uniqueness is (kind, id): the shared identifier yields two lines.
	if len(cart.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Kind != domain.LineKindProduct || cart.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected product line %+v", cart.Lines[0])
	}
	if cart.Lines[1].Kind != domain.LineKindOffer || cart.Lines[1].Quantity != 1 {
		t.Fatalf("unexpected offer line %+v", cart.Lines[1])
	}
	if cart.TotalItemCount() != 3 {
		t.Fatalf("expected total item count 3, got %d", cart.TotalItemCount())
	}
	if !cart.Subtotal().Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("expected subtotal 15.00, got %s", cart.Subtotal())
	}

	// Removal keys on the identifier alone, so both lines go.
	cart, err = service.RemoveLine(ctx, "cart-1", "weekend-mix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected empty cart after removal, got %d lines", len(cart.Lines))
	}
}

func TestCartServiceRemoveLineMatchesByIdentifierOnly(t *testing.T) {
	products := &stubProductFinder{getFunc: func(_ context.Context, productID string) (domain.Product, error) {
		return domain.Product{ID: productID, Name: productID, Price: decimal.RequireFromString("1.00"), InStock: true}, nil
	}}
	repo := &stubCartRepository{}
	service := newCartServiceForTest(t, repo, products, nil)

	ctx := context.Background()
	if _, err := service.AddProduct(ctx, "cart-1", "prod-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.AddProduct(ctx, "cart-1", "prod-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart, err := service.RemoveLine(ctx, "cart-1", "prod-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].ID != "prod-2" {
		t.Fatalf("expected only prod-2 to remain, got %+v", cart.Lines)
	}

	savesBefore := repo.saves
	cart, err = service.RemoveLine(ctx, "cart-1", "unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected removal of unknown id to be a no-op")
	}
	if repo.saves != savesBefore {
		t.Fatalf("expected no persistence for a no-op removal")
	}
}

func TestCartServiceClearEmptiesAndPersists(t *testing.T) {
	var lastSaved []domain.CartLine
	repo := &stubCartRepository{saveFunc: func(_ context.Context, _ string, lines []domain.CartLine) error {
		lastSaved = lines
		return nil
	}}
	products := &stubProductFinder{getFunc: func(context.Context, string) (domain.Product, error) {
		return domain.Product{ID: "prod-1", Name: "Bread", Price: decimal.RequireFromString("1.50"), InStock: true}, nil
	}}
	service := newCartServiceForTest(t, repo, products, nil)

	ctx := context.Background()
	if _, err := service.AddProduct(ctx, "cart-1", "prod-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart, err := service.Clear(ctx, "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Lines))
	}
	if len(lastSaved) != 0 {
		t.Fatalf("expected empty line set persisted, got %d", len(lastSaved))
	}
}

func TestCartServiceToggleAndCloseNeverPersist(t *testing.T) {
	repo := &stubCartRepository{}
	service := newCartServiceForTest(t, repo, nil, nil)

	ctx := context.Background()
	cart, err := service.Toggle(ctx, "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cart.IsOpen {
		t.Fatalf("expected cart open after toggle")
	}
	cart, err = service.Close(ctx, "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.IsOpen {
		t.Fatalf("expected cart closed")
	}
	if repo.saves != 0 {
		t.Fatalf("drawer state must never persist, got %d saves", repo.saves)
	}
}

func TestCartServiceHydratesFromStorageOnFirstAccess(t *testing.T) {
	stored := []domain.CartLine{{
		ID:        "prod-9",
		Kind:      domain.LineKindProduct,
		Product:   &domain.Product{ID: "prod-9", Name: "Olives"},
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("2.25"),
	}}
	loads := 0
	repo := &stubCartRepository{loadFunc: func(_ context.Context, cartID string) ([]domain.CartLine, error) {
		loads++
		if cartID != "cart-1" {
			t.Fatalf("unexpected cart id %q", cartID)
		}
		return stored, nil
	}}
	service := newCartServiceForTest(t, repo, nil, nil)

	ctx := context.Background()
	cart, err := service.Get(ctx, "cart-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 3 {
		t.Fatalf("expected hydrated line, got %+v", cart.Lines)
	}
	if _, err := service.Get(ctx, "cart-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loads != 1 {
		t.Fatalf("expected a single hydration load, got %d", loads)
	}
}

func TestCartServiceCorruptStorageHydratesEmpty(t *testing.T) {
	repo := &stubCartRepository{loadFunc: func(context.Context, string) ([]domain.CartLine, error) {
		return nil, errors.New("document is mangled")
	}}
	service := newCartServiceForTest(t, repo, nil, nil)

	cart, err := service.Get(context.Background(), "cart-1")
	if err != nil {
		t.Fatalf("expected corrupt storage to hydrate empty, got %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Lines))
	}
}

func TestCartServicePersistFailureIsSwallowed(t *testing.T) {
	repo := &stubCartRepository{saveFunc: func(context.Context, string, []domain.CartLine) error {
		return errors.New("backend down")
	}}
	products := &stubProductFinder{getFunc: func(context.Context, string) (domain.Product, error) {
		return domain.Product{ID: "prod-1", Name: "Bread", Price: decimal.RequireFromString("1.50"), InStock: true}, nil
	}}
	var logged []string
	service, err := NewCartService(CartServiceDeps{
		Repository: repo,
		Products:   products,
		Offers: &stubOfferFinder{getFunc: func(context.Context, string) (domain.Offer, error) {
			return domain.Offer{}, errors.New("unused")
		}},
		Logger: func(_ context.Context, event string, _ map[string]any) {
			logged = append(logged, event)
		},
	})
	if err != nil {
		t.Fatalf("unexpected error constructing cart service: %v", err)
	}

	cart, err := service.AddProduct(context.Background(), "cart-1", "prod-1")
	if err != nil {
		t.Fatalf("expected persistence failure to be swallowed, got %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected in-memory cart to keep the line")
	}
	found := false
	for _, event := range logged {
		if event == "cart.persist.failed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected persist failure to be logged, got %v", logged)
	}
}

func TestCartServiceRejectsBlankIdentifiers(t *testing.T) {
	service := newCartServiceForTest(t, nil, nil, nil)

	ctx := context.Background()
	if _, err := service.Get(ctx, " "); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("expected ErrCartInvalidInput for blank cart id, got %v", err)
	}
	if _, err := service.AddProduct(ctx, "cart-1", ""); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("expected ErrCartInvalidInput for blank product id, got %v", err)
	}
	if _, err := service.RemoveLine(ctx, "cart-1", ""); !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("expected ErrCartInvalidInput for blank line id, got %v", err)
	}
}
