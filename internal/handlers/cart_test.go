package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	domain "github.com/madina-markt/api/internal/domain"
	"github.com/madina-markt/api/internal/services"
)

type stubCartService struct {
	cart      domain.Cart
	err       error
	gets      int
	adds      []string
	removed   []string
	cleared   int
	toggled   int
	closed    int
	lastCarts []string
}

func (s *stubCartService) record(cartID string) { s.lastCarts = append(s.lastCarts, cartID) }

func (s *stubCartService) Get(ctx context.Context, cartID string) (domain.Cart, error) {
	s.gets++
	s.record(cartID)
	return s.cart, s.err
}

func (s *stubCartService) AddProduct(ctx context.Context, cartID, productID string) (domain.Cart, error) {
	s.adds = append(s.adds, "product:"+productID)
	s.record(cartID)
	return s.cart, s.err
}

func (s *stubCartService) AddOffer(ctx context.Context, cartID, offerID string) (domain.Cart, error) {
	s.adds = append(s.adds, "offer:"+offerID)
	s.record(cartID)
	return s.cart, s.err
}

func (s *stubCartService) RemoveLine(ctx context.Context, cartID, lineID string) (domain.Cart, error) {
	s.removed = append(s.removed, lineID)
	s.record(cartID)
	return s.cart, s.err
}

func (s *stubCartService) Clear(ctx context.Context, cartID string) (domain.Cart, error) {
	s.cleared++
	s.record(cartID)
	return domain.Cart{ID: cartID}, s.err
}

func (s *stubCartService) Toggle(ctx context.Context, cartID string) (domain.Cart, error) {
	s.toggled++
	s.record(cartID)
	return s.cart, s.err
}

func (s *stubCartService) Close(ctx context.Context, cartID string) (domain.Cart, error) {
	s.closed++
	s.record(cartID)
	return domain.Cart{ID: cartID}, s.err
}

type stubCheckoutService struct {
	link  services.CheckoutLink
	err   error
	calls int

	lastLocale      domain.Locale
	lastFulfillment domain.Fulfillment
	lastLines       []domain.CartLine
}

func (s *stubCheckoutService) BuildOrderLink(lines []domain.CartLine, locale domain.Locale, fulfillment domain.Fulfillment) (services.CheckoutLink, error) {
	s.calls++
	s.lastLines = lines
	s.lastLocale = locale
	s.lastFulfillment = fulfillment
	return s.link, s.err
}

type stubLocaleResolver struct {
	result       string
	lastOverride string
	lastAccept   string
}

func (s *stubLocaleResolver) Resolve(override, acceptLanguage string) string {
	s.lastOverride = override
	s.lastAccept = acceptLanguage
	if s.result != "" {
		return s.result
	}
	return "en"
}

func newCartMux(t *testing.T, carts services.CartService, checkout services.CheckoutService, locales localeResolver) http.Handler {
	t.Helper()
	h := NewCartHandlers(carts, checkout, locales, CartHandlersConfig{
		IDGenerator: func() string { return "cart-123" },
	})
	return NewRouter(WithCartRoutes(h.Routes))
}

func sampleCart() domain.Cart {
	price := decimal.RequireFromString("1.50")
	return domain.Cart{
		ID:     "cart-123",
		IsOpen: true,
		Lines: []domain.CartLine{{
			ID:       "prod-1",
			Kind:     domain.LineKindProduct,
			Product:  &domain.Product{ID: "prod-1", Name: "Bread", Price: price, InStock: true},
			Quantity: 2,
			UnitPrice: price,
			OriginalUnitPrice: price,
		}},
	}
}

func TestCartHandlersGetMintsCookie(t *testing.T) {
	carts := &stubCartService{cart: sampleCart()}
	mux := newCartMux(t, carts, &stubCheckoutService{}, &stubLocaleResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cookie := rec.Result().Cookies()
	found := false
	for _, c := range cookie {
		if c.Name == defaultCartCookieName && c.Value == "cart-123" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected minted cart cookie, got %v", cookie)
	}
	if len(carts.lastCarts) != 1 || carts.lastCarts[0] != "cart-123" {
		t.Fatalf("expected service called with minted cart id, got %v", carts.lastCarts)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if payload["isOpen"] != true {
		t.Fatalf("expected isOpen true, got %v", payload["isOpen"])
	}
	if payload["subtotal"] != "3.00" {
		t.Fatalf("expected subtotal 3.00, got %v", payload["subtotal"])
	}
}

func TestCartHandlersReusesExistingCookie(t *testing.T) {
	carts := &stubCartService{cart: sampleCart()}
	mux := newCartMux(t, carts, &stubCheckoutService{}, &stubLocaleResolver{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/products/prod-9", nil)
	req.AddCookie(&http.Cookie{Name: defaultCartCookieName, Value: "cart-existing"})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(carts.adds) != 1 || carts.adds[0] != "product:prod-9" {
		t.Fatalf("expected product add, got %v", carts.adds)
	}
	if carts.lastCarts[0] != "cart-existing" {
		t.Fatalf("expected existing cart id, got %q", carts.lastCarts[0])
	}
}

func TestCartHandlersActionRoutes(t *testing.T) {
	carts := &stubCartService{cart: sampleCart()}
	mux := newCartMux(t, carts, &stubCheckoutService{}, &stubLocaleResolver{})

	for _, path := range []string{"/api/v1/cart:toggle", "/api/v1/cart:close"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("POST %s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
	}
	if carts.toggled != 1 || carts.closed != 1 {
		t.Fatalf("expected one toggle and one close, got %d/%d", carts.toggled, carts.closed)
	}
}

func TestCartHandlersRemoveLine(t *testing.T) {
	carts := &stubCartService{cart: sampleCart()}
	mux := newCartMux(t, carts, &stubCheckoutService{}, &stubLocaleResolver{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/lines/prod-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(carts.removed) != 1 || carts.removed[0] != "prod-1" {
		t.Fatalf("expected line removal, got %v", carts.removed)
	}
}

func TestCartHandlersNotFoundMapsTo404(t *testing.T) {
	carts := &stubCartService{err: services.ErrCartNotFound}
	mux := newCartMux(t, carts, &stubCheckoutService{}, &stubLocaleResolver{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/products/ghost", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCartHandlersCheckoutClearsAndCloses(t *testing.T) {
	carts := &stubCartService{cart: sampleCart()}
	checkout := &stubCheckoutService{link: services.CheckoutLink{
		Message: "order text",
		URL:     "https://wa.me/31612345678?text=order%20text",
	}}
	resolver := &stubLocaleResolver{result: "nl"}
	mux := newCartMux(t, carts, checkout, resolver)

	body := `{"locale":"nl","fulfillment":{"kind":"delivery","address":{"street":"Kanaalstraat","houseNumber":"12","postalCode":"3531 CJ","city":"Utrecht"}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", strings.NewReader(body))
	req.Header.Set("Accept-Language", "nl-NL,nl;q=0.9")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if checkout.calls != 1 {
		t.Fatalf("expected one checkout call, got %d", checkout.calls)
	}
	if checkout.lastLocale != domain.LocaleNL {
		t.Fatalf("expected nl locale, got %q", checkout.lastLocale)
	}
	if checkout.lastFulfillment.Kind != domain.FulfillmentDelivery {
		t.Fatalf("expected delivery fulfillment, got %q", checkout.lastFulfillment.Kind)
	}
	if checkout.lastFulfillment.Address == nil || checkout.lastFulfillment.Address.City != "Utrecht" {
		t.Fatalf("expected delivery address forwarded, got %+v", checkout.lastFulfillment.Address)
	}
	if resolver.lastOverride != "nl" {
		t.Fatalf("expected locale override forwarded, got %q", resolver.lastOverride)
	}
	if carts.cleared != 1 || carts.closed != 1 {
		t.Fatalf("expected cart cleared and closed after checkout, got %d/%d", carts.cleared, carts.closed)
	}

	var payload struct {
		Message     string `json:"message"`
		WhatsAppURL string `json:"whatsappUrl"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if payload.WhatsAppURL != checkout.link.URL {
		t.Fatalf("expected wa.me link, got %q", payload.WhatsAppURL)
	}
	if payload.Message != "order text" {
		t.Fatalf("expected order message, got %q", payload.Message)
	}
}

func TestCartHandlersCheckoutRejectsEmptyCart(t *testing.T) {
	carts := &stubCartService{cart: domain.Cart{ID: "cart-123"}}
	checkout := &stubCheckoutService{}
	mux := newCartMux(t, carts, checkout, &stubLocaleResolver{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", strings.NewReader(`{"fulfillment":{"kind":"pickup"}}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", rec.Code)
	}
	if checkout.calls != 0 {
		t.Fatalf("expected no checkout call, got %d", checkout.calls)
	}
	if carts.cleared != 0 || carts.closed != 0 {
		t.Fatalf("expected cart untouched, got %d/%d", carts.cleared, carts.closed)
	}
}

func TestCartHandlersCheckoutMalformedBody(t *testing.T) {
	carts := &stubCartService{cart: sampleCart()}
	mux := newCartMux(t, carts, &stubCheckoutService{}, &stubLocaleResolver{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}
