package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	domain "github.com/madina-markt/api/internal/domain"
	"github.com/madina-markt/api/internal/platform/httpx"
	"github.com/madina-markt/api/internal/services"
)

const (
	maxCheckoutBodySize   = 16 * 1024
	defaultCartCookieName = "markt_cart"
)

type cartIDContextKey struct{}

type localeResolver interface {
	Resolve(override, acceptLanguage string) string
}

// CartHandlersConfig customises cookie behaviour for cart identification.
type CartHandlersConfig struct {
	CookieName   string
	CookieSecure bool
	IDGenerator  func() string
}

// CartHandlers exposes the storefront cart and checkout endpoints. Carts are
// anonymous, identified by a minted cookie rather than an account.
type CartHandlers struct {
	carts    services.CartService
	checkout services.CheckoutService
	locales  localeResolver
	cfg      CartHandlersConfig
}

// NewCartHandlers constructs handlers binding the cart and checkout services.
func NewCartHandlers(carts services.CartService, checkout services.CheckoutService, locales localeResolver, cfg CartHandlersConfig) *CartHandlers {
	if strings.TrimSpace(cfg.CookieName) == "" {
		cfg.CookieName = defaultCartCookieName
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = func() string { return ulid.Make().String() }
	}
	return &CartHandlers{carts: carts, checkout: checkout, locales: locales, cfg: cfg}
}

// Routes wires the cart endpoints. The action routes (/cart:toggle, /cart:close)
// sit beside /cart, so this registrar expects the API root.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Route("/cart", func(cr chi.Router) {
		cr.Use(h.withCartID)
		cr.Get("/", h.getCart)
		cr.Post("/products/{productID}", h.addProduct)
		cr.Post("/offers/{offerID}", h.addOffer)
		cr.Delete("/lines/{lineID}", h.removeLine)
		cr.Delete("/", h.clearCart)
		cr.Post("/checkout", h.checkoutCart)
	})
	r.With(h.withCartID).Post("/cart:toggle", h.toggleCart)
	r.With(h.withCartID).Post("/cart:close", h.closeCart)
}

// withCartID ensures every cart request carries a cart identity cookie,
// minting one on first contact.
func (h *CartHandlers) withCartID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cartID := ""
		if cookie, err := r.Cookie(h.cfg.CookieName); err == nil {
			cartID = strings.TrimSpace(cookie.Value)
		}
		if cartID == "" {
			cartID = h.cfg.IDGenerator()
			http.SetCookie(w, &http.Cookie{
				Name:     h.cfg.CookieName,
				Value:    cartID,
				Path:     "/",
				MaxAge:   60 * 60 * 24 * 30,
				HttpOnly: true,
				Secure:   h.cfg.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), cartIDContextKey{}, cartID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func cartIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(cartIDContextKey{}).(string); ok {
		return id
	}
	return ""
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cart, err := h.carts.Get(ctx, cartIDFromContext(ctx))
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(cart))
}

func (h *CartHandlers) addProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cart, err := h.carts.AddProduct(ctx, cartIDFromContext(ctx), chi.URLParam(r, "productID"))
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(cart))
}

func (h *CartHandlers) addOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cart, err := h.carts.AddOffer(ctx, cartIDFromContext(ctx), chi.URLParam(r, "offerID"))
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(cart))
}

func (h *CartHandlers) removeLine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cart, err := h.carts.RemoveLine(ctx, cartIDFromContext(ctx), chi.URLParam(r, "lineID"))
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(cart))
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cart, err := h.carts.Clear(ctx, cartIDFromContext(ctx))
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(cart))
}

func (h *CartHandlers) toggleCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cart, err := h.carts.Toggle(ctx, cartIDFromContext(ctx))
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(cart))
}

func (h *CartHandlers) closeCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cart, err := h.carts.Close(ctx, cartIDFromContext(ctx))
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(cart))
}

type checkoutRequest struct {
	Locale      string `json:"locale"`
	Fulfillment struct {
		Kind    string `json:"kind"`
		Address *struct {
			Street      string `json:"street"`
			HouseNumber string `json:"houseNumber"`
			PostalCode  string `json:"postalCode"`
			City        string `json:"city"`
		} `json:"address"`
	} `json:"fulfillment"`
}

type checkoutResponse struct {
	Message     string      `json:"message"`
	WhatsAppURL string      `json:"whatsappUrl"`
	Cart        cartPayload `json:"cart"`
}

// checkoutCart renders the order message, hands back the wa.me link, and then
// clears and closes the cart — the order left the building.
func (h *CartHandlers) checkoutCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID := cartIDFromContext(ctx)

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		}
		return
	}

	var req checkoutRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}

	cart, err := h.carts.Get(ctx, cartID)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	if len(cart.Lines) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cannot check out an empty cart", http.StatusBadRequest))
		return
	}

	locale := domain.LocaleEN
	if h.locales != nil {
		locale = domain.Locale(h.locales.Resolve(req.Locale, r.Header.Get("Accept-Language")))
	} else if req.Locale != "" {
		locale = domain.Locale(req.Locale)
	}

	fulfillment := domain.Fulfillment{Kind: domain.FulfillmentKind(strings.ToLower(strings.TrimSpace(req.Fulfillment.Kind)))}
	if fulfillment.Kind == "" {
		fulfillment.Kind = domain.FulfillmentPickup
	}
	if req.Fulfillment.Address != nil {
		fulfillment.Address = &domain.DeliveryAddress{
			Street:      req.Fulfillment.Address.Street,
			HouseNumber: req.Fulfillment.Address.HouseNumber,
			PostalCode:  req.Fulfillment.Address.PostalCode,
			City:        req.Fulfillment.Address.City,
		}
	}

	link, err := h.checkout.BuildOrderLink(cart.Lines, locale, fulfillment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCheckoutEmptyCart):
			httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cannot check out an empty cart", http.StatusBadRequest))
		case errors.Is(err, services.ErrCheckoutInvalidInput):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("checkout_failed", "failed to build order link", http.StatusInternalServerError))
		}
		return
	}

	if _, err := h.carts.Clear(ctx, cartID); err != nil {
		writeCartError(ctx, w, err)
		return
	}
	cleared, err := h.carts.Close(ctx, cartID)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, checkoutResponse{
		Message:     link.Message,
		WhatsAppURL: link.URL,
		Cart:        buildCartPayload(cleared),
	})
}

func writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", err.Error(), http.StatusNotFound))
	case errors.Is(err, services.ErrCartUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart backend is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unexpected cart failure", http.StatusInternalServerError))
	}
}
