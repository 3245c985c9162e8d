package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	domain "github.com/madina-markt/api/internal/domain"
	"github.com/madina-markt/api/internal/i18n"
)

var (
	errCheckoutTranslatorRequired = errors.New("checkout service: translator is required")
	errCheckoutPhoneRequired      = errors.New("checkout service: whatsapp phone number is required")
)

// ErrCheckoutInvalidInput indicates the caller supplied invalid input.
var ErrCheckoutInvalidInput = errors.New("checkout service: invalid input")

// ErrCheckoutEmptyCart indicates checkout was requested for a cart without lines.
var ErrCheckoutEmptyCart = errors.New("checkout service: cart is empty")

type translator interface {
	T(locale, key string) string
}

// CheckoutServiceDeps wires the translation bundle and the store's WhatsApp number.
type CheckoutServiceDeps struct {
	Translator  translator
	PhoneNumber string
}

type checkoutService struct {
	translator translator
	phone      string
}

// NewCheckoutService constructs a CheckoutService enforcing dependency validation.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Translator == nil {
		return nil, errCheckoutTranslatorRequired
	}
	phone := normalisePhone(deps.PhoneNumber)
	if phone == "" {
		return nil, errCheckoutPhoneRequired
	}
	return &checkoutService{translator: deps.Translator, phone: phone}, nil
}

// BuildOrderLink renders the order message in the requested locale and wraps it
// into a wa.me deep link. The message blocks are greeting, item rows, subtotal,
// fulfilment, and closing, separated by blank lines. Amounts in the message body
// always use a comma decimal separator, whatever the locale.
func (s *checkoutService) BuildOrderLink(lines []CartLine, locale Locale, fulfillment Fulfillment) (CheckoutLink, error) {
	if len(lines) == 0 {
		return CheckoutLink{}, ErrCheckoutEmptyCart
	}
	if fulfillment.Kind != domain.FulfillmentPickup && fulfillment.Kind != domain.FulfillmentDelivery {
		return CheckoutLink{}, fmt.Errorf("%w: unknown fulfillment kind %q", ErrCheckoutInvalidInput, fulfillment.Kind)
	}
	if fulfillment.Kind == domain.FulfillmentDelivery && fulfillment.Address == nil {
		return CheckoutLink{}, fmt.Errorf("%w: delivery requires an address", ErrCheckoutInvalidInput)
	}

	loc := string(locale)
	rows := make([]string, 0, len(lines))
	subtotal := domain.Cart{Lines: lines}.Subtotal()
	for _, line := range lines {
		rows = append(rows, fmt.Sprintf("• %s - %dx €%s = €%s",
			line.DisplayName(locale),
			line.Quantity,
			i18n.FormatMessageAmount(line.UnitPrice),
			i18n.FormatMessageAmount(line.LineTotal()),
		))
	}

	subtotalLine := strings.ReplaceAll(
		s.translator.T(loc, "checkout.subtotal"),
		"{amount}", i18n.FormatMessageAmount(subtotal),
	)

	var fulfillmentLine string
	if fulfillment.Kind == domain.FulfillmentPickup {
		fulfillmentLine = s.translator.T(loc, "checkout.pickup")
	} else {
		fulfillmentLine = strings.ReplaceAll(
			s.translator.T(loc, "checkout.delivery"),
			"{address}", formatAddress(*fulfillment.Address),
		)
	}

	blocks := []string{
		s.translator.T(loc, "checkout.greeting"),
		strings.Join(rows, "\n"),
		subtotalLine,
		fulfillmentLine,
		s.translator.T(loc, "checkout.closing"),
	}
	message := strings.Join(blocks, "\n\n")

	return CheckoutLink{
		Message: message,
		URL:     "https://wa.me/" + s.phone + "?text=" + url.QueryEscape(message),
	}, nil
}

// formatAddress renders "street houseNumber, postalCode city" skipping blanks.
func formatAddress(addr domain.DeliveryAddress) string {
	street := strings.TrimSpace(strings.TrimSpace(addr.Street) + " " + strings.TrimSpace(addr.HouseNumber))
	town := strings.TrimSpace(strings.TrimSpace(addr.PostalCode) + " " + strings.TrimSpace(addr.City))
	switch {
	case street == "":
		return town
	case town == "":
		return street
	default:
		return street + ", " + town
	}
}

// normalisePhone strips formatting characters so the number slots into a wa.me path.
func normalisePhone(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
