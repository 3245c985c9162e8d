package services

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	domain "github.com/madina-markt/api/internal/domain"
	"github.com/madina-markt/api/internal/i18n"
)

func newCheckoutServiceForTest(t *testing.T) CheckoutService {
	t.Helper()
	bundle, err := i18n.Load("en", []string{"en", "nl", "ar"})
	if err != nil {
		t.Fatalf("unexpected error loading locale bundle: %v", err)
	}
	service, err := NewCheckoutService(CheckoutServiceDeps{
		Translator:  bundle,
		PhoneNumber: "+31 6 1234 5678",
	})
	if err != nil {
		t.Fatalf("unexpected error constructing checkout service: %v", err)
	}
	return service
}

func sampleCheckoutLines() []domain.CartLine {
	bread := domain.Product{ID: "prod-1", Name: "Bread", NameNL: "Brood", Price: decimal.RequireFromString("1.50")}
	olives := domain.Product{ID: "prod-2", Name: "Olives", NameNL: "Olijven", Price: decimal.RequireFromString("2.25")}
	return []domain.CartLine{
		{ID: bread.ID, Kind: domain.LineKindProduct, Product: &bread, Quantity: 2, UnitPrice: bread.Price, OriginalUnitPrice: bread.Price},
		{ID: olives.ID, Kind: domain.LineKindProduct, Product: &olives, Quantity: 1, UnitPrice: olives.Price, OriginalUnitPrice: olives.Price},
	}
}

func TestCheckoutBuildOrderLinkRendersEnglishPickupMessage(t *testing.T) {
	service := newCheckoutServiceForTest(t)

	link, err := service.BuildOrderLink(sampleCheckoutLines(), domain.LocaleEN, domain.Fulfillment{Kind: domain.FulfillmentPickup})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := strings.Join([]string{
		"Hello! I would like to place the following order:",
		"",
		"• Bread - 2x €1,50 = €3,00\n• Olives - 1x €2,25 = €2,25",
		"",
		"Subtotal: €5,25",
		"",
		"I will pick up the order at the store.",
		"",
		"Thank you!",
	}, "\n")
	if link.Message != want {
		t.Fatalf("unexpected message:\n%s\nwant:\n%s", link.Message, want)
	}
}

func TestCheckoutBuildOrderLinkRendersDutchDeliveryMessage(t *testing.T) {
	service := newCheckoutServiceForTest(t)

	fulfillment := domain.Fulfillment{
		Kind: domain.FulfillmentDelivery,
		Address: &domain.DeliveryAddress{
			Street:      "Kanaalstraat",
			HouseNumber: "12",
			PostalCode:  "3531 CJ",
			City:        "Utrecht",
		},
	}
	link, err := service.BuildOrderLink(sampleCheckoutLines(), domain.LocaleNL, fulfillment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(link.Message, "Hallo! Ik wil graag de volgende bestelling plaatsen:") {
		t.Fatalf("expected Dutch greeting, got:\n%s", link.Message)
	}
	if !strings.Contains(link.Message, "• Brood - 2x €1,50 = €3,00") {
		t.Fatalf("expected localized product name, got:\n%s", link.Message)
	}
	if !strings.Contains(link.Message, "Subtotaal: €5,25") {
		t.Fatalf("expected Dutch subtotal, got:\n%s", link.Message)
	}
	if !strings.Contains(link.Message, "Graag de bestelling bezorgen op: Kanaalstraat 12, 3531 CJ Utrecht") {
		t.Fatalf("expected interpolated delivery address, got:\n%s", link.Message)
	}
	if !strings.Contains(link.Message, "Alvast bedankt!") {
		t.Fatalf("expected Dutch closing, got:\n%s", link.Message)
	}
}

func TestCheckoutBuildOrderLinkEncodesDeepLink(t *testing.T) {
	service := newCheckoutServiceForTest(t)

	link, err := service.BuildOrderLink(sampleCheckoutLines(), domain.LocaleEN, domain.Fulfillment{Kind: domain.FulfillmentPickup})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(link.URL, "https://wa.me/31612345678?text=") {
		t.Fatalf("expected wa.me link with digits-only phone, got %q", link.URL)
	}
	parsed, err := url.Parse(link.URL)
	if err != nil {
		t.Fatalf("unexpected error parsing link: %v", err)
	}
	if got := parsed.Query().Get("text"); got != link.Message {
		t.Fatalf("expected query text to round-trip to the message, got:\n%s", got)
	}
}

func TestCheckoutBuildOrderLinkFallsBackForUnknownLocale(t *testing.T) {
	service := newCheckoutServiceForTest(t)

	link, err := service.BuildOrderLink(sampleCheckoutLines(), domain.Locale("de"), domain.Fulfillment{Kind: domain.FulfillmentPickup})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(link.Message, "Hello! I would like to place the following order:") {
		t.Fatalf("expected fallback greeting, got:\n%s", link.Message)
	}
}

func TestCheckoutBuildOrderLinkRejectsEmptyCart(t *testing.T) {
	service := newCheckoutServiceForTest(t)

	_, err := service.BuildOrderLink(nil, domain.LocaleEN, domain.Fulfillment{Kind: domain.FulfillmentPickup})
	if !errors.Is(err, ErrCheckoutEmptyCart) {
		t.Fatalf("expected ErrCheckoutEmptyCart, got %v", err)
	}
}

func TestCheckoutBuildOrderLinkRejectsDeliveryWithoutAddress(t *testing.T) {
	service := newCheckoutServiceForTest(t)

	_, err := service.BuildOrderLink(sampleCheckoutLines(), domain.LocaleEN, domain.Fulfillment{Kind: domain.FulfillmentDelivery})
	if !errors.Is(err, ErrCheckoutInvalidInput) {
		t.Fatalf("expected ErrCheckoutInvalidInput, got %v", err)
	}
}

func TestCheckoutBuildOrderLinkRejectsUnknownFulfillment(t *testing.T) {
	service := newCheckoutServiceForTest(t)

	_, err := service.BuildOrderLink(sampleCheckoutLines(), domain.LocaleEN, domain.Fulfillment{Kind: "courier"})
	if !errors.Is(err, ErrCheckoutInvalidInput) {
		t.Fatalf("expected ErrCheckoutInvalidInput, got %v", err)
	}
}

func TestNewCheckoutServiceValidatesDependencies(t *testing.T) {
	bundle, err := i18n.Load("en", []string{"en"})
	if err != nil {
		t.Fatalf("unexpected error loading locale bundle: %v", err)
	}
	if _, err := NewCheckoutService(CheckoutServiceDeps{PhoneNumber: "31612345678"}); err == nil {
		t.Fatalf("expected error for missing translator")
	}
	if _, err := NewCheckoutService(CheckoutServiceDeps{Translator: bundle, PhoneNumber: "+()- "}); err == nil {
		t.Fatalf("expected error for phone number without digits")
	}
}
