package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSanitizeRoute(t *testing.T) {
	if got := SanitizeRoute(""); got != "/" {
		t.Fatalf("expected empty route to normalise to /, got %q", got)
	}
	if got := SanitizeRoute("/api/v1/cart\x00:toggle"); got != "/api/v1/cart:toggle" {
		t.Fatalf("expected control characters stripped, got %q", got)
	}
}

func TestSanitizeCartID(t *testing.T) {
	if got := SanitizeCartID(""); got != "" {
		t.Fatalf("expected empty id to stay empty, got %q", got)
	}
	// A cookie value longer than any ULID gets truncated.
	long := strings.Repeat("a", 100)
	if got := SanitizeCartID(long); len(got) != 40 {
		t.Fatalf("expected truncation to 40 characters, got %d", len(got))
	}
	if got := SanitizeCartID("01J4\x1bZX8K"); got != "01J4ZX8K" {
		t.Fatalf("expected escape byte removed, got %q", got)
	}
}

func TestCartIDFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	if got := cartIDFromRequest(r, "markt_cart"); got != "" {
		t.Fatalf("expected empty id without cookie, got %q", got)
	}

	r.AddCookie(&http.Cookie{Name: "markt_cart", Value: "01J4ZX8KQ0TJ5M3V0YB8C2R9QD"})
	if got := cartIDFromRequest(r, "markt_cart"); got != "01J4ZX8KQ0TJ5M3V0YB8C2R9QD" {
		t.Fatalf("unexpected cart id %q", got)
	}
	if got := cartIDFromRequest(r, ""); got != "" {
		t.Fatalf("expected empty id when cookie name unset, got %q", got)
	}
}
