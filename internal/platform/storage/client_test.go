package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"
)

type stubSigner struct {
	email string
	calls int
}

func (s *stubSigner) Email() string { return s.email }

func (s *stubSigner) SignBytes(_ context.Context, _ []byte) ([]byte, error) {
	s.calls++
	return []byte("stub-signature"), nil
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestNewClientRequiresSigner(t *testing.T) {
	if _, err := NewClient(nil); err == nil {
		t.Fatal("expected error for nil signer")
	}
	if _, err := NewClient(&stubSigner{email: "  "}); err == nil {
		t.Fatal("expected error for signer without email")
	}
}

func TestSignedUploadURLValidatesInput(t *testing.T) {
	client, err := NewClient(&stubSigner{email: "svc@markt.iam.gserviceaccount.com"}, WithClock(fixedClock()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name   string
		bucket string
		object string
		opts   UploadOptions
	}{
		{"missing bucket", "", "o", UploadOptions{ContentType: "image/webp"}},
		{"missing object", "b", "", UploadOptions{ContentType: "image/webp"}},
		{"missing content type", "b", "o", UploadOptions{}},
		{"denied content type", "b", "o", UploadOptions{ContentType: "application/pdf", AllowedContentTypes: []string{"image/*"}}},
		{"bad md5", "b", "o", UploadOptions{ContentType: "image/webp", ContentMD5: "not base64!!"}},
	}
	for _, tc := range cases {
		if _, err := client.SignedUploadURL(context.Background(), tc.bucket, tc.object, tc.opts); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestSignedUploadURLProducesHeaders(t *testing.T) {
	signer := &stubSigner{email: "svc@markt.iam.gserviceaccount.com"}
	client, err := NewClient(signer, WithClock(fixedClock()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := client.SignedUploadURL(context.Background(), "markt-images", "catalog/products/p1/a.webp", UploadOptions{
		ContentType:         "image/webp",
		AllowedContentTypes: []string{"image/*"},
		MaxSize:             5 << 20,
		ExpiresIn:           10 * time.Minute,
	})
	if err != nil {
		t.Fatalf("sign upload failed: %v", err)
	}

	if result.Method != "PUT" {
		t.Fatalf("expected PUT, got %s", result.Method)
	}
	if got := result.Headers["Content-Type"]; got != "image/webp" {
		t.Fatalf("unexpected content type header %q", got)
	}
	if got := result.Headers["x-goog-content-length-range"]; got != "0,5242880" {
		t.Fatalf("unexpected length range header %q", got)
	}
	wantExpiry := fixedClock()().Add(10 * time.Minute)
	if !result.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("unexpected expiry %v", result.ExpiresAt)
	}
	if signer.calls == 0 {
		t.Fatal("expected signer to be invoked")
	}

	parsed, err := url.Parse(result.URL)
	if err != nil {
		t.Fatalf("result URL does not parse: %v", err)
	}
	if !strings.Contains(parsed.Path, "markt-images") {
		t.Fatalf("expected bucket in URL path, got %q", parsed.Path)
	}
}

func TestSignedDownloadURLAppliesResponseOverrides(t *testing.T) {
	client, err := NewClient(&stubSigner{email: "svc@markt.iam.gserviceaccount.com"}, WithClock(fixedClock()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := client.SignedDownloadURL(context.Background(), "markt-images", "catalog/offers/o1/b.jpg", DownloadOptions{
		ExpiresIn:    time.Minute,
		CacheControl: "public, max-age=3600",
		ResponseType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("sign download failed: %v", err)
	}
	if result.Method != "GET" {
		t.Fatalf("expected GET, got %s", result.Method)
	}

	parsed, err := url.Parse(result.URL)
	if err != nil {
		t.Fatalf("result URL does not parse: %v", err)
	}
	query := parsed.Query()
	if query.Get("response-cache-control") == "" {
		t.Fatal("expected response-cache-control query parameter")
	}
	if query.Get("response-content-type") != "image/jpeg" {
		t.Fatalf("unexpected response-content-type %q", query.Get("response-content-type"))
	}
}

func TestContentTypeAllowed(t *testing.T) {
	cases := []struct {
		contentType string
		allowed     []string
		want        bool
	}{
		{"image/webp", []string{"image/*"}, true},
		{"image/webp", []string{"image/png"}, false},
		{"IMAGE/PNG", []string{"image/png"}, true},
		{"application/json", []string{"*"}, true},
		{"application/json", nil, false},
	}
	for _, tc := range cases {
		if got := contentTypeAllowed(tc.contentType, tc.allowed); got != tc.want {
			t.Fatalf("contentTypeAllowed(%q, %v) = %v, want %v", tc.contentType, tc.allowed, got, tc.want)
		}
	}
}
