package storage

import (
	"strings"
	"testing"
)

func TestObjectPathComposesCatalogKeys(t *testing.T) {
	cases := []struct {
		kind  AssetKind
		owner string
		file  string
		want  string
	}{
		{AssetKindProductImage, "01HZX3", "bread.webp", "catalog/products/01HZX3/bread.webp"},
		{AssetKindOfferImage, "01HZX4", "weekly.jpg", "catalog/offers/01HZX4/weekly.jpg"},
		{AssetKindCategoryImage, "01HZX5", "dairy.png", "catalog/categories/01HZX5/dairy.png"},
	}
	for _, tc := range cases {
		got, err := ObjectPath(tc.kind, tc.owner, tc.file)
		if err != nil {
			t.Fatalf("ObjectPath(%s) returned error: %v", tc.kind, err)
		}
		if got != tc.want {
			t.Fatalf("ObjectPath(%s) = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestObjectPathRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		kind  AssetKind
		owner string
		file  string
	}{
		{"missing owner", AssetKindProductImage, " ", "a.png"},
		{"missing file", AssetKindProductImage, "p1", ""},
		{"slash in owner", AssetKindOfferImage, "a/b", "a.png"},
		{"traversal in file", AssetKindOfferImage, "p1", "..secret"},
		{"unknown kind", AssetKind("banner"), "p1", "a.png"},
	}
	for _, tc := range cases {
		if _, err := ObjectPath(tc.kind, tc.owner, tc.file); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestObjectPathTrimsWhitespace(t *testing.T) {
	got, err := ObjectPath(AssetKindProductImage, "  p1  ", "  a.png ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, " ") {
		t.Fatalf("expected trimmed path, got %q", got)
	}
}
