package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/madina-markt/api/internal/domain"
	pfirestore "github.com/madina-markt/api/internal/platform/firestore"
	"github.com/madina-markt/api/internal/repositories"
)

const cartCollection = "carts"

// CartRepository persists cart line snapshots keyed by the cookie-held cart ID.
type CartRepository struct {
	base *pfirestore.BaseRepository[cartDocument]
	now  func() time.Time
}

var _ repositories.CartRepository = (*CartRepository)(nil)

// NewCartRepository constructs a Firestore-backed cart repository.
func NewCartRepository(provider *pfirestore.Provider) (*CartRepository, error) {
	if provider == nil {
		return nil, errors.New("cart repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[cartDocument](provider, cartCollection, nil, nil)
	return &CartRepository{base: base, now: time.Now}, nil
}

// Save overwrites the stored line set for the cart. An empty slice is written
// as-is so a cleared cart stays cleared across reloads.
func (r *CartRepository) Save(ctx context.Context, cartID string, lines []domain.CartLine) error {
	if r == nil || r.base == nil {
		return errors.New("cart repository not initialised")
	}
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return errors.New("cart repository: cart id is required")
	}

	doc := cartDocument{
		Lines:     make([]cartLineDocument, 0, len(lines)),
		UpdatedAt: r.now().UTC(),
	}
	for _, line := range lines {
		doc.Lines = append(doc.Lines, cartLineToDocument(line))
	}

	_, err := r.base.Set(ctx, cartID, doc)
	return err
}

// Load hydrates the stored lines for the cart. A missing document is an empty
// cart, not an error; a corrupt line aborts the load so the caller can start
// empty.
func (r *CartRepository) Load(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("cart repository not initialised")
	}
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, errors.New("cart repository: cart id is required")
	}

	doc, err := r.base.Get(ctx, cartID)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return nil, nil
		}
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(doc.Data.Lines))
	for _, lineDoc := range doc.Data.Lines {
		line, err := cartLineFromDocument(lineDoc)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Delete removes the stored cart document entirely.
func (r *CartRepository) Delete(ctx context.Context, cartID string) error {
	if r == nil || r.base == nil {
		return errors.New("cart repository not initialised")
	}
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return errors.New("cart repository: cart id is required")
	}

	_, err := r.base.Delete(ctx, cartID)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return nil
		}
	}
	return err
}
