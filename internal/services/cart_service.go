package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	domain "github.com/madina-markt/api/internal/domain"
	"github.com/madina-markt/api/internal/repositories"
)

var (
	errCartRepositoryRequired = errors.New("cart service: repository is required")
	errCartProductsRequired   = errors.New("cart service: product finder is required")
	errCartOffersRequired     = errors.New("cart service: offer finder is required")
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartNotFound indicates the requested item or line does not exist.
var ErrCartNotFound = errors.New("cart service: not found")

// ErrCartUnavailable indicates the cart service cannot fulfil the request due to missing dependencies or backend issues.
var ErrCartUnavailable = errors.New("cart service: unavailable")

type productFinder interface {
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
}

type offerFinder interface {
	GetOffer(ctx context.Context, offerID string) (domain.Offer, error)
}

// CartServiceDeps wires the persistence and catalog lookups for cart operations.
type CartServiceDeps struct {
	Repository repositories.CartRepository
	Products   productFinder
	Offers     offerFinder
	Logger     func(context.Context, string, map[string]any)
}

type cartState struct {
	mu       sync.Mutex
	lines    []domain.CartLine
	isOpen   bool
	hydrated bool
}

type cartService struct {
	repo     repositories.CartRepository
	products productFinder
	offers   offerFinder
	logger   func(context.Context, string, map[string]any)

	mu    sync.Mutex
	carts map[string]*cartState
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}
	if deps.Products == nil {
		return nil, errCartProductsRequired
	}
	if deps.Offers == nil {
		return nil, errCartOffersRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	service := &cartService{
		repo:     deps.Repository,
		products: deps.Products,
		offers:   deps.Offers,
		logger:   logger,
		carts:    map[string]*cartState{},
	}
	return service, nil
}

// Get returns the cart for the session, hydrating it from storage on first access.
func (s *cartService) Get(ctx context.Context, cartID string) (Cart, error) {
	state, err := s.stateFor(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return s.snapshot(cartID, state), nil
}

// AddProduct appends a product snapshot to the cart, or bumps the quantity when
// the same product is already present. The first snapshot's unit price is kept.
// The snapshot is taken as-is: out-of-stock and zero-priced products go in too.
func (s *cartService) AddProduct(ctx context.Context, cartID, productID string) (Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Cart{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if isRepoNotFound(err) || errors.Is(err, ErrCatalogNotFound) {
			return Cart{}, fmt.Errorf("%w: product %s", ErrCartNotFound, productID)
		}
		return Cart{}, fmt.Errorf("%w: load product: %v", ErrCartUnavailable, err)
	}
	line := domain.CartLine{
		ID:                product.ID,
		Kind:              domain.LineKindProduct,
		Product:           &product,
		Quantity:          1,
		UnitPrice:         product.Price,
		OriginalUnitPrice: product.Price,
	}
	return s.addLine(ctx, cartID, line)
}

// AddOffer appends an offer snapshot to the cart, or bumps the quantity when the
// same offer is already present. The offer snapshot is taken as-is, active window
// or not; the public listing already filters what the storefront shows.
func (s *cartService) AddOffer(ctx context.Context, cartID, offerID string) (Cart, error) {
	offerID = strings.TrimSpace(offerID)
	if offerID == "" {
		return Cart{}, fmt.Errorf("%w: offer id is required", ErrCartInvalidInput)
	}

	offer, err := s.offers.GetOffer(ctx, offerID)
	if err != nil {
		if isRepoNotFound(err) || errors.Is(err, ErrCatalogNotFound) {
			return Cart{}, fmt.Errorf("%w: offer %s", ErrCartNotFound, offerID)
		}
		return Cart{}, fmt.Errorf("%w: load offer: %v", ErrCartUnavailable, err)
	}
	line := domain.CartLine{
		ID:                offer.ID,
		Kind:              domain.LineKindOffer,
		Offer:             &offer,
		Quantity:          1,
		UnitPrice:         domain.ResolveOfferUnitPrice(offer),
		OriginalUnitPrice: domain.ResolveOfferOriginalPrice(offer),
	}
	return s.addLine(ctx, cartID, line)
}

// RemoveLine deletes the line matching the identifier regardless of its kind. A
// product and an offer sharing an identifier are removed together; in practice
// ULIDs keep identifiers disjoint across collections.
func (s *cartService) RemoveLine(ctx context.Context, cartID, lineID string) (Cart, error) {
	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return Cart{}, fmt.Errorf("%w: line id is required", ErrCartInvalidInput)
	}

	state, err := s.stateFor(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	kept := state.lines[:0]
	removed := false
	for _, line := range state.lines {
		if line.ID == lineID {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if removed {
		state.lines = kept
		s.persist(ctx, cartID, state)
	}
	return s.snapshot(cartID, state), nil
}

// Clear empties the cart but leaves the drawer state untouched.
func (s *cartService) Clear(ctx context.Context, cartID string) (Cart, error) {
	state, err := s.stateFor(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	if len(state.lines) > 0 {
		state.lines = nil
		s.persist(ctx, cartID, state)
	}
	return s.snapshot(cartID, state), nil
}

// Toggle flips the drawer open state. Drawer state is per-process presentation
// state and is never written to storage.
func (s *cartService) Toggle(ctx context.Context, cartID string) (Cart, error) {
	state, err := s.stateFor(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	state.isOpen = !state.isOpen
	return s.snapshot(cartID, state), nil
}

// Close forces the drawer shut without touching the lines.
func (s *cartService) Close(ctx context.Context, cartID string) (Cart, error) {
	state, err := s.stateFor(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	state.isOpen = false
	return s.snapshot(cartID, state), nil
}

func (s *cartService) addLine(ctx context.Context, cartID string, line domain.CartLine) (Cart, error) {
	state, err := s.stateFor(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	merged := false
	for i := range state.lines {
		if state.lines[i].Kind == line.Kind && state.lines[i].ID == line.ID {
			state.lines[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		state.lines = append(state.lines, line)
	}
	state.isOpen = true
	s.persist(ctx, cartID, state)
	return s.snapshot(cartID, state), nil
}

// stateFor returns the in-memory state for the cart, hydrating it from the
// repository on first access. A missing or unreadable stored cart hydrates to
// empty; the failure is logged, never surfaced.
func (s *cartService) stateFor(ctx context.Context, cartID string) (*cartState, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return nil, fmt.Errorf("%w: cart id is required", ErrCartInvalidInput)
	}

	s.mu.Lock()
	state, ok := s.carts[cartID]
	if !ok {
		state = &cartState{}
		s.carts[cartID] = state
	}
	s.mu.Unlock()

	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.hydrated {
		lines, err := s.repo.Load(ctx, cartID)
		if err != nil {
			s.logger(ctx, "cart.hydrate.failed", map[string]any{
				"cart_id": cartID,
				"error":   err.Error(),
			})
			lines = nil
		}
		state.lines = lines
		state.hydrated = true
	}
	return state, nil
}

// persist writes the current lines to storage. Persistence is best effort: a
// failure is logged and swallowed so the in-memory cart keeps working.
func (s *cartService) persist(ctx context.Context, cartID string, state *cartState) {
	if err := s.repo.Save(ctx, cartID, state.lines); err != nil {
		s.logger(ctx, "cart.persist.failed", map[string]any{
			"cart_id": cartID,
			"error":   err.Error(),
		})
	}
}

func (s *cartService) snapshot(cartID string, state *cartState) Cart {
	lines := make([]domain.CartLine, len(state.lines))
	copy(lines, state.lines)
	return Cart{ID: cartID, Lines: lines, IsOpen: state.isOpen}
}
