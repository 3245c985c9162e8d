package domain

import "github.com/shopspring/decimal"

// ResolveOfferUnitPrice returns the per-unit price charged when an offer enters the
// cart. The branch order is load-bearing and mirrors the storefront's historical
// behaviour: an explicit discounted price wins; a recorded pre-discount price implies
// the current price is already discounted; otherwise the plain price (zero when unset).
func ResolveOfferUnitPrice(offer Offer) decimal.Decimal {
	if offer.PriceAfter != nil {
		return *offer.PriceAfter
	}
	if offer.PriceBefore != nil {
		return offer.Price
	}
	return offer.Price
}

// ResolveOfferOriginalPrice returns the pre-discount reference price used only for
// displaying savings. When no pre-discount price is recorded it equals the unit price.
func ResolveOfferOriginalPrice(offer Offer) decimal.Decimal {
	if offer.PriceBefore != nil {
		return *offer.PriceBefore
	}
	return ResolveOfferUnitPrice(offer)
}
