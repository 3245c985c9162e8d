package i18n

import (
	"strings"

	"github.com/madina-markt/api/internal/domain"
	"github.com/shopspring/decimal"
)

// FormatAmount renders a monetary amount with two decimal places using the
// locale's decimal glyph: nl and ar use a comma, en uses a period.
func FormatAmount(amount decimal.Decimal, locale domain.Locale) string {
	fixed := amount.StringFixed(2)
	switch locale {
	case domain.LocaleNL, domain.LocaleAR:
		return strings.Replace(fixed, ".", ",", 1)
	default:
		return fixed
	}
}

// FormatMessageAmount renders a monetary amount for the WhatsApp message body.
// The storefront always renders message amounts with a comma decimal glyph,
// regardless of locale.
func FormatMessageAmount(amount decimal.Decimal) string {
	return strings.Replace(amount.StringFixed(2), ".", ",", 1)
}
