package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a parsed currency amount. Currency is the trailing ISO code, or
// empty when the text carried none.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// The sign may sit on either side of the dollar glyph: "-$5", "$-5", "− $5".
var currencyPattern = regexp.MustCompile(`^([+\-−])?\s*\$?\s*([+\-−])?\s*(\d+(?:,\d+)*(?:\.\d{1,2})?)\s*([A-Z]{3})?$`)

// ParseCurrency reads amounts like "$1,234.56", "− $50.00", "$-50.00 USD"
// and "+12.00 CAD". It reports false when text does not match.
func ParseCurrency(text string) (Money, bool) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
	m := currencyPattern.FindStringSubmatch(text)
	if m == nil {
		return Money{}, false
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(m[3], ",", ""))
	if err != nil {
		return Money{}, false
	}
	if isMinus(m[1]) || isMinus(m[2]) {
		amount = amount.Neg()
	}
	return Money{Amount: amount, Currency: m[4]}, true
}

func isMinus(sign string) bool {
	return sign == "-" || sign == "−"
}
