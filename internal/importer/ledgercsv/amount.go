package ledgercsv

import (
	"strings"

	"github.com/shopspring/decimal"
)

var digits = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٫", ".", "٬", "", ",", "", " ", "", " ", "",
)

// parseAmount reads "1,500.50", "١٬٥٠٠٫٥٠" or "(200)" style values.
// Parentheses mean a negative amount.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := digits.Replace(strings.TrimSpace(s))

	negative := strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")")
	if negative {
		clean = clean[1 : len(clean)-1]
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, err
	}

	if negative {
		d = d.Neg()
	}

	return d, nil
}
