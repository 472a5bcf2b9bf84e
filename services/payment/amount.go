package payment

import (
	"fmt"
	"strconv"
	"strings"
)

// ToCents converts a decimal amount string to minor units without float math.
// Everything except digits and the dot is dropped first, so "$1,234.5" is 123450.
// Extra fraction digits are truncated.
func ToCents(amount string) (int64, error) {
	var clean strings.Builder
	for _, r := range amount {
		if (r >= '0' && r <= '9') || r == '.' {
			clean.WriteRune(r)
		}
	}

	whole, fraction, _ := strings.Cut(clean.String(), ".")
	if i := strings.IndexByte(fraction, '.'); i >= 0 {
		fraction = fraction[:i]
	}
	fraction = (fraction + "00")[:2]

	digits := whole + fraction
	cents, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", amount)
	}
	return cents, nil
}
