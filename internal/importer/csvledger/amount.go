package csvledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount parses a decimal amount string into cents. Both plain
// ("12.34") and European ("1.234,56") formats are accepted.
func parseAmount(s string) (int64, error) {
	clean := strings.TrimSpace(s)

	hasComma := strings.Contains(clean, ",")
	hasDot := strings.Contains(clean, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(clean, ",") > strings.LastIndex(clean, ".") {
			// "1.234,56": dot is a thousands separator.
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			// "1,234.56"
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case hasComma:
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
