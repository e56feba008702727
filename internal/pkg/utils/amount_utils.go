package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ShiftMinorUnits converts an integer minor-unit amount to major units.
// Example: amount=1500000000, decimals=9 => 1.5
func ShiftMinorUnits(amount decimal.Decimal, decimals int32) decimal.Decimal {
	if decimals == 0 {
		return amount
	}
	return amount.Shift(-decimals)
}

// FormatMinorUnits renders a minor-unit amount as a human-readable major-unit string
// without trailing zeros. Example: amount=1234500000, decimals=9 => "1.2345"
func FormatMinorUnits(amount decimal.Decimal, decimals int32) string {
	value := ShiftMinorUnits(amount, decimals)
	if value.IsZero() {
		return "0"
	}

	formatted := value.StringFixed(decimals)
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimRight(formatted, ".")
	}
	return formatted
}

// ParseAmount parses a user facing decimal string. Empty or malformed input yields ok=false;
// the sign is kept as given.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}
