package order

import (
	"fmt"
	"regexp"
)

// DefaultNumberPrefix is the storefront's order number prefix.
const DefaultNumberPrefix = "NX"

var numberPattern = regexp.MustCompile(`^[A-Z]+-\d{4}-\d{6,}$`)

// Numberer renders order numbers as PREFIX-YEAR-SEQUENCE with the sequence
// zero padded to six digits. Larger sequences keep all their digits.
type Numberer struct {
	Prefix string
}

func (n Numberer) prefix() string {
	if n.Prefix == "" {
		return DefaultNumberPrefix
	}
	return n.Prefix
}

// Format renders the seq-th order number of year.
func (n Numberer) Format(year int, seq int64) string {
	return fmt.Sprintf("%s-%04d-%06d", n.prefix(), year, seq)
}

// Next renders the number following existing orders in year.
func (n Numberer) Next(year int, existing int64) string {
	return n.Format(year, existing+1)
}

// ValidNumber reports whether s looks like an order number.
func ValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}
