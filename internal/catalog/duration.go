package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseLoanDays reads a loan duration in days from the leading integer of s.
// Trailing text is ignored, so "7 days" is 7. Negative and fractional values
// are rejected, as is anything without leading digits.
func ParseLoanDays(s string) (int, error) {
	rest := strings.TrimLeftFunc(s, unicode.IsSpace)

	sign := ""
	if rest != "" && (rest[0] == '+' || rest[0] == '-') {
		sign, rest = rest[:1], rest[1:]
	}

	n := 0
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %q must start with a number", ErrInvalidDuration, s)
	}

	// "2.5" is a fractional day count, not 2 followed by a suffix.
	if n+1 < len(rest) && rest[n] == '.' && rest[n+1] >= '0' && rest[n+1] <= '9' {
		return 0, fmt.Errorf("%w: %q is not a whole number of days", ErrInvalidDuration, s)
	}

	days, err := strconv.Atoi(rest[:n])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidDuration, s)
	}
	if sign == "-" && days != 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidDuration, s)
	}

	return days, nil
}
