// Package memberid validates and formats the 6-digit member identifier.
package memberid

import (
	"fmt"
	"strconv"
	"strings"
)

// Len is the fixed number of digits in a member identifier.
const Len = 6

// Max is the largest identifier that fits in Len digits.
const Max = 999999

// Valid reports whether s is exactly six ASCII digits.
func Valid(s string) bool {
	if len(s) != Len {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Format zero-pads n to six digits.
func Format(n int) string {
	return fmt.Sprintf("%06d", n)
}

// Email builds the synthetic login address for a member, e.g. 000123@skygym.local.
func Email(id, domain string) string {
	return id + "@" + domain
}

// FromEmail extracts the numeric identifier from a synthetic login address.
// The domain comparison is case-insensitive.
func FromEmail(email, domain string) (int, bool) {
	local, host, ok := strings.Cut(email, "@")
	if !ok || !strings.EqualFold(host, domain) || !Valid(local) {
		return 0, false
	}
	n, err := strconv.Atoi(local)
	if err != nil {
		return 0, false
	}
	return n, true
}
