package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reQ        = regexp.MustCompile(`^[A-Za-z0-9 _'\\-]{1,50}$`)
	reLogin    = regexp.MustCompile(`^[A-Za-z0-9._%+@-]{1,50}$`)
	reTracking = regexp.MustCompile(`^[A-Fa-f0-9-]{1,36}$`)
)

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Qty parses a quantity; missing, malformed or non-positive input means 1.
// There is no upper bound.
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ID parses a positive integer resource id (product, cart line, order, address).
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Login validates a username-or-email identifier.
func Login(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reLogin.MatchString(s)
}

// TrackingID validates the shape of a tracking id.
func TrackingID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reTracking.MatchString(s)
}

// Password requires 8-20 characters with a lower, an upper, a digit and a symbol.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 20 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
