package identity

import "regexp"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether email has a plausible address shape.
// Backends reject malformed addresses before touching storage.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
