package validation

import (
	"fmt"
	"regexp"
)

// EmailPattern is deliberately loose: one @, a non-empty local part and a
// domain with at least one dot. Full RFC 5322 parsing buys nothing here.
var EmailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// MaxEmailLen caps the accepted email length (RFC 5321 limit).
const MaxEmailLen = 254

// ValidateEmail checks that email looks like a deliverable address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}

	if !EmailPattern.MatchString(email) {
		return fmt.Errorf("email must be a valid address")
	}

	return nil
}
