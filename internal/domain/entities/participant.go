package entities

import (
	"fmt"
	"strings"
)

// Participant represents one raffle entrant.
//
// ID is assigned by the registry at registration time, strictly
// increasing, never reused. Email is stored normalized and is unique
// across all participants.
type Participant struct {
	ID    uint
	Email string
}

// Code returns the public raffle identifier shown to users instead of
// the email (e.g. "USER007").
func (p Participant) Code() string {
	return fmt.Sprintf("USER%03d", p.ID)
}

// NormalizeEmail applique la politique de normalisation unique du
// registre: trim + minuscules. Validation et déduplication comparent
// toujours la forme normalisée.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether a normalized email passes the minimal
// syntactic check: it must contain "@" and at least one ".", and no
// whitespace or control characters (the journal encoding is
// line-oriented). Intentionally permissive, not RFC validation.
func ValidEmail(email string) bool {
	if email == "" {
		return false
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return false
	}
	for _, r := range email {
		if r <= ' ' || r == 0x7f {
			return false
		}
	}
	return true
}
