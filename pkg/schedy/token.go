package schedy

import "time"

const (
	renewalMargin   = 60 * time.Second
	renewalFraction = 0.95
)

// Token is a bearer token obtained by signing in.
type Token struct {
	Value     string
	ExpiresAt time.Time
	soon      time.Time
}

// NewToken computes the renewal threshold: whichever comes first of one
// minute before expiry and 95% of the lifetime measured from issuedAt.
func NewToken(value string, expiresAt, issuedAt time.Time) *Token {
	soon := expiresAt.Add(-renewalMargin)
	lifetime := expiresAt.Sub(issuedAt)
	if byFraction := issuedAt.Add(time.Duration(float64(lifetime) * renewalFraction)); byFraction.Before(soon) {
		soon = byFraction
	}
	return &Token{Value: value, ExpiresAt: expiresAt, soon: soon}
}

func (t *Token) ExpiresSoon(now time.Time) bool {
	return t == nil || !now.Before(t.soon)
}

func (t *Token) Expired(now time.Time) bool {
	return t == nil || !now.Before(t.ExpiresAt)
}

// RenewAt is the instant from which the token is considered expiring.
func (t *Token) RenewAt() time.Time {
	return t.soon
}
