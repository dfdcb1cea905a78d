package access

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer mints HS256 tokens the gate accepts. Production tokens come from the
// identity service; this is used by the seed tool and tests.
type Signer struct {
	Secret   []byte
	Issuer   string
	Audience string
}

// Issue signs a token for subject with the given role, valid for ttl.
func (s Signer) Issue(subject, email, role string, ttl time.Duration) (string, error) {
	if len(s.Secret) == 0 {
		return "", ErrMissingSecret
	}
	if subject == "" {
		return "", errors.New("subject is required")
	}
	now := time.Now()
	claims := Claims{
		Role:  role,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if s.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}
