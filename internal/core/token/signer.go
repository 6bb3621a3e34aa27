// Package token issues short-lived HMAC-signed tokens bound to a single purpose.
//
// Each purpose (registration links, donation intents) gets its own Signer. The
// signing key is derived from the shared secret and the purpose string, and the
// purpose is also enforced as the JWT audience, so a token minted for one purpose
// never verifies for another.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("token invalid")
)

type Signer struct {
	key      []byte
	purpose  string
	ttl      time.Duration
	now      func() time.Time
	issuedBy string
}

func NewSigner(secret, purpose string, ttl time.Duration) *Signer {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(purpose))

	return &Signer{
		key:      mac.Sum(nil),
		purpose:  purpose,
		ttl:      ttl,
		now:      time.Now,
		issuedBy: "ngo-platform",
	}
}

// WithClock swaps the time source used both for issuing and verifying.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	cp := *s
	cp.now = now
	return &cp
}

func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Registered fills the standard claims for a new token about subject.
func (s *Signer) Registered(subject string) jwt.RegisteredClaims {
	issuedAt := s.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuedBy,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{s.purpose},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
	}
}

func (s *Signer) Sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", s.purpose, err)
	}
	return signed, nil
}

// Parse verifies tokenString into claims. It returns ErrExpired for a valid
// signature past its expiry and ErrInvalid for everything else.
func (s *Signer) Parse(tokenString string, claims jwt.Claims) error {
	if tokenString == "" {
		return ErrInvalid
	}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(s.purpose),
		jwt.WithIssuer(s.issuedBy),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
