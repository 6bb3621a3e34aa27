package auth

import (
	"context"
	"time"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/user"
	"github.com/golang-jwt/jwt/v5"
)

const accessTokenAudience = "ngo-platform-admin"

var ErrUserNotFound = errors.NewNotFoundError("User not found", errors.ErrCodeInvalidCredentials)

// Repository loads admin accounts. GetByEmail returns inactive users too so
// the service can tell them apart from wrong passwords.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetUserWithPermissions(ctx context.Context, userID int64) (*errors.User, error)
}

// TokenGenerator issues and validates access tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID int64, email string) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret []byte
	AccessTokenTTL    time.Duration
	now               func() time.Time
}
