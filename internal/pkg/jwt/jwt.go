package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSigningMethod is returned when the JWT signing method is not supported.
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")

	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrTokenExpired is returned when the JWT token has expired.
	ErrTokenExpired = errors.New("JWT token has expired")

	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
)

// Token use values carried in the token_use claim.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

// JWT defines the operations needed by the app: mint access and refresh
// tokens for a user and verify a presented token.
type JWT interface {
	// Generate creates a signed access token carrying the user identity claims.
	Generate(uid int64, email, mobile, name string) (string, time.Time, error)
	// GenerateRefresh creates a signed refresh token for the user.
	GenerateRefresh(uid int64) (string, time.Time, error)
	// Verify parses and validates the token and returns claims.
	Verify(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type jwtContextKey struct{}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	// Secret is the HMAC signing key.
	Secret []byte
	// Issuer is the token issuer value.
	Issuer string
	// Audiences are the accepted token audiences.
	Audiences []string
	// AccessTTL is the access token time-to-live.
	AccessTTL time.Duration
	// RefreshTTL is the refresh token time-to-live.
	RefreshTTL time.Duration
	// Clock provides the current time source.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

// Claims is a helper for wrapping registered claims with the user payload.
type Claims struct {
	// RegisteredClaims holds the standard JWT claims.
	jwt.RegisteredClaims
	// UserID is the authenticated user identifier.
	UserID int64 `json:"user_id,string"`
	// UserEmail is the authenticated user email.
	UserEmail string `json:"email,omitempty"`
	// UserMobile is the authenticated user mobile number.
	UserMobile string `json:"mobile,omitempty"`
	// UserName is the authenticated user display name.
	UserName string `json:"name,omitempty"`
	// TokenUse distinguishes access tokens from refresh tokens.
	TokenUse string `json:"token_use"`
}

// GetAuth returns the JWT claims stored in the context, if any.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}

// SetAuth stores JWT claims in the context.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}
