package jwt

import (
	"errors"
	"strconv"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// Symmetric implements JWT signing and verification using an HMAC secret.
type Symmetric struct {
	secret     []byte
	issuer     string
	audiences  []string
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      clocker
	uuid       generator
}

// NewHS512 constructs a Symmetric JWT implementation using HS512.
func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < 64 {
		return nil, ErrSigningKeyTooShort
	}

	return &Symmetric{
		secret:     cfg.Secret,
		issuer:     cfg.Issuer,
		audiences:  cfg.Audiences,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		clock:      cfg.Clock,
		uuid:       cfg.UUID,
	}, nil
}

// Generate creates a signed access token carrying the user identity claims.
func (s *Symmetric) Generate(uid int64, email, mobile, name string) (string, time.Time, error) {
	return s.sign(Claims{
		UserID:     uid,
		UserEmail:  email,
		UserMobile: mobile,
		UserName:   name,
		TokenUse:   UseAccess,
	}, s.accessTTL)
}

// GenerateRefresh creates a signed refresh token for the user.
func (s *Symmetric) GenerateRefresh(uid int64) (string, time.Time, error) {
	return s.sign(Claims{UserID: uid, TokenUse: UseRefresh}, s.refreshTTL)
}

func (s *Symmetric) sign(clm Claims, ttl time.Duration) (string, time.Time, error) {
	if len(s.secret) < 64 {
		return "", time.Time{}, ErrSigningKeyTooShort
	}

	now := s.clock.Now()
	exp := now.Add(ttl)
	clm.RegisteredClaims = libJWT.RegisteredClaims{
		ID:        s.uuid.Generate(),
		Subject:   strconv.FormatInt(clm.UserID, 10),
		Issuer:    s.issuer,
		Audience:  s.audiences,
		IssuedAt:  libJWT.NewNumericDate(now),
		NotBefore: libJWT.NewNumericDate(now),
		ExpiresAt: libJWT.NewNumericDate(exp),
	}

	token, err := libJWT.NewWithClaims(libJWT.SigningMethodHS512, clm).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, exp, nil
}

// Verify parses and validates a JWT string.
func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	if len(s.secret) < 64 {
		return Claims{}, ErrSigningKeyTooShort
	}

	token, err := libJWT.ParseWithClaims(tokenStr, &claims,
		func(t *libJWT.Token) (any, error) {
			if t.Method != libJWT.SigningMethodHS512 {
				return nil, ErrInvalidSigningMethod
			}
			return s.secret, nil
		},
		libJWT.WithIssuer(s.issuer),
		libJWT.WithAudience(s.audiences...),
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, libJWT.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, err
	}

	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
