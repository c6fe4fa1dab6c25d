// Package session mints and verifies the signed tokens that identify
// the logged-in user, and carries the resolved user id through
// context.
package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/goliatone/go-errors"
)

// Claims are the session token claims.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UserID returns the subject.
func (c *Claims) UserID() string {
	return c.RegisteredClaims.Subject
}

// TokenService signs and verifies session tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	expiration time.Duration
	now        func() time.Time
}

// TokenOption configures the service.
type TokenOption func(*TokenService)

// WithIssuer sets the token issuer.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithExpiration sets the token lifetime.
func WithExpiration(d time.Duration) TokenOption {
	return func(s *TokenService) {
		if d > 0 {
			s.expiration = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenService creates a token service signing with HS256.
func NewTokenService(signingKey string, opts ...TokenOption) *TokenService {
	s := &TokenService{
		signingKey: []byte(signingKey),
		issuer:     "social-connect",
		expiration: 72 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Sign mints a session token for a user.
func (s *TokenService) Sign(userID, name, email string) (string, error) {
	now := s.now()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
		Name:  name,
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryAuth, "failed to sign session token")
	}
	return signed, nil
}

// Verify parses and validates a session token.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method", errors.CategoryAuth)
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, "invalid session token").
			WithCode(errors.CodeUnauthorized)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}
	return claims, nil
}

type contextKey struct{}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID extracts the authenticated user id from the context. The
// empty string means no session.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
