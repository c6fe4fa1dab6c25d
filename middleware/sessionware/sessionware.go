// Package sessionware provides the HTTP middleware that resolves the
// session token into the request context.
package sessionware

import (
	"errors"
	"strings"

	"github.com/goliatone/go-router"

	"github.com/goliatone/go-social-connect/session"
)

// ErrTokenMissingOrMalformed is returned when no usable token is found
// in the request.
var ErrTokenMissingOrMalformed = errors.New("missing or malformed session token")

// TokenVerifier validates a raw token string into session claims.
type TokenVerifier interface {
	Verify(tokenString string) (*session.Claims, error)
}

type Config struct {
	// Filter skips the middleware for matching requests.
	Filter func(router.Context) bool

	// Verifier is required.
	Verifier TokenVerifier

	// ContextKey is the locals key the claims are stored under.
	// Defaults to "session".
	ContextKey string

	// AuthScheme is the expected Authorization scheme. Defaults to
	// "Bearer".
	AuthScheme string

	// Optional forces requests through without a token; handlers see
	// an empty session instead of a 401.
	Optional bool

	ErrorHandler router.ErrorHandler
}

func configDefault(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Verifier == nil {
		panic("sessionware: Verifier is required")
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = "session"
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx router.Context, err error) error {
			if errors.Is(err, ErrTokenMissingOrMalformed) {
				return ctx.Status(router.StatusBadRequest).SendString(err.Error())
			}
			return ctx.Status(router.StatusUnauthorized).SendString("Invalid or expired session")
		}
	}

	return cfg
}

// New creates the session middleware. On success the claims land in
// the router locals under ContextKey and the authenticated user id is
// propagated to the standard context, where the repositories read it.
func New(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return next(ctx)
			}

			raw, err := tokenFromHeader(ctx, cfg.AuthScheme)
			if err != nil {
				if cfg.Optional {
					return next(ctx)
				}
				return cfg.ErrorHandler(ctx, err)
			}

			claims, err := cfg.Verifier.Verify(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, claims)
			ctx.SetContext(session.WithUserID(ctx.Context(), claims.UserID()))

			return next(ctx)
		}
	}
}

func tokenFromHeader(ctx router.Context, scheme string) (string, error) {
	auth := ctx.GetString(router.HeaderAuthorization, "")
	if auth == "" {
		return "", ErrTokenMissingOrMalformed
	}

	prefix := scheme + " "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", ErrTokenMissingOrMalformed
	}
	return strings.TrimSpace(auth[len(prefix):]), nil
}

// ClaimsFromContext returns the claims stored by the middleware, or
// nil when the request carried no valid session.
func ClaimsFromContext(ctx router.Context, contextKey string) *session.Claims {
	if contextKey == "" {
		contextKey = "session"
	}
	claims, _ := ctx.Locals(contextKey).(*session.Claims)
	return claims
}
