package sessionware

import (
	"context"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-social-connect/session"
)

func handlerRecorder(called *bool) router.HandlerFunc {
	return func(ctx router.Context) error {
		*called = true
		return nil
	}
}

func TestSessionMiddlewarePropagatesUserID(t *testing.T) {
	tokens := session.NewTokenService("test-signing-key")
	signed, err := tokens.Sign("user-1", "Ada", "ada@example.com")
	require.NoError(t, err)

	var called bool
	var reqCtx context.Context
	mw := New(Config{Verifier: tokens})
	handler := mw(handlerRecorder(&called))

	ctx := router.NewMockContext()
	ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + signed)
	ctx.On("Locals", "session", mock.Anything).Return(nil)
	ctx.On("Context").Return(context.Background())
	ctx.On("SetContext", mock.Anything).Run(func(args mock.Arguments) {
		reqCtx = args.Get(0).(context.Context)
	}).Return()

	require.NoError(t, handler(ctx))
	assert.True(t, called)
	assert.Equal(t, "user-1", session.UserID(reqCtx))
}

func TestSessionMiddlewareRejectsMissingToken(t *testing.T) {
	tokens := session.NewTokenService("test-signing-key")

	var called bool
	handler := New(Config{Verifier: tokens})(handlerRecorder(&called))

	ctx := router.NewMockContext()
	ctx.On("GetString", router.HeaderAuthorization, "").Return("")
	ctx.On("Status", router.StatusBadRequest).Return(ctx)
	ctx.On("SendString", mock.Anything).Return(nil)

	require.NoError(t, handler(ctx))
	assert.False(t, called)
}

func TestSessionMiddlewareRejectsBadToken(t *testing.T) {
	tokens := session.NewTokenService("test-signing-key")
	other := session.NewTokenService("other-signing-key")
	signed, err := other.Sign("user-1", "Ada", "ada@example.com")
	require.NoError(t, err)

	var called bool
	handler := New(Config{Verifier: tokens})(handlerRecorder(&called))

	ctx := router.NewMockContext()
	ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + signed)
	ctx.On("Status", router.StatusUnauthorized).Return(ctx)
	ctx.On("SendString", mock.Anything).Return(nil)

	require.NoError(t, handler(ctx))
	assert.False(t, called)
}

func TestSessionMiddlewareOptionalPassesThrough(t *testing.T) {
	tokens := session.NewTokenService("test-signing-key")

	var called bool
	handler := New(Config{Verifier: tokens, Optional: true})(handlerRecorder(&called))

	ctx := router.NewMockContext()
	ctx.On("GetString", router.HeaderAuthorization, "").Return("")

	require.NoError(t, handler(ctx))
	assert.True(t, called)
}

func TestSessionMiddlewareFilterSkips(t *testing.T) {
	tokens := session.NewTokenService("test-signing-key")

	var called bool
	handler := New(Config{
		Verifier: tokens,
		Filter:   func(router.Context) bool { return true },
	})(handlerRecorder(&called))

	require.NoError(t, handler(router.NewMockContext()))
	assert.True(t, called)
}
