package connection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	mu       sync.Mutex
	closed   bool
	closedBy string
}

func (w *fakeWindow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *fakeWindow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		if w.closedBy == "" {
			w.closedBy = "program"
		}
	}
}

func (w *fakeWindow) userCloses() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.closedBy = "user"
}

func launcherFor(win *fakeWindow) Launcher {
	return func(authURL string) (Window, error) {
		return win, nil
	}
}

func TestBrokerIgnoresWrongOrigin(t *testing.T) {
	broker := NewCallbackBroker("https://app.example.com")

	_, cancel := broker.Await()
	defer cancel()

	ok := broker.Deliver(Message{Type: MessageAuthSuccess, Code: "abc"}, "https://evil.example.com")
	assert.False(t, ok)

	ok = broker.Deliver(Message{Type: MessageAuthSuccess, Code: "abc"}, "https://app.example.com")
	assert.True(t, ok)
}

func TestBrokerIgnoresUnknownTypeAndNoWaiter(t *testing.T) {
	broker := NewCallbackBroker("")

	assert.False(t, broker.Deliver(Message{Type: "SOMETHING_ELSE"}, ""))
	assert.False(t, broker.Deliver(Message{Type: MessageAuthSuccess}, ""))

	ch, cancel := broker.Await()
	cancel()
	assert.False(t, broker.Deliver(Message{Type: MessageAuthSuccess}, ""))
	select {
	case <-ch:
		t.Fatal("cancelled waiter must not receive")
	default:
	}
}

func TestAuthorizeSuccess(t *testing.T) {
	win := &fakeWindow{}
	broker := NewCallbackBroker("")
	auth := NewRelayAuthorizer(launcherFor(win), broker,
		WithClosedPollInterval(10*time.Millisecond),
	)

	go func() {
		time.Sleep(20 * time.Millisecond)
		broker.Deliver(Message{Type: MessageAuthSuccess, Code: "abc", State: "st"}, "")
	}()

	grant, err := auth.Authorize(context.Background(), "https://auth.example/authorize")
	require.NoError(t, err)
	assert.Equal(t, "abc", grant.Code)
	assert.Equal(t, "st", grant.State)
	assert.True(t, win.Closed())
}

func TestAuthorizeErrorMessage(t *testing.T) {
	win := &fakeWindow{}
	broker := NewCallbackBroker("")
	auth := NewRelayAuthorizer(launcherFor(win), broker)

	go func() {
		time.Sleep(10 * time.Millisecond)
		broker.Deliver(Message{Type: MessageAuthError, Error: "access_denied"}, "")
	}()

	_, err := auth.Authorize(context.Background(), "https://auth.example/authorize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestAuthorizeCancelledByUserClose(t *testing.T) {
	win := &fakeWindow{}
	broker := NewCallbackBroker("")
	auth := NewRelayAuthorizer(launcherFor(win), broker,
		WithClosedPollInterval(10*time.Millisecond),
	)

	go func() {
		time.Sleep(20 * time.Millisecond)
		win.userCloses()
	}()

	start := time.Now()
	_, err := auth.Authorize(context.Background(), "https://auth.example/authorize")
	require.ErrorIs(t, err, ErrAuthorizationCancelled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAuthorizeTimeout(t *testing.T) {
	win := &fakeWindow{}
	broker := NewCallbackBroker("")
	auth := NewRelayAuthorizer(launcherFor(win), broker,
		WithAuthorizationTimeout(30*time.Millisecond),
		WithClosedPollInterval(10*time.Millisecond),
	)

	_, err := auth.Authorize(context.Background(), "https://auth.example/authorize")
	require.ErrorIs(t, err, ErrAuthorizationTimeout)
	assert.True(t, win.Closed())
}

func TestAuthorizeBlockedWindow(t *testing.T) {
	broker := NewCallbackBroker("")

	blocked := NewRelayAuthorizer(func(string) (Window, error) {
		return nil, errors.New("popup blocked")
	}, broker)
	_, err := blocked.Authorize(context.Background(), "https://auth.example/authorize")
	require.ErrorIs(t, err, ErrWindowBlocked)

	nilWin := NewRelayAuthorizer(func(string) (Window, error) {
		return nil, nil
	}, broker)
	_, err = nilWin.Authorize(context.Background(), "https://auth.example/authorize")
	require.ErrorIs(t, err, ErrWindowBlocked)
}

func TestAuthorizeContextCancel(t *testing.T) {
	win := &fakeWindow{}
	broker := NewCallbackBroker("")
	auth := NewRelayAuthorizer(launcherFor(win), broker)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := auth.Authorize(ctx, "https://auth.example/authorize")
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, win.Closed())
}
