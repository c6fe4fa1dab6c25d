package connection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-social-connect"
)

// Message types the authorization callback may deliver. They mirror the
// structured messages the provider-side redirect page posts back to the
// waiting flow.
const (
	MessageAuthSuccess = "INSTAGRAM_AUTH_SUCCESS"
	MessageAuthError   = "INSTAGRAM_AUTH_ERROR"
)

// Message is the structured payload delivered by the callback transport
// when the provider redirects back.
type Message struct {
	Type  string `json:"type"`
	Code  string `json:"code,omitempty"`
	State string `json:"state,omitempty"`
	Error string `json:"error,omitempty"`
}

// Grant is the authorization outcome: the code to exchange and the
// state token echoed back by the provider.
type Grant struct {
	Code  string
	State string
}

// Authorizer is the single-shot awaitable that decouples the manager
// from any particular callback transport (popup + message relay, local
// HTTP redirect listener, deep link). Authorize blocks until the
// external callback delivers a grant or the attempt fails.
type Authorizer interface {
	Authorize(ctx context.Context, authURL string) (*Grant, error)
}

// Window is an open authorization window. Closed reports whether the
// user dismissed it; Close dismisses it programmatically.
type Window interface {
	Closed() bool
	Close()
}

// Launcher opens the authorization URL in a separate window sized for
// manual review. A nil window or an error means the window was blocked.
type Launcher func(authURL string) (Window, error)

// CallbackBroker routes one callback message to the single pending
// authorization attempt. Messages from unexpected origins and messages
// with no waiter are ignored.
type CallbackBroker struct {
	mu      sync.Mutex
	origin  string
	pending chan Message
}

// NewCallbackBroker creates a broker that only accepts messages from
// the given origin. Empty origin disables the check.
func NewCallbackBroker(origin string) *CallbackBroker {
	return &CallbackBroker{origin: origin}
}

// Await registers a single-shot waiter. The cancel function must be
// called once the attempt resolves, so stray messages are dropped.
func (b *CallbackBroker) Await() (<-chan Message, func()) {
	ch := make(chan Message, 1)

	b.mu.Lock()
	b.pending = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if b.pending == ch {
			b.pending = nil
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Deliver hands a message to the pending waiter. It returns false when
// the message was ignored: wrong origin, unknown type, or no waiter.
func (b *CallbackBroker) Deliver(msg Message, origin string) bool {
	if b.origin != "" && origin != b.origin {
		return false
	}
	if msg.Type != MessageAuthSuccess && msg.Type != MessageAuthError {
		return false
	}

	b.mu.Lock()
	ch := b.pending
	b.pending = nil
	b.mu.Unlock()

	if ch == nil {
		return false
	}
	ch <- msg
	return true
}

// RelayAuthorizer reproduces the popup protocol: open a window, poll
// every second for the user closing it, wait for the callback message,
// and bound the whole attempt with an overall timeout.
type RelayAuthorizer struct {
	launcher Launcher
	broker   *CallbackBroker
	timeout  time.Duration
	poll     time.Duration
	logger   connect.Logger
}

// RelayOption configures the relay authorizer.
type RelayOption func(*RelayAuthorizer)

// WithAuthorizationTimeout overrides the overall wait bound.
func WithAuthorizationTimeout(d time.Duration) RelayOption {
	return func(a *RelayAuthorizer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithClosedPollInterval overrides the window-closed poll interval.
func WithClosedPollInterval(d time.Duration) RelayOption {
	return func(a *RelayAuthorizer) {
		if d > 0 {
			a.poll = d
		}
	}
}

// WithRelayLogger sets the logger.
func WithRelayLogger(logger connect.Logger) RelayOption {
	return func(a *RelayAuthorizer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewRelayAuthorizer creates a relay authorizer with the original flow
// defaults: 5 minute timeout, 1 second closed poll.
func NewRelayAuthorizer(launcher Launcher, broker *CallbackBroker, opts ...RelayOption) *RelayAuthorizer {
	a := &RelayAuthorizer{
		launcher: launcher,
		broker:   broker,
		timeout:  5 * time.Minute,
		poll:     time.Second,
		logger:   connect.DefaultLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Authorize implements Authorizer.
func (a *RelayAuthorizer) Authorize(ctx context.Context, authURL string) (*Grant, error) {
	if a.launcher == nil || a.broker == nil {
		return nil, ErrWindowBlocked
	}

	win, err := a.launcher(authURL)
	if err != nil || win == nil {
		return nil, ErrWindowBlocked
	}

	msgCh, cancel := a.broker.Await()
	defer cancel()

	ticker := time.NewTicker(a.poll)
	defer ticker.Stop()

	deadline := time.NewTimer(a.timeout)
	defer deadline.Stop()

	for {
		select {
		case msg := <-msgCh:
			win.Close()
			if msg.Type == MessageAuthError {
				reason := msg.Error
				if reason == "" {
					reason = "authorization denied"
				}
				return nil, fmt.Errorf("authorization failed: %s", reason)
			}
			return &Grant{Code: msg.Code, State: msg.State}, nil

		case <-ticker.C:
			if win.Closed() {
				return nil, ErrAuthorizationCancelled
			}

		case <-deadline.C:
			if !win.Closed() {
				win.Close()
			}
			return nil, ErrAuthorizationTimeout

		case <-ctx.Done():
			win.Close()
			return nil, ctx.Err()
		}
	}
}
