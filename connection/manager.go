package connection

import (
	"context"
	"time"

	"github.com/goliatone/go-social-connect"
)

// Provider is the OAuth collaborator for one social backend. Configured
// reports whether live credentials are present; everything else maps to
// one provider endpoint.
type Provider interface {
	Name() string
	Configured() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*connect.Tokens, error)
	Profile(ctx context.Context, accessToken string) (*connect.RemoteAccount, error)
	Refresh(ctx context.Context, accessToken string) (*connect.Tokens, error)
	Revoke(ctx context.Context, accessToken string) error
	ValidateToken(ctx context.Context, accessToken string) error
}

// Manager drives the connect/refresh/disconnect lifecycle of the single
// social connection each application user may hold. It never caches the
// Connection beyond one operation: state is re-read from the profile
// store before every mutation and written back whole, so the last
// writer wins.
type Manager struct {
	profiles   connect.ProfileStore
	provider   Provider
	authorizer Authorizer
	states     StateStore
	logger     connect.Logger
	notifier   connect.Notifier
	now        func() time.Time
}

// ManagerOption configures the manager.
type ManagerOption func(*Manager)

// WithStateStore sets a custom state token store.
func WithStateStore(s StateStore) ManagerOption {
	return func(m *Manager) {
		if s != nil {
			m.states = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger connect.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithNotifier sets the user-facing notifier.
func WithNotifier(n connect.Notifier) ManagerOption {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a connection manager.
func NewManager(profiles connect.ProfileStore, provider Provider, authorizer Authorizer, opts ...ManagerOption) *Manager {
	m := &Manager{
		profiles:   profiles,
		provider:   provider,
		authorizer: authorizer,
		states:     NewMemoryStateStore(),
		logger:     connect.DefaultLogger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.notifier == nil {
		m.notifier = connect.NewLogNotifier(m.logger)
	}
	return m
}

// States exposes the transient state store so the startup purge can
// clear residual tokens.
func (m *Manager) States() StateStore {
	return m.states
}

// Connect runs the full authorization-code flow for the current user.
// Nothing is persisted until the terminal success step: a failure at
// any point leaves the stored Connection exactly as it was.
func (m *Manager) Connect(ctx context.Context) connect.Result {
	user, err := m.profiles.CurrentUser(ctx)
	if err != nil || user == nil {
		return m.fail(ErrNotAuthenticated.Error())
	}

	if !m.provider.Configured() {
		return m.fail(ErrDemoMode.Error())
	}

	if user.Connection != nil && user.Connection.IsConnected {
		return m.fail(ErrAlreadyConnected.Error())
	}

	state, err := m.states.Issue(user.ID)
	if err != nil {
		m.logger.Error("state token generation failed: %v", err)
		return m.fail("failed to connect Instagram")
	}

	grant, err := m.authorizer.Authorize(ctx, m.provider.AuthCodeURL(state))
	if err != nil {
		// Discard the issued token so nothing is left behind.
		m.states.Consume(user.ID)
		return m.fail(err.Error())
	}

	// The token is single-use: consumed here whether or not it matches,
	// so a replayed callback always fails the equality check.
	stored, ok := m.states.Consume(user.ID)
	if !ok || stored != grant.State {
		return m.fail(ErrInvalidState.Error())
	}

	tokens, err := m.provider.Exchange(ctx, grant.Code)
	if err != nil {
		m.logger.Error("token exchange failed: %v", err)
		return m.fail(ErrExchangeFailed.Error())
	}

	account, err := m.provider.Profile(ctx, tokens.AccessToken)
	if err != nil {
		m.logger.Error("profile fetch failed: %v", err)
		return m.fail(ErrProfileFetchFailed.Error())
	}

	conn := &connect.Connection{
		IsConnected: true,
		Account:     account,
		Tokens:      tokens,
		ConnectedAt: m.now(),
	}

	if err := m.profiles.SaveConnection(ctx, user.ID, conn); err != nil {
		m.logger.Error("failed to persist connection: %v", err)
		return m.fail("failed to connect Instagram")
	}

	m.notifier.Success("Successfully connected to Instagram as @%s!", account.Username)
	return connect.Ok()
}

// Disconnect clears the current user's connection. Remote revocation is
// best effort: a revoke failure is logged and ignored because the local
// disconnect must always succeed.
func (m *Manager) Disconnect(ctx context.Context) connect.Result {
	user, err := m.profiles.CurrentUser(ctx)
	if err != nil || user == nil {
		return m.fail("user not authenticated")
	}

	conn := user.Connection
	if conn == nil || !conn.IsConnected {
		return m.fail(ErrNotConnected.Error())
	}

	if m.provider.Configured() && conn.Tokens != nil && conn.Tokens.AccessToken != "" {
		if err := m.provider.Revoke(ctx, conn.Tokens.AccessToken); err != nil {
			m.logger.Error("failed to revoke token, continuing disconnect: %v", err)
		}
	}

	if err := m.profiles.SaveConnection(ctx, user.ID, conn.Disconnected()); err != nil {
		m.logger.Error("failed to persist disconnect: %v", err)
		return m.fail("failed to disconnect")
	}

	m.notifier.Success("Instagram account disconnected successfully")
	return connect.Ok()
}

// Refresh replaces the stored tokens with freshly issued ones. In demo
// mode it only stamps LastRefresh and always succeeds. A live refresh
// failure leaves the connection untouched and connected; a stale token
// is not fatal.
func (m *Manager) Refresh(ctx context.Context) connect.Result {
	user, err := m.profiles.CurrentUser(ctx)
	if err != nil || user == nil {
		return m.fail(ErrNotConnected.Error())
	}

	conn := user.Connection
	if conn == nil || !conn.IsConnected {
		return m.fail(ErrNotConnected.Error())
	}

	if conn.Tokens == nil || conn.Tokens.AccessToken == "" {
		return m.fail(ErrNoAccessToken.Error())
	}

	if !m.provider.Configured() {
		updated := conn.Clone()
		now := m.now()
		updated.LastRefresh = &now
		if err := m.profiles.SaveConnection(ctx, user.ID, updated); err != nil {
			m.logger.Error("failed to stamp refresh: %v", err)
			return m.fail("failed to refresh token")
		}
		return connect.Ok()
	}

	tokens, err := m.provider.Refresh(ctx, conn.Tokens.AccessToken)
	if err != nil {
		m.logger.Error("token refresh failed: %v", err)
		return m.fail(ErrRefreshFailed.Error())
	}

	updated := conn.Clone()
	updated.Tokens = tokens
	now := m.now()
	updated.LastRefresh = &now

	if err := m.profiles.SaveConnection(ctx, user.ID, updated); err != nil {
		m.logger.Error("failed to persist refreshed tokens: %v", err)
		return m.fail(ErrRefreshFailed.Error())
	}

	m.notifier.Success("Instagram token refreshed successfully")
	return connect.Ok()
}

// Current returns the current user's connection, or nil when no user is
// logged in. Absence of a session is expected, not an error.
func (m *Manager) Current(ctx context.Context) (*connect.Connection, error) {
	user, err := m.profiles.CurrentUser(ctx)
	if err != nil || user == nil {
		return nil, nil
	}
	return user.Connection, nil
}

// Validate reports whether a stored connection is still usable. Demo
// connections are considered valid; live ones get one lightweight
// profile call.
func (m *Manager) Validate(ctx context.Context, conn *connect.Connection) bool {
	if conn == nil || !conn.IsConnected || conn.Tokens == nil || conn.Tokens.AccessToken == "" {
		return false
	}
	if !m.provider.Configured() {
		return true
	}
	return m.provider.ValidateToken(ctx, conn.Tokens.AccessToken) == nil
}

// Bootstrap validates the current user's stored connection on startup
// and disconnects it locally when the live token no longer works.
func (m *Manager) Bootstrap(ctx context.Context) error {
	user, err := m.profiles.CurrentUser(ctx)
	if err != nil || user == nil {
		return nil
	}

	conn := user.Connection
	if conn == nil || !conn.IsConnected {
		return nil
	}

	if !m.Validate(ctx, conn) {
		m.logger.Info("stored Instagram connection invalid, disconnecting")
		return m.profiles.SaveConnection(ctx, user.ID, conn.Disconnected())
	}
	return nil
}

// PurgeDemoData drops residual demo/test tokens from the transient
// store. Invoked by the capability coordinator on startup only.
func (m *Manager) PurgeDemoData(ctx context.Context) error {
	m.states.Clear()
	return nil
}

func (m *Manager) fail(reason string) connect.Result {
	m.notifier.Failure(reason)
	return connect.Fail("%s", reason)
}
