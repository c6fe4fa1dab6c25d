package connection

import "github.com/goliatone/go-errors"

const (
	TextCodeNotAuthenticated = "connection_not_authenticated"
	TextCodeDemoMode         = "connection_demo_mode"
	TextCodeAlreadyConnected = "connection_already_connected"
	TextCodeNotConnected     = "connection_not_connected"
	TextCodeNoAccessToken    = "connection_no_access_token"
	TextCodeWindowBlocked    = "connection_window_blocked"
	TextCodeCancelled        = "connection_cancelled"
	TextCodeTimeout          = "connection_timeout"
	TextCodeInvalidState     = "connection_invalid_state"
	TextCodeExchangeFail     = "connection_exchange_failed"
	TextCodeProfileFail      = "connection_profile_failed"
	TextCodeRefreshFail      = "connection_refresh_failed"
)

// ErrNotAuthenticated is returned when no application user is logged in.
var ErrNotAuthenticated = errors.New("user must be logged in to connect Instagram", errors.CategoryAuth).
	WithTextCode(TextCodeNotAuthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrDemoMode is returned when the provider is not configured and the
// operation requires live endpoints.
var ErrDemoMode = errors.New("Instagram API running in demo mode. Configure Instagram credentials to enable real integration", errors.CategoryValidation).
	WithTextCode(TextCodeDemoMode).
	WithCode(errors.CodeBadRequest)

// ErrAlreadyConnected is returned when connect is invoked on a user with
// an active connection.
var ErrAlreadyConnected = errors.New("Instagram already connected", errors.CategoryValidation).
	WithTextCode(TextCodeAlreadyConnected).
	WithCode(errors.CodeConflict)

// ErrNotConnected is returned when disconnect or refresh is invoked on a
// user without an active connection.
var ErrNotConnected = errors.New("Instagram not connected", errors.CategoryValidation).
	WithTextCode(TextCodeNotConnected).
	WithCode(errors.CodeBadRequest)

// ErrNoAccessToken is returned when the stored connection carries no
// usable credentials.
var ErrNoAccessToken = errors.New("no access token found", errors.CategoryValidation).
	WithTextCode(TextCodeNoAccessToken).
	WithCode(errors.CodeBadRequest)

// ErrWindowBlocked is returned when the authorization window could not
// be opened at all.
var ErrWindowBlocked = errors.New("authorization window blocked", errors.CategoryBadInput).
	WithTextCode(TextCodeWindowBlocked).
	WithCode(errors.CodeBadRequest)

// ErrAuthorizationCancelled is returned when the user closes the
// authorization window before approving.
var ErrAuthorizationCancelled = errors.New("authorization cancelled by user", errors.CategoryBadInput).
	WithTextCode(TextCodeCancelled).
	WithCode(errors.CodeBadRequest)

// ErrAuthorizationTimeout is returned when no callback arrives within
// the authorization wait window.
var ErrAuthorizationTimeout = errors.New("authorization timeout", errors.CategoryBadInput).
	WithTextCode(TextCodeTimeout).
	WithCode(errors.CodeBadRequest)

// ErrInvalidState is returned on any state-token mismatch or replay.
// Always fatal to the attempt, never a warning.
var ErrInvalidState = errors.New("invalid state parameter", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidState).
	WithCode(errors.CodeBadRequest)

// ErrExchangeFailed is returned when the code-for-token exchange fails.
var ErrExchangeFailed = errors.New("token exchange failed", errors.CategoryAuth).
	WithTextCode(TextCodeExchangeFail).
	WithCode(errors.CodeUnauthorized)

// ErrProfileFetchFailed is returned when the remote profile fetch fails
// after a successful exchange. Nothing is persisted in that case.
var ErrProfileFetchFailed = errors.New("failed to fetch Instagram profile", errors.CategoryAuth).
	WithTextCode(TextCodeProfileFail).
	WithCode(errors.CodeUnauthorized)

// ErrRefreshFailed is returned when a live token refresh fails. The
// stored connection is left untouched.
var ErrRefreshFailed = errors.New("failed to refresh token", errors.CategoryAuth).
	WithTextCode(TextCodeRefreshFail).
	WithCode(errors.CodeUnauthorized)
