package instagram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-social-connect"
	"github.com/goliatone/go-social-connect/connection"
)

// Provider implements connection.Provider for the Instagram Basic
// Display API.
type Provider struct {
	config     Config
	httpClient *http.Client
	logger     connect.Logger
}

// Option configures the provider.
type Option func(*Provider)

// WithLogger sets the logger.
func WithLogger(logger connect.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a new Instagram provider.
func New(cfg Config, opts ...Option) *Provider {
	cfg = cfg.withDefaults()

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	p := &Provider{
		config:     cfg,
		httpClient: client,
		logger:     connect.DefaultLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Name implements connection.Provider.
func (p *Provider) Name() string {
	return "instagram"
}

// Configured implements connection.Provider.
func (p *Provider) Configured() bool {
	return p.config.Configured()
}

// MissingConfigFields returns credential diagnostics for the capability
// coordinator.
func (p *Provider) MissingConfigFields() []string {
	return p.config.MissingFields()
}

// AuthCodeURL implements connection.Provider.
func (p *Provider) AuthCodeURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.RedirectURI},
		"scope":         {p.config.Scopes},
		"response_type": {"code"},
		"state":         {state},
	}
	return p.config.AuthURL + "?" + params.Encode()
}

// Exchange implements connection.Provider.
func (p *Provider) Exchange(ctx context.Context, code string) (*connect.Tokens, error) {
	data := url.Values{
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {p.config.RedirectURI},
		"code":          {code},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, providerError("exchange", resp.StatusCode, apiErrorMessage(body), nil)
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, providerError("exchange", resp.StatusCode, "failed to decode token response", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, providerError("exchange", resp.StatusCode, "missing access token", nil)
	}

	return tokenResp.toTokens(), nil
}

// Profile implements connection.Provider.
func (p *Provider) Profile(ctx context.Context, accessToken string) (*connect.RemoteAccount, error) {
	endpoint := p.config.APIBase + "/me?" + url.Values{
		"fields":       {"id,username,account_type,media_count"},
		"access_token": {accessToken},
	}.Encode()

	body, status, err := p.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, providerError("profile", status, apiErrorMessage(body), nil)
	}

	var user remoteUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, providerError("profile", status, "failed to decode profile response", err)
	}

	return &connect.RemoteAccount{
		ID:          user.ID.String(),
		Username:    user.Username,
		AccountType: user.AccountType,
		MediaCount:  user.MediaCount,
	}, nil
}

// Refresh implements connection.Provider. Instagram refreshes long
// lived tokens with a GET carrying the current token.
func (p *Provider) Refresh(ctx context.Context, accessToken string) (*connect.Tokens, error) {
	endpoint := p.config.RefreshURL + "?" + url.Values{
		"grant_type":   {"ig_refresh_token"},
		"access_token": {accessToken},
	}.Encode()

	body, status, err := p.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, providerError("refresh", status, apiErrorMessage(body), nil)
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, providerError("refresh", status, "failed to decode refresh response", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, providerError("refresh", status, "missing access token", nil)
	}

	return tokenResp.toTokens(), nil
}

// Revoke implements connection.Provider. Instagram has no revocation
// endpoint; tokens expire naturally or are revoked from the user's
// Instagram settings.
func (p *Provider) Revoke(ctx context.Context, accessToken string) error {
	p.logger.Info("token revocation requested, user should revoke from Instagram settings")
	return nil
}

// ValidateToken implements connection.Provider with one lightweight
// profile read.
func (p *Provider) ValidateToken(ctx context.Context, accessToken string) error {
	endpoint := p.config.APIBase + "/me?" + url.Values{
		"fields":       {"id"},
		"access_token": {accessToken},
	}.Encode()

	body, status, err := p.get(ctx, endpoint)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return providerError("validate", status, apiErrorMessage(body), nil)
	}
	return nil
}

func (p *Provider) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func (p *Provider) postForm(ctx context.Context, endpoint string, data url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	RefreshToken string      `json:"refresh_token"`
	UserID       json.Number `json:"user_id"`
}

func (r tokenResponse) toTokens() *connect.Tokens {
	tokenType := r.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	return &connect.Tokens{
		AccessToken:  r.AccessToken,
		TokenType:    tokenType,
		ExpiresIn:    r.ExpiresIn,
		RefreshToken: r.RefreshToken,
		RemoteUserID: r.UserID.String(),
	}
}

type remoteUser struct {
	ID          json.Number `json:"id"`
	Username    string      `json:"username"`
	AccountType string      `json:"account_type"`
	MediaCount  int         `json:"media_count"`
}

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorMessage     string `json:"error_message"`
	Code             int    `json:"code"`
}

func apiErrorMessage(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.ErrorDescription != "" {
			return apiErr.ErrorDescription
		}
		if apiErr.ErrorMessage != "" {
			return apiErr.ErrorMessage
		}
		if apiErr.Error != "" {
			return apiErr.Error
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "instagram request failed"
	}
	return msg
}

func providerError(operation string, status int, description string, err error) *connection.ProviderError {
	return &connection.ProviderError{
		Provider:    "instagram",
		Operation:   operation,
		Status:      status,
		Description: description,
		Err:         err,
	}
}
