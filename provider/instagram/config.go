package instagram

import (
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Placeholder sentinels. Credentials equal to these (or too short to be
// plausible) leave the provider in demo mode.
const (
	PlaceholderClientID     = "YOUR_INSTAGRAM_CLIENT_ID"
	PlaceholderClientSecret = "YOUR_INSTAGRAM_CLIENT_SECRET"
	PlaceholderRedirectURI  = "YOUR_DOMAIN/auth/instagram/callback"
)

const (
	defaultAuthURL    = "https://api.instagram.com/oauth/authorize"
	defaultTokenURL   = "https://api.instagram.com/oauth/access_token"
	defaultAPIBase    = "https://graph.instagram.com"
	defaultRefreshURL = "https://graph.instagram.com/refresh_access_token"

	// Scopes required by the Basic Display API.
	defaultScopes = "user_profile,user_media"

	// Minimum plausible credential length.
	minCredentialLen = 11
)

// Config holds Instagram OAuth configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	AuthURL    string
	TokenURL   string
	APIBase    string
	RefreshURL string
	Scopes     string

	HTTPClient *http.Client
}

// Configured reports whether all credentials are non-placeholder and of
// plausible length. Anything less keeps the provider in demo mode.
func (c Config) Configured() bool {
	return len(c.MissingFields()) == 0
}

// MissingFields returns the names of the credentials still set to
// placeholders, for capability diagnostics.
func (c Config) MissingFields() []string {
	var missing []string

	if c.ClientID == PlaceholderClientID || len(c.ClientID) < minCredentialLen {
		missing = append(missing, "client_id")
	}
	if c.ClientSecret == PlaceholderClientSecret || len(c.ClientSecret) < minCredentialLen {
		missing = append(missing, "client_secret")
	}
	if c.RedirectURI == PlaceholderRedirectURI || c.RedirectURI == "" {
		missing = append(missing, "redirect_uri")
	}

	return missing
}

// Validate checks a configuration intended for live use.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ClientID,
			validation.Required,
			validation.Length(minCredentialLen, 0),
			validation.By(notPlaceholder(PlaceholderClientID)),
		),
		validation.Field(&c.ClientSecret,
			validation.Required,
			validation.Length(minCredentialLen, 0),
			validation.By(notPlaceholder(PlaceholderClientSecret)),
		),
		validation.Field(&c.RedirectURI,
			validation.Required,
			validation.By(notPlaceholder(PlaceholderRedirectURI)),
		),
	)
}

func notPlaceholder(placeholder string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s == placeholder || strings.Contains(s, "YOUR_") {
			return errors.New("is a placeholder value")
		}
		return nil
	}
}

func (c Config) withDefaults() Config {
	if c.AuthURL == "" {
		c.AuthURL = defaultAuthURL
	}
	if c.TokenURL == "" {
		c.TokenURL = defaultTokenURL
	}
	if c.APIBase == "" {
		c.APIBase = defaultAPIBase
	}
	if c.RefreshURL == "" {
		c.RefreshURL = defaultRefreshURL
	}
	if c.Scopes == "" {
		c.Scopes = defaultScopes
	}
	return c
}
