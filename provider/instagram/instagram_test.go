package instagram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveConfig() Config {
	return Config{
		ClientID:     "123456789012345",
		ClientSecret: "abcdefabcdefabcdefabcdef",
		RedirectURI:  "https://example.com/auth/instagram/callback",
	}
}

func TestConfigured(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		want    bool
		missing []string
	}{
		{
			name:   "live credentials",
			config: liveConfig(),
			want:   true,
		},
		{
			name: "placeholder client id",
			config: Config{
				ClientID:     PlaceholderClientID,
				ClientSecret: "abcdefabcdefabcdefabcdef",
				RedirectURI:  "https://example.com/cb",
			},
			want:    false,
			missing: []string{"client_id"},
		},
		{
			name: "short secret",
			config: Config{
				ClientID:     "123456789012345",
				ClientSecret: "short",
				RedirectURI:  "https://example.com/cb",
			},
			want:    false,
			missing: []string{"client_secret"},
		},
		{
			name:    "all placeholders",
			config:  Config{ClientID: PlaceholderClientID, ClientSecret: PlaceholderClientSecret, RedirectURI: PlaceholderRedirectURI},
			want:    false,
			missing: []string{"client_id", "client_secret", "redirect_uri"},
		},
		{
			name:    "empty",
			config:  Config{},
			want:    false,
			missing: []string{"client_id", "client_secret", "redirect_uri"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.config)
			assert.Equal(t, tt.want, p.Configured())
			assert.Equal(t, tt.missing, p.MissingConfigFields())
		})
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, liveConfig().Validate())

	bad := liveConfig()
	bad.ClientSecret = "YOUR_SECRET_GOES_HERE_OK"
	require.Error(t, bad.Validate())
}

func TestAuthCodeURL(t *testing.T) {
	p := New(liveConfig())

	raw := p.AuthCodeURL("state-token")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "api.instagram.com", parsed.Host)
	assert.Equal(t, "/oauth/authorize", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "123456789012345", q.Get("client_id"))
	assert.Equal(t, "https://example.com/auth/instagram/callback", q.Get("redirect_uri"))
	assert.Equal(t, "user_profile,user_media", q.Get("scope"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "state-token", q.Get("state"))
}

func TestExchange(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"IGQV123","user_id":17841400000000000}`))
	}))
	defer srv.Close()

	cfg := liveConfig()
	cfg.TokenURL = srv.URL

	tokens, err := New(cfg).Exchange(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "auth-code", gotForm.Get("code"))
	assert.Equal(t, cfg.ClientID, gotForm.Get("client_id"))

	assert.Equal(t, "IGQV123", tokens.AccessToken)
	assert.Equal(t, "bearer", tokens.TokenType)
	assert.Equal(t, "17841400000000000", tokens.RemoteUserID)
}

func TestExchangeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_type":"OAuthException","error_message":"Invalid authorization code","code":400}`))
	}))
	defer srv.Close()

	cfg := liveConfig()
	cfg.TokenURL = srv.URL

	_, err := New(cfg).Exchange(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid authorization code")
}

func TestProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "id,username,account_type,media_count", r.URL.Query().Get("fields"))
		assert.Equal(t, "IGQV123", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"17841400000000000","username":"acme_studio","account_type":"BUSINESS","media_count":42}`))
	}))
	defer srv.Close()

	cfg := liveConfig()
	cfg.APIBase = srv.URL

	account, err := New(cfg).Profile(context.Background(), "IGQV123")
	require.NoError(t, err)

	assert.Equal(t, "17841400000000000", account.ID)
	assert.Equal(t, "acme_studio", account.Username)
	assert.Equal(t, "BUSINESS", account.AccountType)
	assert.Equal(t, 42, account.MediaCount)
}

func TestRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ig_refresh_token", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "IGQVold", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"IGQVnew","token_type":"bearer","expires_in":5184000}`))
	}))
	defer srv.Close()

	cfg := liveConfig()
	cfg.RefreshURL = srv.URL

	tokens, err := New(cfg).Refresh(context.Background(), "IGQVold")
	require.NoError(t, err)

	assert.Equal(t, "IGQVnew", tokens.AccessToken)
	assert.Equal(t, int64(5184000), tokens.ExpiresIn)
}

func TestValidateToken(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("access_token") != "IGQVgood" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
			return
		}
		w.Write([]byte(`{"id":"17841400000000000"}`))
	}))
	defer srv.Close()

	cfg := liveConfig()
	cfg.APIBase = srv.URL
	p := New(cfg)

	require.NoError(t, p.ValidateToken(context.Background(), "IGQVgood"))
	require.Error(t, p.ValidateToken(context.Background(), "IGQVbad"))
	assert.Equal(t, 2, calls)
}

func TestRevokeIsLocalOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("revoke must not call the API")
	}))
	defer srv.Close()

	cfg := liveConfig()
	cfg.APIBase = srv.URL

	require.NoError(t, New(cfg).Revoke(context.Background(), "IGQV123"))
}

func TestCreateAndPublishMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/me/media":
			assert.Equal(t, "https://images.example.com/pic.jpg", r.PostForm.Get("image_url"))
			assert.Equal(t, "launch day", r.PostForm.Get("caption"))
			w.Write([]byte(`{"id":"container-1"}`))
		case "/me/media_publish":
			assert.Equal(t, "container-1", r.PostForm.Get("creation_id"))
			w.Write([]byte(`{"id":"media-9"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	cfg := liveConfig()
	cfg.APIBase = srv.URL
	p := New(cfg)

	containerID, err := p.CreateMedia(context.Background(), "IGQV123", "https://images.example.com/pic.jpg", "launch day")
	require.NoError(t, err)
	assert.Equal(t, "container-1", containerID)

	mediaID, err := p.PublishMedia(context.Background(), "IGQV123", containerID)
	require.NoError(t, err)
	assert.Equal(t, "media-9", mediaID)
}

func TestRecentMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/media", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"m1","caption":"first","media_type":"IMAGE","media_url":"https://cdn/1.jpg","timestamp":"2026-08-01T10:00:00+0000"}]}`))
	}))
	defer srv.Close()

	cfg := liveConfig()
	cfg.APIBase = srv.URL

	media, err := New(cfg).RecentMedia(context.Background(), "IGQV123", 5)
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Equal(t, "m1", media[0].ID)
	assert.Equal(t, "first", media[0].Caption)
}
