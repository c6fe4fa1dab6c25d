package connect

import "time"

// AccountType is the remote account classification reported by the
// provider profile endpoint.
type AccountType = string

const (
	AccountTypePersonal AccountType = "PERSONAL"
	AccountTypeBusiness AccountType = "BUSINESS"
)

// RemoteAccount is the provider-side profile of a linked account.
type RemoteAccount struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	AccountType AccountType `json:"account_type"`
	MediaCount  int         `json:"media_count"`
}

// Tokens holds the OAuth2 credentials returned by the token endpoint.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	RemoteUserID string `json:"user_id"`
}

// Connection is the persisted record of one linked social account.
//
// Invariants: Tokens and Account are both present or both absent while
// IsConnected is true. IsConnected false means no stored token is
// honored. ConnectedAt is stamped on each successful connect and
// preserved across disconnects; LastRefresh survives disconnects too.
type Connection struct {
	IsConnected bool           `json:"isConnected"`
	Account     *RemoteAccount `json:"user,omitempty"`
	Tokens      *Tokens        `json:"tokens,omitempty"`
	ConnectedAt time.Time      `json:"connectedAt,omitempty"`
	LastRefresh *time.Time     `json:"lastRefresh,omitempty"`
	LastError   string         `json:"error,omitempty"`
}

// Clone returns a deep copy so callers can mutate without aliasing the
// stored record.
func (c *Connection) Clone() *Connection {
	if c == nil {
		return nil
	}
	out := *c
	if c.Account != nil {
		acc := *c.Account
		out.Account = &acc
	}
	if c.Tokens != nil {
		tok := *c.Tokens
		out.Tokens = &tok
	}
	if c.LastRefresh != nil {
		ts := *c.LastRefresh
		out.LastRefresh = &ts
	}
	return &out
}

// Disconnected returns the record as it must be persisted after a
// disconnect: flags and credentials cleared, timestamps preserved.
func (c *Connection) Disconnected() *Connection {
	out := &Connection{IsConnected: false}
	if c != nil {
		out.ConnectedAt = c.ConnectedAt
		out.LastRefresh = c.LastRefresh
	}
	return out
}

// User is the application user profile as the connection core sees it.
type User struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Avatar     string      `json:"avatar,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	Connection *Connection `json:"instagramConnection,omitempty"`
}

// PostStatus tracks a composed post through its manual publish flow.
// Scheduled posts never self-publish; publishing is a user action.
type PostStatus = string

const (
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
	PostStatusFailed    PostStatus = "failed"
)

// Post is one composed, scheduled or published post record.
type Post struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Content      string     `json:"content"`
	Image        string     `json:"image,omitempty"`
	Hashtags     []string   `json:"hashtags,omitempty"`
	ScheduledFor time.Time  `json:"scheduledFor"`
	Status       PostStatus `json:"status"`
	Platform     string     `json:"platform"`
	RemotePostID string     `json:"remotePostId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
