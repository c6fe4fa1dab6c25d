// Package activity normalizes connection and post lifecycle events
// into a transport-agnostic shape for downstream feeds and analytics.
package activity

import (
	"strings"
	"time"

	"github.com/goliatone/go-social-connect"
)

// Verbs emitted by the social connect flows.
const (
	VerbConnected      = "instagram.connected"
	VerbDisconnected   = "instagram.disconnected"
	VerbTokenRefreshed = "instagram.token_refreshed"
	VerbPostScheduled  = "post.scheduled"
	VerbPostPublished  = "post.published"
	VerbPostFailed     = "post.publish_failed"
)

const (
	// MetadataKeyPlatform stores the publishing platform of the object.
	MetadataKeyPlatform = "platform"
	// MetadataKeyUsername stores the linked account handle.
	MetadataKeyUsername = "username"
	// MetadataKeyAccountType stores the linked account classification.
	MetadataKeyAccountType = "account_type"
)

const (
	defaultChannel    = "social"
	defaultObjectType = "post"
	defaultActorID    = "system"
)

// Event is one lifecycle transition as the services report it.
type Event struct {
	Verb       string
	UserID     string
	ObjectID   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Record is the normalized activity shape for downstream systems.
type Record struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	objectType    string
	actorFallback string
}

// WithDefaultChannel sets the channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithDefaultObjectType sets the object type for normalized records.
func WithDefaultObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithActorFallback sets the final actor-id fallback used when the
// event carries no user id.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

// Normalize converts an event into the generic normalized shape.
func Normalize(event Event, opts ...Option) Record {
	options := normalizeOptions{
		channel:       defaultChannel,
		objectType:    objectTypeFor(event.Verb),
		actorFallback: defaultActorID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Record{
		ActorID: firstNonEmpty(
			strings.TrimSpace(event.UserID),
			options.actorFallback,
		),
		Verb:       event.Verb,
		ObjectType: options.objectType,
		ObjectID:   strings.TrimSpace(event.ObjectID),
		Channel:    options.channel,
		Metadata:   cloneMap(event.Metadata),
		OccurredAt: occurredAt,
	}
}

// FromPost derives the lifecycle event a post record represents.
func FromPost(post *connect.Post) Event {
	if post == nil {
		return Event{}
	}

	verb := VerbPostScheduled
	switch post.Status {
	case connect.PostStatusPublished:
		verb = VerbPostPublished
	case connect.PostStatusFailed:
		verb = VerbPostFailed
	}

	metadata := map[string]any{
		MetadataKeyPlatform: post.Platform,
	}
	if !post.ScheduledFor.IsZero() {
		metadata["scheduled_for"] = post.ScheduledFor
	}

	return Event{
		Verb:       verb,
		UserID:     post.UserID,
		ObjectID:   post.ID,
		Metadata:   metadata,
		OccurredAt: post.UpdatedAt,
	}
}

// FromConnection derives the lifecycle event a connection record
// represents for the given user.
func FromConnection(userID string, conn *connect.Connection) Event {
	if conn == nil {
		return Event{UserID: userID, Verb: VerbDisconnected}
	}

	verb := VerbDisconnected
	occurredAt := conn.ConnectedAt
	var metadata map[string]any

	if conn.IsConnected {
		verb = VerbConnected
		if conn.Account != nil {
			metadata = map[string]any{
				MetadataKeyUsername:    conn.Account.Username,
				MetadataKeyAccountType: conn.Account.AccountType,
			}
		}
		if conn.LastRefresh != nil && conn.LastRefresh.After(conn.ConnectedAt) {
			verb = VerbTokenRefreshed
			occurredAt = *conn.LastRefresh
		}
	}

	return Event{
		Verb:       verb,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: occurredAt,
	}
}

func objectTypeFor(verb string) string {
	if strings.HasPrefix(verb, "instagram.") {
		return "connection"
	}
	return defaultObjectType
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
