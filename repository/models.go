package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/goliatone/go-social-connect"
	"github.com/uptrace/bun"
)

// UserModel is the Bun model for application users. The Instagram
// connection is stored as a JSON document on the user row, mirroring
// the single-connection-per-user shape of the domain model.
type UserModel struct {
	bun.BaseModel `bun:"table:users"`

	ID           uuid.UUID           `bun:"id,pk,nullzero,type:uuid"`
	Name         string              `bun:"name,notnull"`
	Email        string              `bun:"email,notnull,unique"`
	PasswordHash string              `bun:"password_hash,notnull"`
	Avatar       string              `bun:"avatar"`
	Connection   *connect.Connection `bun:"instagram_connection,type:jsonb"`
	CreatedAt    time.Time           `bun:"created_at,default:current_timestamp"`
	UpdatedAt    time.Time           `bun:"updated_at,default:current_timestamp"`
}

func (m *UserModel) toUser() *connect.User {
	return &connect.User{
		ID:         m.ID.String(),
		Name:       m.Name,
		Email:      m.Email,
		Avatar:     m.Avatar,
		CreatedAt:  m.CreatedAt,
		Connection: m.Connection,
	}
}

// PostModel is the Bun model for composed posts.
type PostModel struct {
	bun.BaseModel `bun:"table:posts"`

	ID           uuid.UUID `bun:"id,pk,nullzero,type:uuid"`
	UserID       uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Content      string    `bun:"content,notnull"`
	Image        string    `bun:"image"`
	Hashtags     []string  `bun:"hashtags,type:jsonb"`
	ScheduledFor time.Time `bun:"scheduled_for,notnull"`
	Status       string    `bun:"status,notnull"`
	Platform     string    `bun:"platform,notnull"`
	RemotePostID string    `bun:"remote_post_id"`
	CreatedAt    time.Time `bun:"created_at,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,default:current_timestamp"`
}

func (m *PostModel) toPost() *connect.Post {
	return &connect.Post{
		ID:           m.ID.String(),
		UserID:       m.UserID.String(),
		Content:      m.Content,
		Image:        m.Image,
		Hashtags:     m.Hashtags,
		ScheduledFor: m.ScheduledFor,
		Status:       m.Status,
		Platform:     m.Platform,
		RemotePostID: m.RemotePostID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func postModelFrom(p *connect.Post) *PostModel {
	model := &PostModel{
		ID:           parseOrNewUUID(p.ID),
		UserID:       parseUUID(p.UserID),
		Content:      p.Content,
		Image:        p.Image,
		Hashtags:     p.Hashtags,
		ScheduledFor: p.ScheduledFor,
		Status:       p.Status,
		Platform:     p.Platform,
		RemotePostID: p.RemotePostID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	return model
}

// TicketStatus values for support tickets.
const (
	TicketStatusOpen     = "open"
	TicketStatusResolved = "resolved"
)

// Ticket is one support request.
type Ticket struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TicketModel is the Bun model for support tickets.
type TicketModel struct {
	bun.BaseModel `bun:"table:tickets"`

	ID        uuid.UUID `bun:"id,pk,nullzero,type:uuid"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Subject   string    `bun:"subject,notnull"`
	Message   string    `bun:"message,notnull"`
	Status    string    `bun:"status,notnull"`
	CreatedAt time.Time `bun:"created_at,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,default:current_timestamp"`
}

func (m *TicketModel) toTicket() *Ticket {
	return &Ticket{
		ID:        m.ID.String(),
		UserID:    m.UserID.String(),
		Subject:   m.Subject,
		Message:   m.Message,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func parseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func parseOrNewUUID(s string) uuid.UUID {
	if id := parseUUID(s); id != uuid.Nil {
		return id
	}
	return uuid.New()
}
