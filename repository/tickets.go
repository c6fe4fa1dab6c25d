package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// TicketsRepository persists support tickets.
type TicketsRepository struct {
	db *bun.DB
}

// NewTicketsRepository creates the repository.
func NewTicketsRepository(db *bun.DB) *TicketsRepository {
	return &TicketsRepository{db: db}
}

// Create opens a new ticket.
func (r *TicketsRepository) Create(ctx context.Context, userID, subject, message string) (*Ticket, error) {
	now := time.Now()
	model := &TicketModel{
		ID:        uuid.New(),
		UserID:    parseUUID(userID),
		Subject:   subject,
		Message:   message,
		Status:    TicketStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create ticket")
	}
	return model.toTicket(), nil
}

// FindByUser returns a user's tickets, newest first.
func (r *TicketsRepository) FindByUser(ctx context.Context, userID string) ([]*Ticket, error) {
	var models []TicketModel
	err := r.db.NewSelect().
		Model(&models).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return []*Ticket{}, nil
		}
		return nil, err
	}

	tickets := make([]*Ticket, len(models))
	for i := range models {
		tickets[i] = models[i].toTicket()
	}
	return tickets, nil
}

// UpdateStatus transitions a ticket.
func (r *TicketsRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.NewUpdate().
		Model((*TicketModel)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update ticket")
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return errors.New("ticket not found", errors.CategoryNotFound)
	}
	return nil
}
