package repository

import (
	"context"
	"database/sql"
	"log"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// PlaceholderDSN is the sentinel an unconfigured deployment ships
// with. A manager built on it reports the storage backend as demo.
const PlaceholderDSN = "YOUR_DATABASE_DSN"

// Manager bundles the repositories over one database handle and
// answers the storage capability probe.
type Manager struct {
	db      *bun.DB
	dsn     string
	users   *UsersRepository
	posts   *PostsRepository
	tickets *TicketsRepository
}

// NewManager creates the repository manager. The DSN is only inspected
// for the capability probe; opening the database is the caller's job.
func NewManager(db *bun.DB, dsn string) *Manager {
	return &Manager{
		db:      db,
		dsn:     dsn,
		users:   NewUsersRepository(db),
		posts:   NewPostsRepository(db),
		tickets: NewTicketsRepository(db),
	}
}

// Users returns the users repository.
func (m *Manager) Users() *UsersRepository {
	return m.users
}

// Posts returns the posts repository.
func (m *Manager) Posts() *PostsRepository {
	return m.posts
}

// Tickets returns the tickets repository.
func (m *Manager) Tickets() *TicketsRepository {
	return m.tickets
}

// Validate checks the manager wiring.
func (m *Manager) Validate() error {
	if m.db == nil {
		return errors.New("repository database should be initialized", errors.CategoryInternal)
	}
	if m.users == nil || m.posts == nil || m.tickets == nil {
		return errors.New("repositories should be initialized", errors.CategoryInternal)
	}
	return nil
}

// MustValidate panics when the wiring is incomplete.
func (m *Manager) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

// RunInTx runs f inside a transaction.
func (m *Manager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

// Configured reports whether a real DSN is present. Placeholder or
// empty DSNs keep storage in demo mode.
func (m *Manager) Configured() bool {
	return m.dsn != "" && m.dsn != PlaceholderDSN
}

// Ping verifies the backend is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	var one int
	return m.db.NewRaw("SELECT 1").Scan(ctx, &one)
}

// Migrate creates the schema. Intended for sqlite deployments and
// tests; production databases are migrated out of band.
func (m *Manager) Migrate(ctx context.Context) error {
	models := []any{
		(*UserModel)(nil),
		(*PostModel)(nil),
		(*TicketModel)(nil),
	}
	for _, model := range models {
		if _, err := m.db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create table")
		}
	}
	return nil
}
