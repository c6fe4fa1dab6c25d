package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-social-connect"
	"github.com/goliatone/go-social-connect/session"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// UsersRepository persists application users and their Instagram
// connection. It resolves the current user from the session id carried
// in the context, so it satisfies connect.ProfileStore.
type UsersRepository struct {
	db *bun.DB
}

// NewUsersRepository creates the repository.
func NewUsersRepository(db *bun.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

var _ connect.ProfileStore = (*UsersRepository)(nil)

// Register creates a new user with a bcrypt-hashed password.
func (r *UsersRepository) Register(ctx context.Context, name, email, password string) (*connect.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	model := &UserModel{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create user")
	}
	return model.toUser(), nil
}

// Authenticate checks email and password and returns the user.
func (r *UsersRepository) Authenticate(ctx context.Context, email, password string) (*connect.User, error) {
	var model UserModel
	err := r.db.NewSelect().
		Model(&model).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("invalid credentials", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	if bcrypt.CompareHashAndPassword([]byte(model.PasswordHash), []byte(password)) != nil {
		return nil, errors.New("invalid credentials", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}
	return model.toUser(), nil
}

// FindByID returns a user by id, or nil when absent.
func (r *UsersRepository) FindByID(ctx context.Context, id string) (*connect.User, error) {
	var model UserModel
	err := r.db.NewSelect().
		Model(&model).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return model.toUser(), nil
}

// CurrentUser implements connect.ProfileStore. A context without a
// session yields nil, nil; absence of a session is not an error.
func (r *UsersRepository) CurrentUser(ctx context.Context) (*connect.User, error) {
	userID := session.UserID(ctx)
	if userID == "" {
		return nil, nil
	}
	return r.FindByID(ctx, userID)
}

// SaveConnection implements connect.ProfileStore. The record replaces
// the stored document wholesale; the last writer wins.
func (r *UsersRepository) SaveConnection(ctx context.Context, userID string, conn *connect.Connection) error {
	doc, err := json.Marshal(conn)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode connection")
	}

	res, err := r.db.NewUpdate().
		Model((*UserModel)(nil)).
		Set("instagram_connection = ?", string(doc)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to save connection")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return errors.New("user not found", errors.CategoryNotFound)
	}
	return nil
}

// UpdateProfile updates name and avatar.
func (r *UsersRepository) UpdateProfile(ctx context.Context, userID, name, avatar string) error {
	_, err := r.db.NewUpdate().
		Model((*UserModel)(nil)).
		Set("name = ?", name).
		Set("avatar = ?", avatar).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}
