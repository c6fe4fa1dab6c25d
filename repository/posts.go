package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-social-connect"
	"github.com/uptrace/bun"
)

// PostsRepository persists composed posts.
type PostsRepository struct {
	db *bun.DB
}

// NewPostsRepository creates the repository.
func NewPostsRepository(db *bun.DB) *PostsRepository {
	return &PostsRepository{db: db}
}

// Create inserts a post and returns it with generated fields filled.
func (r *PostsRepository) Create(ctx context.Context, post *connect.Post) (*connect.Post, error) {
	model := postModelFrom(post)
	now := time.Now()
	model.CreatedAt = now
	model.UpdatedAt = now
	if model.Status == "" {
		model.Status = connect.PostStatusScheduled
	}
	if model.Platform == "" {
		model.Platform = "instagram"
	}

	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create post")
	}
	return model.toPost(), nil
}

// Update replaces the mutable fields of a post.
func (r *PostsRepository) Update(ctx context.Context, post *connect.Post) error {
	hashtags, err := json.Marshal(post.Hashtags)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode hashtags")
	}

	res, err := r.db.NewUpdate().
		Model((*PostModel)(nil)).
		Set("content = ?", post.Content).
		Set("image = ?", post.Image).
		Set("hashtags = ?", string(hashtags)).
		Set("scheduled_for = ?", post.ScheduledFor).
		Set("status = ?", post.Status).
		Set("remote_post_id = ?", post.RemotePostID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", post.ID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update post")
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return errors.New("post not found", errors.CategoryNotFound)
	}
	return nil
}

// Delete removes a post.
func (r *PostsRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.NewDelete().
		Model((*PostModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// FindByID returns one post, or nil when absent.
func (r *PostsRepository) FindByID(ctx context.Context, id string) (*connect.Post, error) {
	var model PostModel
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
	return model.toPost(), nil
}

// FindByUser returns a user's posts, newest scheduled first.
func (r *PostsRepository) FindByUser(ctx context.Context, userID string) ([]*connect.Post, error) {
	var models []PostModel
	err := r.db.NewSelect().
		Model(&models).
		Where("user_id = ?", userID).
		Order("scheduled_for DESC").
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return []*connect.Post{}, nil
		}
		return nil, err
	}

	posts := make([]*connect.Post, len(models))
	for i := range models {
		posts[i] = models[i].toPost()
	}
	return posts, nil
}
