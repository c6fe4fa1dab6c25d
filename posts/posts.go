// Package posts manages composed posts and their manual publish flow.
// Scheduling here means storing a target time: nothing publishes on
// its own, the user triggers every publish.
package posts

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-social-connect"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, post *connect.Post) (*connect.Post, error)
	Update(ctx context.Context, post *connect.Post) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*connect.Post, error)
	FindByUser(ctx context.Context, userID string) ([]*connect.Post, error)
}

// MediaPublisher is the provider surface used to push a post live.
// Configured false routes every publish through the demo path.
type MediaPublisher interface {
	Configured() bool
	CreateMedia(ctx context.Context, accessToken, imageURL, caption string) (string, error)
	PublishMedia(ctx context.Context, accessToken, creationID string) (string, error)
}

// Service coordinates post CRUD and publishing.
type Service struct {
	store     Store
	profiles  connect.ProfileStore
	publisher MediaPublisher
	logger    connect.Logger
	notifier  connect.Notifier
	now       func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger connect.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier sets the user-facing notifier.
func WithNotifier(n connect.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the posts service.
func NewService(store Store, profiles connect.ProfileStore, publisher MediaPublisher, opts ...Option) *Service {
	s := &Service{
		store:     store,
		profiles:  profiles,
		publisher: publisher,
		logger:    connect.DefaultLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.notifier == nil {
		s.notifier = connect.NewLogNotifier(s.logger)
	}
	return s
}

// CreateRequest is the payload for composing a post.
type CreateRequest struct {
	Content      string    `json:"content"`
	Image        string    `json:"image"`
	Hashtags     []string  `json:"hashtags"`
	ScheduledFor time.Time `json:"scheduledFor"`
}

// Validate checks the request.
func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.Length(1, 2200)),
		validation.Field(&r.ScheduledFor, validation.Required),
	)
}

// Create composes a new scheduled post for the current user.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*connect.Post, error) {
	user, err := s.profiles.CurrentUser(ctx)
	if err != nil || user == nil {
		return nil, errors.New("user not authenticated", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid post")
	}

	return s.store.Create(ctx, &connect.Post{
		UserID:       user.ID,
		Content:      req.Content,
		Image:        req.Image,
		Hashtags:     req.Hashtags,
		ScheduledFor: req.ScheduledFor,
		Status:       connect.PostStatusScheduled,
		Platform:     "instagram",
	})
}

// Update edits a post the current user owns. Published posts stay
// editable locally; the remote copy is not touched.
func (s *Service) Update(ctx context.Context, postID string, req CreateRequest) (*connect.Post, error) {
	post, err := s.ownedPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid post")
	}

	post.Content = req.Content
	post.Image = req.Image
	post.Hashtags = req.Hashtags
	post.ScheduledFor = req.ScheduledFor

	if err := s.store.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post the current user owns.
func (s *Service) Delete(ctx context.Context, postID string) error {
	if _, err := s.ownedPost(ctx, postID); err != nil {
		return err
	}
	return s.store.Delete(ctx, postID)
}

// Get returns a post the current user owns.
func (s *Service) Get(ctx context.Context, postID string) (*connect.Post, error) {
	return s.ownedPost(ctx, postID)
}

// List returns the current user's posts.
func (s *Service) List(ctx context.Context) ([]*connect.Post, error) {
	user, err := s.profiles.CurrentUser(ctx)
	if err != nil || user == nil {
		return nil, errors.New("user not authenticated", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}
	return s.store.FindByUser(ctx, user.ID)
}

// Publish pushes a post live now. Demo mode fabricates a remote id and
// succeeds; live mode drives the two-step container flow through the
// provider. A live failure marks the post failed.
func (s *Service) Publish(ctx context.Context, postID string) (*connect.Post, error) {
	user, err := s.profiles.CurrentUser(ctx)
	if err != nil || user == nil {
		return nil, errors.New("user not authenticated", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	post, err := s.findOwned(ctx, user.ID, postID)
	if err != nil {
		return nil, err
	}

	if post.Status == connect.PostStatusPublished {
		return nil, errors.New("post already published", errors.CategoryConflict)
	}

	if !s.publisher.Configured() {
		post.Status = connect.PostStatusPublished
		post.RemotePostID = fmt.Sprintf("demo_post_%d", s.now().UnixMilli())
		if err := s.store.Update(ctx, post); err != nil {
			return nil, err
		}
		s.notifier.Success("Post published (demo mode)")
		return post, nil
	}

	conn := user.Connection
	if conn == nil || !conn.IsConnected || conn.Tokens == nil || conn.Tokens.AccessToken == "" {
		return nil, errors.New("Instagram not connected", errors.CategoryOperation)
	}

	caption := buildCaption(post)

	remoteID, err := s.publishLive(ctx, conn.Tokens.AccessToken, post.Image, caption)
	if err != nil {
		s.logger.Error("publish failed for post %s: %v", post.ID, err)
		post.Status = connect.PostStatusFailed
		if updateErr := s.store.Update(ctx, post); updateErr != nil {
			s.logger.Error("failed to mark post failed: %v", updateErr)
		}
		s.notifier.Failure("Failed to publish post")
		return nil, err
	}

	post.Status = connect.PostStatusPublished
	post.RemotePostID = remoteID
	if err := s.store.Update(ctx, post); err != nil {
		return nil, err
	}

	s.notifier.Success("Post published to Instagram!")
	return post, nil
}

func (s *Service) publishLive(ctx context.Context, accessToken, imageURL, caption string) (string, error) {
	creationID, err := s.publisher.CreateMedia(ctx, accessToken, imageURL, caption)
	if err != nil {
		return "", err
	}
	return s.publisher.PublishMedia(ctx, accessToken, creationID)
}

func (s *Service) ownedPost(ctx context.Context, postID string) (*connect.Post, error) {
	user, err := s.profiles.CurrentUser(ctx)
	if err != nil || user == nil {
		return nil, errors.New("user not authenticated", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}
	return s.findOwned(ctx, user.ID, postID)
}

func (s *Service) findOwned(ctx context.Context, userID, postID string) (*connect.Post, error) {
	post, err := s.store.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.UserID != userID {
		return nil, errors.New("post not found", errors.CategoryNotFound)
	}
	return post, nil
}

func buildCaption(post *connect.Post) string {
	caption := post.Content
	if len(post.Hashtags) > 0 {
		var tags []string
		for _, tag := range post.Hashtags {
			if tag == "" {
				continue
			}
			if !strings.HasPrefix(tag, "#") {
				tag = "#" + tag
			}
			tags = append(tags, tag)
		}
		if len(tags) > 0 {
			caption = caption + "\n\n" + strings.Join(tags, " ")
		}
	}
	return caption
}
