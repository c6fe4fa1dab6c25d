package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-social-connect"
	"github.com/goliatone/go-social-connect/session"
	"golang.org/x/crypto/bcrypt"
)

// MemoryStore is the demo twin of the database-backed repositories.
// Everything lives in maps guarded by one mutex, with a single
// current-session slot standing in for browser storage. It satisfies
// connect.ProfileStore and the post and ticket store shapes, so demo
// deployments run the same code paths end to end.
type MemoryStore struct {
	mu sync.Mutex

	users     map[string]*memoryUser
	posts     map[string]*connect.Post
	tickets   map[string]*Ticket
	currentID string
}

type memoryUser struct {
	user         connect.User
	passwordHash string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   map[string]*memoryUser{},
		posts:   map[string]*connect.Post{},
		tickets: map[string]*Ticket{},
	}
}

var _ connect.ProfileStore = (*MemoryStore)(nil)

// Register creates a demo user.
func (s *MemoryStore) Register(ctx context.Context, name, email, password string) (*connect.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.user.Email == email {
			return nil, errors.New("email already registered", errors.CategoryConflict)
		}
	}

	user := connect.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	}
	s.users[user.ID] = &memoryUser{user: user, passwordHash: string(hash)}

	out := user
	return &out, nil
}

// Authenticate checks credentials and marks the user as the current
// session.
func (s *MemoryStore) Authenticate(ctx context.Context, email, password string) (*connect.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.user.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) != nil {
			break
		}
		s.currentID = id
		return cloneUser(&u.user), nil
	}
	return nil, errors.New("invalid credentials", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized)
}

// Logout clears the current session slot.
func (s *MemoryStore) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = ""
}

// FindByID returns a user by id, or nil when absent.
func (s *MemoryStore) FindByID(ctx context.Context, id string) (*connect.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(&u.user), nil
}

// CurrentUser implements connect.ProfileStore. A session id on the
// context takes precedence over the stored session slot.
func (s *MemoryStore) CurrentUser(ctx context.Context) (*connect.User, error) {
	if id := session.UserID(ctx); id != "" {
		return s.FindByID(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentID == "" {
		return nil, nil
	}
	u, ok := s.users[s.currentID]
	if !ok {
		return nil, nil
	}
	return cloneUser(&u.user), nil
}

// SaveConnection implements connect.ProfileStore.
func (s *MemoryStore) SaveConnection(ctx context.Context, userID string, conn *connect.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return errors.New("user not found", errors.CategoryNotFound)
	}
	u.user.Connection = conn.Clone()
	return nil
}

// CreatePost stores a post.
func (s *MemoryStore) CreatePost(ctx context.Context, post *connect.Post) (*connect.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := *post
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = connect.PostStatusScheduled
	}
	if stored.Platform == "" {
		stored.Platform = "instagram"
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.posts[stored.ID] = &stored

	out := stored
	return &out, nil
}

// UpdatePost replaces a stored post's mutable fields.
func (s *MemoryStore) UpdatePost(ctx context.Context, post *connect.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.posts[post.ID]
	if !ok {
		return errors.New("post not found", errors.CategoryNotFound)
	}

	stored.Content = post.Content
	stored.Image = post.Image
	stored.Hashtags = post.Hashtags
	stored.ScheduledFor = post.ScheduledFor
	stored.Status = post.Status
	stored.RemotePostID = post.RemotePostID
	stored.UpdatedAt = time.Now()
	return nil
}

// DeletePost removes a post.
func (s *MemoryStore) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, id)
	return nil
}

// FindPostByID returns one post, or nil when absent.
func (s *MemoryStore) FindPostByID(ctx context.Context, id string) (*connect.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	out := *stored
	return &out, nil
}

// FindPostsByUser returns a user's posts, newest scheduled first.
func (s *MemoryStore) FindPostsByUser(ctx context.Context, userID string) ([]*connect.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var posts []*connect.Post
	for _, p := range s.posts {
		if p.UserID == userID {
			out := *p
			posts = append(posts, &out)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ScheduledFor.After(posts[j].ScheduledFor)
	})
	return posts, nil
}

// CreateTicket opens a demo support ticket.
func (s *MemoryStore) CreateTicket(ctx context.Context, userID, subject, message string) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	ticket := &Ticket{
		ID:        uuid.NewString(),
		UserID:    userID,
		Subject:   subject,
		Message:   message,
		Status:    TicketStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tickets[ticket.ID] = ticket

	out := *ticket
	return &out, nil
}

// PurgeDemoData wipes everything, session slot included. Invoked by
// the capability coordinator on startup so each demo run begins clean.
func (s *MemoryStore) PurgeDemoData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = map[string]*memoryUser{}
	s.posts = map[string]*connect.Post{}
	s.tickets = map[string]*Ticket{}
	s.currentID = ""
	return nil
}

// MemoryPosts exposes the post operations of a MemoryStore under the
// same method set as PostsRepository, so either can back the posts
// service.
type MemoryPosts struct {
	store *MemoryStore
}

// PostStore returns the post-facing view of the store.
func (s *MemoryStore) PostStore() *MemoryPosts {
	return &MemoryPosts{store: s}
}

func (p *MemoryPosts) Create(ctx context.Context, post *connect.Post) (*connect.Post, error) {
	return p.store.CreatePost(ctx, post)
}

func (p *MemoryPosts) Update(ctx context.Context, post *connect.Post) error {
	return p.store.UpdatePost(ctx, post)
}

func (p *MemoryPosts) Delete(ctx context.Context, id string) error {
	return p.store.DeletePost(ctx, id)
}

func (p *MemoryPosts) FindByID(ctx context.Context, id string) (*connect.Post, error) {
	return p.store.FindPostByID(ctx, id)
}

func (p *MemoryPosts) FindByUser(ctx context.Context, userID string) ([]*connect.Post, error) {
	return p.store.FindPostsByUser(ctx, userID)
}

func cloneUser(u *connect.User) *connect.User {
	out := *u
	out.Connection = u.Connection.Clone()
	return &out
}
