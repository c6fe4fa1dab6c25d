package posts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-social-connect"
	"github.com/goliatone/go-social-connect/repository"
)

type fakePublisher struct {
	configured  bool
	createErr   error
	publishErr  error
	gotCaption  string
	gotImageURL string
}

func (f *fakePublisher) Configured() bool {
	return f.configured
}

func (f *fakePublisher) CreateMedia(ctx context.Context, accessToken, imageURL, caption string) (string, error) {
	f.gotImageURL = imageURL
	f.gotCaption = caption
	if f.createErr != nil {
		return "", f.createErr
	}
	return "container-1", nil
}

func (f *fakePublisher) PublishMedia(ctx context.Context, accessToken, creationID string) (string, error) {
	if f.publishErr != nil {
		return "", f.publishErr
	}
	return "media-9", nil
}

func setupService(t *testing.T, publisher *fakePublisher) (*Service, *repository.MemoryStore, *connect.User) {
	t.Helper()

	store := repository.NewMemoryStore()
	ctx := context.Background()

	user, err := store.Register(ctx, "Demo", "demo@example.com", "demo-pass")
	require.NoError(t, err)
	_, err = store.Authenticate(ctx, "demo@example.com", "demo-pass")
	require.NoError(t, err)

	svc := NewService(store.PostStore(), store, publisher)
	return svc, store, user
}

func schedule() CreateRequest {
	return CreateRequest{
		Content:      "launch day",
		Image:        "https://images.example.com/pic.jpg",
		Hashtags:     []string{"launch", "#startup"},
		ScheduledFor: time.Now().Add(24 * time.Hour),
	}
}

func TestCreateRequiresUser(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewService(store.PostStore(), store, &fakePublisher{})

	_, err := svc.Create(context.Background(), schedule())
	require.Error(t, err)
}

func TestCreateValidates(t *testing.T) {
	svc, _, _ := setupService(t, &fakePublisher{})

	_, err := svc.Create(context.Background(), CreateRequest{})
	require.Error(t, err)
}

func TestCreateAndList(t *testing.T) {
	svc, _, user := setupService(t, &fakePublisher{})
	ctx := context.Background()

	post, err := svc.Create(ctx, schedule())
	require.NoError(t, err)
	assert.Equal(t, user.ID, post.UserID)
	assert.Equal(t, connect.PostStatusScheduled, post.Status)
	assert.Equal(t, "instagram", post.Platform)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _, _ := setupService(t, &fakePublisher{})
	ctx := context.Background()

	post, err := svc.Create(ctx, schedule())
	require.NoError(t, err)

	req := schedule()
	req.Content = "edited content"
	updated, err := svc.Update(ctx, post.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "edited content", updated.Content)

	require.NoError(t, svc.Delete(ctx, post.ID))

	_, err = svc.Get(ctx, post.ID)
	require.Error(t, err)
}

func TestPublishDemoFabricatesRemoteID(t *testing.T) {
	svc, _, _ := setupService(t, &fakePublisher{configured: false})
	ctx := context.Background()

	post, err := svc.Create(ctx, schedule())
	require.NoError(t, err)

	published, err := svc.Publish(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, connect.PostStatusPublished, published.Status)
	assert.Contains(t, published.RemotePostID, "demo_post_")
}

func TestPublishLiveRequiresConnection(t *testing.T) {
	svc, _, _ := setupService(t, &fakePublisher{configured: true})
	ctx := context.Background()

	post, err := svc.Create(ctx, schedule())
	require.NoError(t, err)

	_, err = svc.Publish(ctx, post.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestPublishLive(t *testing.T) {
	publisher := &fakePublisher{configured: true}
	svc, store, user := setupService(t, publisher)
	ctx := context.Background()

	require.NoError(t, store.SaveConnection(ctx, user.ID, &connect.Connection{
		IsConnected: true,
		Tokens:      &connect.Tokens{AccessToken: "IGQV123"},
	}))

	post, err := svc.Create(ctx, schedule())
	require.NoError(t, err)

	published, err := svc.Publish(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "media-9", published.RemotePostID)
	assert.Equal(t, connect.PostStatusPublished, published.Status)
	assert.Equal(t, "https://images.example.com/pic.jpg", publisher.gotImageURL)
	assert.Contains(t, publisher.gotCaption, "launch day")
	assert.Contains(t, publisher.gotCaption, "#launch")
	assert.Contains(t, publisher.gotCaption, "#startup")

	_, err = svc.Publish(ctx, post.ID)
	require.Error(t, err)
}

func TestPublishLiveFailureMarksFailed(t *testing.T) {
	publisher := &fakePublisher{configured: true, createErr: assert.AnError}
	svc, store, user := setupService(t, publisher)
	ctx := context.Background()

	require.NoError(t, store.SaveConnection(ctx, user.ID, &connect.Connection{
		IsConnected: true,
		Tokens:      &connect.Tokens{AccessToken: "IGQV123"},
	}))

	post, err := svc.Create(ctx, schedule())
	require.NoError(t, err)

	_, err = svc.Publish(ctx, post.ID)
	require.Error(t, err)

	failed, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, connect.PostStatusFailed, failed.Status)
}
