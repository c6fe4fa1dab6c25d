package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-social-connect"
	"github.com/goliatone/go-social-connect/session"
)

func setupManager(t *testing.T) *Manager {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})

	mgr := NewManager(db, "file::memory:")
	require.NoError(t, mgr.Migrate(context.Background()))
	return mgr
}

func TestUsersRegisterAndAuthenticate(t *testing.T) {
	mgr := setupManager(t)
	ctx := context.Background()

	user, err := mgr.Users().Register(ctx, "Ada", "Ada@Example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)

	authed, err := mgr.Users().Authenticate(ctx, "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = mgr.Users().Authenticate(ctx, "ada@example.com", "wrong")
	require.Error(t, err)

	_, err = mgr.Users().Authenticate(ctx, "nobody@example.com", "s3cret-pass")
	require.Error(t, err)
}

func TestUsersCurrentUserFromSession(t *testing.T) {
	mgr := setupManager(t)
	ctx := context.Background()

	user, err := mgr.Users().Register(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	none, err := mgr.Users().CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	current, err := mgr.Users().CurrentUser(session.WithUserID(ctx, user.ID))
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)
}

func TestUsersSaveConnectionRoundTrip(t *testing.T) {
	mgr := setupManager(t)
	ctx := context.Background()

	user, err := mgr.Users().Register(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	conn := &connect.Connection{
		IsConnected: true,
		Account:     &connect.RemoteAccount{ID: "ig-1", Username: "ada_gram", AccountType: connect.AccountTypeBusiness},
		Tokens:      &connect.Tokens{AccessToken: "IGQV123", TokenType: "bearer"},
		ConnectedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, mgr.Users().SaveConnection(ctx, user.ID, conn))

	loaded, err := mgr.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Connection)
	assert.True(t, loaded.Connection.IsConnected)
	assert.Equal(t, "ada_gram", loaded.Connection.Account.Username)
	assert.Equal(t, "IGQV123", loaded.Connection.Tokens.AccessToken)

	err = mgr.Users().SaveConnection(ctx, "7b2de2f6-6f64-4bcb-a517-17bbed1d7f0c", conn)
	require.Error(t, err)
}

func TestPostsCRUD(t *testing.T) {
	mgr := setupManager(t)
	ctx := context.Background()

	user, err := mgr.Users().Register(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	created, err := mgr.Posts().Create(ctx, &connect.Post{
		UserID:       user.ID,
		Content:      "launch day",
		ScheduledFor: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, connect.PostStatusScheduled, created.Status)
	assert.Equal(t, "instagram", created.Platform)

	created.Status = connect.PostStatusPublished
	created.RemotePostID = "media-9"
	require.NoError(t, mgr.Posts().Update(ctx, created))

	loaded, err := mgr.Posts().FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, connect.PostStatusPublished, loaded.Status)
	assert.Equal(t, "media-9", loaded.RemotePostID)

	list, err := mgr.Posts().FindByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, mgr.Posts().Delete(ctx, created.ID))
	gone, err := mgr.Posts().FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestTickets(t *testing.T) {
	mgr := setupManager(t)
	ctx := context.Background()

	user, err := mgr.Users().Register(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	ticket, err := mgr.Tickets().Create(ctx, user.ID, "billing", "charged twice")
	require.NoError(t, err)
	assert.Equal(t, TicketStatusOpen, ticket.Status)

	require.NoError(t, mgr.Tickets().UpdateStatus(ctx, ticket.ID, TicketStatusResolved))

	list, err := mgr.Tickets().FindByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, TicketStatusResolved, list[0].Status)
}

func TestManagerProbe(t *testing.T) {
	mgr := setupManager(t)

	assert.True(t, mgr.Configured())
	assert.NoError(t, mgr.Ping(context.Background()))

	demo := NewManager(mgr.db, PlaceholderDSN)
	assert.False(t, demo.Configured())
}

func TestMemoryStoreSessionAndPurge(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user, err := store.Register(ctx, "Demo User", "demo@example.com", "demo-pass")
	require.NoError(t, err)

	_, err = store.Register(ctx, "Dup", "demo@example.com", "other")
	require.Error(t, err)

	none, err := store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	authed, err := store.Authenticate(ctx, "demo@example.com", "demo-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	current, err := store.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)

	store.Logout()
	loggedOut, err := store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, loggedOut)

	_, err = store.Authenticate(ctx, "demo@example.com", "demo-pass")
	require.NoError(t, err)

	require.NoError(t, store.SaveConnection(ctx, user.ID, &connect.Connection{IsConnected: true}))
	_, err = store.CreatePost(ctx, &connect.Post{UserID: user.ID, Content: "hello"})
	require.NoError(t, err)

	require.NoError(t, store.PurgeDemoData(ctx))

	afterPurge, err := store.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, afterPurge)

	posts, err := store.FindPostsByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestMemoryStoreCloneIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user, err := store.Register(ctx, "Demo", "demo@example.com", "demo-pass")
	require.NoError(t, err)

	require.NoError(t, store.SaveConnection(ctx, user.ID, &connect.Connection{
		IsConnected: true,
		Tokens:      &connect.Tokens{AccessToken: "tok"},
	}))

	loaded, err := store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	loaded.Connection.Tokens.AccessToken = "mutated"

	again, err := store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", again.Connection.Tokens.AccessToken)
}
