package users

import (
	"context"
	"testing"

	"camposocial/fault"
	"camposocial/graph"
	"camposocial/state"
	"camposocial/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) (*Store, *graph.Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, state.Migrate(db))

	g := graph.NewStore(db)

	return NewStore(db, g), g, db
}

func signup(t *testing.T, store *Store, username string) *types.User {
	t.Helper()

	user, err := store.Signup(context.Background(), SignupInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hunter2hunter2",
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)

	return user
}

func TestSignup(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	user, err := store.Signup(ctx, SignupInput{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "hunter2hunter2",
		FirstName: "Alice",
		LastName:  "Mwangi",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Mwangi", user.DisplayName)
	assert.Equal(t, "general", user.Category)
	assert.NotEqual(t, "hunter2hunter2", user.Password)

	// Username and email collisions conflict
	_, err = store.Signup(ctx, SignupInput{
		Username:  "alice",
		Email:     "other@example.com",
		Password:  "hunter2hunter2",
		FirstName: "Other",
		LastName:  "Alice",
	})
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	_, err = store.Signup(ctx, SignupInput{
		Username:  "alice2",
		Email:     "alice@example.com",
		Password:  "hunter2hunter2",
		FirstName: "Other",
		LastName:  "Alice",
	})
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	_, err = store.Signup(ctx, SignupInput{
		Username:  "bob",
		Email:     "bob@example.com",
		Password:  "short",
		FirstName: "Bob",
		LastName:  "K",
	})
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	_, err = store.Signup(ctx, SignupInput{Username: "nobody"})
	assert.Equal(t, fault.Validation, fault.KindOf(err))
}

func TestCheckPassword(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	signup(t, store, "alice")

	user, err := store.CheckPassword(ctx, "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	// Wrong password and unknown user read the same to the caller
	_, err = store.CheckPassword(ctx, "alice", "wrong-password")
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	_, err = store.CheckPassword(ctx, "nobody", "hunter2hunter2")
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	alice := signup(t, store, "alice")

	err := store.UpdateProfile(ctx, alice.ID, ProfileUpdate{})
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	bio := "cat person"
	display := "Ally"
	require.NoError(t, store.UpdateProfile(ctx, alice.ID, ProfileUpdate{
		Bio:         &bio,
		DisplayName: &display,
	}))

	got, err := store.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "cat person", got.Bio)
	assert.Equal(t, "Ally", got.DisplayName)
	assert.Equal(t, "alice", got.Username)
}

func TestGetProfile(t *testing.T) {
	store, g, _ := newTestStore(t)
	ctx := context.Background()

	alice := signup(t, store, "alice")
	bob := signup(t, store, "bob")
	carol := signup(t, store, "carol")

	// carol is a mutual friend of alice and bob
	for _, pair := range [][2]*types.User{{alice, carol}, {bob, carol}} {
		_, err := g.SendRequest(ctx, pair[0].ID, pair[1].ID)
		require.NoError(t, err)
		require.NoError(t, g.Accept(ctx, pair[1].ID, pair[0].ID))
	}

	_, err := g.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	profile, err := store.GetProfile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.FriendCount)
	assert.Equal(t, 1, profile.MutualCount)
	assert.Equal(t, graph.RelationRequestSent, profile.Relation)

	// Own profile carries no relation
	profile, err = store.GetProfile(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, graph.RelationNone, profile.Relation)
	assert.Zero(t, profile.MutualCount)
}

func TestDirectory(t *testing.T) {
	store, g, _ := newTestStore(t)
	ctx := context.Background()

	alice := signup(t, store, "alice")
	bob := signup(t, store, "bob")
	signup(t, store, "carol")

	_, err := g.SendRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	entries, err := store.Directory(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byUsername := map[string]DirectoryEntry{}
	for _, entry := range entries {
		byUsername[entry.Username] = entry
	}

	assert.NotContains(t, byUsername, "alice")
	assert.Equal(t, graph.RelationRequestReceived, byUsername["bob"].Relation)
	assert.Equal(t, graph.RelationNone, byUsername["carol"].Relation)
}

func TestDelete(t *testing.T) {
	store, g, db := newTestStore(t)
	ctx := context.Background()

	alice := signup(t, store, "alice")
	bob := signup(t, store, "bob")

	_, err := g.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, g.Accept(ctx, bob.ID, alice.ID))

	require.NoError(t, store.Delete(ctx, alice.ID))

	_, err = store.Get(ctx, alice.ID)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))

	var friendships int64
	require.NoError(t, db.Model(&types.Friendship{}).Count(&friendships).Error)
	assert.Zero(t, friendships)

	var notifs int64
	require.NoError(t, db.Model(&types.Notification{}).Count(&notifs).Error)
	assert.Zero(t, notifs)

	err = store.Delete(ctx, alice.ID)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}
