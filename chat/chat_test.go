package chat

import (
	"context"
	"testing"
	"time"

	"camposocial/fault"
	"camposocial/graph"
	"camposocial/state"
	"camposocial/types"

	"github.com/google/uuid"
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

	return NewStore(db, g, NewCache(nil)), g, db
}

func seedUser(t *testing.T, db *gorm.DB, username string) types.User {
	t.Helper()

	user := types.User{
		BaseModel: types.BaseModel{ID: uuid.New()},
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
		Category:  "general",
	}
	require.NoError(t, db.Create(&user).Error)

	return user
}

func befriend(t *testing.T, g *graph.Store, a, b uuid.UUID) {
	t.Helper()

	_, err := g.SendRequest(context.Background(), a, b)
	require.NoError(t, err)
	require.NoError(t, g.Accept(context.Background(), b, a))
}

func TestSendRequiresFriendship(t *testing.T) {
	store, g, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	_, err := store.Send(ctx, alice.ID, bob.ID, "ciphertext", nil, nil)
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	// A pending request is not enough
	_, err = g.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = store.Send(ctx, alice.ID, bob.ID, "ciphertext", nil, nil)
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	require.NoError(t, g.Accept(ctx, bob.ID, alice.ID))

	msg, err := store.Send(ctx, alice.ID, bob.ID, "ciphertext", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, msg.SenderID)
	assert.Equal(t, bob.ID, msg.RecipientID)
}

func TestSendValidation(t *testing.T) {
	store, g, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	befriend(t, g, alice.ID, bob.ID)

	_, err := store.Send(ctx, alice.ID, alice.ID, "hi me", nil, nil)
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	_, err = store.Send(ctx, alice.ID, bob.ID, "", nil, nil)
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	// Media alone is a valid message
	_, err = store.Send(ctx, alice.ID, bob.ID, "", nil, []MediaInput{
		{URL: "https://cdn.example.com/v.mp4", Type: "video"},
	})
	require.NoError(t, err)
}

func TestThreadRequiresFriendship(t *testing.T) {
	store, g, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	befriend(t, g, alice.ID, bob.ID)

	_, err := store.Send(ctx, alice.ID, bob.ID, "ciphertext", nil, nil)
	require.NoError(t, err)

	// Strangers never see a thread, even an empty one
	_, err = store.Thread(ctx, carol.ID, alice.ID, "")
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	// Unfriending revokes access to the history for both sides
	require.NoError(t, g.Remove(ctx, bob.ID, alice.ID))

	_, err = store.Thread(ctx, bob.ID, alice.ID, "")
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	_, err = store.Thread(ctx, alice.ID, bob.ID, "")
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))
}

func TestReplyStaysInConversation(t *testing.T) {
	store, g, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	befriend(t, g, alice.ID, bob.ID)
	befriend(t, g, alice.ID, carol.ID)

	toBob, err := store.Send(ctx, alice.ID, bob.ID, "for bob", nil, nil)
	require.NoError(t, err)

	// carol's conversation cannot reference alice and bob's messages
	_, err = store.Send(ctx, carol.ID, alice.ID, "reply", &toBob.ID, nil)
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	reply, err := store.Send(ctx, bob.ID, alice.ID, "reply", &toBob.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, reply.ReplyToID)
	assert.Equal(t, toBob.ID, *reply.ReplyToID)

	missing := uuid.New()
	_, err = store.Send(ctx, bob.ID, alice.ID, "reply", &missing, nil)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestEditAndDelete(t *testing.T) {
	store, g, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	befriend(t, g, alice.ID, bob.ID)

	msg, err := store.Send(ctx, alice.ID, bob.ID, "v1", nil, nil)
	require.NoError(t, err)

	// Only the sender may edit or delete
	err = store.Edit(ctx, bob.ID, msg.ID, "v2")
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	err = store.Delete(ctx, bob.ID, msg.ID)
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	require.NoError(t, store.Edit(ctx, alice.ID, msg.ID, "v2"))

	require.NoError(t, store.Delete(ctx, alice.ID, msg.ID))

	// Deleted messages cannot be edited
	err = store.Edit(ctx, alice.ID, msg.ID, "v3")
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	// The slot survives in the thread with the content blanked
	page, err := store.Thread(ctx, bob.ID, alice.ID, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Deleted)
	assert.Empty(t, page.Items[0].EncryptedContent)
}

func TestReactions(t *testing.T) {
	store, g, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	befriend(t, g, alice.ID, bob.ID)

	msg, err := store.Send(ctx, alice.ID, bob.ID, "react to me", nil, nil)
	require.NoError(t, err)

	// Outsiders cannot react
	err = store.React(ctx, carol.ID, msg.ID, "❤️")
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	require.NoError(t, store.React(ctx, bob.ID, msg.ID, "❤️"))

	err = store.React(ctx, bob.ID, msg.ID, "😂")
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	// Both participants can hold a reaction at once
	require.NoError(t, store.React(ctx, alice.ID, msg.ID, "😂"))

	page, err := store.Thread(ctx, alice.ID, bob.ID, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Len(t, page.Items[0].Reactions, 2)

	require.NoError(t, store.RemoveReaction(ctx, bob.ID, msg.ID))

	err = store.RemoveReaction(ctx, bob.ID, msg.ID)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestThreadPagination(t *testing.T) {
	store, g, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	befriend(t, g, alice.ID, bob.ID)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < threadPageSize+10; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		msg := types.Message{
			BaseModel:        types.BaseModel{ID: uuid.New(), CreatedAt: at, UpdatedAt: at},
			SenderID:         alice.ID,
			RecipientID:      bob.ID,
			EncryptedContent: "msg",
		}
		require.NoError(t, db.Create(&msg).Error)
	}

	page, err := store.Thread(ctx, alice.ID, bob.ID, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, threadPageSize)
	assert.True(t, page.HasNext)
	require.NotEmpty(t, page.NextCursor)

	rest, err := store.Thread(ctx, bob.ID, alice.ID, page.NextCursor)
	require.NoError(t, err)
	assert.Len(t, rest.Items, 10)
	assert.False(t, rest.HasNext)

	// Messages with other people never leak into the thread
	carol := seedUser(t, db, "carol")
	befriend(t, g, alice.ID, carol.ID)
	_, err = store.Send(ctx, alice.ID, carol.ID, "private", nil, nil)
	require.NoError(t, err)

	page, err = store.Thread(ctx, bob.ID, alice.ID, "")
	require.NoError(t, err)
	for _, item := range page.Items {
		assert.NotEqual(t, carol.ID, item.RecipientID)
	}
}

func TestConversationList(t *testing.T) {
	store, g, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	dave := seedUser(t, db, "dave")
	befriend(t, g, alice.ID, bob.ID)
	befriend(t, g, alice.ID, carol.ID)
	befriend(t, g, alice.ID, dave.ID)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedMsg := func(sender, recipient uuid.UUID, at time.Time) {
		msg := types.Message{
			BaseModel:        types.BaseModel{ID: uuid.New(), CreatedAt: at, UpdatedAt: at},
			SenderID:         sender,
			RecipientID:      recipient,
			EncryptedContent: "msg",
		}
		require.NoError(t, db.Create(&msg).Error)
	}

	seedMsg(alice.ID, bob.ID, base)
	seedMsg(carol.ID, alice.ID, base.Add(time.Hour))
	// dave has never exchanged a message

	convos, err := store.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, convos, 3)

	assert.Equal(t, "carol", convos[0].Friend.Username)
	assert.Equal(t, "bob", convos[1].Friend.Username)
	assert.Equal(t, "dave", convos[2].Friend.Username)
	assert.Nil(t, convos[2].LastMessage)
}
