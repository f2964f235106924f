package graph

import (
	"context"
	"errors"
	"testing"

	"camposocial/fault"
	"camposocial/state"
	"camposocial/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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

	return db
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

func TestRequestLifecycle(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	edge, err := store.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, types.FriendshipPending, edge.Status)

	// Duplicate request, either direction, conflicts
	_, err = store.SendRequest(ctx, alice.ID, bob.ID)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	_, err = store.SendRequest(ctx, bob.ID, alice.ID)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	// Rejection deletes the edge so a fresh request can follow
	require.NoError(t, store.Reject(ctx, bob.ID, alice.ID))

	friends, err := store.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends)

	_, err = store.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, store.Accept(ctx, bob.ID, alice.ID))

	friends, err = store.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, friends)

	// Accepting notifies the requester
	var notif types.Notification
	require.NoError(t, db.Where("recipient_id = ?", alice.ID).First(&notif).Error)
	assert.Equal(t, types.NotificationAccept, notif.Type)
	require.NotNil(t, notif.SenderID)
	assert.Equal(t, bob.ID, *notif.SenderID)
}

func TestPairUniqueAcrossDirections(t *testing.T) {
	db := newTestDB(t)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	// SendRequest checks for an existing edge before inserting, but two
	// opposite-direction requests racing past that check both reach the
	// insert. The schema itself must reject the second row.
	first := types.Friendship{
		BaseModel: types.BaseModel{ID: uuid.New()},
		UserID:    alice.ID,
		FriendID:  bob.ID,
		Status:    types.FriendshipPending,
	}
	require.NoError(t, db.Create(&first).Error)

	second := types.Friendship{
		BaseModel: types.BaseModel{ID: uuid.New()},
		UserID:    bob.ID,
		FriendID:  alice.ID,
		Status:    types.FriendshipPending,
	}
	err := db.Create(&second).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	var count int64
	require.NoError(t, db.Model(&types.Friendship{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSelfRequestRejected(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)

	alice := seedUser(t, db, "alice")

	_, err := store.SendRequest(context.Background(), alice.ID, alice.ID)
	assert.Equal(t, fault.Validation, fault.KindOf(err))
}

func TestAcceptWithoutRequest(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	err := store.Accept(ctx, bob.ID, alice.ID)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))

	// An accepted edge cannot be accepted again
	_, err = store.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, store.Accept(ctx, bob.ID, alice.ID))

	err = store.Accept(ctx, bob.ID, alice.ID)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestBlockAndUnblock(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	_, err := store.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, store.Accept(ctx, bob.ID, alice.ID))

	// Blocking severs the friendship immediately
	require.NoError(t, store.Block(ctx, alice.ID, bob.ID))

	ids, err := store.FriendIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	relation, err := store.RelationBetween(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, RelationBlocked, relation)

	// Only the blocker may unblock
	err = store.Unblock(ctx, bob.ID, alice.ID)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))

	// Unblocking drops back to a pending request, not to friendship
	require.NoError(t, store.Unblock(ctx, alice.ID, bob.ID))

	friends, err := store.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends)

	relation, err = store.RelationBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, RelationRequestSent, relation)
}

func TestRemoveFriend(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	_, err := store.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, store.Accept(ctx, bob.ID, alice.ID))

	// Either side can remove
	require.NoError(t, store.Remove(ctx, bob.ID, alice.ID))

	err = store.Remove(ctx, bob.ID, alice.ID)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestMutualCount(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	dave := seedUser(t, db, "dave")

	befriend := func(a, b uuid.UUID) {
		_, err := store.SendRequest(ctx, a, b)
		require.NoError(t, err)
		require.NoError(t, store.Accept(ctx, b, a))
	}

	// carol and dave are friends with both alice and bob
	befriend(alice.ID, carol.ID)
	befriend(bob.ID, carol.ID)
	befriend(alice.ID, dave.ID)
	befriend(dave.ID, bob.ID)

	count, err := store.MutualCount(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.MutualCount(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count) // dave

	count, err = store.MutualCount(ctx, carol.ID, dave.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPendingFor(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	_, err := store.SendRequest(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	_, err = store.SendRequest(ctx, bob.ID, carol.ID)
	require.NoError(t, err)

	pending, err := store.PendingFor(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	senders := []string{pending[0].Username, pending[1].Username}
	assert.ElementsMatch(t, []string{"alice", "bob"}, senders)

	// The sender sees nothing pending for themselves
	pending, err = store.PendingFor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
