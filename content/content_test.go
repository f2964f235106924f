package content

import (
	"context"
	"testing"

	"camposocial/fault"
	"camposocial/feed"
	"camposocial/state"
	"camposocial/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
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

	return NewStore(db, feed.NewCache(nil)), db
}

// recordingInvalidator captures the author scope of every invalidation so
// tests can assert which feeds a write touched.
type recordingInvalidator struct {
	authors []uuid.UUID
}

func (r *recordingInvalidator) InvalidateFeed(_ context.Context, author uuid.UUID) error {
	r.authors = append(r.authors, author)
	return nil
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

func TestExtractHashtags(t *testing.T) {
	tags := ExtractHashtags("shipping #Bleach today, more #bleach and #GoLang soon")
	assert.Equal(t, []string{"bleach", "golang"}, tags)

	assert.Empty(t, ExtractHashtags("no tags here"))
}

func TestCreateYapLinksSharedHashtags(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	_, err := store.CreateYap(ctx, alice.ID, "first #bleach yap", "", nil, nil)
	require.NoError(t, err)

	_, err = store.CreateYap(ctx, bob.ID, "also watching #Bleach", "", nil, nil)
	require.NoError(t, err)

	// Both yaps share one global tag row
	var tagCount int64
	require.NoError(t, db.Model(&types.Hashtag{}).Where("name = ?", "bleach").Count(&tagCount).Error)
	assert.EqualValues(t, 1, tagCount)

	var linkCount int64
	require.NoError(t, db.Model(&types.YapHashtag{}).Count(&linkCount).Error)
	assert.EqualValues(t, 2, linkCount)
}

func TestCreateYapRequiresContent(t *testing.T) {
	store, db := newTestStore(t)

	alice := seedUser(t, db, "alice")

	_, err := store.CreateYap(context.Background(), alice.ID, "", "", nil, nil)
	assert.Equal(t, fault.Validation, fault.KindOf(err))
}

func TestReyapRequiresOriginal(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")

	missing := uuid.New()
	_, err := store.CreateYap(ctx, alice.ID, "sharing", "", &missing, nil)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))

	original, err := store.CreateYap(ctx, alice.ID, "the original", "", nil, nil)
	require.NoError(t, err)

	reyap, err := store.CreateYap(ctx, alice.ID, "sharing", "", &original.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, reyap.OriginalYapID)
	assert.Equal(t, original.ID, *reyap.OriginalYapID)
}

func TestMentionNotifications(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	// @ghost resolves to nobody, @alice is the author herself
	yap, err := store.CreateYap(ctx, alice.ID, "hey @bob and @ghost and @alice", "", nil, nil)
	require.NoError(t, err)

	var notifs []types.Notification
	require.NoError(t, db.Where("type = ?", types.NotificationMention).Find(&notifs).Error)
	require.Len(t, notifs, 1)
	assert.Equal(t, bob.ID, notifs[0].RecipientID)
	require.NotNil(t, notifs[0].YapID)
	assert.Equal(t, yap.ID, *notifs[0].YapID)
}

func TestLikeYap(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	yap, err := store.CreateYap(ctx, alice.ID, "like me", "", nil, nil)
	require.NoError(t, err)

	require.NoError(t, store.LikeYap(ctx, bob.ID, yap.ID))

	err = store.LikeYap(ctx, bob.ID, yap.ID)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	var notifs []types.Notification
	require.NoError(t, db.Where("type = ?", types.NotificationLike).Find(&notifs).Error)
	require.Len(t, notifs, 1)
	assert.Equal(t, alice.ID, notifs[0].RecipientID)

	// Self-likes are allowed but do not notify
	require.NoError(t, store.LikeYap(ctx, alice.ID, yap.ID))

	var count int64
	require.NoError(t, db.Model(&types.Notification{}).Where("type = ?", types.NotificationLike).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, store.UnlikeYap(ctx, bob.ID, yap.ID))

	err = store.UnlikeYap(ctx, bob.ID, yap.ID)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestFeedInvalidationScopes(t *testing.T) {
	_, db := newTestStore(t)
	ctx := context.Background()

	feeds := &recordingInvalidator{}
	store := NewStore(db, feeds)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	yap, err := store.CreateYap(ctx, alice.ID, "watch my counts", "", nil, nil)
	require.NoError(t, err)
	require.Len(t, feeds.authors, 1)
	assert.Equal(t, alice.ID, feeds.authors[0])

	// Reply and like counts render on alice's cards, so every write by bob
	// against her yap invalidates her scope, never his and never a zero id.
	reply, err := store.CreateReply(ctx, bob.ID, yap.ID, nil, "count me", nil)
	require.NoError(t, err)

	require.NoError(t, store.LikeYap(ctx, bob.ID, yap.ID))
	require.NoError(t, store.UnlikeYap(ctx, bob.ID, yap.ID))

	require.NoError(t, store.DeleteReply(ctx, bob.ID, reply.ID))

	require.Len(t, feeds.authors, 5)
	for _, author := range feeds.authors[1:] {
		assert.Equal(t, alice.ID, author)
	}
}

func TestReplyThreading(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	yap, err := store.CreateYap(ctx, alice.ID, "thread root", "", nil, nil)
	require.NoError(t, err)

	other, err := store.CreateYap(ctx, alice.ID, "another thread", "", nil, nil)
	require.NoError(t, err)

	reply, err := store.CreateReply(ctx, bob.ID, yap.ID, nil, "top level", nil)
	require.NoError(t, err)

	// The yap author gets the REPLY notification
	var notif types.Notification
	require.NoError(t, db.Where("type = ?", types.NotificationReply).First(&notif).Error)
	assert.Equal(t, alice.ID, notif.RecipientID)

	// Nesting under a reply from a different thread is rejected
	_, err = store.CreateReply(ctx, alice.ID, other.ID, &reply.ID, "wrong thread", nil)
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	// Nested replies notify the parent reply's author, not the yap's
	_, err = store.CreateReply(ctx, alice.ID, yap.ID, &reply.ID, "nested", nil)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&types.Notification{}).
		Where("type = ? AND recipient_id = ?", types.NotificationReply, bob.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUnlikeReply(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	yap, err := store.CreateYap(ctx, alice.ID, "root", "", nil, nil)
	require.NoError(t, err)

	reply, err := store.CreateReply(ctx, alice.ID, yap.ID, nil, "like me", nil)
	require.NoError(t, err)

	require.NoError(t, store.LikeReply(ctx, bob.ID, reply.ID))
	require.NoError(t, store.UnlikeReply(ctx, bob.ID, reply.ID))

	err = store.UnlikeReply(ctx, bob.ID, reply.ID)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))

	// Unliking never removes someone else's like
	require.NoError(t, store.LikeReply(ctx, alice.ID, reply.ID))

	err = store.UnlikeReply(ctx, bob.ID, reply.ID)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))

	var count int64
	require.NoError(t, db.Model(&types.Like{}).Where("reply_id = ?", reply.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteYapCascades(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	yap, err := store.CreateYap(ctx, alice.ID, "doomed #gone", "", nil, []MediaInput{
		{URL: "https://cdn.example.com/a.png", Type: "image"},
	})
	require.NoError(t, err)

	reply, err := store.CreateReply(ctx, bob.ID, yap.ID, nil, "reply", nil)
	require.NoError(t, err)

	_, err = store.CreateReply(ctx, alice.ID, yap.ID, &reply.ID, "nested", nil)
	require.NoError(t, err)

	require.NoError(t, store.LikeYap(ctx, bob.ID, yap.ID))
	require.NoError(t, store.LikeReply(ctx, alice.ID, reply.ID))

	reyap, err := store.CreateYap(ctx, bob.ID, "sharing", "", &yap.ID, nil)
	require.NoError(t, err)

	// Only the author may delete
	err = store.DeleteYap(ctx, bob.ID, yap.ID)
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	require.NoError(t, store.DeleteYap(ctx, alice.ID, yap.ID))

	for model, label := range map[any]string{
		&types.Reply{}:      "replies",
		&types.Like{}:       "likes",
		&types.YapMedia{}:   "media",
		&types.YapHashtag{}: "hashtag links",
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, label)
	}

	// The reyap survives with its reference nulled
	var kept types.Yap
	require.NoError(t, db.First(&kept, "id = ?", reyap.ID).Error)
	assert.Nil(t, kept.OriginalYapID)

	err = store.DeleteYap(ctx, alice.ID, yap.ID)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestDeleteReplySubtree(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	yap, err := store.CreateYap(ctx, alice.ID, "root", "", nil, nil)
	require.NoError(t, err)

	top, err := store.CreateReply(ctx, bob.ID, yap.ID, nil, "top", nil)
	require.NoError(t, err)

	mid, err := store.CreateReply(ctx, alice.ID, yap.ID, &top.ID, "mid", nil)
	require.NoError(t, err)

	_, err = store.CreateReply(ctx, bob.ID, yap.ID, &mid.ID, "leaf", nil)
	require.NoError(t, err)

	sibling, err := store.CreateReply(ctx, alice.ID, yap.ID, nil, "sibling", nil)
	require.NoError(t, err)

	err = store.DeleteReply(ctx, alice.ID, top.ID)
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	require.NoError(t, store.DeleteReply(ctx, bob.ID, top.ID))

	var remaining []types.Reply
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, sibling.ID, remaining[0].ID)
}

func TestGetThread(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	yap, err := store.CreateYap(ctx, alice.ID, "thread with #tags", "", nil, nil)
	require.NoError(t, err)

	_, err = store.CreateReply(ctx, bob.ID, yap.ID, nil, "hi", nil)
	require.NoError(t, err)

	require.NoError(t, store.LikeYap(ctx, bob.ID, yap.ID))

	thread, err := store.GetThread(ctx, yap.ID)
	require.NoError(t, err)

	assert.Equal(t, "alice", thread.Author.Username)
	require.Len(t, thread.Replies, 1)
	assert.Equal(t, "bob", thread.Replies[0].Username)
	assert.EqualValues(t, 1, thread.LikesCount)
	assert.Equal(t, []string{"tags"}, thread.Hashtags)

	_, err = store.GetThread(ctx, uuid.New())
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestHashtagFollowing(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")

	require.NoError(t, store.FollowHashtag(ctx, alice.ID, "#GoLang"))

	err := store.FollowHashtag(ctx, alice.ID, "golang")
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	require.NoError(t, store.FollowHashtag(ctx, alice.ID, "anime"))

	tags, err := store.FollowedHashtags(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"anime", "golang"}, tags)

	require.NoError(t, store.UnfollowHashtag(ctx, alice.ID, "golang"))

	err = store.UnfollowHashtag(ctx, alice.ID, "golang")
	assert.Equal(t, fault.NotFound, fault.KindOf(err))

	err = store.UnfollowHashtag(ctx, alice.ID, "nosuchtag")
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestTrending(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")

	for _, content := range []string{
		"one #alpha",
		"two #alpha #beta",
		"three #alpha #beta #gamma",
	} {
		_, err := store.CreateYap(ctx, alice.ID, content, "", nil, nil)
		require.NoError(t, err)
	}

	trending, err := store.Trending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, "alpha", trending[0].Name)
	assert.EqualValues(t, 3, trending[0].Count)
	assert.Equal(t, "beta", trending[1].Name)
	assert.EqualValues(t, 2, trending[1].Count)
}
