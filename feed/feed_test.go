package feed

import (
	"context"
	"testing"
	"time"

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

	return NewStore(db, NewCache(nil)), db
}

func seedUser(t *testing.T, db *gorm.DB, username string) types.User {
	t.Helper()

	user := types.User{
		BaseModel:   types.BaseModel{ID: uuid.New()},
		Username:    username,
		Email:       username + "@example.com",
		Password:    "hashed",
		FirstName:   "Test",
		LastName:    "User",
		DisplayName: "Test User",
		Category:    "general",
	}
	require.NoError(t, db.Create(&user).Error)

	return user
}

func seedYap(t *testing.T, db *gorm.DB, author uuid.UUID, content string, at time.Time) types.Yap {
	t.Helper()

	yap := types.Yap{
		BaseModel: types.BaseModel{ID: uuid.New(), CreatedAt: at, UpdatedAt: at},
		UserID:    author,
		Content:   content,
	}
	require.NoError(t, db.Create(&yap).Error)

	return yap
}

func TestCursorRoundtrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	id := uuid.New()

	token := Cursor{CreatedAt: at, ID: id}.Encode()

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.True(t, decoded.CreatedAt.Equal(at))
	assert.Equal(t, id, decoded.ID)

	decoded, err = DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, decoded)

	for _, token := range []string{
		"not base64!!",
		"bm8gc2VwYXJhdG9y",         // no separator
		"bm90LWEtdGltZXxub3BlCg==", // bad timestamp
	} {
		_, err := DecodeCursor(token)
		assert.Equal(t, fault.Validation, fault.KindOf(err), token)
	}
}

func TestPaginationNoGapsNoDuplicates(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		seedYap(t, db, alice.ID, "yap", base.Add(time.Duration(i)*time.Minute))
	}

	seen := make(map[uuid.UUID]struct{})
	cursor := ""
	pages := 0
	var straggler types.Yap

	for {
		page, err := store.Fetch(ctx, alice.ID, cursor, 10)
		require.NoError(t, err)

		assert.Equal(t, cursor != "", page.HasPrev)

		var prev *Item
		for i := range page.Items {
			item := &page.Items[i]

			_, dup := seen[item.ID]
			assert.False(t, dup, "duplicate item across pages")
			seen[item.ID] = struct{}{}

			if prev != nil {
				assert.False(t, item.CreatedAt.After(prev.CreatedAt), "page out of order")
			}
			prev = item
		}

		pages++

		// A yap created between fetches with an older timestamp lands
		// beyond the cursor, so a later page picks it up exactly once.
		if pages == 1 {
			straggler = seedYap(t, db, alice.ID, "late arrival", base.Add(-time.Hour))
		}

		if !page.HasNext {
			assert.Empty(t, page.NextCursor)
			break
		}

		require.NotEmpty(t, page.NextCursor)
		cursor = page.NextCursor
	}

	assert.Equal(t, 3, pages)
	assert.Len(t, seen, 26)
	assert.Contains(t, seen, straggler.ID)
}

func TestFetchUserFilters(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedYap(t, db, alice.ID, "from alice", base)
	seedYap(t, db, bob.ID, "from bob", base.Add(time.Minute))
	seedYap(t, db, alice.ID, "alice again", base.Add(2*time.Minute))

	page, err := store.FetchUser(ctx, bob.ID, alice.ID, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	for _, item := range page.Items {
		assert.Equal(t, alice.ID, item.UserID)
		assert.Equal(t, "alice", item.Username)
	}

	assert.Equal(t, "alice again", page.Items[0].Content)
}

func TestAnnotations(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	yap := seedYap(t, db, alice.ID, "annotated", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	require.NoError(t, db.Create(&types.Like{
		BaseModel: types.BaseModel{ID: uuid.New()},
		UserID:    bob.ID,
		YapID:     &yap.ID,
	}).Error)

	require.NoError(t, db.Create(&types.Reply{
		BaseModel: types.BaseModel{ID: uuid.New()},
		UserID:    bob.ID,
		YapID:     yap.ID,
		Content:   "nice",
	}).Error)

	require.NoError(t, db.Create(&types.YapMedia{
		BaseModel: types.BaseModel{ID: uuid.New()},
		YapID:     yap.ID,
		MediaURL:  "https://cdn.example.com/pic.png",
		MediaType: "image",
	}).Error)

	page, err := store.Fetch(ctx, bob.ID, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	item := page.Items[0]
	assert.EqualValues(t, 1, item.LikesCount)
	assert.EqualValues(t, 1, item.RepliesCount)
	assert.True(t, item.LikedByViewer)
	require.Len(t, item.Media, 1)
	assert.Equal(t, "image", item.Media[0].MediaType)
	assert.NotNil(t, item.Hashtags)

	// A viewer who has not liked the yap sees liked_by_viewer false
	page, err = store.Fetch(ctx, alice.ID, "", 10)
	require.NoError(t, err)
	assert.False(t, page.Items[0].LikedByViewer)
}

func TestFetchHashtag(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tagged := seedYap(t, db, alice.ID, "tagged #anime", base)
	seedYap(t, db, alice.ID, "untagged", base.Add(time.Minute))

	tag := types.Hashtag{BaseModel: types.BaseModel{ID: uuid.New()}, Name: "anime"}
	require.NoError(t, db.Create(&tag).Error)
	require.NoError(t, db.Create(&types.YapHashtag{
		BaseModel: types.BaseModel{ID: uuid.New()},
		YapID:     tagged.ID,
		HashtagID: tag.ID,
	}).Error)

	page, err := store.FetchHashtag(ctx, alice.ID, "anime", "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, tagged.ID, page.Items[0].ID)

	_, err = store.FetchHashtag(ctx, alice.ID, "nosuchtag", "", 10)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestLimitClamping(t *testing.T) {
	assert.Equal(t, DefaultLimit, clampLimit(0))
	assert.Equal(t, DefaultLimit, clampLimit(-5))
	assert.Equal(t, MaxLimit, clampLimit(500))
	assert.Equal(t, 7, clampLimit(7))
}
