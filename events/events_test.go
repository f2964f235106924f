package events

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

	return NewStore(db), db
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

func sampleInput(day time.Time) EventInput {
	return EventInput{
		Title:       "Garage Sale",
		Description: "Everything must go",
		StartTime:   day.Add(10 * time.Hour),
		EndTime:     day.Add(16 * time.Hour),
		DateOfEvent: day,
		EntryFee:    "free",
		Category:    "community",
	}
}

func TestCreateValidation(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	in := sampleInput(day)
	in.Title = ""
	_, err := store.Create(ctx, alice.ID, in)
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	in = sampleInput(day)
	in.Description = ""
	_, err = store.Create(ctx, alice.ID, in)
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	in = sampleInput(day)
	in.EndTime = in.StartTime.Add(-time.Hour)
	_, err = store.Create(ctx, alice.ID, in)
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	event, err := store.Create(ctx, alice.ID, sampleInput(day))
	require.NoError(t, err)
	assert.Equal(t, "Garage Sale", event.Title)
}

func TestOwnerOnlyMutations(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	event, err := store.Create(ctx, alice.ID, sampleInput(day))
	require.NoError(t, err)

	in := sampleInput(day)
	in.Title = "Hijacked"

	err = store.Update(ctx, bob.ID, event.ID, in)
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	err = store.Delete(ctx, bob.ID, event.ID)
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	in.Title = "Bigger Garage Sale"
	require.NoError(t, store.Update(ctx, alice.ID, event.ID, in))

	got, err := store.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bigger Garage Sale", got.Title)

	err = store.Update(ctx, alice.ID, uuid.New(), in)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestDeleteCascadesComments(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	event, err := store.Create(ctx, alice.ID, sampleInput(day))
	require.NoError(t, err)

	_, err = store.AddComment(ctx, bob.ID, event.ID, "see you there")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, alice.ID, event.ID))

	var count int64
	require.NoError(t, db.Model(&types.EventComment{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = store.Get(ctx, event.ID)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestListOrderAndFilter(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")

	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	later := sampleInput(base.AddDate(0, 0, 14))
	later.Title = "Later"
	_, err := store.Create(ctx, alice.ID, later)
	require.NoError(t, err)

	sooner := sampleInput(base)
	sooner.Title = "Sooner"
	sooner.Category = "music"
	_, err = store.Create(ctx, alice.ID, sooner)
	require.NoError(t, err)

	events, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Sooner", events[0].Title)
	assert.Equal(t, "Later", events[1].Title)

	events, err = store.List(ctx, "music", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Sooner", events[0].Title)

	events, err = store.ByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestComments(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	event, err := store.Create(ctx, alice.ID, sampleInput(day))
	require.NoError(t, err)

	_, err = store.AddComment(ctx, bob.ID, event.ID, "")
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	_, err = store.AddComment(ctx, bob.ID, uuid.New(), "ghost event")
	assert.Equal(t, fault.NotFound, fault.KindOf(err))

	comment, err := store.AddComment(ctx, bob.ID, event.ID, "see you there")
	require.NoError(t, err)

	err = store.UpdateComment(ctx, alice.ID, comment.ID, "edited by owner")
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	require.NoError(t, store.UpdateComment(ctx, bob.ID, comment.ID, "can't wait"))

	items, err := store.Comments(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bob", items[0].Username)
	assert.Equal(t, "can't wait", items[0].Text)

	err = store.DeleteComment(ctx, alice.ID, comment.ID)
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	require.NoError(t, store.DeleteComment(ctx, bob.ID, comment.ID))

	items, err = store.Comments(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
