// Package events covers community event listings and their comment
// threads.
package events

import (
	"context"
	"errors"
	"time"

	"camposocial/fault"
	"camposocial/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type EventInput struct {
	Title       string
	Description string
	ImageURL    string
	StartTime   time.Time
	EndTime     time.Time
	DateOfEvent time.Time
	EntryFee    string
	Category    string
}

// Create lists a new event under the caller.
func (s *Store) Create(ctx context.Context, owner uuid.UUID, in EventInput) (*types.Event, error) {
	if in.Title == "" || in.Description == "" {
		return nil, fault.New(fault.Validation, "Title and description are required")
	}

	if !in.EndTime.IsZero() && in.EndTime.Before(in.StartTime) {
		return nil, fault.New(fault.Validation, "Event cannot end before it starts")
	}

	event := types.Event{
		BaseModel:   types.BaseModel{ID: uuid.New()},
		UserID:      owner,
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		DateOfEvent: in.DateOfEvent,
		EntryFee:    in.EntryFee,
		Category:    in.Category,
	}

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fault.Wrap(err, "failed to create event")
	}

	return &event, nil
}

// Get loads one event or NotFound.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*types.Event, error) {
	var event types.Event
	err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "Event not found")
	}

	if err != nil {
		return nil, fault.Wrap(err, "failed to load event")
	}

	return &event, nil
}

// ownedBy loads an event and checks the caller created it.
func (s *Store) ownedBy(ctx context.Context, actor, id uuid.UUID) (*types.Event, error) {
	event, err := s.Get(ctx, id)

	if err != nil {
		return nil, err
	}

	if event.UserID != actor {
		return nil, fault.New(fault.Unauthorized, "You do not own this event")
	}

	return event, nil
}

// Update edits an event's listing. Owner only.
func (s *Store) Update(ctx context.Context, actor, id uuid.UUID, in EventInput) error {
	if !in.EndTime.IsZero() && in.EndTime.Before(in.StartTime) {
		return fault.New(fault.Validation, "Event cannot end before it starts")
	}

	event, err := s.ownedBy(ctx, actor, id)

	if err != nil {
		return err
	}

	updates := map[string]any{
		"description":   in.Description,
		"image_url":     in.ImageURL,
		"start_time":    in.StartTime,
		"end_time":      in.EndTime,
		"date_of_event": in.DateOfEvent,
		"entry_fee":     in.EntryFee,
		"category":      in.Category,
	}

	if in.Title != "" {
		updates["title"] = in.Title
	}

	if err := s.db.WithContext(ctx).Model(event).Updates(updates).Error; err != nil {
		return fault.Wrap(err, "failed to update event")
	}

	return nil
}

// Delete removes an event and its comments. Owner only.
func (s *Store) Delete(ctx context.Context, actor, id uuid.UUID) error {
	if _, err := s.ownedBy(ctx, actor, id); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&types.EventComment{}).Error; err != nil {
			return fault.Wrap(err, "failed to delete event comments")
		}

		if err := tx.Delete(&types.Event{}, "id = ?", id).Error; err != nil {
			return fault.Wrap(err, "failed to delete event")
		}

		return nil
	})
}

// List returns upcoming-first events, optionally narrowed to a category.
func (s *Store) List(ctx context.Context, category string, limit int) ([]types.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	q := s.db.WithContext(ctx).Model(&types.Event{})

	if category != "" {
		q = q.Where("category = ?", category)
	}

	var events []types.Event
	err := q.Order("date_of_event ASC").Limit(limit).Find(&events).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load events")
	}

	return events, nil
}

// ByUser lists the events a user has created.
func (s *Store) ByUser(ctx context.Context, owner uuid.UUID) ([]types.Event, error) {
	var events []types.Event
	err := s.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("date_of_event ASC").
		Find(&events).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load user events")
	}

	return events, nil
}

// AddComment posts a comment on an event.
func (s *Store) AddComment(ctx context.Context, author, eventID uuid.UUID, text string) (*types.EventComment, error) {
	if text == "" {
		return nil, fault.New(fault.Validation, "Comment text is required")
	}

	if _, err := s.Get(ctx, eventID); err != nil {
		return nil, err
	}

	comment := types.EventComment{
		BaseModel: types.BaseModel{ID: uuid.New()},
		UserID:    author,
		EventID:   eventID,
		Text:      text,
	}

	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fault.Wrap(err, "failed to create comment")
	}

	return &comment, nil
}

// UpdateComment edits the caller's own comment.
func (s *Store) UpdateComment(ctx context.Context, actor, commentID uuid.UUID, text string) error {
	if text == "" {
		return fault.New(fault.Validation, "Comment text is required")
	}

	var comment types.EventComment
	err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.New(fault.NotFound, "Comment not found")
	}

	if err != nil {
		return fault.Wrap(err, "failed to load comment")
	}

	if comment.UserID != actor {
		return fault.New(fault.Unauthorized, "You can only edit your own comments")
	}

	if err := s.db.WithContext(ctx).Model(&comment).Update("text", text).Error; err != nil {
		return fault.Wrap(err, "failed to update comment")
	}

	return nil
}

// DeleteComment removes the caller's own comment.
func (s *Store) DeleteComment(ctx context.Context, actor, commentID uuid.UUID) error {
	var comment types.EventComment
	err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.New(fault.NotFound, "Comment not found")
	}

	if err != nil {
		return fault.Wrap(err, "failed to load comment")
	}

	if comment.UserID != actor {
		return fault.New(fault.Unauthorized, "You can only delete your own comments")
	}

	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return fault.Wrap(err, "failed to delete comment")
	}

	return nil
}

// CommentItem is a comment with its author resolved.
type CommentItem struct {
	types.EventComment
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Comments lists an event's comments, oldest first.
func (s *Store) Comments(ctx context.Context, eventID uuid.UUID) ([]CommentItem, error) {
	var comments []types.EventComment
	err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&comments).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load comments")
	}

	items := make([]CommentItem, 0, len(comments))

	for _, comment := range comments {
		var user types.User
		if err := s.db.WithContext(ctx).First(&user, "id = ?", comment.UserID).Error; err != nil {
			return nil, fault.Wrap(err, "failed to load comment author")
		}

		items = append(items, CommentItem{
			EventComment: comment,
			Username:     user.Username,
			Avatar:       user.Avatar,
		})
	}

	return items, nil
}
