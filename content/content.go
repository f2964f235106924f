// Package content owns the yap graph: yaps with optional reyap references,
// threaded replies, likes and hashtag links. Every mutation is one
// transaction covering the primary row plus its derived rows (hashtag
// links, mention/like/reply notifications), so a failed fan-out rolls the
// whole write back.
package content

import (
	"context"
	"errors"

	"camposocial/fault"
	"camposocial/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedInvalidator drops any cached feed pages a content write could have
// changed. feed.Cache implements this.
type FeedInvalidator interface {
	InvalidateFeed(ctx context.Context, author uuid.UUID) error
}

type Store struct {
	db    *gorm.DB
	feeds FeedInvalidator
}

func NewStore(db *gorm.DB, feeds FeedInvalidator) *Store {
	return &Store{db: db, feeds: feeds}
}

type MediaInput struct {
	URL  string
	Type string
}

// CreateYap writes the yap plus its media rows, hashtag links and mention
// notifications in one transaction, then invalidates the author's cached
// feed pages.
func (s *Store) CreateYap(ctx context.Context, author uuid.UUID, content, location string, originalYapID *uuid.UUID, media []MediaInput) (*types.Yap, error) {
	if content == "" {
		return nil, fault.New(fault.Validation, "Content is required")
	}

	yap := types.Yap{
		BaseModel:     types.BaseModel{ID: uuid.New()},
		UserID:        author,
		Content:       content,
		Location:      location,
		OriginalYapID: originalYapID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if originalYapID != nil {
			var count int64
			if err := tx.Model(&types.Yap{}).Where("id = ?", *originalYapID).Count(&count).Error; err != nil {
				return fault.Wrap(err, "failed to check original yap")
			}

			if count == 0 {
				return fault.New(fault.NotFound, "Original yap not found")
			}
		}

		if err := tx.Create(&yap).Error; err != nil {
			return fault.Wrap(err, "failed to create yap")
		}

		for _, m := range media {
			row := types.YapMedia{
				BaseModel: types.BaseModel{ID: uuid.New()},
				YapID:     yap.ID,
				MediaURL:  m.URL,
				MediaType: m.Type,
			}

			if err := tx.Create(&row).Error; err != nil {
				return fault.Wrap(err, "failed to attach media")
			}
		}

		if err := linkHashtags(tx, yap.ID, content); err != nil {
			return err
		}

		return notifyMentions(tx, author, content, &yap.ID, nil)
	})

	if err != nil {
		return nil, err
	}

	if err := s.feeds.InvalidateFeed(ctx, author); err != nil {
		return nil, fault.Wrap(err, "failed to invalidate feed cache")
	}

	return &yap, nil
}

// GetYap loads one yap or NotFound.
func (s *Store) GetYap(ctx context.Context, id uuid.UUID) (*types.Yap, error) {
	var yap types.Yap
	err := s.db.WithContext(ctx).First(&yap, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "Yap not found")
	}

	if err != nil {
		return nil, fault.Wrap(err, "failed to load yap")
	}

	return &yap, nil
}

// DeleteYap cascades to the yap's replies (and their subtrees), likes,
// media and hashtag links. Reyaps pointing at the deleted yap keep
// existing with their reference nulled: reyap links never cascade.
func (s *Store) DeleteYap(ctx context.Context, actor, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var yap types.Yap
		err := tx.First(&yap, "id = ?", id).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.New(fault.NotFound, "Yap not found")
		}

		if err != nil {
			return fault.Wrap(err, "failed to load yap")
		}

		if yap.UserID != actor {
			return fault.New(fault.Unauthorized, "You are not the author of this yap")
		}

		var replyIDs []uuid.UUID
		if err := tx.Model(&types.Reply{}).Where("yap_id = ?", id).Pluck("id", &replyIDs).Error; err != nil {
			return fault.Wrap(err, "failed to collect replies")
		}

		if len(replyIDs) > 0 {
			if err := deleteReplyRows(tx, replyIDs); err != nil {
				return err
			}
		}

		for _, step := range []error{
			tx.Where("yap_id = ?", id).Delete(&types.Like{}).Error,
			tx.Where("yap_id = ?", id).Delete(&types.YapMedia{}).Error,
			tx.Where("yap_id = ?", id).Delete(&types.YapHashtag{}).Error,
			tx.Model(&types.Yap{}).Where("original_yap_id = ?", id).Update("original_yap_id", nil).Error,
			tx.Delete(&types.Yap{}, "id = ?", id).Error,
		} {
			if step != nil {
				return fault.Wrap(step, "failed to delete yap")
			}
		}

		return nil
	})

	if err != nil {
		return err
	}

	return s.feeds.InvalidateFeed(ctx, actor)
}

// CreateReply threads a reply under a yap, optionally under a parent reply
// in the same thread, and notifies the replied-to author atomically. The
// yap author's feed pages embed reply counts, so their scope is
// invalidated too.
func (s *Store) CreateReply(ctx context.Context, author, yapID uuid.UUID, parentReplyID *uuid.UUID, content string, media []MediaInput) (*types.Reply, error) {
	if content == "" {
		return nil, fault.New(fault.Validation, "Content is required")
	}

	reply := types.Reply{
		BaseModel:     types.BaseModel{ID: uuid.New()},
		UserID:        author,
		YapID:         yapID,
		ParentReplyID: parentReplyID,
		Content:       content,
	}

	var yapAuthor uuid.UUID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var yap types.Yap
		err := tx.First(&yap, "id = ?", yapID).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.New(fault.NotFound, "Yap not found")
		}

		if err != nil {
			return fault.Wrap(err, "failed to load yap")
		}

		yapAuthor = yap.UserID

		// The reply's notification goes to whoever it addresses: the
		// parent reply's author when threading, the yap's author otherwise.
		recipient := yap.UserID

		if parentReplyID != nil {
			var parent types.Reply
			err := tx.First(&parent, "id = ?", *parentReplyID).Error

			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.New(fault.NotFound, "Parent reply not found")
			}

			if err != nil {
				return fault.Wrap(err, "failed to load parent reply")
			}

			if parent.YapID != yapID {
				return fault.New(fault.Validation, "Parent reply belongs to a different thread")
			}

			recipient = parent.UserID
		}

		if err := tx.Create(&reply).Error; err != nil {
			return fault.Wrap(err, "failed to create reply")
		}

		for _, m := range media {
			row := types.ReplyMedia{
				BaseModel: types.BaseModel{ID: uuid.New()},
				ReplyID:   reply.ID,
				MediaURL:  m.URL,
				MediaType: m.Type,
			}

			if err := tx.Create(&row).Error; err != nil {
				return fault.Wrap(err, "failed to attach media")
			}
		}

		if recipient != author {
			notif := types.Notification{
				BaseModel:   types.BaseModel{ID: uuid.New()},
				Type:        types.NotificationReply,
				RecipientID: recipient,
				SenderID:    &author,
				YapID:       &yapID,
				ReplyID:     &reply.ID,
			}

			if err := tx.Create(&notif).Error; err != nil {
				return fault.Wrap(err, "failed to record reply notification")
			}
		}

		return notifyMentions(tx, author, content, &yapID, &reply.ID)
	})

	if err != nil {
		return nil, err
	}

	if err := s.feeds.InvalidateFeed(ctx, yapAuthor); err != nil {
		return nil, fault.Wrap(err, "failed to invalidate feed cache")
	}

	return &reply, nil
}

// DeleteReply removes the reply and its child subtree, leaving the parent
// untouched. The yap author's cached reply counts shrink, so their feed
// scope is invalidated.
func (s *Store) DeleteReply(ctx context.Context, actor, id uuid.UUID) error {
	var yapAuthor uuid.UUID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reply types.Reply
		err := tx.First(&reply, "id = ?", id).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.New(fault.NotFound, "Reply not found")
		}

		if err != nil {
			return fault.Wrap(err, "failed to load reply")
		}

		if reply.UserID != actor {
			return fault.New(fault.Unauthorized, "You are not the author of this reply")
		}

		var yap types.Yap
		if err := tx.First(&yap, "id = ?", reply.YapID).Error; err != nil {
			return fault.Wrap(err, "failed to load yap")
		}

		yapAuthor = yap.UserID

		return deleteReplyRows(tx, []uuid.UUID{id})
	})

	if err != nil {
		return err
	}

	return s.feeds.InvalidateFeed(ctx, yapAuthor)
}

// deleteReplyRows deletes the given replies and every descendant, walking
// the parent links level by level.
func deleteReplyRows(tx *gorm.DB, roots []uuid.UUID) error {
	all := append([]uuid.UUID{}, roots...)
	frontier := roots

	for len(frontier) > 0 {
		var children []uuid.UUID
		if err := tx.Model(&types.Reply{}).Where("parent_reply_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return fault.Wrap(err, "failed to collect child replies")
		}

		all = append(all, children...)
		frontier = children
	}

	for _, step := range []error{
		tx.Where("reply_id IN ?", all).Delete(&types.Like{}).Error,
		tx.Where("reply_id IN ?", all).Delete(&types.ReplyMedia{}).Error,
		tx.Where("id IN ?", all).Delete(&types.Reply{}).Error,
	} {
		if step != nil {
			return fault.Wrap(step, "failed to delete replies")
		}
	}

	return nil
}

// LikeYap records the like and notifies the yap's author in one
// transaction. A second like by the same user is a Conflict, enforced by
// the unique index so concurrent duplicates lose at the store.
func (s *Store) LikeYap(ctx context.Context, user, yapID uuid.UUID) error {
	var yapAuthor uuid.UUID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var yap types.Yap
		err := tx.First(&yap, "id = ?", yapID).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.New(fault.NotFound, "Yap not found")
		}

		if err != nil {
			return fault.Wrap(err, "failed to load yap")
		}

		yapAuthor = yap.UserID

		like := types.Like{
			BaseModel: types.BaseModel{ID: uuid.New()},
			UserID:    user,
			YapID:     &yapID,
		}

		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fault.New(fault.Conflict, "You have already liked this yap")
			}

			return fault.Wrap(err, "failed to create like")
		}

		if yap.UserID != user {
			notif := types.Notification{
				BaseModel:   types.BaseModel{ID: uuid.New()},
				Type:        types.NotificationLike,
				RecipientID: yap.UserID,
				SenderID:    &user,
				YapID:       &yapID,
			}

			if err := tx.Create(&notif).Error; err != nil {
				return fault.Wrap(err, "failed to record like notification")
			}
		}

		return nil
	})

	if err != nil {
		return err
	}

	return s.feeds.InvalidateFeed(ctx, yapAuthor)
}

// LikeReply mirrors LikeYap for replies. Reply likes never surface in feed
// cards, so no feed pages are invalidated.
func (s *Store) LikeReply(ctx context.Context, user, replyID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reply types.Reply
		err := tx.First(&reply, "id = ?", replyID).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.New(fault.NotFound, "Reply not found")
		}

		if err != nil {
			return fault.Wrap(err, "failed to load reply")
		}

		like := types.Like{
			BaseModel: types.BaseModel{ID: uuid.New()},
			UserID:    user,
			ReplyID:   &replyID,
		}

		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fault.New(fault.Conflict, "You have already liked this reply")
			}

			return fault.Wrap(err, "failed to create like")
		}

		if reply.UserID != user {
			notif := types.Notification{
				BaseModel:   types.BaseModel{ID: uuid.New()},
				Type:        types.NotificationLike,
				RecipientID: reply.UserID,
				SenderID:    &user,
				YapID:       &reply.YapID,
				ReplyID:     &replyID,
			}

			if err := tx.Create(&notif).Error; err != nil {
				return fault.Wrap(err, "failed to record like notification")
			}
		}

		return nil
	})
}

// UnlikeYap removes the caller's like from a yap.
func (s *Store) UnlikeYap(ctx context.Context, user, yapID uuid.UUID) error {
	var yap types.Yap
	err := s.db.WithContext(ctx).First(&yap, "id = ?", yapID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.New(fault.NotFound, "Yap not found")
	}

	if err != nil {
		return fault.Wrap(err, "failed to load yap")
	}

	res := s.db.WithContext(ctx).Where("user_id = ? AND yap_id = ?", user, yapID).Delete(&types.Like{})

	if res.Error != nil {
		return fault.Wrap(res.Error, "failed to remove like")
	}

	if res.RowsAffected == 0 {
		return fault.New(fault.NotFound, "You have not liked this yap")
	}

	return s.feeds.InvalidateFeed(ctx, yap.UserID)
}

// UnlikeReply removes the caller's like from a reply.
func (s *Store) UnlikeReply(ctx context.Context, user, replyID uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND reply_id = ?", user, replyID).Delete(&types.Like{})

	if res.Error != nil {
		return fault.Wrap(res.Error, "failed to remove like")
	}

	if res.RowsAffected == 0 {
		return fault.New(fault.NotFound, "You have not liked this reply")
	}

	return nil
}

// Thread is a yap plus its replies resolved with author names, the shape
// the single-yap endpoint returns.
type Thread struct {
	Yap        types.Yap        `json:"yap"`
	Author     types.User       `json:"author"`
	Replies    []ThreadReply    `json:"replies"`
	LikesCount int64            `json:"likes_count"`
	Media      []types.YapMedia `json:"media"`
	Hashtags   []string         `json:"hashtags"`
}

type ThreadReply struct {
	types.Reply
	Username string `json:"username"`
}

// GetThread loads a yap with replies, counts and annotations through
// explicit bounded queries.
func (s *Store) GetThread(ctx context.Context, yapID uuid.UUID) (*Thread, error) {
	yap, err := s.GetYap(ctx, yapID)

	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var author types.User
	if err := db.First(&author, "id = ?", yap.UserID).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load yap author")
	}

	var replies []types.Reply
	if err := db.Where("yap_id = ?", yapID).Order("created_at ASC").Find(&replies).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load replies")
	}

	threadReplies := make([]ThreadReply, 0, len(replies))

	for _, reply := range replies {
		var user types.User
		if err := db.First(&user, "id = ?", reply.UserID).Error; err != nil {
			return nil, fault.Wrap(err, "failed to load reply author")
		}

		threadReplies = append(threadReplies, ThreadReply{Reply: reply, Username: user.Username})
	}

	var likes int64
	if err := db.Model(&types.Like{}).Where("yap_id = ?", yapID).Count(&likes).Error; err != nil {
		return nil, fault.Wrap(err, "failed to count likes")
	}

	var media []types.YapMedia
	if err := db.Where("yap_id = ?", yapID).Find(&media).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load media")
	}

	tags, err := hashtagsFor(db, yapID)

	if err != nil {
		return nil, err
	}

	return &Thread{
		Yap:        *yap,
		Author:     author,
		Replies:    threadReplies,
		LikesCount: likes,
		Media:      media,
		Hashtags:   tags,
	}, nil
}
