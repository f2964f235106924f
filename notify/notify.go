// Package notify reads and acknowledges the notifications other stores
// write. It never creates rows itself; notifications only exist as side
// effects of graph and content mutations, inside those transactions.
package notify

import (
	"context"
	"errors"

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

// Item is a notification with its sender resolved for display.
type Item struct {
	types.Notification
	SenderUsername string `json:"sender_username,omitempty"`
	SenderAvatar   string `json:"sender_avatar,omitempty"`
}

// List returns the recipient's notifications, newest first.
func (s *Store) List(ctx context.Context, recipient uuid.UUID, unreadOnly bool) ([]Item, error) {
	q := s.db.WithContext(ctx).Where("recipient_id = ?", recipient)

	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	var rows []types.Notification
	if err := q.Order("created_at DESC").Limit(100).Find(&rows).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load notifications")
	}

	senderIDs := make([]uuid.UUID, 0, len(rows))

	for _, row := range rows {
		if row.SenderID != nil {
			senderIDs = append(senderIDs, *row.SenderID)
		}
	}

	senders := make(map[uuid.UUID]types.User, len(senderIDs))

	if len(senderIDs) > 0 {
		var users []types.User
		if err := s.db.WithContext(ctx).Where("id IN ?", senderIDs).Find(&users).Error; err != nil {
			return nil, fault.Wrap(err, "failed to load notification senders")
		}

		for _, user := range users {
			senders[user.ID] = user
		}
	}

	items := make([]Item, 0, len(rows))

	for _, row := range rows {
		item := Item{Notification: row}

		if row.SenderID != nil {
			if sender, ok := senders[*row.SenderID]; ok {
				item.SenderUsername = sender.Username
				item.SenderAvatar = sender.Avatar
			}
		}

		items = append(items, item)
	}

	return items, nil
}

// UnreadCount is the badge number.
func (s *Store) UnreadCount(ctx context.Context, recipient uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&types.Notification{}).
		Where("recipient_id = ? AND read = ?", recipient, false).
		Count(&count).Error

	if err != nil {
		return 0, fault.Wrap(err, "failed to count notifications")
	}

	return count, nil
}

// MarkRead flags one notification as read. Only the recipient may do so.
func (s *Store) MarkRead(ctx context.Context, actor, id uuid.UUID) error {
	var notif types.Notification
	err := s.db.WithContext(ctx).First(&notif, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.New(fault.NotFound, "Notification not found")
	}

	if err != nil {
		return fault.Wrap(err, "failed to load notification")
	}

	if notif.RecipientID != actor {
		return fault.New(fault.Unauthorized, "This notification is not addressed to you")
	}

	err = s.db.WithContext(ctx).Model(&notif).Update("read", true).Error

	if err != nil {
		return fault.Wrap(err, "failed to mark notification read")
	}

	return nil
}

// MarkAllRead flags every unread notification for the recipient.
func (s *Store) MarkAllRead(ctx context.Context, recipient uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&types.Notification{}).
		Where("recipient_id = ? AND read = ?", recipient, false).
		Update("read", true).Error

	if err != nil {
		return fault.Wrap(err, "failed to mark notifications read")
	}

	return nil
}
