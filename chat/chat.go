// Package chat is 1:1 messaging between accepted friends. Content arrives
// already encrypted; the server stores ciphertext and never inspects it.
// Deleting a message is a soft delete so the other side's thread keeps its
// shape.
package chat

import (
	"context"
	"errors"
	"sort"

	"camposocial/fault"
	"camposocial/graph"
	"camposocial/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store struct {
	db    *gorm.DB
	graph *graph.Store
	cache *Cache
}

func NewStore(db *gorm.DB, g *graph.Store, cache *Cache) *Store {
	return &Store{db: db, graph: g, cache: cache}
}

type MediaInput struct {
	URL  string
	Type string
}

// Send writes a message from sender to recipient. Both sides must share an
// accepted friendship edge; anything else is Unauthorized.
func (s *Store) Send(ctx context.Context, sender, recipient uuid.UUID, encryptedContent string, replyToID *uuid.UUID, media []MediaInput) (*types.Message, error) {
	if sender == recipient {
		return nil, fault.New(fault.Validation, "You cannot message yourself")
	}

	if encryptedContent == "" && len(media) == 0 {
		return nil, fault.New(fault.Validation, "Message content is required")
	}

	friends, err := s.graph.AreFriends(ctx, sender, recipient)

	if err != nil {
		return nil, err
	}

	if !friends {
		return nil, fault.New(fault.Unauthorized, "You can only message your friends")
	}

	msg := types.Message{
		BaseModel:        types.BaseModel{ID: uuid.New()},
		SenderID:         sender,
		RecipientID:      recipient,
		EncryptedContent: encryptedContent,
		ReplyToID:        replyToID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replyToID != nil {
			var parent types.Message
			err := tx.First(&parent, "id = ?", *replyToID).Error

			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.New(fault.NotFound, "Replied-to message not found")
			}

			if err != nil {
				return fault.Wrap(err, "failed to load replied-to message")
			}

			if !samePair(&parent, sender, recipient) {
				return fault.New(fault.Validation, "Replied-to message belongs to a different conversation")
			}
		}

		if err := tx.Create(&msg).Error; err != nil {
			return fault.Wrap(err, "failed to send message")
		}

		for _, m := range media {
			row := types.ChatMedia{
				BaseModel: types.BaseModel{ID: uuid.New()},
				MessageID: msg.ID,
				MediaURL:  m.URL,
				MediaType: m.Type,
			}

			if err := tx.Create(&row).Error; err != nil {
				return fault.Wrap(err, "failed to attach media")
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.cache.InvalidateThread(ctx, sender, recipient)

	return &msg, nil
}

func samePair(msg *types.Message, a, b uuid.UUID) bool {
	return (msg.SenderID == a && msg.RecipientID == b) || (msg.SenderID == b && msg.RecipientID == a)
}

// Item is a message with its media and reactions resolved.
type Item struct {
	types.Message
	Media     []types.ChatMedia `json:"media"`
	Reactions []types.Reaction  `json:"reactions"`
}

type Page struct {
	Items      []Item `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasNext    bool   `json:"has_next"`
}

const threadPageSize = 50

// Thread returns one page of the conversation between the caller and the
// other user, newest first. Soft-deleted messages keep their slot with the
// content blanked. Reading needs the same accepted edge as sending does;
// an unfriended or blocked ex-friend loses access to the history.
func (s *Store) Thread(ctx context.Context, caller, other uuid.UUID, cursorToken string) (*Page, error) {
	friends, err := s.graph.AreFriends(ctx, caller, other)

	if err != nil {
		return nil, err
	}

	if !friends {
		return nil, fault.New(fault.Unauthorized, "You can only view conversations with your friends")
	}

	if page := s.cache.GetThread(ctx, caller, other, cursorToken); page != nil {
		return page, nil
	}

	cursor, err := decodeCursor(cursorToken)

	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&types.Message{}).Where(
		"(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
		caller, other, other, caller,
	)

	if cursor != nil {
		q = q.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var msgs []types.Message
	err = q.Order("created_at DESC, id DESC").Limit(threadPageSize + 1).Find(&msgs).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load conversation")
	}

	hasNext := len(msgs) > threadPageSize

	if hasNext {
		msgs = msgs[:threadPageSize]
	}

	items, err := s.annotate(ctx, msgs)

	if err != nil {
		return nil, err
	}

	page := &Page{
		Items:   items,
		HasNext: hasNext,
	}

	if hasNext {
		last := msgs[len(msgs)-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.ID)
	}

	s.cache.SetThread(ctx, caller, other, cursorToken, page)

	return page, nil
}

func (s *Store) annotate(ctx context.Context, msgs []types.Message) ([]Item, error) {
	if len(msgs) == 0 {
		return []Item{}, nil
	}

	ids := make([]uuid.UUID, 0, len(msgs))
	for _, msg := range msgs {
		ids = append(ids, msg.ID)
	}

	var media []types.ChatMedia
	if err := s.db.WithContext(ctx).Where("message_id IN ?", ids).Find(&media).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load chat media")
	}

	mediaByMsg := make(map[uuid.UUID][]types.ChatMedia)
	for _, m := range media {
		mediaByMsg[m.MessageID] = append(mediaByMsg[m.MessageID], m)
	}

	var reactions []types.Reaction
	if err := s.db.WithContext(ctx).Where("message_id IN ?", ids).Find(&reactions).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load reactions")
	}

	reactionsByMsg := make(map[uuid.UUID][]types.Reaction)
	for _, r := range reactions {
		reactionsByMsg[r.MessageID] = append(reactionsByMsg[r.MessageID], r)
	}

	items := make([]Item, 0, len(msgs))

	for _, msg := range msgs {
		if msg.Deleted {
			msg.EncryptedContent = ""
		}

		item := Item{
			Message:   msg,
			Media:     mediaByMsg[msg.ID],
			Reactions: reactionsByMsg[msg.ID],
		}

		if item.Media == nil {
			item.Media = []types.ChatMedia{}
		}

		if item.Reactions == nil {
			item.Reactions = []types.Reaction{}
		}

		items = append(items, item)
	}

	return items, nil
}

// Edit replaces a message's ciphertext. Sender only, and never on a
// deleted message.
func (s *Store) Edit(ctx context.Context, actor, id uuid.UUID, encryptedContent string) error {
	if encryptedContent == "" {
		return fault.New(fault.Validation, "Message content is required")
	}

	var msg types.Message
	err := s.db.WithContext(ctx).First(&msg, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.New(fault.NotFound, "Message not found")
	}

	if err != nil {
		return fault.Wrap(err, "failed to load message")
	}

	if msg.SenderID != actor {
		return fault.New(fault.Unauthorized, "You can only edit your own messages")
	}

	if msg.Deleted {
		return fault.New(fault.Conflict, "Message has been deleted")
	}

	err = s.db.WithContext(ctx).Model(&msg).Update("encrypted_content", encryptedContent).Error

	if err != nil {
		return fault.Wrap(err, "failed to edit message")
	}

	s.cache.InvalidateThread(ctx, msg.SenderID, msg.RecipientID)

	return nil
}

// Delete soft-deletes a message. Sender only.
func (s *Store) Delete(ctx context.Context, actor, id uuid.UUID) error {
	var msg types.Message
	err := s.db.WithContext(ctx).First(&msg, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.New(fault.NotFound, "Message not found")
	}

	if err != nil {
		return fault.Wrap(err, "failed to load message")
	}

	if msg.SenderID != actor {
		return fault.New(fault.Unauthorized, "You can only delete your own messages")
	}

	err = s.db.WithContext(ctx).Model(&msg).Update("deleted", true).Error

	if err != nil {
		return fault.Wrap(err, "failed to delete message")
	}

	s.cache.InvalidateThread(ctx, msg.SenderID, msg.RecipientID)

	return nil
}

// React adds the caller's reaction to a message in their conversation. One
// reaction per user per message; a second one is a Conflict.
func (s *Store) React(ctx context.Context, actor, messageID uuid.UUID, reactionType string) error {
	if reactionType == "" {
		return fault.New(fault.Validation, "Reaction type is required")
	}

	var msg types.Message
	err := s.db.WithContext(ctx).First(&msg, "id = ?", messageID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.New(fault.NotFound, "Message not found")
	}

	if err != nil {
		return fault.Wrap(err, "failed to load message")
	}

	if msg.SenderID != actor && msg.RecipientID != actor {
		return fault.New(fault.Unauthorized, "You are not part of this conversation")
	}

	reaction := types.Reaction{
		BaseModel:    types.BaseModel{ID: uuid.New()},
		MessageID:    messageID,
		UserID:       actor,
		ReactionType: reactionType,
	}

	if err := s.db.WithContext(ctx).Create(&reaction).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fault.New(fault.Conflict, "You have already reacted to this message")
		}

		return fault.Wrap(err, "failed to add reaction")
	}

	s.cache.InvalidateThread(ctx, msg.SenderID, msg.RecipientID)

	return nil
}

// RemoveReaction drops the caller's reaction from a message.
func (s *Store) RemoveReaction(ctx context.Context, actor, messageID uuid.UUID) error {
	var msg types.Message
	err := s.db.WithContext(ctx).First(&msg, "id = ?", messageID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.New(fault.NotFound, "Message not found")
	}

	if err != nil {
		return fault.Wrap(err, "failed to load message")
	}

	res := s.db.WithContext(ctx).Where("message_id = ? AND user_id = ?", messageID, actor).Delete(&types.Reaction{})

	if res.Error != nil {
		return fault.Wrap(res.Error, "failed to remove reaction")
	}

	if res.RowsAffected == 0 {
		return fault.New(fault.NotFound, "You have not reacted to this message")
	}

	s.cache.InvalidateThread(ctx, msg.SenderID, msg.RecipientID)

	return nil
}

// Conversation is one row of the chat list: a friend plus the latest
// message exchanged with them, if any.
type Conversation struct {
	Friend      types.User     `json:"friend"`
	LastMessage *types.Message `json:"last_message,omitempty"`
}

// List returns the caller's friends ordered by most recent exchange;
// friends without any messages sort last.
func (s *Store) List(ctx context.Context, caller uuid.UUID) ([]Conversation, error) {
	friends, err := s.graph.Friends(ctx, caller)

	if err != nil {
		return nil, err
	}

	out := make([]Conversation, 0, len(friends))
	var silent []Conversation

	for _, friend := range friends {
		var msg types.Message
		err := s.db.WithContext(ctx).Where(
			"(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			caller, friend.ID, friend.ID, caller,
		).Order("created_at DESC, id DESC").First(&msg).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			silent = append(silent, Conversation{Friend: friend})
			continue
		}

		if err != nil {
			return nil, fault.Wrap(err, "failed to load last message")
		}

		if msg.Deleted {
			msg.EncryptedContent = ""
		}

		out = append(out, Conversation{Friend: friend, LastMessage: &msg})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.CreatedAt.After(out[j].LastMessage.CreatedAt)
	})

	return append(out, silent...), nil
}
