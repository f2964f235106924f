// Package graph owns the friendship edge between two users. A single row
// exists per unordered pair; UserID is the side that initiated the current
// state. Transitions: none -> pending -> accepted | gone (reject), any ->
// blocked, blocked -> pending (unblock). Accepting writes the FOLLOW
// notification in the same transaction.
package graph

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

// edgeBetween loads the single row touching the pair in either direction.
func (s *Store) edgeBetween(tx *gorm.DB, a, b uuid.UUID) (*types.Friendship, error) {
	var edge types.Friendship
	err := tx.Where(
		"(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
		a, b, b, a,
	).First(&edge).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fault.Wrap(err, "failed to load friendship edge")
	}

	return &edge, nil
}

// SendRequest creates a pending edge from sender to recipient. Any existing
// edge between the pair, in either direction and any state, is a Conflict.
func (s *Store) SendRequest(ctx context.Context, sender, recipient uuid.UUID) (*types.Friendship, error) {
	if sender == recipient {
		return nil, fault.New(fault.Validation, "You cannot send a friend request to yourself")
	}

	var created types.Friendship

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, err := s.edgeBetween(tx, sender, recipient)

		if err != nil {
			return err
		}

		if edge != nil {
			return fault.New(fault.Conflict, "A friendship or request already exists between these users")
		}

		created = types.Friendship{
			BaseModel: types.BaseModel{ID: uuid.New()},
			UserID:    sender,
			FriendID:  recipient,
			Status:    types.FriendshipPending,
		}

		if err := tx.Create(&created).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fault.New(fault.Conflict, "A friendship or request already exists between these users")
			}

			return fault.Wrap(err, "failed to create friend request")
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &created, nil
}

// Accept transitions the pending edge (requester -> recipient) to accepted
// and fans out the FOLLOW notification to the requester, atomically.
func (s *Store) Accept(ctx context.Context, recipient, requester uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&types.Friendship{}).
			Where("user_id = ? AND friend_id = ? AND status = ?", requester, recipient, types.FriendshipPending).
			Update("status", types.FriendshipAccepted)

		if res.Error != nil {
			return fault.Wrap(res.Error, "failed to accept friend request")
		}

		if res.RowsAffected == 0 {
			return fault.New(fault.NotFound, "No pending friend request from this user")
		}

		notif := types.Notification{
			BaseModel:   types.BaseModel{ID: uuid.New()},
			Type:        types.NotificationAccept,
			RecipientID: requester,
			SenderID:    &recipient,
		}

		if err := tx.Create(&notif).Error; err != nil {
			return fault.Wrap(err, "failed to record follow notification")
		}

		return nil
	})
}

// Reject deletes the pending edge (requester -> recipient). NotFound if no
// such pending request exists; never creates anything.
func (s *Store) Reject(ctx context.Context, recipient, requester uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND friend_id = ? AND status = ?", requester, recipient, types.FriendshipPending).
		Delete(&types.Friendship{})

	if res.Error != nil {
		return fault.Wrap(res.Error, "failed to reject friend request")
	}

	if res.RowsAffected == 0 {
		return fault.New(fault.NotFound, "No pending friend request from this user")
	}

	return nil
}

// Block upserts the edge to blocked regardless of prior state. The blocker
// becomes the edge's initiating side so Unblock can be gated on it.
func (s *Store) Block(ctx context.Context, blocker, target uuid.UUID) error {
	if blocker == target {
		return fault.New(fault.Validation, "You cannot block yourself")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, err := s.edgeBetween(tx, blocker, target)

		if err != nil {
			return err
		}

		if edge == nil {
			edge = &types.Friendship{
				BaseModel: types.BaseModel{ID: uuid.New()},
				UserID:    blocker,
				FriendID:  target,
				Status:    types.FriendshipBlocked,
			}

			if err := tx.Create(edge).Error; err != nil {
				return fault.Wrap(err, "failed to create block")
			}

			return nil
		}

		err = tx.Model(edge).Updates(map[string]any{
			"user_id":   blocker,
			"friend_id": target,
			"status":    types.FriendshipBlocked,
		}).Error

		if err != nil {
			return fault.Wrap(err, "failed to block user")
		}

		return nil
	})
}

// Unblock resets a blocked edge back to pending, so the pair has to go
// through accept again before they count as friends. Only the side that
// blocked can unblock.
func (s *Store) Unblock(ctx context.Context, blocker, target uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&types.Friendship{}).
		Where("user_id = ? AND friend_id = ? AND status = ?", blocker, target, types.FriendshipBlocked).
		Update("status", types.FriendshipPending)

	if res.Error != nil {
		return fault.Wrap(res.Error, "failed to unblock user")
	}

	if res.RowsAffected == 0 {
		return fault.New(fault.NotFound, "User is not blocked")
	}

	return nil
}

// Remove deletes an accepted edge in either direction.
func (s *Store) Remove(ctx context.Context, user, friend uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where(
			"((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)) AND status = ?",
			user, friend, friend, user, types.FriendshipAccepted,
		).
		Delete(&types.Friendship{})

	if res.Error != nil {
		return fault.Wrap(res.Error, "failed to remove friend")
	}

	if res.RowsAffected == 0 {
		return fault.New(fault.NotFound, "Friendship not found")
	}

	return nil
}

// FriendIDs returns the ids on the far side of every accepted edge
// touching the user.
func (s *Store) FriendIDs(ctx context.Context, user uuid.UUID) ([]uuid.UUID, error) {
	var edges []types.Friendship
	err := s.db.WithContext(ctx).
		Where("(user_id = ? OR friend_id = ?) AND status = ?", user, user, types.FriendshipAccepted).
		Find(&edges).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load friends")
	}

	ids := make([]uuid.UUID, 0, len(edges))
	for _, edge := range edges {
		if edge.UserID == user {
			ids = append(ids, edge.FriendID)
		} else {
			ids = append(ids, edge.UserID)
		}
	}

	return ids, nil
}

// Friends resolves the accepted edges to full user rows.
func (s *Store) Friends(ctx context.Context, user uuid.UUID) ([]types.User, error) {
	ids, err := s.FriendIDs(ctx, user)

	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []types.User{}, nil
	}

	var users []types.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load friend profiles")
	}

	return users, nil
}

// MutualCount is |friends(u) ∩ friends(v)|.
func (s *Store) MutualCount(ctx context.Context, u, v uuid.UUID) (int, error) {
	uFriends, err := s.FriendIDs(ctx, u)

	if err != nil {
		return 0, err
	}

	vFriends, err := s.FriendIDs(ctx, v)

	if err != nil {
		return 0, err
	}

	set := make(map[uuid.UUID]struct{}, len(uFriends))
	for _, id := range uFriends {
		set[id] = struct{}{}
	}

	count := 0
	for _, id := range vFriends {
		if _, ok := set[id]; ok {
			count++
		}
	}

	return count, nil
}

// PendingRequest is an incoming request with the sender resolved.
type PendingRequest struct {
	SenderID  uuid.UUID `json:"sender_id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Avatar    string    `json:"avatar"`
}

// PendingFor lists requests where the user is the addressed side.
func (s *Store) PendingFor(ctx context.Context, user uuid.UUID) ([]PendingRequest, error) {
	var edges []types.Friendship
	err := s.db.WithContext(ctx).
		Where("friend_id = ? AND status = ?", user, types.FriendshipPending).
		Find(&edges).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load pending requests")
	}

	out := make([]PendingRequest, 0, len(edges))

	for _, edge := range edges {
		var sender types.User
		if err := s.db.WithContext(ctx).First(&sender, "id = ?", edge.UserID).Error; err != nil {
			return nil, fault.Wrap(err, "failed to load request sender")
		}

		out = append(out, PendingRequest{
			SenderID:  sender.ID,
			Username:  sender.Username,
			FirstName: sender.FirstName,
			LastName:  sender.LastName,
			Avatar:    sender.Avatar,
		})
	}

	return out, nil
}

// Relationship statuses as seen from a viewer, for directory listings.
const (
	RelationNone            = "none"
	RelationFriend          = "friend"
	RelationRequestSent     = "request_sent"
	RelationRequestReceived = "request_received"
	RelationBlocked         = "blocked"
)

// RelationBetween describes the edge from the viewer's perspective.
func (s *Store) RelationBetween(ctx context.Context, viewer, other uuid.UUID) (string, error) {
	edge, err := s.edgeBetween(s.db.WithContext(ctx), viewer, other)

	if err != nil {
		return "", err
	}

	if edge == nil {
		return RelationNone, nil
	}

	switch edge.Status {
	case types.FriendshipAccepted:
		return RelationFriend, nil
	case types.FriendshipBlocked:
		return RelationBlocked, nil
	}

	if edge.UserID == viewer {
		return RelationRequestSent, nil
	}

	return RelationRequestReceived, nil
}

// AreFriends reports whether an accepted edge exists between the pair.
func (s *Store) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	edge, err := s.edgeBetween(s.db.WithContext(ctx), a, b)

	if err != nil {
		return false, err
	}

	return edge != nil && edge.Status == types.FriendshipAccepted, nil
}
