// Package users is the identity store: signup, profiles and the member
// directory. Passwords are bcrypt-hashed before they touch the database
// and never leave it.
package users

import (
	"context"
	"errors"

	"camposocial/fault"
	"camposocial/graph"
	"camposocial/types"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Store struct {
	db    *gorm.DB
	graph *graph.Store
}

func NewStore(db *gorm.DB, g *graph.Store) *Store {
	return &Store{db: db, graph: g}
}

type SignupInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Category  string
	PhoneNo   string
	PublicKey string
}

// Signup registers a new account. Username and email collisions are
// Conflicts; the unique indexes arbitrate concurrent signups.
func (s *Store) Signup(ctx context.Context, in SignupInput) (*types.User, error) {
	if in.Username == "" || in.Email == "" || in.FirstName == "" || in.LastName == "" {
		return nil, fault.New(fault.Validation, "Username, email and name are required")
	}

	if len(in.Password) < 8 {
		return nil, fault.New(fault.Validation, "Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)

	if err != nil {
		return nil, fault.Wrap(err, "failed to hash password")
	}

	user := types.User{
		BaseModel:   types.BaseModel{ID: uuid.New()},
		Username:    in.Username,
		Email:       in.Email,
		Password:    string(hash),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DisplayName: in.FirstName + " " + in.LastName,
		Category:    in.Category,
		PhoneNo:     in.PhoneNo,
		PublicKey:   in.PublicKey,
	}

	if user.Category == "" {
		user.Category = "general"
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fault.New(fault.Conflict, "Username or email is already taken")
		}

		return nil, fault.Wrap(err, "failed to create user")
	}

	return &user, nil
}

// CheckPassword verifies a login attempt against the stored hash.
func (s *Store) CheckPassword(ctx context.Context, username, password string) (*types.User, error) {
	var user types.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.Unauthorized, "Invalid username or password")
	}

	if err != nil {
		return nil, fault.Wrap(err, "failed to load user")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, fault.New(fault.Unauthorized, "Invalid username or password")
	}

	return &user, nil
}

// Get loads one user or NotFound.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*types.User, error) {
	var user types.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "User not found")
	}

	if err != nil {
		return nil, fault.Wrap(err, "failed to load user")
	}

	return &user, nil
}

// ByUsername resolves a username.
func (s *Store) ByUsername(ctx context.Context, username string) (*types.User, error) {
	var user types.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "User not found")
	}

	if err != nil {
		return nil, fault.Wrap(err, "failed to load user")
	}

	return &user, nil
}

// Profile is a user with their social context for a profile page.
type Profile struct {
	types.User
	FriendCount int    `json:"friend_count"`
	MutualCount int    `json:"mutual_count"`
	Relation    string `json:"relation"`
}

// GetProfile loads a user's profile as seen by the viewer: friend counts,
// mutuals with the viewer and the relation between the two.
func (s *Store) GetProfile(ctx context.Context, viewer, id uuid.UUID) (*Profile, error) {
	user, err := s.Get(ctx, id)

	if err != nil {
		return nil, err
	}

	friends, err := s.graph.FriendIDs(ctx, id)

	if err != nil {
		return nil, err
	}

	profile := Profile{
		User:        *user,
		FriendCount: len(friends),
		Relation:    graph.RelationNone,
	}

	if viewer != id {
		mutuals, err := s.graph.MutualCount(ctx, viewer, id)

		if err != nil {
			return nil, err
		}

		profile.MutualCount = mutuals

		relation, err := s.graph.RelationBetween(ctx, viewer, id)

		if err != nil {
			return nil, err
		}

		profile.Relation = relation
	}

	return &profile, nil
}

type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	Avatar      *string
	PhoneNo     *string
	Category    *string
	PublicKey   *string
}

// UpdateProfile applies the non-nil fields to the caller's own profile.
func (s *Store) UpdateProfile(ctx context.Context, actor uuid.UUID, in ProfileUpdate) error {
	updates := map[string]any{}

	if in.DisplayName != nil {
		updates["display_name"] = *in.DisplayName
	}

	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}

	if in.Avatar != nil {
		updates["avatar"] = *in.Avatar
	}

	if in.PhoneNo != nil {
		updates["phone_no"] = *in.PhoneNo
	}

	if in.Category != nil {
		updates["category"] = *in.Category
	}

	if in.PublicKey != nil {
		updates["public_key"] = *in.PublicKey
	}

	if len(updates) == 0 {
		return fault.New(fault.Validation, "No fields to update")
	}

	res := s.db.WithContext(ctx).Model(&types.User{}).Where("id = ?", actor).Updates(updates)

	if res.Error != nil {
		return fault.Wrap(res.Error, "failed to update profile")
	}

	if res.RowsAffected == 0 {
		return fault.New(fault.NotFound, "User not found")
	}

	return nil
}

// Delete removes the caller's account along with their friendship edges
// and notifications. Content they authored stays attributed to the dead
// id.
func (s *Store) Delete(ctx context.Context, actor uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, step := range []error{
			tx.Where("user_id = ? OR friend_id = ?", actor, actor).Delete(&types.Friendship{}).Error,
			tx.Where("recipient_id = ? OR sender_id = ?", actor, actor).Delete(&types.Notification{}).Error,
		} {
			if step != nil {
				return fault.Wrap(step, "failed to delete user data")
			}
		}

		res := tx.Delete(&types.User{}, "id = ?", actor)

		if res.Error != nil {
			return fault.Wrap(res.Error, "failed to delete user")
		}

		if res.RowsAffected == 0 {
			return fault.New(fault.NotFound, "User not found")
		}

		return nil
	})
}

// DirectoryEntry is a member listing annotated for the viewer.
type DirectoryEntry struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Avatar      string    `json:"avatar"`
	Category    string    `json:"category"`
	MutualCount int       `json:"mutual_count"`
	Relation    string    `json:"relation"`
}

// Directory lists members other than the viewer, each with the mutual
// friend count and the viewer's relation to them.
func (s *Store) Directory(ctx context.Context, viewer uuid.UUID, limit int) ([]DirectoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var members []types.User
	err := s.db.WithContext(ctx).
		Where("id <> ?", viewer).
		Order("created_at DESC").
		Limit(limit).
		Find(&members).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load directory")
	}

	entries := make([]DirectoryEntry, 0, len(members))

	for _, member := range members {
		mutuals, err := s.graph.MutualCount(ctx, viewer, member.ID)

		if err != nil {
			return nil, err
		}

		relation, err := s.graph.RelationBetween(ctx, viewer, member.ID)

		if err != nil {
			return nil, err
		}

		entries = append(entries, DirectoryEntry{
			ID:          member.ID,
			Username:    member.Username,
			DisplayName: member.DisplayName,
			Avatar:      member.Avatar,
			Category:    member.Category,
			MutualCount: mutuals,
			Relation:    relation,
		})
	}

	return entries, nil
}
