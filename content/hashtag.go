package content

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"camposocial/fault"
	"camposocial/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	mentionPattern = regexp.MustCompile(`@(\w+)`)
)

// ExtractHashtags pulls the distinct lowercased tags out of a body of text,
// in first-seen order.
func ExtractHashtags(content string) []string {
	seen := make(map[string]struct{})
	var tags []string

	for _, match := range hashtagPattern.FindAllStringSubmatch(content, -1) {
		tag := strings.ToLower(match[1])

		if _, ok := seen[tag]; ok {
			continue
		}

		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	return tags
}

// linkHashtags upserts every tag in the content and joins it to the yap.
// Tags are global: two yaps using #bleach share one Hashtag row.
func linkHashtags(tx *gorm.DB, yapID uuid.UUID, content string) error {
	for _, name := range ExtractHashtags(content) {
		var tag types.Hashtag
		err := tx.Where("name = ?", name).First(&tag).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = types.Hashtag{
				BaseModel: types.BaseModel{ID: uuid.New()},
				Name:      name,
			}

			if err := tx.Create(&tag).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return fault.Wrap(err, "failed to create hashtag")
			}
		} else if err != nil {
			return fault.Wrap(err, "failed to load hashtag")
		}

		link := types.YapHashtag{
			BaseModel: types.BaseModel{ID: uuid.New()},
			YapID:     yapID,
			HashtagID: tag.ID,
		}

		if err := tx.Create(&link).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fault.Wrap(err, "failed to link hashtag")
		}
	}

	return nil
}

// notifyMentions fans a MENTION notification out to every @username in the
// content that resolves to a real user other than the author. Unresolvable
// mentions are plain text.
func notifyMentions(tx *gorm.DB, author uuid.UUID, content string, yapID, replyID *uuid.UUID) error {
	for _, match := range mentionPattern.FindAllStringSubmatch(content, -1) {
		var user types.User
		err := tx.Where("username = ?", match[1]).First(&user).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}

		if err != nil {
			return fault.Wrap(err, "failed to resolve mention")
		}

		if user.ID == author {
			continue
		}

		notif := types.Notification{
			BaseModel:   types.BaseModel{ID: uuid.New()},
			Type:        types.NotificationMention,
			RecipientID: user.ID,
			SenderID:    &author,
			YapID:       yapID,
			ReplyID:     replyID,
		}

		if err := tx.Create(&notif).Error; err != nil {
			return fault.Wrap(err, "failed to record mention notification")
		}
	}

	return nil
}

// hashtagsFor resolves a yap's linked tag names.
func hashtagsFor(db *gorm.DB, yapID uuid.UUID) ([]string, error) {
	var ids []uuid.UUID
	if err := db.Model(&types.YapHashtag{}).Where("yap_id = ?", yapID).Pluck("hashtag_id", &ids).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load hashtag links")
	}

	if len(ids) == 0 {
		return []string{}, nil
	}

	var names []string
	if err := db.Model(&types.Hashtag{}).Where("id IN ?", ids).Pluck("name", &names).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load hashtags")
	}

	return names, nil
}

// FollowHashtag registers the user's interest in a tag, creating the tag
// row on first use.
func (s *Store) FollowHashtag(ctx context.Context, user uuid.UUID, name string) error {
	name = strings.ToLower(strings.TrimPrefix(name, "#"))

	if name == "" {
		return fault.New(fault.Validation, "Hashtag name is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag types.Hashtag
		err := tx.Where("name = ?", name).First(&tag).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = types.Hashtag{
				BaseModel: types.BaseModel{ID: uuid.New()},
				Name:      name,
			}

			if err := tx.Create(&tag).Error; err != nil {
				return fault.Wrap(err, "failed to create hashtag")
			}
		} else if err != nil {
			return fault.Wrap(err, "failed to load hashtag")
		}

		link := types.UserHashtag{
			BaseModel: types.BaseModel{ID: uuid.New()},
			UserID:    user,
			HashtagID: tag.ID,
		}

		if err := tx.Create(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fault.New(fault.Conflict, "You already follow this hashtag")
			}

			return fault.Wrap(err, "failed to follow hashtag")
		}

		return nil
	})
}

// UnfollowHashtag drops the user's interest link.
func (s *Store) UnfollowHashtag(ctx context.Context, user uuid.UUID, name string) error {
	name = strings.ToLower(strings.TrimPrefix(name, "#"))

	var tag types.Hashtag
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.New(fault.NotFound, "Hashtag not found")
	}

	if err != nil {
		return fault.Wrap(err, "failed to load hashtag")
	}

	res := s.db.WithContext(ctx).Where("user_id = ? AND hashtag_id = ?", user, tag.ID).Delete(&types.UserHashtag{})

	if res.Error != nil {
		return fault.Wrap(res.Error, "failed to unfollow hashtag")
	}

	if res.RowsAffected == 0 {
		return fault.New(fault.NotFound, "You do not follow this hashtag")
	}

	return nil
}

// FollowedHashtags lists the names of the tags a user follows.
func (s *Store) FollowedHashtags(ctx context.Context, user uuid.UUID) ([]string, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&types.UserHashtag{}).Where("user_id = ?", user).Pluck("hashtag_id", &ids).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load followed hashtags")
	}

	if len(ids) == 0 {
		return []string{}, nil
	}

	var names []string
	err = s.db.WithContext(ctx).Model(&types.Hashtag{}).Where("id IN ?", ids).Order("name ASC").Pluck("name", &names).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load hashtags")
	}

	return names, nil
}

// TrendingHashtag is a tag with its usage count.
type TrendingHashtag struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Trending ranks tags by how many yaps use them.
func (s *Store) Trending(ctx context.Context, limit int) ([]TrendingHashtag, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var out []TrendingHashtag
	err := s.db.WithContext(ctx).
		Model(&types.YapHashtag{}).
		Select("hashtags.name AS name, COUNT(yap_hashtags.id) AS count").
		Joins("JOIN hashtags ON hashtags.id = yap_hashtags.hashtag_id").
		Group("hashtags.name").
		Order("count DESC").
		Limit(limit).
		Scan(&out).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to rank hashtags")
	}

	if out == nil {
		out = []TrendingHashtag{}
	}

	return out, nil
}
