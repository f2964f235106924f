// Package feed renders pages of yaps in reverse chronological order using
// keyset pagination. Offsets would drift as new yaps land; anchoring on
// (created_at, id) guarantees no duplicates and no gaps between pages no
// matter how much is written between requests.
package feed

import (
	"context"
	"errors"

	"camposocial/fault"
	"camposocial/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50
)

type Store struct {
	db    *gorm.DB
	cache *Cache
}

func NewStore(db *gorm.DB, cache *Cache) *Store {
	return &Store{db: db, cache: cache}
}

// Item is a yap annotated with everything the client renders in a feed
// card.
type Item struct {
	types.Yap
	Username      string           `json:"username"`
	DisplayName   string           `json:"display_name"`
	Avatar        string           `json:"avatar"`
	LikesCount    int64            `json:"likes_count"`
	RepliesCount  int64            `json:"replies_count"`
	LikedByViewer bool             `json:"liked_by_viewer"`
	Media         []types.YapMedia `json:"media"`
	Hashtags      []string         `json:"hashtags"`
}

type Page struct {
	Items      []Item `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasNext    bool   `json:"has_next"`
	HasPrev    bool   `json:"has_prev"`
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}

	if limit > MaxLimit {
		return MaxLimit
	}

	return limit
}

// Fetch returns one page of the global feed.
func (s *Store) Fetch(ctx context.Context, viewer uuid.UUID, cursorToken string, limit int) (*Page, error) {
	return s.fetch(ctx, globalScope, viewer, cursorToken, limit, nil)
}

// FetchUser returns one page of a single author's yaps.
func (s *Store) FetchUser(ctx context.Context, viewer, author uuid.UUID, cursorToken string, limit int) (*Page, error) {
	return s.fetch(ctx, "user:"+author.String(), viewer, cursorToken, limit, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", author)
	})
}

// FetchHashtag returns one page of yaps linked to the named tag. Tag pages
// bypass the cache; they churn with the global generation anyway.
func (s *Store) FetchHashtag(ctx context.Context, viewer uuid.UUID, tag string, cursorToken string, limit int) (*Page, error) {
	var hashtag types.Hashtag
	err := s.db.WithContext(ctx).Where("name = ?", tag).First(&hashtag).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "Hashtag not found")
	}

	if err != nil {
		return nil, fault.Wrap(err, "failed to load hashtag")
	}

	var yapIDs []uuid.UUID
	err = s.db.WithContext(ctx).Model(&types.YapHashtag{}).Where("hashtag_id = ?", hashtag.ID).Pluck("yap_id", &yapIDs).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load tagged yaps")
	}

	if len(yapIDs) == 0 {
		return &Page{Items: []Item{}, HasPrev: cursorToken != ""}, nil
	}

	return s.query(ctx, viewer, cursorToken, limit, func(q *gorm.DB) *gorm.DB {
		return q.Where("id IN ?", yapIDs)
	})
}

func (s *Store) fetch(ctx context.Context, scope string, viewer uuid.UUID, cursorToken string, limit int, filter func(*gorm.DB) *gorm.DB) (*Page, error) {
	limit = clampLimit(limit)

	if page := s.cache.GetPage(ctx, scope, viewer, cursorToken, limit); page != nil {
		return page, nil
	}

	page, err := s.query(ctx, viewer, cursorToken, limit, filter)

	if err != nil {
		return nil, err
	}

	s.cache.SetPage(ctx, scope, viewer, cursorToken, limit, page)

	return page, nil
}

func (s *Store) query(ctx context.Context, viewer uuid.UUID, cursorToken string, limit int, filter func(*gorm.DB) *gorm.DB) (*Page, error) {
	limit = clampLimit(limit)

	cursor, err := DecodeCursor(cursorToken)

	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&types.Yap{})

	if filter != nil {
		q = filter(q)
	}

	if cursor != nil {
		q = q.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	// One extra row answers has_next without a count query.
	var yaps []types.Yap
	err = q.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&yaps).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load feed page")
	}

	hasNext := len(yaps) > limit

	if hasNext {
		yaps = yaps[:limit]
	}

	items, err := s.annotate(ctx, viewer, yaps)

	if err != nil {
		return nil, err
	}

	page := &Page{
		Items:   items,
		HasNext: hasNext,
		HasPrev: cursorToken != "",
	}

	if hasNext {
		last := yaps[len(yaps)-1]
		page.NextCursor = Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}

	return page, nil
}

// annotate decorates a page of yaps with authors, counts, media and tags
// through a fixed number of batched queries, independent of page size.
func (s *Store) annotate(ctx context.Context, viewer uuid.UUID, yaps []types.Yap) ([]Item, error) {
	if len(yaps) == 0 {
		return []Item{}, nil
	}

	db := s.db.WithContext(ctx)

	yapIDs := make([]uuid.UUID, 0, len(yaps))
	authorIDs := make([]uuid.UUID, 0, len(yaps))

	for _, yap := range yaps {
		yapIDs = append(yapIDs, yap.ID)
		authorIDs = append(authorIDs, yap.UserID)
	}

	var authors []types.User
	if err := db.Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load feed authors")
	}

	authorByID := make(map[uuid.UUID]types.User, len(authors))
	for _, user := range authors {
		authorByID[user.ID] = user
	}

	type countRow struct {
		YapID uuid.UUID
		Count int64
	}

	var likeRows []countRow
	err := db.Model(&types.Like{}).
		Select("yap_id, COUNT(*) AS count").
		Where("yap_id IN ?", yapIDs).
		Group("yap_id").
		Scan(&likeRows).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to count likes")
	}

	likesByYap := make(map[uuid.UUID]int64, len(likeRows))
	for _, row := range likeRows {
		likesByYap[row.YapID] = row.Count
	}

	var replyRows []countRow
	err = db.Model(&types.Reply{}).
		Select("yap_id, COUNT(*) AS count").
		Where("yap_id IN ?", yapIDs).
		Group("yap_id").
		Scan(&replyRows).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to count replies")
	}

	repliesByYap := make(map[uuid.UUID]int64, len(replyRows))
	for _, row := range replyRows {
		repliesByYap[row.YapID] = row.Count
	}

	var likedIDs []uuid.UUID
	if viewer != uuid.Nil {
		err = db.Model(&types.Like{}).
			Where("user_id = ? AND yap_id IN ?", viewer, yapIDs).
			Pluck("yap_id", &likedIDs).Error

		if err != nil {
			return nil, fault.Wrap(err, "failed to load viewer likes")
		}
	}

	likedByViewer := make(map[uuid.UUID]struct{}, len(likedIDs))
	for _, id := range likedIDs {
		likedByViewer[id] = struct{}{}
	}

	var media []types.YapMedia
	if err := db.Where("yap_id IN ?", yapIDs).Find(&media).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load feed media")
	}

	mediaByYap := make(map[uuid.UUID][]types.YapMedia)
	for _, m := range media {
		mediaByYap[m.YapID] = append(mediaByYap[m.YapID], m)
	}

	type tagRow struct {
		YapID uuid.UUID
		Name  string
	}

	var tagRows []tagRow
	err = db.Model(&types.YapHashtag{}).
		Select("yap_hashtags.yap_id AS yap_id, hashtags.name AS name").
		Joins("JOIN hashtags ON hashtags.id = yap_hashtags.hashtag_id").
		Where("yap_hashtags.yap_id IN ?", yapIDs).
		Scan(&tagRows).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load feed hashtags")
	}

	tagsByYap := make(map[uuid.UUID][]string)
	for _, row := range tagRows {
		tagsByYap[row.YapID] = append(tagsByYap[row.YapID], row.Name)
	}

	items := make([]Item, 0, len(yaps))

	for _, yap := range yaps {
		author := authorByID[yap.UserID]
		_, liked := likedByViewer[yap.ID]

		item := Item{
			Yap:           yap,
			Username:      author.Username,
			DisplayName:   author.DisplayName,
			Avatar:        author.Avatar,
			LikesCount:    likesByYap[yap.ID],
			RepliesCount:  repliesByYap[yap.ID],
			LikedByViewer: liked,
			Media:         mediaByYap[yap.ID],
			Hashtags:      tagsByYap[yap.ID],
		}

		if item.Media == nil {
			item.Media = []types.YapMedia{}
		}

		if item.Hashtags == nil {
			item.Hashtags = []string{}
		}

		items = append(items, item)
	}

	return items, nil
}
