// Package market is the marketplace: seller profiles, product listings
// with variations and images, reviews, wishlists, carts and paid orders.
package market

import (
	"context"
	"errors"
	"strings"

	"camposocial/fault"
	"camposocial/pay"
	"camposocial/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store struct {
	db      *gorm.DB
	gateway pay.Gateway
}

func NewStore(db *gorm.DB, gateway pay.Gateway) *Store {
	return &Store{db: db, gateway: gateway}
}

// CreateSeller opens a seller profile for the user. One per user; a second
// attempt is a Conflict.
func (s *Store) CreateSeller(ctx context.Context, user uuid.UUID, displayName, about, avatar, phoneNo string) (*types.Seller, error) {
	if displayName == "" {
		return nil, fault.New(fault.Validation, "Display name is required")
	}

	seller := types.Seller{
		BaseModel:   types.BaseModel{ID: uuid.New()},
		UserID:      user,
		DisplayName: displayName,
		About:       about,
		Avatar:      avatar,
		PhoneNo:     phoneNo,
	}

	if err := s.db.WithContext(ctx).Create(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fault.New(fault.Conflict, "You already have a seller profile")
		}

		return nil, fault.Wrap(err, "failed to create seller profile")
	}

	return &seller, nil
}

// SellerProfile is a seller with aggregate storefront stats.
type SellerProfile struct {
	types.Seller
	ProductCount  int64   `json:"product_count"`
	TotalSales    int64   `json:"total_sales"`
	AverageRating float64 `json:"average_rating"`
}

// GetSeller loads a seller with product count, lifetime sales and the
// average rating across all their products.
func (s *Store) GetSeller(ctx context.Context, id uuid.UUID) (*SellerProfile, error) {
	var seller types.Seller
	err := s.db.WithContext(ctx).First(&seller, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "Seller not found")
	}

	if err != nil {
		return nil, fault.Wrap(err, "failed to load seller")
	}

	profile := SellerProfile{Seller: seller}
	db := s.db.WithContext(ctx)

	err = db.Model(&types.Product{}).Where("seller_id = ?", id).Count(&profile.ProductCount).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to count products")
	}

	var sales struct{ Total int64 }
	err = db.Model(&types.Product{}).
		Select("COALESCE(SUM(total_sales), 0) AS total").
		Where("seller_id = ?", id).
		Scan(&sales).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to sum sales")
	}

	profile.TotalSales = sales.Total

	var rating struct{ Avg float64 }
	err = db.Model(&types.Review{}).
		Select("COALESCE(AVG(reviews.rating), 0) AS avg").
		Joins("JOIN products ON products.id = reviews.product_id").
		Where("products.seller_id = ?", id).
		Scan(&rating).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to average ratings")
	}

	profile.AverageRating = rating.Avg

	return &profile, nil
}

// SellerByUser resolves the seller profile owned by a user.
func (s *Store) SellerByUser(ctx context.Context, user uuid.UUID) (*types.Seller, error) {
	var seller types.Seller
	err := s.db.WithContext(ctx).Where("user_id = ?", user).First(&seller).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "You do not have a seller profile")
	}

	if err != nil {
		return nil, fault.Wrap(err, "failed to load seller")
	}

	return &seller, nil
}

type ProductInput struct {
	Title       string
	Description string
	ContactInfo string
	Brand       string
	Price       float64
	Category    string
	Images      []string
	Variations  []VariationInput
}

type VariationInput struct {
	Name  string
	Value string
	Price float64
	Stock int
}

// CreateProduct lists a product under the caller's seller profile, with
// its images and variations in one transaction.
func (s *Store) CreateProduct(ctx context.Context, user uuid.UUID, in ProductInput) (*types.Product, error) {
	if in.Title == "" {
		return nil, fault.New(fault.Validation, "Title is required")
	}

	if in.Price < 0 {
		return nil, fault.New(fault.Validation, "Price cannot be negative")
	}

	seller, err := s.SellerByUser(ctx, user)

	if err != nil {
		return nil, err
	}

	product := types.Product{
		BaseModel:   types.BaseModel{ID: uuid.New()},
		SellerID:    seller.ID,
		Title:       in.Title,
		Description: in.Description,
		ContactInfo: in.ContactInfo,
		Brand:       in.Brand,
		Price:       in.Price,
		Category:    in.Category,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return fault.Wrap(err, "failed to create product")
		}

		for _, url := range in.Images {
			img := types.ProductImage{
				BaseModel: types.BaseModel{ID: uuid.New()},
				ProductID: product.ID,
				ImageURL:  url,
			}

			if err := tx.Create(&img).Error; err != nil {
				return fault.Wrap(err, "failed to attach product image")
			}
		}

		for _, v := range in.Variations {
			row := types.ProductVariation{
				BaseModel: types.BaseModel{ID: uuid.New()},
				ProductID: product.ID,
				Name:      v.Name,
				Value:     v.Value,
				Price:     v.Price,
				Stock:     v.Stock,
			}

			if err := tx.Create(&row).Error; err != nil {
				return fault.Wrap(err, "failed to create variation")
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &product, nil
}

// productOwnedBy loads a product and checks the caller owns its seller
// profile.
func (s *Store) productOwnedBy(ctx context.Context, user, productID uuid.UUID) (*types.Product, error) {
	var product types.Product
	err := s.db.WithContext(ctx).First(&product, "id = ?", productID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "Product not found")
	}

	if err != nil {
		return nil, fault.Wrap(err, "failed to load product")
	}

	var seller types.Seller
	err = s.db.WithContext(ctx).First(&seller, "id = ?", product.SellerID).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load seller")
	}

	if seller.UserID != user {
		return nil, fault.New(fault.Unauthorized, "You do not own this product")
	}

	return &product, nil
}

// UpdateProduct updates mutable listing fields. Owner only.
func (s *Store) UpdateProduct(ctx context.Context, user, productID uuid.UUID, in ProductInput) error {
	if in.Price < 0 {
		return fault.New(fault.Validation, "Price cannot be negative")
	}

	product, err := s.productOwnedBy(ctx, user, productID)

	if err != nil {
		return err
	}

	updates := map[string]any{
		"description":  in.Description,
		"contact_info": in.ContactInfo,
		"brand":        in.Brand,
		"price":        in.Price,
		"category":     in.Category,
	}

	if in.Title != "" {
		updates["title"] = in.Title
	}

	if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
		return fault.Wrap(err, "failed to update product")
	}

	return nil
}

// DeleteProduct removes a listing plus its images, variations, reviews,
// wishlist entries and pending cart items. Owner only.
func (s *Store) DeleteProduct(ctx context.Context, user, productID uuid.UUID) error {
	if _, err := s.productOwnedBy(ctx, user, productID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, step := range []error{
			tx.Where("product_id = ?", productID).Delete(&types.ProductImage{}).Error,
			tx.Where("product_id = ?", productID).Delete(&types.ProductVariation{}).Error,
			tx.Where("product_id = ?", productID).Delete(&types.Review{}).Error,
			tx.Where("product_id = ?", productID).Delete(&types.Wishlist{}).Error,
			tx.Where("product_id = ?", productID).Delete(&types.CartItem{}).Error,
			tx.Delete(&types.Product{}, "id = ?", productID).Error,
		} {
			if step != nil {
				return fault.Wrap(step, "failed to delete product")
			}
		}

		return nil
	})
}

// ProductDetail is a listing with everything its page renders.
type ProductDetail struct {
	types.Product
	SellerName    string                   `json:"seller_name"`
	Images        []types.ProductImage     `json:"images"`
	Variations    []types.ProductVariation `json:"variations"`
	AverageRating float64                  `json:"average_rating"`
	ReviewCount   int64                    `json:"review_count"`
}

// GetProduct loads a product with images, variations and review stats.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	var product types.Product
	err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "Product not found")
	}

	if err != nil {
		return nil, fault.Wrap(err, "failed to load product")
	}

	detail := ProductDetail{Product: product}
	db := s.db.WithContext(ctx)

	var seller types.Seller
	if err := db.First(&seller, "id = ?", product.SellerID).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load seller")
	}

	detail.SellerName = seller.DisplayName

	if err := db.Where("product_id = ?", id).Find(&detail.Images).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load images")
	}

	if err := db.Where("product_id = ?", id).Find(&detail.Variations).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load variations")
	}

	var rating struct{ Avg float64 }
	err = db.Model(&types.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg").
		Where("product_id = ?", id).
		Scan(&rating).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to average rating")
	}

	detail.AverageRating = rating.Avg

	err = db.Model(&types.Review{}).Where("product_id = ?", id).Count(&detail.ReviewCount).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to count reviews")
	}

	return &detail, nil
}

// Search filters listings by a case-insensitive term over title and brand,
// optionally narrowed to a category.
func (s *Store) Search(ctx context.Context, term, category string, limit int) ([]types.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	q := s.db.WithContext(ctx).Model(&types.Product{})

	if term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(brand) LIKE ?", pattern, pattern)
	}

	if category != "" {
		q = q.Where("category = ?", category)
	}

	var products []types.Product
	err := q.Order("created_at DESC").Limit(limit).Find(&products).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to search products")
	}

	return products, nil
}

// SellerProducts lists a seller's catalogue, newest first.
func (s *Store) SellerProducts(ctx context.Context, sellerID uuid.UUID) ([]types.Product, error) {
	var products []types.Product
	err := s.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&products).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load seller products")
	}

	return products, nil
}

// CreateReview records a rating in [0, 5] with text for a product.
func (s *Store) CreateReview(ctx context.Context, user, productID uuid.UUID, text string, rating float64) (*types.Review, error) {
	if rating < 0 || rating > 5 {
		return nil, fault.New(fault.Validation, "Rating must be between 0 and 5")
	}

	if text == "" {
		return nil, fault.New(fault.Validation, "Review text is required")
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&types.Product{}).Where("id = ?", productID).Count(&count).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to check product")
	}

	if count == 0 {
		return nil, fault.New(fault.NotFound, "Product not found")
	}

	review := types.Review{
		BaseModel: types.BaseModel{ID: uuid.New()},
		UserID:    user,
		ProductID: productID,
		Text:      text,
		Rating:    rating,
	}

	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, fault.Wrap(err, "failed to create review")
	}

	return &review, nil
}

// UpdateReview edits the caller's own review.
func (s *Store) UpdateReview(ctx context.Context, user, reviewID uuid.UUID, text string, rating float64) error {
	if rating < 0 || rating > 5 {
		return fault.New(fault.Validation, "Rating must be between 0 and 5")
	}

	var review types.Review
	err := s.db.WithContext(ctx).First(&review, "id = ?", reviewID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.New(fault.NotFound, "Review not found")
	}

	if err != nil {
		return fault.Wrap(err, "failed to load review")
	}

	if review.UserID != user {
		return fault.New(fault.Unauthorized, "You can only edit your own reviews")
	}

	err = s.db.WithContext(ctx).Model(&review).Updates(map[string]any{
		"text":   text,
		"rating": rating,
	}).Error

	if err != nil {
		return fault.Wrap(err, "failed to update review")
	}

	return nil
}

// DeleteReview removes the caller's own review.
func (s *Store) DeleteReview(ctx context.Context, user, reviewID uuid.UUID) error {
	var review types.Review
	err := s.db.WithContext(ctx).First(&review, "id = ?", reviewID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fault.New(fault.NotFound, "Review not found")
	}

	if err != nil {
		return fault.Wrap(err, "failed to load review")
	}

	if review.UserID != user {
		return fault.New(fault.Unauthorized, "You can only delete your own reviews")
	}

	if err := s.db.WithContext(ctx).Delete(&review).Error; err != nil {
		return fault.Wrap(err, "failed to delete review")
	}

	return nil
}

// ProductReviews lists a product's reviews with reviewer names, newest
// first.
type ReviewItem struct {
	types.Review
	Username string `json:"username"`
}

func (s *Store) ProductReviews(ctx context.Context, productID uuid.UUID) ([]ReviewItem, error) {
	var reviews []types.Review
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load reviews")
	}

	items := make([]ReviewItem, 0, len(reviews))

	for _, review := range reviews {
		var user types.User
		if err := s.db.WithContext(ctx).First(&user, "id = ?", review.UserID).Error; err != nil {
			return nil, fault.Wrap(err, "failed to load reviewer")
		}

		items = append(items, ReviewItem{Review: review, Username: user.Username})
	}

	return items, nil
}

// WishlistAdd saves a product to the caller's wishlist. Conflict on dup.
func (s *Store) WishlistAdd(ctx context.Context, user, productID uuid.UUID) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&types.Product{}).Where("id = ?", productID).Count(&count).Error

	if err != nil {
		return fault.Wrap(err, "failed to check product")
	}

	if count == 0 {
		return fault.New(fault.NotFound, "Product not found")
	}

	entry := types.Wishlist{
		BaseModel: types.BaseModel{ID: uuid.New()},
		UserID:    user,
		ProductID: productID,
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fault.New(fault.Conflict, "Product is already in your wishlist")
		}

		return fault.Wrap(err, "failed to add to wishlist")
	}

	return nil
}

// WishlistRemove drops a product from the caller's wishlist.
func (s *Store) WishlistRemove(ctx context.Context, user, productID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", user, productID).
		Delete(&types.Wishlist{})

	if res.Error != nil {
		return fault.Wrap(res.Error, "failed to remove from wishlist")
	}

	if res.RowsAffected == 0 {
		return fault.New(fault.NotFound, "Product is not in your wishlist")
	}

	return nil
}

// WishlistProducts resolves the caller's wishlist to product rows.
func (s *Store) WishlistProducts(ctx context.Context, user uuid.UUID) ([]types.Product, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&types.Wishlist{}).Where("user_id = ?", user).Pluck("product_id", &ids).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load wishlist")
	}

	if len(ids) == 0 {
		return []types.Product{}, nil
	}

	var products []types.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fault.Wrap(err, "failed to load wishlist products")
	}

	return products, nil
}
