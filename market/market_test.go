package market

import (
	"context"
	"fmt"
	"testing"

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

// fakeGateway hands out sequential references and lets each test flip
// whether a charge verifies.
type fakeGateway struct {
	paid  map[string]bool
	inits int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{paid: map[string]bool{}}
}

func (g *fakeGateway) Initialize(ctx context.Context, amount float64, email string) (string, string, error) {
	g.inits++
	reference := fmt.Sprintf("ref-%d", g.inits)

	return "https://pay.example.com/" + reference, reference, nil
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (bool, error) {
	return g.paid[reference], nil
}

func newTestStore(t *testing.T) (*Store, *fakeGateway, *gorm.DB) {
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

	gateway := newFakeGateway()

	return NewStore(db, gateway), gateway, db
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

func seedProduct(t *testing.T, store *Store, db *gorm.DB, owner uuid.UUID, title string, price float64) *types.Product {
	t.Helper()

	ctx := context.Background()

	if _, err := store.SellerByUser(ctx, owner); err != nil {
		_, err := store.CreateSeller(ctx, owner, "Shop", "", "", "")
		require.NoError(t, err)
	}

	product, err := store.CreateProduct(ctx, owner, ProductInput{
		Title: title,
		Price: price,
	})
	require.NoError(t, err)

	return product
}

func TestSellerProfile(t *testing.T) {
	store, _, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")

	seller, err := store.CreateSeller(ctx, alice.ID, "Alice's Shop", "handmade goods", "", "")
	require.NoError(t, err)

	_, err = store.CreateSeller(ctx, alice.ID, "Second Shop", "", "", "")
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	_, err = store.CreateSeller(ctx, alice.ID, "", "", "", "")
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	product := seedProduct(t, store, db, alice.ID, "Mug", 10)

	bob := seedUser(t, db, "bob")
	_, err = store.CreateReview(ctx, bob.ID, product.ID, "solid mug", 4)
	require.NoError(t, err)

	profile, err := store.GetSeller(ctx, seller.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, profile.ProductCount)
	assert.EqualValues(t, 0, profile.TotalSales)
	assert.InDelta(t, 4, profile.AverageRating, 0.001)
}

func TestProductOwnership(t *testing.T) {
	store, _, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	product := seedProduct(t, store, db, alice.ID, "Mug", 10)

	err := store.UpdateProduct(ctx, bob.ID, product.ID, ProductInput{Title: "Stolen"})
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	err = store.DeleteProduct(ctx, bob.ID, product.ID)
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	require.NoError(t, store.UpdateProduct(ctx, alice.ID, product.ID, ProductInput{
		Title: "Better Mug",
		Price: 12,
	}))

	detail, err := store.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Better Mug", detail.Title)
	assert.Equal(t, 12.0, detail.Price)

	// Sellers without a profile cannot list
	_, err = store.CreateProduct(ctx, bob.ID, ProductInput{Title: "X", Price: 1})
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestDeleteProductCascades(t *testing.T) {
	store, _, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	_, err := store.CreateSeller(ctx, alice.ID, "Shop", "", "", "")
	require.NoError(t, err)

	product, err := store.CreateProduct(ctx, alice.ID, ProductInput{
		Title:  "Shirt",
		Price:  20,
		Images: []string{"https://cdn.example.com/shirt.png"},
		Variations: []VariationInput{
			{Name: "Size", Value: "L", Price: 22, Stock: 5},
		},
	})
	require.NoError(t, err)

	_, err = store.CreateReview(ctx, bob.ID, product.ID, "fits well", 5)
	require.NoError(t, err)
	require.NoError(t, store.WishlistAdd(ctx, bob.ID, product.ID))
	require.NoError(t, store.AddToCart(ctx, bob.ID, product.ID, nil, 1))

	require.NoError(t, store.DeleteProduct(ctx, alice.ID, product.ID))

	for model, label := range map[any]string{
		&types.ProductImage{}:     "images",
		&types.ProductVariation{}: "variations",
		&types.Review{}:           "reviews",
		&types.Wishlist{}:         "wishlist entries",
		&types.CartItem{}:         "cart items",
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, label)
	}
}

func TestSearch(t *testing.T) {
	store, _, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")

	_, err := store.CreateSeller(ctx, alice.ID, "Shop", "", "", "")
	require.NoError(t, err)

	for _, p := range []struct {
		title    string
		brand    string
		category string
	}{
		{"Gaming Mouse", "Logi", "electronics"},
		{"Mouse Pad", "", "electronics"},
		{"Coffee Mug", "", "kitchen"},
	} {
		_, err := store.CreateProduct(ctx, alice.ID, ProductInput{
			Title:    p.title,
			Brand:    p.brand,
			Price:    10,
			Category: p.category,
		})
		require.NoError(t, err)
	}

	results, err := store.Search(ctx, "mouse", "", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = store.Search(ctx, "mouse", "kitchen", 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = store.Search(ctx, "LOGI", "", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Gaming Mouse", results[0].Title)
}

func TestReviews(t *testing.T) {
	store, _, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	product := seedProduct(t, store, db, alice.ID, "Mug", 10)

	_, err := store.CreateReview(ctx, bob.ID, product.ID, "meh", 6)
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	_, err = store.CreateReview(ctx, bob.ID, product.ID, "", 3)
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	_, err = store.CreateReview(ctx, bob.ID, uuid.New(), "ghost", 3)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))

	review, err := store.CreateReview(ctx, bob.ID, product.ID, "decent", 3)
	require.NoError(t, err)

	err = store.UpdateReview(ctx, alice.ID, review.ID, "hijacked", 1)
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	require.NoError(t, store.UpdateReview(ctx, bob.ID, review.ID, "grew on me", 4))

	items, err := store.ProductReviews(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bob", items[0].Username)
	assert.Equal(t, 4.0, items[0].Rating)

	err = store.DeleteReview(ctx, alice.ID, review.ID)
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	require.NoError(t, store.DeleteReview(ctx, bob.ID, review.ID))
}

func TestWishlist(t *testing.T) {
	store, _, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	product := seedProduct(t, store, db, alice.ID, "Mug", 10)

	require.NoError(t, store.WishlistAdd(ctx, bob.ID, product.ID))

	err := store.WishlistAdd(ctx, bob.ID, product.ID)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	err = store.WishlistAdd(ctx, bob.ID, uuid.New())
	assert.Equal(t, fault.NotFound, fault.KindOf(err))

	products, err := store.WishlistProducts(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, product.ID, products[0].ID)

	require.NoError(t, store.WishlistRemove(ctx, bob.ID, product.ID))

	err = store.WishlistRemove(ctx, bob.ID, product.ID)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestCartPricing(t *testing.T) {
	store, _, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	_, err := store.CreateSeller(ctx, alice.ID, "Shop", "", "", "")
	require.NoError(t, err)

	shirt, err := store.CreateProduct(ctx, alice.ID, ProductInput{
		Title: "Shirt",
		Price: 20,
		Variations: []VariationInput{
			{Name: "Size", Value: "XL", Price: 25, Stock: 3},
		},
	})
	require.NoError(t, err)

	var variation types.ProductVariation
	require.NoError(t, db.First(&variation, "product_id = ?", shirt.ID).Error)

	mug := seedProduct(t, store, db, alice.ID, "Mug", 10)

	err = store.AddToCart(ctx, bob.ID, shirt.ID, nil, 0)
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	// Variations must belong to the product they are added with
	err = store.AddToCart(ctx, bob.ID, mug.ID, &variation.ID, 1)
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	require.NoError(t, store.AddToCart(ctx, bob.ID, shirt.ID, &variation.ID, 2))
	require.NoError(t, store.AddToCart(ctx, bob.ID, mug.ID, nil, 1))

	// Same product+variation bumps the existing line
	require.NoError(t, store.AddToCart(ctx, bob.ID, shirt.ID, &variation.ID, 1))

	view, err := store.ViewCart(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)

	// Variation price wins over the base price: 3 * 25 + 1 * 10
	assert.Equal(t, 3, view.Lines[0].Quantity)
	assert.Equal(t, 25.0, view.Lines[0].UnitPrice)
	assert.Equal(t, 75.0, view.Lines[0].LineTotal)
	assert.Equal(t, 85.0, view.Total)

	require.NoError(t, store.SetCartItemQuantity(ctx, bob.ID, view.Lines[1].ID, 0))

	view, err = store.ViewCart(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)
	assert.Equal(t, 75.0, view.Total)
}

func TestCheckoutAndVerify(t *testing.T) {
	store, gateway, db := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	mug := seedProduct(t, store, db, alice.ID, "Mug", 10)

	contact := CheckoutInput{
		FirstName: "Bob",
		LastName:  "Buyer",
		Email:     "bob@example.com",
		Phone:     "555-0100",
		Address:   "1 Main St",
	}

	// Empty cart cannot check out
	_, err := store.Checkout(ctx, bob.ID, contact)
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	_, err = store.Checkout(ctx, bob.ID, CheckoutInput{FirstName: "Bob"})
	assert.Equal(t, fault.Validation, fault.KindOf(err))

	require.NoError(t, store.AddToCart(ctx, bob.ID, mug.ID, nil, 2))

	result, err := store.Checkout(ctx, bob.ID, contact)
	require.NoError(t, err)
	assert.Equal(t, 20.0, result.Order.TotalPrice)
	assert.NotEmpty(t, result.Order.PaymentReference)
	assert.Contains(t, result.AuthorizationURL, result.Order.PaymentReference)

	// The cart survives until the payment verifies
	view, err := store.ViewCart(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)

	// Only the buyer can verify
	_, err = store.VerifyOrder(ctx, alice.ID, result.Order.ID)
	assert.Equal(t, fault.Unauthorized, fault.KindOf(err))

	// Unpaid at the gateway
	_, err = store.VerifyOrder(ctx, bob.ID, result.Order.ID)
	assert.Equal(t, fault.Conflict, fault.KindOf(err))

	gateway.paid[result.Order.PaymentReference] = true

	order, err := store.VerifyOrder(ctx, bob.ID, result.Order.ID)
	require.NoError(t, err)
	assert.True(t, order.Paid)

	// Sales recorded, cart cleared
	var product types.Product
	require.NoError(t, db.First(&product, "id = ?", mug.ID).Error)
	assert.Equal(t, 2, product.TotalSales)

	view, err = store.ViewCart(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	// Re-verifying a paid order is a no-op success
	order, err = store.VerifyOrder(ctx, bob.ID, result.Order.ID)
	require.NoError(t, err)
	assert.True(t, order.Paid)

	orders, err := store.Orders(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].Paid)
}
