package market

import (
	"context"
	"errors"

	"camposocial/fault"
	"camposocial/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// cartFor loads or lazily creates the user's single cart.
func (s *Store) cartFor(tx *gorm.DB, user uuid.UUID) (*types.Cart, error) {
	var cart types.Cart
	err := tx.Where("user_id = ?", user).First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = types.Cart{
			BaseModel: types.BaseModel{ID: uuid.New()},
			UserID:    user,
		}

		if err := tx.Create(&cart).Error; err != nil {
			return nil, fault.Wrap(err, "failed to create cart")
		}

		return &cart, nil
	}

	if err != nil {
		return nil, fault.Wrap(err, "failed to load cart")
	}

	return &cart, nil
}

// AddToCart puts a product (optionally a specific variation of it) in the
// caller's cart. Adding the same product+variation again bumps the
// quantity instead of duplicating the line.
func (s *Store) AddToCart(ctx context.Context, user, productID uuid.UUID, variationID *uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fault.New(fault.Validation, "Quantity must be positive")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product types.Product
		err := tx.First(&product, "id = ?", productID).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.New(fault.NotFound, "Product not found")
		}

		if err != nil {
			return fault.Wrap(err, "failed to load product")
		}

		if variationID != nil {
			var variation types.ProductVariation
			err := tx.First(&variation, "id = ?", *variationID).Error

			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.New(fault.NotFound, "Variation not found")
			}

			if err != nil {
				return fault.Wrap(err, "failed to load variation")
			}

			if variation.ProductID != productID {
				return fault.New(fault.Validation, "Variation belongs to a different product")
			}
		}

		cart, err := s.cartFor(tx, user)

		if err != nil {
			return err
		}

		q := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID)

		if variationID != nil {
			q = q.Where("variation_id = ?", *variationID)
		} else {
			q = q.Where("variation_id IS NULL")
		}

		var item types.CartItem
		err = q.First(&item).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			item = types.CartItem{
				BaseModel:   types.BaseModel{ID: uuid.New()},
				CartID:      cart.ID,
				ProductID:   productID,
				VariationID: variationID,
				Quantity:    quantity,
			}

			if err := tx.Create(&item).Error; err != nil {
				return fault.Wrap(err, "failed to add cart item")
			}

			return nil
		}

		if err != nil {
			return fault.Wrap(err, "failed to load cart item")
		}

		err = tx.Model(&item).Update("quantity", item.Quantity+quantity).Error

		if err != nil {
			return fault.Wrap(err, "failed to update cart item")
		}

		return nil
	})
}

// SetCartItemQuantity updates one line's quantity; zero removes the line.
func (s *Store) SetCartItemQuantity(ctx context.Context, user, itemID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return fault.New(fault.Validation, "Quantity cannot be negative")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartFor(tx, user)

		if err != nil {
			return err
		}

		var item types.CartItem
		err = tx.Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fault.New(fault.NotFound, "Cart item not found")
		}

		if err != nil {
			return fault.Wrap(err, "failed to load cart item")
		}

		if quantity == 0 {
			if err := tx.Delete(&item).Error; err != nil {
				return fault.Wrap(err, "failed to remove cart item")
			}

			return nil
		}

		if err := tx.Model(&item).Update("quantity", quantity).Error; err != nil {
			return fault.Wrap(err, "failed to update cart item")
		}

		return nil
	})
}

// CartLine is one cart row priced out: the variation price wins over the
// base product price when a variation is chosen.
type CartLine struct {
	types.CartItem
	Title     string  `json:"title"`
	Variation string  `json:"variation,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

type CartView struct {
	Lines []CartLine `json:"lines"`
	Total float64    `json:"total"`
}

// ViewCart prices out the caller's cart.
func (s *Store) ViewCart(ctx context.Context, user uuid.UUID) (*CartView, error) {
	view := &CartView{Lines: []CartLine{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartFor(tx, user)

		if err != nil {
			return err
		}

		lines, total, err := priceCart(tx, cart.ID)

		if err != nil {
			return err
		}

		view.Lines = lines
		view.Total = total

		return nil
	})

	if err != nil {
		return nil, err
	}

	return view, nil
}

func priceCart(tx *gorm.DB, cartID uuid.UUID) ([]CartLine, float64, error) {
	var items []types.CartItem
	if err := tx.Where("cart_id = ?", cartID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, 0, fault.Wrap(err, "failed to load cart items")
	}

	lines := make([]CartLine, 0, len(items))
	var total float64

	for _, item := range items {
		var product types.Product
		if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
			return nil, 0, fault.Wrap(err, "failed to load cart product")
		}

		line := CartLine{
			CartItem:  item,
			Title:     product.Title,
			UnitPrice: product.Price,
		}

		if item.VariationID != nil {
			var variation types.ProductVariation
			if err := tx.First(&variation, "id = ?", *item.VariationID).Error; err != nil {
				return nil, 0, fault.Wrap(err, "failed to load cart variation")
			}

			line.Variation = variation.Name + ": " + variation.Value
			line.UnitPrice = variation.Price
		}

		line.LineTotal = line.UnitPrice * float64(item.Quantity)
		total += line.LineTotal
		lines = append(lines, line)
	}

	return lines, total, nil
}

type CheckoutInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
}

// CheckoutResult is the created order plus where to send the buyer to pay.
type CheckoutResult struct {
	Order            types.Order `json:"order"`
	AuthorizationURL string      `json:"authorization_url"`
}

// Checkout snapshots the cart into an unpaid order, asks the gateway for a
// charge and stores its reference. The cart survives until the payment
// verifies, so an abandoned checkout loses nothing.
func (s *Store) Checkout(ctx context.Context, user uuid.UUID, in CheckoutInput) (*CheckoutResult, error) {
	for _, field := range []string{in.FirstName, in.LastName, in.Email, in.Phone, in.Address} {
		if field == "" {
			return nil, fault.New(fault.Validation, "All contact fields are required")
		}
	}

	var order types.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartFor(tx, user)

		if err != nil {
			return err
		}

		lines, total, err := priceCart(tx, cart.ID)

		if err != nil {
			return err
		}

		if len(lines) == 0 {
			return fault.New(fault.Validation, "Your cart is empty")
		}

		order = types.Order{
			BaseModel:  types.BaseModel{ID: uuid.New()},
			UserID:     user,
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			Email:      in.Email,
			Phone:      in.Phone,
			Address:    in.Address,
			TotalPrice: total,
		}

		if err := tx.Create(&order).Error; err != nil {
			return fault.Wrap(err, "failed to create order")
		}

		for _, line := range lines {
			item := types.OrderItem{
				BaseModel: types.BaseModel{ID: uuid.New()},
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			}

			if err := tx.Create(&item).Error; err != nil {
				return fault.Wrap(err, "failed to create order item")
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	authURL, reference, err := s.gateway.Initialize(ctx, order.TotalPrice, in.Email)

	if err != nil {
		return nil, fault.Wrap(err, "failed to initialize payment")
	}

	err = s.db.WithContext(ctx).Model(&order).Update("payment_reference", reference).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to store payment reference")
	}

	order.PaymentReference = reference

	return &CheckoutResult{Order: order, AuthorizationURL: authURL}, nil
}

// VerifyOrder asks the gateway whether the order's charge went through.
// On success the order flips to paid, every ordered product's sales count
// grows and the cart empties; all in one transaction. Verifying an
// already-paid order is a no-op success.
func (s *Store) VerifyOrder(ctx context.Context, user, orderID uuid.UUID) (*types.Order, error) {
	var order types.Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "Order not found")
	}

	if err != nil {
		return nil, fault.Wrap(err, "failed to load order")
	}

	if order.UserID != user {
		return nil, fault.New(fault.Unauthorized, "This is not your order")
	}

	if order.Paid {
		return &order, nil
	}

	if order.PaymentReference == "" {
		return nil, fault.New(fault.Conflict, "Order has no payment attached")
	}

	paid, err := s.gateway.Verify(ctx, order.PaymentReference)

	if err != nil {
		return nil, fault.Wrap(err, "failed to verify payment")
	}

	if !paid {
		return nil, fault.New(fault.Conflict, "Payment has not completed")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Update("paid", true).Error; err != nil {
			return fault.Wrap(err, "failed to mark order paid")
		}

		var items []types.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return fault.Wrap(err, "failed to load order items")
		}

		for _, item := range items {
			err := tx.Model(&types.Product{}).
				Where("id = ?", item.ProductID).
				Update("total_sales", gorm.Expr("total_sales + ?", item.Quantity)).Error

			if err != nil {
				return fault.Wrap(err, "failed to record sale")
			}
		}

		cart, err := s.cartFor(tx, user)

		if err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&types.CartItem{}).Error; err != nil {
			return fault.Wrap(err, "failed to clear cart")
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	order.Paid = true

	return &order, nil
}

// Orders lists the caller's orders, newest first.
func (s *Store) Orders(ctx context.Context, user uuid.UUID) ([]types.Order, error) {
	var orders []types.Order
	err := s.db.WithContext(ctx).
		Where("user_id = ?", user).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, fault.Wrap(err, "failed to load orders")
	}

	return orders, nil
}
