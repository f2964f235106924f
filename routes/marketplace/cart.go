package marketplace

import (
	"net/http"

	docs "camposocial/doclib"
	"camposocial/market"
	"camposocial/types"
	"camposocial/uapi"

	"github.com/google/uuid"
)

func WishlistAddDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Add To Wishlist",
		Description: "Saves a product to your wishlist.",
		Params:      []docs.Parameter{idParam("The product to save.")},
		Resp:        types.Response{},
	}
}

func (b Router) WishlistAdd(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Market.WishlistAdd(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func WishlistRemoveDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Remove From Wishlist",
		Description: "Removes a product from your wishlist.",
		Params:      []docs.Parameter{idParam("The product to remove.")},
		Resp:        types.Response{},
	}
}

func (b Router) WishlistRemove(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Market.WishlistRemove(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func WishlistDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "List Wishlist",
		Description: "Lists the products in your wishlist.",
		Params:      []docs.Parameter{},
		Resp:        []types.Product{},
	}
}

func (b Router) Wishlist(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	products, err := b.Market.WishlistProducts(d.Context, actor(d))

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   products,
	}
}

func ViewCartDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "View Cart",
		Description: "Returns your cart priced out: variation prices override the base product price.",
		Params:      []docs.Parameter{},
		Resp:        market.CartView{},
	}
}

func (b Router) ViewCart(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	view, err := b.Market.ViewCart(d.Context, actor(d))

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   view,
	}
}

type AddToCartRequest struct {
	ProductID   uuid.UUID  `json:"product_id"`
	VariationID *uuid.UUID `json:"variation_id,omitempty"`
	Quantity    int        `json:"quantity"`
}

func AddToCartDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Add To Cart",
		Description: "Adds a product, optionally a specific variation, to your cart. Re-adding the same line bumps its quantity.",
		Params:      []docs.Parameter{},
		Req:         AddToCartRequest{},
		Resp:        types.Response{},
	}
}

func (b Router) AddToCart(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var req AddToCartRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	if err := b.Market.AddToCart(d.Context, actor(d), req.ProductID, req.VariationID, req.Quantity); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func SetCartItemQuantityDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Set Cart Item Quantity",
		Description: "Sets a cart line's quantity. Zero removes the line.",
		Params:      []docs.Parameter{idParam("The cart item to update.")},
		Req:         SetQuantityRequest{},
		Resp:        types.Response{},
	}
}

func (b Router) SetCartItemQuantity(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	var req SetQuantityRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	if err := b.Market.SetCartItemQuantity(d.Context, actor(d), id, req.Quantity); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

type CheckoutRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func CheckoutDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Checkout",
		Description: "Creates an unpaid order from your cart and returns the payment authorization URL. The cart is kept until the payment verifies.",
		Params:      []docs.Parameter{},
		Req:         CheckoutRequest{},
		Resp:        market.CheckoutResult{},
	}
}

func (b Router) Checkout(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var req CheckoutRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	result, err := b.Market.Checkout(d.Context, actor(d), market.CheckoutInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	})

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   result,
	}
}

func OrdersDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "List Orders",
		Description: "Lists your orders, newest first.",
		Params:      []docs.Parameter{},
		Resp:        []types.Order{},
	}
}

func (b Router) Orders(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	orders, err := b.Market.Orders(d.Context, actor(d))

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   orders,
	}
}

func VerifyOrderDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Verify Order",
		Description: "Confirms an order's payment with the gateway. On success the order is marked paid, sales counters update and your cart empties.",
		Params:      []docs.Parameter{idParam("The order to verify.")},
		Resp:        types.Order{},
	}
}

func (b Router) VerifyOrder(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	order, err := b.Market.VerifyOrder(d.Context, actor(d), id)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   order,
	}
}
