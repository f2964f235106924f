package marketplace

import (
	"net/http"

	"camposocial/blob"
	docs "camposocial/doclib"
	"camposocial/market"
	"camposocial/uapi"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Router serves the marketplace: sellers, products, reviews, wishlists,
// carts and orders.
type Router struct {
	Market  *market.Store
	Uploads blob.Uploader
}

func (b Router) Tag() (string, string) {
	return "Marketplace", "Seller storefronts, product listings, reviews, wishlists, carts and paid orders."
}

func actor(d uapi.RouteData) uuid.UUID {
	return uuid.MustParse(d.Auth.ID)
}

func pathID(r *http.Request) (uuid.UUID, uapi.HttpResponse, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))

	if err != nil {
		return uuid.Nil, uapi.DefaultResponse(http.StatusBadRequest), false
	}

	return id, uapi.HttpResponse{}, true
}

func idParam(desc string) docs.Parameter {
	return docs.Parameter{
		Name:        "id",
		In:          "path",
		Description: desc,
		Required:    true,
		Schema:      map[string]any{"type": "string", "format": "uuid"},
	}
}

func (b Router) Routes(r *chi.Mux) {
	uapi.Route{
		Pattern: "/sellers",
		OpId:    "create_seller",
		Method:  uapi.POST,
		Docs:    CreateSellerDocs,
		Handler: b.CreateSeller,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/sellers/{id}",
		OpId:    "get_seller",
		Method:  uapi.GET,
		Docs:    GetSellerDocs,
		Handler: b.GetSeller,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/sellers/{id}/products",
		OpId:    "get_seller_products",
		Method:  uapi.GET,
		Docs:    SellerProductsDocs,
		Handler: b.SellerProducts,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/products",
		OpId:    "create_product",
		Method:  uapi.POST,
		Docs:    CreateProductDocs,
		Handler: b.CreateProduct,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/products/search",
		OpId:    "search_products",
		Method:  uapi.GET,
		Docs:    SearchDocs,
		Handler: b.Search,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/products/{id}",
		OpId:    "get_product",
		Method:  uapi.GET,
		Docs:    GetProductDocs,
		Handler: b.GetProduct,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/products/{id}",
		OpId:    "update_product",
		Method:  uapi.PATCH,
		Docs:    UpdateProductDocs,
		Handler: b.UpdateProduct,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/products/{id}",
		OpId:    "delete_product",
		Method:  uapi.DELETE,
		Docs:    DeleteProductDocs,
		Handler: b.DeleteProduct,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/products/{id}/images",
		OpId:    "upload_product_image",
		Method:  uapi.POST,
		Docs:    UploadProductImageDocs,
		Handler: b.UploadProductImage,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/products/{id}/reviews",
		OpId:    "create_review",
		Method:  uapi.POST,
		Docs:    CreateReviewDocs,
		Handler: b.CreateReview,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/products/{id}/reviews",
		OpId:    "list_reviews",
		Method:  uapi.GET,
		Docs:    ListReviewsDocs,
		Handler: b.ListReviews,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/reviews/{id}",
		OpId:    "update_review",
		Method:  uapi.PATCH,
		Docs:    UpdateReviewDocs,
		Handler: b.UpdateReview,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/reviews/{id}",
		OpId:    "delete_review",
		Method:  uapi.DELETE,
		Docs:    DeleteReviewDocs,
		Handler: b.DeleteReview,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/wishlist/{id}",
		OpId:    "wishlist_add",
		Method:  uapi.PUT,
		Docs:    WishlistAddDocs,
		Handler: b.WishlistAdd,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/wishlist/{id}",
		OpId:    "wishlist_remove",
		Method:  uapi.DELETE,
		Docs:    WishlistRemoveDocs,
		Handler: b.WishlistRemove,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/wishlist",
		OpId:    "wishlist_list",
		Method:  uapi.GET,
		Docs:    WishlistDocs,
		Handler: b.Wishlist,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/cart",
		OpId:    "view_cart",
		Method:  uapi.GET,
		Docs:    ViewCartDocs,
		Handler: b.ViewCart,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/cart/items",
		OpId:    "add_to_cart",
		Method:  uapi.POST,
		Docs:    AddToCartDocs,
		Handler: b.AddToCart,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/cart/items/{id}",
		OpId:    "set_cart_item_quantity",
		Method:  uapi.PATCH,
		Docs:    SetCartItemQuantityDocs,
		Handler: b.SetCartItemQuantity,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/checkout",
		OpId:    "checkout",
		Method:  uapi.POST,
		Docs:    CheckoutDocs,
		Handler: b.Checkout,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/orders",
		OpId:    "list_orders",
		Method:  uapi.GET,
		Docs:    OrdersDocs,
		Handler: b.Orders,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/orders/{id}/verify",
		OpId:    "verify_order",
		Method:  uapi.POST,
		Docs:    VerifyOrderDocs,
		Handler: b.VerifyOrder,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)
}
