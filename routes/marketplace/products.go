package marketplace

import (
	"net/http"
	"strconv"

	"camposocial/blob"
	docs "camposocial/doclib"
	"camposocial/market"
	"camposocial/types"
	"camposocial/uapi"
)

type SellerRequest struct {
	DisplayName string `json:"display_name"`
	About       string `json:"about,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	PhoneNo     string `json:"phone_no,omitempty"`
}

func CreateSellerDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Create Seller",
		Description: "Opens your seller storefront. One per account.",
		Params:      []docs.Parameter{},
		Req:         SellerRequest{},
		Resp:        types.Seller{},
	}
}

func (b Router) CreateSeller(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var req SellerRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	seller, err := b.Market.CreateSeller(d.Context, actor(d), req.DisplayName, req.About, req.Avatar, req.PhoneNo)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   seller,
	}
}

func GetSellerDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Seller",
		Description: "Returns a seller storefront with product count, lifetime sales and average rating.",
		Params:      []docs.Parameter{idParam("The seller to fetch.")},
		Resp:        market.SellerProfile{},
	}
}

func (b Router) GetSeller(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	profile, err := b.Market.GetSeller(d.Context, id)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   profile,
	}
}

func SellerProductsDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Seller Products",
		Description: "Lists a seller's catalogue, newest first.",
		Params:      []docs.Parameter{idParam("The seller whose products to list.")},
		Resp:        []types.Product{},
	}
}

func (b Router) SellerProducts(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	products, err := b.Market.SellerProducts(d.Context, id)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   products,
	}
}

type VariationRequest struct {
	Name  string  `json:"name"`
	Value string  `json:"value"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

type ProductRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	ContactInfo string             `json:"contact_info,omitempty"`
	Brand       string             `json:"brand,omitempty"`
	Price       float64            `json:"price"`
	Category    string             `json:"category,omitempty"`
	Images      []string           `json:"images,omitempty"`
	Variations  []VariationRequest `json:"variations,omitempty"`
}

func (req ProductRequest) toInput() market.ProductInput {
	in := market.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		ContactInfo: req.ContactInfo,
		Brand:       req.Brand,
		Price:       req.Price,
		Category:    req.Category,
		Images:      req.Images,
	}

	for _, v := range req.Variations {
		in.Variations = append(in.Variations, market.VariationInput{
			Name:  v.Name,
			Value: v.Value,
			Price: v.Price,
			Stock: v.Stock,
		})
	}

	return in
}

func CreateProductDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Create Product",
		Description: "Lists a product under your storefront, with optional images and variations.",
		Params:      []docs.Parameter{},
		Req:         ProductRequest{},
		Resp:        types.Product{},
	}
}

func (b Router) CreateProduct(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var req ProductRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	product, err := b.Market.CreateProduct(d.Context, actor(d), req.toInput())

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   product,
	}
}

func SearchDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Search Products",
		Description: "Searches listings by a case-insensitive term over title and brand, optionally narrowed to a category.",
		Params: []docs.Parameter{
			{
				Name:        "q",
				In:          "query",
				Description: "Search term.",
				Schema:      map[string]any{"type": "string"},
			},
			{
				Name:        "category",
				In:          "query",
				Description: "Category filter.",
				Schema:      map[string]any{"type": "string"},
			},
			{
				Name:        "limit",
				In:          "query",
				Description: "Maximum results (default 25, max 100).",
				Schema:      map[string]any{"type": "integer"},
			},
		},
		Resp: []types.Product{},
	}
}

func (b Router) Search(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := b.Market.Search(d.Context, r.URL.Query().Get("q"), r.URL.Query().Get("category"), limit)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   products,
	}
}

func GetProductDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Product",
		Description: "Returns a product with its images, variations and review stats.",
		Params:      []docs.Parameter{idParam("The product to fetch.")},
		Resp:        market.ProductDetail{},
	}
}

func (b Router) GetProduct(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	detail, err := b.Market.GetProduct(d.Context, id)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   detail,
	}
}

func UpdateProductDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Update Product",
		Description: "Updates one of your listings.",
		Params:      []docs.Parameter{idParam("The product to update.")},
		Req:         ProductRequest{},
		Resp:        types.Response{},
	}
}

func (b Router) UpdateProduct(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	var req ProductRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	if err := b.Market.UpdateProduct(d.Context, actor(d), id, req.toInput()); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func DeleteProductDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Product",
		Description: "Removes one of your listings along with its images, variations, reviews and wishlist entries.",
		Params:      []docs.Parameter{idParam("The product to delete.")},
		Resp:        types.Response{},
	}
}

func (b Router) DeleteProduct(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Market.DeleteProduct(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func UploadProductImageDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Upload Product Image",
		Description: "Uploads a product image as a multipart form with a 'file' field, returning its URL.",
		Params:      []docs.Parameter{idParam("The product the image belongs to.")},
		Resp:        map[string]string{},
	}
}

func (b Router) UploadProductImage(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	file, header, err := r.FormFile("file")

	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	defer file.Close()

	if blob.MediaType(header.Filename) != "image" {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	key := blob.ProductKey(id.String(), header.Filename)

	url, uerr := b.Uploads.Upload(d.Context, key, header.Header.Get("Content-Type"), file)

	if uerr != nil {
		return uapi.ErrorResponse(uerr)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   map[string]string{"url": url},
	}
}

type ReviewRequest struct {
	Text   string  `json:"text"`
	Rating float64 `json:"rating"`
}

func CreateReviewDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Create Review",
		Description: "Reviews a product with a rating between 0 and 5.",
		Params:      []docs.Parameter{idParam("The product to review.")},
		Req:         ReviewRequest{},
		Resp:        types.Review{},
	}
}

func (b Router) CreateReview(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	var req ReviewRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	review, err := b.Market.CreateReview(d.Context, actor(d), id, req.Text, req.Rating)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   review,
	}
}

func ListReviewsDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "List Reviews",
		Description: "Lists a product's reviews, newest first.",
		Params:      []docs.Parameter{idParam("The product whose reviews to list.")},
		Resp:        []market.ReviewItem{},
	}
}

func (b Router) ListReviews(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	reviews, err := b.Market.ProductReviews(d.Context, id)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   reviews,
	}
}

func UpdateReviewDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Update Review",
		Description: "Edits one of your reviews.",
		Params:      []docs.Parameter{idParam("The review to update.")},
		Req:         ReviewRequest{},
		Resp:        types.Response{},
	}
}

func (b Router) UpdateReview(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	var req ReviewRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	if err := b.Market.UpdateReview(d.Context, actor(d), id, req.Text, req.Rating); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func DeleteReviewDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Review",
		Description: "Deletes one of your reviews.",
		Params:      []docs.Parameter{idParam("The review to delete.")},
		Resp:        types.Response{},
	}
}

func (b Router) DeleteReview(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Market.DeleteReview(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}
