package yaps

import (
	"net/http"
	"strconv"

	"camposocial/blob"
	"camposocial/content"
	docs "camposocial/doclib"
	"camposocial/types"
	"camposocial/uapi"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

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

type MediaRef struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

func toMediaInputs(refs []MediaRef) []content.MediaInput {
	media := make([]content.MediaInput, 0, len(refs))

	for _, ref := range refs {
		media = append(media, content.MediaInput{URL: ref.URL, Type: ref.Type})
	}

	return media
}

type CreateYapRequest struct {
	Content       string     `json:"content"`
	Location      string     `json:"location,omitempty"`
	OriginalYapID *uuid.UUID `json:"original_yap_id,omitempty"`
	Media         []MediaRef `json:"media,omitempty"`
}

func CreateYapDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Create Yap",
		Description: "Posts a yap. Hashtags and @mentions in the content are linked and fanned out; original_yap_id makes this a reyap.",
		Params:      []docs.Parameter{},
		Req:         CreateYapRequest{},
		Resp:        types.Yap{},
	}
}

func (b Router) CreateYap(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var req CreateYapRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	yap, err := b.Content.CreateYap(d.Context, actor(d), req.Content, req.Location, req.OriginalYapID, toMediaInputs(req.Media))

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   yap,
	}
}

func GetYapDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Yap",
		Description: "Returns a yap with its author, reply thread, like count, media and hashtags.",
		Params:      []docs.Parameter{idParam("The yap to fetch.")},
		Resp:        content.Thread{},
	}
}

func (b Router) GetYap(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	thread, err := b.Content.GetThread(d.Context, id)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   thread,
	}
}

func DeleteYapDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Yap",
		Description: "Deletes your yap along with its replies, likes, media and hashtag links. Reyaps of it survive with the reference cleared.",
		Params:      []docs.Parameter{idParam("The yap to delete.")},
		Resp:        types.Response{},
	}
}

func (b Router) DeleteYap(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Content.DeleteYap(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

type CreateReplyRequest struct {
	Content       string     `json:"content"`
	ParentReplyID *uuid.UUID `json:"parent_reply_id,omitempty"`
	Media         []MediaRef `json:"media,omitempty"`
}

func CreateReplyDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Create Reply",
		Description: "Replies to a yap, or to another reply in the same thread via parent_reply_id.",
		Params:      []docs.Parameter{idParam("The yap to reply under.")},
		Req:         CreateReplyRequest{},
		Resp:        types.Reply{},
	}
}

func (b Router) CreateReply(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	yapID, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	var req CreateReplyRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	reply, err := b.Content.CreateReply(d.Context, actor(d), yapID, req.ParentReplyID, req.Content, toMediaInputs(req.Media))

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   reply,
	}
}

func DeleteReplyDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Reply",
		Description: "Deletes your reply and any replies threaded under it.",
		Params:      []docs.Parameter{idParam("The reply to delete.")},
		Resp:        types.Response{},
	}
}

func (b Router) DeleteReply(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Content.DeleteReply(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func LikeYapDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Like Yap",
		Description: "Likes a yap and notifies its author. Liking twice fails.",
		Params:      []docs.Parameter{idParam("The yap to like.")},
		Resp:        types.Response{},
	}
}

func (b Router) LikeYap(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Content.LikeYap(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func UnlikeYapDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Unlike Yap",
		Description: "Removes your like from a yap.",
		Params:      []docs.Parameter{idParam("The yap to unlike.")},
		Resp:        types.Response{},
	}
}

func (b Router) UnlikeYap(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Content.UnlikeYap(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func LikeReplyDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Like Reply",
		Description: "Likes a reply and notifies its author. Liking twice fails.",
		Params:      []docs.Parameter{idParam("The reply to like.")},
		Resp:        types.Response{},
	}
}

func (b Router) LikeReply(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Content.LikeReply(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func UnlikeReplyDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Unlike Reply",
		Description: "Removes your like from a reply.",
		Params:      []docs.Parameter{idParam("The reply to unlike.")},
		Resp:        types.Response{},
	}
}

func (b Router) UnlikeReply(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Content.UnlikeReply(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func UploadMediaDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Upload Yap Media",
		Description: "Uploads an image or video as a multipart form with a 'file' field, returning the URL to attach to a yap or reply.",
		Params:      []docs.Parameter{},
		Resp:        MediaRef{},
	}
}

func (b Router) UploadMedia(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	file, header, err := r.FormFile("file")

	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	defer file.Close()

	mediaType := blob.MediaType(header.Filename)

	if mediaType == "" {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	key := blob.YapKey(d.Auth.ID, header.Filename)

	url, err := b.Uploads.Upload(d.Context, key, header.Header.Get("Content-Type"), file)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   MediaRef{URL: url, Type: mediaType},
	}
}

func nameParam() docs.Parameter {
	return docs.Parameter{
		Name:        "name",
		In:          "path",
		Description: "The hashtag name, without the # prefix.",
		Required:    true,
		Schema:      map[string]any{"type": "string"},
	}
}

func FollowHashtagDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Follow Hashtag",
		Description: "Adds a hashtag to your interests.",
		Params:      []docs.Parameter{nameParam()},
		Resp:        types.Response{},
	}
}

func (b Router) FollowHashtag(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	if err := b.Content.FollowHashtag(d.Context, actor(d), chi.URLParam(r, "name")); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func UnfollowHashtagDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Unfollow Hashtag",
		Description: "Removes a hashtag from your interests.",
		Params:      []docs.Parameter{nameParam()},
		Resp:        types.Response{},
	}
}

func (b Router) UnfollowHashtag(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	if err := b.Content.UnfollowHashtag(d.Context, actor(d), chi.URLParam(r, "name")); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func FollowedHashtagsDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "List Followed Hashtags",
		Description: "Lists the hashtags you follow.",
		Params:      []docs.Parameter{},
		Resp:        []string{},
	}
}

func (b Router) FollowedHashtags(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	tags, err := b.Content.FollowedHashtags(d.Context, actor(d))

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   tags,
	}
}

func TrendingDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Trending Hashtags",
		Description: "Ranks hashtags by usage.",
		Params: []docs.Parameter{
			{
				Name:        "limit",
				In:          "query",
				Description: "Maximum tags to return (default 10, max 50).",
				Schema:      map[string]any{"type": "integer"},
			},
		},
		Resp: []content.TrendingHashtag{},
	}
}

func (b Router) Trending(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	tags, err := b.Content.Trending(d.Context, limit)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   tags,
	}
}
