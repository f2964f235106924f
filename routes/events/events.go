package events

import (
	"net/http"
	"strconv"
	"time"

	"camposocial/blob"
	docs "camposocial/doclib"
	"camposocial/events"
	"camposocial/types"
	"camposocial/uapi"
)

type EventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DateOfEvent time.Time `json:"date_of_event"`
	EntryFee    string    `json:"entry_fee,omitempty"`
	Category    string    `json:"category,omitempty"`
}

func (req EventRequest) toInput() events.EventInput {
	return events.EventInput{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		DateOfEvent: req.DateOfEvent,
		EntryFee:    req.EntryFee,
		Category:    req.Category,
	}
}

func CreateDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Create Event",
		Description: "Lists a new event under your account.",
		Params:      []docs.Parameter{},
		Req:         EventRequest{},
		Resp:        types.Event{},
	}
}

func (b Router) Create(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var req EventRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	event, err := b.Events.Create(d.Context, actor(d), req.toInput())

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   event,
	}
}

func ListDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "List Events",
		Description: "Lists events soonest first, optionally narrowed to a category.",
		Params: []docs.Parameter{
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
		Resp: []types.Event{},
	}
}

func (b Router) List(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := b.Events.List(d.Context, r.URL.Query().Get("category"), limit)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   list,
	}
}

func GetDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Event",
		Description: "Returns one event.",
		Params:      []docs.Parameter{idParam("The event to fetch.")},
		Resp:        types.Event{},
	}
}

func (b Router) Get(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	event, err := b.Events.Get(d.Context, id)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   event,
	}
}

func UpdateDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Update Event",
		Description: "Updates one of your events.",
		Params:      []docs.Parameter{idParam("The event to update.")},
		Req:         EventRequest{},
		Resp:        types.Response{},
	}
}

func (b Router) Update(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	var req EventRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	if err := b.Events.Update(d.Context, actor(d), id, req.toInput()); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func DeleteDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Event",
		Description: "Deletes one of your events and its comments.",
		Params:      []docs.Parameter{idParam("The event to delete.")},
		Resp:        types.Response{},
	}
}

func (b Router) Delete(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Events.Delete(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func UploadImageDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Upload Event Image",
		Description: "Uploads an event banner as a multipart form with a 'file' field and sets it on the event.",
		Params:      []docs.Parameter{idParam("The event the image belongs to.")},
		Resp:        map[string]string{},
	}
}

func (b Router) UploadImage(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
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

	key := blob.EventKey(d.Auth.ID, header.Filename)

	url, uerr := b.Uploads.Upload(d.Context, key, header.Header.Get("Content-Type"), file)

	if uerr != nil {
		return uapi.ErrorResponse(uerr)
	}

	event, gerr := b.Events.Get(d.Context, id)

	if gerr != nil {
		return uapi.ErrorResponse(gerr)
	}

	uperr := b.Events.Update(d.Context, actor(d), id, events.EventInput{
		Title:       event.Title,
		Description: event.Description,
		ImageURL:    url,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		DateOfEvent: event.DateOfEvent,
		EntryFee:    event.EntryFee,
		Category:    event.Category,
	})

	if uperr != nil {
		return uapi.ErrorResponse(uperr)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   map[string]string{"image_url": url},
	}
}

func ByUserDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get User Events",
		Description: "Lists the events a user has created.",
		Params:      []docs.Parameter{idParam("The user whose events to list.")},
		Resp:        []types.Event{},
	}
}

func (b Router) ByUser(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	list, err := b.Events.ByUser(d.Context, id)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   list,
	}
}

type CommentRequest struct {
	Text string `json:"text"`
}

func AddCommentDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Create Event Comment",
		Description: "Comments on an event.",
		Params:      []docs.Parameter{idParam("The event to comment on.")},
		Req:         CommentRequest{},
		Resp:        types.EventComment{},
	}
}

func (b Router) AddComment(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	var req CommentRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	comment, err := b.Events.AddComment(d.Context, actor(d), id, req.Text)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   comment,
	}
}

func CommentsDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "List Event Comments",
		Description: "Lists an event's comments, oldest first.",
		Params:      []docs.Parameter{idParam("The event whose comments to list.")},
		Resp:        []events.CommentItem{},
	}
}

func (b Router) Comments(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	comments, err := b.Events.Comments(d.Context, id)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   comments,
	}
}

func UpdateCommentDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Update Event Comment",
		Description: "Edits one of your event comments.",
		Params:      []docs.Parameter{idParam("The comment to update.")},
		Req:         CommentRequest{},
		Resp:        types.Response{},
	}
}

func (b Router) UpdateComment(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	var req CommentRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	if err := b.Events.UpdateComment(d.Context, actor(d), id, req.Text); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func DeleteCommentDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Event Comment",
		Description: "Deletes one of your event comments.",
		Params:      []docs.Parameter{idParam("The comment to delete.")},
		Resp:        types.Response{},
	}
}

func (b Router) DeleteComment(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Events.DeleteComment(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}
