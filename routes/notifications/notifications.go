package notifications

import (
	"net/http"

	docs "camposocial/doclib"
	"camposocial/notify"
	"camposocial/types"
	"camposocial/uapi"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func actor(d uapi.RouteData) uuid.UUID {
	return uuid.MustParse(d.Auth.ID)
}

func ListDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "List Notifications",
		Description: "Lists your notifications, newest first. Pass unread=true to only see unread ones.",
		Params: []docs.Parameter{
			{
				Name:        "unread",
				In:          "query",
				Description: "When true, only unread notifications are returned.",
				Schema:      map[string]any{"type": "boolean"},
			},
		},
		Resp: []notify.Item{},
	}
}

func (b Router) List(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	unreadOnly := r.URL.Query().Get("unread") == "true"

	items, err := b.Notify.List(d.Context, actor(d), unreadOnly)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   items,
	}
}

func UnreadCountDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Unread Notification Count",
		Description: "Returns your unread notification count.",
		Params:      []docs.Parameter{},
		Resp:        map[string]int64{},
	}
}

func (b Router) UnreadCount(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	count, err := b.Notify.UnreadCount(d.Context, actor(d))

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   map[string]int64{"unread": count},
	}
}

func MarkReadDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Mark Notification Read",
		Description: "Marks one of your notifications as read.",
		Params: []docs.Parameter{
			{
				Name:        "id",
				In:          "path",
				Description: "The notification to mark read.",
				Required:    true,
				Schema:      map[string]any{"type": "string", "format": "uuid"},
			},
		},
		Resp: types.Response{},
	}
}

func (b Router) MarkRead(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, err := uuid.Parse(chi.URLParam(r, "id"))

	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	if err := b.Notify.MarkRead(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func MarkAllReadDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Mark All Notifications Read",
		Description: "Marks every unread notification of yours as read.",
		Params:      []docs.Parameter{},
		Resp:        types.Response{},
	}
}

func (b Router) MarkAllRead(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	if err := b.Notify.MarkAllRead(d.Context, actor(d)); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}
