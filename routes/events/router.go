package events

import (
	"net/http"

	"camposocial/blob"
	docs "camposocial/doclib"
	"camposocial/events"
	"camposocial/uapi"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Router serves community events and their comment threads.
type Router struct {
	Events  *events.Store
	Uploads blob.Uploader
}

func (b Router) Tag() (string, string) {
	return "Events", "Community event listings and their comment threads."
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
		Pattern: "/events",
		OpId:    "create_event",
		Method:  uapi.POST,
		Docs:    CreateDocs,
		Handler: b.Create,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/events",
		OpId:    "list_events",
		Method:  uapi.GET,
		Docs:    ListDocs,
		Handler: b.List,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/events/{id}",
		OpId:    "get_event",
		Method:  uapi.GET,
		Docs:    GetDocs,
		Handler: b.Get,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/events/{id}",
		OpId:    "update_event",
		Method:  uapi.PATCH,
		Docs:    UpdateDocs,
		Handler: b.Update,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/events/{id}",
		OpId:    "delete_event",
		Method:  uapi.DELETE,
		Docs:    DeleteDocs,
		Handler: b.Delete,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/events/{id}/image",
		OpId:    "upload_event_image",
		Method:  uapi.PUT,
		Docs:    UploadImageDocs,
		Handler: b.UploadImage,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/{id}/events",
		OpId:    "get_user_events",
		Method:  uapi.GET,
		Docs:    ByUserDocs,
		Handler: b.ByUser,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/events/{id}/comments",
		OpId:    "create_event_comment",
		Method:  uapi.POST,
		Docs:    AddCommentDocs,
		Handler: b.AddComment,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/events/{id}/comments",
		OpId:    "list_event_comments",
		Method:  uapi.GET,
		Docs:    CommentsDocs,
		Handler: b.Comments,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/event-comments/{id}",
		OpId:    "update_event_comment",
		Method:  uapi.PATCH,
		Docs:    UpdateCommentDocs,
		Handler: b.UpdateComment,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/event-comments/{id}",
		OpId:    "delete_event_comment",
		Method:  uapi.DELETE,
		Docs:    DeleteCommentDocs,
		Handler: b.DeleteComment,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)
}
