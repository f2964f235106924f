package notifications

import (
	"camposocial/notify"
	"camposocial/uapi"

	"github.com/go-chi/chi/v5"
)

// Router serves the caller's notification inbox.
type Router struct {
	Notify *notify.Store
}

func (b Router) Tag() (string, string) {
	return "Notifications", "The notification inbox written by likes, replies, mentions and accepted friend requests."
}

func (b Router) Routes(r *chi.Mux) {
	uapi.Route{
		Pattern: "/notifications",
		OpId:    "list_notifications",
		Method:  uapi.GET,
		Docs:    ListDocs,
		Handler: b.List,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/notifications/unread-count",
		OpId:    "unread_notification_count",
		Method:  uapi.GET,
		Docs:    UnreadCountDocs,
		Handler: b.UnreadCount,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/notifications/{id}/read",
		OpId:    "mark_notification_read",
		Method:  uapi.POST,
		Docs:    MarkReadDocs,
		Handler: b.MarkRead,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/notifications/read-all",
		OpId:    "mark_all_notifications_read",
		Method:  uapi.POST,
		Docs:    MarkAllReadDocs,
		Handler: b.MarkAllRead,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)
}
