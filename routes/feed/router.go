package feed

import (
	"camposocial/feed"
	"camposocial/uapi"

	"github.com/go-chi/chi/v5"
)

// Router serves the paginated feeds.
type Router struct {
	Feed *feed.Store
}

func (b Router) Tag() (string, string) {
	return "Feed", "Cursor-paginated feeds of yaps: global, per user and per hashtag."
}

func (b Router) Routes(r *chi.Mux) {
	uapi.Route{
		Pattern: "/feed",
		OpId:    "get_feed",
		Method:  uapi.GET,
		Docs:    GlobalDocs,
		Handler: b.Global,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/{id}/yaps",
		OpId:    "get_user_feed",
		Method:  uapi.GET,
		Docs:    UserFeedDocs,
		Handler: b.UserFeed,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/hashtags/{name}/yaps",
		OpId:    "get_hashtag_feed",
		Method:  uapi.GET,
		Docs:    HashtagFeedDocs,
		Handler: b.HashtagFeed,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)
}
