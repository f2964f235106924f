package friends

import (
	"camposocial/graph"
	"camposocial/uapi"

	"github.com/go-chi/chi/v5"
)

// Router serves the friendship graph: requests, accept/reject, block and
// the friend lists built from accepted edges.
type Router struct {
	Graph *graph.Store
}

func (b Router) Tag() (string, string) {
	return "Friends", "Friend requests, blocking and the friend lists built from them."
}

func (b Router) Routes(r *chi.Mux) {
	uapi.Route{
		Pattern: "/users/{id}/friend-requests",
		OpId:    "send_friend_request",
		Method:  uapi.POST,
		Docs:    SendRequestDocs,
		Handler: b.SendRequest,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/{id}/friend-requests/accept",
		OpId:    "accept_friend_request",
		Method:  uapi.POST,
		Docs:    AcceptDocs,
		Handler: b.Accept,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/{id}/friend-requests/reject",
		OpId:    "reject_friend_request",
		Method:  uapi.POST,
		Docs:    RejectDocs,
		Handler: b.Reject,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/{id}/block",
		OpId:    "block_user",
		Method:  uapi.POST,
		Docs:    BlockDocs,
		Handler: b.Block,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/{id}/block",
		OpId:    "unblock_user",
		Method:  uapi.DELETE,
		Docs:    UnblockDocs,
		Handler: b.Unblock,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/{id}/friends",
		OpId:    "remove_friend",
		Method:  uapi.DELETE,
		Docs:    RemoveDocs,
		Handler: b.Remove,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/friends",
		OpId:    "list_friends",
		Method:  uapi.GET,
		Docs:    ListDocs,
		Handler: b.List,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/friend-requests",
		OpId:    "list_friend_requests",
		Method:  uapi.GET,
		Docs:    PendingDocs,
		Handler: b.Pending,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/{id}/mutual-friends",
		OpId:    "mutual_friend_count",
		Method:  uapi.GET,
		Docs:    MutualCountDocs,
		Handler: b.MutualCount,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)
}
