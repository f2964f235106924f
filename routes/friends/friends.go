package friends

import (
	"net/http"

	docs "camposocial/doclib"
	"camposocial/graph"
	"camposocial/types"
	"camposocial/uapi"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func idParam(desc string) docs.Parameter {
	return docs.Parameter{
		Name:        "id",
		In:          "path",
		Description: desc,
		Required:    true,
		Schema:      map[string]any{"type": "string", "format": "uuid"},
	}
}

// pathID parses the {id} path param, returning a bad-request response when
// it is not a uuid.
func pathID(r *http.Request) (uuid.UUID, uapi.HttpResponse, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))

	if err != nil {
		return uuid.Nil, uapi.DefaultResponse(http.StatusBadRequest), false
	}

	return id, uapi.HttpResponse{}, true
}

func actor(d uapi.RouteData) uuid.UUID {
	return uuid.MustParse(d.Auth.ID)
}

func SendRequestDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Send Friend Request",
		Description: "Sends a friend request to the given user. Fails if any relationship already exists between the pair.",
		Params:      []docs.Parameter{idParam("The user to send the request to.")},
		Resp:        types.Friendship{},
	}
}

func (b Router) SendRequest(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	target, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	edge, err := b.Graph.SendRequest(d.Context, actor(d), target)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   edge,
	}
}

func AcceptDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Accept Friend Request",
		Description: "Accepts the pending friend request the given user sent to you and notifies them.",
		Params:      []docs.Parameter{idParam("The user whose request to accept.")},
		Resp:        types.Response{},
	}
}

func (b Router) Accept(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	requester, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Graph.Accept(d.Context, actor(d), requester); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func RejectDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Reject Friend Request",
		Description: "Rejects the pending friend request the given user sent to you. The request is deleted; they may send another.",
		Params:      []docs.Parameter{idParam("The user whose request to reject.")},
		Resp:        types.Response{},
	}
}

func (b Router) Reject(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	requester, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Graph.Reject(d.Context, actor(d), requester); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func BlockDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Block User",
		Description: "Blocks the given user, severing any existing friendship or pending request.",
		Params:      []docs.Parameter{idParam("The user to block.")},
		Resp:        types.Response{},
	}
}

func (b Router) Block(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	target, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Graph.Block(d.Context, actor(d), target); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func UnblockDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Unblock User",
		Description: "Unblocks the given user. The relationship returns to a pending request, not to friendship.",
		Params:      []docs.Parameter{idParam("The user to unblock.")},
		Resp:        types.Response{},
	}
}

func (b Router) Unblock(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	target, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Graph.Unblock(d.Context, actor(d), target); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func RemoveDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Remove Friend",
		Description: "Removes an existing friendship with the given user.",
		Params:      []docs.Parameter{idParam("The friend to remove.")},
		Resp:        types.Response{},
	}
}

func (b Router) Remove(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	friend, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Graph.Remove(d.Context, actor(d), friend); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func ListDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "List Friends",
		Description: "Lists your friends.",
		Params:      []docs.Parameter{},
		Resp:        []types.User{},
	}
}

func (b Router) List(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	friends, err := b.Graph.Friends(d.Context, actor(d))

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   friends,
	}
}

func PendingDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "List Friend Requests",
		Description: "Lists the pending friend requests addressed to you.",
		Params:      []docs.Parameter{},
		Resp:        []graph.PendingRequest{},
	}
}

func (b Router) Pending(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	pending, err := b.Graph.PendingFor(d.Context, actor(d))

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   pending,
	}
}

func MutualCountDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Mutual Friend Count",
		Description: "Counts the friends you share with the given user.",
		Params:      []docs.Parameter{idParam("The user to compare friend lists with.")},
		Resp:        map[string]int{},
	}
}

func (b Router) MutualCount(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	other, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	count, err := b.Graph.MutualCount(d.Context, actor(d), other)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   map[string]int{"mutual_count": count},
	}
}
