package feed

import (
	"net/http"
	"strconv"

	docs "camposocial/doclib"
	"camposocial/feed"
	"camposocial/uapi"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func actor(d uapi.RouteData) uuid.UUID {
	return uuid.MustParse(d.Auth.ID)
}

func pageParams() []docs.Parameter {
	return []docs.Parameter{
		{
			Name:        "cursor",
			In:          "query",
			Description: "Opaque cursor from a previous page's next_cursor. Omit for the first page.",
			Schema:      map[string]any{"type": "string"},
		},
		{
			Name:        "limit",
			In:          "query",
			Description: "Page size (default 20, max 50).",
			Schema:      map[string]any{"type": "integer"},
		},
	}
}

func pageQuery(r *http.Request) (string, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return r.URL.Query().Get("cursor"), limit
}

func GlobalDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Feed",
		Description: "Returns one page of the global feed, newest first. Pages are keyset-anchored so concurrent posting never duplicates or skips yaps.",
		Params:      pageParams(),
		Resp:        feed.Page{},
	}
}

func (b Router) Global(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	cursor, limit := pageQuery(r)

	page, err := b.Feed.Fetch(d.Context, actor(d), cursor, limit)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   page,
	}
}

func UserFeedDocs() *docs.Doc {
	params := append(pageParams(), docs.Parameter{
		Name:        "id",
		In:          "path",
		Description: "The author whose yaps to page through.",
		Required:    true,
		Schema:      map[string]any{"type": "string", "format": "uuid"},
	})

	return &docs.Doc{
		Summary:     "Get User Feed",
		Description: "Returns one page of a single user's yaps, newest first.",
		Params:      params,
		Resp:        feed.Page{},
	}
}

func (b Router) UserFeed(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	author, err := uuid.Parse(chi.URLParam(r, "id"))

	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	cursor, limit := pageQuery(r)

	page, ferr := b.Feed.FetchUser(d.Context, actor(d), author, cursor, limit)

	if ferr != nil {
		return uapi.ErrorResponse(ferr)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   page,
	}
}

func HashtagFeedDocs() *docs.Doc {
	params := append(pageParams(), docs.Parameter{
		Name:        "name",
		In:          "path",
		Description: "The hashtag name, without the # prefix.",
		Required:    true,
		Schema:      map[string]any{"type": "string"},
	})

	return &docs.Doc{
		Summary:     "Get Hashtag Feed",
		Description: "Returns one page of the yaps linked to a hashtag, newest first.",
		Params:      params,
		Resp:        feed.Page{},
	}
}

func (b Router) HashtagFeed(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	cursor, limit := pageQuery(r)

	page, err := b.Feed.FetchHashtag(d.Context, actor(d), chi.URLParam(r, "name"), cursor, limit)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   page,
	}
}
