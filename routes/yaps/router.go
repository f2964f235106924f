package yaps

import (
	"camposocial/blob"
	"camposocial/content"
	"camposocial/uapi"

	"github.com/go-chi/chi/v5"
)

// Router serves yaps, replies, likes and hashtag follows.
type Router struct {
	Content *content.Store
	Uploads blob.Uploader
}

func (b Router) Tag() (string, string) {
	return "Yaps", "Short posts, their reply threads, likes and hashtags."
}

func (b Router) Routes(r *chi.Mux) {
	uapi.Route{
		Pattern: "/yaps",
		OpId:    "create_yap",
		Method:  uapi.POST,
		Docs:    CreateYapDocs,
		Handler: b.CreateYap,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/yaps/{id}",
		OpId:    "get_yap",
		Method:  uapi.GET,
		Docs:    GetYapDocs,
		Handler: b.GetYap,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/yaps/{id}",
		OpId:    "delete_yap",
		Method:  uapi.DELETE,
		Docs:    DeleteYapDocs,
		Handler: b.DeleteYap,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/yaps/{id}/replies",
		OpId:    "create_reply",
		Method:  uapi.POST,
		Docs:    CreateReplyDocs,
		Handler: b.CreateReply,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/replies/{id}",
		OpId:    "delete_reply",
		Method:  uapi.DELETE,
		Docs:    DeleteReplyDocs,
		Handler: b.DeleteReply,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/yaps/{id}/likes",
		OpId:    "like_yap",
		Method:  uapi.PUT,
		Docs:    LikeYapDocs,
		Handler: b.LikeYap,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/yaps/{id}/likes",
		OpId:    "unlike_yap",
		Method:  uapi.DELETE,
		Docs:    UnlikeYapDocs,
		Handler: b.UnlikeYap,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/replies/{id}/likes",
		OpId:    "like_reply",
		Method:  uapi.PUT,
		Docs:    LikeReplyDocs,
		Handler: b.LikeReply,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/replies/{id}/likes",
		OpId:    "unlike_reply",
		Method:  uapi.DELETE,
		Docs:    UnlikeReplyDocs,
		Handler: b.UnlikeReply,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/yaps/media",
		OpId:    "upload_yap_media",
		Method:  uapi.POST,
		Docs:    UploadMediaDocs,
		Handler: b.UploadMedia,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/hashtags/{name}/follow",
		OpId:    "follow_hashtag",
		Method:  uapi.PUT,
		Docs:    FollowHashtagDocs,
		Handler: b.FollowHashtag,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/hashtags/{name}/follow",
		OpId:    "unfollow_hashtag",
		Method:  uapi.DELETE,
		Docs:    UnfollowHashtagDocs,
		Handler: b.UnfollowHashtag,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/hashtags/@me",
		OpId:    "list_followed_hashtags",
		Method:  uapi.GET,
		Docs:    FollowedHashtagsDocs,
		Handler: b.FollowedHashtags,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/hashtags/trending",
		OpId:    "trending_hashtags",
		Method:  uapi.GET,
		Docs:    TrendingDocs,
		Handler: b.Trending,
	}.Route(r)
}
