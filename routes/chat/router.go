package chat

import (
	"camposocial/blob"
	"camposocial/chat"
	"camposocial/uapi"

	"github.com/go-chi/chi/v5"
)

// Router serves 1:1 messaging between friends.
type Router struct {
	Chat    *chat.Store
	Uploads blob.Uploader
}

func (b Router) Tag() (string, string) {
	return "Chat", "Encrypted 1:1 messaging between friends, with reactions and media."
}

func (b Router) Routes(r *chi.Mux) {
	uapi.Route{
		Pattern: "/chats",
		OpId:    "list_chats",
		Method:  uapi.GET,
		Docs:    ListDocs,
		Handler: b.List,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/chats/{id}/messages",
		OpId:    "send_message",
		Method:  uapi.POST,
		Docs:    SendDocs,
		Handler: b.Send,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/chats/{id}/messages",
		OpId:    "get_thread",
		Method:  uapi.GET,
		Docs:    ThreadDocs,
		Handler: b.Thread,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/messages/{id}",
		OpId:    "edit_message",
		Method:  uapi.PATCH,
		Docs:    EditDocs,
		Handler: b.Edit,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/messages/{id}",
		OpId:    "delete_message",
		Method:  uapi.DELETE,
		Docs:    DeleteDocs,
		Handler: b.Delete,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/messages/{id}/reactions",
		OpId:    "react_to_message",
		Method:  uapi.PUT,
		Docs:    ReactDocs,
		Handler: b.React,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/messages/{id}/reactions",
		OpId:    "remove_reaction",
		Method:  uapi.DELETE,
		Docs:    RemoveReactionDocs,
		Handler: b.RemoveReaction,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/chats/media",
		OpId:    "upload_chat_media",
		Method:  uapi.POST,
		Docs:    UploadMediaDocs,
		Handler: b.UploadMedia,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)
}
