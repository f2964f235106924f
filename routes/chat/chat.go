package chat

import (
	"net/http"

	"camposocial/blob"
	"camposocial/chat"
	docs "camposocial/doclib"
	"camposocial/types"
	"camposocial/uapi"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

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

func ListDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "List Chats",
		Description: "Lists your friends with the latest message exchanged with each, most recent conversation first.",
		Params:      []docs.Parameter{},
		Resp:        []chat.Conversation{},
	}
}

func (b Router) List(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	convos, err := b.Chat.List(d.Context, actor(d))

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   convos,
	}
}

type MediaRef struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

type SendRequest struct {
	EncryptedContent string     `json:"encrypted_content"`
	ReplyToID        *uuid.UUID `json:"reply_to_id,omitempty"`
	Media            []MediaRef `json:"media,omitempty"`
}

func SendDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Send Message",
		Description: "Sends a message to a friend. Content must be encrypted client-side; the server stores ciphertext only.",
		Params:      []docs.Parameter{idParam("The friend to message.")},
		Req:         SendRequest{},
		Resp:        types.Message{},
	}
}

func (b Router) Send(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	recipient, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	var req SendRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	media := make([]chat.MediaInput, 0, len(req.Media))

	for _, ref := range req.Media {
		media = append(media, chat.MediaInput{URL: ref.URL, Type: ref.Type})
	}

	msg, err := b.Chat.Send(d.Context, actor(d), recipient, req.EncryptedContent, req.ReplyToID, media)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   msg,
	}
}

func ThreadDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Thread",
		Description: "Returns one page of your conversation with a friend, newest first.",
		Params: []docs.Parameter{
			idParam("The friend whose conversation to fetch."),
			{
				Name:        "cursor",
				In:          "query",
				Description: "Opaque cursor from a previous page's next_cursor.",
				Schema:      map[string]any{"type": "string"},
			},
		},
		Resp: chat.Page{},
	}
}

func (b Router) Thread(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	other, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	page, err := b.Chat.Thread(d.Context, actor(d), other, r.URL.Query().Get("cursor"))

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   page,
	}
}

type EditRequest struct {
	EncryptedContent string `json:"encrypted_content"`
}

func EditDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Edit Message",
		Description: "Replaces the ciphertext of a message you sent.",
		Params:      []docs.Parameter{idParam("The message to edit.")},
		Req:         EditRequest{},
		Resp:        types.Response{},
	}
}

func (b Router) Edit(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	var req EditRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	if err := b.Chat.Edit(d.Context, actor(d), id, req.EncryptedContent); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func DeleteDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Message",
		Description: "Deletes a message you sent. The message keeps its place in the thread with the content removed.",
		Params:      []docs.Parameter{idParam("The message to delete.")},
		Resp:        types.Response{},
	}
}

func (b Router) Delete(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Chat.Delete(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

type ReactRequest struct {
	ReactionType string `json:"reaction_type"`
}

func ReactDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "React To Message",
		Description: "Adds your reaction to a message in one of your conversations. One reaction per message.",
		Params:      []docs.Parameter{idParam("The message to react to.")},
		Req:         ReactRequest{},
		Resp:        types.Response{},
	}
}

func (b Router) React(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	var req ReactRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	if err := b.Chat.React(d.Context, actor(d), id, req.ReactionType); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func RemoveReactionDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Remove Reaction",
		Description: "Removes your reaction from a message.",
		Params:      []docs.Parameter{idParam("The message to remove your reaction from.")},
		Resp:        types.Response{},
	}
}

func (b Router) RemoveReaction(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, resp, ok := pathID(r)

	if !ok {
		return resp
	}

	if err := b.Chat.RemoveReaction(d.Context, actor(d), id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func UploadMediaDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Upload Chat Media",
		Description: "Uploads an image or video as a multipart form with a 'file' field, returning the URL to attach to a message.",
		Params:      []docs.Parameter{},
		Resp:        MediaRef{},
	}
}

func (b Router) UploadMedia(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	file, header, err := r.FormFile("file")

	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	defer file.Close()

	mediaType := blob.MediaType(header.Filename)

	if mediaType == "" {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	key := blob.MessageKey(d.Auth.ID, header.Filename)

	url, err := b.Uploads.Upload(d.Context, key, header.Header.Get("Content-Type"), file)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   MediaRef{URL: url, Type: mediaType},
	}
}
