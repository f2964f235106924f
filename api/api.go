package api

import (
	"net/http"

	docs "camposocial/doclib"
	"camposocial/state"
	"camposocial/types"
	"camposocial/uapi"

	"github.com/google/uuid"
)

// Authorize resolves the caller from the identity header the auth
// collaborator sets in front of this API. Routes that declare Auth get the
// caller's user id in AuthData; the id is trusted but checked to exist.
func Authorize(r uapi.Route, req *http.Request) (uapi.AuthData, uapi.HttpResponse, bool) {
	if len(r.Auth) == 0 {
		return uapi.AuthData{}, uapi.HttpResponse{}, true
	}

	idStr := req.Header.Get(state.Config.Auth.IdentityHeader)

	if idStr == "" {
		if r.AuthOptional {
			return uapi.AuthData{}, uapi.HttpResponse{}, true
		}

		return uapi.AuthData{}, uapi.DefaultResponse(http.StatusUnauthorized), false
	}

	userID, err := uuid.Parse(idStr)

	if err != nil {
		return uapi.AuthData{}, uapi.DefaultResponse(http.StatusUnauthorized), false
	}

	var count int64
	err = state.Pool.WithContext(req.Context()).Model(&types.User{}).Where("id = ?", userID).Count(&count).Error

	if err != nil || count == 0 {
		return uapi.AuthData{}, uapi.DefaultResponse(http.StatusUnauthorized), false
	}

	return uapi.AuthData{
		TargetType: "user",
		ID:         userID.String(),
		Authorized: true,
	}, uapi.HttpResponse{}, true
}

func Setup() {
	docs.AddSecuritySchema("User", state.Config.Auth.IdentityHeader, "Authenticated user id, set by the identity gateway")

	uapi.SetupState(uapi.UAPIState{
		Logger:    state.Logger,
		Authorize: Authorize,
		AuthTypeMap: map[string]string{
			"user": "User",
		},
		Context: state.Context,
	})
}
