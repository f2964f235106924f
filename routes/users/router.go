package users

import (
	"camposocial/blob"
	"camposocial/uapi"
	"camposocial/users"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Router serves identity: signup, login, profiles and the member
// directory.
type Router struct {
	Users     *users.Store
	Uploads   blob.Uploader
	Validator *validator.Validate
}

func (b Router) Tag() (string, string) {
	return "Users", "Account signup, login, profiles and the member directory."
}

func (b Router) Routes(r *chi.Mux) {
	uapi.Route{
		Pattern: "/users",
		OpId:    "signup",
		Method:  uapi.POST,
		Docs:    SignupDocs,
		Handler: b.Signup,
	}.Route(r)

	uapi.Route{
		Pattern: "/login",
		OpId:    "login",
		Method:  uapi.POST,
		Docs:    LoginDocs,
		Handler: b.Login,
	}.Route(r)

	uapi.Route{
		Pattern: "/users/@me",
		OpId:    "get_self",
		Method:  uapi.GET,
		Docs:    SelfDocs,
		Handler: b.Self,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/{id}",
		OpId:    "get_user_profile",
		Method:  uapi.GET,
		Docs:    ProfileDocs,
		Handler: b.Profile,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/@me",
		OpId:    "update_profile",
		Method:  uapi.PATCH,
		Docs:    UpdateProfileDocs,
		Handler: b.UpdateProfile,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/@me",
		OpId:    "delete_account",
		Method:  uapi.DELETE,
		Docs:    DeleteDocs,
		Handler: b.Delete,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/users/@me/avatar",
		OpId:    "upload_avatar",
		Method:  uapi.PUT,
		Docs:    UploadAvatarDocs,
		Handler: b.UploadAvatar,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)

	uapi.Route{
		Pattern: "/directory",
		OpId:    "member_directory",
		Method:  uapi.GET,
		Docs:    DirectoryDocs,
		Handler: b.Directory,
		Auth:    []uapi.AuthType{{Type: "user"}},
	}.Route(r)
}
