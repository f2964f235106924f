package users

import (
	"net/http"

	"camposocial/blob"
	docs "camposocial/doclib"
	"camposocial/types"
	"camposocial/uapi"
	"camposocial/users"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func actor(d uapi.RouteData) uuid.UUID {
	return uuid.MustParse(d.Auth.ID)
}

type SignupRequest struct {
	Username  string `json:"username" validate:"required,nospaces,min=3,max=32" msg:"Username must be 3-32 characters without spaces"`
	Email     string `json:"email" validate:"required,email" msg:"A valid email is required"`
	Password  string `json:"password" validate:"required,min=8" msg:"Password must be at least 8 characters"`
	FirstName string `json:"first_name" validate:"required,notblank" msg:"First name is required"`
	LastName  string `json:"last_name" validate:"required,notblank" msg:"Last name is required"`
	Category  string `json:"category"`
	PhoneNo   string `json:"phone_no"`
	PublicKey string `json:"public_key"`
}

var signupErrors = uapi.CompileValidationErrors(SignupRequest{})

func SignupDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Signup",
		Description: "Registers a new account. Usernames and emails are unique across the network.",
		Params:      []docs.Parameter{},
		Req:         SignupRequest{},
		Resp:        types.User{},
	}
}

func (b Router) Signup(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var req SignupRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	if err := b.Validator.Struct(req); err != nil {
		return uapi.ValidatorErrorResponse(signupErrors, err.(validator.ValidationErrors))
	}

	user, err := b.Users.Signup(d.Context, users.SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Category:  req.Category,
		PhoneNo:   req.PhoneNo,
		PublicKey: req.PublicKey,
	})

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   user,
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required" msg:"Username is required"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

var loginErrors = uapi.CompileValidationErrors(LoginRequest{})

func LoginDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Login",
		Description: "Verifies a username and password, returning the account on success. Session issuance is handled by the identity gateway in front of this API.",
		Params:      []docs.Parameter{},
		Req:         LoginRequest{},
		Resp:        types.User{},
	}
}

func (b Router) Login(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var req LoginRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	if err := b.Validator.Struct(req); err != nil {
		return uapi.ValidatorErrorResponse(loginErrors, err.(validator.ValidationErrors))
	}

	user, err := b.Users.CheckPassword(d.Context, req.Username, req.Password)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   user,
	}
}

func SelfDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Self",
		Description: "Returns your own account.",
		Params:      []docs.Parameter{},
		Resp:        types.User{},
	}
}

func (b Router) Self(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	user, err := b.Users.Get(d.Context, actor(d))

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   user,
	}
}

func ProfileDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get User Profile",
		Description: "Returns a user's profile with friend counts, your mutual friends with them and your relation to them.",
		Params: []docs.Parameter{
			{
				Name:        "id",
				In:          "path",
				Description: "The user whose profile to fetch.",
				Required:    true,
				Schema:      map[string]any{"type": "string", "format": "uuid"},
			},
		},
		Resp: users.Profile{},
	}
}

func (b Router) Profile(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, err := uuid.Parse(chi.URLParam(r, "id"))

	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	profile, perr := b.Users.GetProfile(d.Context, actor(d), id)

	if perr != nil {
		return uapi.ErrorResponse(perr)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   profile,
	}
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	PhoneNo     *string `json:"phone_no,omitempty"`
	Category    *string `json:"category,omitempty"`
	PublicKey   *string `json:"public_key,omitempty"`
}

func UpdateProfileDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Update Profile",
		Description: "Updates the provided fields on your profile; omitted fields are left alone.",
		Params:      []docs.Parameter{},
		Req:         UpdateProfileRequest{},
		Resp:        types.Response{},
	}
}

func (b Router) UpdateProfile(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var req UpdateProfileRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	err := b.Users.UpdateProfile(d.Context, actor(d), users.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		PhoneNo:     req.PhoneNo,
		Category:    req.Category,
		PublicKey:   req.PublicKey,
	})

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func DeleteDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Account",
		Description: "Deletes your account, friendships and notifications.",
		Params:      []docs.Parameter{},
		Resp:        types.Response{},
	}
}

func (b Router) Delete(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	if err := b.Users.Delete(d.Context, actor(d)); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func UploadAvatarDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Upload Avatar",
		Description: "Uploads a new avatar image as a multipart form with a 'file' field and sets it on your profile.",
		Params:      []docs.Parameter{},
		Resp:        types.Response{},
	}
}

func (b Router) UploadAvatar(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	file, header, err := r.FormFile("file")

	if err != nil {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	defer file.Close()

	mediaType := blob.MediaType(header.Filename)

	if mediaType != "image" {
		return uapi.DefaultResponse(http.StatusBadRequest)
	}

	user := actor(d)
	key := blob.ProfileKey(user.String(), header.Filename)

	url, err := b.Uploads.Upload(d.Context, key, header.Header.Get("Content-Type"), file)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	uerr := b.Users.UpdateProfile(d.Context, user, users.ProfileUpdate{Avatar: &url})

	if uerr != nil {
		return uapi.ErrorResponse(uerr)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   map[string]string{"avatar": url},
	}
}

func DirectoryDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Member Directory",
		Description: "Lists network members with your mutual friend count and relation to each.",
		Params:      []docs.Parameter{},
		Resp:        []users.DirectoryEntry{},
	}
}

func (b Router) Directory(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	entries, err := b.Users.Directory(d.Context, actor(d), 50)

	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json:   entries,
	}
}
