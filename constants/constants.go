package constants

const (
	ResourceNotFound    = `{"kind":"not_found","message":"We couldn't find this resource anywhere!"}`
	EndpointNotFound    = `{"kind":"not_found","message":"This endpoint doesn't exist, check the path and try again!"}`
	BadRequest          = `{"kind":"validation","message":"The request is malformed, check the payload and try again!"}`
	Forbidden           = `{"kind":"unauthorized","message":"You're not allowed to touch this resource!"}`
	Unauthorized        = `{"kind":"unauthorized","message":"You're not authorized, did you forget a token somewhere?"}`
	Conflict            = `{"kind":"conflict","message":"That would clash with something that already exists!"}`
	InternalServerError = `{"kind":"internal","message":"Something went wrong on our end!"}`
	MethodNotAllowed    = `{"kind":"validation","message":"That method is not allowed for this endpoint!"}`
	BodyRequired        = `{"kind":"validation","message":"A body is required for this endpoint!"}`
)
