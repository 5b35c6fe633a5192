package shared

type AuthHeader struct {
	Token string `json:"token"`
}

type ApiErrorType string

const (
	ApiErrorTypeInvalidToken       ApiErrorType = "invalid_token"
	ApiErrorTypeAuth               ApiErrorType = "auth"
	ApiErrorTypeValidation         ApiErrorType = "validation"
	ApiErrorTypeStore              ApiErrorType = "store"
	ApiErrorTypeAuthorization      ApiErrorType = "authorization"
	ApiErrorTypeNotFound           ApiErrorType = "not_found"
	ApiErrorTypeListingUnavailable ApiErrorType = "listing_unavailable"

	ApiErrorTypeOther ApiErrorType = "other"
)

type ApiError struct {
	Type   ApiErrorType `json:"type"`
	Status int          `json:"status"`
	Msg    string       `json:"msg"`
}

// ActionResult is returned by every mutating endpoint. Failures carry the message
// that should be rendered next to the form or action that caused them.
type ActionResult struct {
	Success   bool         `json:"success"`
	Id        string       `json:"id,omitempty"`
	Error     string       `json:"error,omitempty"`
	ErrorType ApiErrorType `json:"errorType,omitempty"`
}
