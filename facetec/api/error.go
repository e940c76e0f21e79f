package api

import "github.com/gooddollar/facetec-go/models"

// UnexpectedMessage is the generic reason used when the backend replied with
// something the client cannot interpret, or the request failed in transit.
const UnexpectedMessage = "An unexpected issue during the face verification API call"

// EmptyResponseMessage is used when the token endpoint answered without the
// expected token field.
const EmptyResponseMessage = "FaceTec API response is empty"

// Error is the uniform failure type of the verification client. Callers never
// need to distinguish transport from protocol failures; only the presence of
// a parsed Response differs. A nil Response means there is no body to inspect.
type Error struct {
	Message  string
	Response *models.EnrollmentResponse
}

func (e *Error) Error() string { return e.Message }

// NewError builds an Error, substituting the generic message when none given.
func NewError(message string, response *models.EnrollmentResponse) *Error {
	if message == "" {
		message = UnexpectedMessage
	}
	return &Error{Message: message, Response: response}
}
