package operation

import "fmt"

// Rejection is a typed failure to extract an operation's input from a
// raw request. It implements error and converts to a (typically
// 400-class) response without aborting the process.
type Rejection struct {
	StatusCode int
	Code       string
	Message    string
}

// NewRejection creates a rejection with the given status, stable error
// code, and human-readable message.
func NewRejection(status int, code, message string) *Rejection {
	return &Rejection{StatusCode: status, Code: code, Message: message}
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	return fmt.Sprintf("request rejected (%s): %s", r.Code, r.Message)
}

// Response converts the rejection into its terminal response.
func (r *Rejection) Response() *Response {
	return JSONResponse(r.StatusCode, map[string]string{
		"error":   r.Code,
		"message": r.Message,
	})
}
