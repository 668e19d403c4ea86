// Package response defines the uniform response envelope and the two
// post-request paths: success normalization and failure classification.
package response

import "net/http"

// Message keys for fixed failure responses.
const (
	MsgNotFound      = "app.common.exception.notfound"
	MsgAuthorization = "app.common.exception.AuthorizationException"
	MsgForbidden     = "app.common.exception.forbidden"
	MsgNoData        = "app.common.exception.no-data"
	MsgServerError   = "app.common.exception.server-error"
	MsgUnknownError  = "app.common.exception.unknown-error"
)

// Envelope is the body of every response, failures included.
type Envelope struct {
	Code      int            `json:"code"`
	Success   bool           `json:"success"`
	Message   string         `json:"message,omitempty"`
	Payload   any            `json:"payload,omitempty"`
	Variables map[string]any `json:"variables,omitempty"`
}

// StatusCode is a bare status marker a handler returns when it has no payload.
type StatusCode int

// OK builds a success envelope around payload.
func OK(payload any) Envelope {
	return Envelope{Code: http.StatusOK, Success: true, Payload: payload}
}

// Fail builds a failure envelope with a message key and its variables.
func Fail(code int, message string, variables map[string]any) Envelope {
	return Envelope{Code: code, Message: message, Variables: variables}
}

// FailWithPayload builds a failure envelope carrying structured data and no message.
func FailWithPayload(code int, payload any) Envelope {
	return Envelope{Code: code, Payload: payload}
}
