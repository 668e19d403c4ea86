package response

import "net/http"

// Normalize wraps a handler's successful result and returns the transport
// status to send with it. An Envelope passes through untouched; its own
// non-zero code overrides the 200 transport status.
func Normalize(result any) (int, Envelope) {
	switch r := result.(type) {
	case Envelope:
		return passthroughStatus(r), r
	case *Envelope:
		if r != nil {
			return passthroughStatus(*r), *r
		}
		return http.StatusOK, OK(nil)
	case StatusCode:
		return http.StatusOK, OK(nil)
	default:
		return http.StatusOK, OK(result)
	}
}

func passthroughStatus(env Envelope) int {
	if env.Code != 0 {
		return env.Code
	}
	return http.StatusOK
}
