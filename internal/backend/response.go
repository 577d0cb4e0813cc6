package backend

import (
	"net/http"
	"time"
)

// Response is the outcome of one request that reached the server.
// No schema is enforced on Body; see the Decode* helpers.
type Response struct {
	Status   int
	Header   http.Header
	Body     []byte
	Duration time.Duration
}

// Snippet returns at most n bytes of the body for log lines.
func (r Response) Snippet(n int) string {
	if len(r.Body) <= n {
		return string(r.Body)
	}
	return string(r.Body[:n])
}

// StatusIn reports whether the status is one of accepted.
func (r Response) StatusIn(accepted ...int) bool {
	for _, s := range accepted {
		if r.Status == s {
			return true
		}
	}
	return false
}
