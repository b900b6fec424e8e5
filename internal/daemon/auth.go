package daemon

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// requireToken guards an endpoint with the configured bearer token and fails
// requests with the server's JSON error envelope. A blank token leaves the
// API open, which is the expected setup for a localhost bind.
func (s *apiServer) requireToken(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	expected := []byte(token)
	return func(w http.ResponseWriter, r *http.Request) {
		presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			s.writeError(w, http.StatusUnauthorized, "missing or invalid API token")
			return
		}
		next(w, r)
	}
}
