package auth

import (
	"net/http"
	"strings"
)

// Middleware guards operator endpoints with Bearer session tokens.
type Middleware struct {
	signer *Signer
}

// NewMiddleware constructs the middleware.
func NewMiddleware(signer *Signer) *Middleware {
	return &Middleware{signer: signer}
}

// Wrap rejects requests without a valid token.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil || m.signer == nil {
			http.Error(w, "auth not configured", http.StatusServiceUnavailable)
			return
		}
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		if _, err := m.signer.Parse(token); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
