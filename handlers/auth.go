// handlers/auth.go
package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gewnthar/visabulletin/config"
)

const corsAllowHeaders = "authorization, x-client-info, apikey, content-type, x-sync-token"

// withCORS adds the permissive CORS headers to every response and answers
// preflight requests with an empty 200.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authorized accepts a bearer token equal to the service-role or anon key,
// or an X-Sync-Token equal to the sync secret. Unset credentials never match.
func authorized(r *http.Request, auth config.AuthConfig) bool {
	if token, ok := bearerToken(r); ok {
		if tokenEquals(token, auth.ServiceRoleKey) || tokenEquals(token, auth.AnonKey) {
			return true
		}
	}
	if token := r.Header.Get("X-Sync-Token"); token != "" {
		return tokenEquals(token, auth.SyncSecret)
	}
	return false
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return h[len(prefix):], true
}

func tokenEquals(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
