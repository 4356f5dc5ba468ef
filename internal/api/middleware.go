package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// publicPaths are reachable without a token: liveness, service info and
// the plugin manifest that LobeChat fetches before any tool call.
var publicPaths = map[string]struct{}{
	"/":         {},
	"/health":   {},
	"/manifest": {},
}

// isPublicPath also exempts the jobs UI, which is served to a browser
// and carries no token.
func isPublicPath(path string) bool {
	if _, ok := publicPaths[path]; ok {
		return true
	}
	return path == "/jobs" || strings.HasPrefix(path, "/jobs/")
}

// AuthMiddleware verifies Bearer HS256 tokens on every non-public route.
// An empty secret disables verification.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			_, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil {
				log.Printf("Rejected token: %v", err)
				writeDetail(w, http.StatusUnauthorized, "Invalid authentication token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
