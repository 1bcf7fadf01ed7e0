package middleware

import (
	"net/http"
	"strings"

	"github.com/mediamorph/mediamorph/internal/ctxkeys"
	"github.com/mediamorph/mediamorph/internal/service"
)

// AuthMiddleware resolves the caller's identity from the identity
// provider's session token and adds it to the context if valid.
// Requests without a valid token continue anonymously; the access gate
// decides what anonymous callers may reach.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				// No session, continue without identity
				next.ServeHTTP(w, r)
				return
			}

			identity, err := authService.VerifySession(token)
			if err != nil {
				// Invalid token, clear cookie and continue
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionToken extracts the session token from the cookie or, for API
// clients, from the Authorization header.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(service.SessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	return ""
}
