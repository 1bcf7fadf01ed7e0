package middleware

import (
	"net/http"
	"strings"

	"github.com/mediamorph/mediamorph/internal/ctxkeys"
)

// Decision is the access gate's verdict for one request.
type Decision int

const (
	// DecisionAllow passes the request through to its handler.
	DecisionAllow Decision = iota
	// DecisionRedirectHome sends signed-in users off marketing/auth pages.
	DecisionRedirectHome
	// DecisionRedirectSignIn sends anonymous callers to sign-in.
	DecisionRedirectSignIn
)

const (
	homePath   = "/home"
	signInPath = "/signin"
	apiPrefix  = "/api"
)

// publicRoutes are the pages reachable without a session. Matching is
// exact: sub-paths of a public route are protected.
var publicRoutes = map[string]bool{
	"/":       true,
	"/home":   true,
	"/signin": true,
	"/signup": true,
}

// publicAPIRoutes are the API endpoints reachable without a session.
// Exact match only, so /api/videos/anything stays protected.
var publicAPIRoutes = map[string]bool{
	"/api/videos": true,
}

// gateExemptPrefixes bypass classification entirely: static assets and
// endpoints with their own authentication (signed webhooks).
var gateExemptPrefixes = []string{
	"/assets/",
	"/webhooks/",
}

// Decide classifies a request path given whether the caller is
// authenticated. Malformed paths classify as protected (fail closed).
func Decide(path string, authenticated bool) Decision {
	if path == "" || !strings.HasPrefix(path, "/") {
		if authenticated {
			return DecisionAllow
		}
		return DecisionRedirectSignIn
	}

	isPublic := publicRoutes[path]
	isPublicAPI := publicAPIRoutes[path]

	// Signed-in users have no business on marketing or auth pages.
	if authenticated && isPublic && path != homePath {
		return DecisionRedirectHome
	}

	if !authenticated {
		if !isPublic && !isPublicAPI {
			return DecisionRedirectSignIn
		}
		if strings.HasPrefix(path, apiPrefix) && !isPublicAPI {
			return DecisionRedirectSignIn
		}
	}

	return DecisionAllow
}

// Gate applies the access decision to every request before any handler.
// It expects AuthMiddleware to have resolved the identity already.
func Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		for _, prefix := range gateExemptPrefixes {
			if strings.HasPrefix(path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}
		// Static files (anything with an extension) are served as-is.
		if strings.Contains(path, ".") {
			next.ServeHTTP(w, r)
			return
		}

		authenticated := ctxkeys.Identity(r.Context()) != nil

		switch Decide(path, authenticated) {
		case DecisionRedirectHome:
			http.Redirect(w, r, homePath, http.StatusTemporaryRedirect)
		case DecisionRedirectSignIn:
			http.Redirect(w, r, signInPath, http.StatusTemporaryRedirect)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
