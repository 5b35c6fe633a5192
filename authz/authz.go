package authz

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"postboard/db"
)

const SignInPath = "/login"

// RequiresSession is the static route policy: creating a post and editing any post
// need a session, everything else is public.
func RequiresSession(path string) bool {
	path = strings.TrimSuffix(path, "/")

	if path == "/new-post" {
		return true
	}

	if strings.HasPrefix(path, "/posts/") && strings.HasSuffix(path, "/edit") {
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/posts/"), "/edit")
		return id != "" && !strings.Contains(id, "/")
	}

	return false
}

// CanMutate is true iff the identity is present and authored the post.
func CanMutate(identity *db.Identity, post *db.Post) bool {
	if identity == nil || post == nil {
		return false
	}
	return identity.Id != "" && identity.Id == post.AuthorId
}

type Decision int

const (
	DecisionRedirectToLogin Decision = iota
	DecisionUnauthorized
	DecisionPermitted
)

func (d Decision) String() string {
	switch d {
	case DecisionRedirectToLogin:
		return "redirect_to_login"
	case DecisionUnauthorized:
		return "unauthorized"
	case DecisionPermitted:
		return "permitted"
	}
	return "unknown"
}

// Decide walks a viewer approaching a protected action on post:
// no session -> login, session but not the author -> unauthorized, otherwise permitted.
func Decide(identity *db.Identity, post *db.Post) Decision {
	if identity == nil {
		return DecisionRedirectToLogin
	}
	if !CanMutate(identity, post) {
		return DecisionUnauthorized
	}
	return DecisionPermitted
}

// SessionResolver reports whether the request carries an active session.
type SessionResolver interface {
	HasSession(r *http.Request) (bool, error)
}

type SessionResolverFunc func(r *http.Request) (bool, error)

func (f SessionResolverFunc) HasSession(r *http.Request) (bool, error) {
	return f(r)
}

// Guard returns middleware that redirects requests for protected routes to the sign-in
// entry point when they carry no session. The wrapped handler never runs in that case.
// Ownership is not checked here; that happens again where the mutation is made.
func Guard(resolver SessionResolver, signInPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !RequiresSession(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ok, err := resolver.HasSession(r)
			if err != nil {
				log.Printf("Error resolving session for %s: %v\n", r.URL.Path, err)
				ok = false
			}

			if !ok {
				log.Printf("No session for protected route %s, redirecting to %s\n", r.URL.Path, signInPath)
				http.Redirect(w, r, SignInURL(signInPath, r.URL.RequestURI()), http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func SignInURL(signInPath, next string) string {
	if next == "" {
		return signInPath
	}
	return signInPath + "?next=" + url.QueryEscape(next)
}
