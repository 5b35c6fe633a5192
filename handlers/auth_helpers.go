package handlers

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"postboard/authz"
	"postboard/identity"
	"postboard/shared"
)

// tokenFromRequest reads the session token from the Authorization header
// (Bearer base64(json{"token": ...})) or, failing that, from the session cookie.
func tokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")

	if authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", errInvalidAuthHeader
		}

		encoded := strings.TrimPrefix(authHeader, "Bearer ")

		bytes, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", errInvalidAuthHeader
		}

		var parsed shared.AuthHeader
		err = json.Unmarshal(bytes, &parsed)
		if err != nil {
			return "", errInvalidAuthHeader
		}

		return parsed.Token, nil
	}

	cookie, err := r.Cookie(deps.CookieName)
	if err == nil {
		return cookie.Value, nil
	}

	return "", nil
}

type authHeaderError string

func (e authHeaderError) Error() string { return string(e) }

const errInvalidAuthHeader = authHeaderError("invalid auth header")

// EncodeAuthHeader builds the Authorization header value for token.
func EncodeAuthHeader(token string) string {
	bytes, _ := json.Marshal(shared.AuthHeader{Token: token})
	return "Bearer " + base64.StdEncoding.EncodeToString(bytes)
}

// currentSession resolves the request's session. A missing or invalid token is not an
// error; it just yields no session.
func currentSession(r *http.Request) (*identity.Session, error) {
	token, err := tokenFromRequest(r)
	if err != nil {
		log.Printf("Ignoring auth: %v\n", err)
		return nil, nil
	}
	if token == "" {
		return nil, nil
	}

	return deps.Identity.CurrentSession(r.Context(), token)
}

// optionalSession logs lookup failures and treats them as anonymous.
func optionalSession(r *http.Request) *identity.Session {
	session, err := currentSession(r)
	if err != nil {
		log.Printf("Error getting session: %v\n", err)
		return nil
	}
	return session
}

// requireSession redirects to the sign-in entry point when there is no session.
func requireSession(w http.ResponseWriter, r *http.Request) *identity.Session {
	session := optionalSession(r)
	if session == nil {
		log.Println("no session, redirecting to sign in")
		http.Redirect(w, r, authz.SignInURL(authz.SignInPath, r.URL.RequestURI()), http.StatusTemporaryRedirect)
		return nil
	}
	return session
}

// authenticate answers 401 when there is no session, for endpoints that aren't
// navigated to.
func authenticate(w http.ResponseWriter, r *http.Request) *identity.Session {
	log.Println("authenticating request")

	session := optionalSession(r)
	if session == nil {
		writeApiError(w, shared.ApiError{
			Type:   shared.ApiErrorTypeInvalidToken,
			Status: http.StatusUnauthorized,
			Msg:    "Invalid or missing session",
		})
		return nil
	}

	return session
}

// SessionResolver lets the route guard check for a session.
var SessionResolver = authz.SessionResolverFunc(func(r *http.Request) (bool, error) {
	session, err := currentSession(r)
	if err != nil {
		return false, err
	}
	return session != nil, nil
})

func setSessionCookie(w http.ResponseWriter, session *identity.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     deps.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   deps.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     deps.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   deps.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
