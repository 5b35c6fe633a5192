package authz

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"postboard/db"

	"github.com/stretchr/testify/assert"
)

func TestRequiresSession(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/new-post", true},
		{"/new-post/", true},
		{"/posts/123/edit", true},
		{"/posts/abc-def/edit/", true},
		{"/posts//edit", false},
		{"/posts/a/b/edit", false},
		{"/posts/123", false},
		{"/", false},
		{"/global-feed", false},
		{"/my-posts", false},
		{"/login", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RequiresSession(tt.path), tt.path)
	}
}

func TestCanMutate(t *testing.T) {
	post := &db.Post{Id: "p", AuthorId: "a"}

	assert.True(t, CanMutate(&db.Identity{Id: "a"}, post))
	assert.False(t, CanMutate(&db.Identity{Id: "b"}, post))
	assert.False(t, CanMutate(nil, post))
	assert.False(t, CanMutate(&db.Identity{Id: "a"}, nil))
	assert.False(t, CanMutate(&db.Identity{}, &db.Post{}))
}

func TestDecide(t *testing.T) {
	post := &db.Post{Id: "p", AuthorId: "a"}

	assert.Equal(t, DecisionRedirectToLogin, Decide(nil, post))
	assert.Equal(t, DecisionUnauthorized, Decide(&db.Identity{Id: "b"}, post))
	assert.Equal(t, DecisionPermitted, Decide(&db.Identity{Id: "a"}, post))
	assert.Equal(t, "unauthorized", DecisionUnauthorized.String())
}

func TestGuard(t *testing.T) {
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})

	serve := func(hasSession bool, err error, method, path string) *httptest.ResponseRecorder {
		reached = false
		resolver := SessionResolverFunc(func(r *http.Request) (bool, error) {
			return hasSession, err
		})
		rec := httptest.NewRecorder()
		Guard(resolver, SignInPath)(next).ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	t.Run("public route without session", func(t *testing.T) {
		rec := serve(false, nil, "GET", "/global-feed")
		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("protected route without session", func(t *testing.T) {
		rec := serve(false, nil, "POST", "/new-post")
		assert.False(t, reached)
		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "/login?next=%2Fnew-post", rec.Header().Get("Location"))
	})

	t.Run("resolver error counts as no session", func(t *testing.T) {
		rec := serve(true, errors.New("down"), "GET", "/posts/1/edit")
		assert.False(t, reached)
		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	})

	t.Run("protected route with session", func(t *testing.T) {
		rec := serve(true, nil, "DELETE", "/posts/1/edit")
		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSignInURL(t *testing.T) {
	assert.Equal(t, "/login", SignInURL("/login", ""))
	assert.Equal(t, "/login?next=%2Fposts%2F1%2Fedit%3Fx%3D1", SignInURL("/login", "/posts/1/edit?x=1"))
}
