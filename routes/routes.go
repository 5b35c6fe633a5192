package routes

import (
	"net/http"

	"postboard/authz"
	"postboard/handlers"

	"github.com/gorilla/mux"
)

type PostboardHandler func(w http.ResponseWriter, r *http.Request)

func handle(r *mux.Router, path string, handler PostboardHandler) *mux.Route {
	return r.HandleFunc(path, handler)
}

// NewRouter builds the router with every route registered and the session guard in
// front of the protected ones.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	AddRoutes(r)
	return r
}

func AddRoutes(r *mux.Router) {
	r.Use(authz.Guard(handlers.SessionResolver, authz.SignInPath))

	AddHealthRoutes(r)
	AddAuthRoutes(r)
	AddFeedRoutes(r)
	AddPostRoutes(r)
}

func AddHealthRoutes(r *mux.Router) {
	handle(r, "/health", handlers.HealthHandler).Methods("GET")
	handle(r, "/version", handlers.VersionHandler).Methods("GET")
}

func AddAuthRoutes(r *mux.Router) {
	handle(r, authz.SignInPath, handlers.SignInEntryHandler).Methods("GET")

	handle(r, "/auth/sign_up", handlers.SignUpHandler).Methods("POST")
	handle(r, "/auth/sign_in", handlers.SignInHandler).Methods("POST")
	handle(r, "/auth/sign_out", handlers.SignOutHandler).Methods("POST")
	handle(r, "/auth/session", handlers.GetSessionHandler).Methods("GET")
	handle(r, "/auth/events", handlers.SessionEventsHandler).Methods("GET")
}

func AddFeedRoutes(r *mux.Router) {
	handle(r, "/", handlers.GlobalFeedHandler).Methods("GET")
	handle(r, "/global-feed", handlers.GlobalFeedHandler).Methods("GET")
	handle(r, "/my-posts", handlers.MyPostsHandler).Methods("GET")
}

func AddPostRoutes(r *mux.Router) {
	handle(r, "/new-post", handlers.CreatePostHandler).Methods("POST")

	handle(r, "/posts/{postId}", handlers.GetPostHandler).Methods("GET")
	handle(r, "/posts/{postId}/edit", handlers.GetPostForEditHandler).Methods("GET")
	handle(r, "/posts/{postId}/edit", handlers.UpdatePostHandler).Methods("PUT")
	handle(r, "/posts/{postId}/edit", handlers.DeletePostHandler).Methods("DELETE")
}
