package handlers

import (
	"log"
	"net/http"

	"postboard/authz"
	"postboard/hooks"
	"postboard/shared"
	"postboard/types"

	"github.com/gorilla/mux"
)

// writeMutationError renders a failed mutation. Losing the session between the route
// guard and the write sends the caller back to sign in; everything else is an inline
// result.
func writeMutationError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if types.IsKind(err, types.KindAuth) {
		log.Printf("%s: %v, redirecting to sign in\n", op, err)
		http.Redirect(w, r, authz.SignInURL(authz.SignInPath, r.URL.RequestURI()), http.StatusTemporaryRedirect)
		return
	}
	writeActionError(w, op, err)
}

func CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Received request for CreatePostHandler")

	session := requireSession(w, r)
	if session == nil {
		return
	}

	var req shared.CreatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := deps.Posts.Create(r.Context(), session.Identity, req.Title, req.Content)
	if err != nil {
		writeMutationError(w, r, "create post", err)
		return
	}

	if apiErr := hooks.ExecHook(hooks.DidCreatePost, hooks.HookParams{Identity: session.Identity, Post: post}); apiErr != nil {
		log.Printf("Error in did create post hook: %v\n", apiErr.Msg)
	}

	log.Println("Successfully created post", post.Id)

	writeJSON(w, http.StatusCreated, shared.ActionResult{Success: true, Id: post.Id})
}

// GetPostForEditHandler loads a post into the edit form. Visitors who don't own the
// post get the unauthorized state instead of the post.
func GetPostForEditHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Received request for GetPostForEditHandler")

	session := requireSession(w, r)
	if session == nil {
		return
	}

	postId := mux.Vars(r)["postId"]

	post, err := deps.Posts.LoadForEdit(r.Context(), session.Identity, postId)
	if err != nil {
		if types.IsKind(err, types.KindAuth) {
			writeMutationError(w, r, "load post for edit", err)
			return
		}
		apiErr := reportFailure("load post for edit", err)
		writeApiError(w, *apiErr)
		return
	}

	writeJSON(w, http.StatusOK, post.ToApi())
}

func UpdatePostHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Received request for UpdatePostHandler")

	session := requireSession(w, r)
	if session == nil {
		return
	}

	postId := mux.Vars(r)["postId"]

	var req shared.UpdatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := deps.Posts.Update(r.Context(), session.Identity, postId, req.Title, req.Content)
	if err != nil {
		writeMutationError(w, r, "update post", err)
		return
	}

	if apiErr := hooks.ExecHook(hooks.DidUpdatePost, hooks.HookParams{Identity: session.Identity, PostId: postId}); apiErr != nil {
		log.Printf("Error in did update post hook: %v\n", apiErr.Msg)
	}

	log.Println("Successfully updated post", postId)

	writeJSON(w, http.StatusOK, shared.ActionResult{Success: true, Id: postId})
}

// DeletePostHandler deletes permanently. Asking the user to confirm is up to the client.
func DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Received request for DeletePostHandler")

	session := requireSession(w, r)
	if session == nil {
		return
	}

	postId := mux.Vars(r)["postId"]

	err := deps.Posts.Delete(r.Context(), session.Identity, postId)
	if err != nil {
		writeMutationError(w, r, "delete post", err)
		return
	}

	if apiErr := hooks.ExecHook(hooks.DidDeletePost, hooks.HookParams{Identity: session.Identity, PostId: postId}); apiErr != nil {
		log.Printf("Error in did delete post hook: %v\n", apiErr.Msg)
	}

	log.Println("Successfully deleted post", postId)

	writeJSON(w, http.StatusOK, shared.ActionResult{Success: true, Id: postId})
}
