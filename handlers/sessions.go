package handlers

import (
	"log"
	"net/http"
	"strings"

	"postboard/db"
	"postboard/hooks"
	"postboard/identity"
	"postboard/shared"
	"postboard/types"
)

// SignInEntryHandler is where the route guard sends requests without a session.
func SignInEntryHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Received request for SignInEntryHandler")

	writeJSON(w, http.StatusOK, shared.SignInEntryResponse{
		SignIn: "/auth/sign_in",
		SignUp: "/auth/sign_up",
		Next:   r.URL.Query().Get("next"),
	})
}

func SignUpHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Received request for SignUpHandler")

	var req shared.SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var fullName *string
	if req.FullName != nil && strings.TrimSpace(*req.FullName) != "" {
		fullName = req.FullName
	}

	ctx := r.Context()

	newIdentity, err := deps.Identity.SignUp(ctx, req.Email, req.Password, identity.Metadata{
		Username: req.Username,
		FullName: fullName,
	})
	if err != nil {
		writeActionError(w, "sign up", err)
		return
	}

	// the new identity has no session yet, so the profile is written with the
	// privileged insert. A taken username is rejected here by the unique constraint.
	profile := &db.Profile{
		Id:       newIdentity.Id,
		Username: req.Username,
		FullName: fullName,
	}
	err = deps.Store.InsertProfilePrivileged(ctx, profile)
	if err != nil {
		writeActionError(w, "create profile", types.NewStoreError("Error creating profile", err))
		return
	}

	if apiErr := hooks.ExecHook(hooks.CreateAccount, hooks.HookParams{Identity: newIdentity, Profile: profile}); apiErr != nil {
		log.Printf("Error in create account hook: %v\n", apiErr.Msg)
		writeApiError(w, *apiErr)
		return
	}

	session, err := deps.Identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		writeActionError(w, "sign in after sign up", err)
		return
	}

	setSessionCookie(w, session)

	log.Println("Successfully signed up", newIdentity.Id)

	writeJSON(w, http.StatusOK, shared.AuthActionResponse{
		ActionResult: shared.ActionResult{Success: true, Id: newIdentity.Id},
		Session:      session.ToApi(),
	})
}

func SignInHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Received request for SignInHandler")

	var req shared.SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := deps.Identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeActionError(w, "sign in", err)
		return
	}

	setSessionCookie(w, session)

	log.Println("Successfully signed in", session.Identity.Id)

	writeJSON(w, http.StatusOK, shared.AuthActionResponse{
		ActionResult: shared.ActionResult{Success: true, Id: session.Identity.Id},
		Session:      session.ToApi(),
	})
}

func SignOutHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Received request for SignOutHandler")

	session := authenticate(w, r)
	if session == nil {
		return
	}

	err := deps.Identity.SignOut(r.Context(), session.Token)
	if err != nil {
		writeActionError(w, "sign out", err)
		return
	}

	clearSessionCookie(w)

	log.Println("Successfully signed out")

	writeJSON(w, http.StatusOK, shared.ActionResult{Success: true})
}

// GetSessionHandler answers the current session, or null when there is none.
func GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Received request for GetSessionHandler")

	session, err := currentSession(r)
	if err != nil {
		apiErr := reportFailure("get session", err)
		writeApiError(w, *apiErr)
		return
	}

	if session == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	writeJSON(w, http.StatusOK, session.ToApi())
}

