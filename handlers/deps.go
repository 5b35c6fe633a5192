package handlers

import (
	"postboard/feed"
	"postboard/identity"
	"postboard/posts"
	"postboard/store"
)

type Deps struct {
	Identity identity.Provider
	Store    store.ContentStore
	Feed     *feed.Engine
	Posts    *posts.Workflow

	CookieName   string
	CookieSecure bool
	VersionFile  string
}

var deps *Deps

// Init wires the handlers to their collaborators. It must be called before routes are
// served.
func Init(d *Deps) {
	if d.Feed == nil {
		d.Feed = feed.NewEngine(d.Store)
	}
	if d.Posts == nil {
		d.Posts = posts.NewWorkflow(d.Store)
	}
	if d.CookieName == "" {
		d.CookieName = "postboard_session"
	}
	deps = d
}
