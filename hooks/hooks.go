package hooks

import (
	"sync"

	"postboard/db"
	"postboard/shared"
)

const (
	HealthCheck   = "health_check"
	CreateAccount = "create_account"
	DidCreatePost = "did_create_post"
	DidUpdatePost = "did_update_post"
	DidDeletePost = "did_delete_post"
)

type HookParams struct {
	Identity *db.Identity
	Profile  *db.Profile
	Post     *db.Post
	PostId   string
}

// A hook returning an error aborts the request that triggered it, except for the
// Did* hooks, which run after the change is made and can only be logged.
type Hook func(params HookParams) *shared.ApiError

var (
	mu    sync.RWMutex
	hooks = make(map[string]Hook)
)

func RegisterHook(name string, hook Hook) {
	mu.Lock()
	defer mu.Unlock()
	hooks[name] = hook
}

func UnregisterHook(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(hooks, name)
}

func ExecHook(name string, params HookParams) *shared.ApiError {
	mu.RLock()
	hook, ok := hooks[name]
	mu.RUnlock()

	if !ok {
		return nil
	}
	return hook(params)
}
