package posts

import (
	"context"
	"log"
	"strings"
	"time"

	"postboard/authz"
	"postboard/db"
	"postboard/store"
	"postboard/types"
)

const (
	msgSignInRequired   = "You must be signed in to do that"
	msgTitleRequired    = "Title is required"
	msgContentRequired  = "Content is required"
	msgPostIdRequired   = "Post id is required"
	msgNotOwnedOnEdit   = "Post not found or you do not have permission to edit it"
	msgNotOwnedOnDelete = "Post not found or you do not have permission to delete it"
	msgNoEditPermission = "You do not have permission to edit this post"
)

type Workflow struct {
	store store.ContentStore
	now   func() time.Time
}

func NewWorkflow(s store.ContentStore) *Workflow {
	return &Workflow{store: s, now: time.Now}
}

// WithClock replaces the time source used for created_at and updated_at.
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	return w
}

func validateContent(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return types.NewValidationError(msgTitleRequired)
	}
	if strings.TrimSpace(content) == "" {
		return types.NewValidationError(msgContentRequired)
	}
	return nil
}

func (w *Workflow) Create(ctx context.Context, identity *db.Identity, title, content string) (*db.Post, error) {
	if identity == nil {
		return nil, types.NewAuthError(msgSignInRequired)
	}

	if err := validateContent(title, content); err != nil {
		return nil, err
	}

	now := w.now()
	post, err := w.store.InsertPost(ctx, identity.Id, &db.Post{
		Title:     title,
		Content:   content,
		AuthorId:  identity.Id,
		CreatedAt: now,
		UpdatedAt: now,
	})

	if err != nil {
		log.Printf("Error creating post for %s: %v\n", identity.Id, err)
		return nil, types.NewStoreError("Error creating post", err)
	}

	log.Printf("Created post %s for %s\n", post.Id, identity.Id)

	return post, nil
}

// ownedBy is the write predicate for update and delete. A post the identity does not
// own matches zero rows, exactly like a post that does not exist.
func ownedBy(identity *db.Identity, postId string) db.PostFilter {
	return db.PostFilter{Id: postId, AuthorId: identity.Id}
}

func (w *Workflow) Update(ctx context.Context, identity *db.Identity, postId, title, content string) error {
	if identity == nil {
		return types.NewAuthError(msgSignInRequired)
	}

	if postId == "" {
		return types.NewValidationError(msgPostIdRequired)
	}

	if err := validateContent(title, content); err != nil {
		return err
	}

	rowsAffected, err := w.store.UpdatePosts(ctx, db.PostPatch{
		Title:     &title,
		Content:   &content,
		UpdatedAt: w.now(),
	}, ownedBy(identity, postId))

	if err != nil {
		log.Printf("Error updating post %s: %v\n", postId, err)
		return types.NewStoreError("Error updating post", err)
	}

	if rowsAffected == 0 {
		log.Printf("Update of post %s by %s matched no rows\n", postId, identity.Id)
		return types.NewAuthorizationError(msgNotOwnedOnEdit)
	}

	log.Printf("Updated post %s\n", postId)

	return nil
}

func (w *Workflow) Delete(ctx context.Context, identity *db.Identity, postId string) error {
	if identity == nil {
		return types.NewAuthError(msgSignInRequired)
	}

	if postId == "" {
		return types.NewValidationError(msgPostIdRequired)
	}

	rowsAffected, err := w.store.DeletePosts(ctx, ownedBy(identity, postId))

	if err != nil {
		log.Printf("Error deleting post %s: %v\n", postId, err)
		return types.NewStoreError("Error deleting post", err)
	}

	if rowsAffected == 0 {
		log.Printf("Delete of post %s by %s matched no rows\n", postId, identity.Id)
		return types.NewAuthorizationError(msgNotOwnedOnDelete)
	}

	log.Printf("Deleted post %s\n", postId)

	return nil
}

// LoadForEdit returns the post when identity may edit it.
func (w *Workflow) LoadForEdit(ctx context.Context, identity *db.Identity, postId string) (*db.Post, error) {
	if identity == nil {
		return nil, types.NewAuthError(msgSignInRequired)
	}

	res, err := w.store.SelectPosts(ctx, db.PostQuery{
		Filter: db.PostFilter{Id: postId},
		Range:  &db.PostRange{Limit: 1},
	})
	if err != nil {
		log.Printf("Error loading post %s for edit: %v\n", postId, err)
		return nil, types.NewStoreError("Error loading post", err)
	}

	if len(res.Rows) == 0 {
		return nil, types.NewNotFoundError("Post not found")
	}

	post := res.Rows[0].Post

	if authz.Decide(identity, &post) != authz.DecisionPermitted {
		return nil, types.NewAuthorizationError(msgNoEditPermission)
	}

	return &post, nil
}
