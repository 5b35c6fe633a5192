// Package store defines the content store capability the feed and the post workflow
// depend on. db.PostStore implements it over Postgres; MemoryStore implements it in
// process.
package store

import (
	"context"

	"postboard/db"
)

type ContentStore interface {
	// SelectPosts applies the equality filters, the single-column ordering and the
	// offset/limit range. TotalCount is the exact match count, independent of range.
	SelectPosts(ctx context.Context, q db.PostQuery) (*db.PostPage, error)

	// InsertPost is subject to the policy actorId == post.AuthorId.
	InsertPost(ctx context.Context, actorId string, post *db.Post) (*db.Post, error)

	UpdatePosts(ctx context.Context, patch db.PostPatch, filter db.PostFilter) (int64, error)
	DeletePosts(ctx context.Context, filter db.PostFilter) (int64, error)

	// InsertProfile is subject to the policy actorId == profile.Id.
	InsertProfile(ctx context.Context, actorId string, profile *db.Profile) error
	InsertProfilePrivileged(ctx context.Context, profile *db.Profile) error
}

var _ ContentStore = (*db.PostStore)(nil)
var _ ContentStore = (*MemoryStore)(nil)
