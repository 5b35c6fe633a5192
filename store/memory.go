package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"postboard/db"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MemoryStore keeps posts and profiles in maps. It enforces the same policies and
// unique constraints as the Postgres schema.
type MemoryStore struct {
	mu       sync.Mutex
	posts    map[string]*db.Post
	profiles map[string]*db.Profile

	// FailWith, when set, is returned by every call.
	FailWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts:    make(map[string]*db.Post),
		profiles: make(map[string]*db.Profile),
	}
}

func matches(post *db.Post, filter db.PostFilter) bool {
	if filter.Id != "" && post.Id != filter.Id {
		return false
	}
	if filter.AuthorId != "" && post.AuthorId != filter.AuthorId {
		return false
	}
	return true
}

func less(a, b *db.Post, column string) (bool, bool) {
	switch column {
	case "updated_at":
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt), true
		}
	case "title":
		if a.Title != b.Title {
			return a.Title < b.Title, true
		}
	default:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt), true
		}
	}
	return false, false
}

func (s *MemoryStore) SelectPosts(ctx context.Context, q db.PostQuery) (*db.PostPage, error) {
	if err := db.ValidateOrder(q.Order); err != nil {
		return nil, err
	}
	if err := db.ValidateRange(q.Range); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}

	var matched []*db.Post
	for _, post := range s.posts {
		if matches(post, q.Filter) {
			matched = append(matched, post)
		}
	}

	if q.Order != nil {
		order := *q.Order
		sort.Slice(matched, func(i, j int) bool {
			a, b := matched[i], matched[j]
			if !order.Ascending {
				a, b = b, a
			}
			if res, ok := less(a, b, order.Column); ok {
				return res
			}
			return a.Id < b.Id
		})
	}

	page := &db.PostPage{TotalCount: len(matched)}

	window := matched
	if q.Range != nil {
		start := q.Range.Offset
		if start > len(window) {
			start = len(window)
		}
		end := start + q.Range.Limit
		if end > len(window) {
			end = len(window)
		}
		window = window[start:end]
	}

	page.Rows = make([]*db.PostWithAuthor, 0, len(window))
	for _, post := range window {
		row := &db.PostWithAuthor{Post: *post}
		if profile, ok := s.profiles[post.AuthorId]; ok {
			p := *profile
			row.Author = &p
		}
		page.Rows = append(page.Rows, row)
	}

	return page, nil
}

func (s *MemoryStore) InsertPost(ctx context.Context, actorId string, post *db.Post) (*db.Post, error) {
	if actorId == "" || actorId != post.AuthorId {
		return nil, db.ErrPolicyViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}

	res := *post
	res.Id = uuid.New().String()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	if res.UpdatedAt.IsZero() {
		res.UpdatedAt = res.CreatedAt
	}

	stored := res
	s.posts[res.Id] = &stored

	return &res, nil
}

func (s *MemoryStore) UpdatePosts(ctx context.Context, patch db.PostPatch, filter db.PostFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, fmt.Errorf("refusing to update posts without a filter")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return 0, s.FailWith
	}

	var n int64
	for _, post := range s.posts {
		if !matches(post, filter) {
			continue
		}
		if patch.Title != nil {
			post.Title = *patch.Title
		}
		if patch.Content != nil {
			post.Content = *patch.Content
		}
		post.UpdatedAt = patch.UpdatedAt
		n++
	}

	return n, nil
}

func (s *MemoryStore) DeletePosts(ctx context.Context, filter db.PostFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, fmt.Errorf("refusing to delete posts without a filter")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return 0, s.FailWith
	}

	var n int64
	for id, post := range s.posts {
		if matches(post, filter) {
			delete(s.posts, id)
			n++
		}
	}

	return n, nil
}

func (s *MemoryStore) InsertProfile(ctx context.Context, actorId string, profile *db.Profile) error {
	if actorId == "" || actorId != profile.Id {
		return db.ErrPolicyViolation
	}
	return s.InsertProfilePrivileged(ctx, profile)
}

func (s *MemoryStore) InsertProfilePrivileged(ctx context.Context, profile *db.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}

	if _, ok := s.profiles[profile.Id]; ok {
		return &pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "profiles_pkey"`, Constraint: "profiles_pkey"}
	}
	for _, existing := range s.profiles {
		if existing.Username == profile.Username {
			return &pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "profiles_username_key"`, Constraint: "profiles_username_key"}
		}
	}

	p := *profile
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.profiles[p.Id] = &p

	return nil
}

// RemoveProfile deletes a profile without touching its posts, leaving them orphaned.
func (s *MemoryStore) RemoveProfile(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, id)
}
