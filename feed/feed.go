// Package feed builds the paginated, sortable post listings shown by the global feed
// and the "my posts" view.
package feed

import (
	"context"
	"errors"
	"log"
	"math"
	"strconv"
	"strings"

	"postboard/db"
	"postboard/store"
	"postboard/types"
)

const PageSize = 9

type Sort string

const (
	SortLatest Sort = "latest"
	SortOldest Sort = "oldest"
)

// ParseSort falls back to SortLatest for empty or unrecognized values.
func ParseSort(s string) Sort {
	if Sort(strings.ToLower(strings.TrimSpace(s))) == SortOldest {
		return SortOldest
	}
	return SortLatest
}

// ParsePage returns 1 for empty, non-numeric or non-positive input. There is no
// upper bound: a number too large for an int is the last representable page.
func ParsePage(s string) int {
	page, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange && page > 0 {
			return page
		}
		return 1
	}
	if page < 1 {
		return 1
	}
	return page
}

// Scope is Global() or OwnedBy(id). The zero value is the global scope; an owned
// scope with an empty id matches nothing.
type Scope struct {
	owned   bool
	ownerId string
}

func Global() Scope {
	return Scope{}
}

func OwnedBy(identityId string) Scope {
	return Scope{owned: true, ownerId: identityId}
}

func (s Scope) IsGlobal() bool {
	return !s.owned
}

func (s Scope) OwnerId() string {
	return s.ownerId
}

type Item struct {
	db.PostWithAuthor
}

// AuthorName prefers the full name, then the username.
func (i *Item) AuthorName() string {
	if i.Author == nil {
		return "Unknown author"
	}
	if i.Author.FullName != nil && *i.Author.FullName != "" {
		return *i.Author.FullName
	}
	if i.Author.Username != "" {
		return i.Author.Username
	}
	return "Unknown author"
}

type Listing struct {
	Items      []*Item
	TotalCount int
	TotalPages int
	Page       int
	Sort       Sort
}

// IsEmpty reports the "no content yet" state: nothing matches the scope at all.
// A page past the end has no items but is not empty.
func (l *Listing) IsEmpty() bool {
	return l.TotalCount == 0
}

func TotalPages(totalCount int) int {
	if totalCount <= 0 {
		return 0
	}
	return (totalCount + PageSize - 1) / PageSize
}

type Engine struct {
	store store.ContentStore
}

func NewEngine(s store.ContentStore) *Engine {
	return &Engine{store: s}
}

func (e *Engine) List(ctx context.Context, scope Scope, sort Sort, page int) (*Listing, error) {
	if sort != SortOldest {
		sort = SortLatest
	}
	if page < 1 {
		page = 1
	}

	if scope.owned && scope.ownerId == "" {
		return &Listing{Items: []*Item{}, Page: page, Sort: sort}, nil
	}

	q := db.PostQuery{
		Filter: db.PostFilter{AuthorId: scope.ownerId},
		Order:  &db.PostOrder{Column: "created_at", Ascending: sort == SortOldest},
		Range:  &db.PostRange{Offset: pageOffset(page), Limit: PageSize},
	}

	res, err := e.store.SelectPosts(ctx, q)
	if err != nil {
		log.Printf("Error listing posts (owner: %q, sort: %s, page: %d): %v\n", scope.ownerId, sort, page, err)
		return nil, types.NewListingUnavailableError(err)
	}

	listing := &Listing{
		Items:      make([]*Item, 0, len(res.Rows)),
		TotalCount: res.TotalCount,
		TotalPages: TotalPages(res.TotalCount),
		Page:       page,
		Sort:       sort,
	}

	for _, row := range res.Rows {
		listing.Items = append(listing.Items, &Item{PostWithAuthor: *row})
	}

	return listing, nil
}

// pageOffset saturates instead of overflowing, so a huge page reads past the end.
func pageOffset(page int) int {
	if page-1 > (math.MaxInt-PageSize)/PageSize {
		return math.MaxInt - PageSize
	}
	return (page - 1) * PageSize
}

type PostView struct {
	Item
	IsAuthor bool
}

// Get loads a single post for display. viewerId may be empty.
func (e *Engine) Get(ctx context.Context, viewerId, postId string) (*PostView, error) {
	res, err := e.store.SelectPosts(ctx, db.PostQuery{
		Filter: db.PostFilter{Id: postId},
		Range:  &db.PostRange{Limit: 1},
	})
	if err != nil {
		log.Printf("Error loading post %s: %v\n", postId, err)
		return nil, types.NewStoreError("Error loading post", err)
	}

	if len(res.Rows) == 0 {
		return nil, types.NewNotFoundError("Post not found")
	}

	row := res.Rows[0]

	return &PostView{
		Item:     Item{PostWithAuthor: *row},
		IsAuthor: viewerId != "" && viewerId == row.AuthorId,
	}, nil
}
