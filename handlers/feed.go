package handlers

import (
	"log"
	"net/http"

	"postboard/feed"
	"postboard/shared"

	"github.com/gorilla/mux"
)

func feedItemToApi(item *feed.Item) *shared.FeedItem {
	res := &shared.FeedItem{
		Post:       *item.Post.ToApi(),
		AuthorName: item.AuthorName(),
	}
	if item.Author != nil {
		res.Author = item.Author.ToApi()
	}
	return res
}

func writeListing(w http.ResponseWriter, r *http.Request, scope feed.Scope, canCreate bool) {
	query := r.URL.Query()
	sort := feed.ParseSort(query.Get("sort"))
	page := feed.ParsePage(query.Get("page"))

	listing, err := deps.Feed.List(r.Context(), scope, sort, page)
	if err != nil {
		apiErr := reportFailure("list posts", err)
		writeJSON(w, apiErr.Status, shared.FeedPage{
			State:      shared.FeedStateUnavailable,
			Items:      []*shared.FeedItem{},
			Sort:       string(sort),
			Pagination: shared.Pagination{Page: page},
			Error:      apiErr.Msg,
			CanCreate:  canCreate,
		})
		return
	}

	res := shared.FeedPage{
		State:      shared.FeedStateOk,
		Items:      make([]*shared.FeedItem, 0, len(listing.Items)),
		TotalCount: listing.TotalCount,
		TotalPages: listing.TotalPages,
		Sort:       string(listing.Sort),
		CanCreate:  canCreate,
	}

	if listing.IsEmpty() {
		res.State = shared.FeedStateEmpty
	}

	for _, item := range listing.Items {
		res.Items = append(res.Items, feedItemToApi(item))
	}

	p := feed.Paginate(listing)
	res.Pagination = shared.Pagination{
		Page:     p.Page,
		Previous: p.Previous,
		Next:     p.Next,
		Pages:    p.Pages,
	}

	writeJSON(w, http.StatusOK, res)
}

func GlobalFeedHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Received request for GlobalFeedHandler")

	session := optionalSession(r)

	writeListing(w, r, feed.Global(), session != nil)
}

// MyPostsHandler sends visitors without a session to sign in, like the other
// owned-content views.
func MyPostsHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Received request for MyPostsHandler")

	session := requireSession(w, r)
	if session == nil {
		return
	}

	writeListing(w, r, feed.OwnedBy(session.Identity.Id), true)
}

func GetPostHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Received request for GetPostHandler")

	postId := mux.Vars(r)["postId"]

	var viewerId string
	if session := optionalSession(r); session != nil {
		viewerId = session.Identity.Id
	}

	view, err := deps.Feed.Get(r.Context(), viewerId, postId)
	if err != nil {
		apiErr := reportFailure("get post", err)
		writeApiError(w, *apiErr)
		return
	}

	writeJSON(w, http.StatusOK, shared.PostResponse{
		FeedItem: *feedItemToApi(&view.Item),
		IsAuthor: view.IsAuthor,
	})
}

