package shared

import "time"

type Profile struct {
	Id       string  `json:"id"`
	Username string  `json:"username"`
	FullName *string `json:"fullName"`
}

type Post struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorId  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type FeedItem struct {
	Post
	Author     *Profile `json:"author"`
	AuthorName string   `json:"authorName"`
}

type FeedState string

const (
	FeedStateOk          FeedState = "ok"
	FeedStateEmpty       FeedState = "empty"
	FeedStateUnavailable FeedState = "unavailable"
)

type Pagination struct {
	Page     int   `json:"page"`
	Previous *int  `json:"previous"`
	Next     *int  `json:"next"`
	Pages    []int `json:"pages"`
}

type FeedPage struct {
	State      FeedState   `json:"state"`
	Items      []*FeedItem `json:"items"`
	TotalCount int         `json:"totalCount"`
	TotalPages int         `json:"totalPages"`
	Sort       string      `json:"sort"`
	Pagination Pagination  `json:"pagination"`
	Error      string      `json:"error,omitempty"`

	// set when the viewer has a session, so clients can offer "create a post"
	CanCreate bool `json:"canCreate"`
}

type PostResponse struct {
	FeedItem
	IsAuthor bool `json:"isAuthor"`
}

type Identity struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}

type SessionEventKind string

const (
	SessionEventSignedUp  SessionEventKind = "signed_up"
	SessionEventSignedIn  SessionEventKind = "signed_in"
	SessionEventSignedOut SessionEventKind = "signed_out"
)

type SessionEventMessage struct {
	Kind       SessionEventKind `json:"kind"`
	IdentityId string           `json:"identityId"`
	At         time.Time        `json:"at"`
}
