package db

import (
	"time"

	"postboard/shared"
)

// The models below are server-side records. Models that reach clients have a ToApi()
// method converting them to the corresponding type in shared.

type Identity struct {
	Id           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	UserMetadata JSONMap   `db:"user_metadata"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (identity *Identity) ToApi() *shared.Identity {
	return &shared.Identity{
		Id:    identity.Id,
		Email: identity.Email,
	}
}

type AuthToken struct {
	Id         string     `db:"id"`
	IdentityId string     `db:"identity_id"`
	TokenHash  string     `db:"token_hash"`
	CreatedAt  time.Time  `db:"created_at"`
	DeletedAt  *time.Time `db:"deleted_at"`
}

type Profile struct {
	Id        string    `db:"id"`
	Username  string    `db:"username"`
	FullName  *string   `db:"full_name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (profile *Profile) ToApi() *shared.Profile {
	return &shared.Profile{
		Id:       profile.Id,
		Username: profile.Username,
		FullName: profile.FullName,
	}
}

type Post struct {
	Id        string    `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	AuthorId  string    `db:"author_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (post *Post) ToApi() *shared.Post {
	return &shared.Post{
		Id:        post.Id,
		Title:     post.Title,
		Content:   post.Content,
		AuthorId:  post.AuthorId,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// PostWithAuthor is a post joined to its author's profile. Author is nil when the
// join finds no profile.
type PostWithAuthor struct {
	Post
	Author *Profile
}
