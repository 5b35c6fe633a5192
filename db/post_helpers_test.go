package db

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postColumns = []string{
	"id", "title", "content", "author_id", "created_at", "updated_at",
	"profile_id", "profile_username", "profile_full_name", "profile_created_at", "profile_updated_at",
}

func newMockStore(t *testing.T) (*PostStore, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDb.Close() })
	return NewPostStore(sqlx.NewDb(mockDb, "postgres")), mock
}

func TestSelectPostsPage(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	authorId := uuid.New().String()
	orphanAuthor := uuid.New().String()
	postId := uuid.New().String()
	orphanId := uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM posts p WHERE p.author_id = $1")).
		WithArgs(authorId).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN profiles pr ON pr.id = p.author_id WHERE p.author_id = $1 ORDER BY p.created_at DESC, p.id DESC LIMIT $2 OFFSET $3")).
		WithArgs(authorId, 9, 9).
		WillReturnRows(sqlmock.NewRows(postColumns).
			AddRow(postId, "t", "c", authorId, now, now, authorId, "ada", nil, now, now).
			AddRow(orphanId, "t2", "c2", orphanAuthor, now, now, nil, nil, nil, nil, nil))
	mock.ExpectCommit()

	page, err := s.SelectPosts(context.Background(), PostQuery{
		Filter: PostFilter{AuthorId: authorId},
		Order:  &PostOrder{Column: "created_at"},
		Range:  &PostRange{Offset: 9, Limit: 9},
	})
	require.NoError(t, err)

	assert.Equal(t, 11, page.TotalCount)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, postId, page.Rows[0].Id)
	if assert.NotNil(t, page.Rows[0].Author) {
		assert.Equal(t, "ada", page.Rows[0].Author.Username)
		assert.Nil(t, page.Rows[0].Author.FullName)
	}
	assert.Nil(t, page.Rows[1].Author)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectPostsAscendingWithoutRange(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM posts p")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY p.created_at ASC, p.id ASC")).
		WillReturnRows(sqlmock.NewRows(postColumns))
	mock.ExpectCommit()

	page, err := s.SelectPosts(context.Background(), PostQuery{Order: &PostOrder{Column: "created_at", Ascending: true}})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
	assert.Empty(t, page.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectPostsMalformedIdMatchesNothing(t *testing.T) {
	s, mock := newMockStore(t)

	page, err := s.SelectPosts(context.Background(), PostQuery{Filter: PostFilter{Id: "not-a-uuid"}})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
	assert.Empty(t, page.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectPostsRejectsUnknownColumn(t *testing.T) {
	s, mock := newMockStore(t)

	_, err := s.SelectPosts(context.Background(), PostQuery{Order: &PostOrder{Column: "id; DROP TABLE posts"}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectPostsRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM posts p")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := s.SelectPosts(context.Background(), PostQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error counting posts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertPost(t *testing.T) {
	s, mock := newMockStore(t)
	authorId := uuid.New().String()
	postId := uuid.New().String()
	now := time.Now()

	_, err := s.InsertPost(context.Background(), uuid.New().String(), &Post{AuthorId: authorId})
	assert.ErrorIs(t, err, ErrPolicyViolation)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts (title, content, author_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id")).
		WithArgs("Hello", "World", authorId, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(postId))

	post, err := s.InsertPost(context.Background(), authorId, &Post{
		Title: "Hello", Content: "World", AuthorId: authorId, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, postId, post.Id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePostsOwnershipPredicate(t *testing.T) {
	s, mock := newMockStore(t)
	postId, authorId := uuid.New().String(), uuid.New().String()
	title, content := "x", "y"
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE posts SET title = $1, content = $2, updated_at = $3 WHERE id = $4 AND author_id = $5")).
		WithArgs(title, content, now, postId, authorId).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := s.UpdatePosts(context.Background(), PostPatch{Title: &title, Content: &content, UpdatedAt: now}, PostFilter{Id: postId, AuthorId: authorId})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.UpdatePosts(context.Background(), PostPatch{Title: &title}, PostFilter{})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePosts(t *testing.T) {
	s, mock := newMockStore(t)
	postId, authorId := uuid.New().String(), uuid.New().String()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM posts WHERE id = $1 AND author_id = $2")).
		WithArgs(postId, authorId).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := s.DeletePosts(context.Background(), PostFilter{Id: postId, AuthorId: authorId})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeletePosts(context.Background(), PostFilter{Id: "nope", AuthorId: authorId})
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertProfileUsernameTaken(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New().String()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles (id, username, full_name) VALUES ($1, $2, $3)")).
		WithArgs(id, "ada", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "profiles_username_key", Message: "duplicate key"})

	err := s.InsertProfilePrivileged(context.Background(), &Profile{Id: id, Username: "ada"})
	require.Error(t, err)
	assert.True(t, IsNonUniqueErr(err))
	assert.Contains(t, err.Error(), `username "ada" is already taken`)

	err = s.InsertProfile(context.Background(), uuid.New().String(), &Profile{Id: id, Username: "ada"})
	assert.ErrorIs(t, err, ErrPolicyViolation)

	assert.NoError(t, mock.ExpectationsWereMet())
}
