package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PostStore is the Postgres-backed content store.
type PostStore struct {
	conn *sqlx.DB
}

func NewPostStore(conn *sqlx.DB) *PostStore {
	return &PostStore{conn: conn}
}

type postRow struct {
	Post
	ProfileId        *string    `db:"profile_id"`
	ProfileUsername  *string    `db:"profile_username"`
	ProfileFullName  *string    `db:"profile_full_name"`
	ProfileCreatedAt *time.Time `db:"profile_created_at"`
	ProfileUpdatedAt *time.Time `db:"profile_updated_at"`
}

func (r *postRow) toPostWithAuthor() *PostWithAuthor {
	res := &PostWithAuthor{Post: r.Post}
	if r.ProfileId != nil {
		res.Author = &Profile{
			Id:       *r.ProfileId,
			FullName: r.ProfileFullName,
		}
		if r.ProfileUsername != nil {
			res.Author.Username = *r.ProfileUsername
		}
		if r.ProfileCreatedAt != nil {
			res.Author.CreatedAt = *r.ProfileCreatedAt
		}
		if r.ProfileUpdatedAt != nil {
			res.Author.UpdatedAt = *r.ProfileUpdatedAt
		}
	}
	return res
}

const selectPostColumns = `p.id, p.title, p.content, p.author_id, p.created_at, p.updated_at,
  pr.id AS profile_id, pr.username AS profile_username, pr.full_name AS profile_full_name,
  pr.created_at AS profile_created_at, pr.updated_at AS profile_updated_at`

// whereClause builds the conjunction of the filter's equality predicates. ok is false
// when the filter can't match anything (ids are uuids, so a malformed id matches no
// row rather than failing the query).
func whereClause(filter PostFilter, alias string, args []interface{}) (clause string, resArgs []interface{}, ok bool) {
	var preds []string
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}

	if filter.Id != "" {
		if _, err := uuid.Parse(filter.Id); err != nil {
			return "", args, false
		}
		args = append(args, filter.Id)
		preds = append(preds, fmt.Sprintf("%sid = $%d", prefix, len(args)))
	}

	if filter.AuthorId != "" {
		if _, err := uuid.Parse(filter.AuthorId); err != nil {
			return "", args, false
		}
		args = append(args, filter.AuthorId)
		preds = append(preds, fmt.Sprintf("%sauthor_id = $%d", prefix, len(args)))
	}

	if len(preds) == 0 {
		return "", args, true
	}

	return " WHERE " + strings.Join(preds, " AND "), args, true
}

func (s *PostStore) SelectPosts(ctx context.Context, q PostQuery) (*PostPage, error) {
	if err := ValidateOrder(q.Order); err != nil {
		return nil, err
	}
	if err := ValidateRange(q.Range); err != nil {
		return nil, err
	}

	where, args, ok := whereClause(q.Filter, "p", nil)
	if !ok {
		return &PostPage{}, nil
	}

	page := &PostPage{}

	// count and rows are read from the same snapshot so TotalCount matches the window
	err := WithSnapshot(ctx, s.conn, "select posts", func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &page.TotalCount, "SELECT COUNT(*) FROM posts p"+where, args...)
		if err != nil {
			return errors.Wrap(err, "error counting posts")
		}

		query := "SELECT " + selectPostColumns + " FROM posts p LEFT JOIN profiles pr ON pr.id = p.author_id" + where

		if q.Order != nil {
			dir := "DESC"
			if q.Order.Ascending {
				dir = "ASC"
			}
			query += fmt.Sprintf(" ORDER BY p.%s %s, p.id %s", q.Order.Column, dir, dir)
		}

		rowArgs := args
		if q.Range != nil {
			rowArgs = append(rowArgs, q.Range.Limit, q.Range.Offset)
			query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(rowArgs)-1, len(rowArgs))
		}

		var rows []*postRow
		err = tx.SelectContext(ctx, &rows, query, rowArgs...)
		if err != nil {
			return errors.Wrap(err, "error selecting posts")
		}

		page.Rows = make([]*PostWithAuthor, 0, len(rows))
		for _, row := range rows {
			page.Rows = append(page.Rows, row.toPostWithAuthor())
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return page, nil
}

func (s *PostStore) InsertPost(ctx context.Context, actorId string, post *Post) (*Post, error) {
	if actorId == "" || actorId != post.AuthorId {
		return nil, ErrPolicyViolation
	}

	res := *post
	err := s.conn.QueryRowxContext(ctx,
		"INSERT INTO posts (title, content, author_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		post.Title, post.Content, post.AuthorId, post.CreatedAt, post.UpdatedAt,
	).Scan(&res.Id)

	if err != nil {
		return nil, errors.Wrap(err, "error inserting post")
	}

	return &res, nil
}

func (s *PostStore) UpdatePosts(ctx context.Context, patch PostPatch, filter PostFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, errors.New("refusing to update posts without a filter")
	}

	var sets []string
	var args []interface{}

	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Content != nil {
		args = append(args, *patch.Content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	args = append(args, patch.UpdatedAt)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	where, args, ok := whereClause(filter, "", args)
	if !ok {
		return 0, nil
	}

	res, err := s.conn.ExecContext(ctx, "UPDATE posts SET "+strings.Join(sets, ", ")+where, args...)
	if err != nil {
		return 0, errors.Wrap(err, "error updating posts")
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "error getting rows affected")
	}

	return rowsAffected, nil
}

func (s *PostStore) DeletePosts(ctx context.Context, filter PostFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, errors.New("refusing to delete posts without a filter")
	}

	where, args, ok := whereClause(filter, "", nil)
	if !ok {
		return 0, nil
	}

	res, err := s.conn.ExecContext(ctx, "DELETE FROM posts"+where, args...)
	if err != nil {
		return 0, errors.Wrap(err, "error deleting posts")
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "error getting rows affected")
	}

	return rowsAffected, nil
}
