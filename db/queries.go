package db

import (
	"fmt"
	"time"
)

// PostFilter holds equality filters. Empty fields are not applied.
type PostFilter struct {
	Id       string
	AuthorId string
}

func (f PostFilter) IsEmpty() bool {
	return f.Id == "" && f.AuthorId == ""
}

type PostOrder struct {
	Column    string
	Ascending bool
}

type PostRange struct {
	Offset int
	Limit  int
}

type PostQuery struct {
	Filter PostFilter
	Order  *PostOrder
	Range  *PostRange
}

type PostPage struct {
	Rows []*PostWithAuthor

	// exact number of rows matching the filter, independent of Range
	TotalCount int
}

type PostPatch struct {
	Title     *string
	Content   *string
	UpdatedAt time.Time
}

var orderableColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
}

func ValidateOrder(order *PostOrder) error {
	if order == nil {
		return nil
	}
	if !orderableColumns[order.Column] {
		return fmt.Errorf("column %q cannot be used for ordering", order.Column)
	}
	return nil
}

func ValidateRange(rng *PostRange) error {
	if rng == nil {
		return nil
	}
	if rng.Offset < 0 || rng.Limit < 0 {
		return fmt.Errorf("invalid range: offset %d, limit %d", rng.Offset, rng.Limit)
	}
	return nil
}
