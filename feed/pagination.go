package feed

type Pagination struct {
	Page     int
	Previous *int
	Next     *int
	Pages    []int
}

// Paginate returns the links a feed shows under its items. Nothing is shown when
// everything fits on one page.
func Paginate(l *Listing) Pagination {
	p := Pagination{Page: l.Page}

	if l.TotalPages <= 1 {
		return p
	}

	if l.Page > 1 {
		prev := l.Page - 1
		p.Previous = &prev
	}
	if l.Page < l.TotalPages {
		next := l.Page + 1
		p.Next = &next
	}

	p.Pages = make([]int, 0, l.TotalPages)
	for i := 1; i <= l.TotalPages; i++ {
		p.Pages = append(p.Pages, i)
	}

	return p
}
