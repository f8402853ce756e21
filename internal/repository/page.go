package repository

import (
	"strings"

	"gorm.io/gorm"
)

const DefaultPerPage = 10

// PageRequest selects one page of a listing. Sort is a key from the repository's whitelist.
type PageRequest struct {
	Number    int
	PerPage   int
	Sort      string
	Direction string
}

func (p PageRequest) normalized() PageRequest {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	return p
}

func (p PageRequest) offset() int {
	return (p.Number - 1) * p.PerPage
}

// Page is one slice of a listing together with the total row count.
type Page[T any] struct {
	Items   []T
	Number  int
	PerPage int
	Total   int64
	Sort    string
	Dir     string
}

// Pages returns the number of pages, at least 1.
func (p Page[T]) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (p Page[T]) HasPrevious() bool { return p.Number > 1 }
func (p Page[T]) HasNext() bool     { return p.Number < p.Pages() }
func (p Page[T]) Previous() int     { return p.Number - 1 }
func (p Page[T]) Next() int         { return p.Number + 1 }

// sortable maps public sort keys to column lists.
type sortable struct {
	columns    map[string][]string
	defaultKey string
	defaultDir string
}

// order resolves req against the whitelist. Unknown keys fall back to the default.
func (s sortable) order(req PageRequest) (clause, key, dir string) {
	key = req.Sort
	cols, ok := s.columns[key]
	if !ok {
		key = s.defaultKey
		cols = s.columns[key]
	}

	dir = strings.ToLower(req.Direction)
	if dir != "asc" && dir != "desc" {
		dir = s.defaultDir
	}

	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, col+" "+strings.ToUpper(dir))
	}
	return strings.Join(parts, ", "), key, dir
}

// paginate counts the rows matched by q and loads the requested page, clamped to the last one.
func paginate[T any](q *gorm.DB, req PageRequest, sort sortable, preload ...string) (Page[T], error) {
	req = req.normalized()
	orderBy, key, dir := sort.order(req)
	page := Page[T]{Number: req.Number, PerPage: req.PerPage, Sort: key, Dir: dir}

	base := q.Session(&gorm.Session{})
	if err := base.Count(&page.Total).Error; err != nil {
		return page, err
	}

	// Past the end reads the last page. The offset is computed from the clamped number.
	if last := page.Pages(); req.Number > last {
		req.Number = last
		page.Number = last
	}

	find := base.Order(orderBy).Limit(req.PerPage).Offset(req.offset())
	for _, rel := range preload {
		find = find.Preload(rel)
	}
	if err := find.Find(&page.Items).Error; err != nil {
		return page, err
	}
	return page, nil
}
