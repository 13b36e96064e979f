package models

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// PageQuery is the paging and free-text filter accepted by admin list endpoints.
type PageQuery struct {
	Page   int64  `form:"page"`
	Limit  int64  `form:"limit"`
	Search string `form:"search"`
}

// Normalize clamps page and limit into their valid ranges.
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	return q
}

func (q PageQuery) Skip() int64 {
	return (q.Page - 1) * q.Limit
}

type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

func NewPage[T any](items []T, total int64, q PageQuery) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := total / q.Limit
	if total%q.Limit != 0 {
		pages++
	}
	return Page[T]{Items: items, Total: total, Page: q.Page, Limit: q.Limit, TotalPages: pages}
}
