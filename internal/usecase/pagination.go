package usecase

import (
	"travel-booking-service/internal/domain/repository"
)

// PageRequest carries client pagination input
type PageRequest struct {
	Limit  int
	Cursor *repository.Cursor
}

func (p PageRequest) apply(q QueryOptions) QueryOptions {
	q.Limit = p.Limit
	q.StartAfter = p.Cursor
	return q
}

func newestFirst() []repository.Order {
	return []repository.Order{repository.OrderBy("createdAt", repository.Desc)}
}

// DateRange bounds a date field inclusively. Either side may be empty.
type DateRange struct {
	From string
	To   string
}

// IsZero reports whether neither bound is set
func (r DateRange) IsZero() bool {
	return r.From == "" && r.To == ""
}

func (r DateRange) filters(field string) []repository.Filter {
	var where []repository.Filter
	if r.From != "" {
		where = append(where, repository.Where(field, repository.OpGreaterEqual, r.From))
	}
	if r.To != "" {
		where = append(where, repository.Where(field, repository.OpLessEqual, r.To))
	}
	return where
}

// rangeQuery orders by field ascending and restricts it to r, optionally narrowed
// to one user and one status
func rangeQuery(field string, r DateRange, userID, status string) QueryOptions {
	where := r.filters(field)
	if userID != "" {
		where = append(where, repository.Where("userId", repository.OpEqual, userID))
	}
	if status != "" {
		where = append(where, repository.Where("status", repository.OpEqual, status))
	}
	return QueryOptions{
		Where:   where,
		OrderBy: []repository.Order{repository.OrderBy(field, repository.Asc)},
	}
}
