// Package pagination turns raw page/limit query values into a window and
// carries the paginated response shape.
//
// Invalid values are clamped rather than rejected: anything that is not a
// positive integer falls back to the default, and limit is capped at MaxLimit.
package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit inside int for every allowed limit.
	MaxPage = math.MaxInt / MaxLimit
)

type Params struct {
	Page  int
	Limit int
}

type Result[T any] struct {
	Total  int64 `json:"total"`
	Page   int   `json:"page"`
	Limit  int   `json:"limit"`
	Result []T   `json:"result"`
}

func Parse(rawPage, rawLimit string) Params {
	return New(parsePositive(rawPage, DefaultPage), parsePositive(rawLimit, DefaultLimit))
}

// New normalises already-numeric values the same way Parse does.
func New(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

func parsePositive(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		// too large for int: still past the last page, New clamps it
		return math.MaxInt
	}
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Offset saturates instead of overflowing for Params built without New.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Scope applies the window to a query. The matching count query must be
// built from the same filter without this scope.
func (p Params) Scope() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit)
	}
}

// NewResult never returns a nil Result slice so that an empty page encodes
// as [] rather than null.
func NewResult[T any](p Params, total int64, items []T) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Total:  total,
		Page:   p.Page,
		Limit:  p.Limit,
		Result: items,
	}
}

// TotalPages is the number of windows needed to cover total.
func (r Result[T]) TotalPages() int64 {
	if r.Limit == 0 {
		return 0
	}
	return (r.Total + int64(r.Limit) - 1) / int64(r.Limit)
}
