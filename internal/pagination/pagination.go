// Package pagination turns page/size query values into offsets and page metadata.
// Negative values are rejected; zero means "use the default".
package pagination

import (
	"favorites-catalog/internal/domain"
)

const DefaultPage = 1

// Params is a validated page request. Page is 1-based.
type Params struct {
	Page int
	Size int
}

// Parse validates page and size, substituting defaults for zero values.
func Parse(page, size, defaultSize int) (Params, error) {
	if page < 0 {
		return Params{}, domain.NewValidationError(`"page" parameter must be non-negative`)
	}
	if size < 0 {
		return Params{}, domain.NewValidationError(`"size" parameter must be non-negative`)
	}
	if page == 0 {
		page = DefaultPage
	}
	if size == 0 {
		size = defaultSize
	}
	return Params{Page: page, Size: size}, nil
}

func (p Params) Offset() int { return p.Size * (p.Page - 1) }

func (p Params) Limit() int { return p.Size }

// NewPage wraps one page of content with its metadata.
func NewPage[T any](content []T, p Params, total int) domain.Page[T] {
	if content == nil {
		content = []T{}
	}
	return domain.Page[T]{
		Content:       content,
		PageNumber:    p.Page,
		PageSize:      p.Size,
		TotalElements: total,
		TotalPages:    TotalPages(total, p.Size),
	}
}

// TotalPages is ceil(total/size); zero when size is not positive.
func TotalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
