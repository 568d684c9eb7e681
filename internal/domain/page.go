package domain

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Content       []T
	PageNumber    int
	PageSize      int
	TotalElements int
	TotalPages    int
}
