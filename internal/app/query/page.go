package query

import "strconv"

// Page is the paginated envelope returned by product queries.
type Page[T any] struct {
	Content       []T
	Page          int
	Size          int
	TotalElements int
	TotalPages    int
}

// Paginate slices items into the zero-based page of the given size.
// A negative page is treated as 0; a page past the end has empty content.
func Paginate[T any](items []T, page, size int) (Page[T], error) {
	if size <= 0 {
		return Page[T]{}, invalidFilter(KeySize, strconv.Itoa(size), "page size must be positive for")
	}
	if page < 0 {
		page = 0
	}

	total := len(items)
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}
	content := []T{}
	if page < totalPages {
		start := page * size
		content = items[start:min(start+size, total)]
	}

	return Page[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

// MapPage converts the content of p with fn, keeping the pagination fields.
func MapPage[T, V any](p Page[T], fn func(T) V) Page[V] {
	content := make([]V, len(p.Content))
	for i, item := range p.Content {
		content[i] = fn(item)
	}
	return Page[V]{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}
