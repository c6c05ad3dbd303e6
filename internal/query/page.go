package query

// Page is the envelope returned by every paginated endpoint.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Pages int `json:"pages"`
}

// Paginate slices rows into the 1-based page of the given size. page and size
// must be positive. Pages past the end have no items.
func Paginate[T any](rows []T, page, size int) Page[T] {
	total := len(rows)
	pages := total / size
	if total%size != 0 {
		pages++
	}

	// compare in page units first so huge page values cannot overflow
	start := total
	if page-1 < pages {
		start = (page - 1) * size
	}
	end := total
	if size < total-start {
		end = start + size
	}

	items := make([]T, end-start)
	copy(items, rows[start:end])
	return Page[T]{
		Items: items,
		Total: total,
		Page:  page,
		Size:  size,
		Pages: pages,
	}
}
