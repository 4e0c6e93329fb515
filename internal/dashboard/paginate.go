// Package dashboard loads, filters, paginates and renders the non-chat views.
package dashboard

// Page sizes per view.
const (
	ArticlesPageSize       = 10
	ArticleContentPageSize = 5
	ClientsPageSize        = 5
	AlertsPageSize         = 5
	EarningsPreview        = 5
)

// Page is one page of a larger list.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	Total      int
}

// TotalPages is ceil(total/size), and 1 for an empty list.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage keeps page within 1..totalPages.
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages > 0 && page > totalPages {
		return totalPages
	}
	return page
}

// Paginate returns page (1-based) of size n. Pages past the end are empty.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 || page < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(items) {
		return nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// NewPage paginates items locally, clamping the requested page number.
func NewPage[T any](items []T, page, size int) Page[T] {
	total := TotalPages(len(items), size)
	page = ClampPage(page, total)
	return Page[T]{
		Items:      Paginate(items, page, size),
		Number:     page,
		TotalPages: total,
		Total:      len(items),
	}
}
