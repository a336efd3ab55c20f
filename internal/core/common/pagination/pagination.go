package pagination

// PerPage is the fixed page size of every listing.
const PerPage = 15

type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Offset converts a 1-based page number into a row offset; pages below 1 are treated as 1.
func Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PerPage
}

func New[T any](items []T, page int, total int64) *Page[T] {
	if page < 1 {
		page = 1
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Page:       page,
		PerPage:    PerPage,
		Total:      total,
		TotalPages: int((total + PerPage - 1) / PerPage),
	}
}
