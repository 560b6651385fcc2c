package models

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TotalPages is ceil(total / size).
func TotalPages(total, size int) int {
	if size <= 0 {
		return 0
	}

	return (total + size - 1) / size
}

// Offset of a 1-indexed page.
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}

	return (page - 1) * size
}

func NewProductPage(items []*Product, total int, q ProductQuery) *ProductPage {
	if items == nil {
		items = []*Product{}
	}

	return &ProductPage{
		Items: items,
		Total: total,
		Page:  q.Page,
		Size:  q.Size,
		Pages: TotalPages(total, q.Size),
	}
}
