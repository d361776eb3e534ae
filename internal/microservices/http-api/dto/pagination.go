package dto

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is the envelope metadata every list endpoint returns.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

type Paginated[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPaginated converts a page of models with fn. Data is never null in JSON.
func NewPaginated[M, T any](items []M, fn func(M) T, total int64, page, pageSize int) Paginated[T] {
	data := make([]T, 0, len(items))
	for _, item := range items {
		data = append(data, fn(item))
	}
	return Paginated[T]{
		Data: data,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: (total + int64(pageSize) - 1) / int64(pageSize),
		},
	}
}
