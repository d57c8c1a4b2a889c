package pagination

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Meta describes a zero-indexed page of a list result.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

type Result[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// Info computes pagination metadata. page is zero-indexed.
func Info(page, limit int, total int64) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    int64((page+1)*limit) < total,
		HasPrev:    page > 0,
	}
}

func NewResult[T any](data []T, page, limit int, total int64) *Result[T] {
	if data == nil {
		data = []T{}
	}
	return &Result[T]{Data: data, Pagination: Info(page, limit, total)}
}

// Normalize clamps page and limit into the accepted range.
func Normalize(page, limit, maxLimit int) (int, int) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func Offset(page, limit int) int {
	return page * limit
}
