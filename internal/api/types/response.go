// internal/api/types/response.go
package types

// PaginatedResponse is the envelope for paged reads such as the wallet's
// ledger history. TotalCount is the full row count, independent of the page
// bounds, so clients can render pagination without a second request.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"total_count"`
}

// NewPage wraps one page of results in the envelope.
func NewPage[T any](data []T, limit, offset int, totalCount int64) PaginatedResponse[T] {
	return PaginatedResponse[T]{
		Data:       data,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	}
}
