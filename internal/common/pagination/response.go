package pagination

// Response is the list envelope: the total number of matches and one page
// of items.
type Response[T any] struct {
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

// NewResponse builds a Response. A nil items slice is encoded as [].
func NewResponse[T any](items []T, total int64) Response[T] {
	if items == nil {
		items = []T{}
	}
	return Response[T]{Total: total, Items: items}
}
