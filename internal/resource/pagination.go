package resource

// Pagination is the descriptor for the current list page. TotalPages is
// derived once at fetch time, not recomputed reactively.
type Pagination struct {
	Count       int
	PageSize    int
	CurrentPage int
	TotalPages  int
	Next        *string
	Previous    *string
}

// TotalPages returns ceil(count / pageSize).
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}
