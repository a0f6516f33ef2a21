package shared

// PageRequest is a 1-indexed page window over an ordered result set
type PageRequest struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip for this page.
// Callers validate Number >= 1 before asking for an offset.
func (p PageRequest) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages returns ceil(total/size), and 0 for an empty result set
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	pages := int(total) / size
	if int(total)%size > 0 {
		pages++
	}
	return pages
}
