package query

// WindowSize is the maximum number of page buttons shown.
const WindowSize = 5

// Window returns the page numbers to render as buttons for a result with
// totalPages pages, currently on page. The window slides with the current
// page and only shrinks when totalPages < WindowSize.
func Window(totalPages, page int) []int {
	if totalPages <= 0 {
		return nil
	}
	var start int
	switch {
	case totalPages <= WindowSize:
		start = 1
	case page <= 3:
		start = 1
	case page >= totalPages-2:
		start = totalPages - WindowSize + 1
	default:
		start = page - 2
	}
	n := min(WindowSize, totalPages)
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}

// Nav describes which of the Previous/Next controls are usable.
type Nav struct {
	Prev bool
	Next bool
}

// Navigation computes the Previous/Next state for a server-reported page.
func Navigation(totalPages, page int) Nav {
	if totalPages <= 0 {
		return Nav{}
	}
	return Nav{
		Prev: page > 1,
		Next: page < totalPages,
	}
}
