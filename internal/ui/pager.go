package ui

import (
	"strconv"
	"strings"

	"github.com/alfredjeanlab/zayafka/internal/query"
)

// PaginationBar renders the page buttons the way the dashboard lays them
// out: Previous, the window of page numbers with the current one bracketed,
// then Next. Disabled controls are muted.
func PaginationBar(window []int, current int, nav query.Nav) string {
	var b strings.Builder
	b.WriteString(navLabel("‹ Prev", nav.Prev))
	for _, p := range window {
		b.WriteByte(' ')
		if p == current {
			b.WriteString(RenderAccent("[" + strconv.Itoa(p) + "]"))
		} else {
			b.WriteString(" " + strconv.Itoa(p) + " ")
		}
	}
	b.WriteByte(' ')
	b.WriteString(navLabel("Next ›", nav.Next))
	return b.String()
}

func navLabel(s string, enabled bool) string {
	if enabled {
		return s
	}
	return RenderMuted(s)
}
