// Package pagination chooses which page links a table shows.
package pagination

// Window is the set of page indexes (zero based) to render as links.
type Window struct {
	// Pages lists the indexes in ascending order. The first and the last
	// page are always included.
	Pages []int

	// Selected is the current page index.
	Selected int

	// LeadingGap is set when pages are skipped after the first page.
	LeadingGap bool

	// TrailingGap is set when pages are skipped before the last page.
	TrailingGap bool
}

// Compute returns the window for selected out of pages.
//
// Besides the first and last page it shows a block of 2*siblings+1
// consecutive pages centered on selected. Near either end the block is
// shifted inward rather than shrunk, so the number of links stays the same
// while paging. selected is clamped to [0, pages-1].
func Compute(selected, pages, siblings int) Window {
	if pages <= 0 {
		return Window{}
	}
	if siblings < 0 {
		siblings = 0
	}
	selected = max(0, min(selected, pages-1))

	w := Window{Pages: []int{0}, Selected: selected}
	if pages == 1 {
		return w
	}

	// Inner pages are 1..pages-2.
	inner := pages - 2
	size := min(2*siblings+1, inner)
	if size > 0 {
		start := max(1, min(selected-siblings, pages-1-size))
		end := start + size - 1
		for i := start; i <= end; i++ {
			w.Pages = append(w.Pages, i)
		}
		w.LeadingGap = start > 1
		w.TrailingGap = end < pages-2
	}
	w.Pages = append(w.Pages, pages-1)
	return w
}

// Pages returns the number of pages needed for total entries.
func Pages(total, amount int) int {
	if amount <= 0 || total <= 0 {
		return 0
	}
	return (total + amount - 1) / amount
}
