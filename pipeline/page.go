package pipeline

// PageInfo drives the "showing x-y of n" label and the prev/next buttons.
type PageInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	Start      int  `json:"start"`
	End        int  `json:"end"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// Page is one display slice plus the fingerprint of the query that produced it.
type Page[T any] struct {
	Items       []T      `json:"items"`
	Info        PageInfo `json:"page"`
	Fingerprint string   `json:"fp"`
}

// Paginate clamps page into [1, totalPages] so a shrunken set never leaves
// the grid on an empty page. Start and End are 1-based and inclusive.
func Paginate(total, page, size int) PageInfo {
	if size <= 0 {
		size = ReportsPageSize
	}
	pages := (total + size - 1) / size

	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}

	info := PageInfo{Page: page, PageSize: size, TotalItems: total, TotalPages: pages}
	if total > 0 {
		info.Start = (page-1)*size + 1
		info.End = min(page*size, total)
	}
	info.HasPrev = page > 1
	info.HasNext = page < pages
	return info
}

// Slice cuts the page described by info out of items.
func Slice[T any](items []T, info PageInfo) []T {
	if info.TotalItems == 0 {
		return []T{}
	}
	return items[info.Start-1 : info.End]
}

// Apply runs filter, sort and pagination in that order. The input is not modified.
func Apply[T Item](items []T, q Query) Page[T] {
	filtered := Filter(items, q)
	Sort(filtered, q.Sort)

	info := Paginate(len(filtered), q.Page, q.PageSize)
	return Page[T]{
		Items:       Slice(filtered, info),
		Info:        info,
		Fingerprint: q.Fingerprint(),
	}
}
