package storage

// PageBounds returns the slice bounds of a 1-based page of size rows over
// total rows. ok is false when the page starts at or past the end. It never
// overflows, whatever page is asked for.
func PageBounds(page, size, total int) (start, end int, ok bool) {
	if page < 1 {
		page = 1
	}
	if size < 1 || total <= 0 {
		return 0, 0, false
	}
	pages := (total-1)/size + 1
	if page-1 >= pages {
		return 0, 0, false
	}
	start = (page - 1) * size
	end = total
	if size < total-start {
		end = start + size
	}
	return start, end, true
}
