package handlers

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// ParsePageParams reads limit and offset from the query. Limits outside
// [1, MaxPageLimit] fall back to the default; negative offsets become 0.
func ParsePageParams(q url.Values) (limit, offset int) {
	limit = DefaultPageLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v >= 1 && v <= MaxPageLimit {
		limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// BuildPage returns the next and previous links for a page, nil when there
// is no such page.
func BuildPage(path string, count, limit, offset int) (next, previous *string) {
	if offset+limit < count {
		n := pageLink(path, limit, offset+limit)
		next = &n
	}
	if offset > 0 {
		p := pageLink(path, limit, max(0, offset-limit))
		previous = &p
	}
	return next, previous
}

func pageLink(path string, limit, offset int) string {
	return fmt.Sprintf("%s?limit=%d&offset=%d", path, limit, offset)
}
