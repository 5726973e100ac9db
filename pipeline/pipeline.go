// Package pipeline narrows a normalized item list to the slice a grid shows:
// predicates are ANDed, sorting is stable and pages clamp to the data.
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	ReportsPageSize = 12
	RecentPageSize  = 6

	StatusAll = "all"
)

// Item is anything a grid can filter and sort.
type Item interface {
	SortID() (int64, string)
	ItemStatus() string
	ItemFeeder() int64
	SearchFields() []string
	Timestamp() time.Time
	GroupSize() int
	HasImages() bool
	HasCoords() bool
}

type SortKey string

const (
	SortID       SortKey = "id"
	SortMost     SortKey = "most"
	SortLeast    SortKey = "least"
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
	SortPictures SortKey = "pictures"
	SortCoords   SortKey = "coords"
)

var sortKeys = []SortKey{SortID, SortMost, SortLeast, SortNewest, SortOldest, SortPictures, SortCoords}

// Valid reports whether Sort knows the key.
func (k SortKey) Valid() bool { return slices.Contains(sortKeys, k) }

// Query holds every user controlled predicate plus sort and page.
type Query struct {
	Status   string
	Feeders  []int64
	Search   string
	From     *time.Time
	To       *time.Time
	Sort     SortKey
	Page     int
	PageSize int
}

// Fingerprint identifies the filter and sort part of the query. The page is
// left out so a page change keeps the fingerprint.
func (q Query) Fingerprint() string {
	feeders := slices.Clone(q.Feeders)
	slices.Sort(feeders)
	parts := []string{
		strings.ToLower(q.Status),
		fmt.Sprint(feeders),
		strings.ToLower(strings.TrimSpace(q.Search)),
		dayString(q.From),
		dayString(q.To),
		string(q.Sort),
		strconv.Itoa(q.PageSize),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:8])
}

// ResetIfChanged moves the query back to page 1 when its filters or sort
// differ from the ones behind previous.
func (q Query) ResetIfChanged(previous string) Query {
	if previous != "" && previous != q.Fingerprint() {
		q.Page = 1
	}
	return q
}

func dayString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

// Filter keeps the items matching every predicate in q.
func Filter[T Item](items []T, q Query) []T {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matchStatus(item, q.Status) &&
			matchFeeder(item, q.Feeders) &&
			matchSearch(item, search) &&
			matchDates(item, q.From, q.To) {
			out = append(out, item)
		}
	}
	return out
}

func matchStatus(item Item, status string) bool {
	return status == "" || strings.EqualFold(status, StatusAll) || item.ItemStatus() == status
}

// An empty feeder selection shows every feeder.
func matchFeeder(item Item, feeders []int64) bool {
	return len(feeders) == 0 || slices.Contains(feeders, item.ItemFeeder())
}

func matchSearch(item Item, search string) bool {
	if search == "" {
		return true
	}
	for _, field := range item.SearchFields() {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// Both bounds are inclusive whole days in UTC.
func matchDates(item Item, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	day := truncateDay(item.Timestamp())
	if from != nil && day.Before(truncateDay(*from)) {
		return false
	}
	if to != nil && day.After(truncateDay(*to)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Sort orders items in place by key. Ties keep their prior relative order.
func Sort[T Item](items []T, key SortKey) {
	switch key {
	case SortID:
		slices.SortStableFunc(items, func(a, b T) int { return compareID(a, b) })
	case SortMost:
		slices.SortStableFunc(items, func(a, b T) int { return b.GroupSize() - a.GroupSize() })
	case SortLeast:
		slices.SortStableFunc(items, func(a, b T) int { return a.GroupSize() - b.GroupSize() })
	case SortNewest:
		slices.SortStableFunc(items, func(a, b T) int { return compareID(b, a) })
	case SortOldest:
		slices.SortStableFunc(items, func(a, b T) int { return compareID(a, b) })
	case SortPictures:
		slices.SortStableFunc(items, func(a, b T) int { return firstIf(a.HasImages(), b.HasImages()) })
	case SortCoords:
		slices.SortStableFunc(items, func(a, b T) int { return firstIf(a.HasCoords(), b.HasCoords()) })
	}
}

func compareID(a, b Item) int {
	an, as := a.SortID()
	bn, bs := b.SortID()
	if an != bn {
		if an < bn {
			return -1
		}
		return 1
	}
	return strings.Compare(as, bs)
}

// firstIf puts items with the flag set before items without it.
func firstIf(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}
