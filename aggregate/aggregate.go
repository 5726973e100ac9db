// Package aggregate turns flat report and announcement lists into the grouped
// summaries behind the dashboard tiles and charts. Nothing here does I/O and
// nothing panics on empty or nil input: a chart with no data renders empty.
package aggregate

import (
	"math"
	"sort"
	"time"
)

const (
	TopCauses = 5
	TopAreas  = 8

	// Durations at or beyond this many hours are treated as bad data.
	maxRestorationHours = 1000
)

type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// One adapts a single key extractor to the multi-key form CountBy takes.
func One[T any](key func(T) string) func(T) []string {
	return func(item T) []string { return []string{key(item)} }
}

// CountBy counts items per key. An item contributes once for every key it yields.
func CountBy[T any](items []T, keys func(T) []string) map[string]int {
	counts := make(map[string]int)
	if keys == nil {
		return counts
	}
	for _, item := range items {
		for _, k := range keys(item) {
			counts[k]++
		}
	}
	return counts
}

// Sorted orders counts by descending count, then key.
func Sorted(counts map[string]int) []KeyCount {
	out := make([]KeyCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, KeyCount{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// TopN returns the n largest counts. Fewer distinct keys than n returns all of them.
func TopN(counts map[string]int, n int) []KeyCount {
	out := Sorted(counts)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Bucket is a weekday (0 = Sunday) and hour of day pair.
type Bucket struct {
	Weekday int `json:"weekday"`
	Hour    int `json:"hour"`
}

type BucketCount struct {
	Bucket
	Count int `json:"count"`
}

// TimeBuckets counts timestamps per weekday and hour in loc.
func TimeBuckets(times []time.Time, loc *time.Location) map[Bucket]int {
	if loc == nil {
		loc = time.UTC
	}
	counts := make(map[Bucket]int)
	for _, ts := range times {
		if ts.IsZero() {
			continue
		}
		t := ts.In(loc)
		counts[Bucket{Weekday: int(t.Weekday()), Hour: t.Hour()}]++
	}
	return counts
}

// PeakBucket finds the busiest bucket. Ties go to the earliest weekday and hour.
func PeakBucket(counts map[Bucket]int) (BucketCount, bool) {
	var peak BucketCount
	found := false
	for b, c := range counts {
		candidate := BucketCount{Bucket: b, Count: c}
		if !found || c > peak.Count || (c == peak.Count && bucketBefore(b, peak.Bucket)) {
			peak = candidate
			found = true
		}
	}
	return peak, found
}

func bucketBefore(a, b Bucket) bool {
	if a.Weekday != b.Weekday {
		return a.Weekday < b.Weekday
	}
	return a.Hour < b.Hour
}

// Span is a start and end pair. Ok is false when either end is unknown.
type Span struct {
	Start time.Time
	End   time.Time
	Ok    bool
}

type GroupMean struct {
	Key     string  `json:"key"`
	Hours   float64 `json:"hours"`
	Samples int     `json:"samples"`
}

// MeanDurationBy averages end minus start in hours per group. Samples outside
// (0, 1000) hours are discarded and groups left without samples are omitted.
// Results are sorted by key and rounded to two decimals.
func MeanDurationBy[T any](items []T, key func(T) string, span func(T) Span) []GroupMean {
	out := []GroupMean{}
	if key == nil || span == nil {
		return out
	}

	type acc struct {
		total float64
		count int
	}
	groups := make(map[string]*acc)

	for _, item := range items {
		s := span(item)
		if !s.Ok {
			continue
		}
		hrs := s.End.Sub(s.Start).Hours()
		if !ValidRestorationHours(hrs) {
			continue
		}
		k := key(item)
		g, ok := groups[k]
		if !ok {
			g = &acc{}
			groups[k] = g
		}
		g.total += hrs
		g.count++
	}

	for k, g := range groups {
		out = append(out, GroupMean{Key: k, Hours: Round2(g.total / float64(g.count)), Samples: g.count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ValidRestorationHours reports whether a duration is usable for MTTR.
func ValidRestorationHours(hrs float64) bool {
	return hrs > 0 && hrs < maxRestorationHours
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Delta is the day over day percent change. With no count yesterday the
// change is +100% when anything happened today and 0% otherwise.
func Delta(today, yesterday int) float64 {
	if yesterday > 0 {
		return float64(today-yesterday) / float64(yesterday) * 100
	}
	if today > 0 {
		return 100
	}
	return 0
}
