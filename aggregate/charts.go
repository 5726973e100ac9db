package aggregate

import (
	"fmt"
	"sort"
	"time"

	"beacon-admin/types"
)

const unknownCause = "Unknown"

// FeederSet is a feeder selection where empty means every feeder.
type FeederSet []int64

func (s FeederSet) Contains(id int64) bool {
	if len(s) == 0 {
		return true
	}
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

type Bubble struct {
	X     int `json:"x"` // hour
	Y     int `json:"y"` // weekday
	R     int `json:"r"`
	Count int `json:"count"`
}

// Charts is every dataset the analytics dashboard draws.
type Charts struct {
	FeederCounts        []KeyCount   `json:"feeder_counts"`
	RestorationByFeeder []GroupMean  `json:"restoration_by_feeder"`
	RootCauses          []KeyCount   `json:"root_causes"`
	AffectedAreas       []KeyCount   `json:"affected_areas"`
	PeakTimes           []Bubble     `json:"peak_times"`
	Peak                *BucketCount `json:"peak,omitempty"`
	MonthlyMTTR         []GroupMean  `json:"monthly_mttr"`
}

type ChartOptions struct {
	Feeders            FeederSet
	RestorationFeeders FeederSet
	Location           *time.Location
}

func BuildCharts(anns []types.Announcement, feeders []types.Feeder, opts ChartOptions) Charts {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	names := feederNames(feeders)

	buckets := PeakTimes(anns, loc)
	charts := Charts{
		FeederCounts:        FeederCounts(anns, names, opts.Feeders),
		RestorationByFeeder: RestorationByFeeder(anns, names, opts.RestorationFeeders),
		RootCauses:          RootCauses(anns),
		AffectedAreas:       AffectedAreas(anns),
		PeakTimes:           Bubbles(buckets),
		MonthlyMTTR:         MonthlyMTTR(anns, loc),
	}
	if peak, ok := PeakBucket(buckets); ok {
		charts.Peak = &peak
	}
	return charts
}

func feederNames(feeders []types.Feeder) map[int64]string {
	names := make(map[int64]string, len(feeders))
	for _, f := range feeders {
		if f.Name != "" {
			names[f.ID] = f.Name
		}
	}
	return names
}

// FeederCounts counts announcements per feeder name for the selected feeders.
func FeederCounts(anns []types.Announcement, names map[int64]string, selected FeederSet) []KeyCount {
	counts := CountBy(anns, func(a types.Announcement) []string {
		if !selected.Contains(a.FeederID) {
			return nil
		}
		if name, ok := names[a.FeederID]; ok {
			return []string{name}
		}
		return []string{fmt.Sprintf("Feeder %d", a.FeederID)}
	})
	return Sorted(counts)
}

// RestorationByFeeder is the mean restoration time of completed announcements per feeder.
func RestorationByFeeder(anns []types.Announcement, names map[int64]string, selected FeederSet) []GroupMean {
	return MeanDurationBy(anns,
		func(a types.Announcement) string {
			if name, ok := names[a.FeederID]; ok {
				return name
			}
			return fmt.Sprintf("ID %d", a.FeederID)
		},
		func(a types.Announcement) Span {
			if a.Status != types.StatusCompleted || !selected.Contains(a.FeederID) {
				return Span{}
			}
			return restorationSpan(a)
		})
}

func RootCauses(anns []types.Announcement) []KeyCount {
	return TopN(CountBy(anns, One(func(a types.Announcement) string {
		if a.Cause == "" {
			return unknownCause
		}
		return a.Cause
	})), TopCauses)
}

func AffectedAreas(anns []types.Announcement) []KeyCount {
	return TopN(CountBy(anns, func(a types.Announcement) []string {
		return a.AreasAffected
	}), TopAreas)
}

func PeakTimes(anns []types.Announcement, loc *time.Location) map[Bucket]int {
	times := make([]time.Time, 0, len(anns))
	for _, a := range anns {
		times = append(times, a.CreatedAt)
	}
	return TimeBuckets(times, loc)
}

// Bubbles lays buckets out for the peak time chart. Radius grows with count and caps at 20.
func Bubbles(counts map[Bucket]int) []Bubble {
	out := make([]Bubble, 0, len(counts))
	for b, c := range counts {
		r := c * 2
		if r > 20 {
			r = 20
		}
		out = append(out, Bubble{X: b.Hour, Y: b.Weekday, R: r, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// MonthlyMTTR is the mean time to restoration per creation month (YYYY-MM).
func MonthlyMTTR(anns []types.Announcement, loc *time.Location) []GroupMean {
	if loc == nil {
		loc = time.UTC
	}
	return MeanDurationBy(anns,
		func(a types.Announcement) string { return a.CreatedAt.In(loc).Format("2006-01") },
		restorationSpan)
}

func restorationSpan(a types.Announcement) Span {
	if a.RestoredAt == nil || a.CreatedAt.IsZero() {
		return Span{}
	}
	return Span{Start: a.CreatedAt, End: *a.RestoredAt, Ok: true}
}
