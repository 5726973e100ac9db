// Package narrative picks the canned recommendation printed under each
// dashboard chart. Selection is keyed on the largest value of the chart.
package narrative

import (
	"fmt"
	"strings"

	"beacon-admin/aggregate"
)

type Kind string

const (
	FeederCount Kind = "feederCount"
	FeederTime  Kind = "feederTime"
	RootCause   Kind = "rootCause"
	Barangay    Kind = "barangay"
	Peak        Kind = "peak"
	MTTR        Kind = "mttr"
)

// Kinds in the order the charts appear in the report.
var Kinds = []Kind{FeederCount, FeederTime, RootCause, Barangay, Peak, MTTR}

const Insufficient = "Insufficient data for analysis."

var weekdays = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// For returns the text for one chart of c.
func For(kind Kind, c aggregate.Charts) string {
	switch kind {
	case FeederCount:
		return FeederCounts(c.FeederCounts)
	case FeederTime:
		return Restoration(c.RestorationByFeeder)
	case RootCause:
		return RootCauses(c.RootCauses)
	case Barangay:
		return AffectedAreas(c.AffectedAreas)
	case Peak:
		return PeakTime(c.Peak)
	case MTTR:
		return Trend(c.MonthlyMTTR)
	}
	return "Data available in chart."
}

// All returns the text for every kind.
func All(c aggregate.Charts) map[Kind]string {
	out := make(map[Kind]string, len(Kinds))
	for _, k := range Kinds {
		out[k] = For(k, c)
	}
	return out
}

func RootCauses(counts []aggregate.KeyCount) string {
	top, ok := maxCount(counts)
	if !ok {
		return Insufficient
	}
	switch {
	case strings.Contains(top.Key, "Vegetation"):
		return "Recommendation: Increase tree trimming schedule in high-risk corridors."
	case strings.Contains(top.Key, "Equipment"):
		return "Recommendation: Audit aging transformers and schedule preventive maintenance."
	}
	return fmt.Sprintf("Recommendation: Investigate high frequency of '%s' outages.", top.Key)
}

func FeederCounts(counts []aggregate.KeyCount) string {
	top, ok := maxCount(counts)
	if !ok {
		return Insufficient
	}
	return fmt.Sprintf("Analysis: %s accounts for the highest volume of reports (%d).\n"+
		"Recommendation: Prioritize infrastructure inspection on this line.", top.Key, top.Count)
}

func Restoration(means []aggregate.GroupMean) string {
	top, ok := maxMean(means)
	if !ok {
		return Insufficient
	}
	return fmt.Sprintf("Analysis: %s has the slowest recovery time (%.2f hrs avg).\n"+
		"Recommendation: Check for access issues or equipment faults specific to this area.", top.Key, top.Hours)
}

func AffectedAreas(counts []aggregate.KeyCount) string {
	top, ok := maxCount(counts)
	if !ok {
		return Insufficient
	}
	return fmt.Sprintf("Analysis: %s is the most frequently affected community.\n"+
		"Recommendation: Engage with community leaders in %s regarding upcoming improvements.", top.Key, top.Key)
}

func PeakTime(peak *aggregate.BucketCount) string {
	if peak == nil || peak.Count == 0 {
		return Insufficient
	}
	return fmt.Sprintf("Analysis: Highest outage frequency observed on %ss around %d:00 hours.\n"+
		"Recommendation: Schedule additional standby crews during this window.", weekdays[peak.Weekday%7], peak.Hour)
}

// Trend compares the first and last month of the series.
func Trend(series []aggregate.GroupMean) string {
	if len(series) == 0 {
		return Insufficient
	}
	first, last := series[0].Hours, series[len(series)-1].Hours
	switch {
	case last < first:
		return "Analysis: Repair times are trending DOWN (Improving).\n" +
			"Recommendation: Current maintenance strategies are effective."
	case last > first:
		return "Analysis: Repair times are trending UP (Slower).\n" +
			"Recommendation: Investigate dispatch delays or staffing shortages."
	}
	return "Analysis: Repair times are stable."
}

// maxCount returns the first entry holding the largest count.
func maxCount(counts []aggregate.KeyCount) (aggregate.KeyCount, bool) {
	if len(counts) == 0 {
		return aggregate.KeyCount{}, false
	}
	top := counts[0]
	for _, kc := range counts[1:] {
		if kc.Count > top.Count {
			top = kc
		}
	}
	return top, true
}

func maxMean(means []aggregate.GroupMean) (aggregate.GroupMean, bool) {
	if len(means) == 0 {
		return aggregate.GroupMean{}, false
	}
	top := means[0]
	for _, m := range means[1:] {
		if m.Hours > top.Hours {
			top = m
		}
	}
	return top, true
}
