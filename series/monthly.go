package series

import (
	"sort"
	"time"

	"github.com/bitmark-inc/covid-monthly/schema"
)

type groupKey struct {
	combinedKey string
	month       int64
}

// FloorToMonth - first day of t's month at UTC midnight
func FloorToMonth(t time.Time) time.Time {
	year, month, _ := t.UTC().Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// AggregateMonthly - reduce daily cumulative counts to one value per
// (combined key, month): the highest count reported in that month. A later,
// smaller report never overrides an earlier peak.
//
// Output is sorted by combined key, then month.
func AggregateMonthly(observations []schema.DailyObservation) []schema.MonthlyAggregate {
	peaks := make(map[groupKey]int64)
	for _, o := range observations {
		k := groupKey{combinedKey: o.CombinedKey, month: FloorToMonth(o.Date).Unix()}
		if peak, ok := peaks[k]; !ok || o.CumulativeCount > peak {
			peaks[k] = o.CumulativeCount
		}
	}

	result := make([]schema.MonthlyAggregate, 0, len(peaks))
	for k, peak := range peaks {
		result = append(result, schema.MonthlyAggregate{
			CombinedKey:     k.combinedKey,
			Month:           time.Unix(k.month, 0).UTC(),
			CumulativeCount: peak,
		})
	}
	SortAggregates(result)

	return result
}

// SortAggregates - order by combined key, then month
func SortAggregates(aggregates []schema.MonthlyAggregate) {
	sort.Slice(aggregates, func(i, j int) bool {
		if aggregates[i].CombinedKey != aggregates[j].CombinedKey {
			return aggregates[i].CombinedKey < aggregates[j].CombinedKey
		}
		return aggregates[i].Month.Before(aggregates[j].Month)
	})
}

// ObservationsFromMonthly - treat monthly aggregates as observations dated on
// the first of their month
func ObservationsFromMonthly(aggregates []schema.MonthlyAggregate) []schema.DailyObservation {
	observations := make([]schema.DailyObservation, len(aggregates))
	for i, a := range aggregates {
		observations[i] = schema.DailyObservation{
			CombinedKey:     a.CombinedKey,
			Date:            a.Month,
			CumulativeCount: a.CumulativeCount,
		}
	}
	return observations
}

// CountRegressions - number of observations whose count is lower than an
// earlier observation of the same key. These are reporting corrections; they
// are tolerated by AggregateMonthly.
func CountRegressions(observations []schema.DailyObservation) int {
	sorted := make([]schema.DailyObservation, len(observations))
	copy(sorted, observations)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CombinedKey != sorted[j].CombinedKey {
			return sorted[i].CombinedKey < sorted[j].CombinedKey
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	count := 0
	var peak int64
	for i, o := range sorted {
		if i == 0 || o.CombinedKey != sorted[i-1].CombinedKey {
			peak = o.CumulativeCount
			continue
		}
		if o.CumulativeCount < peak {
			count++
			continue
		}
		peak = o.CumulativeCount
	}
	return count
}
