package series

import (
	"sort"
	"time"

	"github.com/bitmark-inc/covid-monthly/schema"
)

// WideFromMonthly - pivot monthly aggregates into one row per combined key
// and one column per distinct month of the whole input. A (key, month) pair
// without an aggregate is left as a missing cell, never zero.
func WideFromMonthly(aggregates []schema.MonthlyAggregate) schema.WideTable {
	monthIndex := make(map[int64]int)
	rowIndex := make(map[string]int)
	var months []time.Time
	var keys []string

	for _, a := range aggregates {
		m := FloorToMonth(a.Month)
		if _, ok := monthIndex[m.Unix()]; !ok {
			monthIndex[m.Unix()] = 0
			months = append(months, m)
		}
		if _, ok := rowIndex[a.CombinedKey]; !ok {
			rowIndex[a.CombinedKey] = 0
			keys = append(keys, a.CombinedKey)
		}
	}

	sort.Slice(months, func(i, j int) bool {
		return months[i].Before(months[j])
	})
	sort.Strings(keys)
	for i, m := range months {
		monthIndex[m.Unix()] = i
	}

	rows := make([]schema.WideRow, len(keys))
	for i, k := range keys {
		rowIndex[k] = i
		rows[i] = schema.WideRow{
			CombinedKey: k,
			Cells:       make([]schema.Cell, len(months)),
		}
	}

	for _, a := range aggregates {
		row := rows[rowIndex[a.CombinedKey]]
		cell := &row.Cells[monthIndex[FloorToMonth(a.Month).Unix()]]
		if !cell.Present || a.CumulativeCount > cell.Value {
			cell.Value = a.CumulativeCount
			cell.Present = true
		}
	}

	return schema.WideTable{
		Months: months,
		Rows:   rows,
	}
}
