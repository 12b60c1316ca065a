package series

import (
	"github.com/bitmark-inc/covid-monthly/schema"
)

// MonthlyIncrease - month over month difference of the monthly cumulative
// values of a wide table. A cell stays missing when its own value or the value
// of the calendar month before it is missing, including the first column and
// columns following a gap in the months.
func MonthlyIncrease(table schema.WideTable) schema.WideTable {
	consecutive := make([]bool, len(table.Months))
	for j := 1; j < len(table.Months); j++ {
		consecutive[j] = table.Months[j-1].Equal(table.Months[j].AddDate(0, -1, 0))
	}

	rows := make([]schema.WideRow, len(table.Rows))
	for i, row := range table.Rows {
		cells := make([]schema.Cell, len(row.Cells))
		for j := 1; j < len(row.Cells); j++ {
			prev, cur := row.Cells[j-1], row.Cells[j]
			if j < len(consecutive) && consecutive[j] && prev.Present && cur.Present {
				cells[j] = schema.Cell{Value: cur.Value - prev.Value, Present: true}
			}
		}
		rows[i] = schema.WideRow{
			CombinedKey: row.CombinedKey,
			Cells:       cells,
		}
	}

	return schema.WideTable{
		Months: table.Months,
		Rows:   rows,
	}
}
