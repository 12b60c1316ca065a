package schema

import "time"

const (
	MonthlyCollection = "monthly_cumulative"
)

// MonthlyDocument - monthly aggregate stored together with its decomposed key
type MonthlyDocument struct {
	GeoRecord       `bson:",inline"`
	Month           time.Time `json:"month" bson:"month"`
	MonthTime       int64     `json:"month_ts" bson:"month_ts"`
	CumulativeCount int64     `json:"cumulative_count" bson:"count"`
	RunID           string    `json:"run_id" bson:"run_id"`
	UpdateTime      int64     `json:"update_ts" bson:"update_ts"`
}

func (d MonthlyDocument) Aggregate() MonthlyAggregate {
	return MonthlyAggregate{
		CombinedKey:     d.CombinedKey,
		Month:           d.Month.UTC(),
		CumulativeCount: d.CumulativeCount,
	}
}
