package schema

import "time"

// DailyObservation - cumulative count reported for a combined key on one day
type DailyObservation struct {
	CombinedKey     string    `json:"combined_key"`
	Date            time.Time `json:"date"`
	CumulativeCount int64     `json:"cumulative_count"`
}

// MonthlyAggregate - peak cumulative count observed for a combined key within a month
type MonthlyAggregate struct {
	CombinedKey     string    `json:"combined_key" bson:"combined_key"`
	Month           time.Time `json:"month" bson:"month"`
	CumulativeCount int64     `json:"cumulative_count" bson:"count"`
}
