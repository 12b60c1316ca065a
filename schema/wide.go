package schema

import (
	"encoding/json"
	"time"
)

// Cell - one value of a wide table. A cell without Present set is a missing
// month, which is not the same as a reported zero.
type Cell struct {
	Value   int64
	Present bool
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Present {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Cell{}
		return nil
	}
	if err := json.Unmarshal(data, &c.Value); err != nil {
		return err
	}
	c.Present = true
	return nil
}

type WideRow struct {
	CombinedKey string `json:"combined_key"`
	Cells       []Cell `json:"cells"`
}

// WideTable - one row per combined key, one column per month
type WideTable struct {
	Months []time.Time `json:"months"`
	Rows   []WideRow   `json:"rows"`
}
