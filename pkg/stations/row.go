package stations

import (
	"encoding/json"
	"strconv"
)

// Column names of a Row, in display order.
const (
	ColumnName         = "name"
	ColumnTimestamp    = "timestamp"
	ColumnCurrentLevel = "currentLevel"
	ColumnHighestLevel = "highestLevel"
	ColumnLowestLevel  = "lowestLevel"
)

// Columns lists the row properties in display order. The first one is the
// default sort column.
var Columns = []string{
	ColumnName,
	ColumnTimestamp,
	ColumnCurrentLevel,
	ColumnHighestLevel,
	ColumnLowestLevel,
}

// Row is the table shape of a station.
type Row struct {
	Name         string          `json:"name"`
	Timestamp    int64           `json:"timestamp"`
	CurrentLevel string          `json:"currentLevel"`
	HighestLevel string          `json:"highestLevel"`
	LowestLevel  string          `json:"lowestLevel"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

// Value returns the property prop. Timestamps are int64, everything else
// is a string. Unknown properties report false.
func (r Row) Value(prop string) (any, bool) {
	switch prop {
	case ColumnName:
		return r.Name, true
	case ColumnTimestamp:
		return r.Timestamp, true
	case ColumnCurrentLevel:
		return r.CurrentLevel, true
	case ColumnHighestLevel:
		return r.HighestLevel, true
	case ColumnLowestLevel:
		return r.LowestLevel, true
	}
	return nil, false
}

// Text returns the string form of prop, as filters see it.
func (r Row) Text(prop string) string {
	switch v, _ := r.Value(prop); v := v.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}
