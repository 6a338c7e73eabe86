package stations

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Station is one gauge station as delivered by the source. Raw keeps the
// original document so details can be served unchanged.
type Station struct {
	UUID       string          `json:"uuid"`
	Number     string          `json:"number"`
	Shortname  string          `json:"shortname"`
	Longname   string          `json:"longname"`
	Water      Water           `json:"water"`
	Timeseries []Timeseries    `json:"timeseries"`
	Raw        json.RawMessage `json:"-"`
}

// Water names the river or lake a station belongs to.
type Water struct {
	Shortname string `json:"shortname"`
	Longname  string `json:"longname"`
}

// Timeseries is one measured quantity of a station.
type Timeseries struct {
	Shortname            string                `json:"shortname"`
	Unit                 string                `json:"unit"`
	CurrentMeasurement   *Measurement          `json:"currentMeasurement"`
	CharacteristicValues []CharacteristicValue `json:"characteristicValues"`
}

// Measurement is the latest reading of a timeseries.
type Measurement struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// CharacteristicValue is a reference level such as HHW or NNW.
type CharacteristicValue struct {
	Shortname string  `json:"shortname"`
	Unit      string  `json:"unit"`
	Value     float64 `json:"value"`
}

// Characteristic returns the characteristic value with the given short name.
func (t Timeseries) Characteristic(shortname string) (CharacteristicValue, bool) {
	for _, c := range t.CharacteristicValues {
		if c.Shortname == shortname {
			return c, true
		}
	}
	return CharacteristicValue{}, false
}

// Matches reports whether id names this station by uuid, number or
// short name. Short names compare case-insensitively.
func (s Station) Matches(id string) bool {
	return id != "" && (s.UUID == id || s.Number == id || strings.EqualFold(s.Shortname, id))
}

// ToRow flattens a station into a table row. Only the first timeseries is
// considered.
func (s Station) ToRow() Row {
	row := Row{Name: s.Shortname, Raw: s.Raw}
	if len(s.Timeseries) == 0 {
		return row
	}
	ts := s.Timeseries[0]
	if m := ts.CurrentMeasurement; m != nil {
		if t, err := time.Parse(time.RFC3339, m.Timestamp); err == nil {
			row.Timestamp = t.UnixMilli()
		}
		row.CurrentLevel = level(m.Value, ts.Unit)
	}
	if c, ok := ts.Characteristic("HHW"); ok {
		row.HighestLevel = level(c.Value, c.Unit)
	}
	if c, ok := ts.Characteristic("NNW"); ok {
		row.LowestLevel = level(c.Value, c.Unit)
	}
	return row
}

func level(value float64, unit string) string {
	return strings.TrimSpace(strconv.FormatFloat(value, 'f', -1, 64) + " " + unit)
}

// Decode parses a JSON array of stations, keeping each raw element.
func Decode(data []byte) ([]Station, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]Station, 0, len(raw))
	for _, r := range raw {
		var s Station
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, err
		}
		s.Raw = r
		out = append(out, s)
	}
	return out, nil
}
