package models

import (
	"strings"
	"time"
)

const (
	TemperatureTable = "temper"
	HeartRateTable   = "heartrate"
)

// TemperatureRow is one sample of the temper table.
type TemperatureRow struct {
	Degree float64 `json:"degree" db:"degree"`
	Time   string  `json:"time" db:"time"`
}

// HeartRateRow is one sample of the heartrate table. Either value may be missing.
type HeartRateRow struct {
	BPM       *float64 `json:"bpm" db:"bpm"`
	SpO2      *float64 `json:"spo2" db:"spo2"`
	CreatedAt string   `json:"created_at" db:"created_at"`
}

type Profile struct {
	Name   string  `json:"name" mapstructure:"name"`
	Age    int     `json:"age" mapstructure:"age"`
	Height float64 `json:"height" mapstructure:"height"`
	Weight float64 `json:"weight" mapstructure:"weight"`
}

func (p Profile) IsZero() bool {
	return strings.TrimSpace(p.Name) == "" && p.Age == 0 && p.Height == 0 && p.Weight == 0
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp accepts the timestamp shapes the store returns.
// Values without a zone are read as UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
