package repository

import (
	"context"
	"math"
	"time"

	"github.com/Jamolkhon5/lifesense/internal/models"
)

const (
	mockSamples  = 150
	mockInterval = time.Minute
)

// MockStore generates smooth deterministic vitals for local development.
type MockStore struct {
	now func() time.Time
}

func NewMockStore(now func() time.Time) *MockStore {
	if now == nil {
		now = time.Now
	}
	return &MockStore{now: now}
}

func (s *MockStore) Temperatures(_ context.Context, q Query) ([]models.TemperatureRow, error) {
	times := s.sampleTimes()
	rows := make([]models.TemperatureRow, 0, len(times))
	for i, t := range times {
		if !inRange(t, q) {
			continue
		}
		v := 36.6 + math.Round(3*math.Sin(float64(i+1)/8))/10
		rows = append(rows, models.TemperatureRow{Degree: v, Time: t.Format(time.RFC3339Nano)})
	}
	if !q.Ascending {
		reverse(rows)
	}
	return limit(rows, q.Limit), nil
}

func (s *MockStore) HeartRates(_ context.Context, q Query) ([]models.HeartRateRow, error) {
	times := s.sampleTimes()
	rows := make([]models.HeartRateRow, 0, len(times))
	for i, t := range times {
		if !inRange(t, q) {
			continue
		}
		n := float64(i + 1)
		bpm := 76 + math.Round(6*math.Sin(n/6)+3*math.Cos(n/10))
		spo2 := 97 + math.Round(1.2*math.Sin(n/12))
		rows = append(rows, models.HeartRateRow{BPM: &bpm, SpO2: &spo2, CreatedAt: t.Format(time.RFC3339Nano)})
	}
	if !q.Ascending {
		reverse(rows)
	}
	return limit(rows, q.Limit), nil
}

// sampleTimes returns one timestamp per minute, oldest first, ending at the current minute.
func (s *MockStore) sampleTimes() []time.Time {
	end := s.now().UTC().Truncate(mockInterval)
	times := make([]time.Time, mockSamples)
	for i := range times {
		times[i] = end.Add(-time.Duration(mockSamples-1-i) * mockInterval)
	}
	return times
}

func inRange(t time.Time, q Query) bool {
	if !q.From.IsZero() && t.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !t.Before(q.To) {
		return false
	}
	return true
}

func reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

func limit[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

var _ SensorStore = (*MockStore)(nil)
