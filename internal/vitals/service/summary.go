package service

import (
	common "github.com/Jamolkhon5/lifesense/internal/models"
	"github.com/Jamolkhon5/lifesense/internal/vitals/models"
)

// Summarize aggregates newest-first rows into the dashboard overview.
func Summarize(temps []common.TemperatureRow, beats []common.HeartRateRow) models.Summary {
	degrees := make([]float64, 0, len(temps))
	for _, row := range temps {
		degrees = append(degrees, row.Degree)
	}

	bpm := make([]float64, 0, len(beats))
	spo2 := make([]float64, 0, len(beats))
	for _, row := range beats {
		if row.BPM != nil {
			bpm = append(bpm, *row.BPM)
		}
		if row.SpO2 != nil {
			spo2 = append(spo2, *row.SpO2)
		}
	}

	return models.Summary{
		Temperature: summarize(degrees, TemperatureStatus),
		HeartRate:   summarize(bpm, HeartRateStatus),
		SpO2:        summarize(spo2, SpO2Status),
	}
}

// summarize expects values newest first. It returns nil when there are none.
func summarize(values []float64, classify func(float64) models.Status) *models.MetricSummary {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &models.MetricSummary{
		Average: avg,
		Latest:  values[0],
		Count:   len(values),
		Status:  classify(avg),
	}
}
