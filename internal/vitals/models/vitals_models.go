package models

import common "github.com/Jamolkhon5/lifesense/internal/models"

// Status is a classified vital sign: a short label plus its display text.
type Status struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// MetricSummary aggregates one metric over the fetched window.
type MetricSummary struct {
	Average float64 `json:"average"`
	Latest  float64 `json:"latest"`
	Count   int     `json:"count"`
	Status  Status  `json:"status"`
}

// Summary is the dashboard overview. A nil metric had no readings.
type Summary struct {
	Temperature *MetricSummary `json:"temperature"`
	HeartRate   *MetricSummary `json:"heart_rate"`
	SpO2        *MetricSummary `json:"spo2"`
}

// Series is a chronological chart series.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// TemperatureSeries is returned by the temperature chart endpoint.
type TemperatureSeries struct {
	Series
	LatestStatus   Status `json:"latest_status"`
	ThumbnailShown bool   `json:"thumbnail_shown"`
}

// HeartSeries is returned by the heart rate / SpO2 chart endpoint.
type HeartSeries struct {
	HeartRate Series `json:"heart_rate"`
	SpO2      Series `json:"spo2"`
	Points    int    `json:"points"`
}

// AnalysisRequest carries the profile the client keeps in local storage.
type AnalysisRequest struct {
	Profile *common.Profile `json:"profile,omitempty"`
}

// AnalysisResponse is the dashboard health assessment.
type AnalysisResponse struct {
	Summary  Summary `json:"summary"`
	Analysis string  `json:"analysis"`
}

// ValidationState holds per-field validation errors.
type ValidationState struct {
	IsValid bool              `json:"is_valid"`
	Errors  map[string]string `json:"errors"`
}

// ProfileErrorResponse is returned for an invalid profile.
type ProfileErrorResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors"`
}
