package service

import "github.com/Jamolkhon5/lifesense/internal/vitals/models"

const (
	LabelNormal   = "normal"
	LabelElevated = "elevated"
	LabelHigh     = "high"
	LabelLow      = "low"
	LabelVeryLow  = "very low"
)

var (
	statusNormal   = models.Status{Label: LabelNormal, Text: "normal"}
	statusElevated = models.Status{Label: LabelElevated, Text: "slightly elevated"}
	statusHigh     = models.Status{Label: LabelHigh, Text: "high"}
	statusLow      = models.Status{Label: LabelLow, Text: "low"}
	statusVeryLow  = models.Status{Label: LabelVeryLow, Text: "very low"}
)

// TemperatureStatus classifies an average body temperature in °C.
func TemperatureStatus(avg float64) models.Status {
	switch {
	case avg >= 30 && avg <= 37.5:
		return statusNormal
	case avg > 37.5 && avg <= 38.5:
		return statusElevated
	case avg > 38.5:
		return statusHigh
	default:
		return statusLow
	}
}

// HeartRateStatus classifies an average adult resting heart rate in bpm.
func HeartRateStatus(avg float64) models.Status {
	switch {
	case avg >= 60 && avg <= 100:
		return statusNormal
	case avg > 100 && avg <= 120:
		return statusElevated
	case avg > 120:
		return statusHigh
	default:
		return statusLow
	}
}

// SpO2Status classifies an average oxygen saturation in percent.
// Readings above 100 are left as normal.
func SpO2Status(avg float64) models.Status {
	switch {
	case avg >= 95:
		return statusNormal
	case avg >= 90:
		return statusLow
	default:
		return statusVeryLow
	}
}

// LatestTemperatureStatus describes the most recent reading on the temperature card.
// These breakpoints are wider than TemperatureStatus: they flag sensor outliers, not fever.
func LatestTemperatureStatus(v float64) models.Status {
	switch {
	case v >= 30 && v <= 40:
		return models.Status{Label: LabelNormal, Text: "Your body temperature is normal."}
	case v > 40 && v <= 50:
		return models.Status{Label: LabelElevated, Text: "Body temperature is higher than usual."}
	case v > 50:
		return models.Status{Label: LabelHigh, Text: "Temperature is high - please check with a doctor."}
	default:
		return models.Status{Label: LabelLow, Text: "Temperature reading is out of expected range."}
	}
}
