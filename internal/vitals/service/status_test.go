package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemperatureStatus(t *testing.T) {
	cases := []struct {
		avg  float64
		want string
	}{
		{35, LabelNormal},
		{30, LabelNormal},
		{37.5, LabelNormal},
		{37.51, LabelElevated},
		{38.0, LabelElevated},
		{38.5, LabelElevated},
		{38.6, LabelHigh},
		{29, LabelLow},
		{29.99, LabelLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TemperatureStatus(tc.avg).Label, "avg %v", tc.avg)
	}
	assert.Equal(t, "slightly elevated", TemperatureStatus(38).Text)
}

func TestHeartRateStatus(t *testing.T) {
	cases := []struct {
		avg  float64
		want string
	}{
		{60, LabelNormal},
		{100, LabelNormal},
		{100.5, LabelElevated},
		{120, LabelElevated},
		{121, LabelHigh},
		{59.9, LabelLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HeartRateStatus(tc.avg).Label, "avg %v", tc.avg)
	}
}

func TestSpO2Status(t *testing.T) {
	cases := []struct {
		avg  float64
		want string
	}{
		{100, LabelNormal},
		{95, LabelNormal},
		{101, LabelNormal},
		{94.9, LabelLow},
		{90, LabelLow},
		{89.9, LabelVeryLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SpO2Status(tc.avg).Label, "avg %v", tc.avg)
	}
}

func TestLatestTemperatureStatus(t *testing.T) {
	assert.Equal(t, "Your body temperature is normal.", LatestTemperatureStatus(36.6).Text)
	assert.Equal(t, "Your body temperature is normal.", LatestTemperatureStatus(40).Text)
	assert.Equal(t, "Body temperature is higher than usual.", LatestTemperatureStatus(45).Text)
	assert.Equal(t, LabelHigh, LatestTemperatureStatus(51).Label)
	assert.Equal(t, "Temperature reading is out of expected range.", LatestTemperatureStatus(12).Text)
}
