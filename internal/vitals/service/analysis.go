package service

import (
	"fmt"
	"strconv"
	"strings"

	common "github.com/Jamolkhon5/lifesense/internal/models"
	"github.com/Jamolkhon5/lifesense/internal/vitals/models"
)

const (
	analysisInstruction = "Please provide a very brief, friendly, and professional health assessment in exactly 2 short sentences covering all three metrics. Keep it concise and encouraging."
	collectingText      = "Health data is being collected. Please check back soon."
	allNormalText       = "All vitals are within normal ranges. Continue monitoring your health."
	consultText         = "Please monitor your symptoms and consider consulting with a healthcare professional if needed."
	keepMonitoringText  = "Continue monitoring your health."
)

// PatientContext renders the optional profile prefix of the analysis prompt.
func PatientContext(p *common.Profile) string {
	if p == nil {
		return ""
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "User"
	}
	return fmt.Sprintf("Patient: %s, Age: %s, Height: %s cm, Weight: %s kg. ",
		name, orNA(float64(p.Age)), orNA(p.Height), orNA(p.Weight))
}

func orNA(v float64) string {
	if v == 0 {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// AnalysisPrompt asks for a two sentence assessment of the present metrics.
func AnalysisPrompt(s models.Summary, profile *common.Profile) string {
	var b strings.Builder
	b.WriteString(PatientContext(profile))
	if t := s.Temperature; t != nil {
		fmt.Fprintf(&b, "Temperature: average %.2f°C (latest %.2f°C), status: %s. ", t.Average, t.Latest, t.Status.Text)
	}
	if h := s.HeartRate; h != nil {
		fmt.Fprintf(&b, "Heart Rate: average %.0f bpm (latest %.0f bpm), status: %s. ", h.Average, h.Latest, h.Status.Text)
	}
	if o := s.SpO2; o != nil {
		fmt.Fprintf(&b, "SpO2: average %.1f%% (latest %.1f%%), status: %s. ", o.Average, o.Latest, o.Status.Text)
	}
	b.WriteString(analysisInstruction)
	return b.String()
}

// FallbackAnalysis is the assessment shown when the model gives no reply.
func FallbackAnalysis(s models.Summary) string {
	var parts []string
	allNormal := true
	add := func(m *models.MetricSummary, format string) {
		if m == nil {
			return
		}
		if m.Status.Label != LabelNormal {
			allNormal = false
		}
		parts = append(parts, fmt.Sprintf(format, m.Status.Text, m.Average))
	}
	add(s.Temperature, "Temperature is %s (%.1f°C)")
	add(s.HeartRate, "heart rate is %s (%.0f bpm)")
	add(s.SpO2, "SpO2 is %s (%.1f%%)")

	if len(parts) == 0 {
		return collectingText
	}

	lead := "Your " + strings.Join(parts, ", ") + ". "
	if allNormal {
		return lead + allNormalText
	}
	for _, p := range parts {
		if strings.Contains(p, "high") || strings.Contains(p, "low") || strings.Contains(p, "elevated") {
			return lead + consultText
		}
	}
	return lead + keepMonitoringText
}
