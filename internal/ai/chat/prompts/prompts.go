// Package prompts holds every fixed text the chat proxy and the dashboard share:
// the health policy, the refusal and escalation strings, and the keyword lists.
package prompts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Jamolkhon5/lifesense/internal/models"
)

const RefusalText = "I'm not designed to answer that. I only help with health, mental health, sleep, diet, and activity."

const EscalationText = "If you're in danger or thinking about harming yourself, contact local emergency services or a suicide helpline now."

var HealthPolicy = strings.Join([]string{
	"You are a health-only assistant. Scope: personal health safety, mental health, sleep, diet/nutrition/hydration, physical activity/fitness, and interpreting simple temperature readings.",
	"If the user asks for anything outside scope, reply exactly:",
	`"` + RefusalText + `"`,
	"Style: brief, factual, non-judgmental. No diagnosis or treatment instructions. Encourage professional care for concerning symptoms.",
	"If risk of self-harm or harm to others is expressed, say:",
	`"` + EscalationText + `"`,
}, "\n")

// AllowedTopics is matched as lower-case substrings of the last user message.
// Substring matching is a heuristic, not an access control: it is trivially bypassed.
var AllowedTopics = []string{
	"health", "wellness", "safety", "temperature", "fever", "symptom", "risk",
	"mental", "anxiety", "stress", "depression", "mood", "therapy", "counseling", "mindfulness", "meditation",
	"sleep", "insomnia", "rest", "circadian", "nap",
	"diet", "food", "meal", "calorie", "nutrition", "hydrate", "hydration", "water", "protein", "carb", "fat", "vitamin",
	"exercise", "workout", "walk", "steps", "run", "yoga", "strength", "cardio", "fitness", "activity",
	"bmi", "weight", "height", "age", "heart rate", "pulse", "bp", "blood pressure",
}

// TemperatureTerms trigger the temperature context message.
var TemperatureTerms = []string{"temp", "temperature", "fever", "heat", "body temp"}

const temperatureGuidance = "Guidance: Refer to these readings when asked about temperature. Interpret trends briefly."

// ProfileBlurb renders the patient line of the system prompt. Unset fields are left out.
func ProfileBlurb(p models.Profile) string {
	if p.IsZero() {
		return ""
	}
	fields := make([]string, 0, 4)
	if name := strings.TrimSpace(p.Name); name != "" {
		fields = append(fields, "name="+name)
	}
	if p.Age > 0 {
		fields = append(fields, "age="+strconv.Itoa(p.Age))
	}
	if p.Height > 0 {
		fields = append(fields, "height_cm="+formatNumber(p.Height))
	}
	if p.Weight > 0 {
		fields = append(fields, "weight_kg="+formatNumber(p.Weight))
	}
	return fmt.Sprintf("Patient profile: %s. Use only for health-related answers.", strings.Join(fields, ", "))
}

// SystemSeed is the hidden first message of every conversation.
func SystemSeed(p models.Profile) string {
	blurb := ProfileBlurb(p)
	if blurb == "" {
		return HealthPolicy
	}
	return HealthPolicy + "\n\n" + blurb
}

// TemperatureContext wraps formatted readings into the enrichment system message.
func TemperatureContext(formatted string) string {
	return "Recent temperature readings (newest last):\n" + formatted + "\n\n" + temperatureGuidance
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
