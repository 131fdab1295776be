package service

import (
	"strings"

	"github.com/Jamolkhon5/lifesense/internal/ai/chat/prompts"
	"github.com/Jamolkhon5/lifesense/internal/models"
)

const (
	IntentOutOfScope  = "out_of_scope"
	IntentHealth      = "health"
	IntentTemperature = "temperature"
)

// Intent is the classification of the last user message.
type Intent struct {
	Type    string
	Content string
}

// IntentAnalyzer decides whether a conversation is in scope with plain
// case-insensitive substring matching. No stemming, no negation, English only.
// It is a best-effort topic filter and must not be treated as a security boundary.
type IntentAnalyzer struct {
	topicWords       []string
	temperatureWords []string
}

// NewIntentAnalyzer builds an analyzer over the allowed topic and temperature
// keyword lists.
func NewIntentAnalyzer() *IntentAnalyzer {
	return &IntentAnalyzer{
		topicWords:       prompts.AllowedTopics,
		temperatureWords: prompts.TemperatureTerms,
	}
}

// LastUserText returns the content of the most recent user message, or "".
func LastUserText(messages []models.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// Analyze classifies a conversation by its most recent user message.
func (ia *IntentAnalyzer) Analyze(messages []models.Message) Intent {
	return ia.AnalyzeMessage(LastUserText(messages))
}

// AnalyzeMessage classifies one message. A message without any allowed topic is
// out of scope even when it mentions temperature; an in-scope message that
// mentions temperature is a temperature intent.
func (ia *IntentAnalyzer) AnalyzeMessage(message string) Intent {
	lower := strings.ToLower(message)

	if !ia.containsAny(lower, ia.topicWords) {
		return Intent{Type: IntentOutOfScope, Content: message}
	}
	if ia.containsAny(lower, ia.temperatureWords) {
		return Intent{Type: IntentTemperature, Content: message}
	}
	return Intent{Type: IntentHealth, Content: message}
}

// InScope reports whether the intent may be forwarded upstream.
func (i Intent) InScope() bool {
	return i.Type != IntentOutOfScope
}

func (ia *IntentAnalyzer) containsAny(message string, words []string) bool {
	for _, word := range words {
		if strings.Contains(message, word) {
			return true
		}
	}
	return false
}
