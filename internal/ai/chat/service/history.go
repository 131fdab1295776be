package service

import "github.com/Jamolkhon5/lifesense/internal/models"

// MaxHistory bounds the conversation forwarded upstream.
const MaxHistory = 20

// EnsureSystemSeed prepends the system message unless the list already starts with one.
// The input slice is never modified.
func EnsureSystemSeed(messages []models.Message, seed string) []models.Message {
	if len(messages) > 0 && messages[0].Role == models.RoleSystem {
		return messages
	}
	out := make([]models.Message, 0, len(messages)+1)
	out = append(out, models.Message{Role: models.RoleSystem, Content: seed})
	return append(out, messages...)
}

// SanitizeHistory drops unknown roles and keeps the last MaxHistory messages.
func SanitizeHistory(messages []models.Message) []models.Message {
	kept := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if models.KnownRole(m.Role) {
			kept = append(kept, m)
		}
	}
	if len(kept) > MaxHistory {
		kept = kept[len(kept)-MaxHistory:]
	}
	return kept
}
