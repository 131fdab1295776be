package models

import "encoding/json"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// UnmarshalJSON keeps the messages whose role and content are plain strings and
// drops the rest, so one structured content value does not discard the conversation.
func (r *ChatRequest) UnmarshalJSON(data []byte) error {
	var wire struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	r.Messages = make([]Message, 0, len(wire.Messages))
	for _, raw := range wire.Messages {
		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		r.Messages = append(r.Messages, m)
	}
	return nil
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// KnownRole reports whether role may be forwarded to the completion service.
func KnownRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}
