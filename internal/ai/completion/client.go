package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Jamolkhon5/lifesense/internal/models"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	NoResponse     = "No response."
)

// ErrMissingAPIKey is surfaced to callers as a configuration error.
var ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY not configured")

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	SiteURL    string
	AppName    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client forwards a message list to an OpenAI-compatible chat/completions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	siteURL string
	appName string
	client  *http.Client
}

func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: strings.TrimRight(base, "/"),
		model:   cfg.Model,
		siteURL: cfg.SiteURL,
		appName: cfg.AppName,
		client:  client,
	}
}

// Configured reports whether an API key is available.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type completionRequest struct {
	Model    string           `json:"model"`
	Messages []models.Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message *struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
		Text json.RawMessage `json:"text"`
	} `json:"choices"`
	Error json.RawMessage `json:"error"`
}

// Complete sends messages and returns the extracted reply text. referer is forwarded
// as HTTP-Referer; the configured site URL is used when it is empty.
// The upstream body is decoded whatever its status code, since error payloads carry the message to show.
func (c *Client) Complete(ctx context.Context, messages []models.Message, referer string) (string, error) {
	if !c.Configured() {
		return "", ErrMissingAPIKey
	}

	jsonData, err := json.Marshal(completionRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	if referer == "" {
		referer = c.siteURL
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if referer != "" {
		req.Header.Set("HTTP-Referer", referer)
	}
	if c.appName != "" {
		req.Header.Set("X-Title", c.appName)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	reply, err := ExtractReply(body)
	if err != nil {
		return "", fmt.Errorf("completion status %d: %w", resp.StatusCode, err)
	}
	return reply, nil
}

// ExtractReply walks the fallback chain over the shapes providers return:
// choices[0].message.content, choices[0].text, error.message, then NoResponse.
func ExtractReply(body []byte) (string, error) {
	var result completionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	if len(result.Choices) > 0 {
		choice := result.Choices[0]
		if choice.Message != nil {
			if s, ok := stringValue(choice.Message.Content); ok {
				if s = strings.TrimSpace(s); s != "" {
					return s, nil
				}
			}
		}
		if s, ok := stringValue(choice.Text); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s, nil
			}
		}
	}

	if msg := errorMessage(result.Error); msg != "" {
		return "Error: " + msg, nil
	}
	return NoResponse, nil
}

func stringValue(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// errorMessage returns "" for an absent or falsy error value.
func errorMessage(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	switch trimmed {
	case "", "null", "false", "0", `""`:
		return ""
	}
	if s, ok := stringValue(raw); ok {
		return s
	}
	var obj struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if s, ok := stringValue(obj.Message); ok && s != "" {
			return s
		}
	}
	return trimmed
}
