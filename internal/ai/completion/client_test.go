package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jamolkhon5/lifesense/internal/models"
)

func TestExtractReply(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"message content", `{"choices":[{"message":{"content":"  Drink water.  "}}]}`, "Drink water."},
		{"legacy text", `{"choices":[{"text":"Sleep more.\n"}]}`, "Sleep more."},
		{"blank content falls to text", `{"choices":[{"message":{"content":"  "},"text":"fallback"}]}`, "fallback"},
		{"non string content", `{"choices":[{"message":{"content":[{"type":"text"}]},"text":"plain"}]}`, "plain"},
		{"error message", `{"error":{"message":"rate limited","code":429}}`, "Error: rate limited"},
		{"error string", `{"error":"quota exceeded"}`, "Error: quota exceeded"},
		{"error without message", `{"error":{"code":500}}`, `Error: {"code":500}`},
		{"empty choices with error", `{"choices":[],"error":{"message":"overloaded"}}`, "Error: overloaded"},
		{"nothing usable", `{"choices":[{"message":{"content":""}}]}`, NoResponse},
		{"null error", `{"error":null}`, NoResponse},
		{"empty object", `{}`, NoResponse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractReply([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractReplyInvalidJSON(t *testing.T) {
	_, err := ExtractReply([]byte("<html>bad gateway</html>"))
	assert.Error(t, err)
}

func TestCompleteSendsModelAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "https://dash.example", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "LifeSense", r.Header.Get("X-Title"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test/model", req.Model)
		assert.Equal(t, []models.Message{{Role: "user", Content: "hi"}}, req.Messages)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "test/model",
		SiteURL:    "https://lifesense.vercel.app",
		AppName:    "LifeSense",
		HTTPClient: server.Client(),
	})

	reply, err := client.Complete(context.Background(), []models.Message{{Role: "user", Content: "hi"}}, "https://dash.example")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
}

func TestCompleteDefaultsRefererToSiteURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://lifesense.vercel.app", r.Header.Get("HTTP-Referer"))
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m", SiteURL: "https://lifesense.vercel.app", HTTPClient: server.Client()})

	reply, err := client.Complete(context.Background(), []models.Message{{Role: "user", Content: "hi"}}, "")
	require.NoError(t, err)
	assert.Equal(t, "Error: rate limited", reply)
}

func TestCompleteMissingKey(t *testing.T) {
	client := NewClient(Config{Model: "m"})
	assert.False(t, client.Configured())

	_, err := client.Complete(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestCompleteUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: url, Model: "m"})
	_, err := client.Complete(context.Background(), []models.Message{{Role: "user", Content: "hi"}}, "")
	assert.Error(t, err)
}
