package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jamolkhon5/lifesense/internal/ai/chat/prompts"
	"github.com/Jamolkhon5/lifesense/internal/models"
)

type recordingCompleter struct {
	reply    string
	err      error
	calls    int
	messages []models.Message
	referer  string
}

func (r *recordingCompleter) Complete(_ context.Context, messages []models.Message, referer string) (string, error) {
	r.calls++
	r.messages = messages
	r.referer = referer
	return r.reply, r.err
}

var testProfile = models.Profile{Name: "Tufayl", Age: 63, Height: 172}

func TestHandleMessagesRefusesOutOfScope(t *testing.T) {
	completer := &recordingCompleter{reply: "should not be used"}
	assistant := NewHealthAssistant(completer, nil, testProfile, zerolog.Nop())

	reply, err := assistant.HandleMessages(context.Background(), userMessage("What's the capital of France"), "")
	require.NoError(t, err)

	assert.Equal(t, prompts.RefusalText, reply)
	assert.Zero(t, completer.calls)
}

func TestHandleMessagesSeedsAndForwards(t *testing.T) {
	completer := &recordingCompleter{reply: "Aim for 7-9 hours."}
	assistant := NewHealthAssistant(completer, nil, testProfile, zerolog.Nop())

	reply, err := assistant.HandleMessages(context.Background(), userMessage("How much sleep do I need?"), "https://dash.example")
	require.NoError(t, err)

	assert.Equal(t, "Aim for 7-9 hours.", reply)
	assert.Equal(t, "https://dash.example", completer.referer)
	require.Len(t, completer.messages, 2)
	assert.Equal(t, models.RoleSystem, completer.messages[0].Role)
	assert.Equal(t, prompts.SystemSeed(testProfile), completer.messages[0].Content)
	assert.Contains(t, completer.messages[0].Content, "Patient profile: name=Tufayl, age=63, height_cm=172.")
}

func TestHandleMessagesTrimsBeforeSeeding(t *testing.T) {
	completer := &recordingCompleter{reply: "ok"}
	assistant := NewHealthAssistant(completer, nil, models.Profile{}, zerolog.Nop())

	var history []models.Message
	for i := 0; i < 30; i++ {
		history = append(history, models.Message{Role: models.RoleUser, Content: fmt.Sprintf("diet question %d", i)})
	}

	_, err := assistant.HandleMessages(context.Background(), history, "")
	require.NoError(t, err)

	require.Len(t, completer.messages, MaxHistory+1)
	assert.Equal(t, prompts.HealthPolicy, completer.messages[0].Content)
	assert.Equal(t, "diet question 10", completer.messages[1].Content)
}

func TestHandleMessagesEnrichesTemperatureQuestions(t *testing.T) {
	completer := &recordingCompleter{reply: "Your readings look stable."}
	source := &fakeTemperatures{rows: newestFirst()}
	assistant := NewHealthAssistant(completer, NewEnricher(source, 15, zerolog.Nop()), testProfile, zerolog.Nop())

	_, err := assistant.HandleMessages(context.Background(), userMessage("Is my temperature normal?"), "")
	require.NoError(t, err)

	require.Len(t, completer.messages, 3)
	assert.True(t, strings.HasPrefix(completer.messages[0].Content, "Recent temperature readings"))
	assert.Equal(t, prompts.SystemSeed(testProfile), completer.messages[1].Content)
	assert.Equal(t, 1, source.calls)
}

func TestHandleMessagesRefusesTemperatureWordsWithoutTopic(t *testing.T) {
	completer := &recordingCompleter{reply: "should not be used"}
	source := &fakeTemperatures{rows: newestFirst()}
	assistant := NewHealthAssistant(completer, NewEnricher(source, 15, zerolog.Nop()), testProfile, zerolog.Nop())

	reply, err := assistant.HandleMessages(context.Background(), userMessage("is this heat dangerous"), "")
	require.NoError(t, err)

	assert.Equal(t, prompts.RefusalText, reply)
	assert.Zero(t, completer.calls)
	assert.Zero(t, source.calls)
}

func TestHandleMessagesSkipsEnrichmentOnStoreFailure(t *testing.T) {
	completer := &recordingCompleter{reply: "ok"}
	source := &fakeTemperatures{err: errors.New("unreachable")}
	assistant := NewHealthAssistant(completer, NewEnricher(source, 15, zerolog.Nop()), testProfile, zerolog.Nop())

	input := userMessage("do I have a fever")
	_, err := assistant.HandleMessages(context.Background(), input, "")
	require.NoError(t, err)

	assert.Equal(t, EnsureSystemSeed(SanitizeHistory(input), prompts.SystemSeed(testProfile)), completer.messages)
}

func TestHandleMessagesNoEnrichmentForOtherTopics(t *testing.T) {
	source := &fakeTemperatures{rows: newestFirst()}
	assistant := NewHealthAssistant(&recordingCompleter{reply: "ok"}, NewEnricher(source, 15, zerolog.Nop()), testProfile, zerolog.Nop())

	_, err := assistant.HandleMessages(context.Background(), userMessage("what about my pulse"), "")
	require.NoError(t, err)
	assert.Zero(t, source.calls)
}

func TestHandleMessagesPropagatesUpstreamError(t *testing.T) {
	upstream := errors.New("connection reset")
	assistant := NewHealthAssistant(&recordingCompleter{err: upstream}, nil, testProfile, zerolog.Nop())

	_, err := assistant.HandleMessages(context.Background(), userMessage("stress tips"), "")
	assert.ErrorIs(t, err, upstream)
}
