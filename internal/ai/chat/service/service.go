package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Jamolkhon5/lifesense/internal/ai/chat/prompts"
	"github.com/Jamolkhon5/lifesense/internal/models"
)

// Completer forwards the final message list to the language model.
type Completer interface {
	Complete(ctx context.Context, messages []models.Message, referer string) (string, error)
}

// HealthAssistant turns a client conversation into a scoped, seeded, bounded request.
type HealthAssistant struct {
	analyzer  *IntentAnalyzer
	enricher  *Enricher
	completer Completer
	seed      string
	log       zerolog.Logger
}

// NewHealthAssistant wires the scope filter, history handling and temperature
// enrichment in front of completer. The system seed is rendered once from profile.
func NewHealthAssistant(completer Completer, enricher *Enricher, profile models.Profile, log zerolog.Logger) *HealthAssistant {
	return &HealthAssistant{
		analyzer:  NewIntentAnalyzer(),
		enricher:  enricher,
		completer: completer,
		seed:      prompts.SystemSeed(profile),
		log:       log,
	}
}

// Prepare builds the outbound message list. ok is false when the conversation
// is out of scope, in which case nothing should be sent upstream.
func (a *HealthAssistant) Prepare(ctx context.Context, messages []models.Message) (prepared []models.Message, ok bool) {
	intent := a.analyzer.Analyze(messages)
	if !intent.InScope() {
		return nil, false
	}

	prepared = EnsureSystemSeed(SanitizeHistory(messages), a.seed)
	if intent.Type == IntentTemperature {
		prepared = a.enricher.Enrich(ctx, prepared)
	}
	return prepared, true
}

// HandleMessages answers the conversation. Out-of-scope questions get the fixed
// refusal without any upstream call. Upstream failures are wrapped and returned
// so the caller can pick a fallback reply.
func (a *HealthAssistant) HandleMessages(ctx context.Context, messages []models.Message, referer string) (string, error) {
	log := a.log.With().Str("exchange_id", uuid.NewString()).Logger()

	prepared, ok := a.Prepare(ctx, messages)
	if !ok {
		log.Info().Msg("question out of scope, refusing")
		return prompts.RefusalText, nil
	}

	log.Debug().Int("messages", len(prepared)).Msg("forwarding conversation")
	reply, err := a.completer.Complete(ctx, prepared, referer)
	if err != nil {
		return "", fmt.Errorf("complete conversation: %w", err)
	}
	return reply, nil
}
