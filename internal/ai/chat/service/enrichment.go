package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Jamolkhon5/lifesense/internal/ai/chat/prompts"
	"github.com/Jamolkhon5/lifesense/internal/models"
	"github.com/Jamolkhon5/lifesense/internal/repository"
)

const DefaultEnrichmentWindow = 15

// TemperatureSource is the slice of the sensor store enrichment needs.
type TemperatureSource interface {
	Temperatures(ctx context.Context, q repository.Query) ([]models.TemperatureRow, error)
}

// Enricher adds recent temperature readings as a hidden system message.
type Enricher struct {
	source TemperatureSource
	window int
	log    zerolog.Logger
}

func NewEnricher(source TemperatureSource, window int, log zerolog.Logger) *Enricher {
	if window <= 0 {
		window = DefaultEnrichmentWindow
	}
	return &Enricher{source: source, window: window, log: log}
}

// Enrich prepends the temperature context. Any store failure leaves messages untouched.
func (e *Enricher) Enrich(ctx context.Context, messages []models.Message) []models.Message {
	if e == nil || e.source == nil {
		return messages
	}
	rows, err := e.source.Temperatures(ctx, repository.Latest(e.window))
	if err != nil {
		e.log.Warn().Err(err).Msg("fetch latest temperatures")
		return messages
	}
	formatted := FormatTemperatures(rows)
	if formatted == "" {
		return messages
	}

	out := make([]models.Message, 0, len(messages)+1)
	out = append(out, models.Message{Role: models.RoleSystem, Content: prompts.TemperatureContext(formatted)})
	return append(out, messages...)
}

// FormatTemperatures takes rows newest-first and renders them oldest-first,
// one "<timestamp> -> <degree> °C" line each.
func FormatTemperatures(rows []models.TemperatureRow) string {
	if len(rows) == 0 {
		return ""
	}
	lines := make([]string, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		lines = append(lines, formatTimestamp(rows[i].Time)+" -> "+strconv.FormatFloat(rows[i].Degree, 'f', -1, 64)+" °C")
	}
	return strings.Join(lines, "\n")
}

func formatTimestamp(raw string) string {
	t, ok := models.ParseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
