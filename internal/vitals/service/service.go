package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Jamolkhon5/lifesense/internal/config"
	common "github.com/Jamolkhon5/lifesense/internal/models"
	"github.com/Jamolkhon5/lifesense/internal/repository"
	"github.com/Jamolkhon5/lifesense/internal/vitals/models"
)

const (
	dateLayout       = "2006-01-02"
	clockLabel       = "15:04"
	rangeLabel       = "Jan 2 15:04"
	defaultTempLimit = 15
	defaultHRLimit   = 10
)

var ErrInvalidDate = errors.New("dates must use the YYYY-MM-DD format")

// Assistant answers a conversation through the chat pipeline.
type Assistant interface {
	HandleMessages(ctx context.Context, messages []common.Message, referer string) (string, error)
}

// Dashboard serves the read-only vitals views.
type Dashboard struct {
	store     repository.SensorStore
	assistant Assistant
	points    int
	tempLimit int
	hrLimit   int
	log       zerolog.Logger
}

func NewDashboard(store repository.SensorStore, assistant Assistant, cfg config.DashboardConfig, log zerolog.Logger) *Dashboard {
	d := &Dashboard{
		store:     store,
		assistant: assistant,
		points:    ClampPoints(cfg.ChartPoints),
		tempLimit: cfg.TemperatureWindow,
		hrLimit:   cfg.HeartRateWindow,
		log:       log,
	}
	if d.tempLimit <= 0 {
		d.tempLimit = defaultTempLimit
	}
	if d.hrLimit <= 0 {
		d.hrLimit = defaultHRLimit
	}
	return d
}

// Summary loads both tables concurrently. Either failure fails the summary.
func (d *Dashboard) Summary(ctx context.Context) (models.Summary, error) {
	var (
		temps []common.TemperatureRow
		beats []common.HeartRateRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := d.store.Temperatures(gctx, repository.Latest(d.tempLimit))
		if err != nil {
			return fmt.Errorf("load temperatures: %w", err)
		}
		temps = rows
		return nil
	})
	g.Go(func() error {
		rows, err := d.store.HeartRates(gctx, repository.Latest(d.hrLimit))
		if err != nil {
			return fmt.Errorf("load heart rates: %w", err)
		}
		beats = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Summary{}, err
	}

	return Summarize(temps, beats), nil
}

// Analysis summarizes the vitals and asks the assistant for a short assessment.
// A failed or empty reply is replaced by a fixed assessment built from the statuses.
func (d *Dashboard) Analysis(ctx context.Context, profile *common.Profile, referer string) (models.AnalysisResponse, error) {
	summary, err := d.Summary(ctx)
	if err != nil {
		return models.AnalysisResponse{}, err
	}

	var reply string
	if d.assistant != nil {
		prompt := AnalysisPrompt(summary, profile)
		reply, err = d.assistant.HandleMessages(ctx, []common.Message{{Role: common.RoleUser, Content: prompt}}, referer)
		if err != nil {
			d.log.Warn().Err(err).Msg("analysis reply failed, using fallback")
			reply = ""
		}
	}
	if strings.TrimSpace(reply) == "" {
		reply = FallbackAnalysis(summary)
	}

	return models.AnalysisResponse{Summary: summary, Analysis: reply}, nil
}

// TemperatureSeries returns the chronological temperature chart. Without a date
// range it holds the newest readings of the default window; with one it is returned whole.
func (d *Dashboard) TemperatureSeries(ctx context.Context, start, end string) (models.TemperatureSeries, error) {
	ranged := start != "" || end != ""
	q := repository.Latest(d.points)
	if ranged {
		q = repository.Query{Ascending: true}
	}
	if start != "" {
		from, err := time.Parse(dateLayout, start)
		if err != nil {
			return models.TemperatureSeries{}, fmt.Errorf("start %q: %w", start, ErrInvalidDate)
		}
		q.From = from
	}
	if end != "" {
		to, err := time.Parse(dateLayout, end)
		if err != nil {
			return models.TemperatureSeries{}, fmt.Errorf("end %q: %w", end, ErrInvalidDate)
		}
		q.To = to.AddDate(0, 0, 1)
	}

	rows, err := d.store.Temperatures(ctx, q)
	if err != nil {
		return models.TemperatureSeries{}, fmt.Errorf("load temperatures: %w", err)
	}
	if !ranged {
		rows = chronological(rows)
	}

	layout := clockLabel
	if ranged {
		layout = rangeLabel
	}
	labels := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, label(row.Time, layout))
		values = append(values, row.Degree)
	}

	var out models.TemperatureSeries
	if ranged {
		out.Series = models.Series{Labels: labels, Values: values}
	} else {
		panel := NewPanel(d.points)
		defer panel.DestroyAll()
		panel.Create(ChartTemperature)
		panel.Update(ChartTemperature, labels, values)
		out.Series, _ = panel.Snapshot(ChartTemperature)
	}
	if n := len(out.Values); n > 0 {
		out.LatestStatus = LatestTemperatureStatus(out.Values[n-1])
		out.ThumbnailShown = out.LatestStatus.Label != LabelNormal
	}
	return out, nil
}

// HeartSeries returns the newest heart rate and SpO2 points in chronological order.
// points is clamped to the chart bounds for this request only; points <= 0 selects
// the configured window.
func (d *Dashboard) HeartSeries(ctx context.Context, points int) (models.HeartSeries, error) {
	window := d.points
	if points > 0 {
		window = points
	}
	panel := NewPanel(window)
	defer panel.DestroyAll()
	panel.Create(ChartHeartRate, ChartSpO2)

	rows, err := d.store.HeartRates(ctx, repository.Latest(panel.Points()))
	if err != nil {
		return models.HeartSeries{}, fmt.Errorf("load heart rates: %w", err)
	}

	var bpmLabels, spo2Labels []string
	var bpm, spo2 []float64
	for _, row := range chronological(rows) {
		l := label(row.CreatedAt, clockLabel)
		if row.BPM != nil {
			bpmLabels = append(bpmLabels, l)
			bpm = append(bpm, *row.BPM)
		}
		if row.SpO2 != nil {
			spo2Labels = append(spo2Labels, l)
			spo2 = append(spo2, *row.SpO2)
		}
	}
	panel.Update(ChartHeartRate, bpmLabels, bpm)
	panel.Update(ChartSpO2, spo2Labels, spo2)

	d.log.Debug().Int("rows", len(rows)).Int("window", panel.Points()).Msg("heart series loaded")
	out := models.HeartSeries{Points: panel.Points()}
	out.HeartRate, _ = panel.Snapshot(ChartHeartRate)
	out.SpO2, _ = panel.Snapshot(ChartSpO2)
	return out, nil
}

// chronological returns a reversed copy of newest-first rows.
func chronological[T any](rows []T) []T {
	out := make([]T, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row
	}
	return out
}

// label formats a store timestamp in UTC, falling back to the raw value.
func label(raw, layout string) string {
	t, ok := common.ParseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.UTC().Format(layout)
}
