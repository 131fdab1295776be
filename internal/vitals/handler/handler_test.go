package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jamolkhon5/lifesense/internal/config"
	common "github.com/Jamolkhon5/lifesense/internal/models"
	"github.com/Jamolkhon5/lifesense/internal/repository"
	"github.com/Jamolkhon5/lifesense/internal/vitals/models"
	"github.com/Jamolkhon5/lifesense/internal/vitals/service"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type brokenStore struct{}

func (brokenStore) Temperatures(context.Context, repository.Query) ([]common.TemperatureRow, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) HeartRates(context.Context, repository.Query) ([]common.HeartRateRow, error) {
	return nil, errors.New("connection refused")
}

type cannedAssistant struct {
	reply   string
	referer string
}

func (c *cannedAssistant) HandleMessages(_ context.Context, _ []common.Message, referer string) (string, error) {
	c.referer = referer
	return c.reply, nil
}

func newServer(store repository.SensorStore, assistant service.Assistant, profile common.Profile) http.Handler {
	cfg := config.DashboardConfig{TemperatureWindow: 15, HeartRateWindow: 10, ChartPoints: 150}
	dashboard := service.NewDashboard(store, assistant, cfg, zerolog.Nop())
	r := chi.NewRouter()
	NewVitalsHandler(dashboard, profile, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Referer", "https://dash.example/index.html")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestSummaryFromMockStore(t *testing.T) {
	h := newServer(repository.NewMockStore(func() time.Time { return fixedNow }), nil, common.Profile{})

	rec := do(h, http.MethodGet, "/api/vitals/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decode[models.Summary](t, rec)
	require.NotNil(t, summary.Temperature)
	require.NotNil(t, summary.HeartRate)
	require.NotNil(t, summary.SpO2)
	assert.Equal(t, 15, summary.Temperature.Count)
	assert.Equal(t, 10, summary.HeartRate.Count)
	assert.Equal(t, service.LabelNormal, summary.Temperature.Status.Label)
}

func TestStoreFailuresAreBadGateway(t *testing.T) {
	h := newServer(brokenStore{}, nil, common.Profile{})

	for _, req := range []struct{ method, target string }{
		{http.MethodGet, "/api/vitals/summary"},
		{http.MethodPost, "/api/vitals/analysis"},
		{http.MethodGet, "/api/vitals/temperature"},
		{http.MethodGet, "/api/vitals/heart"},
	} {
		rec := do(h, req.method, req.target, "")
		assert.Equal(t, http.StatusBadGateway, rec.Code, req.target)
		assert.Equal(t, unavailableMsg, decode[common.ErrorResponse](t, rec).Error, req.target)
	}
}

func TestAnalysisRejectsInvalidProfile(t *testing.T) {
	assistant := &cannedAssistant{reply: "fine"}
	h := newServer(repository.NewMockStore(nil), assistant, common.Profile{})

	rec := do(h, http.MethodPost, "/api/vitals/analysis", `{"profile":{"name":"","age":300,"height":170,"weight":60}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[models.ProfileErrorResponse](t, rec)
	assert.Contains(t, resp.Errors, "name")
	assert.Contains(t, resp.Errors, "age")
	assert.Empty(t, assistant.referer)
}

func TestAnalysisMalformedBody(t *testing.T) {
	h := newServer(repository.NewMockStore(nil), nil, common.Profile{})

	rec := do(h, http.MethodPost, "/api/vitals/analysis", `{"profile":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisRelaysReply(t *testing.T) {
	assistant := &cannedAssistant{reply: "All good. Stay hydrated."}
	h := newServer(repository.NewMockStore(nil), assistant, common.Profile{Name: "Configured"})

	rec := do(h, http.MethodPost, "/api/vitals/analysis", `{"profile":{"name":"Ana","age":30,"height":165,"weight":58}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[models.AnalysisResponse](t, rec)
	assert.Equal(t, "All good. Stay hydrated.", resp.Analysis)
	assert.NotNil(t, resp.Summary.HeartRate)
	assert.Equal(t, "https://dash.example/index.html", assistant.referer)
}

func TestTemperatureRejectsBadDate(t *testing.T) {
	h := newServer(repository.NewMockStore(nil), nil, common.Profile{})

	rec := do(h, http.MethodGet, "/api/vitals/temperature?start=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemperatureSeries(t *testing.T) {
	h := newServer(repository.NewMockStore(func() time.Time { return fixedNow }), nil, common.Profile{})

	rec := do(h, http.MethodGet, "/api/vitals/temperature", "")
	require.Equal(t, http.StatusOK, rec.Code)

	series := decode[models.TemperatureSeries](t, rec)
	assert.Len(t, series.Values, 150)
	assert.Equal(t, "12:00", series.Labels[len(series.Labels)-1])
	assert.False(t, series.ThumbnailShown)
}

func TestHeartSeriesPoints(t *testing.T) {
	h := newServer(repository.NewMockStore(func() time.Time { return fixedNow }), nil, common.Profile{})

	rec := do(h, http.MethodGet, "/api/vitals/heart?points=90", "")
	require.Equal(t, http.StatusOK, rec.Code)
	series := decode[models.HeartSeries](t, rec)
	assert.Equal(t, 90, series.Points)
	assert.Len(t, series.HeartRate.Values, 90)
	assert.Len(t, series.SpO2.Values, 90)

	rec = do(h, http.MethodGet, "/api/vitals/heart?points=many", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
