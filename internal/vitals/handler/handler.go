package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	api "github.com/Jamolkhon5/lifesense/internal/handler"
	common "github.com/Jamolkhon5/lifesense/internal/models"
	"github.com/Jamolkhon5/lifesense/internal/vitals/models"
	"github.com/Jamolkhon5/lifesense/internal/vitals/service"
	"github.com/Jamolkhon5/lifesense/internal/vitals/validator"
)

const (
	maxBodyBytes   = 64 << 10
	unavailableMsg = "Unable to load health data. Please try again later."
)

// Dashboard is the vitals service behind the routes.
type Dashboard interface {
	Summary(ctx context.Context) (models.Summary, error)
	Analysis(ctx context.Context, profile *common.Profile, referer string) (models.AnalysisResponse, error)
	TemperatureSeries(ctx context.Context, start, end string) (models.TemperatureSeries, error)
	HeartSeries(ctx context.Context, points int) (models.HeartSeries, error)
}

type VitalsHandler struct {
	dashboard Dashboard
	profile   common.Profile
	log       zerolog.Logger
}

// NewVitalsHandler builds the handler. profile is used for analysis requests that carry none.
func NewVitalsHandler(dashboard Dashboard, profile common.Profile, log zerolog.Logger) *VitalsHandler {
	return &VitalsHandler{
		dashboard: dashboard,
		profile:   profile,
		log:       log,
	}
}

func (h *VitalsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/vitals", func(r chi.Router) {
		r.Get("/summary", h.Summary)
		r.Post("/analysis", h.Analysis)
		r.Get("/temperature", h.Temperature)
		r.Get("/heart", h.Heart)
	})
}

func (h *VitalsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context())
	if err != nil {
		h.unavailable(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, summary)
}

func (h *VitalsHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		api.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile := req.Profile
	if profile == nil && !h.profile.IsZero() {
		p := h.profile
		profile = &p
	}
	if req.Profile != nil {
		if state := validator.ValidateProfile(*req.Profile); !state.IsValid {
			api.WriteJSON(w, http.StatusBadRequest, models.ProfileErrorResponse{Error: "Invalid profile", Errors: state.Errors})
			return
		}
	}

	resp, err := h.dashboard.Analysis(r.Context(), profile, api.Referer(r))
	if err != nil {
		h.unavailable(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, resp)
}

func (h *VitalsHandler) Temperature(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	series, err := h.dashboard.TemperatureSeries(r.Context(), q.Get("start"), q.Get("end"))
	if errors.Is(err, service.ErrInvalidDate) {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.unavailable(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, series)
}

func (h *VitalsHandler) Heart(w http.ResponseWriter, r *http.Request) {
	var points int
	if raw := r.URL.Query().Get("points"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "points must be an integer")
			return
		}
		points = n
	}

	series, err := h.dashboard.HeartSeries(r.Context(), points)
	if err != nil {
		h.unavailable(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, series)
}

func (h *VitalsHandler) unavailable(w http.ResponseWriter, err error) {
	h.log.Error().Err(err).Msg("vitals store request failed")
	api.WriteError(w, http.StatusBadGateway, unavailableMsg)
}
