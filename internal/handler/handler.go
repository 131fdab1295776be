package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Jamolkhon5/lifesense/internal/ai/completion"
	"github.com/Jamolkhon5/lifesense/internal/models"
)

const maxBodyBytes = 1 << 20

// Assistant answers a client conversation.
type Assistant interface {
	HandleMessages(ctx context.Context, messages []models.Message, referer string) (string, error)
}

type Handler struct {
	assistant Assistant
	log       zerolog.Logger
}

func NewHandler(assistant Assistant, log zerolog.Logger) *Handler {
	return &Handler{
		assistant: assistant,
		log:       log,
	}
}

// RegisterRoutes mounts the chat proxy. Every method reaches Chat so that it can answer 405 itself.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/api/chat", h.Chat)
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// A body that is not {messages: [...]} counts as an empty conversation.
	var req models.ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.log.Debug().Err(err).Msg("unreadable chat body")
		req.Messages = nil
	}

	reply, err := h.assistant.HandleMessages(r.Context(), req.Messages, Referer(r))
	if err != nil {
		if errors.Is(err, completion.ErrMissingAPIKey) {
			h.log.Error().Msg("completion api key missing")
			WriteError(w, http.StatusInternalServerError, completion.ErrMissingAPIKey.Error())
			return
		}
		h.log.Error().Err(err).Msg("chat request failed")
		WriteError(w, http.StatusInternalServerError, rootMessage(err))
		return
	}

	WriteJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

// Referer is the page the request came from: Origin, else Referer.
func Referer(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	return r.Header.Get("Referer")
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, models.ErrorResponse{Error: message})
}

// rootMessage strips our own wrapping so the client sees the upstream cause.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
