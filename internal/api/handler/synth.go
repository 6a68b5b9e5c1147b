package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rrens/vibe-app-store/internal/api/response"
	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/rs/zerolog/log"
)

// Synthesizer creates live demos and exposes the sessions behind them
type Synthesizer interface {
	Synthesize(ctx context.Context, message string) (*domain.Synthesis, error)
	GetChat(ctx context.Context, chatID string) (json.RawMessage, error)
	GetMessages(ctx context.Context, chatID string) (json.RawMessage, error)
}

// SynthHandler serves the app generation and chat lookup endpoints
type SynthHandler struct {
	synth Synthesizer
}

// NewSynthHandler creates a new synth handler
func NewSynthHandler(synth Synthesizer) *SynthHandler {
	return &SynthHandler{synth: synth}
}

type synthRequest struct {
	Message string `json:"message" validate:"required,max=8000"`
}

type chatRequest struct {
	ChatID string `json:"chatId" validate:"required,max=128"`
}

type synthFailure struct {
	Error  string `json:"error"`
	WebURL string `json:"webUrl,omitempty"`
}

// synthesisFailure maps a synthesis error to its status and public body
func synthesisFailure(err error) (int, synthFailure) {
	webURL := domain.FallbackURL(err)
	switch {
	case errors.Is(err, domain.ErrSynthesisTimeout):
		return http.StatusRequestTimeout, synthFailure{Error: "Generation timed out", WebURL: webURL}
	case errors.Is(err, domain.ErrSynthesisFailed):
		return http.StatusInternalServerError, synthFailure{Error: "App generation failed", WebURL: webURL}
	default:
		return http.StatusInternalServerError, synthFailure{Error: "Failed to generate app"}
	}
}

// GenerateApp handles POST /api/generate-v0-app
func (h *SynthHandler) GenerateApp(w http.ResponseWriter, r *http.Request) {
	var req synthRequest
	if err := decodeBody(r, &req); err != nil {
		response.RawError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.RawError(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := h.synth.Synthesize(r.Context(), req.Message)
	if err != nil {
		log.Error().Err(err).Msg("Error generating app")
		status, body := synthesisFailure(err)
		response.Raw(w, status, body)
		return
	}

	response.Raw(w, http.StatusOK, result)
}

// GetChat handles POST /api/get-v0-chat
func (h *SynthHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		response.RawError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.RawError(w, http.StatusBadRequest, "chatId is required")
		return
	}

	chat, err := h.synth.GetChat(r.Context(), req.ChatID)
	if err != nil {
		log.Error().Err(err).Str("chat_id", req.ChatID).Msg("Error fetching chat")
		response.RawError(w, http.StatusInternalServerError, "Failed to fetch chat")
		return
	}

	response.Raw(w, http.StatusOK, map[string]any{"chat": chat})
}

// GetMessages handles POST /api/get-v0-messages
func (h *SynthHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		response.RawError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.RawError(w, http.StatusBadRequest, "chatId is required")
		return
	}

	messages, err := h.synth.GetMessages(r.Context(), req.ChatID)
	if err != nil {
		log.Error().Err(err).Str("chat_id", req.ChatID).Msg("Error fetching messages")
		response.RawError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	if len(messages) == 0 {
		messages = json.RawMessage("[]")
	}
	response.Raw(w, http.StatusOK, map[string]any{"messages": messages})
}
