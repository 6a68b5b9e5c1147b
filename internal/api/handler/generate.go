package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Rrens/vibe-app-store/internal/api/response"
	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/rs/zerolog/log"
)

// IdeaGenerator produces app concepts
type IdeaGenerator interface {
	GenerateIdeas(ctx context.Context, count int) ([]domain.Idea, error)
}

// ThumbnailGenerator renders app icons
type ThumbnailGenerator interface {
	GenerateThumbnail(ctx context.Context, prompt string) (string, error)
}

// GenerateHandler serves the idea and thumbnail endpoints
type GenerateHandler struct {
	ideas      IdeaGenerator
	thumbnails ThumbnailGenerator
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(ideas IdeaGenerator, thumbnails ThumbnailGenerator) *GenerateHandler {
	return &GenerateHandler{
		ideas:      ideas,
		thumbnails: thumbnails,
	}
}

type ideaRequest struct {
	Count int `json:"count" validate:"min=0,max=50"`
}

type ideaResponse struct {
	Apps []domain.Idea `json:"apps"`
}

// GenerateAppIdea handles POST /api/generate-app-idea
func (h *GenerateHandler) GenerateAppIdea(w http.ResponseWriter, r *http.Request) {
	var req ideaRequest
	if err := decodeBody(r, &req); err != nil {
		// Malformed bodies fall back to the defaults
		req = ideaRequest{}
	}

	if err := validate.Struct(req); err != nil {
		response.RawError(w, http.StatusBadRequest, "count must be between 1 and 50")
		return
	}

	count := req.Count
	if count == 0 {
		count = 1
	}

	ideas, err := h.ideas.GenerateIdeas(r.Context(), count)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			response.RawError(w, http.StatusBadRequest, "count must be between 1 and 50")
			return
		}
		log.Error().Err(err).Msg("Error generating app idea")
		response.RawError(w, http.StatusInternalServerError, "Failed to generate app idea")
		return
	}

	if ideas == nil {
		ideas = []domain.Idea{}
	}
	response.Raw(w, http.StatusOK, ideaResponse{Apps: ideas})
}

type thumbnailRequest struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

// GenerateThumbnail handles POST /api/generate-thumbnail
func (h *GenerateHandler) GenerateThumbnail(w http.ResponseWriter, r *http.Request) {
	var req thumbnailRequest
	if err := decodeBody(r, &req); err != nil {
		response.RawError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.RawError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	url, err := h.thumbnails.GenerateThumbnail(r.Context(), req.Prompt)
	if err != nil {
		log.Error().Err(err).Msg("Error generating thumbnail")
		response.RawError(w, http.StatusInternalServerError, "Failed to generate thumbnail")
		return
	}

	response.Raw(w, http.StatusOK, map[string]string{"url": url})
}
