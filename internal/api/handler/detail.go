package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Rrens/vibe-app-store/internal/api/response"
	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// DetailOpener resolves the demo of a concept
type DetailOpener interface {
	Open(ctx context.Context, ref domain.AppRef) (*domain.AppDetail, error)
}

// DetailHandler serves the app detail endpoint
type DetailHandler struct {
	detail DetailOpener
}

// NewDetailHandler creates a new detail handler
func NewDetailHandler(detail DetailOpener) *DetailHandler {
	return &DetailHandler{detail: detail}
}

// Get handles GET /api/v1/apps/{id}?name=&description=
func (h *DetailHandler) Get(w http.ResponseWriter, r *http.Request) {
	ref := domain.AppRef{
		ID:          chi.URLParam(r, "id"),
		Name:        r.URL.Query().Get("name"),
		Description: r.URL.Query().Get("description"),
	}

	if err := validate.Struct(ref); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	detail, err := h.detail.Open(r.Context(), ref)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			response.BadRequest(w, err.Error())
			return
		}

		log.Error().Err(err).Str("app_id", ref.ID).Msg("Error opening app")

		_, body := synthesisFailure(err)
		if body.WebURL != "" {
			response.Redirect(w, body.WebURL, body)
			return
		}
		response.InternalError(w, "Failed to generate app. Please try again.")
		return
	}

	response.OK(w, detail)
}
