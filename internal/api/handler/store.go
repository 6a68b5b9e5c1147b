package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Rrens/vibe-app-store/internal/api/response"
	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/rs/zerolog/log"
)

// Store owns the listing
type Store interface {
	Load(ctx context.Context) (*domain.Listing, error)
	Refresh(ctx context.Context) (*domain.Listing, error)
	Current(ctx context.Context) (*domain.Listing, error)
}

// StoreHandler serves the listing endpoints
type StoreHandler struct {
	store Store
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(store Store) *StoreHandler {
	return &StoreHandler{store: store}
}

// Get returns the cached listing or generates one
func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.store.Load(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Error loading listing")
		response.InternalError(w, "Failed to generate app idea")
		return
	}

	response.OK(w, listing)
}

// Refresh regenerates the listing
func (h *StoreHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	listing, err := h.store.Refresh(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Error refreshing listing")
		response.InternalError(w, "Failed to generate app idea")
		return
	}

	response.OK(w, listing)
}

// Current returns the persisted listing without generating one
func (h *StoreHandler) Current(w http.ResponseWriter, r *http.Request) {
	listing, err := h.store.Current(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "no listing yet")
			return
		}
		log.Error().Err(err).Msg("Error reading listing")
		response.InternalError(w, "failed to read listing")
		return
	}

	response.OK(w, listing)
}
