package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/Rrens/vibe-app-store/internal/imagegen/replicate"
	"github.com/rs/zerolog/log"
)

// ImageClient is the image generation backend
type ImageClient interface {
	GetModel(ctx context.Context, owner, name string) (*replicate.Model, error)
	CreatePrediction(ctx context.Context, version string, input map[string]any) (*replicate.Prediction, error)
	Wait(ctx context.Context, prediction *replicate.Prediction) (*replicate.Prediction, error)
}

// ThumbnailService renders app icons with a fixed image model
type ThumbnailService struct {
	client      ImageClient
	modelOwner  string
	modelName   string
	waitTimeout time.Duration
}

// NewThumbnailService creates a new thumbnail service
func NewThumbnailService(client ImageClient, modelOwner, modelName string, waitTimeout time.Duration) *ThumbnailService {
	if modelOwner == "" {
		modelOwner = "black-forest-labs"
	}
	if modelName == "" {
		modelName = "flux-schnell"
	}
	return &ThumbnailService{
		client:      client,
		modelOwner:  modelOwner,
		modelName:   modelName,
		waitTimeout: waitTimeout,
	}
}

// GenerateThumbnail renders one square PNG icon and returns its URL
func (s *ThumbnailService) GenerateThumbnail(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput)
	}

	url, err := s.render(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("thumbnail generation failed")
		return "", fmt.Errorf("%w: %w", domain.ErrThumbnailGeneration, err)
	}
	return url, nil
}

func (s *ThumbnailService) render(ctx context.Context, prompt string) (string, error) {
	model, err := s.client.GetModel(ctx, s.modelOwner, s.modelName)
	if err != nil {
		return "", err
	}
	if model.LatestVersion == nil || model.LatestVersion.ID == "" {
		return "", fmt.Errorf("model %s/%s has no published version", s.modelOwner, s.modelName)
	}

	prediction, err := s.client.CreatePrediction(ctx, model.LatestVersion.ID, map[string]any{
		"prompt":         prompt,
		"num_outputs":    1,
		"aspect_ratio":   "1:1",
		"output_format":  "png",
		"output_quality": 80,
	})
	if err != nil {
		return "", err
	}

	if s.waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.waitTimeout)
		defer cancel()
	}

	final, err := s.client.Wait(ctx, prediction)
	if err != nil {
		return "", err
	}

	return final.OutputURL()
}
