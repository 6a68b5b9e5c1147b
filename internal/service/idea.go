package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/Rrens/vibe-app-store/internal/llm"
	"github.com/Rrens/vibe-app-store/internal/metrics"
	"github.com/rs/zerolog/log"
)

// MaxIdeaCount bounds a single idea generation request
const MaxIdeaCount = 50

// IdeaService asks a language model for app concepts
type IdeaService struct {
	llmRouter *llm.Router
	provider  string
	model     string
}

// NewIdeaService creates a new idea service. Empty provider and model
// select the router's default provider and that provider's default model.
func NewIdeaService(llmRouter *llm.Router, provider, model string) *IdeaService {
	return &IdeaService{
		llmRouter: llmRouter,
		provider:  provider,
		model:     model,
	}
}

type ideaPayload struct {
	Apps []domain.Idea `json:"apps"`
}

// GenerateIdeas requests count concepts in a single completion
func (s *IdeaService) GenerateIdeas(ctx context.Context, count int) ([]domain.Idea, error) {
	if count < 1 || count > MaxIdeaCount {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", domain.ErrInvalidInput, MaxIdeaCount)
	}

	ideas, err := s.generate(ctx, count)
	metrics.RecordIdeaBatch(err == nil)
	if err != nil {
		log.Error().Err(err).Int("count", count).Msg("idea generation failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrIdeaGeneration, err)
	}
	return ideas, nil
}

func (s *IdeaService) generate(ctx context.Context, count int) ([]domain.Idea, error) {
	provider, err := s.llmRouter.GetProvider(s.provider)
	if err != nil {
		return nil, err
	}

	model := s.model
	if model == "" {
		model = provider.DefaultModel()
	}

	resp, err := provider.Generate(ctx, llm.Request{
		Prompt:   llm.BuildIdeaPrompt(count),
		JSONMode: true,
	}, model)
	if err != nil {
		return nil, err
	}

	content := resp.Content
	if strings.TrimSpace(content) == "" {
		content = llm.EmptyIdeas
	}

	var payload ideaPayload
	if err := json.Unmarshal([]byte(llm.CleanJSON(content)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}

	log.Debug().
		Str("provider", provider.Name()).
		Str("model", model).
		Int("tokens_used", resp.TokensUsed).
		Int("returned", len(payload.Apps)).
		Msg("ideas generated")

	ideas := make([]domain.Idea, 0, count)
	for _, idea := range payload.Apps {
		idea.Name = strings.TrimSpace(idea.Name)
		idea.Description = strings.TrimSpace(idea.Description)
		if idea.Name == "" || idea.Description == "" {
			continue
		}
		if idea.ImagePrompt == "" {
			idea.ImagePrompt = fmt.Sprintf("glossy iOS 6 skeuomorphic app icon for %s: %s", idea.Name, idea.Description)
		}
		ideas = append(ideas, idea)
		if len(ideas) == count {
			break
		}
	}

	return ideas, nil
}
