package api

import (
	"github.com/Rrens/vibe-app-store/internal/config"
	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/Rrens/vibe-app-store/internal/imagegen/replicate"
	"github.com/Rrens/vibe-app-store/internal/llm"
	"github.com/Rrens/vibe-app-store/internal/llm/anthropic"
	"github.com/Rrens/vibe-app-store/internal/llm/deepseek"
	"github.com/Rrens/vibe-app-store/internal/llm/gemini"
	"github.com/Rrens/vibe-app-store/internal/llm/ollama"
	"github.com/Rrens/vibe-app-store/internal/llm/openai"
	"github.com/Rrens/vibe-app-store/internal/service"
	v0 "github.com/Rrens/vibe-app-store/internal/synth/v0"
	"github.com/rs/zerolog/log"
)

// Services bundles the application services behind the HTTP layer
type Services struct {
	LLM        *llm.Router
	KV         domain.KVStore
	Ideas      *service.IdeaService
	Thumbnails *service.ThumbnailService
	Synth      *service.SynthService
	Store      *service.StoreService
	Detail     *service.DetailService
}

// NewLLMRouter registers every provider that has credentials
func NewLLMRouter(cfg config.LLMConfig) *llm.Router {
	router := llm.NewRouter(cfg.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.DefaultProvider)

	if cfg.OpenRouter.APIKey != "" {
		router.RegisterProvider(openai.NewOpenRouterProvider(cfg.OpenRouter.APIKey, cfg.OpenRouter.BaseURL, cfg.OpenRouter.Model))
	}
	if cfg.Ollama.Host != "" {
		log.Info().Str("host", cfg.Ollama.Host).Msg("Registering Ollama provider")
		router.RegisterProvider(ollama.NewProvider(cfg.Ollama.Host, cfg.Ollama.DefaultModel))
	}
	if cfg.OpenAI.APIKey != "" {
		router.RegisterProvider(openai.NewProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model))
	}
	if cfg.Anthropic.APIKey != "" {
		router.RegisterProvider(anthropic.NewProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model))
	}
	if cfg.DeepSeek.APIKey != "" {
		router.RegisterProvider(deepseek.NewProvider(cfg.DeepSeek.APIKey, cfg.DeepSeek.Model))
	}
	if cfg.Gemini.APIKey != "" {
		router.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	}

	if len(router.ListProviders()) == 0 {
		log.Warn().Msg("No LLM provider configured, idea generation will fail")
	}

	return router
}

// NewServices wires the services on top of kv
func NewServices(cfg *config.Config, kv domain.KVStore) *Services {
	llmRouter := NewLLMRouter(cfg.LLM)

	replicateClient := replicate.NewClient(cfg.Replicate.APIToken, cfg.Replicate.BaseURL, cfg.Replicate.PollInterval)
	if !replicateClient.IsConfigured() {
		log.Warn().Msg("REPLICATE_API_TOKEN is empty, thumbnails will fail")
	}

	v0Client := v0.NewClient(cfg.V0.APIKey, cfg.V0.BaseURL)
	if !v0Client.IsConfigured() {
		log.Warn().Msg("V0_API_KEY is empty, app generation will fail")
	}

	ideas := service.NewIdeaService(llmRouter, "", "")
	thumbnails := service.NewThumbnailService(
		replicateClient,
		cfg.Replicate.ModelOwner,
		cfg.Replicate.ModelName,
		cfg.Replicate.WaitTimeout,
	)
	synth := service.NewSynthService(v0Client, cfg.Synth.PollInterval, cfg.Synth.MaxAttempts)

	store := service.NewStoreService(ideas, thumbnails, kv, service.StoreOptions{
		BatchSize:     cfg.Store.BatchSize,
		Concurrency:   cfg.Store.ThumbnailConcurrency,
		RatePerSecond: cfg.Store.ThumbnailRate,
		Burst:         cfg.Store.ThumbnailBurst,
	})

	return &Services{
		LLM:        llmRouter,
		KV:         kv,
		Ideas:      ideas,
		Thumbnails: thumbnails,
		Synth:      synth,
		Store:      store,
		Detail:     service.NewDetailService(synth, kv),
	}
}

// Close stops background work
func (s *Services) Close() {
	s.Store.Close()
}
