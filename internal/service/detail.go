package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/Rrens/vibe-app-store/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Synthesizer turns an instruction into a live demo
type Synthesizer interface {
	Synthesize(ctx context.Context, message string) (*domain.Synthesis, error)
}

// DetailService resolves the demo URL of a concept. A URL is written once
// per concept id and served from the KV store from then on.
type DetailService struct {
	synth Synthesizer
	kv    domain.KVStore
	group singleflight.Group
}

// NewDetailService creates a new detail service
func NewDetailService(synth Synthesizer, kv domain.KVStore) *DetailService {
	return &DetailService{
		synth: synth,
		kv:    kv,
	}
}

// Open returns the demo of ref, synthesizing it on first access
func (s *DetailService) Open(ctx context.Context, ref domain.AppRef) (*domain.AppDetail, error) {
	if ref.ID == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}

	detail := &domain.AppDetail{
		ID:          ref.ID,
		Name:        ref.Name,
		Description: ref.Description,
	}

	if url, ok := s.cached(ctx, ref.ID); ok {
		metrics.RecordCacheLookup("demo_url", true)
		detail.DemoURL = url
		detail.Cached = true
		return detail, nil
	}
	metrics.RecordCacheLookup("demo_url", false)

	// The flight outlives any single caller; each caller only waits on its own ctx
	flight := context.WithoutCancel(ctx)
	ch := s.group.DoChan(ref.ID, func() (any, error) {
		return s.synthesize(flight, ref)
	})

	select {
	case <-ctx.Done():
		return nil, &domain.SynthesisError{State: domain.SynthesisAborted, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debug().Str("app_id", ref.ID).Msg("joined in-flight synthesis")
		}
		detail.DemoURL = res.Val.(string)
		return detail, nil
	}
}

func (s *DetailService) cached(ctx context.Context, id string) (string, bool) {
	blob, err := s.kv.Get(ctx, domain.DemoURLKey(id))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Str("app_id", id).Msg("demo url lookup failed")
		}
		return "", false
	}
	if len(blob) == 0 {
		return "", false
	}
	return string(blob), true
}

func (s *DetailService) synthesize(ctx context.Context, ref domain.AppRef) (string, error) {
	result, err := s.synth.Synthesize(ctx, domain.AppMessage(ref.Name, ref.Description))
	if err != nil {
		return "", err
	}

	key := domain.DemoURLKey(ref.ID)
	written, err := s.kv.SetNX(ctx, key, []byte(result.DemoURL))
	if err != nil {
		log.Warn().Err(err).Str("app_id", ref.ID).Msg("failed to cache demo url")
		return result.DemoURL, nil
	}
	if written {
		return result.DemoURL, nil
	}

	// Another writer got there first; the stored URL wins
	if url, ok := s.cached(ctx, ref.ID); ok {
		return url, nil
	}
	return result.DemoURL, nil
}
