package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/Rrens/vibe-app-store/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const DefaultBatchSize = 15

// IdeaGenerator produces raw app concepts
type IdeaGenerator interface {
	GenerateIdeas(ctx context.Context, count int) ([]domain.Idea, error)
}

// ThumbnailGenerator renders one icon and returns its URL
type ThumbnailGenerator interface {
	GenerateThumbnail(ctx context.Context, prompt string) (string, error)
}

// StoreOptions tunes listing generation
type StoreOptions struct {
	BatchSize int
	// Concurrency caps in-flight thumbnail renders, 0 means unbounded
	Concurrency int
	// RatePerSecond paces thumbnail starts, 0 disables pacing
	RatePerSecond float64
	Burst         int
}

// StoreService owns the listing: it loads it from the KV store, regenerates
// it on demand and fills in thumbnails in the background.
type StoreService struct {
	ideas      IdeaGenerator
	thumbnails ThumbnailGenerator
	kv         domain.KVStore
	opts       StoreOptions
	limiter    *rate.Limiter
	now        func() time.Time

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup

	mu           sync.Mutex
	listing      *domain.Listing
	generation   uint64
	cancelFanOut context.CancelFunc
}

// NewStoreService creates a new store service
func NewStoreService(ideas IdeaGenerator, thumbnails ThumbnailGenerator, kv domain.KVStore, opts StoreOptions) *StoreService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	ctx, stop := context.WithCancel(context.Background())
	return &StoreService{
		ideas:      ideas,
		thumbnails: thumbnails,
		kv:         kv,
		opts:       opts,
		limiter:    limiter,
		now:        time.Now,
		baseCtx:    ctx,
		stop:       stop,
	}
}

// Load returns the cached listing, generating a new one on a miss
func (s *StoreService) Load(ctx context.Context) (*domain.Listing, error) {
	listing, err := s.Current(ctx)
	if err == nil {
		metrics.RecordCacheLookup("listing", true)
		return listing, nil
	}
	metrics.RecordCacheLookup("listing", false)
	if !errors.Is(err, domain.ErrNotFound) {
		log.Warn().Err(err).Msg("cached listing unusable, regenerating")
	}
	return s.Refresh(ctx)
}

// Current returns the persisted listing without generating anything
func (s *StoreService) Current(ctx context.Context) (*domain.Listing, error) {
	blob, err := s.kv.Get(ctx, domain.ListingKey())
	if err != nil {
		return nil, err
	}

	var listing domain.Listing
	if err := json.Unmarshal(blob, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	return &listing, nil
}

// Refresh discards the cached listing and generates a new batch. The
// returned listing holds placeholders; thumbnails are rendered afterwards
// and persisted one by one. A newer refresh supersedes any fan-out still
// running for an older batch.
func (s *StoreService) Refresh(ctx context.Context) (*domain.Listing, error) {
	if err := s.kv.Delete(ctx, domain.ListingKey()); err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Warn().Err(err).Msg("failed to clear cached listing")
	}

	ideas, err := s.ideas.GenerateIdeas(ctx, s.opts.BatchSize)
	if err != nil {
		return nil, err
	}

	listing := domain.NewListing(uuid.NewString(), ideas, s.now())

	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancelFanOut != nil {
		s.cancelFanOut()
	}
	fanCtx, cancel := context.WithCancel(s.baseCtx)
	s.cancelFanOut = cancel
	s.listing = listing
	if err := s.persistLocked(ctx); err != nil {
		log.Warn().Err(err).Str("batch_id", listing.BatchID).Msg("failed to persist listing")
	}
	snapshot := listing.Clone()
	s.mu.Unlock()

	log.Info().
		Str("batch_id", listing.BatchID).
		Int("concepts", len(listing.Concepts)).
		Msg("listing generated")

	s.wg.Add(1)
	go s.fanOut(fanCtx, cancel, gen, ideas)

	return snapshot, nil
}

// Wait blocks until every running thumbnail fan-out has finished
func (s *StoreService) Wait() {
	s.wg.Wait()
}

// Close cancels running fan-outs and waits for them to return
func (s *StoreService) Close() {
	s.stop()
	s.wg.Wait()
}

func (s *StoreService) fanOut(ctx context.Context, cancel context.CancelFunc, gen uint64, ideas []domain.Idea) {
	defer s.wg.Done()
	defer cancel()

	var g errgroup.Group
	if s.opts.Concurrency > 0 {
		g.SetLimit(s.opts.Concurrency)
	}

	for i, idea := range ideas {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if s.limiter != nil {
				if err := s.limiter.Wait(ctx); err != nil {
					return nil
				}
			}
			url, err := s.thumbnails.GenerateThumbnail(ctx, idea.ImagePrompt)
			s.apply(ctx, gen, domain.ThumbnailResult{Index: i, URL: url, Err: err})
			return nil
		})
	}

	_ = g.Wait()
}

// apply records one thumbnail outcome on the current listing and persists it
func (s *StoreService) apply(ctx context.Context, gen uint64, res domain.ThumbnailResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || ctx.Err() != nil {
		metrics.RecordThumbnail("stale")
		return
	}
	if s.listing == nil || res.Index < 0 || res.Index >= len(s.listing.Concepts) {
		return
	}

	concept := &s.listing.Concepts[res.Index]
	if res.OK() {
		concept.Thumbnail = res.URL
		concept.ThumbnailStatus = domain.ThumbnailReady
	} else {
		concept.ThumbnailStatus = domain.ThumbnailFailed
		log.Warn().Err(res.Err).Str("concept_id", concept.ID).Msg("thumbnail render failed")
	}
	metrics.RecordThumbnail(string(concept.ThumbnailStatus))

	if err := s.persistLocked(ctx); err != nil {
		log.Warn().Err(err).Str("concept_id", concept.ID).Msg("failed to persist listing")
	}
}

func (s *StoreService) persistLocked(ctx context.Context) error {
	blob, err := json.Marshal(s.listing)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, domain.ListingKey(), blob)
}
