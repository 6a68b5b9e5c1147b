package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/Rrens/vibe-app-store/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSynthInterval    = 2 * time.Second
	DefaultSynthMaxAttempts = 90
)

// ChatClient is the code-generation backend
type ChatClient interface {
	CreateChat(ctx context.Context, message string) (*domain.Chat, error)
	GetChat(ctx context.Context, chatID string) (*domain.Chat, error)
	LookupChat(ctx context.Context, chatID string) (json.RawMessage, error)
	FindMessages(ctx context.Context, chatID string) (json.RawMessage, error)
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the real-time Sleeper
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SynthService drives a code-generation session until it yields a demo URL
type SynthService struct {
	client      ChatClient
	interval    time.Duration
	maxAttempts int
	sleep       Sleeper
}

// NewSynthService creates a new synthesis service
func NewSynthService(client ChatClient, interval time.Duration, maxAttempts int) *SynthService {
	if interval <= 0 {
		interval = DefaultSynthInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultSynthMaxAttempts
	}
	return &SynthService{
		client:      client,
		interval:    interval,
		maxAttempts: maxAttempts,
		sleep:       ContextSleep,
	}
}

// WithSleeper replaces the wait between polls
func (s *SynthService) WithSleeper(sleep Sleeper) *SynthService {
	s.sleep = sleep
	return s
}

// Synthesize opens a session for message and polls it until the latest
// version has a demo URL, reports failure, or the attempt ceiling is hit.
// Failures are returned as *domain.SynthesisError carrying the session's
// web URL when one is known.
func (s *SynthService) Synthesize(ctx context.Context, message string) (*domain.Synthesis, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	logger := log.With().Str("synth_id", uuid.NewString()).Logger()

	chat, err := s.client.CreateChat(ctx, message)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open synthesis session")
		metrics.RecordSynthesis(string(domain.SynthesisAborted), 0)
		return nil, &domain.SynthesisError{State: domain.SynthesisAborted, Err: err}
	}

	logger = logger.With().Str("chat_id", chat.ID).Logger()
	logger.Info().Str("state", string(domain.SynthesisCreated)).Msg("synthesis session opened")

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		current, err := s.client.GetChat(ctx, chat.ID)
		if err != nil {
			logger.Error().Err(err).Int("attempt", attempt).Msg("synthesis poll failed")
			return nil, s.interrupted(ctx, chat, attempt, err)
		}

		if demoURL := current.DemoURL(); demoURL != "" {
			logger.Info().Int("attempt", attempt).Str("state", string(domain.SynthesisSucceeded)).Msg("demo ready")
			metrics.RecordSynthesis(string(domain.SynthesisSucceeded), attempt)
			return &domain.Synthesis{
				DemoURL: demoURL,
				ChatID:  chat.ID,
				WebURL:  chat.WebURL,
			}, nil
		}

		if current.Failed() {
			logger.Warn().Int("attempt", attempt).Str("state", string(domain.SynthesisFailed)).Msg("generation failed upstream")
			metrics.RecordSynthesis(string(domain.SynthesisFailed), attempt)
			return nil, &domain.SynthesisError{
				State:    domain.SynthesisFailed,
				ChatID:   chat.ID,
				WebURL:   chat.WebURL,
				Attempts: attempt,
			}
		}

		if err := s.sleep(ctx, s.interval); err != nil {
			return nil, s.interrupted(ctx, chat, attempt, err)
		}
	}

	logger.Warn().Int("attempts", s.maxAttempts).Str("state", string(domain.SynthesisTimedOut)).Msg("synthesis timed out")
	metrics.RecordSynthesis(string(domain.SynthesisTimedOut), s.maxAttempts)
	return nil, &domain.SynthesisError{
		State:    domain.SynthesisTimedOut,
		ChatID:   chat.ID,
		WebURL:   chat.WebURL,
		Attempts: s.maxAttempts,
	}
}

// interrupted classifies a poll loop stopped by err. A caller deadline ends
// the session as timed out with its web URL; anything else aborts it.
func (s *SynthService) interrupted(ctx context.Context, chat *domain.Chat, attempt int, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		metrics.RecordSynthesis(string(domain.SynthesisTimedOut), attempt)
		return &domain.SynthesisError{
			State:    domain.SynthesisTimedOut,
			ChatID:   chat.ID,
			WebURL:   chat.WebURL,
			Attempts: attempt,
			Err:      err,
		}
	}
	metrics.RecordSynthesis(string(domain.SynthesisAborted), attempt)
	return &domain.SynthesisError{
		State:    domain.SynthesisAborted,
		ChatID:   chat.ID,
		Attempts: attempt,
		Err:      err,
	}
}

// GetChat returns the session document exactly as the backend serves it
func (s *SynthService) GetChat(ctx context.Context, chatID string) (json.RawMessage, error) {
	if chatID == "" {
		return nil, fmt.Errorf("%w: chatId is required", domain.ErrInvalidInput)
	}
	chat, err := s.client.LookupChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrChatFetch, err)
	}
	return chat, nil
}

// GetMessages returns the raw message list of a session
func (s *SynthService) GetMessages(ctx context.Context, chatID string) (json.RawMessage, error) {
	if chatID == "" {
		return nil, fmt.Errorf("%w: chatId is required", domain.ErrInvalidInput)
	}
	messages, err := s.client.FindMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMessagesFetch, err)
	}
	return messages, nil
}
