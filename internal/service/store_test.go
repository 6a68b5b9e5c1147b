package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/Rrens/vibe-app-store/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// thumbnailFunc adapts a function to ThumbnailGenerator
type thumbnailFunc func(ctx context.Context, prompt string) (string, error)

func (f thumbnailFunc) GenerateThumbnail(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func makeIdeas(n int, tag string) []domain.Idea {
	ideas := make([]domain.Idea, n)
	for i := range ideas {
		ideas[i] = domain.Idea{
			Name:        fmt.Sprintf("%s-%d", tag, i),
			Description: "desc",
			ImagePrompt: fmt.Sprintf("%s-prompt-%d", tag, i),
		}
	}
	return ideas
}

func fixedClock() time.Time {
	return time.UnixMilli(1700000000000)
}

func newStore(ideas IdeaGenerator, thumbs ThumbnailGenerator, kv domain.KVStore, opts StoreOptions) *StoreService {
	s := NewStoreService(ideas, thumbs, kv, opts)
	s.now = fixedClock
	return s
}

func persisted(t *testing.T, kv domain.KVStore) *domain.Listing {
	t.Helper()

	blob, err := kv.Get(context.Background(), domain.ListingKey())
	require.NoError(t, err)

	var listing domain.Listing
	require.NoError(t, json.Unmarshal(blob, &listing))
	return &listing
}

func TestStoreService_LoadUsesCache(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	ideas := new(MockIdeaGenerator)

	cached := domain.NewListing("batch-1", makeIdeas(2, "cached"), fixedClock())
	cached.Concepts[0].Thumbnail = "https://img/0.png"
	cached.Concepts[0].ThumbnailStatus = domain.ThumbnailReady
	blob, _ := json.Marshal(cached)
	require.NoError(t, kv.Set(ctx, domain.ListingKey(), blob))

	var thumbCalls atomic.Int32
	svc := newStore(ideas, thumbnailFunc(func(ctx context.Context, prompt string) (string, error) {
		thumbCalls.Add(1)
		return "", nil
	}), kv, StoreOptions{})
	defer svc.Close()

	for i := 0; i < 2; i++ {
		got, err := svc.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, cached.BatchID, got.BatchID)
		assert.Equal(t, cached.Concepts, got.Concepts)
	}

	ideas.AssertNotCalled(t, "GenerateIdeas", mock.Anything, mock.Anything)
	assert.Zero(t, thumbCalls.Load())
}

func TestStoreService_LoadMissGenerates(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	ideas := new(MockIdeaGenerator)
	ideas.On("GenerateIdeas", mock.Anything, DefaultBatchSize).Return(makeIdeas(DefaultBatchSize, "fresh"), nil).Once()

	svc := newStore(ideas, thumbnailFunc(func(ctx context.Context, prompt string) (string, error) {
		return "https://img/" + prompt + ".png", nil
	}), kv, StoreOptions{})
	defer svc.Close()

	listing, err := svc.Load(ctx)
	require.NoError(t, err)
	require.Len(t, listing.Concepts, DefaultBatchSize)
	for i, c := range listing.Concepts {
		assert.Equal(t, domain.ConceptID(fixedClock(), i), c.ID)
		assert.Equal(t, domain.ThumbnailPending, c.ThumbnailStatus)
		assert.Empty(t, c.Thumbnail)
	}

	svc.Wait()

	stored := persisted(t, kv)
	assert.Zero(t, stored.Pending())
	assert.Equal(t, "https://img/fresh-prompt-4.png", stored.Concepts[4].Thumbnail)

	// Second load is served from the cache
	again, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, listing.BatchID, again.BatchID)
	ideas.AssertNumberOfCalls(t, "GenerateIdeas", 1)
}

func TestStoreService_UndecodableCacheRegenerates(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	require.NoError(t, kv.Set(ctx, domain.ListingKey(), []byte("{not json")))

	ideas := new(MockIdeaGenerator)
	ideas.On("GenerateIdeas", mock.Anything, 2).Return(makeIdeas(2, "x"), nil)

	svc := newStore(ideas, thumbnailFunc(func(ctx context.Context, prompt string) (string, error) {
		return "https://img/ok.png", nil
	}), kv, StoreOptions{BatchSize: 2})
	defer svc.Close()

	listing, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, listing.Concepts, 2)
}

func TestStoreService_PartialThumbnailFailure(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	ideas := new(MockIdeaGenerator)
	ideas.On("GenerateIdeas", mock.Anything, 15).Return(makeIdeas(15, "p"), nil)

	// Prompts p-prompt-0..6 fail, the rest succeed
	failing := map[string]bool{}
	for i := 0; i < 7; i++ {
		failing[fmt.Sprintf("p-prompt-%d", i)] = true
	}

	svc := newStore(ideas, thumbnailFunc(func(ctx context.Context, prompt string) (string, error) {
		if failing[prompt] {
			return "", errors.New("render failed")
		}
		return "https://img/" + prompt + ".png", nil
	}), kv, StoreOptions{Concurrency: 4})
	defer svc.Close()

	_, err := svc.Refresh(ctx)
	require.NoError(t, err)
	svc.Wait()

	stored := persisted(t, kv)
	require.Len(t, stored.Concepts, 15)

	ready, failed := 0, 0
	for i, c := range stored.Concepts {
		switch c.ThumbnailStatus {
		case domain.ThumbnailReady:
			ready++
			assert.Equal(t, fmt.Sprintf("https://img/p-prompt-%d.png", i), c.Thumbnail)
		case domain.ThumbnailFailed:
			failed++
			assert.Empty(t, c.Thumbnail)
		}
	}
	assert.Equal(t, 8, ready)
	assert.Equal(t, 7, failed)
}

func TestStoreService_SingleThumbnailFailureUnbounded(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	ideas := new(MockIdeaGenerator)
	ideas.On("GenerateIdeas", mock.Anything, DefaultBatchSize).Return(makeIdeas(DefaultBatchSize, "s"), nil)

	// Only the seventh render fails
	svc := newStore(ideas, thumbnailFunc(func(ctx context.Context, prompt string) (string, error) {
		if prompt == "s-prompt-6" {
			return "", errors.New("render failed")
		}
		return "https://img/" + prompt + ".png", nil
	}), kv, StoreOptions{})
	defer svc.Close()

	_, err := svc.Refresh(ctx)
	require.NoError(t, err)
	svc.Wait()

	current, err := svc.Current(ctx)
	require.NoError(t, err)

	for _, listing := range []*domain.Listing{current, persisted(t, kv)} {
		require.Len(t, listing.Concepts, DefaultBatchSize)

		ready := 0
		for i, c := range listing.Concepts {
			assert.Equal(t, fmt.Sprintf("s-%d", i), c.Name)
			assert.Equal(t, "desc", c.Description)
			if i == 6 {
				assert.Equal(t, domain.ThumbnailFailed, c.ThumbnailStatus)
				assert.Empty(t, c.Thumbnail)
				continue
			}
			if assert.Equal(t, domain.ThumbnailReady, c.ThumbnailStatus) {
				ready++
				assert.Equal(t, fmt.Sprintf("https://img/s-prompt-%d.png", i), c.Thumbnail)
			}
		}
		assert.Equal(t, DefaultBatchSize-1, ready)
	}
}

func TestStoreService_RefreshIdeaFailure(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	require.NoError(t, kv.Set(ctx, domain.ListingKey(), []byte(`{"concepts":[]}`)))

	ideas := new(MockIdeaGenerator)
	ideas.On("GenerateIdeas", mock.Anything, DefaultBatchSize).Return(nil, domain.ErrIdeaGeneration)

	svc := newStore(ideas, thumbnailFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", nil
	}), kv, StoreOptions{})
	defer svc.Close()

	_, err := svc.Refresh(ctx)
	assert.ErrorIs(t, err, domain.ErrIdeaGeneration)

	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreService_StaleRefreshDiscarded(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	ideas := new(MockIdeaGenerator)
	ideas.On("GenerateIdeas", mock.Anything, 3).Return(makeIdeas(3, "old"), nil).Once()
	ideas.On("GenerateIdeas", mock.Anything, 3).Return(makeIdeas(3, "new"), nil).Once()

	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(3)

	svc := newStore(ideas, thumbnailFunc(func(ctx context.Context, prompt string) (string, error) {
		if prompt[:3] == "old" {
			started.Done()
			<-release
			// Ignores cancellation and answers late
			return "https://img/" + prompt + ".png", nil
		}
		return "https://img/" + prompt + ".png", nil
	}), kv, StoreOptions{BatchSize: 3})
	defer svc.Close()

	first, err := svc.Refresh(ctx)
	require.NoError(t, err)
	started.Wait()

	second, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.BatchID, second.BatchID)

	close(release)
	svc.Wait()

	stored := persisted(t, kv)
	assert.Equal(t, second.BatchID, stored.BatchID)
	for i, c := range stored.Concepts {
		assert.Equal(t, fmt.Sprintf("new-%d", i), c.Name)
		assert.Equal(t, fmt.Sprintf("https://img/new-prompt-%d.png", i), c.Thumbnail)
		assert.Equal(t, domain.ThumbnailReady, c.ThumbnailStatus)
	}
}

func TestStoreService_RefreshSnapshotIsIsolated(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	ideas := new(MockIdeaGenerator)
	ideas.On("GenerateIdeas", mock.Anything, 1).Return(makeIdeas(1, "solo"), nil)

	svc := newStore(ideas, thumbnailFunc(func(ctx context.Context, prompt string) (string, error) {
		return "https://img/solo.png", nil
	}), kv, StoreOptions{BatchSize: 1})
	defer svc.Close()

	listing, err := svc.Refresh(ctx)
	require.NoError(t, err)
	svc.Wait()

	// The returned placeholder does not change under the caller
	assert.Equal(t, domain.ThumbnailPending, listing.Concepts[0].ThumbnailStatus)
	assert.Equal(t, domain.ThumbnailReady, persisted(t, kv).Concepts[0].ThumbnailStatus)
}

func TestStoreService_CloseCancelsFanOut(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	ideas := new(MockIdeaGenerator)
	ideas.On("GenerateIdeas", mock.Anything, 2).Return(makeIdeas(2, "slow"), nil)

	svc := newStore(ideas, thumbnailFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), kv, StoreOptions{BatchSize: 2})

	_, err := svc.Refresh(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		svc.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	// Canceled renders are not recorded as failures
	assert.Equal(t, 2, persisted(t, kv).Pending())
}

func TestStoreService_RateLimitedFanOut(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	ideas := new(MockIdeaGenerator)
	ideas.On("GenerateIdeas", mock.Anything, 3).Return(makeIdeas(3, "r"), nil)

	svc := newStore(ideas, thumbnailFunc(func(ctx context.Context, prompt string) (string, error) {
		return "https://img/" + prompt + ".png", nil
	}), kv, StoreOptions{BatchSize: 3, RatePerSecond: 1000, Burst: 3})
	defer svc.Close()

	_, err := svc.Refresh(ctx)
	require.NoError(t, err)
	svc.Wait()

	assert.Zero(t, persisted(t, kv).Pending())
}

func TestStoreService_Current(t *testing.T) {
	kv := memory.NewStore()
	svc := newStore(new(MockIdeaGenerator), thumbnailFunc(nil), kv, StoreOptions{})
	defer svc.Close()

	_, err := svc.Current(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
