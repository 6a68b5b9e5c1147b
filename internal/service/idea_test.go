package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/Rrens/vibe-app-store/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newIdeaService(provider *MockProvider) *IdeaService {
	router := llm.NewRouter("mock")
	router.RegisterProvider(provider)
	return NewIdeaService(router, "", "")
}

func TestIdeaService_GenerateIdeas(t *testing.T) {
	ctx := context.Background()

	t.Run("fenced output", func(t *testing.T) {
		provider := new(MockProvider)
		provider.On("Generate", ctx, mock.MatchedBy(func(req llm.Request) bool {
			return req.JSONMode && req.Prompt == llm.BuildIdeaPrompt(3)
		}), "mock-model").Return(&llm.Response{Content: "```json\n" + `{"apps":[
			{"name":"Tide","description":"Tracks tides","imagePrompt":"a wave"},
			{"name":"Loom","description":"Weaves playlists","imagePrompt":"a loom"},
			{"name":"Ember","description":"Campfire stories","imagePrompt":"a fire"}
		]}` + "\n```"}, nil)

		ideas, err := newIdeaService(provider).GenerateIdeas(ctx, 3)
		require.NoError(t, err)
		require.Len(t, ideas, 3)
		assert.Equal(t, domain.Idea{Name: "Tide", Description: "Tracks tides", ImagePrompt: "a wave"}, ideas[0])
		assert.Equal(t, "Ember", ideas[2].Name)
		provider.AssertExpectations(t)
	})

	t.Run("empty output yields no ideas", func(t *testing.T) {
		provider := new(MockProvider)
		provider.On("Generate", ctx, mock.Anything, "mock-model").Return(&llm.Response{Content: "  "}, nil)

		ideas, err := newIdeaService(provider).GenerateIdeas(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, ideas)
	})

	t.Run("truncates and fills missing prompt", func(t *testing.T) {
		provider := new(MockProvider)
		provider.On("Generate", ctx, mock.Anything, "mock-model").Return(&llm.Response{Content: `{"apps":[
			{"name":"A","description":"first"},
			{"name":"","description":"dropped"},
			{"name":"B","description":"second","imagePrompt":"b"},
			{"name":"C","description":"third","imagePrompt":"c"}
		]}`}, nil)

		ideas, err := newIdeaService(provider).GenerateIdeas(ctx, 2)
		require.NoError(t, err)
		require.Len(t, ideas, 2)
		assert.Equal(t, "A", ideas[0].Name)
		assert.Contains(t, ideas[0].ImagePrompt, "A")
		assert.Equal(t, "B", ideas[1].Name)
	})

	t.Run("unparseable output", func(t *testing.T) {
		provider := new(MockProvider)
		provider.On("Generate", ctx, mock.Anything, "mock-model").Return(&llm.Response{Content: "sorry, no"}, nil)

		_, err := newIdeaService(provider).GenerateIdeas(ctx, 1)
		assert.ErrorIs(t, err, domain.ErrIdeaGeneration)
	})

	t.Run("provider error", func(t *testing.T) {
		provider := new(MockProvider)
		upstream := errors.New("upstream 503")
		provider.On("Generate", ctx, mock.Anything, "mock-model").Return(nil, upstream)

		_, err := newIdeaService(provider).GenerateIdeas(ctx, 1)
		assert.ErrorIs(t, err, domain.ErrIdeaGeneration)
		assert.ErrorIs(t, err, upstream)
	})

	t.Run("count out of range", func(t *testing.T) {
		svc := newIdeaService(new(MockProvider))

		_, err := svc.GenerateIdeas(ctx, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.GenerateIdeas(ctx, MaxIdeaCount+1)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
