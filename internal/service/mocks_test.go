package service

import (
	"context"
	"encoding/json"

	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/Rrens/vibe-app-store/internal/imagegen/replicate"
	"github.com/Rrens/vibe-app-store/internal/llm"
	"github.com/stretchr/testify/mock"
)

// MockProvider mocks llm.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) AvailableModels() []string {
	return []string{"mock-model"}
}

func (m *MockProvider) DefaultModel() string {
	return "mock-model"
}

func (m *MockProvider) IsConfigured() bool {
	return true
}

func (m *MockProvider) Generate(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	args := m.Called(ctx, req, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

// MockImageClient mocks ImageClient
type MockImageClient struct {
	mock.Mock
}

func (m *MockImageClient) GetModel(ctx context.Context, owner, name string) (*replicate.Model, error) {
	args := m.Called(ctx, owner, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*replicate.Model), args.Error(1)
}

func (m *MockImageClient) CreatePrediction(ctx context.Context, version string, input map[string]any) (*replicate.Prediction, error) {
	args := m.Called(ctx, version, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*replicate.Prediction), args.Error(1)
}

func (m *MockImageClient) Wait(ctx context.Context, prediction *replicate.Prediction) (*replicate.Prediction, error) {
	args := m.Called(ctx, prediction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*replicate.Prediction), args.Error(1)
}

// MockChatClient mocks ChatClient
type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) CreateChat(ctx context.Context, message string) (*domain.Chat, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatClient) GetChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatClient) LookupChat(ctx context.Context, chatID string) (json.RawMessage, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockChatClient) FindMessages(ctx context.Context, chatID string) (json.RawMessage, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// MockIdeaGenerator mocks IdeaGenerator
type MockIdeaGenerator struct {
	mock.Mock
}

func (m *MockIdeaGenerator) GenerateIdeas(ctx context.Context, count int) ([]domain.Idea, error) {
	args := m.Called(ctx, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Idea), args.Error(1)
}

// MockSynthesizer mocks Synthesizer
type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, message string) (*domain.Synthesis, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Synthesis), args.Error(1)
}

// MockKVStore mocks domain.KVStore
type MockKVStore struct {
	mock.Mock
}

func (m *MockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKVStore) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockKVStore) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	args := m.Called(ctx, key, value)
	return args.Bool(0), args.Error(1)
}

func (m *MockKVStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockKVStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockKVStore) Close() error {
	return nil
}
