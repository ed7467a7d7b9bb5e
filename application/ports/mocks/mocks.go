// Package mocks provides testify mocks and in-memory implementations of the
// application ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"retrogames/domain/catalog"
)

// MockCatalogRepository is a mock implementation of ports.CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListAll(ctx context.Context) ([]catalog.RetroGame, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.RetroGame), args.Error(1)
}

func (m *MockCatalogRepository) ListByPlatform(ctx context.Context, platform string, title *string) ([]catalog.RetroGame, error) {
	args := m.Called(ctx, platform, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.RetroGame), args.Error(1)
}

func (m *MockCatalogRepository) Get(ctx context.Context, key catalog.Key) (*catalog.RetroGame, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.RetroGame), args.Error(1)
}

func (m *MockCatalogRepository) Put(ctx context.Context, game catalog.RetroGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockCatalogRepository) Replace(ctx context.Context, game catalog.RetroGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

// MockTranslationRepository is a mock implementation of ports.TranslationRepository
type MockTranslationRepository struct {
	mock.Mock
}

func (m *MockTranslationRepository) Get(ctx context.Context, key catalog.TranslationKey) (*catalog.TranslatedRetroGame, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.TranslatedRetroGame), args.Error(1)
}

func (m *MockTranslationRepository) Put(ctx context.Context, item catalog.TranslatedRetroGame) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockTranslator is a mock implementation of ports.Translator
type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	args := m.Called(ctx, text, sourceLang, targetLang)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event catalog.ChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockMetrics is a mock implementation of ports.Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) CacheLookup(ctx context.Context, lang string, status catalog.CacheStatus) {
	m.Called(ctx, lang, status)
}

func (m *MockMetrics) TranslationLatency(ctx context.Context, lang string, d time.Duration) {
	m.Called(ctx, lang, d)
}

func (m *MockMetrics) AuthDecision(ctx context.Context, effect, reason string) {
	m.Called(ctx, effect, reason)
}
