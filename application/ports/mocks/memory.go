package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"retrogames/domain/catalog"
)

// MemoryCatalog is an in-memory ports.CatalogRepository
type MemoryCatalog struct {
	mu    sync.RWMutex
	games map[catalog.Key]catalog.RetroGame
}

// NewMemoryCatalog creates a catalog seeded with games
func NewMemoryCatalog(games ...catalog.RetroGame) *MemoryCatalog {
	m := &MemoryCatalog{games: make(map[catalog.Key]catalog.RetroGame)}
	for _, g := range games {
		m.games[g.Key()] = g.Clone()
	}
	return m
}

func (m *MemoryCatalog) ListAll(ctx context.Context) ([]catalog.RetroGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]catalog.RetroGame, 0, len(m.games))
	for _, g := range m.games {
		out = append(out, g.Clone())
	}
	sortGames(out)
	return out, nil
}

func (m *MemoryCatalog) ListByPlatform(ctx context.Context, platform string, title *string) ([]catalog.RetroGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []catalog.RetroGame
	for k, g := range m.games {
		if k.Platform != platform {
			continue
		}
		if title != nil && k.Title != *title {
			continue
		}
		out = append(out, g.Clone())
	}
	sortGames(out)
	return out, nil
}

func (m *MemoryCatalog) Get(ctx context.Context, key catalog.Key) (*catalog.RetroGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.games[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", catalog.ErrNotFound, key.Platform, key.Title)
	}
	c := g.Clone()
	return &c, nil
}

func (m *MemoryCatalog) Put(ctx context.Context, game catalog.RetroGame) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.games[game.Key()] = game.Clone()
	return nil
}

func (m *MemoryCatalog) Replace(ctx context.Context, game catalog.RetroGame) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.games[game.Key()]
	if !ok {
		return catalog.ErrNotFound
	}
	game.UserID = existing.UserID
	m.games[game.Key()] = game.Clone()
	return nil
}

func sortGames(games []catalog.RetroGame) {
	sort.Slice(games, func(i, j int) bool {
		if games[i].Platform != games[j].Platform {
			return games[i].Platform < games[j].Platform
		}
		return games[i].Title < games[j].Title
	})
}

// MemoryTranslations is an in-memory ports.TranslationRepository
type MemoryTranslations struct {
	mu    sync.RWMutex
	items map[catalog.TranslationKey]catalog.TranslatedRetroGame
	puts  int
}

// NewMemoryTranslations creates an empty translated store
func NewMemoryTranslations() *MemoryTranslations {
	return &MemoryTranslations{items: make(map[catalog.TranslationKey]catalog.TranslatedRetroGame)}
}

func (m *MemoryTranslations) Get(ctx context.Context, key catalog.TranslationKey) (*catalog.TranslatedRetroGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[key]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	c := catalog.TranslatedRetroGame{RetroGame: item.RetroGame.Clone(), Lang: item.Lang}
	return &c, nil
}

func (m *MemoryTranslations) Put(ctx context.Context, item catalog.TranslatedRetroGame) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[item.Key()] = catalog.TranslatedRetroGame{RetroGame: item.RetroGame.Clone(), Lang: item.Lang}
	m.puts++
	return nil
}

// Puts returns how many records were written
func (m *MemoryTranslations) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

// PrefixTranslator translates by prefixing the text with the target language
type PrefixTranslator struct {
	mu    sync.Mutex
	calls int
}

func (p *PrefixTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return fmt.Sprintf("[%s] %s", strings.ToUpper(targetLang), text), nil
}

// Calls returns how many texts were translated
func (p *PrefixTranslator) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
