package ports

import (
	"context"
	"time"

	"retrogames/domain/catalog"
)

// CatalogRepository defines the interface for catalog persistence
// This is the Catalog Store accessor; implementations own the table layout
type CatalogRepository interface {
	// ListAll returns every record in the catalog
	ListAll(ctx context.Context) ([]catalog.RetroGame, error)

	// ListByPlatform returns the records of a platform, narrowed to one
	// title when title is non-nil
	ListByPlatform(ctx context.Context, platform string, title *string) ([]catalog.RetroGame, error)

	// Get retrieves a record by key, returning catalog.ErrNotFound when absent
	Get(ctx context.Context, key catalog.Key) (*catalog.RetroGame, error)

	// Put inserts or overwrites a record
	Put(ctx context.Context, game catalog.RetroGame) error

	// Replace rewrites every describable attribute of an existing record,
	// leaving its key and owner untouched
	Replace(ctx context.Context, game catalog.RetroGame) error
}

// TranslationRepository defines the interface for the translated store
// Records are written once per (id, lang) and never updated
type TranslationRepository interface {
	// Get returns catalog.ErrNotFound when no translation exists for key
	Get(ctx context.Context, key catalog.TranslationKey) (*catalog.TranslatedRetroGame, error)

	// Put persists a translated record
	Put(ctx context.Context, item catalog.TranslatedRetroGame) error
}

// Translator translates a single text
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// EventPublisher defines the interface for publishing catalog change events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event catalog.ChangeEvent) error
}

// Metrics records service level measurements
type Metrics interface {
	// CacheLookup counts a translated store lookup by outcome
	CacheLookup(ctx context.Context, lang string, status catalog.CacheStatus)

	// TranslationLatency records how long a cache fill took
	TranslationLatency(ctx context.Context, lang string, d time.Duration)

	// AuthDecision counts authorization outcomes
	AuthDecision(ctx context.Context, effect, reason string)
}
