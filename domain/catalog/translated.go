package catalog

// TranslatedRetroGame is a catalog record rendered in another language. The
// translated table is keyed by (id, lang) and written once per pair.
type TranslatedRetroGame struct {
	RetroGame
	Lang string `json:"lang" dynamodbav:"lang"`
}

// TranslationKey identifies a record in the translated table.
type TranslationKey struct {
	ID   int
	Lang string
}

// Key returns the translated table key.
func (t TranslatedRetroGame) Key() TranslationKey {
	return TranslationKey{ID: t.ID, Lang: t.Lang}
}

// CacheStatus reports where a localized record came from.
type CacheStatus string

const (
	CacheHit  CacheStatus = "hit"
	CacheMiss CacheStatus = "miss"
)

// Localized is a translated record together with its cache status.
type Localized struct {
	Item   TranslatedRetroGame
	Status CacheStatus
}

// AllHits reports whether every localized record was served from the cache.
// An empty slice is not a hit.
func AllHits(items []Localized) bool {
	if len(items) == 0 {
		return false
	}
	for _, l := range items {
		if l.Status != CacheHit {
			return false
		}
	}
	return true
}
