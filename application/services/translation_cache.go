package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"retrogames/application/ports"
	"retrogames/domain/catalog"
	apperrors "retrogames/pkg/errors"
	"retrogames/pkg/observability"
)

// TranslationCacheConfig configures the read-through translation cache
type TranslationCacheConfig struct {
	SourceLanguage string
	ExcludedFields []string      // string attributes copied verbatim
	Timeout        time.Duration // per downstream call, zero for none
}

// TranslationCache serves localized records from the translated store and
// fills it on a miss. Check and fill are not atomic: concurrent misses for the
// same (id, lang) each translate and write, and the last write wins.
type TranslationCache struct {
	store      ports.TranslationRepository
	translator ports.Translator
	metrics    ports.Metrics
	tracer     *observability.Tracer
	logger     *zap.Logger

	sourceLang string
	excluded   map[string]bool
	timeout    time.Duration
}

// NewTranslationCache creates a new translation cache
func NewTranslationCache(
	store ports.TranslationRepository,
	translator ports.Translator,
	metrics ports.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
	config TranslationCacheConfig,
) *TranslationCache {
	// The owner reference is never translated.
	excluded := map[string]bool{"userId": true}
	for _, f := range config.ExcludedFields {
		excluded[f] = true
	}
	sourceLang := config.SourceLanguage
	if sourceLang == "" {
		sourceLang = "en"
	}
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}

	return &TranslationCache{
		store:      store,
		translator: translator,
		metrics:    metrics,
		tracer:     tracer,
		logger:     logger,
		sourceLang: sourceLang,
		excluded:   excluded,
		timeout:    config.Timeout,
	}
}

// Localize returns game rendered in lang, from the translated store when a
// record exists and by translating and persisting it otherwise. Any translate
// failure aborts the fill before anything is written.
func (c *TranslationCache) Localize(ctx context.Context, game catalog.RetroGame, lang string) (catalog.Localized, error) {
	var result catalog.Localized

	err := c.tracer.TraceFunction(ctx, "translation_cache.localize", map[string]string{
		"id":   fmt.Sprint(game.ID),
		"lang": lang,
	}, func(ctx context.Context) error {
		key := catalog.TranslationKey{ID: game.ID, Lang: lang}

		cached, err := c.lookup(ctx, key)
		if err == nil {
			c.metrics.CacheLookup(ctx, lang, catalog.CacheHit)
			result = catalog.Localized{Item: *cached, Status: catalog.CacheHit}
			return nil
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			return downstreamError("get translation", err, apperrors.NewDatabaseError)
		}
		c.metrics.CacheLookup(ctx, lang, catalog.CacheMiss)

		started := time.Now()
		item, err := c.translate(ctx, game, lang)
		if err != nil {
			return err
		}

		if err := c.persist(ctx, item); err != nil {
			return downstreamError("put translation", err, apperrors.NewDatabaseError)
		}
		c.metrics.TranslationLatency(ctx, lang, time.Since(started))

		c.logger.Debug("Filled translation cache",
			zap.Int("id", game.ID),
			zap.String("lang", lang),
			zap.Duration("duration", time.Since(started)))

		result = catalog.Localized{Item: item, Status: catalog.CacheMiss}
		return nil
	})
	if err != nil {
		c.tracer.RecordError(ctx, err)
		return catalog.Localized{}, err
	}
	return result, nil
}

// LocalizeAll localizes every game in order and stops at the first failure.
func (c *TranslationCache) LocalizeAll(ctx context.Context, games []catalog.RetroGame, lang string) ([]catalog.Localized, error) {
	out := make([]catalog.Localized, 0, len(games))
	for _, g := range games {
		l, err := c.Localize(ctx, g, lang)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Translatable reports whether a string attribute is sent to the translator.
func (c *TranslationCache) Translatable(name string) bool {
	return !c.excluded[name]
}

func (c *TranslationCache) translate(ctx context.Context, game catalog.RetroGame, lang string) (catalog.TranslatedRetroGame, error) {
	item := catalog.TranslatedRetroGame{RetroGame: game.Clone(), Lang: lang}

	for _, name := range catalog.TextAttributeNames() {
		if !c.Translatable(name) {
			continue
		}
		text, _ := item.TextAttribute(name)
		if text == "" {
			continue
		}

		translated, err := c.translateText(ctx, text, lang)
		if err != nil {
			c.logger.Error("Translation failed",
				zap.Int("id", game.ID),
				zap.String("lang", lang),
				zap.String("field", name),
				zap.Error(err))
			return catalog.TranslatedRetroGame{}, downstreamError("translate", err, apperrors.NewExternalError).
				WithDetails(map[string]interface{}{"field": name, "lang": lang})
		}
		item.SetTextAttribute(name, translated)
	}

	return item, nil
}

func (c *TranslationCache) translateText(ctx context.Context, text, lang string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	out, err := c.translator.Translate(ctx, text, c.sourceLang, lang)
	return out, deadlineCause(ctx, err)
}

func (c *TranslationCache) lookup(ctx context.Context, key catalog.TranslationKey) (*catalog.TranslatedRetroGame, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	item, err := c.store.Get(ctx, key)
	return item, deadlineCause(ctx, err)
}

func (c *TranslationCache) persist(ctx context.Context, item catalog.TranslatedRetroGame) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return deadlineCause(ctx, c.store.Put(ctx, item))
}

func (c *TranslationCache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// deadlineCause keeps context.DeadlineExceeded in the chain when the call
// failed after its deadline passed, whatever the backend wrapped it in.
func deadlineCause(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return err
}

// downstreamError reports a call that ran out of time as a timeout and any
// other failure through fallback.
func downstreamError(operation string, err error, fallback func(string, error) *apperrors.AppError) *apperrors.AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(operation, err)
	}
	return fallback(operation, err)
}
