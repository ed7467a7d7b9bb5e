package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"retrogames/application/ports"
	"retrogames/domain/catalog"
	apperrors "retrogames/pkg/errors"
)

// CatalogService implements the catalog use cases on top of the Catalog Store
type CatalogService struct {
	repo      ports.CatalogRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewCatalogService creates a new catalog service. publisher may be nil when
// change events are disabled.
func NewCatalogService(repo ports.CatalogRepository, publisher ports.EventPublisher, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// List returns the whole catalog
func (s *CatalogService) List(ctx context.Context) ([]catalog.RetroGame, error) {
	games, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list retro games", err)
	}
	return games, nil
}

// ByPlatform returns the games of a platform, optionally narrowed to a title.
// No match is a not-found error naming the platform.
func (s *CatalogService) ByPlatform(ctx context.Context, platform string, title *string) ([]catalog.RetroGame, error) {
	if platform == "" {
		return nil, apperrors.NewNotFoundError("Missing game platform. Try '{baseurl}/NES'")
	}

	games, err := s.repo.ListByPlatform(ctx, platform, title)
	if err != nil {
		return nil, apperrors.NewDatabaseError("query retro games", err)
	}
	if len(games) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("No games on the specified platform found: %s", platform)).
			WithCause(catalog.ErrNotFound)
	}
	return games, nil
}

// Add stores a new game owned by subject
func (s *CatalogService) Add(ctx context.Context, subject string, game catalog.RetroGame) (catalog.RetroGame, error) {
	if subject == "" {
		return catalog.RetroGame{}, apperrors.NewForbiddenError("Unauthorized: No JWT token")
	}

	game.UserID = subject
	if err := s.repo.Put(ctx, game); err != nil {
		s.logger.Error("Failed to add retro game",
			zap.String("platform", game.Platform),
			zap.String("title", game.Title),
			zap.Error(err))
		return catalog.RetroGame{}, apperrors.NewDatabaseError("put retro game", err)
	}

	s.publish(ctx, catalog.NewChangeEvent(catalog.EventRetroGameAdded, game))
	return game, nil
}

// OwnedRecord loads the record at key and checks that subject added it.
func (s *CatalogService) OwnedRecord(ctx context.Context, subject string, key catalog.Key) (*catalog.RetroGame, error) {
	existing, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Game to update not found").WithCause(err)
		}
		return nil, apperrors.NewDatabaseError("get retro game", err)
	}

	if !existing.OwnedBy(subject) {
		s.logger.Info("Rejected update by non-owner",
			zap.String("platform", key.Platform),
			zap.String("title", key.Title),
			zap.String("subject", subject))
		return nil, apperrors.NewUnauthorizedError("Can only update a Retro Game that you have added yourself!").
			WithCause(catalog.ErrNotOwner)
	}
	return existing, nil
}

// Replace rewrites every describable attribute of existing with the values of
// game. Key and owner are taken from existing.
func (s *CatalogService) Replace(ctx context.Context, existing catalog.RetroGame, game catalog.RetroGame) (catalog.RetroGame, error) {
	game.Platform = existing.Platform
	game.Title = existing.Title
	game.UserID = existing.UserID

	if err := s.repo.Replace(ctx, game); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return catalog.RetroGame{}, apperrors.NewNotFoundError("Game to update not found").WithCause(err)
		}
		s.logger.Error("Failed to replace retro game",
			zap.String("platform", game.Platform),
			zap.String("title", game.Title),
			zap.Error(err))
		return catalog.RetroGame{}, apperrors.NewDatabaseError("update retro game", err)
	}

	s.publish(ctx, catalog.NewChangeEvent(catalog.EventRetroGameUpdated, game))
	return game, nil
}

func (s *CatalogService) publish(ctx context.Context, event catalog.ChangeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish catalog event",
			zap.String("type", event.Type),
			zap.Int("id", event.ID),
			zap.Error(err))
	}
}
