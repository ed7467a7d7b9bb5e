//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"retrogames/infrastructure/config"
	"retrogames/interfaces/http/rest/handlers"
	"retrogames/pkg/auth"
)

// ObservabilitySet provides logging, metrics and tracing
var ObservabilitySet = wire.NewSet(
	ProvideLogger,
	ProvideCloudWatchClient,
	ProvideCollector,
	ProvideMetrics,
	ProvideTracer,
)

// AuthSet provides the token verifier and decision engine
var AuthSet = wire.NewSet(
	ProvideKeySetFetcher,
	ProvideTokenVerifier,
	wire.Bind(new(auth.Verifier), new(*auth.TokenVerifier)),
	auth.NewDecisionEngine,
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideAWSConfig,
	ObservabilitySet,
	AuthSet,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCatalogRepository,
	ProvideTranslationRepository,
	ProvideTranslator,
	ProvideEventPublisher,
	ProvideCatalogService,
	ProvideTranslationCache,
	handlers.NewRetroGameHandler,
	ProvideAuthenticator,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// AuthorizerSet wires the standalone authorizer
var AuthorizerSet = wire.NewSet(
	ProvideAWSConfig,
	ObservabilitySet,
	AuthSet,
	ProvideAuthorizerHandler,
	wire.Struct(new(AuthorizerContainer), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}

// InitializeAuthorizer creates the authorizer container
func InitializeAuthorizer(ctx context.Context, cfg *config.Config) (*AuthorizerContainer, error) {
	wire.Build(AuthorizerSet)
	return nil, nil
}
