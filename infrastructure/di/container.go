package di

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"retrogames/infrastructure/config"
	"retrogames/interfaces/authorizer"
	"retrogames/pkg/observability"
)

// Container holds the dependencies of the REST API
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Router    *chi.Mux
	Collector *observability.Collector
}

// AuthorizerContainer holds the dependencies of the gateway authorizer
type AuthorizerContainer struct {
	Config  *config.Config
	Logger  *zap.Logger
	Handler *authorizer.Handler
}
