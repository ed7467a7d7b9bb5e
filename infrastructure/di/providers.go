package di

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	awstranslate "github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"retrogames/application/ports"
	"retrogames/application/services"
	"retrogames/infrastructure/config"
	"retrogames/infrastructure/messaging/eventbridge"
	"retrogames/infrastructure/persistence/dynamodb"
	"retrogames/infrastructure/translation"
	"retrogames/interfaces/authorizer"
	"retrogames/interfaces/http/rest"
	"retrogames/interfaces/http/rest/handlers"
	"retrogames/interfaces/http/rest/middleware"
	"retrogames/pkg/auth"
	"retrogames/pkg/observability"
)

const (
	serviceName    = "retrogames"
	serviceVersion = "1.0.0"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() || cfg.IsLambda {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build(zap.Fields(zap.String("service", serviceName)))
}

// ProvideAWSConfig creates AWS configuration. With tracing enabled every SDK
// call is recorded as an X-Ray subsegment.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}

	if cfg.EnableTracing {
		if err := xray.Configure(xray.Config{ServiceVersion: serviceVersion}); err != nil {
			return aws.Config{}, fmt.Errorf("could not configure X-Ray: %w", err)
		}
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideCatalogRepository creates the catalog store accessor
func ProvideCatalogRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.CatalogRepository {
	return dynamodb.NewCatalogRepository(client, cfg.CatalogTable, logger)
}

// ProvideTranslationRepository creates the translated store
func ProvideTranslationRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.TranslationRepository {
	return dynamodb.NewTranslationRepository(client, cfg.TranslatedTable, logger)
}

// ProvideTranslator selects the translation backend and puts a circuit
// breaker in front of it
func ProvideTranslator(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.Translator {
	var backend ports.Translator
	switch cfg.TranslatorBackend {
	case "lambda":
		backend = translation.NewLambdaTranslator(awslambda.NewFromConfig(awsCfg), cfg.TranslatorFunction)
	default:
		backend = translation.NewAWSTranslator(awstranslate.NewFromConfig(awsCfg))
	}
	return translation.NewBreakingTranslator(backend, translation.DefaultBreakerConfig(), logger)
}

// ProvideEventPublisher creates the catalog change event publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewEventBridgePublisher(client, cfg.EventBusName, logger)
}

// ProvideCollector creates the Prometheus collector served on /metrics
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.MetricsPrefix)
}

// ProvideMetrics picks CloudWatch inside Lambda and Prometheus elsewhere.
func ProvideMetrics(cfg *config.Config, client *awscloudwatch.Client, collector *observability.Collector, logger *zap.Logger) ports.Metrics {
	switch {
	case !cfg.EnableMetrics:
		return observability.NopMetrics{}
	case cfg.IsLambda:
		namespace := fmt.Sprintf("%s/%s", cfg.MetricsPrefix, cfg.Environment)
		return observability.NewMetrics(namespace, client, logger)
	default:
		return collector
	}
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	name := cfg.LambdaFunctionName
	if name == "" {
		name = serviceName
	}
	return observability.NewTracer(name, cfg.EnableTracing)
}

// ProvideKeySetFetcher creates the JWKS fetcher, cached when a TTL is set
func ProvideKeySetFetcher(cfg *config.Config) auth.KeySetFetcher {
	client := &http.Client{Timeout: cfg.DownstreamTimeout}
	if cfg.EnableTracing {
		client = xray.Client(client)
	}
	return auth.NewCachingKeySetFetcher(auth.NewHTTPKeySetFetcher(client, cfg.DownstreamTimeout), cfg.JWKSCacheTTL)
}

// ProvideTokenVerifier creates the token verifier
func ProvideTokenVerifier(fetcher auth.KeySetFetcher, cfg *config.Config) *auth.TokenVerifier {
	return auth.NewTokenVerifier(fetcher, auth.VerifierConfig{
		KeySetURL: cfg.KeySetURL(),
		Issuer:    cfg.Issuer(),
		ClientID:  cfg.ClientID,
	})
}

// ProvideCatalogService creates the catalog service
func ProvideCatalogService(repo ports.CatalogRepository, publisher ports.EventPublisher, logger *zap.Logger) *services.CatalogService {
	return services.NewCatalogService(repo, publisher, logger)
}

// ProvideTranslationCache creates the read-through translation cache
func ProvideTranslationCache(
	store ports.TranslationRepository,
	translator ports.Translator,
	metrics ports.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
	cfg *config.Config,
) *services.TranslationCache {
	return services.NewTranslationCache(store, translator, metrics, tracer, logger, services.TranslationCacheConfig{
		SourceLanguage: cfg.SourceLanguage,
		ExcludedFields: cfg.ExcludedFields,
		Timeout:        cfg.DownstreamTimeout,
	})
}

// ProvideAuthenticator creates the auth middleware
func ProvideAuthenticator(engine *auth.DecisionEngine, cfg *config.Config, metrics ports.Metrics, logger *zap.Logger) *middleware.Authenticator {
	return middleware.NewAuthenticator(engine, cfg.TrustGatewayAuthorizer, metrics, logger)
}

// ProvideRouter builds the chi router. /metrics is only served by the local
// server with metrics enabled.
func ProvideRouter(
	h *handlers.RetroGameHandler,
	authenticator *middleware.Authenticator,
	collector *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *chi.Mux {
	var metricsHandler http.Handler
	if cfg.EnableMetrics && !cfg.IsLambda {
		metricsHandler = collector.Handler()
	}
	return rest.NewRouter(h, authenticator, metricsHandler, logger).Setup()
}

// ProvideAuthorizerHandler creates the gateway authorizer handler
func ProvideAuthorizerHandler(engine *auth.DecisionEngine, metrics ports.Metrics, tracer *observability.Tracer, logger *zap.Logger) *authorizer.Handler {
	return authorizer.NewHandler(engine, metrics, tracer, logger)
}
