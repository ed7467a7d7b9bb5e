package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"retrogames/pkg/auth"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address" validate:"required"`
	Environment   string `yaml:"environment" validate:"oneof=development staging production test"`

	// AWS configuration
	AWSRegion       string `yaml:"region" validate:"required"`
	CatalogTable    string `yaml:"table_name" validate:"required"`
	TranslatedTable string `yaml:"translated_table" validate:"required"`
	EventBusName    string `yaml:"event_bus_name"`

	// Identity provider
	UserPoolID             string        `yaml:"user_pool_id" validate:"required_without=JWKSURL"`
	ClientID               string        `yaml:"client_id"`
	JWKSURL                string        `yaml:"jwks_url" validate:"omitempty,url"`
	JWKSCacheTTL           time.Duration `yaml:"jwks_cache_ttl" validate:"gte=0"`
	TrustGatewayAuthorizer bool          `yaml:"trust_gateway_authorizer"`

	// Translation
	TranslatorBackend  string   `yaml:"translator_backend" validate:"oneof=aws lambda"`
	TranslatorFunction string   `yaml:"translator_function" validate:"required_if=TranslatorBackend lambda"`
	SourceLanguage     string   `yaml:"source_language" validate:"required"`
	ExcludedFields     []string `yaml:"translation_excluded_fields"`

	// Downstream calls
	DownstreamTimeout time.Duration `yaml:"downstream_timeout" validate:"gte=0"`

	// Lambda configuration
	IsLambda           bool   `yaml:"-"`
	LambdaFunctionName string `yaml:"-"`

	// Logging
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Feature flags
	EnableMetrics bool   `yaml:"enable_metrics"`
	EnableTracing bool   `yaml:"enable_tracing"`
	MetricsPrefix string `yaml:"metrics_namespace" validate:"required"`
}

// defaults returns the configuration used when nothing overrides a value
func defaults() *Config {
	return &Config{
		ServerAddress:     ":8080",
		Environment:       "development",
		AWSRegion:         "eu-west-1",
		CatalogTable:      "RetroGames",
		TranslatedTable:   "TranslatedRetroGames",
		TranslatorBackend: "aws",
		SourceLanguage:    "en",
		ExcludedFields:    []string{"id", "userId", "cover_art_path", "release_date"},
		DownstreamTimeout: 5 * time.Second,
		LogLevel:          "info",
		MetricsPrefix:     "RetroGames",
	}
}

// LoadConfig loads configuration from an optional YAML file named by
// CONFIG_FILE, then environment variables, which take precedence
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)

	c.AWSRegion = getEnv("REGION", getEnv("AWS_REGION", c.AWSRegion))
	c.CatalogTable = getEnv("TABLE_NAME", c.CatalogTable)
	c.TranslatedTable = getEnv("TRANSLATED_TABLE", c.TranslatedTable)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.UserPoolID = getEnv("USER_POOL_ID", c.UserPoolID)
	c.ClientID = getEnv("CLIENT_ID", c.ClientID)
	c.JWKSURL = getEnv("JWKS_URL", c.JWKSURL)
	c.JWKSCacheTTL = getEnvDuration("JWKS_CACHE_TTL", c.JWKSCacheTTL)

	c.TranslatorBackend = getEnv("TRANSLATOR_BACKEND", c.TranslatorBackend)
	c.TranslatorFunction = getEnv("TRANSLATOR_FUNCTION", c.TranslatorFunction)
	c.SourceLanguage = getEnv("SOURCE_LANGUAGE", c.SourceLanguage)
	c.ExcludedFields = getEnvList("TRANSLATION_EXCLUDED_FIELDS", c.ExcludedFields)
	c.DownstreamTimeout = getEnvDuration("DOWNSTREAM_TIMEOUT", c.DownstreamTimeout)

	c.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", "")
	c.IsLambda = getEnvBool("IS_LAMBDA", c.LambdaFunctionName != "")
	// Behind API Gateway the authorizer has already verified the token.
	c.TrustGatewayAuthorizer = getEnvBool("TRUST_GATEWAY_AUTHORIZER", c.TrustGatewayAuthorizer || c.IsLambda)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.MetricsPrefix = getEnv("METRICS_NAMESPACE", c.MetricsPrefix)
}

var validate = validator.New()

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// KeySetURL returns the JWKS location, derived from the user pool unless
// overridden
func (c *Config) KeySetURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return auth.WellKnownJWKSURL(c.AWSRegion, c.UserPoolID)
}

// Issuer returns the expected token issuer, empty when the key set URL is
// overridden and no pool is configured
func (c *Config) Issuer() string {
	if c.UserPoolID == "" {
		return ""
	}
	return auth.PoolIssuer(c.AWSRegion, c.UserPoolID)
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvDuration accepts Go durations ("5s") or plain seconds ("5")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvList splits a comma separated variable. A set but blank value
// yields an empty list.
func getEnvList(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
