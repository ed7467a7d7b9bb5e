package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"retrogames/domain/catalog"
)

// CloudWatchAPI is the part of the CloudWatch client metrics need
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics publishes service metrics to CloudWatch
type Metrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// CacheLookup records a translated store lookup
func (m *Metrics) CacheLookup(ctx context.Context, lang string, status catalog.CacheStatus) {
	name := "TranslationCacheMiss"
	if status == catalog.CacheHit {
		name = "TranslationCacheHit"
	}

	m.put(ctx, types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: []types.Dimension{
			{Name: aws.String("Language"), Value: aws.String(lang)},
		},
		Value:     aws.Float64(1),
		Unit:      types.StandardUnitCount,
		Timestamp: aws.Time(time.Now()),
	})
}

// TranslationLatency records the duration of a cache fill
func (m *Metrics) TranslationLatency(ctx context.Context, lang string, d time.Duration) {
	m.put(ctx, types.MetricDatum{
		MetricName: aws.String("TranslationLatency"),
		Dimensions: []types.Dimension{
			{Name: aws.String("Language"), Value: aws.String(lang)},
		},
		Value:     aws.Float64(float64(d.Milliseconds())),
		Unit:      types.StandardUnitMilliseconds,
		Timestamp: aws.Time(time.Now()),
	})
}

// AuthDecision records an authorization outcome
func (m *Metrics) AuthDecision(ctx context.Context, effect, reason string) {
	if reason == "" {
		reason = "verified"
	}

	m.put(ctx, types.MetricDatum{
		MetricName: aws.String("AuthDecision"),
		Dimensions: []types.Dimension{
			{Name: aws.String("Effect"), Value: aws.String(effect)},
			{Name: aws.String("Reason"), Value: aws.String(reason)},
		},
		Value:     aws.Float64(1),
		Unit:      types.StandardUnitCount,
		Timestamp: aws.Time(time.Now()),
	})
}

func (m *Metrics) put(ctx context.Context, datum types.MetricDatum) {
	if m.client == nil {
		return
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: []types.MetricDatum{datum},
	}

	// Metrics never fail the request.
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Warn("Failed to send metrics",
			zap.String("metric", aws.ToString(datum.MetricName)),
			zap.Error(err))
	}
}

// NopMetrics discards every measurement
type NopMetrics struct{}

func (NopMetrics) CacheLookup(context.Context, string, catalog.CacheStatus)  {}
func (NopMetrics) TranslationLatency(context.Context, string, time.Duration) {}
func (NopMetrics) AuthDecision(context.Context, string, string)             {}
