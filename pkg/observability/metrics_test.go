package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retrogames/domain/catalog"
)

type MockCloudWatch struct {
	mock.Mock
}

func (m *MockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	return &cloudwatch.PutMetricDataOutput{}, args.Error(0)
}

func TestMetrics_CacheLookup(t *testing.T) {
	client := new(MockCloudWatch)
	client.On("PutMetricData", mock.Anything, mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
		return aws.ToString(in.Namespace) == "RetroGames" &&
			len(in.MetricData) == 1 &&
			aws.ToString(in.MetricData[0].MetricName) == "TranslationCacheHit" &&
			aws.ToString(in.MetricData[0].Dimensions[0].Value) == "es"
	})).Return(nil)

	NewMetrics("RetroGames", client, zap.NewNop()).CacheLookup(context.Background(), "es", catalog.CacheHit)

	client.AssertExpectations(t)
}

func TestMetrics_SwallowsErrors(t *testing.T) {
	client := new(MockCloudWatch)
	client.On("PutMetricData", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	assert.NotPanics(t, func() {
		NewMetrics("RetroGames", client, zap.NewNop()).TranslationLatency(context.Background(), "fr", time.Second)
	})
	client.AssertNumberOfCalls(t, "PutMetricData", 1)
}

func TestMetrics_NilClient(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("RetroGames", nil, zap.NewNop()).AuthDecision(context.Background(), "Deny", "no credential")
	})
}

func TestCollector(t *testing.T) {
	c := NewCollector("retrogames")
	ctx := context.Background()

	c.CacheLookup(ctx, "es", catalog.CacheMiss)
	c.CacheLookup(ctx, "es", catalog.CacheHit)
	c.CacheLookup(ctx, "es", catalog.CacheHit)
	c.AuthDecision(ctx, "Allow", "")
	c.TranslationLatency(ctx, "es", 150*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.CacheLookups.WithLabelValues("es", "hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.CacheLookups.WithLabelValues("es", "miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.AuthDecisions.WithLabelValues("Allow", "verified")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "retrogames_translation_cache_lookups_total")
}

func TestTracer_Disabled(t *testing.T) {
	called := false
	err := NewTracer("retrogames", false).TraceFunction(context.Background(), "op", nil, func(context.Context) error {
		called = true
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, called)
}

func TestTracer_EnabledWithoutParentSegment(t *testing.T) {
	want := errors.New("boom")
	err := NewTracer("retrogames", true).TraceFunction(context.Background(), "op", map[string]string{"k": "v"}, func(context.Context) error {
		return want
	})

	assert.ErrorIs(t, err, want)
}
