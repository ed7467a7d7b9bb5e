package observability

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer provides distributed tracing capabilities
type Tracer struct {
	serviceName string
	enabled     bool
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string, enabled bool) *Tracer {
	return &Tracer{
		serviceName: serviceName,
		enabled:     enabled,
	}
}

// active reports whether ctx can carry a subsegment. Outside Lambda and
// without a parent segment xray would log a missing-context error.
func (t *Tracer) active(ctx context.Context) bool {
	if t == nil || !t.enabled {
		return false
	}
	return xray.GetSegment(ctx) != nil || ctx.Value(xray.LambdaTraceHeaderKey) != nil
}

// TraceFunction wraps fn in a subsegment named after the service and
// operation, annotated with the given key/value pairs.
func (t *Tracer) TraceFunction(ctx context.Context, name string, annotations map[string]string, fn func(context.Context) error) error {
	if !t.active(ctx) {
		return fn(ctx)
	}

	return xray.Capture(ctx, fmt.Sprintf("%s.%s", t.serviceName, name), func(tracedCtx context.Context) error {
		for k, v := range annotations {
			_ = xray.AddAnnotation(tracedCtx, k, v)
		}
		return fn(tracedCtx)
	})
}

// RecordError records an error in the current segment
func (t *Tracer) RecordError(ctx context.Context, err error) {
	if !t.active(ctx) {
		return
	}
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddError(err)
	}
}
