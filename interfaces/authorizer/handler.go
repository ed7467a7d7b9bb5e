// Package authorizer adapts the decision engine to API Gateway REQUEST
// authorizer events.
package authorizer

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"retrogames/application/ports"
	"retrogames/pkg/auth"
	"retrogames/pkg/observability"
)

const (
	policyVersion = "2012-10-17"
	invokeAction  = "execute-api:Invoke"
)

// Handler answers authorizer events with an IAM policy for the invoked method
type Handler struct {
	engine  *auth.DecisionEngine
	metrics ports.Metrics
	tracer  *observability.Tracer
	logger  *zap.Logger
}

// NewHandler creates a new authorizer handler
func NewHandler(engine *auth.DecisionEngine, metrics ports.Metrics, tracer *observability.Tracer, logger *zap.Logger) *Handler {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &Handler{
		engine:  engine,
		metrics: metrics,
		tracer:  tracer,
		logger:  logger,
	}
}

// Handle decides on one request. A key set failure is returned as an error so
// the gateway fails the call instead of caching a policy.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayCustomAuthorizerRequestTypeRequest) (events.APIGatewayCustomAuthorizerResponse, error) {
	var policy auth.AccessPolicy

	err := h.tracer.TraceFunction(ctx, "authorizer.decide", map[string]string{
		"method": event.HTTPMethod,
		"path":   event.Path,
	}, func(ctx context.Context) error {
		var err error
		policy, err = h.engine.Decide(ctx, auth.AccessRequest{
			Resource: event.MethodArn,
			Headers:  event.Headers,
		})
		return err
	})
	if err != nil {
		h.logger.Error("Authorization failed",
			zap.String("methodArn", event.MethodArn),
			zap.Error(err))
		h.tracer.RecordError(ctx, err)
		return events.APIGatewayCustomAuthorizerResponse{}, err
	}

	h.metrics.AuthDecision(ctx, string(policy.Effect), policy.Reason)
	if !policy.Allowed() {
		h.logger.Info("Request denied",
			zap.String("methodArn", event.MethodArn),
			zap.String("reason", policy.Reason),
			zap.String("stage", string(policy.Stage)))
	}

	return Response(policy), nil
}

// Response renders a policy in the shape API Gateway expects.
func Response(policy auth.AccessPolicy) events.APIGatewayCustomAuthorizerResponse {
	resp := events.APIGatewayCustomAuthorizerResponse{
		PrincipalID: policy.PrincipalID,
		PolicyDocument: events.APIGatewayCustomAuthorizerPolicy{
			Version: policyVersion,
			Statement: []events.IAMPolicyStatement{
				{
					Action:   []string{invokeAction},
					Effect:   string(policy.Effect),
					Resource: []string{policy.Resource},
				},
			},
		},
	}

	if len(policy.Context) > 0 {
		resp.Context = make(map[string]interface{}, len(policy.Context))
		for k, v := range policy.Context {
			resp.Context[k] = v
		}
	}
	return resp
}
