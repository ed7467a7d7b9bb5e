package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"go.uber.org/zap"

	"retrogames/application/ports"
	"retrogames/pkg/auth"
	"retrogames/pkg/common"
	apperrors "retrogames/pkg/errors"
	"retrogames/pkg/observability"
)

// Messages returned to rejected callers.
const (
	MessageNoToken      = "Unauthorized: No JWT token"
	MessageInvalidToken = "Unauthorized: Invalid JWT token"
	MessageExpiredToken = "Unauthorized: JWT token has expired"
)

// Authenticator resolves the caller of mutating routes. Requests are checked
// by the decision engine unless the gateway authorizer already allowed them
// and trustGateway is set.
type Authenticator struct {
	engine       *auth.DecisionEngine
	trustGateway bool
	metrics      ports.Metrics
	logger       *zap.Logger
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(engine *auth.DecisionEngine, trustGateway bool, metrics ports.Metrics, logger *zap.Logger) *Authenticator {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &Authenticator{
		engine:       engine,
		trustGateway: trustGateway,
		metrics:      metrics,
		logger:       logger,
	}
}

// Authenticate creates an authentication middleware
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := flattenHeaders(r.Header)

		if principal, ok := gatewayPrincipal(r); ok && a.trustGateway {
			a.fromGateway(w, r, next, principal, headers)
			return
		}

		policy, err := a.engine.Decide(r.Context(), auth.AccessRequest{
			Resource: r.Method + " " + r.URL.Path,
			Headers:  headers,
		})
		if err != nil {
			a.logger.Error("Authorization unavailable", zap.Error(err))
			if errors.Is(err, context.DeadlineExceeded) {
				common.RespondError(w, apperrors.NewTimeoutError("jwks", err))
				return
			}
			common.RespondError(w, apperrors.NewExternalError("jwks", err))
			return
		}
		a.metrics.AuthDecision(r.Context(), string(policy.Effect), policy.Reason)

		if !policy.Allowed() {
			a.logger.Info("Request denied",
				zap.String("path", r.URL.Path),
				zap.String("reason", policy.Reason),
				zap.String("stage", string(policy.Stage)))
			respondDenied(w, policy.Reason)
			return
		}

		user := &auth.UserContext{UserID: policy.PrincipalID, Email: policy.Context["email"]}
		next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
	})
}

// fromGateway trusts the gateway authorizer and reads the subject from the
// cookie token without re-verifying its signature.
func (a *Authenticator) fromGateway(w http.ResponseWriter, r *http.Request, next http.Handler, principal string, headers map[string]string) {
	token, ok := auth.ParseCookies(auth.CookieHeader(headers)).Get(auth.TokenCookie)
	if !ok {
		a.metrics.AuthDecision(r.Context(), string(auth.Deny), auth.ReasonNoCredential)
		respondDenied(w, auth.ReasonNoCredential)
		return
	}

	ctx := auth.WithUpstreamVerification(r.Context())
	claims, err := auth.SubjectFromVerifiedToken(ctx, token)
	if err == nil && claims.Subject != principal {
		err = errors.New("token subject does not match authorizer principal")
	}
	if err != nil {
		a.logger.Warn("Rejected gateway authorized request",
			zap.String("principal", principal),
			zap.Error(err))
		a.metrics.AuthDecision(r.Context(), string(auth.Deny), auth.ReasonInvalidCredential)
		respondDenied(w, auth.ReasonInvalidCredential)
		return
	}

	a.metrics.AuthDecision(r.Context(), string(auth.Allow), "")
	user := &auth.UserContext{UserID: claims.Subject, Email: claims.Email}
	next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(ctx, user)))
}

// gatewayPrincipal returns the principal an API Gateway authorizer attached
// to the request, if any.
func gatewayPrincipal(r *http.Request) (string, bool) {
	gw, ok := core.GetAPIGatewayContextFromContext(r.Context())
	if !ok || gw.Authorizer == nil {
		return "", false
	}
	principal, _ := gw.Authorizer["principalId"].(string)
	if principal == "" || principal == auth.AnonymousPrincipal {
		return "", false
	}
	return principal, true
}

func respondDenied(w http.ResponseWriter, reason string) {
	switch reason {
	case auth.ReasonNoCredential:
		common.RespondError(w, apperrors.NewForbiddenError(MessageNoToken))
	case auth.ReasonExpiredCredential:
		common.RespondError(w, apperrors.NewUnauthorizedError(MessageExpiredToken))
	default:
		common.RespondError(w, apperrors.NewUnauthorizedError(MessageInvalidToken))
	}
}

func flattenHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}
	return headers
}
