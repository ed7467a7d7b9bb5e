package auth

import (
	"context"
	"errors"
)

// Effect is the outcome of an access decision.
type Effect string

const (
	Allow Effect = "Allow"
	Deny  Effect = "Deny"
)

// Stage is the furthest point a request reached while being authorized.
type Stage string

const (
	StageReceived       Stage = "RECEIVED"
	StageCookieParsed   Stage = "COOKIE_PARSED"
	StageTokenExtracted Stage = "TOKEN_EXTRACTED"
	StageVerified       Stage = "VERIFIED"
	StageRejected       Stage = "REJECTED"
)

// AnonymousPrincipal is the principal of every Deny policy.
const AnonymousPrincipal = "anonymous"

// Rejection reasons.
const (
	ReasonNoCredential      = "no credential"
	ReasonInvalidCredential = "invalid credential"
	ReasonExpiredCredential = "expired credential"
)

// AccessRequest is what the engine needs to know about an inbound call.
type AccessRequest struct {
	Resource string            // invoked method identifier, e.g. an execute-api ARN
	Headers  map[string]string // raw request headers
}

// AccessPolicy is an allow or deny decision bound to one resource.
type AccessPolicy struct {
	PrincipalID string
	Effect      Effect
	Resource    string
	Context     map[string]string
	Reason      string
	Stage       Stage
}

// Allowed reports whether the policy grants access.
func (p AccessPolicy) Allowed() bool {
	return p.Effect == Allow
}

// Verifier verifies a token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// DecisionEngine turns a request's cookie credential into an access policy.
type DecisionEngine struct {
	verifier Verifier
}

// NewDecisionEngine creates a decision engine
func NewDecisionEngine(verifier Verifier) *DecisionEngine {
	return &DecisionEngine{verifier: verifier}
}

// Decide always returns a policy for credential problems. An error is returned
// only when the key set could not be fetched, which callers must treat as fatal.
func (e *DecisionEngine) Decide(ctx context.Context, req AccessRequest) (AccessPolicy, error) {
	policy := AccessPolicy{Resource: req.Resource, Stage: StageReceived}

	cookies := ParseCookies(CookieHeader(req.Headers))
	policy.Stage = StageCookieParsed

	token, ok := cookies.Get(TokenCookie)
	if !ok {
		return deny(policy, ReasonNoCredential), nil
	}
	policy.Stage = StageTokenExtracted

	claims, err := e.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, ErrKeySetUnavailable) {
			return deny(policy, ReasonInvalidCredential), err
		}
		if errors.Is(err, ErrExpiredToken) {
			return deny(policy, ReasonExpiredCredential), nil
		}
		return deny(policy, ReasonInvalidCredential), nil
	}

	policy.Stage = StageVerified
	policy.Effect = Allow
	policy.PrincipalID = claims.Subject
	policy.Context = map[string]string{"sub": claims.Subject}
	if claims.Email != "" {
		policy.Context["email"] = claims.Email
	}
	return policy, nil
}

func deny(policy AccessPolicy, reason string) AccessPolicy {
	policy.Effect = Deny
	policy.PrincipalID = AnonymousPrincipal
	policy.Reason = reason
	policy.Stage = StageRejected
	return policy
}
