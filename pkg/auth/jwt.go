package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token has expired")
	ErrInvalidSignature  = errors.New("invalid token signature")
	ErrMissingToken      = errors.New("missing authentication token")
	ErrInvalidClaims     = errors.New("invalid token claims")
	ErrKeySetUnavailable = errors.New("key set unavailable")
	ErrNoUsableKey       = errors.New("no usable verification key")
	ErrNotPreverified    = errors.New("token was not verified upstream")
)

// Claims represents the claims of a Cognito identity or access token.
// The subject lives in RegisteredClaims.Subject.
type Claims struct {
	Email    string `json:"email,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	TokenUse string `json:"token_use,omitempty"`
	jwt.RegisteredClaims
}

// VerifierConfig holds token verifier configuration
type VerifierConfig struct {
	KeySetURL string // JWKS location
	Issuer    string // Expected issuer, unchecked when empty
	ClientID  string // Expected audience or client_id, unchecked when empty
}

// TokenVerifier validates RS256 tokens against a published key set.
type TokenVerifier struct {
	fetcher KeySetFetcher
	config  VerifierConfig
	parser  *jwt.Parser
}

// NewTokenVerifier creates a verifier that fetches keys with fetcher.
func NewTokenVerifier(fetcher KeySetFetcher, config VerifierConfig) *TokenVerifier {
	return &TokenVerifier{
		fetcher: fetcher,
		config:  config,
		parser:  jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})),
	}
}

// Verify checks the token signature and expiry and returns its claims.
// Failures are reported through the package sentinel errors; a key set
// transport failure wraps ErrKeySetUnavailable.
func (v *TokenVerifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	set, err := v.fetcher.Fetch(ctx, v.config.KeySetURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeySetUnavailable, err)
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		jwk, err := set.SelectKey(kid)
		if err != nil {
			return nil, err
		}
		return jwk.RSAPublicKey()
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrNoUsableKey):
			return nil, fmt.Errorf("%w: %v", ErrNoUsableKey, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	if !token.Valid {
		return nil, ErrInvalidClaims
	}
	if err := v.checkClaims(claims); err != nil {
		return nil, err
	}

	return claims, nil
}

func (v *TokenVerifier) checkClaims(claims *Claims) error {
	if claims.Subject == "" {
		return fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}

	if v.config.Issuer != "" && claims.Issuer != v.config.Issuer {
		return fmt.Errorf("%w: invalid issuer", ErrInvalidClaims)
	}

	// ID tokens carry the client in aud, access tokens in client_id.
	if v.config.ClientID != "" &&
		claims.ClientID != v.config.ClientID &&
		!contains(claims.Audience, v.config.ClientID) {
		return fmt.Errorf("%w: invalid audience", ErrInvalidClaims)
	}

	return nil
}

type upstreamKey struct{}

// WithUpstreamVerification marks ctx as belonging to a request whose token
// a gateway authorizer has already verified.
func WithUpstreamVerification(ctx context.Context) context.Context {
	return context.WithValue(ctx, upstreamKey{}, true)
}

// IsUpstreamVerified reports whether WithUpstreamVerification marked ctx.
func IsUpstreamVerified(ctx context.Context) bool {
	verified, _ := ctx.Value(upstreamKey{}).(bool)
	return verified
}

// SubjectFromVerifiedToken reads the subject of a token without checking its
// signature. It refuses to run unless ctx carries an upstream verification mark.
func SubjectFromVerifiedToken(ctx context.Context, tokenString string) (*Claims, error) {
	if !IsUpstreamVerified(ctx) {
		return nil, ErrNotPreverified
	}
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}
	return claims, nil
}

// UserContext represents the authenticated caller of a request
type UserContext struct {
	UserID string
	Email  string
}

// ContextKey for storing user context
type contextKey string

const UserContextKey contextKey = "user"

// GetUserFromContext extracts user from context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(UserContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, errors.New("user not found in context")
	}
	return user, nil
}

// SetUserInContext adds user to context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
