package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Claims), args.Error(1)
}

const methodArn = "arn:aws:execute-api:eu-west-1:123456789012:abc/prod/POST/retroGames"

func TestDecisionEngine_Decide(t *testing.T) {
	ctx := context.Background()

	t.Run("Should allow a verified token and expose the subject", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("Verify", ctx, "good").Return(&Claims{
			Email:            "a@example.com",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		}, nil)
		engine := NewDecisionEngine(verifier)

		policy, err := engine.Decide(ctx, AccessRequest{
			Resource: methodArn,
			Headers:  map[string]string{"Cookie": "theme=dark; token=good"},
		})

		require.NoError(t, err)
		assert.True(t, policy.Allowed())
		assert.Equal(t, "user-1", policy.PrincipalID)
		assert.Equal(t, methodArn, policy.Resource)
		assert.Equal(t, StageVerified, policy.Stage)
		assert.Equal(t, map[string]string{"sub": "user-1", "email": "a@example.com"}, policy.Context)
		verifier.AssertExpectations(t)
	})

	t.Run("Should deny without a cookie header", func(t *testing.T) {
		verifier := new(MockVerifier)
		engine := NewDecisionEngine(verifier)

		policy, err := engine.Decide(ctx, AccessRequest{Resource: methodArn})

		require.NoError(t, err)
		assert.Equal(t, Deny, policy.Effect)
		assert.Equal(t, AnonymousPrincipal, policy.PrincipalID)
		assert.Equal(t, ReasonNoCredential, policy.Reason)
		assert.Equal(t, StageRejected, policy.Stage)
		assert.Equal(t, methodArn, policy.Resource)
		verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Should deny an empty token cookie as missing", func(t *testing.T) {
		engine := NewDecisionEngine(new(MockVerifier))

		policy, err := engine.Decide(ctx, AccessRequest{
			Resource: methodArn,
			Headers:  map[string]string{"cookie": "token"},
		})

		require.NoError(t, err)
		assert.Equal(t, ReasonNoCredential, policy.Reason)
	})

	t.Run("Should deny invalid tokens without failing", func(t *testing.T) {
		for _, verifyErr := range []error{ErrInvalidSignature, ErrInvalidToken, ErrNoUsableKey, ErrInvalidClaims} {
			verifier := new(MockVerifier)
			verifier.On("Verify", ctx, "bad").Return(nil, verifyErr)
			engine := NewDecisionEngine(verifier)

			policy, err := engine.Decide(ctx, AccessRequest{
				Resource: methodArn,
				Headers:  map[string]string{"Cookie": "token=bad"},
			})

			require.NoError(t, err, verifyErr.Error())
			assert.Equal(t, Deny, policy.Effect)
			assert.Equal(t, ReasonInvalidCredential, policy.Reason)
		}
	})

	t.Run("Should report expired tokens", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("Verify", ctx, "old").Return(nil, ErrExpiredToken)
		engine := NewDecisionEngine(verifier)

		policy, err := engine.Decide(ctx, AccessRequest{
			Resource: methodArn,
			Headers:  map[string]string{"Cookie": "token=old"},
		})

		require.NoError(t, err)
		assert.Equal(t, ReasonExpiredCredential, policy.Reason)
	})

	t.Run("Should fail when the key set cannot be fetched", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("Verify", ctx, "any").Return(nil, fmt.Errorf("%w: dial tcp", ErrKeySetUnavailable))
		engine := NewDecisionEngine(verifier)

		policy, err := engine.Decide(ctx, AccessRequest{
			Resource: methodArn,
			Headers:  map[string]string{"Cookie": "token=any"},
		})

		assert.ErrorIs(t, err, ErrKeySetUnavailable)
		assert.False(t, policy.Allowed())
	})
}
