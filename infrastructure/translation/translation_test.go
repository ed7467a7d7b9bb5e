package translation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retrogames/application/ports/mocks"
)

type MockTranslateAPI struct {
	mock.Mock
}

func (m *MockTranslateAPI) TranslateText(ctx context.Context, params *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*translate.TranslateTextOutput), args.Error(1)
}

type MockInvokeAPI struct {
	mock.Mock
}

func (m *MockInvokeAPI) Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lambda.InvokeOutput), args.Error(1)
}

func TestAWSTranslator(t *testing.T) {
	ctx := context.Background()

	t.Run("Should pass languages and return the translated text", func(t *testing.T) {
		client := new(MockTranslateAPI)
		client.On("TranslateText", ctx, mock.MatchedBy(func(in *translate.TranslateTextInput) bool {
			return aws.ToString(in.Text) == "Castle" &&
				aws.ToString(in.SourceLanguageCode) == "en" &&
				aws.ToString(in.TargetLanguageCode) == "es"
		})).Return(&translate.TranslateTextOutput{TranslatedText: aws.String("Castillo")}, nil)

		out, err := NewAWSTranslator(client).Translate(ctx, "Castle", "en", "es")

		require.NoError(t, err)
		assert.Equal(t, "Castillo", out)
	})

	t.Run("Should wrap service failures", func(t *testing.T) {
		client := new(MockTranslateAPI)
		client.On("TranslateText", ctx, mock.Anything).Return(nil, errors.New("unsupported language pair"))

		_, err := NewAWSTranslator(client).Translate(ctx, "Castle", "en", "xx")

		assert.ErrorIs(t, err, ErrTranslationFailed)
	})
}

func TestLambdaTranslator(t *testing.T) {
	ctx := context.Background()

	t.Run("Should invoke the function with a single text", func(t *testing.T) {
		client := new(MockInvokeAPI)
		payload, _ := json.Marshal(ManagerResponse{Translations: []string{"Château"}})
		client.On("Invoke", ctx, mock.MatchedBy(func(in *lambda.InvokeInput) bool {
			var req ManagerRequest
			if err := json.Unmarshal(in.Payload, &req); err != nil {
				return false
			}
			return aws.ToString(in.FunctionName) == "translation-manager" &&
				len(req.Texts) == 1 && req.SourceLang == "en" && req.TargetLang == "fr"
		})).Return(&lambda.InvokeOutput{Payload: payload}, nil)

		out, err := NewLambdaTranslator(client, "translation-manager").Translate(ctx, "Castle", "en", "fr")

		require.NoError(t, err)
		assert.Equal(t, "Château", out)
	})

	t.Run("Should surface function errors", func(t *testing.T) {
		client := new(MockInvokeAPI)
		client.On("Invoke", ctx, mock.Anything).Return(&lambda.InvokeOutput{FunctionError: aws.String("Unhandled")}, nil)

		_, err := NewLambdaTranslator(client, "translation-manager").Translate(ctx, "Castle", "en", "fr")

		assert.ErrorIs(t, err, ErrTranslationFailed)
	})

	t.Run("Should surface errors reported in the payload", func(t *testing.T) {
		client := new(MockInvokeAPI)
		payload, _ := json.Marshal(ManagerResponse{Error: "unsupported language pair: en-xx"})
		client.On("Invoke", ctx, mock.Anything).Return(&lambda.InvokeOutput{Payload: payload}, nil)

		_, err := NewLambdaTranslator(client, "translation-manager").Translate(ctx, "Castle", "en", "xx")

		assert.ErrorIs(t, err, ErrTranslationFailed)
		assert.Contains(t, err.Error(), "unsupported language pair")
	})
}

func TestBreakingTranslator(t *testing.T) {
	ctx := context.Background()

	t.Run("Should pass results through", func(t *testing.T) {
		b := NewBreakingTranslator(&mocks.PrefixTranslator{}, DefaultBreakerConfig(), zap.NewNop())

		out, err := b.Translate(ctx, "Castle", "en", "es")

		require.NoError(t, err)
		assert.Equal(t, "[ES] Castle", out)
	})

	t.Run("Should open after repeated failures and stop calling", func(t *testing.T) {
		next := new(mocks.MockTranslator)
		next.On("Translate", ctx, "Castle", "en", "es").Return("", errors.New("throttled"))
		config := BreakerConfig{
			Name:             "test",
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			FailureThreshold: 0.5,
			MinRequests:      2,
		}
		b := NewBreakingTranslator(next, config, zap.NewNop())

		for i := 0; i < 2; i++ {
			_, err := b.Translate(ctx, "Castle", "en", "es")
			require.Error(t, err)
		}
		assert.Equal(t, gobreaker.StateOpen, b.State())

		_, err := b.Translate(ctx, "Castle", "en", "es")
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		next.AssertNumberOfCalls(t, "Translate", 2)
	})
}
