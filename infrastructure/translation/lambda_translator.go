package translation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// InvokeAPI is the part of the Lambda client used here
type InvokeAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// ManagerRequest is the payload a translation manager function accepts
type ManagerRequest struct {
	Texts      []string `json:"texts"`
	SourceLang string   `json:"sourceLang"`
	TargetLang string   `json:"targetLang"`
}

// ManagerResponse is the payload a translation manager function returns
type ManagerResponse struct {
	Translations []string `json:"translations,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// LambdaTranslator translates text by invoking a translation manager function
type LambdaTranslator struct {
	client       InvokeAPI
	functionName string
}

// NewLambdaTranslator creates a translator that invokes functionName
func NewLambdaTranslator(client InvokeAPI, functionName string) *LambdaTranslator {
	return &LambdaTranslator{client: client, functionName: functionName}
}

// Translate implements ports.Translator
func (t *LambdaTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	payload, err := json.Marshal(ManagerRequest{
		Texts:      []string{text},
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := t.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(t.functionName),
		Payload:      payload,
	})
	if err != nil {
		return "", fmt.Errorf("%w: invoke %s: %v", ErrTranslationFailed, t.functionName, err)
	}

	// Check for Lambda errors
	if result.FunctionError != nil {
		return "", fmt.Errorf("%w: lambda error: %s", ErrTranslationFailed, *result.FunctionError)
	}

	var resp ManagerResponse
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrTranslationFailed, err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrTranslationFailed, resp.Error)
	}
	if len(resp.Translations) != 1 {
		return "", fmt.Errorf("%w: expected 1 translation, got %d", ErrTranslationFailed, len(resp.Translations))
	}

	return resp.Translations[0], nil
}
