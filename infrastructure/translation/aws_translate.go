// Package translation holds the translator backends the translation cache
// calls on a miss.
package translation

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"
)

// ErrTranslationFailed wraps every backend failure
var ErrTranslationFailed = errors.New("translation failed")

// TranslateAPI is the part of the Amazon Translate client used here
type TranslateAPI interface {
	TranslateText(ctx context.Context, params *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
}

// AWSTranslator translates text with Amazon Translate
type AWSTranslator struct {
	client TranslateAPI
}

// NewAWSTranslator creates a translator backed by Amazon Translate
func NewAWSTranslator(client TranslateAPI) *AWSTranslator {
	return &AWSTranslator{client: client}
}

// Translate implements ports.Translator
func (t *AWSTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	out, err := t.client.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(sourceLang),
		TargetLanguageCode: aws.String(targetLang),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}
	if out.TranslatedText == nil {
		return "", fmt.Errorf("%w: empty response", ErrTranslationFailed)
	}
	return *out.TranslatedText, nil
}
