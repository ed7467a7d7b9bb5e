package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"retrogames/application/ports"
	"retrogames/domain/catalog"
)

type translationKey struct {
	ID   int    `dynamodbav:"id"`
	Lang string `dynamodbav:"lang"`
}

// TranslationRepository implements ports.TranslationRepository on the
// translated table, keyed by (id, lang)
type TranslationRepository struct {
	client    API
	tableName string
	logger    *zap.Logger
}

// NewTranslationRepository creates a new TranslationRepository
func NewTranslationRepository(client API, tableName string, logger *zap.Logger) *TranslationRepository {
	return &TranslationRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.TranslationRepository = (*TranslationRepository)(nil)

// Get retrieves the translation of a record
func (r *TranslationRepository) Get(ctx context.Context, key catalog.TranslationKey) (*catalog.TranslatedRetroGame, error) {
	k, err := attributevalue.MarshalMap(translationKey{ID: key.ID, Lang: key.Lang})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       k,
	})
	if err != nil {
		return nil, classifyError("get translation", r.tableName, err)
	}
	if len(out.Item) == 0 {
		return nil, catalog.ErrNotFound
	}

	var item catalog.TranslatedRetroGame
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal translation: %w", err)
	}
	return &item, nil
}

// Put persists a translation. Concurrent fills of the same key overwrite
// each other.
func (r *TranslationRepository) Put(ctx context.Context, item catalog.TranslatedRetroGame) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal translation: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to put translation",
			zap.Int("id", item.ID),
			zap.String("lang", item.Lang),
			zap.Error(err))
		return classifyError("put translation", r.tableName, err)
	}
	return nil
}
