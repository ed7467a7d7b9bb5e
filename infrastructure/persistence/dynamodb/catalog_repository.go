package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"retrogames/application/ports"
	"retrogames/domain/catalog"
)

// API is the subset of the DynamoDB client the repositories use
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// catalogKey is the primary key of the catalog table
type catalogKey struct {
	Platform string `dynamodbav:"platform"`
	Title    string `dynamodbav:"title"`
}

// CatalogRepository implements ports.CatalogRepository using DynamoDB
type CatalogRepository struct {
	client    API
	tableName string
	logger    *zap.Logger
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(client API, tableName string, logger *zap.Logger) *CatalogRepository {
	return &CatalogRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.CatalogRepository = (*CatalogRepository)(nil)

// ListAll scans the whole table
func (r *CatalogRepository) ListAll(ctx context.Context) ([]catalog.RetroGame, error) {
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})

	games := make([]catalog.RetroGame, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyError("scan", r.tableName, err)
		}

		var batch []catalog.RetroGame
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal retro games: %w", err)
		}
		games = append(games, batch...)
	}

	r.logger.Debug("Scanned catalog", zap.Int("count", len(games)))
	return games, nil
}

// ListByPlatform queries one partition, optionally narrowed to a title
func (r *CatalogRepository) ListByPlatform(ctx context.Context, platform string, title *string) ([]catalog.RetroGame, error) {
	keyCond := expression.Key("platform").Equal(expression.Value(platform))
	if title != nil {
		keyCond = keyCond.And(expression.Key("title").Equal(expression.Value(*title)))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	games := make([]catalog.RetroGame, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyError("query", r.tableName, err)
		}

		var batch []catalog.RetroGame
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal retro games: %w", err)
		}
		games = append(games, batch...)
	}

	return games, nil
}

// Get retrieves a record by key
func (r *CatalogRepository) Get(ctx context.Context, key catalog.Key) (*catalog.RetroGame, error) {
	k, err := attributevalue.MarshalMap(catalogKey{Platform: key.Platform, Title: key.Title})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            k,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, classifyError("get", r.tableName, err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", catalog.ErrNotFound, key.Platform, key.Title)
	}

	var game catalog.RetroGame
	if err := attributevalue.UnmarshalMap(out.Item, &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal retro game: %w", err)
	}
	return &game, nil
}

// Put writes a whole record
func (r *CatalogRepository) Put(ctx context.Context, game catalog.RetroGame) error {
	item, err := attributevalue.MarshalMap(game)
	if err != nil {
		return fmt.Errorf("failed to marshal retro game: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	}); err != nil {
		r.logger.Error("Failed to put retro game",
			zap.String("platform", game.Platform),
			zap.String("title", game.Title),
			zap.Error(err))
		return classifyError("put", r.tableName, err)
	}
	return nil
}

// Replace sets every describable attribute of an existing record. The key
// and the owner are not part of the update.
func (r *CatalogRepository) Replace(ctx context.Context, game catalog.RetroGame) error {
	k, err := attributevalue.MarshalMap(catalogKey{Platform: game.Platform, Title: game.Title})
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}

	update := expression.
		Set(expression.Name("id"), expression.Value(game.ID)).
		Set(expression.Name("genre"), expression.Value(game.Genre)).
		Set(expression.Name("release_date"), expression.Value(game.ReleaseDate)).
		Set(expression.Name("developer"), expression.Value(game.Developer)).
		Set(expression.Name("publisher"), expression.Value(game.Publisher)).
		Set(expression.Name("description"), expression.Value(game.Description)).
		Set(expression.Name("cover_art_path"), expression.Value(game.CoverArtPath)).
		Set(expression.Name("screenshots"), expression.Value(game.Screenshots)).
		Set(expression.Name("rating"), expression.Value(game.Rating)).
		Set(expression.Name("popularity"), expression.Value(game.Popularity)).
		Set(expression.Name("multiplayer"), expression.Value(game.Multiplayer)).
		Set(expression.Name("average_score"), expression.Value(game.AverageScore)).
		Set(expression.Name("review_count"), expression.Value(game.ReviewCount))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("platform"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	if _, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       k,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}); err != nil {
		return classifyError("update", r.tableName, err)
	}
	return nil
}
