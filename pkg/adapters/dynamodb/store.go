// Package dynamodb stores validation records in an AWS DynamoDB table.
//
// The table uses file_name as partition key and sort_key (creation time, then
// record id) as sort key, so the records of one file come back in time order
// from a single Query.
package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// sortKeyLayout is fixed width so lexical order equals time order.
const sortKeyLayout = "2006-01-02T15:04:05.000000000Z"

// API is the subset of the DynamoDB client used by Store.
type API interface {
	PutItem(ctx context.Context, in *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	Query(ctx context.Context, in *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	Scan(ctx context.Context, in *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
}

// Config selects the table and how to reach it.
// Empty credentials fall back to the default AWS chain.
type Config struct {
	Table     string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Store implements ports.ResultStore on DynamoDB.
type Store struct {
	client API
	table  string
}

type item struct {
	FileName  string    `dynamodbav:"file_name"`
	SortKey   string    `dynamodbav:"sort_key"`
	ID        string    `dynamodbav:"id"`
	Rule      string    `dynamodbav:"validation_rule"`
	Result    string    `dynamodbav:"result"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

// NewClient builds a DynamoDB client from cfg.
func NewClient(ctx context.Context, cfg Config) (*sdk.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Open creates a client from cfg and wraps it in a Store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Table == "" {
		return nil, fmt.Errorf("dynamodb: table name is required")
	}
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(client, cfg.Table), nil
}

// New wraps an existing client.
func New(client API, table string) *Store {
	return &Store{client: client, table: table}
}

func toItem(rec domain.Record) item {
	at := rec.CreatedAt.UTC()
	return item{
		FileName:  rec.FileName,
		SortKey:   at.Format(sortKeyLayout) + "#" + rec.ID,
		ID:        rec.ID,
		Rule:      string(rec.Rule),
		Result:    rec.Result,
		CreatedAt: at,
	}
}

func (it item) record() domain.Record {
	return domain.Record{
		ID:        it.ID,
		FileName:  it.FileName,
		Rule:      domain.Rule(it.Rule),
		Result:    it.Result,
		CreatedAt: it.CreatedAt.UTC(),
	}
}

// Save puts the record.
func (s *Store) Save(ctx context.Context, rec domain.Record) error {
	av, err := attributevalue.MarshalMap(toItem(rec))
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// List returns matching records, newest first.
// Filtering by file name uses Query; listing everything scans the table.
func (s *Store) List(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	if filter.FileName != "" {
		return s.query(ctx, filter)
	}
	return s.scan(ctx, filter)
}

func (s *Store) query(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	out := []domain.Record{}
	var startKey map[string]types.AttributeValue

	for {
		in := &sdk.QueryInput{
			TableName:              aws.String(s.table),
			KeyConditionExpression: aws.String("file_name = :f"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":f": &types.AttributeValueMemberS{Value: filter.FileName},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: startKey,
		}
		if filter.Limit > 0 {
			in.Limit = aws.Int32(int32(filter.Limit - len(out)))
		}

		res, err := s.client.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to query records: %w", err)
		}
		recs, err := decode(res.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)

		if len(res.LastEvaluatedKey) == 0 || (filter.Limit > 0 && len(out) >= filter.Limit) {
			return out, nil
		}
		startKey = res.LastEvaluatedKey
	}
}

func (s *Store) scan(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	out := []domain.Record{}
	var startKey map[string]types.AttributeValue

	for {
		res, err := s.client.Scan(ctx, &sdk.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan records: %w", err)
		}
		recs, err := decode(res.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)

		if len(res.LastEvaluatedKey) == 0 {
			break
		}
		startKey = res.LastEvaluatedKey
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func decode(items []map[string]types.AttributeValue) ([]domain.Record, error) {
	var its []item
	if err := attributevalue.UnmarshalListOfMaps(items, &its); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}
	recs := make([]domain.Record, len(its))
	for i, it := range its {
		recs[i] = it.record()
	}
	return recs, nil
}

// Close is a no-op; the SDK client holds no connection to release.
func (s *Store) Close() error {
	return nil
}
