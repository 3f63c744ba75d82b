package interactions

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// dynamoItem is keyed by phone (partition) and "createdAt#id" (sort) so a
// customer's history reads newest first with one Query.
type dynamoItem struct {
	Phone        string   `dynamodbav:"phone"`
	SortKey      string   `dynamodbav:"sk"`
	ID           string   `dynamodbav:"id"`
	InboundText  string   `dynamodbav:"inboundText"`
	OutboundText string   `dynamodbav:"outboundText"`
	IntentLabel  string   `dynamodbav:"intentLabel"`
	Channel      string   `dynamodbav:"channel"`
	Flow         string   `dynamodbav:"flow"`
	MessageID    string   `dynamodbav:"messageId,omitempty"`
	Signals      []string `dynamodbav:"signals,omitempty"`
	Delivered    bool     `dynamodbav:"delivered"`
	CreatedAt    string   `dynamodbav:"createdAt"`
}

// DynamoStore writes records to a DynamoDB table.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
}

func NewDynamoStore(client dynamoAPI, tableName string) *DynamoStore {
	if client == nil {
		panic("interactions: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("interactions: table name cannot be empty")
	}
	return &DynamoStore{client: client, tableName: tableName}
}

func (s *DynamoStore) Append(ctx context.Context, rec *Record) error {
	if err := prepare(rec); err != nil {
		return err
	}
	created := rec.CreatedAt.UTC().Format(time.RFC3339Nano)
	item, err := attributevalue.MarshalMap(dynamoItem{
		Phone:        rec.Phone,
		SortKey:      created + "#" + rec.ID,
		ID:           rec.ID,
		InboundText:  rec.InboundText,
		OutboundText: rec.OutboundText,
		IntentLabel:  rec.IntentLabel,
		Channel:      rec.Channel,
		Flow:         rec.Flow,
		MessageID:    rec.MessageID,
		Signals:      rec.Signals,
		Delivered:    rec.Delivered,
		CreatedAt:    created,
	})
	if err != nil {
		return fmt.Errorf("interactions: failed to marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(sk)"),
	})
	if err != nil {
		return fmt.Errorf("interactions: failed to persist record: %w", err)
	}
	return nil
}

// List queries one phone's history newest first. Without a phone it falls
// back to an unordered Scan page, sorted client-side.
func (s *DynamoStore) List(ctx context.Context, phone string, limit int) ([]Record, error) {
	limit = clampLimit(limit)

	var items []map[string]types.AttributeValue
	if phone != "" {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("phone = :phone"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":phone": &types.AttributeValueMemberS{Value: phone},
			},
			ScanIndexForward: aws.Bool(false),
			Limit:            aws.Int32(int32(limit)),
		})
		if err != nil {
			return nil, fmt.Errorf("interactions: query failed: %w", err)
		}
		items = out.Items
	} else {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName: aws.String(s.tableName),
			Limit:     aws.Int32(int32(limit)),
		})
		if err != nil {
			return nil, fmt.Errorf("interactions: scan failed: %w", err)
		}
		items = out.Items
	}

	var raw []dynamoItem
	if err := attributevalue.UnmarshalListOfMaps(items, &raw); err != nil {
		return nil, fmt.Errorf("interactions: failed to unmarshal records: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for _, it := range raw {
		created, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
		signals := it.Signals
		if signals == nil {
			signals = []string{}
		}
		records = append(records, Record{
			ID:           it.ID,
			Phone:        it.Phone,
			InboundText:  it.InboundText,
			OutboundText: it.OutboundText,
			IntentLabel:  it.IntentLabel,
			Channel:      it.Channel,
			Flow:         it.Flow,
			MessageID:    it.MessageID,
			Signals:      signals,
			Delivered:    it.Delivered,
			CreatedAt:    created,
		})
	}
	if phone == "" {
		sortNewestFirst(records)
	}
	return records, nil
}
