package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// Key represents a DynamoDB primary key.
type Key map[string]types.AttributeValue

// Item is a raw DynamoDB item in the store's tagged wire format.
type Item map[string]types.AttributeValue

// StringKey builds a single-attribute string key.
func StringKey(name, value string) Key {
	return Key{name: &types.AttributeValueMemberS{Value: value}}
}

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store is the store-client contract the entity services depend on.
// *Client implements it against DynamoDB.
type Store interface {
	Get(ctx context.Context, input GetInput) (Item, error)
	PutOrUpdate(ctx context.Context, input UpdateInput) (Item, error)
	Delete(ctx context.Context, input DeleteInput) (Item, error)
	Query(ctx context.Context, input QueryInput) ([]Item, error)
	Scan(ctx context.Context, input ScanInput) ([]Item, error)
}

// Client provides the key-value operations used by the resolver services.
type Client struct {
	api API
}

// New creates a new Client on top of a DynamoDB API client.
func New(api API) *Client {
	return &Client{api: api}
}

// GetInput defines a point lookup.
type GetInput struct {
	// Table is the DynamoDB table to read.
	Table string

	// Key is the primary key of the record.
	Key Key

	// Projection lists the attributes to return (nil = all).
	Projection []string
}

// UpdateInput defines an upsert-by-key. Every attribute is written with a
// SET expression; creation and update are the same operation.
type UpdateInput struct {
	Table string
	Key   Key

	// Attributes are the non-key attributes to set.
	Attributes map[string]types.AttributeValue
}

// DeleteInput defines a delete-by-key.
type DeleteInput struct {
	Table string
	Key   Key
}

// QueryInput defines an equality query against a secondary index.
type QueryInput struct {
	Table string
	Index string

	// KeyField is the index partition key attribute. It is always aliased in
	// the expression; "user" is a DynamoDB reserved word.
	KeyField string
	KeyValue string

	Projection []string

	// Limit caps the number of items returned (0 = no cap).
	Limit int32
}

// ScanInput defines a capped table scan. Each call is independent; there is
// no pagination cursor across calls.
type ScanInput struct {
	Table      string
	Projection []string
	Limit      int32
}

// Get retrieves a record by key. A missing record is returned as a nil Item,
// not an error; Decode turns that into ErrNotFound.
func (c *Client) Get(ctx context.Context, input GetInput) (Item, error) {
	req := &dynamodb.GetItemInput{
		TableName: aws.String(input.Table),
		Key:       map[string]types.AttributeValue(input.Key),
	}
	applyProjection(input.Projection, func(expr string, names map[string]string) {
		req.ProjectionExpression = aws.String(expr)
		req.ExpressionAttributeNames = names
	})

	result, err := c.api.GetItem(ctx, req)
	if err != nil {
		return nil, wrap("get", input.Table, err)
	}
	if result.Item == nil {
		return nil, nil
	}
	return Item(result.Item), nil
}

// PutOrUpdate writes every attribute with a SET expression and returns the
// full record as stored (ReturnValues ALL_NEW).
func (c *Client) PutOrUpdate(ctx context.Context, input UpdateInput) (Item, error) {
	names := make(map[string]string, len(input.Attributes))
	values := make(map[string]types.AttributeValue, len(input.Attributes))
	clauses := make([]string, 0, len(input.Attributes))

	// Sorted for a deterministic expression.
	attrs := make([]string, 0, len(input.Attributes))
	for k := range input.Attributes {
		attrs = append(attrs, k)
	}
	sort.Strings(attrs)

	for i, k := range attrs {
		nameKey := fmt.Sprintf("#attr%d", i)
		valueKey := fmt.Sprintf(":val%d", i)
		names[nameKey] = k
		values[valueKey] = input.Attributes[k]
		clauses = append(clauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}

	result, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(input.Table),
		Key:                       map[string]types.AttributeValue(input.Key),
		UpdateExpression:          aws.String("SET " + joinStrings(clauses, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, wrap("put", input.Table, err)
	}
	return Item(result.Attributes), nil
}

// Delete removes a record by key and returns the removed record
// (ReturnValues ALL_OLD), or nil if nothing was deleted.
func (c *Client) Delete(ctx context.Context, input DeleteInput) (Item, error) {
	result, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(input.Table),
		Key:          map[string]types.AttributeValue(input.Key),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, wrap("delete", input.Table, err)
	}
	if result.Attributes == nil {
		return nil, nil
	}
	return Item(result.Attributes), nil
}

// Query runs an equality query against a secondary index, paginating until
// the limit (when set) is reached.
func (c *Client) Query(ctx context.Context, input QueryInput) ([]Item, error) {
	names := map[string]string{"#k": input.KeyField}
	req := &dynamodb.QueryInput{
		TableName:              aws.String(input.Table),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: input.KeyValue},
		},
	}
	if input.Index != "" {
		req.IndexName = aws.String(input.Index)
	}
	if input.Limit > 0 {
		req.Limit = aws.Int32(input.Limit)
	}
	applyProjection(input.Projection, func(expr string, projNames map[string]string) {
		req.ProjectionExpression = aws.String(expr)
		for k, v := range projNames {
			names[k] = v
		}
	})
	req.ExpressionAttributeNames = names

	var items []Item
	paginator := dynamodb.NewQueryPaginator(c.api, req)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrap("query", input.Table, err)
		}
		for _, raw := range page.Items {
			items = append(items, Item(raw))
			if input.Limit > 0 && int32(len(items)) >= input.Limit {
				return items, nil
			}
		}
	}
	return items, nil
}

// Scan reads up to Limit records from a table. Restartability is not
// required; callers treat each scan as an independent bounded read.
func (c *Client) Scan(ctx context.Context, input ScanInput) ([]Item, error) {
	req := &dynamodb.ScanInput{
		TableName: aws.String(input.Table),
	}
	if input.Limit > 0 {
		req.Limit = aws.Int32(input.Limit)
	}
	applyProjection(input.Projection, func(expr string, names map[string]string) {
		req.ProjectionExpression = aws.String(expr)
		req.ExpressionAttributeNames = names
	})

	result, err := c.api.Scan(ctx, req)
	if err != nil {
		return nil, wrap("scan", input.Table, err)
	}
	items := make([]Item, 0, len(result.Items))
	for _, raw := range result.Items {
		items = append(items, Item(raw))
	}
	return items, nil
}

// buildProjection aliases every projected attribute so reserved words such
// as "user" and "tokens" are always safe.
func buildProjection(fields []string) (string, map[string]string) {
	names := make(map[string]string, len(fields))
	aliases := make([]string, 0, len(fields))
	for i, f := range fields {
		alias := fmt.Sprintf("#p%d", i)
		names[alias] = f
		aliases = append(aliases, alias)
	}
	return joinStrings(aliases, ", "), names
}

func applyProjection(fields []string, set func(expr string, names map[string]string)) {
	if len(fields) == 0 {
		return
	}
	expr, names := buildProjection(fields)
	set(expr, names)
}

// wrap adds the operation, table and, when available, the service error code
// to a failed store call.
func wrap(op, table string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("dynamo: %s %s: %s: %w", op, table, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("dynamo: %s %s: %w", op, table, err)
}

// joinStrings joins strings with a separator (avoiding strings package import).
func joinStrings(strs []string, sep string) string {
	if len(strs) == 0 {
		return ""
	}
	result := strs[0]
	for _, s := range strs[1:] {
		result += sep + s
	}
	return result
}
