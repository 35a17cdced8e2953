package dynamo

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Decode converts a raw item into a domain record. An absent record fails
// with ErrNotFound instead of yielding a partially populated value; callers
// must never dereference fields of a record that was not actually read.
func Decode(item Item, out any) error {
	if len(item) == 0 {
		return ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(item, out); err != nil {
		return fmt.Errorf("dynamo: decode: %w", err)
	}
	return nil
}

// DecodeList converts a sequence of raw items into a slice of domain
// records. An empty sequence decodes to an empty slice, not an error.
func DecodeList(items []Item, out any) error {
	raw := make([]map[string]types.AttributeValue, len(items))
	for i, item := range items {
		raw[i] = map[string]types.AttributeValue(item)
	}
	if err := attributevalue.UnmarshalListOfMaps(raw, out); err != nil {
		return fmt.Errorf("dynamo: decode list: %w", err)
	}
	return nil
}

// Encode converts a domain record into the store's tagged wire format.
func Encode(in any) (Item, error) {
	raw, err := attributevalue.MarshalMap(in)
	if err != nil {
		return nil, fmt.Errorf("dynamo: encode: %w", err)
	}
	return Item(raw), nil
}
