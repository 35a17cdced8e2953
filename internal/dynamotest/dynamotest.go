// Package dynamotest provides an in-memory dynamo.Store for service tests.
package dynamotest

import (
	"context"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/myblog/dynamo"
)

// Store is an in-memory implementation of dynamo.Store. Records live in
// table -> key-value -> item maps; secondary-index queries are answered by
// filtering on the key field, which is exactly the equality contract the
// real indexes provide.
type Store struct {
	mu     sync.Mutex
	tables map[string]map[string]dynamo.Item

	// GetErr, PutErr, DeleteErr, QueryErr and ScanErr, when set, are
	// consulted before each operation to inject failures.
	GetErr    func(table, key string) error
	PutErr    func(table, key string) error
	DeleteErr func(table, key string) error
	QueryErr  func(table, index string) error
	ScanErr   func(table string) error
}

// New creates an empty Store.
func New() *Store {
	return &Store{tables: make(map[string]map[string]dynamo.Item)}
}

// Seed writes an item directly, bypassing error hooks.
func (s *Store) Seed(table, key string, item dynamo.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table(table)[key] = copyItem(item)
}

// Len reports the number of records in a table.
func (s *Store) Len(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables[table])
}

func (s *Store) table(name string) map[string]dynamo.Item {
	t, ok := s.tables[name]
	if !ok {
		t = make(map[string]dynamo.Item)
		s.tables[name] = t
	}
	return t
}

func (s *Store) Get(ctx context.Context, input dynamo.GetInput) (dynamo.Item, error) {
	key := keyValue(input.Key)
	if s.GetErr != nil {
		if err := s.GetErr(input.Table, key); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.table(input.Table)[key]
	if !ok {
		return nil, nil
	}
	return project(item, input.Projection), nil
}

func (s *Store) PutOrUpdate(ctx context.Context, input dynamo.UpdateInput) (dynamo.Item, error) {
	keyName, key := keyPair(input.Key)
	if s.PutErr != nil {
		if err := s.PutErr(input.Table, key); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.table(input.Table)
	item, ok := t[key]
	if !ok {
		item = dynamo.Item{keyName: &types.AttributeValueMemberS{Value: key}}
	}
	item = copyItem(item)
	for k, v := range input.Attributes {
		item[k] = v
	}
	t[key] = item
	return copyItem(item), nil
}

func (s *Store) Delete(ctx context.Context, input dynamo.DeleteInput) (dynamo.Item, error) {
	key := keyValue(input.Key)
	if s.DeleteErr != nil {
		if err := s.DeleteErr(input.Table, key); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.table(input.Table)
	item, ok := t[key]
	if !ok {
		return nil, nil
	}
	delete(t, key)
	return item, nil
}

func (s *Store) Query(ctx context.Context, input dynamo.QueryInput) ([]dynamo.Item, error) {
	if s.QueryErr != nil {
		if err := s.QueryErr(input.Table, input.Index); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []dynamo.Item
	for _, key := range sortedKeys(s.table(input.Table)) {
		item := s.tables[input.Table][key]
		attr, ok := item[input.KeyField].(*types.AttributeValueMemberS)
		if !ok || attr.Value != input.KeyValue {
			continue
		}
		items = append(items, project(item, input.Projection))
		if input.Limit > 0 && int32(len(items)) >= input.Limit {
			break
		}
	}
	return items, nil
}

func (s *Store) Scan(ctx context.Context, input dynamo.ScanInput) ([]dynamo.Item, error) {
	if s.ScanErr != nil {
		if err := s.ScanErr(input.Table); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []dynamo.Item
	for _, key := range sortedKeys(s.table(input.Table)) {
		items = append(items, project(s.tables[input.Table][key], input.Projection))
		if input.Limit > 0 && int32(len(items)) >= input.Limit {
			break
		}
	}
	return items, nil
}

func keyPair(key dynamo.Key) (string, string) {
	for name, attr := range key {
		if s, ok := attr.(*types.AttributeValueMemberS); ok {
			return name, s.Value
		}
	}
	return "", ""
}

func keyValue(key dynamo.Key) string {
	_, v := keyPair(key)
	return v
}

func project(item dynamo.Item, fields []string) dynamo.Item {
	if len(fields) == 0 {
		return copyItem(item)
	}
	out := make(dynamo.Item, len(fields))
	for _, f := range fields {
		if v, ok := item[f]; ok {
			out[f] = v
		}
	}
	return out
}

func copyItem(item dynamo.Item) dynamo.Item {
	out := make(dynamo.Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func sortedKeys(t map[string]dynamo.Item) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
