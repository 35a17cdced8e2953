// Package resolver routes AppSync-style {field, arguments} events to entity
// service operations.
//
// Each entity Lambda builds one [Resolver] from a static operation table.
// The table is validated when the resolver is constructed, so a misspelled
// or missing operation is a startup failure, not a request-time surprise.
// A field that arrives with no table entry still fails the request with an
// unknown-operation [Error].
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambdacontext"
)

// Event is the request shape delivered by the graph gateway.
type Event struct {
	Field     string          `json:"field"`
	Arguments json.RawMessage `json:"arguments"`
}

// HandlerFunc executes one operation against its raw JSON arguments.
type HandlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Resolver dispatches events for a single entity kind.
type Resolver struct {
	entity string
	ops    map[string]HandlerFunc
	logger *slog.Logger
}

// New builds a Resolver from a static operation table. It fails if the
// entity name or table is empty, or if any operation maps to a nil handler.
func New(entity string, ops map[string]HandlerFunc, logger *slog.Logger) (*Resolver, error) {
	if entity == "" {
		return nil, errors.New("resolver: entity name is required")
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("resolver: %s has no operations", entity)
	}
	for field, fn := range ops {
		if field == "" {
			return nil, fmt.Errorf("resolver: %s has an operation with an empty field name", entity)
		}
		if fn == nil {
			return nil, fmt.Errorf("resolver: %s operation %q has a nil handler", entity, field)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{entity: entity, ops: ops, logger: logger}, nil
}

// Handle dispatches a single event. Results and *Error failures pass through
// unchanged; any other error is reported as a code 500 failure. This
// function is designed to be used as an AWS Lambda handler.
func (r *Resolver) Handle(ctx context.Context, event Event) (any, error) {
	logger := r.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With("requestID", lc.AwsRequestID)
	}

	op, ok := r.ops[event.Field]
	if !ok {
		err := NewError(400, fmt.Sprintf("Unknown operation %q for %s", event.Field, r.entity))
		logger.Error("dispatch failed", "entity", r.entity, "field", event.Field, "error", err)
		return nil, err
	}

	args := event.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	result, err := op(ctx, args)
	if err != nil {
		var rerr *Error
		if !errors.As(err, &rerr) {
			err = NewError(500, err.Error())
		}
		logger.Error("operation failed",
			"entity", r.entity,
			"field", event.Field,
			"error", err,
		)
		return nil, err
	}

	logger.Info("operation completed", "entity", r.entity, "field", event.Field)
	return result, nil
}

// Fields returns the operation names this resolver accepts.
func (r *Resolver) Fields() []string {
	fields := make([]string, 0, len(r.ops))
	for field := range r.ops {
		fields = append(fields, field)
	}
	return fields
}
