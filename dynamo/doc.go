// Package dynamo is the only package that talks to DynamoDB.
//
// It exposes the five operations the resolver services are built on:
//
//   - [Client.Get] - point lookup by key, nil when absent
//   - [Client.PutOrUpdate] - upsert-by-key returning the full new item
//   - [Client.Delete] - delete-by-key returning the removed item
//   - [Client.Query] - equality query against a secondary index
//   - [Client.Scan] - capped table scan
//
// There is no multi-key transaction primitive here; invariants that span
// records (email uniqueness, blog/entry cascade) are enforced by the
// services as sequential calls.
//
// The tagged attribute-value wire format never leaves this package: callers
// pass and receive plain structs through [Decode], [DecodeList] and [Encode].
// [Decode] fails with [ErrNotFound] on an absent record rather than handing
// back a partially populated value.
//
// # Errors
//
//   - [ErrNotFound] - point lookup decoded against a missing record
//   - any other error wraps the underlying SDK failure with the operation,
//     table and, when available, the service error code
package dynamo
