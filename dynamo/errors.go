package dynamo

import "errors"

// ErrNotFound is returned when a point lookup is decoded against a record
// that does not exist.
var ErrNotFound = errors.New("myblog: record not found")
