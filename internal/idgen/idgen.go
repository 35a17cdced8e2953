// Package idgen generates the short random ids used as record keys.
package idgen

import "math/rand/v2"

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	// Length matches the ids already in the tables
	// (base-36 fraction of a random float, key prefix stripped).
	Length = 13
)

// New returns a random base-36 id. Uniqueness is probabilistic, not
// enforced; at expected volumes collisions are unlikely and an id clash
// surfaces as an upsert over the existing record.
func New() string {
	b := make([]byte, Length)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}
