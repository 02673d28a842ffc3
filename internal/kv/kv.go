// Package kv defines the key-value storage port behind the ledger and its
// memory and SQLite implementations. Each collection is stored whole under a
// single reserved key; writers do read-modify-write of the full value and the
// last writer wins.
package kv

import "context"

// Store is the storage contract injected into the ledger. The second return
// of Get distinguishes a missing key from an empty value.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
