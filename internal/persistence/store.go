// Package persistence defines the key/value contract the session token is
// kept behind. Backends live in the sqlite and redis subpackages.
package persistence

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key holds no value.
	ErrNotFound = errors.New("persistence: key not found")
	// ErrEmptyKey is returned when a key is blank after trimming.
	ErrEmptyKey = errors.New("persistence: empty key")
)

// KeyValueStore is the browser-style local storage the session is persisted
// in. Get returns ErrNotFound when the key is absent; Delete of an absent key
// succeeds.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
