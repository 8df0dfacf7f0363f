// Package kv is the string-keyed JSON store every record in the service lives in.
package kv

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrNotFound = errors.New("kv: key not found")

type Entry struct {
	Key   string
	Value json.RawMessage
}

// Store is a get/set/prefix-scan store of JSON documents.
//
// Update runs fn against the current value of key (nil when absent) and
// writes its result while no other Update on the same key can interleave.
// Returning a nil value from fn leaves the key untouched.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	MGet(ctx context.Context, keys []string) (map[string]json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Delete(ctx context.Context, key string) error
	Scan(ctx context.Context, prefix string) ([]Entry, error)
	Update(ctx context.Context, key string, fn func(current json.RawMessage) (json.RawMessage, error)) error
}
