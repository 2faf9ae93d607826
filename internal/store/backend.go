package store

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnknownBackend = errors.New("unknown store backend")

// Backend is a key-value store holding one JSON document per collection key.
// Reads and writes are whole-document; there are no partial updates.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// ParseError reports a stored collection that is not valid JSON for its shape.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse stored collection %q: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
