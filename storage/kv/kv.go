// Package kv is a small key-value persistence adapter used for session
// material and cached blobs. Values carry their write timestamp so callers
// can ask whether a cached entry is still fresh without decoding it.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("kv: key not found")

// Well-known keys.
const (
	KeyAuthToken     = "authToken"
	KeyProfile       = "profile"
	KeySelectedChild = "selectedChild"
)

type (
	Store interface {
		Get(ctx context.Context, key string) (string, error)
		Set(ctx context.Context, key, value string) error
		Remove(ctx context.Context, key string) error
		// IsCacheValid reports whether key exists and was written within ttl.
		IsCacheValid(ctx context.Context, key string, ttl time.Duration) bool
	}

	entry struct {
		Data      string    `json:"data"`
		Timestamp time.Time `json:"timestamp"`
	}
)

func encodeEntry(value string, ts time.Time) ([]byte, error) {
	return json.Marshal(entry{Data: value, Timestamp: ts})
}

func decodeEntry(b []byte) (entry, error) {
	var e entry
	err := json.Unmarshal(b, &e)
	return e, err
}
