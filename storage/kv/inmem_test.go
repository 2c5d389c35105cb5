package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInmemStore(t *testing.T) {
	ctx := context.Background()
	s := NewInmemStore()

	_, err := s.Get(ctx, KeyAuthToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyAuthToken, "tok-123"))
	v, err := s.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", v)

	// overwrite
	require.NoError(t, s.Set(ctx, KeyAuthToken, "tok-456"))
	v, _ = s.Get(ctx, KeyAuthToken)
	assert.Equal(t, "tok-456", v)

	require.NoError(t, s.Remove(ctx, KeyAuthToken))
	_, err = s.Get(ctx, KeyAuthToken)
	assert.ErrorIs(t, err, ErrNotFound)

	// removing a missing key is not an error
	assert.NoError(t, s.Remove(ctx, "nope"))
}

func TestInmemStoreCacheValidity(t *testing.T) {
	ctx := context.Background()
	s := NewInmemStore()

	assert.False(t, s.IsCacheValid(ctx, KeyProfile, time.Hour), "missing key is never valid")

	require.NoError(t, s.Set(ctx, KeyProfile, `{"name":"T"}`))
	assert.True(t, s.IsCacheValid(ctx, KeyProfile, time.Hour))

	// age the entry past its ttl
	s.mutex.Lock()
	e := s.entries[KeyProfile]
	e.Timestamp = e.Timestamp.Add(-2 * time.Minute)
	s.entries[KeyProfile] = e
	s.mutex.Unlock()

	assert.False(t, s.IsCacheValid(ctx, KeyProfile, time.Minute))
	assert.True(t, s.IsCacheValid(ctx, KeyProfile, time.Hour), "still valid under a longer ttl")
}
