package batch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	token := NewToken()
	assert.False(t, token.IsCancelled())
	assert.NoError(t, Checkpoint(token.Context()))

	token.Cancel()
	token.Cancel()

	assert.True(t, token.IsCancelled())
	assert.ErrorIs(t, Checkpoint(token.Context()), ErrCancelled)

	select {
	case <-token.Done():
	case <-time.After(time.Second):
		t.Fatal("expected token context to be done")
	}
}

func TestTokens_Registry(t *testing.T) {
	registry := NewTokens()
	first := registry.New("batch-b")
	second := registry.New("batch-a")

	assert.Equal(t, []string{"batch-a", "batch-b"}, registry.Active())

	assert.True(t, registry.Cancel("batch-b"))
	assert.True(t, first.IsCancelled())
	assert.False(t, second.IsCancelled())
	assert.True(t, registry.IsCancelled("batch-b"))
	assert.False(t, registry.Cancel("unknown"))

	assert.Equal(t, 2, registry.CancelAll())
	assert.True(t, second.IsCancelled())

	registry.Release("batch-a")
	_, ok := registry.Get("batch-a")
	assert.False(t, ok)
	assert.False(t, registry.IsCancelled("batch-a"))
}

func TestCheckpoint_ContextDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, Checkpoint(ctx))
	cancel()
	assert.ErrorIs(t, Checkpoint(ctx), ErrCancelled)
}
