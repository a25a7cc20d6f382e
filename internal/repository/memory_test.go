package repository

import (
	"context"
	"testing"
	"time"

	"padelclub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		r := NewMemoryStateRepository(time.Hour)
		state := &models.SessionState{Token: "t1", Email: "ana@example.com", Step: models.StepSlotUnselected}
		require.NoError(t, r.SetState(ctx, state))

		got, err := r.GetState(ctx, "t1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "ana@example.com", got.Email)
	})

	t.Run("unknown token yields nil", func(t *testing.T) {
		r := NewMemoryStateRepository(time.Hour)
		got, err := r.GetState(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("clear removes the session", func(t *testing.T) {
		r := NewMemoryStateRepository(time.Hour)
		require.NoError(t, r.SetState(ctx, &models.SessionState{Token: "t1"}))
		require.NoError(t, r.ClearState(ctx, "t1"))

		got, err := r.GetState(ctx, "t1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("expired sessions vanish", func(t *testing.T) {
		r := NewMemoryStateRepository(time.Millisecond)
		require.NoError(t, r.SetState(ctx, &models.SessionState{Token: "t1"}))
		time.Sleep(5 * time.Millisecond)

		got, err := r.GetState(ctx, "t1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestMemoryStateRepository_CheckRateLimit(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryStateRepository(time.Hour)

	for i := 0; i < 3; i++ {
		allowed, err := r.CheckRateLimit(ctx, "k1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := r.CheckRateLimit(ctx, "k1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// other keys are independent
	allowed, err = r.CheckRateLimit(ctx, "k2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	// counter resets after the window
	allowed, err = r.CheckRateLimit(ctx, "k3", 1, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, allowed)
	time.Sleep(5 * time.Millisecond)
	allowed, err = r.CheckRateLimit(ctx, "k3", 1, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, allowed)
}
