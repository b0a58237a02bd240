package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerExcludes(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "g1")
	require.NoError(t, err)

	// other keys are independent
	other, err := l.Lock(context.Background(), "g2")
	require.NoError(t, err)
	other()

	acquired := make(chan struct{})
	go func() {
		u, err := l.Lock(context.Background(), "g1")
		if err == nil {
			close(acquired)
			u()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	unlock() // repeated unlock is a no-op
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock was not released")
	}
}

func TestLocalLockerHonoursContext(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "g1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "g1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocalLockerForgetsReleasedKeys(t *testing.T) {
	l := NewLocalLocker()
	for _, key := range []string{"g1", "g2", "g3"} {
		unlock, err := l.Lock(context.Background(), key)
		require.NoError(t, err)
		unlock()
	}
	assert.Zero(t, l.size())

	unlock, err := l.Lock(context.Background(), "g1")
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "g1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, l.size(), "held key stays after a waiter gives up")

	waited := make(chan func())
	go func() {
		u, err := l.Lock(context.Background(), "g1")
		if err == nil {
			waited <- u
		}
	}()
	require.Eventually(t, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.slots["g1"] != nil && l.slots["g1"].refs == 2
	}, time.Second, time.Millisecond)

	unlock()
	second := <-waited
	assert.Equal(t, 1, l.size(), "the waiter now holds the key")
	second()
	assert.Zero(t, l.size())
}
