package services

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownTicksUntilStopped(t *testing.T) {
	c := NewCountdown(time.Millisecond)

	var ticks atomic.Int64
	done := make(chan struct{})
	go func() {
		c.Run(func() { ticks.Add(1) })
		close(done)
	}()

	require.Eventually(t, func() bool { return ticks.Load() >= 5 }, time.Second, time.Millisecond)
	c.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("countdown did not stop")
	}

	seen := ticks.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, seen, ticks.Load())
}

func TestCountdownStopIsIdempotent(t *testing.T) {
	c := NewCountdown(time.Millisecond)
	c.Stop()
	c.Stop()
}
