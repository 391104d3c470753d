package services

import (
	"sync"
	"time"
)

// Countdown drives a session's clock, invoking the tick callback once per
// interval until stopped. It performs no I/O itself; what a tick means is
// the session's business.
type Countdown struct {
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func NewCountdown(interval time.Duration) *Countdown {
	return &Countdown{
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Run blocks, ticking until Stop is called. Callers run it on its own
// goroutine.
func (c *Countdown) Run(onTick func()) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			onTick()
		case <-c.stop:
			return
		}
	}
}

// Stop ends the countdown. Idempotent.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}
