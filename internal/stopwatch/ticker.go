package stopwatch

import (
	"context"
	"time"
)

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the TickerFunc backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// handle owns one running tick goroutine.
type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// startTicking runs onTick for every tick of t until the returned handle
// is cancelled.
func startTicking(t Ticker, onTick func()) *handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C():
				onTick()
			}
		}
	}()

	return h
}

// Cancel stops the goroutine and waits for it to exit. Ticks already
// received are applied before Cancel returns.
func (h *handle) Cancel() {
	h.cancel()
	<-h.done
}
