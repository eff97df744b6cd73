package kitchen

import (
	"context"
	"errors"
	"time"
)

// ErrLoopStopped is returned by Do once the loop has exited.
var ErrLoopStopped = errors.New("kitchen loop stopped")

type command struct {
	fn   func(*Kitchen) error
	done chan error
}

// Loop owns a Kitchen and runs it on a ticker. Every access from other
// goroutines goes through Do, so the kitchen itself needs no locking.
type Loop struct {
	k        *Kitchen
	interval time.Duration
	cmds     chan command
	stopped  chan struct{}
	onTick   func(*Kitchen)
}

// NewLoop creates a loop ticking k every interval with a fixed step of the
// same length.
func NewLoop(k *Kitchen, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Loop{
		k:        k,
		interval: interval,
		cmds:     make(chan command),
		stopped:  make(chan struct{}),
	}
}

// OnTick registers fn to run after every tick, on the loop goroutine.
// It must be set before Run.
func (l *Loop) OnTick(fn func(*Kitchen)) { l.onTick = fn }

// Run starts the kitchen and ticks it until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.k.Start()
	for {
		select {
		case <-ctx.Done():
			l.k.log.Infof("loop stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			l.k.Tick(l.interval)
			if l.onTick != nil {
				l.onTick(l.k)
			}
		case cmd := <-l.cmds:
			cmd.done <- cmd.fn(l.k)
		}
	}
}

// Do runs fn on the loop goroutine and returns its error.
func (l *Loop) Do(ctx context.Context, fn func(*Kitchen) error) error {
	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case l.cmds <- cmd:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.stopped }
