// Package loop runs functions one at a time, in submission order, on a
// single goroutine.
package loop

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/zond/charsheet"
)

var (
	ErrClosed = errors.New("loop is closed")
)

type Loop struct {
	cond    *sync.Cond
	pending []func()
	closed  bool
}

func New() *Loop {
	return &Loop{
		cond: sync.NewCond(&sync.Mutex{}),
	}
}

// Post queues f without waiting for it. Functions posted after Close are dropped.
func (l *Loop) Post(f func()) {
	l.cond.L.Lock()
	defer l.cond.L.Unlock()
	if l.closed {
		return
	}
	l.pending = append(l.pending, f)
	l.cond.Broadcast()
}

// Do queues f and waits until it has run, or until ctx is done.
func (l *Loop) Do(ctx context.Context, f func()) error {
	done := make(chan struct{})
	l.cond.L.Lock()
	if l.closed {
		l.cond.L.Unlock()
		return charsheet.WithStack(ErrClosed)
	}
	l.pending = append(l.pending, func() {
		defer close(done)
		f()
	})
	l.cond.Broadcast()
	l.cond.L.Unlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return charsheet.WithStack(ctx.Err())
	}
}

// Close makes Start return once the already queued functions have run.
func (l *Loop) Close() {
	l.cond.L.Lock()
	defer l.cond.L.Unlock()
	l.closed = true
	l.cond.Broadcast()
}

// Start runs queued functions until Close is called or ctx is done.
func (l *Loop) Start(ctx context.Context) error {
	stop := context.AfterFunc(ctx, l.Close)
	defer stop()
	l.cond.L.Lock()
	defer l.cond.L.Unlock()
	for {
		for len(l.pending) > 0 {
			next := l.pending[0]
			l.pending = l.pending[1:]
			l.cond.L.Unlock()
			next()
			l.cond.L.Lock()
		}
		if l.closed {
			return charsheet.WithStack(ctx.Err())
		}
		l.cond.Wait()
	}
}
