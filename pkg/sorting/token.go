package sorting

import (
	"context"
	"sync/atomic"
)

// Token is the shared stop flag of one run. It starts out running and, once
// stopped, stays stopped; a new run needs a fresh token.
//
// The controller is the only writer. Algorithms only read it.
type Token struct {
	stopped atomic.Bool
}

// NewToken returns a running token.
func NewToken() *Token {
	return &Token{}
}

// Stop marks the token stopped. Safe to call more than once and from any goroutine.
func (t *Token) Stop() {
	t.stopped.Store(true)
}

// Stopped reports whether Stop has been called. A nil token never stops.
func (t *Token) Stopped() bool {
	if t == nil {
		return false
	}

	return t.stopped.Load()
}

// StopWhenDone stops the token once ctx is done. The returned function
// detaches the token from ctx and reports whether it did so before ctx fired.
func (t *Token) StopWhenDone(ctx context.Context) func() bool {
	return context.AfterFunc(ctx, t.Stop)
}
