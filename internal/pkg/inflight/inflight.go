// Package inflight keeps at most one cancellable operation alive per owner.
//
// A Slot hands out Tokens. Beginning a new token cancels the previous one with
// ErrSuperseded, which aborts any request bound to the old token's context.
package inflight

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrSuperseded is the cancellation cause of a token replaced by a newer one.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrDetached is the cancellation cause of a token whose owner went away.
	ErrDetached = errors.New("consumer detached")
)

// Token is a cancellation handle for a single operation.
type Token struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// NewToken derives a token from parent.
func NewToken(parent context.Context) *Token {
	ctx, cancel := context.WithCancelCause(parent)
	return &Token{ctx: ctx, cancel: cancel}
}

// Context is the context every remote call of the operation must use.
func (t *Token) Context() context.Context {
	return t.ctx
}

// Cancel aborts the operation. Only the first cause is kept, so repeated calls are safe.
func (t *Token) Cancel(cause error) {
	t.cancel(cause)
}

// Active reports whether the operation may still publish its result.
func (t *Token) Active() bool {
	return t.ctx.Err() == nil
}

// Superseded reports whether a newer operation replaced this one.
func (t *Token) Superseded() bool {
	return errors.Is(context.Cause(t.ctx), ErrSuperseded)
}

// Cause returns why the token was cancelled, or nil when it is still active.
func (t *Token) Cause() error {
	return context.Cause(t.ctx)
}

// Slot holds the single in-flight token of an owner.
type Slot struct {
	mu      sync.Mutex
	current *Token
}

// Begin cancels the current token, if any, and installs a new one.
func (s *Slot) Begin(parent context.Context) *Token {
	token := NewToken(parent)

	s.mu.Lock()
	prev := s.current
	s.current = token
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel(ErrSuperseded)
	}
	return token
}

// Release frees the resources of a finished token. The slot is emptied only
// if t is still the current one.
func (s *Slot) Release(t *Token) {
	s.mu.Lock()
	if s.current == t {
		s.current = nil
	}
	s.mu.Unlock()

	t.Cancel(context.Canceled)
}

// Cancel aborts the current token with cause and empties the slot.
func (s *Slot) Cancel(cause error) {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel(cause)
	}
}

// Current returns the in-flight token or nil.
func (s *Slot) Current() *Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
