package facetec

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// StatusError is how an enrollment rejection reaches the caller: a stable
// numeric code derived from the status enums plus a human readable reason.
// Callers branch on Code without parsing Message.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.CodeString(), e.Message)
}

// CodeString returns the code in the string form the bridge contract uses.
func (e *StatusError) CodeString() string {
	return strconv.Itoa(e.Code)
}

// Promise is the async result channel standing in for the bridge promise:
// it settles exactly once, either resolved with a value or rejected with a
// StatusError. Settling a second time is a no-op.
type Promise[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

func (p *Promise[T]) Resolve(value T) {
	p.once.Do(func() {
		p.value = value
		close(p.done)
	})
}

func (p *Promise[T]) Reject(code int, message string) {
	p.once.Do(func() {
		p.err = &StatusError{Code: code, Message: message}
		close(p.done)
	})
}

// Await blocks until the promise settles or the context is done.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Settled reports whether the promise already resolved or rejected.
func (p *Promise[T]) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
