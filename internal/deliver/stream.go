// Package deliver exposes classified launch events to the application in
// two modes: a one-shot pull against the durable store, usable before any
// UI exists, and a live push stream for events that arrive while the app
// is running.
package deliver

import "sync"

// streamBuffer bounds how many emissions a slow subscriber can lag
// before further emissions are dropped.
const streamBuffer = 8

// Stream is a single-subscriber broadcast of values of type T.
//
// Emissions with no subscriber attached are dropped: a launch event with
// nobody listening is not an error, it is a normal launch being ignored.
// Emit never blocks - the subscriber channel is buffered and a full
// buffer also drops, so a stuck subscriber cannot stall the native
// callback thread.
type Stream[T any] struct {
	mu     sync.Mutex
	sub    chan T
	closed bool
}

// NewStream creates a stream with no subscriber.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{}
}

// Subscribe attaches the single subscriber and returns its channel.
// A second Subscribe replaces the first; the previous channel is closed
// so an old listener terminates instead of hanging.
func (s *Stream[T]) Subscribe() <-chan T {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		close(s.sub)
	}
	if s.closed {
		ch := make(chan T)
		close(ch)
		return ch
	}
	s.sub = make(chan T, streamBuffer)
	return s.sub
}

// Emit delivers v to the subscriber, if any.
// Returns true when the value was handed to a subscriber channel,
// false when it was dropped (no subscriber, full buffer, or closed).
func (s *Stream[T]) Emit(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.sub == nil {
		return false
	}

	select {
	case s.sub <- v:
		return true
	default:
		return false
	}
}

// Close terminates the stream and the subscriber channel.
// Subsequent Emit calls drop; subsequent Subscribe calls return a
// closed channel.
func (s *Stream[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.sub != nil {
		close(s.sub)
		s.sub = nil
	}
}
