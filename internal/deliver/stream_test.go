package deliver

import (
	"testing"

	"github.com/tapwake/tapwake/internal/launch"
)

func TestEmit_NoSubscriberDrops(t *testing.T) {
	s := NewStream[launch.State]()

	if s.Emit(launch.State{IsFromNotification: true, Payload: "{}"}) {
		t.Error("Emit() with no subscriber reported delivery")
	}
}

func TestEmit_DeliversToSubscriber(t *testing.T) {
	s := NewStream[launch.State]()
	ch := s.Subscribe()

	want := launch.State{IsFromNotification: true, Payload: `{"id":5}`}
	if !s.Emit(want) {
		t.Fatal("Emit() with subscriber reported drop")
	}

	got := <-ch
	if got != want {
		t.Errorf("received %+v, want %+v", got, want)
	}
}

func TestEmit_DropsBeforeSubscribe(t *testing.T) {
	s := NewStream[string]()
	s.Emit("lost")
	ch := s.Subscribe()

	select {
	case v := <-ch:
		t.Errorf("received %q, want nothing: pre-subscribe emissions drop", v)
	default:
	}
}

func TestSubscribe_ReplacesPrevious(t *testing.T) {
	s := NewStream[string]()
	first := s.Subscribe()
	second := s.Subscribe()

	s.Emit("v")

	// The replaced channel is closed and empty.
	if v, ok := <-first; ok {
		t.Errorf("first subscriber received %q after replacement", v)
	}
	if v := <-second; v != "v" {
		t.Errorf("second subscriber received %q, want v", v)
	}
}

func TestEmit_FullBufferDrops(t *testing.T) {
	s := NewStream[int]()
	s.Subscribe()

	for i := 0; i < streamBuffer; i++ {
		if !s.Emit(i) {
			t.Fatalf("Emit(%d) dropped before buffer full", i)
		}
	}
	if s.Emit(streamBuffer) {
		t.Error("Emit() on full buffer reported delivery")
	}
}

func TestClose_TerminatesSubscriber(t *testing.T) {
	s := NewStream[string]()
	ch := s.Subscribe()
	s.Close()

	if _, ok := <-ch; ok {
		t.Error("subscriber channel still open after Close")
	}
	if s.Emit("late") {
		t.Error("Emit() after Close reported delivery")
	}

	// Close is idempotent and post-close Subscribe terminates immediately.
	s.Close()
	if _, ok := <-s.Subscribe(); ok {
		t.Error("post-close Subscribe returned a live channel")
	}
}
