package gate

import (
	"testing"
	"time"
)

func TestNewManual_StartsInitializing(t *testing.T) {
	g := NewManual()

	if g.Ready() {
		t.Error("new gate is Ready, want Initializing")
	}
	if g.State() != Initializing {
		t.Errorf("State() = %v, want Initializing", g.State())
	}
}

func TestTrip_MovesToReady(t *testing.T) {
	g := NewManual()
	g.Trip()

	if !g.Ready() {
		t.Error("gate not Ready after Trip")
	}
}

func TestTrip_Idempotent(t *testing.T) {
	g := NewManual()
	g.Trip()
	g.Trip()

	if g.State() != Ready {
		t.Errorf("State() = %v after double Trip, want Ready", g.State())
	}
}

func TestStart_TimerTripsGate(t *testing.T) {
	g := Start(10 * time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for !g.Ready() {
		if time.Now().After(deadline) {
			t.Fatal("gate never became Ready")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestState_String(t *testing.T) {
	if got := Initializing.String(); got != "initializing" {
		t.Errorf("Initializing.String() = %q", got)
	}
	if got := Ready.String(); got != "ready" {
		t.Errorf("Ready.String() = %q", got)
	}
}
