// Package scenario executes declarative launch sequences against a
// real Context and records their observable traces.
//
// A scenario is a list of steps - OS signals, gate transitions,
// pulls - run with a manual gate and a file-backed store. Everything
// observable (classified events, stream emissions, pull results) is
// appended to a trace. Traces are deterministic because payload
// serialization sorts object keys and event IDs are excluded.
package scenario

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SignalSpec describes an OS signal to deliver.
type SignalSpec struct {
	URL           string            `yaml:"url,omitempty" json:"url,omitempty"`
	Action        string            `yaml:"action,omitempty" json:"action,omitempty"`
	Extras        map[string]string `yaml:"extras,omitempty" json:"extras,omitempty"`
	RemotePayload string            `yaml:"remote_payload,omitempty" json:"remote_payload,omitempty"`
}

// Step is one scenario step. Multiple fields may be set; they execute
// in a fixed order: store_pending, trip_gate, subscribe, signal,
// consume, consume_link.
type Step struct {
	// StorePending pre-registers a payload.
	StorePending string `yaml:"store_pending,omitempty"`

	// TripGate moves the gate to Ready.
	TripGate bool `yaml:"trip_gate,omitempty"`

	// Subscribe attaches the push stream subscribers.
	Subscribe bool `yaml:"subscribe,omitempty"`

	// Signal delivers an OS signal.
	Signal *SignalSpec `yaml:"signal,omitempty"`

	// Consume performs the notification-state pull.
	Consume bool `yaml:"consume,omitempty"`

	// ConsumeLink performs the initial-link pull.
	ConsumeLink bool `yaml:"consume_link,omitempty"`
}

// Scenario is a named launch sequence.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// FromYAML parses a scenario definition.
func FromYAML(data []byte) (Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if sc.Name == "" {
		return Scenario{}, fmt.Errorf("scenario has no name")
	}
	if len(sc.Steps) == 0 {
		return Scenario{}, fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	return sc, nil
}
