package scenario

import (
	"context"
	"fmt"

	"github.com/tapwake/tapwake"
)

// TraceEvent is one observable occurrence during a scenario run.
type TraceEvent struct {
	Type             string `json:"type"`
	Source           string `json:"source,omitempty"`
	Payload          string `json:"payload,omitempty"`
	URL              string `json:"url,omitempty"`
	DuringInit       bool   `json:"during_init,omitempty"`
	FromNotification bool   `json:"from_notification,omitempty"`
	Gate             string `json:"gate,omitempty"`
}

// Trace event types.
const (
	TraceClassified = "classified" // observer saw a classified event
	TracePush       = "push"       // notification stream emission
	TracePushLink   = "push_link"  // deep link stream emission
	TracePull       = "pull"       // notification-state pull result
	TracePullLink   = "pull_link"  // initial-link pull result
	TraceGate       = "gate"       // gate transition
)

// Result holds the trace of one scenario execution.
type Result struct {
	Scenario string       `json:"scenario"`
	Trace    []TraceEvent `json:"trace"`
}

// recorder captures classified events as a tapwake.LaunchObserver.
type recorder struct {
	trace *[]TraceEvent
}

func (r recorder) OnLaunchEvent(ev tapwake.LaunchEvent) {
	*r.trace = append(*r.trace, TraceEvent{
		Type:       TraceClassified,
		Source:     ev.Source,
		Payload:    ev.Payload,
		URL:        ev.RawURL,
		DuringInit: ev.DuringInit,
	})
}

// Exec runs a scenario against a fresh Context backed by a store at
// storePath and returns its trace.
func Exec(sc Scenario, storePath string) (*Result, error) {
	res := &Result{Scenario: sc.Name, Trace: []TraceEvent{}}

	c, err := tapwake.New(
		tapwake.Config{StorePath: storePath},
		tapwake.WithManualGate(),
		tapwake.WithObserver(recorder{trace: &res.Trace}),
	)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: new context: %w", sc.Name, err)
	}
	defer c.Close()

	ctx := context.Background()
	var states <-chan tapwake.LaunchState
	var links <-chan string

	for _, step := range sc.Steps {
		if step.StorePending != "" {
			c.StorePendingPayload(ctx, step.StorePending)
		}
		if step.TripGate {
			c.TripGate()
			res.Trace = append(res.Trace, TraceEvent{Type: TraceGate, Gate: "ready"})
		}
		if step.Subscribe {
			states = c.NotificationEvents()
			links = c.DeepLinkEvents()
		}
		if step.Signal != nil {
			c.HandleResume(ctx, tapwake.Signal{
				URL:           step.Signal.URL,
				Action:        step.Signal.Action,
				Extras:        step.Signal.Extras,
				RemotePayload: step.Signal.RemotePayload,
			})
			drainStreams(res, states, links)
		}
		if step.Consume {
			state := c.ConsumeLaunchState(ctx)
			res.Trace = append(res.Trace, TraceEvent{
				Type:             TracePull,
				Payload:          state.Payload,
				FromNotification: state.IsFromNotification,
			})
		}
		if step.ConsumeLink {
			res.Trace = append(res.Trace, TraceEvent{
				Type: TracePullLink,
				URL:  c.GetInitialLink(ctx),
			})
		}
	}

	return res, nil
}

// drainStreams records buffered stream emissions. Emission is
// synchronous with signal handling, so a non-blocking drain right
// after HandleResume sees everything the signal produced.
func drainStreams(res *Result, states <-chan tapwake.LaunchState, links <-chan string) {
	for {
		select {
		case ev := <-states:
			res.Trace = append(res.Trace, TraceEvent{
				Type:             TracePush,
				Payload:          ev.Payload,
				FromNotification: ev.IsFromNotification,
			})
		case url := <-links:
			res.Trace = append(res.Trace, TraceEvent{Type: TracePushLink, URL: url})
		default:
			return
		}
	}
}
