// Package classify turns raw OS launch signals into launch events.
//
// The inputs are heterogeneous by nature: one platform hands over an
// options dictionary with an optional remote-notification payload,
// another an intent with an action string and extras, and either may
// carry an opened URL. Signal flattens all of them into one shape the
// classifier can rank.
package classify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tapwake/tapwake/internal/jsonval"
	"github.com/tapwake/tapwake/internal/launch"
)

// Signal is a raw OS-delivered launch/resume signal.
type Signal struct {
	// URL is an opened deep link, empty when none.
	URL string

	// Action is the intent action string, empty when none.
	Action string

	// Extras are intent extras / launch-option entries as strings.
	Extras map[string]string

	// RemotePayload is the remote-notification payload from a launch
	// options dictionary, raw JSON or empty.
	RemotePayload string
}

// Notification markers. A signal carrying any of these is a tapped
// notification unless a deep link URL takes precedence.
const (
	// ActionNotificationTapped is the action set by the notification glue.
	ActionNotificationTapped = "NOTIFICATION_TAPPED"
	// ActionSelectNotification is the action used by common notification plugins.
	ActionSelectNotification = "SELECT_NOTIFICATION"
	// ExtraLaunchedFromNotification is the boolean-ish extra some launchers set.
	ExtraLaunchedFromNotification = "launchedFromNotification"
	// ExtraPayload carries the notification payload through intent extras.
	ExtraPayload = "payload"
)

// PendingSource supplies the payload pre-registered before the
// notification fired. Implemented by the store.
type PendingSource interface {
	TakePending(ctx context.Context) (string, bool, error)
}

// Classifier produces launch events from signals.
type Classifier struct {
	pending PendingSource
	log     *slog.Logger
}

// New creates a classifier reading pre-registered payloads from pending.
func New(pending PendingSource, log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{pending: pending, log: log}
}

// Classify inspects a signal and produces at most one event.
//
// Priority: a deep link URL wins outright and suppresses all
// notification checks for the signal; otherwise any notification marker
// makes it a notification; otherwise there is no event.
func (c *Classifier) Classify(ctx context.Context, sig Signal, duringInit bool) (launch.Event, bool) {
	if sig.URL != "" {
		return launch.Event{
			ID:         uuid.NewString(),
			Source:     launch.SourceDeepLink,
			Payload:    "{}",
			RawURL:     sig.URL,
			DuringInit: duringInit,
		}, true
	}

	if !c.isNotification(sig) {
		return launch.Event{}, false
	}

	payload := c.assemblePayload(ctx, sig)
	serialized, err := jsonval.EncodeString(payload)
	if err != nil {
		// Cannot happen for objects built here; fall back to empty.
		c.log.Warn("encode notification payload", "error", err)
		serialized = "{}"
	}

	return launch.Event{
		ID:         uuid.NewString(),
		Source:     launch.SourceNotification,
		Payload:    serialized,
		DuringInit: duringInit,
	}, true
}

// isNotification reports whether the signal carries a notification marker.
func (c *Classifier) isNotification(sig Signal) bool {
	switch sig.Action {
	case ActionNotificationTapped, ActionSelectNotification:
		return true
	}
	if sig.Extras[ExtraLaunchedFromNotification] == "true" {
		return true
	}
	if _, ok := sig.Extras[ExtraPayload]; ok {
		return true
	}
	return sig.RemotePayload != ""
}

// assemblePayload builds the event payload object.
//
// Precedence, highest first:
//  1. the freshly delivered payload (remote payload or payload extra)
//  2. the pre-registered pending payload
//  3. remaining signal-level extras
//
// Later layers only fill keys the earlier layers left absent.
func (c *Classifier) assemblePayload(ctx context.Context, sig Signal) jsonval.Object {
	raw := sig.RemotePayload
	if raw == "" {
		raw = sig.Extras[ExtraPayload]
	}

	payload := parseOrWrap(raw)

	if pending, ok := c.takePending(ctx); ok {
		payload.Merge(parseOrWrap(pending))
	}

	for k, v := range sig.Extras {
		if k == ExtraPayload || k == ExtraLaunchedFromNotification {
			continue
		}
		if _, exists := payload[k]; !exists {
			payload[k] = jsonval.String(v)
		}
	}

	return payload
}

// takePending fetches and deletes the pre-registered payload.
// A broken store degrades to "nothing pending".
func (c *Classifier) takePending(ctx context.Context) (string, bool) {
	if c.pending == nil {
		return "", false
	}
	pending, ok, err := c.pending.TakePending(ctx)
	if err != nil {
		c.log.Warn("take pending payload", "error", err)
		return "", false
	}
	return pending, ok
}

// parseOrWrap parses raw as a JSON object, wrapping anything else
// (including malformed JSON) under the payload key. Parse failures on
// delivered data are recovered locally, never surfaced.
func parseOrWrap(raw string) jsonval.Object {
	if raw == "" {
		return jsonval.Object{}
	}
	obj, err := jsonval.DecodeObject([]byte(raw))
	if err != nil {
		return jsonval.Object{ExtraPayload: jsonval.String(raw)}
	}
	return obj
}
