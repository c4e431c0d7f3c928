// Package tapwake answers one question for an application: was the
// current foreground state caused by an external trigger - a tapped
// notification or an opened deep link - and if so, what was its payload.
//
// The host constructs one Context at process start and passes it to
// whatever needs it; there is no package-level state. The thin per-OS
// glue forwards raw launch signals into HandleLaunch/HandleResume, and
// the application reads results through two channels:
//
//   - a one-shot pull (ConsumeLaunchState, GetInitialLink) with
//     read-and-clear semantics, usable before any UI exists
//   - live push streams (NotificationEvents, DeepLinkEvents) for
//     triggers that arrive while the app is already running
//
// An event is delivered exactly once: triggers inside the startup
// window go to the durable pull slot, triggers after it go to the push
// streams, never both.
package tapwake

import (
	"time"
)

// Signal is a raw OS launch/resume signal, flattened across platforms.
// The per-OS glue fills whichever fields its platform provides.
type Signal struct {
	// URL is an opened deep link, empty when none.
	URL string

	// Action is the intent action string, empty when none.
	Action string

	// Extras are intent extras / launch-option entries as strings.
	Extras map[string]string

	// RemotePayload is the remote-notification payload from the launch
	// options dictionary, raw JSON or empty.
	RemotePayload string
}

// LaunchState is the answer to the pull query and the unit of the
// notification push stream. Payload is always a JSON string, "{}" when
// there is nothing to report.
type LaunchState struct {
	IsFromNotification bool   `json:"isFromNotification"`
	Payload            string `json:"payload"`
}

// LaunchEvent is the classified form of a signal, as seen by observers.
type LaunchEvent struct {
	ID         string
	Source     string // "notification" or "deep_link"
	Payload    string // JSON object
	RawURL     string // deep links only
	DuringInit bool
}

// LaunchObserver is the explicit lifecycle hook: the host registers
// observers at construction time and sees every classified event.
// Observer panics are logged and swallowed; an observer cannot break
// delivery.
type LaunchObserver interface {
	OnLaunchEvent(ev LaunchEvent)
}

// Route is a canonical navigation target: a "/"-prefixed path that
// never contains a URI scheme separator, plus its query parameters.
type Route struct {
	Path   string
	Params map[string]string
}

// RoutingDecision is a resolved navigation target. A nil
// *RoutingDecision from a policy means "use the default route".
type RoutingDecision struct {
	Path   string
	Params map[string]string
}

// DeepLinkPolicy lets the host override deep link routing.
type DeepLinkPolicy interface {
	OnDeepLink(url string, route Route) *RoutingDecision
}

// NotificationPolicy lets the host override notification launch routing.
// The payload is the decoded JSON payload object.
type NotificationPolicy interface {
	OnNotificationLaunch(fromNotification bool, payload map[string]any) *RoutingDecision
}

// RoutingRule is a configured expression routing rule: when the
// expression evaluates to true, navigate to the target path.
type RoutingRule struct {
	When string `json:"when" yaml:"when"`
	Goto string `json:"goto" yaml:"goto"`
}

// Config holds the construction parameters for a Context.
type Config struct {
	// DefaultRoute is used when no trigger applies or a fallback fires.
	// Empty means "/".
	DefaultRoute string

	// Routes is the registered route set. The default route and the
	// notification fallback are always treated as registered.
	Routes []string

	// NotificationFallback overrides the conventional "/notification"
	// route tried for notification launches with no policy attached.
	NotificationFallback string

	// GateWindow is the startup window duration. Zero means 500ms.
	GateWindow time.Duration

	// StorePath is the SQLite file backing the durable slot.
	// Empty means "tapwake.db" in the working directory.
	StorePath string

	// Rules are optional expression routing rules, evaluated in order.
	Rules []RoutingRule
}
