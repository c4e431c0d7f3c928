// Package routing decides where the application should navigate given
// the classified launch state: deep links first, notifications second,
// the configured default route last.
package routing

import (
	"log/slog"
	"strings"

	"github.com/tapwake/tapwake/internal/deeplink"
	"github.com/tapwake/tapwake/internal/jsonval"
)

// Decision is a resolved navigation target.
type Decision struct {
	Path   string
	Params map[string]string
}

// DeepLinkPolicy lets the host application override deep link routing.
// A nil return means "use the application's default route".
type DeepLinkPolicy interface {
	OnDeepLink(url string, route deeplink.Route) *Decision
}

// NotificationPolicy lets the host application override notification
// launch routing. A nil return means "use the application's default route".
type NotificationPolicy interface {
	OnNotificationLaunch(fromNotification bool, payload jsonval.Object) *Decision
}

// NotificationFallbackRoute is tried when a notification launch has no
// policy attached, before giving up and using the default route.
const NotificationFallbackRoute = "/notification"

// Input carries everything the resolver needs for one decision.
type Input struct {
	// InitialDeepLink is the raw URL that caused the launch, if any.
	InitialDeepLink string

	// IsFromNotification reports a notification-caused launch.
	IsFromNotification bool

	// Payload is the notification payload as a JSON string.
	Payload string
}

// Resolver applies the priority and fallback rules.
type Resolver struct {
	// Routes is the set of registered route paths.
	Routes map[string]bool

	// DefaultRoute is the route used when nothing else applies.
	DefaultRoute string

	// DeepLink and Notification are optional host policies.
	DeepLink     DeepLinkPolicy
	Notification NotificationPolicy

	// Fallback overrides NotificationFallbackRoute when non-empty.
	Fallback string

	// Log receives policy failures. Nil means slog.Default.
	Log *slog.Logger
}

// Resolve produces a navigation decision.
//
// Deep links always take priority over notifications. The returned path
// never contains a URI scheme separator; any candidate that would is
// replaced by the default route.
func (r *Resolver) Resolve(in Input) Decision {
	switch {
	case in.InitialDeepLink != "":
		return r.guard(r.resolveDeepLink(in.InitialDeepLink))
	case in.IsFromNotification:
		return r.guard(r.resolveNotification(in.Payload))
	default:
		return r.guard(r.defaultDecision())
	}
}

// resolveDeepLink handles step one: parse, consult the policy, verify
// registration, retry the policy once with the parsed route, then fall
// back to the default.
func (r *Resolver) resolveDeepLink(url string) Decision {
	route := deeplink.Parse(url)

	if r.DeepLink == nil {
		if r.registered(route.Path) {
			return Decision{Path: route.Path, Params: route.QueryParams}
		}
		return r.defaultDecision()
	}

	d := r.callDeepLink(url, route)
	if d == nil {
		return r.defaultDecision()
	}
	if r.registered(d.Path) {
		return *d
	}

	// One retry, feeding the policy the parsed route instead of the raw URL.
	d = r.callDeepLink(route.Path, route)
	if d != nil && r.registered(d.Path) {
		return *d
	}
	return r.defaultDecision()
}

// resolveNotification handles step two: policy first, then the
// conventional fallback route, then the default.
func (r *Resolver) resolveNotification(payload string) Decision {
	if r.Notification == nil {
		fallback := r.Fallback
		if fallback == "" {
			fallback = NotificationFallbackRoute
		}
		if r.registered(fallback) {
			return Decision{Path: deeplink.NormalizeRoute(fallback)}
		}
		return r.defaultDecision()
	}

	obj, err := jsonval.DecodeObject([]byte(payload))
	if err != nil {
		// Malformed payloads are recovered, not surfaced.
		obj = jsonval.Object{"payload": jsonval.String(payload)}
	}

	d := r.callNotification(true, obj)
	if d == nil {
		return r.defaultDecision()
	}
	return *d
}

// callDeepLink invokes the policy, converting a panic into "returned nil".
func (r *Resolver) callDeepLink(url string, route deeplink.Route) (d *Decision) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger().Warn("deep link policy panicked", "error", rec)
			d = nil
		}
	}()
	return r.DeepLink.OnDeepLink(url, route)
}

// callNotification invokes the policy, converting a panic into "returned nil".
func (r *Resolver) callNotification(from bool, payload jsonval.Object) (d *Decision) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger().Warn("notification policy panicked", "error", rec)
			d = nil
		}
	}()
	return r.Notification.OnNotificationLaunch(from, payload)
}

func (r *Resolver) registered(path string) bool {
	return r.Routes[deeplink.NormalizeRoute(path)]
}

func (r *Resolver) defaultDecision() Decision {
	return Decision{Path: r.DefaultRoute}
}

// guard enforces the hard invariant: no decision may carry a path that
// is indistinguishable from a URL. Violations collapse to the default
// route, and a violating default collapses to root.
func (r *Resolver) guard(d Decision) Decision {
	if !strings.Contains(d.Path, "://") {
		d.Path = deeplink.NormalizeRoute(d.Path)
		return d
	}
	if strings.Contains(r.DefaultRoute, "://") {
		return Decision{Path: "/"}
	}
	return Decision{Path: deeplink.NormalizeRoute(r.DefaultRoute)}
}

func (r *Resolver) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}
