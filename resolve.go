package tapwake

import (
	"context"

	"github.com/tapwake/tapwake/internal/deeplink"
	"github.com/tapwake/tapwake/internal/jsonval"
	"github.com/tapwake/tapwake/internal/routing"
)

// ResolveInput carries everything a routing decision needs.
type ResolveInput struct {
	// InitialDeepLink is the raw URL that caused the launch, if any.
	InitialDeepLink string

	// IsFromNotification reports a notification-caused launch.
	IsFromNotification bool

	// Payload is the notification payload as a JSON string.
	Payload string
}

// ResolveRoute produces the navigation target for the given launch
// state. Deep links take priority over notifications; the returned path
// never contains a URI scheme separator.
func (c *Context) ResolveRoute(in ResolveInput) RoutingDecision {
	d := c.resolver.Resolve(routing.Input{
		InitialDeepLink:    in.InitialDeepLink,
		IsFromNotification: in.IsFromNotification,
		Payload:            in.Payload,
	})
	return RoutingDecision{Path: d.Path, Params: d.Params}
}

// ResolveLaunch performs the full startup sequence: pull the initial
// link and the notification state (both read-and-clear) and resolve a
// route from them. Intended to be called exactly once, before the UI
// is built.
func (c *Context) ResolveLaunch(ctx context.Context) RoutingDecision {
	link := c.GetInitialLink(ctx)
	state := c.ConsumeLaunchState(ctx)
	return c.ResolveRoute(ResolveInput{
		InitialDeepLink:    link,
		IsFromNotification: state.IsFromNotification,
		Payload:            state.Payload,
	})
}

// ParseDeepLink maps a raw URL onto a canonical route.
func ParseDeepLink(raw string) Route {
	r := deeplink.Parse(raw)
	return Route{Path: r.Path, Params: r.QueryParams}
}

// NormalizeRoute ensures exactly one leading "/". Idempotent.
func NormalizeRoute(route string) string {
	return deeplink.NormalizeRoute(route)
}

// adaptDeepLinkPolicy bridges the public policy onto the resolver.
func adaptDeepLinkPolicy(p DeepLinkPolicy) routing.DeepLinkPolicy {
	if p == nil {
		return nil
	}
	return routing.PolicyFuncs{
		DeepLinkFunc: func(url string, route deeplink.Route) *routing.Decision {
			d := p.OnDeepLink(url, Route{Path: route.Path, Params: route.QueryParams})
			if d == nil {
				return nil
			}
			return &routing.Decision{Path: d.Path, Params: d.Params}
		},
	}
}

// adaptNotificationPolicy bridges the public policy onto the resolver.
func adaptNotificationPolicy(p NotificationPolicy) routing.NotificationPolicy {
	if p == nil {
		return nil
	}
	return routing.PolicyFuncs{
		NotificationFunc: func(from bool, payload jsonval.Object) *routing.Decision {
			raw, _ := jsonval.ToAny(payload).(map[string]any)
			d := p.OnNotificationLaunch(from, raw)
			if d == nil {
				return nil
			}
			return &routing.Decision{Path: d.Path, Params: d.Params}
		},
	}
}

// PolicyFuncs adapts plain closures to the public policy interfaces.
// A nil func behaves as a policy that always returns nil.
type PolicyFuncs struct {
	DeepLinkFunc     func(url string, route Route) *RoutingDecision
	NotificationFunc func(fromNotification bool, payload map[string]any) *RoutingDecision
}

// OnDeepLink implements DeepLinkPolicy.
func (p PolicyFuncs) OnDeepLink(url string, route Route) *RoutingDecision {
	if p.DeepLinkFunc == nil {
		return nil
	}
	return p.DeepLinkFunc(url, route)
}

// OnNotificationLaunch implements NotificationPolicy.
func (p PolicyFuncs) OnNotificationLaunch(fromNotification bool, payload map[string]any) *RoutingDecision {
	if p.NotificationFunc == nil {
		return nil
	}
	return p.NotificationFunc(fromNotification, payload)
}
