package routing

import (
	"github.com/tapwake/tapwake/internal/deeplink"
	"github.com/tapwake/tapwake/internal/jsonval"
)

// PolicyFuncs adapts plain closures to the policy interfaces.
// A nil func behaves as a policy that always returns nil.
type PolicyFuncs struct {
	DeepLinkFunc     func(url string, route deeplink.Route) *Decision
	NotificationFunc func(fromNotification bool, payload jsonval.Object) *Decision
}

// OnDeepLink implements DeepLinkPolicy.
func (p PolicyFuncs) OnDeepLink(url string, route deeplink.Route) *Decision {
	if p.DeepLinkFunc == nil {
		return nil
	}
	return p.DeepLinkFunc(url, route)
}

// OnNotificationLaunch implements NotificationPolicy.
func (p PolicyFuncs) OnNotificationLaunch(fromNotification bool, payload jsonval.Object) *Decision {
	if p.NotificationFunc == nil {
		return nil
	}
	return p.NotificationFunc(fromNotification, payload)
}
