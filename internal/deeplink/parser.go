package deeplink

import (
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Route is the canonical in-application navigation target.
// Path always begins with "/" and never contains a URI scheme separator.
type Route struct {
	Path        string
	QueryParams map[string]string
}

// schemeSeparator is the one byte sequence a Route.Path may never contain.
// A path that looks like a URL is indistinguishable from one, so consumers
// must never see it.
const schemeSeparator = "://"

// Parse maps a raw URL string to a canonical Route.
//
// Custom-scheme URIs put what is really the first path segment where a
// hostname belongs ("myapp://product/123" means the route "/product/123"),
// so for non-http(s) schemes the host is folded into the path. http(s)
// URLs keep only their path. Strings that do not parse structurally are
// treated as opaque paths.
func Parse(raw string) Route {
	if raw == "" {
		return Route{Path: "/", QueryParams: map[string]string{}}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Route{Path: opaquePath(raw), QueryParams: map[string]string{}}
	}

	var path string
	switch {
	case u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" && u.Host != "":
		// Host is the first path segment; collapse a bare trailing "/".
		path = "/" + u.Host + strings.TrimSuffix(u.Path, "/")
	default:
		path = u.Path
		if path == "" {
			path = "/"
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
	}

	if strings.Contains(path, schemeSeparator) {
		return Route{Path: opaquePath(raw), QueryParams: map[string]string{}}
	}

	params := map[string]string{}
	for key, vals := range u.Query() {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}

	return Route{Path: NormalizeRoute(path), QueryParams: params}
}

// opaquePath turns an unparsable or URL-shaped string into a safe path.
// The scheme separator is the invariant, so it is stripped outright before
// the leading slash is enforced.
func opaquePath(raw string) string {
	safe := strings.ReplaceAll(raw, schemeSeparator, "/")
	return NormalizeRoute(safe)
}

// NormalizeRoute ensures exactly one leading "/" and NFC unicode form.
// Idempotent: NormalizeRoute(NormalizeRoute(s)) == NormalizeRoute(s).
func NormalizeRoute(route string) string {
	route = norm.NFC.String(route)
	route = strings.TrimLeft(route, "/")
	return "/" + route
}
