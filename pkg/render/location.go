package render

import (
	"context"
	"net/url"
)

// Location is the routing context of a render: the URL the tree renders
// for, fixed for the whole render.
type Location struct {
	// Path is the URL path, always starting with "/".
	Path string

	// Query holds the parsed query parameters.
	Query url.Values

	// URL is the request URI as received (path plus raw query).
	URL string
}

// ParseLocation builds a Location from a request URI such as
// "/film/550?forceSSR=true". Unparseable input yields the root path.
func ParseLocation(requestURI string) Location {
	loc := Location{Path: "/", Query: url.Values{}, URL: requestURI}

	u, err := url.ParseRequestURI(requestURI)
	if err != nil {
		return loc
	}
	if u.Path != "" {
		loc.Path = u.Path
	}
	loc.Query = u.Query()
	return loc
}

type locationKey struct{}

// WithLocation returns a context carrying loc.
func WithLocation(ctx context.Context, loc Location) context.Context {
	return context.WithValue(ctx, locationKey{}, loc)
}

// LocationFromContext returns the Location of the current render.
func LocationFromContext(ctx context.Context) (Location, bool) {
	loc, ok := ctx.Value(locationKey{}).(Location)
	return loc, ok
}
