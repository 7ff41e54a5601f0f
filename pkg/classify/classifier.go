// Package classify decides, per request, whether the server renders the page
// or hands the client the unmodified shell.
//
// Classification is pure: the same request always yields the same decision,
// and malformed input degrades to a defined decision rather than an error.
//
//	c := classify.New(classify.DefaultConfig())
//	res := c.Classify(classify.RequestFromHTTP(r))
//	if res.Decision == classify.ClientOnly {
//	    // serve the shell as is
//	}
package classify

import (
	"net/http"
	"net/url"
	"regexp"
)

// Decision is the rendering decision for a request.
type Decision int

const (
	// ClientOnly serves the unmodified shell; the browser renders the page.
	ClientOnly Decision = iota

	// ForceServerRender renders on the server regardless of the client.
	ForceServerRender

	// ServerRenderIfImportantOrCrawler renders on the server because the
	// route is important, the client is automated, or SSR was requested.
	ServerRenderIfImportantOrCrawler
)

// String returns the label used in logs and metrics.
func (d Decision) String() string {
	switch d {
	case ClientOnly:
		return "client_only"
	case ForceServerRender:
		return "force_server_render"
	case ServerRenderIfImportantOrCrawler:
		return "server_render"
	default:
		return "unknown"
	}
}

// ServerRender reports whether the decision requires a server render.
func (d Decision) ServerRender() bool {
	return d == ForceServerRender || d == ServerRenderIfImportantOrCrawler
}

// Request is the part of an HTTP request the classifier looks at.
type Request struct {
	Path      string
	Query     url.Values
	UserAgent string
}

// RequestFromHTTP extracts the classification input from r.
func RequestFromHTTP(r *http.Request) Request {
	return Request{
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		UserAgent: r.UserAgent(),
	}
}

// Result is a decision together with the signals that produced it.
type Result struct {
	Decision        Decision
	AutomatedClient bool
	ImportantRoute  bool
	Forced          bool
}

// Config holds the route lists the classifier consults.
type Config struct {
	// ForcedPaths are always server-rendered.
	ForcedPaths []string

	// LandingRoutes are important routes matched exactly.
	LandingRoutes []string
}

// DefaultConfig returns the production route lists.
func DefaultConfig() Config {
	return Config{
		ForcedPaths: []string{"/neue-trailer", "/kostenlose-filme"},
		LandingRoutes: []string{
			"/",
			"/neue-trailer",
			"/kostenlose-filme",
			"/entdecken",
			"/filmlisten",
		},
	}
}

var importantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^/film/[^/]+(/[^/]*)?/?$`),
	regexp.MustCompile(`^/serie/[^/]+(/[^/]*)?/?$`),
	regexp.MustCompile(`^/liste/.+$`),
}

// Classifier classifies requests. It is immutable after New and safe for
// concurrent use.
type Classifier struct {
	forced   map[string]struct{}
	landing  map[string]struct{}
	detector Detector
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithDetector replaces the automated-client heuristic.
func WithDetector(d Detector) Option {
	return func(c *Classifier) {
		if d != nil {
			c.detector = d
		}
	}
}

// New creates a Classifier from cfg.
func New(cfg Config, opts ...Option) *Classifier {
	c := &Classifier{
		forced:   toSet(cfg.ForcedPaths),
		landing:  toSet(cfg.LandingRoutes),
		detector: IsAutomatedClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsImportantRoute reports whether path is a content page or a landing route.
func (c *Classifier) IsImportantRoute(path string) bool {
	if _, ok := c.landing[path]; ok {
		return true
	}
	for _, re := range importantPatterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Classify decides how req is rendered. The first matching rule wins:
//  1. a forced path or forceUpdate=true renders on the server;
//  2. a human client on an unimportant route without forceSSR=true gets the
//     shell only;
//  3. everything else renders on the server.
func (c *Classifier) Classify(req Request) Result {
	res := Result{
		AutomatedClient: c.detector(req.UserAgent, req.Query),
		ImportantRoute:  c.IsImportantRoute(req.Path),
	}

	_, forcedPath := c.forced[req.Path]
	res.Forced = forcedPath || flag(req.Query, "forceUpdate")

	switch {
	case res.Forced:
		res.Decision = ForceServerRender
	case !res.AutomatedClient && !res.ImportantRoute && !flag(req.Query, "forceSSR"):
		res.Decision = ClientOnly
	default:
		res.Decision = ServerRenderIfImportantOrCrawler
	}
	return res
}

// flag reports whether the query parameter key is exactly "true".
func flag(q url.Values, key string) bool {
	return q.Get(key) == "true"
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
