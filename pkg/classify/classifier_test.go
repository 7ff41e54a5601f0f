package classify

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsImportantRoute(t *testing.T) {
	c := New(DefaultConfig())

	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/entdecken", true},
		{"/filmlisten", true},
		{"/neue-trailer", true},
		{"/kostenlose-filme", true},
		{"/film/550", true},
		{"/film/550/", true},
		{"/film/550/fight-club", true},
		{"/film/550/fight-club/", true},
		{"/film/550/fight-club/cast", false},
		{"/film/", false},
		{"/film", false},
		{"/serie/1399", true},
		{"/serie/1399/game-of-thrones", true},
		{"/serie/", false},
		{"/liste/beste-thriller", true},
		{"/liste/a/b/c", true},
		{"/liste/", false},
		{"/profil", false},
		{"/entdecken/mehr", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsImportantRoute(tt.path))
		})
	}
}

func TestClassify(t *testing.T) {
	c := New(DefaultConfig())
	const browser = "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0"

	tests := []struct {
		name string
		req  Request
		want Decision
	}{
		{
			name: "forced path for a browser",
			req:  Request{Path: "/neue-trailer", UserAgent: browser},
			want: ForceServerRender,
		},
		{
			name: "forced path for a crawler",
			req:  Request{Path: "/kostenlose-filme", UserAgent: "Googlebot/2.1"},
			want: ForceServerRender,
		},
		{
			name: "forceUpdate on any path",
			req:  Request{Path: "/profil", Query: url.Values{"forceUpdate": {"true"}}, UserAgent: browser},
			want: ForceServerRender,
		},
		{
			name: "forceUpdate beats forceSSR",
			req: Request{Path: "/profil", Query: url.Values{
				"forceUpdate": {"true"},
				"forceSSR":    {"true"},
			}},
			want: ForceServerRender,
		},
		{
			name: "browser on unimportant route",
			req:  Request{Path: "/profil", UserAgent: browser},
			want: ClientOnly,
		},
		{
			name: "browser on film page",
			req:  Request{Path: "/film/550/fight-club", UserAgent: browser},
			want: ServerRenderIfImportantOrCrawler,
		},
		{
			name: "crawler on unimportant route",
			req:  Request{Path: "/profil", UserAgent: "Mozilla/5.0 (compatible; bingbot/2.0)"},
			want: ServerRenderIfImportantOrCrawler,
		},
		{
			name: "forceSSR for a browser",
			req:  Request{Path: "/profil", Query: url.Values{"forceSSR": {"true"}}, UserAgent: browser},
			want: ServerRenderIfImportantOrCrawler,
		},
		{
			name: "forceSSR must be exactly true",
			req:  Request{Path: "/profil", Query: url.Values{"forceSSR": {"1"}}, UserAgent: browser},
			want: ClientOnly,
		},
		{
			name: "forceUpdate must be exactly true",
			req:  Request{Path: "/profil", Query: url.Values{"forceUpdate": {"yes"}}, UserAgent: browser},
			want: ClientOnly,
		},
		{
			name: "empty request",
			req:  Request{},
			want: ClientOnly,
		},
		{
			name: "empty user agent on root",
			req:  Request{Path: "/"},
			want: ServerRenderIfImportantOrCrawler,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.req).Decision)
		})
	}
}

func TestClassifyReportsSignals(t *testing.T) {
	c := New(DefaultConfig())

	res := c.Classify(Request{Path: "/neue-trailer", UserAgent: "SomeCrawler/1.0"})
	assert.Equal(t, Result{
		Decision:        ForceServerRender,
		AutomatedClient: true,
		ImportantRoute:  true,
		Forced:          true,
	}, res)
}

func TestUserAgentCaseInsensitive(t *testing.T) {
	c := New(DefaultConfig())

	for _, ua := range []string{"googlebot", "GOOGLEBOT", "GoogleBot", "Some-CRAWLER", "crawler", "xBoTx"} {
		t.Run(ua, func(t *testing.T) {
			res := c.Classify(Request{Path: "/profil", UserAgent: ua})
			assert.True(t, res.AutomatedClient)
			assert.Equal(t, ServerRenderIfImportantOrCrawler, res.Decision)
		})
	}
}

func TestWithDetector(t *testing.T) {
	never := func(string, url.Values) bool { return false }
	c := New(DefaultConfig(), WithDetector(never))

	res := c.Classify(Request{Path: "/profil", UserAgent: "Googlebot"})
	assert.Equal(t, ClientOnly, res.Decision)

	// A nil detector keeps the default.
	c = New(DefaultConfig(), WithDetector(nil))
	assert.True(t, c.Classify(Request{UserAgent: "bot"}).AutomatedClient)
}

func TestCustomForcedPaths(t *testing.T) {
	c := New(Config{ForcedPaths: []string{"/kinoprogramm"}})

	assert.Equal(t, ForceServerRender, c.Classify(Request{Path: "/kinoprogramm"}).Decision)
	assert.Equal(t, ClientOnly, c.Classify(Request{Path: "/neue-trailer"}).Decision)
}

func TestRequestFromHTTP(t *testing.T) {
	r := httptest.NewRequest("GET", "/film/550?forceSSR=true", nil)
	r.Header.Set("User-Agent", "Twitterbot/1.0")

	req := RequestFromHTTP(r)
	assert.Equal(t, "/film/550", req.Path)
	assert.Equal(t, "true", req.Query.Get("forceSSR"))
	assert.Equal(t, "Twitterbot/1.0", req.UserAgent)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "client_only", ClientOnly.String())
	assert.Equal(t, "force_server_render", ForceServerRender.String())
	assert.Equal(t, "server_render", ServerRenderIfImportantOrCrawler.String())
	assert.Equal(t, "unknown", Decision(42).String())

	assert.False(t, ClientOnly.ServerRender())
	assert.True(t, ForceServerRender.ServerRender())
	assert.True(t, ServerRenderIfImportantOrCrawler.ServerRender())
}
