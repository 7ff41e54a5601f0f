package classify

import (
	"net/url"
	"strings"
)

// Detector reports whether a request comes from an automated client such as
// a search engine crawler or a link preview bot.
type Detector func(userAgent string, query url.Values) bool

// IsAutomatedClient is the default Detector. A client is automated when its
// User-Agent contains "bot" or "crawler" in any letter case, or when the
// request carries forceSSR=true.
func IsAutomatedClient(userAgent string, query url.Values) bool {
	if flag(query, "forceSSR") {
		return true
	}
	ua := strings.ToLower(userAgent)
	return strings.Contains(ua, "bot") || strings.Contains(ua, "crawler")
}
