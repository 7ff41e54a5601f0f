package head

import (
	"regexp"
	"strings"
)

// escapeText escapes text for inclusion in element content such as <title>.
func escapeText(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for inclusion in a double-quoted attribute value.
// Whitespace control characters are encoded so crawlers that re-serialize
// attributes keep them intact.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

var (
	scriptClose = regexp.MustCompile(`(?i)</(script)`)
	commentOpen = strings.NewReplacer("<!--", `\u003C!--`)
)

// escapeScript keeps inline script bodies from closing their element early.
// End tags match in any letter case. Comment openers are escaped too since
// they switch the tokenizer into the double-escaped script state.
func escapeScript(s string) string {
	return commentOpen.Replace(scriptClose.ReplaceAllString(s, `<\/$1`))
}
