package head

import (
	"fmt"
	"strings"
)

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name      string // name attribute
	Content   string // content attribute
	Property  string // property attribute (for OpenGraph)
	HTTPEquiv string // http-equiv attribute
	Charset   string // charset attribute
}

// LinkTag represents a link element in the document head.
type LinkTag struct {
	Rel         string // rel attribute
	Href        string // href attribute
	Type        string // type attribute
	Sizes       string // sizes attribute
	CrossOrigin string // crossorigin attribute
	Media       string // media attribute
	HrefLang    string // hreflang attribute
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string // src attribute
	Type   string // type attribute
	Defer  bool   // defer attribute
	Async  bool   // async attribute
	Module bool   // type="module"
	Inline string // inline script content
}

// String renders the meta element.
func (m MetaTag) String() string {
	var b strings.Builder
	b.WriteString("<meta")
	writeAttr(&b, "charset", m.Charset)
	writeAttr(&b, "name", m.Name)
	writeAttr(&b, "property", m.Property)
	writeAttr(&b, "http-equiv", m.HTTPEquiv)
	writeAttr(&b, "content", m.Content)
	b.WriteString(">")
	return b.String()
}

// String renders the link element.
func (l LinkTag) String() string {
	var b strings.Builder
	b.WriteString("<link")
	writeAttr(&b, "rel", l.Rel)
	writeAttr(&b, "href", l.Href)
	writeAttr(&b, "hreflang", l.HrefLang)
	writeAttr(&b, "type", l.Type)
	writeAttr(&b, "sizes", l.Sizes)
	writeAttr(&b, "crossorigin", l.CrossOrigin)
	writeAttr(&b, "media", l.Media)
	b.WriteString(">")
	return b.String()
}

// String renders the script element.
func (s ScriptTag) String() string {
	var b strings.Builder
	b.WriteString("<script")
	writeAttr(&b, "src", s.Src)
	if s.Module {
		b.WriteString(` type="module"`)
	} else {
		writeAttr(&b, "type", s.Type)
	}
	if s.Defer {
		b.WriteString(" defer")
	}
	if s.Async {
		b.WriteString(" async")
	}
	b.WriteString(">")
	b.WriteString(escapeScript(s.Inline))
	b.WriteString("</script>")
	return b.String()
}

// titleElement renders a title element.
func titleElement(text string) string {
	return fmt.Sprintf("<title>%s</title>", escapeText(text))
}

func writeAttr(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, ` %s="%s"`, name, escapeAttr(value))
}
