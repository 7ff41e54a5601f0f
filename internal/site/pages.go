package site

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/a-h/templ"
)

const siteName = "MovieFlair"

type page struct {
	title       string
	description string
	ogType      string
	noIndex     bool
	body        templ.Component
}

var (
	filmRoute  = regexp.MustCompile(`^/film/([^/]+)(?:/([^/]*))?/?$`)
	serieRoute = regexp.MustCompile(`^/serie/([^/]+)(?:/([^/]*))?/?$`)
	listeRoute = regexp.MustCompile(`^/liste/(.+)$`)
)

type landing struct {
	heading string
	intro   string
}

var landings = map[string]landing{
	"/neue-trailer":     {"Neue Trailer", "Die neuesten Trailer zu Filmen und Serien."},
	"/kostenlose-filme": {"Kostenlose Filme", "Filme, die du legal und kostenlos streamen kannst."},
	"/entdecken":        {"Entdecken", "Finde Filme und Serien nach Genre, Stimmung und Jahrzehnt."},
	"/filmlisten":       {"Filmlisten", "Kuratierte Listen für jeden Filmabend."},
}

func route(path string) page {
	if path == "/" {
		return page{
			title:       siteName + " | Filme und Serien entdecken",
			description: "Finde deinen nächsten Lieblingsfilm mit persönlichen Empfehlungen.",
			ogType:      "website",
			body:        section("Willkommen bei MovieFlair", "Persönliche Film- und Serienempfehlungen."),
		}
	}
	if l, ok := landings[path]; ok {
		return page{
			title:       l.heading + " | " + siteName,
			description: l.intro,
			ogType:      "website",
			body:        section(l.heading, l.intro),
		}
	}
	if m := filmRoute.FindStringSubmatch(path); m != nil {
		name := displayName(m[2], m[1])
		return page{
			title:       name + " | Film | " + siteName,
			description: fmt.Sprintf("%s: Handlung, Besetzung, Trailer und wo du den Film streamen kannst.", name),
			ogType:      "video.movie",
			body:        detail("film", m[1], name),
		}
	}
	if m := serieRoute.FindStringSubmatch(path); m != nil {
		name := displayName(m[2], m[1])
		return page{
			title:       name + " | Serie | " + siteName,
			description: fmt.Sprintf("%s: Staffeln, Episoden und wo du die Serie streamen kannst.", name),
			ogType:      "video.tv_show",
			body:        detail("serie", m[1], name),
		}
	}
	if m := listeRoute.FindStringSubmatch(path); m != nil {
		name := displayName(m[1], m[1])
		return page{
			title:       name + " | Filmliste | " + siteName,
			description: fmt.Sprintf("Die Filmliste „%s“ auf %s.", name, siteName),
			ogType:      "website",
			body:        section(name, "Eine Filmliste auf MovieFlair."),
		}
	}
	return page{
		title:       "Seite nicht gefunden | " + siteName,
		description: "Diese Seite gibt es nicht.",
		ogType:      "website",
		noIndex:     true,
		body:        section("Seite nicht gefunden", "Die angeforderte Seite existiert nicht."),
	}
}

// displayName turns a URL slug into a title, falling back to id.
func displayName(slug, id string) string {
	if slug == "" {
		slug = id
	}
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' || r == '/' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	if len(words) == 0 {
		return id
	}
	return strings.Join(words, " ")
}

func navigation(current string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<header><nav><a href="/" class="logo">MovieFlair</a><ul>`)
		for _, path := range []string{"/entdecken", "/neue-trailer", "/kostenlose-filme", "/filmlisten"} {
			b.WriteString(`<li><a href="` + path + `"`)
			if path == current {
				b.WriteString(` aria-current="page"`)
			}
			b.WriteString(`>` + templ.EscapeString(landings[path].heading) + `</a></li>`)
		}
		b.WriteString(`</ul></nav></header>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func section(heading, text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<main><h1>%s</h1><p>%s</p></main>`,
			templ.EscapeString(heading), templ.EscapeString(text))
		return err
	})
}

func detail(kind, id, name string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<main><article data-kind="%s" data-id="%s"><h1>%s</h1></article></main>`,
			templ.EscapeString(kind), templ.EscapeString(id), templ.EscapeString(name))
		return err
	})
}

func footer() templ.Component {
	return templ.Raw(`<footer><a href="/impressum">Impressum</a> <a href="/datenschutz">Datenschutz</a></footer>`)
}
