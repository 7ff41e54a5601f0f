package head

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Title declares the page title. It renders nothing.
func Title(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, _ io.Writer) error {
		FromContext(ctx).SetTitle(title)
		return nil
	})
}

// Meta declares a meta tag. It renders nothing.
func Meta(m MetaTag) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, _ io.Writer) error {
		FromContext(ctx).AddMeta(m)
		return nil
	})
}

// Link declares a link tag. It renders nothing.
func Link(l LinkTag) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, _ io.Writer) error {
		FromContext(ctx).AddLink(l)
		return nil
	})
}

// Script declares a script tag. It renders nothing.
func Script(s ScriptTag) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, _ io.Writer) error {
		FromContext(ctx).AddScript(s)
		return nil
	})
}

// Description is shorthand for the description and og:description meta tags.
func Description(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, _ io.Writer) error {
		c := FromContext(ctx)
		c.AddMeta(MetaTag{Name: "description", Content: text})
		c.AddMeta(MetaTag{Property: "og:description", Content: text})
		return nil
	})
}
