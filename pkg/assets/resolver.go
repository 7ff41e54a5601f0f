package assets

// Resolver turns source asset names into URLs.
type Resolver interface {
	// Asset returns the URL of the file emitted for source.
	Asset(source string) string

	// Styles returns the URLs of the stylesheets source imports.
	Styles(source string) []string
}

type manifestResolver struct {
	manifest *Manifest
	prefix   string
}

// NewResolver resolves through m and prepends prefix, such as "/" or
// "/static/", to every file.
func NewResolver(m *Manifest, prefix string) Resolver {
	return &manifestResolver{manifest: m, prefix: prefix}
}

func (r *manifestResolver) Asset(source string) string {
	return r.prefix + r.manifest.Resolve(source)
}

func (r *manifestResolver) Styles(source string) []string {
	css := r.manifest.Styles(source)
	for i, file := range css {
		css[i] = r.prefix + file
	}
	return css
}

type passthrough struct {
	prefix string
}

// NewPassthroughResolver returns source names unchanged apart from the
// prefix. Development serves sources directly, so there is nothing to
// resolve and no separate stylesheets.
func NewPassthroughResolver(prefix string) Resolver {
	return &passthrough{prefix: prefix}
}

func (p *passthrough) Asset(source string) string {
	return p.prefix + source
}

func (p *passthrough) Styles(string) []string {
	return nil
}
