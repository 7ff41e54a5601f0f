package render

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/a-h/templ"
)

const testShell = `<!DOCTYPE html><html><head><meta charset="utf-8">` + HeadMarker +
	`</head><body><div id="root">` + BodyMarker + `</div><script src="/client.js"></script></body></html>`

// op is one recorded call on a recordingWriter.
type op struct {
	kind string // "header", "write" or "flush"
	data string
}

// recordingWriter is an http.ResponseWriter and http.Flusher that records
// the order of calls made on it.
type recordingWriter struct {
	mu     sync.Mutex
	header http.Header
	status int
	ops    []op
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{header: make(http.Header)}
}

func (w *recordingWriter) Header() http.Header { return w.header }

func (w *recordingWriter) WriteHeader(status int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.ops = append(w.ops, op{kind: "header"})
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == 0 {
		w.status = http.StatusOK
		w.ops = append(w.ops, op{kind: "header"})
	}
	w.ops = append(w.ops, op{kind: "write", data: string(p)})
	return len(p), nil
}

func (w *recordingWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ops = append(w.ops, op{kind: "flush"})
}

func (w *recordingWriter) body() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var b strings.Builder
	for _, o := range w.ops {
		if o.kind == "write" {
			b.WriteString(o.data)
		}
	}
	return b.String()
}

// writes returns the data of every write call, in order.
func (w *recordingWriter) writes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for _, o := range w.ops {
		if o.kind == "write" {
			out = append(out, o.data)
		}
	}
	return out
}

// text is a component that writes s.
func text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// seq renders components in order.
func seq(parts ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, p := range parts {
			if err := p.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// staticEntry returns an Entry that always renders c.
func staticEntry(c templ.Component) Entry {
	return func(context.Context) templ.Component { return c }
}
