package render

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

// streamWriter is the writer the application tree renders into.
// Output is held back until the shell is ready, then passed straight
// through to the response.
type streamWriter struct {
	ctx     context.Context
	w       io.Writer
	flusher http.Flusher

	pending bytes.Buffer
	ready   bool

	// onReady writes the response head and the template prefix.
	onReady func() error

	headersSent bool
	err         error
}

func newStreamWriter(ctx context.Context, w http.ResponseWriter) *streamWriter {
	flusher, _ := w.(http.Flusher)
	return &streamWriter{
		ctx:     ctx,
		w:       w,
		flusher: flusher,
	}
}

// Write implements io.Writer.
func (s *streamWriter) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return 0, err
	}
	if !s.ready {
		return s.pending.Write(p)
	}
	n, err := s.w.Write(p)
	if err != nil {
		s.err = err
	}
	return n, err
}

// shellReady fires the shell-ready transition once. It is a no-op after
// the first call.
func (s *streamWriter) shellReady() error {
	if s.ready || s.err != nil {
		return s.err
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return err
	}
	s.ready = true

	if err := s.onReady(); err != nil {
		s.err = err
		return err
	}
	s.flush()

	if s.pending.Len() > 0 {
		if _, err := s.w.Write(s.pending.Bytes()); err != nil {
			s.err = err
			return err
		}
		s.pending.Reset()
		s.flush()
	}
	return nil
}

// flush flushes the response if it supports flushing.
func (s *streamWriter) flush() {
	if s.flusher != nil && s.ready {
		s.flusher.Flush()
	}
}

type streamKey struct{}

func withStream(ctx context.Context, s *streamWriter) context.Context {
	return context.WithValue(ctx, streamKey{}, s)
}

// ShellReady marks the end of the shell part of the tree: head metadata is
// injected and everything rendered so far is sent to the client. Calls
// after the first, and calls outside a render, do nothing.
func ShellReady(ctx context.Context) error {
	s, ok := ctx.Value(streamKey{}).(*streamWriter)
	if !ok {
		return nil
	}
	return s.shellReady()
}

// Flush sends buffered body output to the client. Before the shell is
// ready it does nothing.
func Flush(ctx context.Context) {
	if s, ok := ctx.Value(streamKey{}).(*streamWriter); ok {
		s.flush()
	}
}

// Boundary is a component that marks the shell as ready when rendered.
// Place it after the page's head declarations and above-the-fold markup.
func Boundary() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, _ io.Writer) error {
		return ShellReady(ctx)
	})
}
