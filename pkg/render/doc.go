// Package render performs the streaming server-side render of the
// MovieFlair application into the HTML shell.
//
// A render takes a Bundle (the shell template plus the application Entry)
// and writes a complete document to an http.ResponseWriter:
//
//	r := render.New(render.Config{Logger: logger})
//	err := r.Render(ctx, w, "/film/550", bundle)
//
// # Shell and markers
//
// The shell is a static HTML document with two literal markers:
//
//	<!--app-head-->  replaced by the head metadata collected during render
//	<!--app-html-->  where the rendered application body is streamed
//
// A missing marker makes the corresponding injection a no-op.
//
// # Streaming
//
// The application tree renders into a stream writer that buffers output until
// the shell is ready. The shell is ready when the tree renders Boundary (or
// calls ShellReady) or when rendering finishes. At that point the head
// metadata is read and injected, the response status and content type are
// set, the template up to the body marker is written and flushed, and the
// body streams through from then on. The template after the body marker is
// written once the body completes.
//
// Head declarations (package head) must therefore happen before the
// boundary; later declarations are collected but never reach the document.
//
// # Errors
//
// Render returns every failure as a *Error. When the failure happens before
// the shell is ready nothing has been written and HeadersSent is false, so the
// caller may still produce an error page. Panics in the application tree are
// recovered and returned with their stack.
package render
