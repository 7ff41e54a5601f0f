package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/a-h/templ"
	"github.com/movieflair/movieflair/pkg/head"
)

func TestRenderInjectsHeadAndBody(t *testing.T) {
	r := New(Config{})
	w := httptest.NewRecorder()

	entry := staticEntry(seq(head.Title("X"), text("<main>Fight Club</main>")))
	err := r.Render(context.Background(), w, "/film/550", &Bundle{HTML: testShell, Entry: entry})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}

	html := w.Body.String()
	want := `<!DOCTYPE html><html><head><meta charset="utf-8"><title>X</title></head>` +
		`<body><div id="root"><main>Fight Club</main></div><script src="/client.js"></script></body></html>`
	if html != want {
		t.Errorf("document =\n%s\nwant\n%s", html, want)
	}
}

func TestRenderHeadInjectedExactlyOnce(t *testing.T) {
	r := New(Config{})
	w := httptest.NewRecorder()

	entry := staticEntry(head.Title("X"))
	if err := r.Render(context.Background(), w, "/", &Bundle{HTML: testShell, Entry: entry}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	html := w.Body.String()
	if n := strings.Count(html, "<title>X</title>"); n != 1 {
		t.Errorf("title occurrences = %d, want 1", n)
	}
	if strings.Contains(html, HeadMarker) {
		t.Error("head marker should be replaced")
	}
	if strings.Contains(html, BodyMarker) {
		t.Error("body marker should be replaced")
	}
	markerPos := strings.Index(testShell, HeadMarker)
	if got := strings.Index(html, "<title>X</title>"); got != markerPos {
		t.Errorf("title at offset %d, want head marker offset %d", got, markerPos)
	}
}

func TestRenderMissingHeadFields(t *testing.T) {
	r := New(Config{})
	w := httptest.NewRecorder()

	// The tree declares nothing: every head field is absent.
	err := r.Render(context.Background(), w, "/", &Bundle{HTML: testShell, Entry: staticEntry(text("body"))})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := strings.Replace(strings.Replace(testShell, HeadMarker, "", 1), BodyMarker, "body", 1)
	if got := w.Body.String(); got != want {
		t.Errorf("document =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderStreamingOrder(t *testing.T) {
	r := New(Config{})
	w := newRecordingWriter()

	entry := staticEntry(seq(
		head.Title("Ordered"),
		text("<h1>above the fold</h1>"),
		Boundary(),
		text("<section>rest</section>"),
	))
	if err := r.Render(context.Background(), w, "/", &Bundle{HTML: testShell, Entry: entry}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if len(w.ops) == 0 || w.ops[0].kind != "header" {
		t.Fatalf("first op = %+v, want header", w.ops)
	}

	writes := w.writes()
	prefix, tail := splitShell(testShell, head.Fields{Title: "<title>Ordered</title>"})
	want := []string{prefix, "<h1>above the fold</h1>", "<section>rest</section>", tail}
	if len(writes) != len(want) {
		t.Fatalf("writes = %q, want %q", writes, want)
	}
	for i := range want {
		if writes[i] != want[i] {
			t.Errorf("write %d = %q, want %q", i, writes[i], want[i])
		}
	}

	// The prefix is flushed before any body byte is written.
	var sawPrefix, flushedPrefix bool
	for _, o := range w.ops {
		switch {
		case o.kind == "write" && o.data == prefix:
			sawPrefix = true
		case o.kind == "flush" && sawPrefix:
			flushedPrefix = true
		case o.kind == "write" && o.data == "<h1>above the fold</h1>":
			if !flushedPrefix {
				t.Error("body written before the template prefix was flushed")
			}
		}
	}
}

func TestRenderBodyStreamsAfterBoundary(t *testing.T) {
	r := New(Config{})
	w := newRecordingWriter()

	var writesAtBoundary int
	probe := templ.ComponentFunc(func(ctx context.Context, _ io.Writer) error {
		writesAtBoundary = len(w.writes())
		return nil
	})

	entry := staticEntry(seq(text("a"), Boundary(), probe, text("b")))
	if err := r.Render(context.Background(), w, "/", &Bundle{HTML: testShell, Entry: entry}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	// prefix and "a" were already on the wire when the tree continued.
	if writesAtBoundary != 2 {
		t.Errorf("writes after boundary = %d, want 2", writesAtBoundary)
	}
}

func TestRenderErrorBeforeShellWritesNothing(t *testing.T) {
	r := New(Config{})
	w := newRecordingWriter()

	boom := errors.New("boom")
	entry := staticEntry(seq(text("partial"), templ.ComponentFunc(func(context.Context, io.Writer) error {
		return boom
	})))

	err := r.Render(context.Background(), w, "/film/1", &Bundle{HTML: testShell, Entry: entry})
	if !errors.Is(err, boom) {
		t.Fatalf("Render() error = %v, want %v", err, boom)
	}
	if HeadersSent(err) {
		t.Error("HeadersSent should be false before the shell is ready")
	}
	if len(w.ops) != 0 {
		t.Errorf("response ops = %+v, want none", w.ops)
	}

	var re *Error
	if !errors.As(err, &re) || re.URL != "/film/1" {
		t.Errorf("error = %#v, want *Error for /film/1", err)
	}
}

func TestRenderErrorAfterShellEndsStream(t *testing.T) {
	r := New(Config{})
	w := newRecordingWriter()

	boom := errors.New("late failure")
	entry := staticEntry(seq(text("a"), Boundary(), templ.ComponentFunc(func(context.Context, io.Writer) error {
		return boom
	})))

	err := r.Render(context.Background(), w, "/", &Bundle{HTML: testShell, Entry: entry})
	if !errors.Is(err, boom) {
		t.Fatalf("Render() error = %v, want %v", err, boom)
	}
	if !HeadersSent(err) {
		t.Error("HeadersSent should be true after the shell is ready")
	}
	if strings.Contains(w.body(), "</html>") {
		t.Error("template tail should not be written after a failed render")
	}
}

func TestRenderRecoversPanic(t *testing.T) {
	r := New(Config{})
	w := httptest.NewRecorder()

	entry := func(context.Context) templ.Component {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			panic("tree exploded")
		})
	}

	err := r.Render(context.Background(), w, "/", &Bundle{HTML: testShell, Entry: entry})
	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("Render() error = %v, want *Error", err)
	}
	var pe *PanicError
	if !errors.As(err, &pe) || pe.Value != "tree exploded" {
		t.Errorf("panic value not preserved: %v", err)
	}
	if !strings.Contains(re.Stack, "renderer_test.go") {
		t.Errorf("stack should include the panicking frame, got %q", re.Stack)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}

func TestRenderAppliesStackFix(t *testing.T) {
	var calls int
	r := New(Config{FixStacktrace: func(err error) error {
		calls++
		return fmt.Errorf("fixed: %w", err)
	}})

	err := r.Render(context.Background(), httptest.NewRecorder(), "/", &Bundle{HTML: testShell})
	if !errors.Is(err, ErrNoEntry) {
		t.Fatalf("Render() error = %v, want ErrNoEntry", err)
	}
	if !strings.HasPrefix(err.Error(), "fixed: ") {
		t.Errorf("error = %q, want stack fix applied", err)
	}
	if calls != 1 {
		t.Errorf("FixStacktrace calls = %d, want 1", calls)
	}
}

func TestRenderMissingMarkers(t *testing.T) {
	r := New(Config{})
	w := httptest.NewRecorder()

	shell := "<html><head></head><body></body></html>"
	entry := staticEntry(seq(head.Title("ignored"), text("<p>app</p>")))
	if err := r.Render(context.Background(), w, "/", &Bundle{HTML: shell, Entry: entry}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	// Injection is a no-op: the shell is written as is and the body follows.
	if got, want := w.Body.String(), shell+"<p>app</p>"; got != want {
		t.Errorf("document = %q, want %q", got, want)
	}
}

func TestRenderProvidesLocation(t *testing.T) {
	r := New(Config{})
	w := httptest.NewRecorder()

	entry := func(ctx context.Context) templ.Component {
		loc, ok := LocationFromContext(ctx)
		if !ok {
			return text("no location")
		}
		return text(loc.Path + "|" + loc.Query.Get("tab"))
	}

	if err := r.Render(context.Background(), w, "/serie/1399/game-of-thrones?tab=cast", &Bundle{HTML: testShell, Entry: entry}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(w.Body.String(), "/serie/1399/game-of-thrones|cast") {
		t.Errorf("body = %q, want location rendered", w.Body.String())
	}
}

func TestRenderCanceledContext(t *testing.T) {
	r := New(Config{})
	w := newRecordingWriter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Render(ctx, w, "/", &Bundle{HTML: testShell, Entry: staticEntry(text("x"))})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Render() error = %v, want context.Canceled", err)
	}
	if len(w.ops) != 0 {
		t.Errorf("response ops = %+v, want none", w.ops)
	}
}

func TestRenderConcurrentErrorIsolation(t *testing.T) {
	r := New(Config{})

	good := staticEntry(seq(head.Title("Good"), text("<p>ok</p>")))
	bad := func(context.Context) templ.Component {
		return seq(head.Title("Bad"), templ.ComponentFunc(func(context.Context, io.Writer) error {
			panic("bad tree")
		}))
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make([]error, 2)
	recorders := []*httptest.ResponseRecorder{httptest.NewRecorder(), httptest.NewRecorder()}

	for i, entry := range []Entry{bad, good} {
		wg.Add(1)
		go func(i int, entry Entry) {
			defer wg.Done()
			<-start
			results[i] = r.Render(context.Background(), recorders[i], "/", &Bundle{HTML: testShell, Entry: entry})
		}(i, entry)
	}
	close(start)
	wg.Wait()

	if results[0] == nil {
		t.Error("failing render should return an error")
	}
	if results[1] != nil {
		t.Fatalf("successful render returned %v", results[1])
	}
	body := recorders[1].Body.String()
	if !strings.Contains(body, "<title>Good</title>") || strings.Contains(body, "Bad") {
		t.Errorf("successful render leaked state: %q", body)
	}
}

func TestShellReadyOutsideRender(t *testing.T) {
	if err := ShellReady(context.Background()); err != nil {
		t.Errorf("ShellReady() outside render = %v, want nil", err)
	}
	Flush(context.Background())
}

func TestSplitShellIgnoresMarkerInHead(t *testing.T) {
	f := head.Fields{Script: "<script>var m = '" + BodyMarker + "';</script>"}

	before, after := splitShell(testShell, f)

	wantBefore, wantAfter, _ := strings.Cut(testShell, BodyMarker)
	wantBefore = strings.Replace(wantBefore, HeadMarker, f.String(), 1)
	if before != wantBefore {
		t.Errorf("before = %q, want %q", before, wantBefore)
	}
	if after != wantAfter {
		t.Errorf("after = %q, want %q", after, wantAfter)
	}
	if !strings.Contains(before, "</head>") {
		t.Error("body was spliced into the head")
	}
}

func TestBundleHasMarkers(t *testing.T) {
	tests := []struct {
		name string
		b    *Bundle
		want bool
	}{
		{"nil", nil, false},
		{"both", &Bundle{HTML: testShell}, true},
		{"head only", &Bundle{HTML: HeadMarker}, false},
		{"body only", &Bundle{HTML: BodyMarker}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.b.HasMarkers(); got != tt.want {
				t.Errorf("HasMarkers() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in       string
		wantPath string
	}{
		{"/film/550", "/film/550"},
		{"/liste/best?x=1", "/liste/best"},
		{"", "/"},
		{"not a uri", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLocation(tt.in).Path; got != tt.wantPath {
				t.Errorf("Path = %q, want %q", got, tt.wantPath)
			}
		})
	}
}
