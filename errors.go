package movieflair

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/movieflair/movieflair/internal/dev"
	"github.com/movieflair/movieflair/pkg/dispatch"
	"github.com/movieflair/movieflair/pkg/render"
)

// DefaultErrorHandler logs a failed request and, when no response has been
// started, answers 500. In development the body carries the error and its
// stack; production clients get a generic message.
func DefaultErrorHandler(logger *slog.Logger, development bool) dispatch.ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request, err error) {
		attrs := []any{"path", r.URL.Path, "error", err}
		var derr *dispatch.Error
		if errors.As(err, &derr) {
			attrs = append(attrs, "stage", derr.Stage, "render_id", derr.RenderID)
		}
		sent := render.HeadersSent(err)
		attrs = append(attrs, "headers_sent", sent)
		logger.Error("request failed", attrs...)

		if sent {
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		if !development {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, err.Error()+"\n")
		if stack := errorStack(err); stack != "" {
			fmt.Fprintf(w, "\n%s", stack)
		}
	}
}

// errorStack returns the captured stack of a render or module load failure.
func errorStack(err error) string {
	var re *render.Error
	if errors.As(err, &re) && re.Stack != "" {
		return re.Stack
	}
	var le *dev.LoadError
	if errors.As(err, &le) {
		return le.Stack
	}
	return ""
}

// notifyingErrorHandler shows failures in the browser overlay of every
// open development page before handing them to next.
func notifyingErrorHandler(rs *dev.ReloadServer, next dispatch.ErrorHandler) dispatch.ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		msg := err.Error()
		if stack := errorStack(err); stack != "" {
			msg += "\n\n" + stack
		}
		rs.NotifyError(msg)
		next(w, r, err)
	}
}
