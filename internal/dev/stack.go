package dev

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/movieflair/movieflair/pkg/render"
)

// templFrame matches a frame in a file generated by templ.
var templFrame = regexp.MustCompile(`([^\s/]+)_templ\.go:(\d+)`)

// FixStacktrace rewrites the stack of a render or load error so it reads
// against the source tree: the project root is trimmed from file paths and
// frames in generated templ code name their .templ source.
//
// The error is modified in place and returned.
func (l *Loader) FixStacktrace(err error) error {
	if err == nil {
		return nil
	}

	var re *render.Error
	if errors.As(err, &re) && re.Stack != "" {
		re.Stack = l.fixStack(re.Stack)
	}
	var le *LoadError
	if errors.As(err, &le) && le.Stack != "" {
		le.Stack = l.fixStack(le.Stack)
	}
	return err
}

func (l *Loader) fixStack(stack string) string {
	if l.root != "" {
		root := filepath.ToSlash(filepath.Clean(l.root)) + "/"
		stack = strings.ReplaceAll(stack, root, "")
	}
	return templFrame.ReplaceAllString(stack, "$1.templ (${1}_templ.go:$2)")
}
