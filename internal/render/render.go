// Package render produces read-only text views of a work breakdown structure:
// an indented tree and a Graphviz digraph carrying the EVM summary.
package render

import (
	"strconv"
	"strings"

	"github.com/valter-silva-au/wbs/internal/core"
)

// Options controls how numbers and task labels are printed.
type Options struct {
	// Precision is the number of decimals for the graph's EVM label. A
	// negative value prints the shortest representation that round-trips.
	Precision int
	// WithDependencies appends each task's dependency identifiers.
	WithDependencies bool
}

// DefaultOptions prints numbers at full precision without dependencies.
func DefaultOptions() Options {
	return Options{Precision: -1}
}

// Renderer turns a task store into presentation text.
type Renderer interface {
	Tree(store *core.TaskStore) string
	Graph(store *core.TaskStore) string
}

type renderer struct {
	engine *core.WBSEngine
	opts   Options
}

// NewRenderer returns a Renderer that reads stores through engine.
func NewRenderer(engine *core.WBSEngine, opts Options) Renderer {
	return &renderer{engine: engine, opts: opts}
}

func (r *renderer) label(t *core.Task) string {
	if r.opts.WithDependencies {
		return t.StringWithDependencies()
	}
	return t.String()
}

func (r *renderer) number(v float64) string {
	return strconv.FormatFloat(v, 'f', r.opts.Precision, 64)
}

// indentLines prefixes every line after the first with prefix.
func indentLines(text, prefix string) string {
	return strings.ReplaceAll(text, "\n", "\n"+prefix)
}
