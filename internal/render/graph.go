package render

import (
	"fmt"
	"strings"

	"github.com/valter-silva-au/wbs/internal/core"
	"github.com/valter-silva-au/wbs/pkg/models"
)

// Graph renders the structure as a Graphviz digraph. The graph label carries
// earned value, SPI, SV, CPI and CV; each parent to child edge is one
// tab-indented line with nodes named by their display text.
func (r *renderer) Graph(store *core.TaskStore) string {
	var b strings.Builder
	sum := r.engine.Summary(store)
	fmt.Fprintf(&b, "digraph G {\nlabel=\"earned value: %s, spi: %s, sv: %s, cpi: %s, cv: %s\"\n",
		r.number(sum.EarnedValue), r.number(sum.SPI), r.number(sum.SV), r.number(sum.CPI), r.number(sum.CV))
	if root, err := r.engine.Lookup(models.RootTaskID(), store); err == nil {
		r.edges(&b, root, store)
	}
	b.WriteString("}")
	return b.String()
}

func (r *renderer) edges(b *strings.Builder, parent *core.Task, store *core.TaskStore) {
	from := quote(r.label(parent))
	for _, childID := range parent.ChildIDs() {
		child, err := r.engine.Lookup(childID, store)
		if err != nil {
			continue
		}
		fmt.Fprintf(b, "\t%s -> %s\n", from, quote(r.label(child)))
		r.edges(b, child, store)
	}
}

// quote returns text as a DOT string literal. Line breaks become the \n
// escape so a node name stays on one line.
func quote(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `"`, `\"`)
	text = strings.ReplaceAll(text, "\n", `\n`)
	return `"` + text + `"`
}
