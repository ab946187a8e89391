package render

import (
	"strings"

	"github.com/valter-silva-au/wbs/internal/core"
	"github.com/valter-silva-au/wbs/pkg/models"
)

const (
	branchMore = "├─ "
	branchLast = "└─ "
	indentMore = "│  "
	indentLast = "   "
)

// Tree renders the root's display text followed by one entry per task in
// depth-first pre-order. A task that has a next sibling gets the "├─"
// connector and passes "│" down to its subtree; the last child gets "└─"
// and passes blank indentation.
func (r *renderer) Tree(store *core.TaskStore) string {
	var b strings.Builder
	root, err := r.engine.Lookup(models.RootTaskID(), store)
	if err != nil {
		return ""
	}
	b.WriteString(r.label(root))
	b.WriteString("\n")
	r.subtree(&b, root, "", store)
	return b.String()
}

func (r *renderer) subtree(b *strings.Builder, parent *core.Task, prefix string, store *core.TaskStore) {
	for _, childID := range parent.ChildIDs() {
		child, err := r.engine.Lookup(childID, store)
		if err != nil {
			continue
		}
		branch, indent := branchLast, indentLast
		if _, err := r.engine.NextSibling(childID, store); err == nil {
			branch, indent = branchMore, indentMore
		}
		childPrefix := prefix + indent
		b.WriteString(prefix)
		b.WriteString(branch)
		b.WriteString(indentLines(r.label(child), childPrefix))
		b.WriteString("\n")
		r.subtree(b, child, childPrefix, store)
	}
}
