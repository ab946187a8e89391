package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/wbs/internal/core"
)

// completeTaskIDs returns a completion function that lists task identifiers,
// optionally restricted to work packages.
func completeTaskIDs(leavesOnly bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if Project == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var ids []string
		err := Project.View(func(e *core.WBSEngine, s *core.TaskStore) error {
			for _, id := range s.IDs() {
				if id.IsRoot() {
					continue
				}
				t, err := e.Lookup(id, s)
				if err != nil {
					return err
				}
				if leavesOnly && !t.IsLeaf() {
					continue
				}
				text := id.String()
				if toComplete == "" || strings.HasPrefix(text, toComplete) {
					// Include the task name as description.
					ids = append(ids, text+"\t"+t.Name())
				}
			}
			return nil
		})
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}
