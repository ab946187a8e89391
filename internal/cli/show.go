package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/wbs/internal/core"
	"github.com/valter-silva-au/wbs/internal/render"
)

var (
	showDeps    bool
	graphOutput string
)

var showCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"tree"},
	Short:   "Print the work breakdown structure as a tree",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireProject(); err != nil {
			return err
		}
		opts := RenderOpts
		opts.WithDependencies = opts.WithDependencies || showDeps

		var out string
		if err := Project.View(func(e *core.WBSEngine, s *core.TaskStore) error {
			out = render.NewRenderer(e, opts).Tree(s)
			return nil
		}); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the work breakdown structure as a Graphviz digraph",
	Long: `Print the work breakdown structure in Graphviz dot syntax, labelled with the
earned value indicators. Render it with, for example:

  wbs graph -o wbs.dot && dot -Tsvg wbs.dot > wbs.svg`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireProject(); err != nil {
			return err
		}

		var out string
		if err := Project.View(func(e *core.WBSEngine, s *core.TaskStore) error {
			out = render.NewRenderer(e, RenderOpts).Graph(s)
			return nil
		}); err != nil {
			return err
		}

		if graphOutput == "" || graphOutput == "-" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
		if err := os.WriteFile(graphOutput, []byte(out+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing graph: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Graph written to %s\n", graphOutput)
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showDeps, "deps", false, "List each task's dependencies")
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "Write the graph to a file instead of stdout")
	rootCmd.AddCommand(showCmd, graphCmd)
}
