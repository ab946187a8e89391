package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/wbs/pkg/models"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Record dependencies between tasks",
	Long: `Record that one task depends on another. Dependencies are shown in the tree
with --deps and follow renumbering when tasks are removed; they do not affect
values or scheduling.`,
}

var depAddCmd = &cobra.Command{
	Use:               "add <id> <depends-on>",
	Short:             "Record that <id> depends on <depends-on>",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeTaskIDs(false),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeDependency(cmd, args, "now depends on", func(id, on models.TaskID) error {
			return Project.AddDependency(id, on)
		})
	},
}

var depRmCmd = &cobra.Command{
	Use:               "rm <id> <depends-on>",
	Short:             "Drop the dependency of <id> on <depends-on>",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeTaskIDs(false),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeDependency(cmd, args, "no longer depends on", func(id, on models.TaskID) error {
			return Project.RemoveDependency(id, on)
		})
	},
}

func changeDependency(cmd *cobra.Command, args []string, verb string, apply func(id, on models.TaskID) error) error {
	if err := requireProject(); err != nil {
		return err
	}
	id, err := parseTaskArg(args[0])
	if err != nil {
		return err
	}
	on, err := parseTaskArg(args[1])
	if err != nil {
		return err
	}
	if err := apply(id, on); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %s %s %s\n", displayID(id.String()), verb, displayID(on.String()))
	return nil
}

func init() {
	depCmd.AddCommand(depAddCmd, depRmCmd)
	rootCmd.AddCommand(depCmd)
}
