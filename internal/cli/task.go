package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/wbs/internal/core"
	"github.com/valter-silva-au/wbs/pkg/models"
)

var addCmd = &cobra.Command{
	Use:   "add <parent> <name...>",
	Short: "Add a task under a parent task",
	Long: `Add a task as the last child of <parent>. Use "root" to add a top-level task.

Adding a child to a work package turns it into a parent; its planned value,
actual cost and members move to the new child.`,
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completeTaskIDs(false),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireProject(); err != nil {
			return err
		}
		parent, err := parseTaskArg(args[0])
		if err != nil {
			return err
		}
		name := strings.Join(args[1:], " ")

		view, err := Project.AddTask(parent, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added task %s %q\n", view.ID, view.Name)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a work package",
	Long: `Remove a work package (a task without children). Later siblings and their
subtrees move up by one to close the gap, so their identifiers change.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs(true),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireProject(); err != nil {
			return err
		}
		id, err := parseTaskArg(args[0])
		if err != nil {
			return err
		}

		view, err := Project.RemoveTask(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed task %s %q\n", view.ID, view.Name)
		return nil
	},
}

var pvCmd = &cobra.Command{
	Use:               "pv <id> <value>",
	Short:             "Set the planned value of a work package",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeTaskIDs(true),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAmount(cmd, args, "planned value", func(id models.TaskID, v float64) error {
			return Project.SetPlannedValue(id, v)
		})
	},
}

var acCmd = &cobra.Command{
	Use:               "ac <id> <cost>",
	Short:             "Set the actual cost of a work package",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeTaskIDs(true),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAmount(cmd, args, "actual cost", func(id models.TaskID, v float64) error {
			return Project.SetActualCost(id, v)
		})
	},
}

var doneCmd = &cobra.Command{
	Use:               "done <id>",
	Short:             "Mark a work package as done",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs(true),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(cmd, args[0], models.StatusDone)
	},
}

var reopenCmd = &cobra.Command{
	Use:               "reopen <id>",
	Short:             "Mark a work package as in progress again",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs(true),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStatus(cmd, args[0], models.StatusInProgress)
	},
}

// setAmount parses <id> <amount> and applies set.
func setAmount(cmd *cobra.Command, args []string, what string, set func(models.TaskID, float64) error) error {
	if err := requireProject(); err != nil {
		return err
	}
	id, err := parseTaskArg(args[0])
	if err != nil {
		return err
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("parsing %s %q: %w", what, args[1], err)
	}

	if err := set(id, amount); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %s %s set to %s\n", displayID(id.String()), what, core.FormatFloat(amount))
	return nil
}

func setStatus(cmd *cobra.Command, arg string, status models.TaskStatus) error {
	if err := requireProject(); err != nil {
		return err
	}
	id, err := parseTaskArg(arg)
	if err != nil {
		return err
	}
	if err := Project.SetStatus(id, status); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %s is %s %s\n", displayID(id.String()), strings.ReplaceAll(string(status), "_", " "), status.Icon())
	return nil
}

func init() {
	// Flags end at the task id, so "wbs pv 1 -3" passes -3 as the amount.
	pvCmd.Flags().SetInterspersed(false)
	acCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(addCmd, rmCmd, pvCmd, acCmd, doneCmd, reopenCmd)
}
