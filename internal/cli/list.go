package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/wbs/internal/core"
	"github.com/valter-silva-au/wbs/pkg/models"
)

var (
	listTodo       bool
	listInProgress bool
	listDone       bool
	listJSON       bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List work packages",
	Long: `List the work packages (tasks without children) in identifier order.
Parent tasks and the project root are summaries and are not listed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireProject(); err != nil {
			return err
		}
		filter, err := listFilter()
		if err != nil {
			return err
		}

		views, err := Project.ListTasks(filter)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if listJSON {
			if views == nil {
				views = []models.TaskView{}
			}
			data, err := json.MarshalIndent(views, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting tasks as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(views) == 0 {
			fmt.Fprintln(out, "No work packages found.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPV\tAC\tSTATUS\tMEMBERS")
		for _, v := range views {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				v.ID, v.Name,
				core.FormatFloat(v.PlannedValue), core.FormatFloat(v.ActualCost),
				v.Status.Icon(), strings.Join(v.Members, ","))
		}
		return w.Flush()
	},
}

// listFilter maps the mutually exclusive status flags to a task filter.
func listFilter() (core.TaskFilter, error) {
	filter := core.FilterAll
	set := 0
	if listTodo {
		filter, set = core.FilterTodo, set+1
	}
	if listInProgress {
		filter, set = core.FilterInProgress, set+1
	}
	if listDone {
		filter, set = core.FilterDone, set+1
	}
	if set > 1 {
		return "", fmt.Errorf("--todo, --in-progress and --done are mutually exclusive")
	}
	return filter, nil
}

func init() {
	listCmd.Flags().BoolVar(&listTodo, "todo", false, "Only work packages that are not done")
	listCmd.Flags().BoolVar(&listInProgress, "in-progress", false, "Only work packages in progress")
	listCmd.Flags().BoolVar(&listDone, "done", false, "Only work packages that are done")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output work packages as JSON")
	rootCmd.AddCommand(listCmd)
}
