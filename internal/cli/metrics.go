package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	metricsJSON  bool
	metricsSince string
	metricsTask  string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display project activity metrics",
	Long: `Display activity counts derived from the project event log.

Metrics include tasks added and removed, work packages completed and
reopened, planned value and actual cost changes, and member and dependency
changes. Use --task to count only events about a task and its subtasks;
events keep the identifiers tasks had when they were logged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (events may be disabled)")
		}

		sinceTime, err := parseSinceDuration(metricsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		subtree := ""
		if metricsTask != "" {
			id, err := parseTaskArg(metricsTask)
			if err != nil {
				return err
			}
			subtree = id.String()
		}

		metrics, err := MetricsCalc.Calculate(sinceTime, subtree)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		if metricsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		// Table format.
		if metrics.Subtree != "" {
			fmt.Fprintf(out, "Metrics for task %s (since %s)\n\n", metrics.Subtree, sinceTime.Format("2006-01-02"))
		} else {
			fmt.Fprintf(out, "Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		}
		rows := []struct {
			label string
			value int
		}{
			{"Events recorded:", metrics.EventCount},
			{"Tasks added:", metrics.TasksAdded},
			{"Tasks removed:", metrics.TasksRemoved},
			{"Packages completed:", metrics.PackagesCompleted},
			{"Packages reopened:", metrics.PackagesReopened},
			{"Planned value changes:", metrics.ValueChanges},
			{"Actual cost changes:", metrics.CostChanges},
			{"Member changes:", metrics.MemberChanges},
			{"Dependency changes:", metrics.DependencyChanges},
		}
		for _, r := range rows {
			fmt.Fprintf(out, "  %-24s %d\n", r.label, r.value)
		}

		if len(metrics.TasksByStatus) > 0 {
			fmt.Fprintln(out, "\n  Status transitions:")
			statuses := make([]string, 0, len(metrics.TasksByStatus))
			for status := range metrics.TasksByStatus {
				statuses = append(statuses, status)
			}
			sort.Strings(statuses)
			for _, status := range statuses {
				fmt.Fprintf(out, "    %-20s %d\n", status+":", metrics.TasksByStatus[status])
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-24s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(out, "  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// parseSinceDuration parses a human-friendly duration string like "7d", "30d",
// or "24h" and returns the corresponding time in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	metricsCmd.Flags().StringVar(&metricsTask, "task", "", "Only count events about this task and its subtasks")
	rootCmd.AddCommand(metricsCmd)
}
