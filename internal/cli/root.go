package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/wbs/pkg/models"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "wbs",
	Short: "Work breakdown structure tracker with earned value management",
	Long: `wbs tracks a project as a work breakdown structure: a tree of tasks whose
leaves are work packages carrying a planned value and an actual cost.

Values roll up to every parent task, and the project's earned value
indicators (SPI, SV, CPI, CV) are derived from the completed work packages.

Task identifiers are dotted paths such as 2.1.3; removing a task renumbers
its later siblings. Use "root" (or ".") to address the project itself.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wbs %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// requireProject fails when the app did not wire a project manager.
func requireProject() error {
	if Project == nil {
		return fmt.Errorf("project manager not initialized")
	}
	return nil
}

// parseTaskArg parses a task identifier argument. "root", "." and the empty
// string name the project root.
func parseTaskArg(arg string) (models.TaskID, error) {
	switch strings.TrimSpace(arg) {
	case "", ".", "root":
		return models.RootTaskID(), nil
	}
	id, err := models.ParseTaskID(strings.TrimSpace(arg))
	if err != nil {
		return models.TaskID{}, fmt.Errorf("parsing task id %q: %w", arg, err)
	}
	return id, nil
}

// displayID is the identifier as shown to users.
func displayID(id string) string {
	if id == "" {
		return "root"
	}
	return id
}
