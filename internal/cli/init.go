package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Initialize a new WBS project",
	Long: `Create the project file with a single root task named after the project.

The project file location and format come from .wbsconfig (project.file and
project.format); the name defaults to the base directory name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireProject(); err != nil {
			return err
		}

		name := filepath.Base(BasePath)
		if len(args) > 0 {
			name = args[0]
		}
		if name == "" || name == "." || name == string(filepath.Separator) {
			return fmt.Errorf("project name is required")
		}

		if err := Project.Init(name); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Project %q initialized at %s\n", name, ProjectFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
