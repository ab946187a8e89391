package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/wbs/pkg/models"
)

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Assign people to work packages",
}

var memberAddCmd = &cobra.Command{
	Use:               "add <id> <member>",
	Short:             "Assign a member to a work package",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeTaskIDs(true),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeMember(cmd, args, "assigned to", func(id models.TaskID, m string) error {
			return Project.AssignMember(id, m)
		})
	},
}

var memberRmCmd = &cobra.Command{
	Use:               "rm <id> <member>",
	Short:             "Remove a member from a work package",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeTaskIDs(true),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeMember(cmd, args, "removed from", func(id models.TaskID, m string) error {
			return Project.RemoveMember(id, m)
		})
	},
}

var memberListCmd = &cobra.Command{
	Use:               "list [id]",
	Short:             "List the members working under a task (default: the whole project)",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeTaskIDs(false),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireProject(); err != nil {
			return err
		}
		id := models.RootTaskID()
		if len(args) > 0 {
			var err error
			if id, err = parseTaskArg(args[0]); err != nil {
				return err
			}
		}
		members, err := Project.Members(id)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No members assigned.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(members, "\n"))
		return nil
	},
}

func changeMember(cmd *cobra.Command, args []string, verb string, apply func(models.TaskID, string) error) error {
	if err := requireProject(); err != nil {
		return err
	}
	id, err := parseTaskArg(args[0])
	if err != nil {
		return err
	}
	member := strings.TrimSpace(args[1])
	if member == "" {
		return fmt.Errorf("member name is required")
	}
	if err := apply(id, member); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s task %s\n", member, verb, displayID(id.String()))
	return nil
}

func init() {
	memberCmd.AddCommand(memberAddCmd, memberRmCmd, memberListCmd)
	rootCmd.AddCommand(memberCmd)
}
