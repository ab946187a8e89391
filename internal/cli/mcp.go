package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	wbsmcp "github.com/valter-silva-au/wbs/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the wbs MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the wbs MCP server on stdio",
	Long: `Start the wbs MCP server on stdio transport.

The server exposes the project as MCP tools that AI coding assistants can
call: wbs_tree, wbs_graph, wbs_evm, wbs_get_task, wbs_list_tasks,
wbs_add_task, wbs_remove_task, wbs_set_planned_value, wbs_set_actual_cost,
wbs_set_status, wbs_metrics and wbs_alerts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireProject(); err != nil {
			return err
		}

		srv := wbsmcp.NewServer(Project, RenderOpts, MetricsCalc, AlertEngine, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
