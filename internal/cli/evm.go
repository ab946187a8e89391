package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/valter-silva-au/wbs/internal/core"
)

var evmJSON bool

var (
	evmLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	evmGoodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	evmBadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

var evmCmd = &cobra.Command{
	Use:   "evm",
	Short: "Show the project's earned value indicators",
	Long: `Show planned value, actual cost, completion, earned value and the schedule
and cost indices and variances of the project.

Completion counts work packages only. SPI and CPI are 0 while their
denominator is 0.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireProject(); err != nil {
			return err
		}

		var name string
		var sum core.EVMSummary
		if err := Project.View(func(e *core.WBSEngine, s *core.TaskStore) error {
			name, sum = e.Name(s), e.Summary(s)
			return nil
		}); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if evmJSON {
			data, err := json.MarshalIndent(sum, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting indicators as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprint(out, formatEVM(name, sum, isTerminal(out)))
		return nil
	},
}

// formatEVM lays out the indicators as a table. Indices below 1 and negative
// variances are highlighted when styled is set.
func formatEVM(name string, sum core.EVMSummary, styled bool) string {
	number := func(v float64) string {
		return core.FormatFloat(roundTo(v, RenderOpts.Precision))
	}
	judge := func(text string, good bool) string {
		if !styled {
			return text
		}
		if good {
			return evmGoodStyle.Render(text)
		}
		return evmBadStyle.Render(text)
	}
	label := func(text string) string {
		text = fmt.Sprintf("  %-22s", text)
		if styled {
			return evmLabelStyle.Render(text)
		}
		return text
	}

	var b strings.Builder
	title := fmt.Sprintf("Earned value: %s", name)
	if styled {
		title = titleStyle.Render(" " + title + " ")
	}
	b.WriteString(title + "\n\n")

	rows := []struct {
		label string
		value string
	}{
		{"Planned value (PV)", number(sum.PlannedValue)},
		{"Actual cost (AC)", number(sum.ActualCost)},
		{"Completion", fmt.Sprintf("%s%%", number(sum.CompletionPercentage*100))},
		{"Earned value (EV)", number(sum.EarnedValue)},
		{"Schedule index (SPI)", judge(number(sum.SPI), sum.SPI >= 1)},
		{"Schedule variance (SV)", judge(number(sum.SV), sum.SV >= 0)},
		{"Cost index (CPI)", judge(number(sum.CPI), sum.CPI >= 1 || sum.ActualCost == 0)},
		{"Cost variance (CV)", judge(number(sum.CV), sum.CV >= 0)},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "%s %s\n", label(r.label+":"), r.value)
	}
	return b.String()
}

// roundTo rounds v to the configured number of decimals; a negative
// precision leaves v untouched.
func roundTo(v float64, precision int) float64 {
	if precision < 0 {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', precision, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func init() {
	evmCmd.Flags().BoolVar(&evmJSON, "json", false, "Output the indicators as JSON")
	rootCmd.AddCommand(evmCmd)
}
