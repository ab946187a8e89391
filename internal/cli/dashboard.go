package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/wbs/internal/core"
	"github.com/valter-silva-au/wbs/internal/render"
	"github.com/valter-silva-au/wbs/pkg/models"
)

// Dashboard panel indices.
const (
	panelTree = iota
	panelEVM
	panelPackages
	panelAlerts
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	project  string
	tree     string
	evm      core.EVMSummary
	packages map[models.TaskStatus]int
	alerts   []alertSnapshot

	// State.
	loading bool
	err     error
}

type alertSnapshot struct {
	severity string
	message  string
	time     string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	project  string
	tree     string
	evm      core.EVMSummary
	packages map[models.TaskStatus]int
	alerts   []alertSnapshot
	err      error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusDone       = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelTree,
		loading:     true,
		packages:    make(map[models.TaskStatus]int),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.project = msg.project
		m.tree = msg.tree
		m.evm = msg.evm
		m.packages = msg.packages
		m.alerts = msg.alerts
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" WBS Dashboard ")
	if m.project != "" {
		title = titleStyle.Render(fmt.Sprintf(" WBS Dashboard: %s ", m.project))
	}
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	treePanel := m.renderTreePanel()
	evmPanel := m.renderEVMPanel()
	packagesPanel := m.renderPackagesPanel()
	alertsPanel := m.renderAlertsPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Grid layout: the tree on the left, the summaries stacked on the right.
		colWidth := availableWidth / 2
		treePanel = m.applyPanelStyle(panelTree, treePanel, colWidth-4)
		evmPanel = m.applyPanelStyle(panelEVM, evmPanel, colWidth-4)
		packagesPanel = m.applyPanelStyle(panelPackages, packagesPanel, colWidth-4)
		alertsPanel = m.applyPanelStyle(panelAlerts, alertsPanel, colWidth-4)
		right := lipgloss.JoinVertical(lipgloss.Left, evmPanel, packagesPanel, alertsPanel)
		body = lipgloss.JoinHorizontal(lipgloss.Top, treePanel, right)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		treePanel = m.applyPanelStyle(panelTree, treePanel, panelWidth)
		evmPanel = m.applyPanelStyle(panelEVM, evmPanel, panelWidth)
		packagesPanel = m.applyPanelStyle(panelPackages, packagesPanel, panelWidth)
		alertsPanel = m.applyPanelStyle(panelAlerts, alertsPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, treePanel, evmPanel, packagesPanel, alertsPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderTreePanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Breakdown"))
	b.WriteString("\n")

	if m.tree == "" {
		b.WriteString("  No project loaded.")
		return b.String()
	}
	b.WriteString(strings.TrimRight(m.tree, "\n"))
	return b.String()
}

func (m dashboardModel) renderEVMPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Earned Value"))
	b.WriteString("\n")

	lines := []struct {
		label string
		value float64
	}{
		{"PV", m.evm.PlannedValue},
		{"AC", m.evm.ActualCost},
		{"EV", m.evm.EarnedValue},
		{"SPI", m.evm.SPI},
		{"SV", m.evm.SV},
		{"CPI", m.evm.CPI},
		{"CV", m.evm.CV},
	}
	fmt.Fprintf(&b, "  %-14s %s%%\n", "Complete", core.FormatFloat(roundTo(m.evm.CompletionPercentage*100, 1)))
	for _, l := range lines {
		fmt.Fprintf(&b, "  %-14s %s\n", l.label, core.FormatFloat(roundTo(l.value, 2)))
	}

	return b.String()
}

func (m dashboardModel) renderPackagesPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Work Packages"))
	b.WriteString("\n")

	total := 0
	for _, c := range m.packages {
		total += c
	}
	if total == 0 {
		b.WriteString("  No work packages found.")
		return b.String()
	}

	for _, status := range []models.TaskStatus{models.StatusInProgress, models.StatusDone} {
		label := fmt.Sprintf("  %s %-12s %d", status.Icon(), status, m.packages[status])
		b.WriteString(styleForStatus(status).Render(label))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n  Total: %d", total)

	return b.String()
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}

	for _, a := range m.alerts {
		sev := styleForSeverity(a.severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(a.severity)))
		fmt.Fprintf(&b, "  %s %s\n", sev, a.message)
	}

	fmt.Fprintf(&b, "\n  Total: %d alert(s)", len(m.alerts))

	return b.String()
}

func styleForStatus(status models.TaskStatus) lipgloss.Style {
	switch status {
	case models.StatusInProgress:
		return statusInProgress
	case models.StatusDone:
		return statusDone
	default:
		return lipgloss.NewStyle()
	}
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

func loadData() tea.Msg {
	result := dataLoadedMsg{
		packages: make(map[models.TaskStatus]int),
	}

	if Project == nil {
		result.err = fmt.Errorf("project manager not initialized")
		return result
	}

	err := Project.View(func(e *core.WBSEngine, s *core.TaskStore) error {
		result.project = e.Name(s)
		result.tree = render.NewRenderer(e, RenderOpts).Tree(s)
		result.evm = e.Summary(s)
		for _, t := range e.Tasks(s) {
			result.packages[t.Status()]++
		}
		return nil
	})
	if err != nil {
		result.err = fmt.Errorf("loading project: %w", err)
		return result
	}

	// Load alerts from AlertEngine.
	if AlertEngine != nil {
		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			result.err = fmt.Errorf("loading alerts: %w", err)
			return result
		}
		result.alerts = make([]alertSnapshot, 0, len(alerts))

		// Sort alerts by severity: high first, then medium, then low.
		sort.SliceStable(alerts, func(i, j int) bool {
			return severityRank(string(alerts[i].Severity)) < severityRank(string(alerts[j].Severity))
		})

		for _, a := range alerts {
			result.alerts = append(result.alerts, alertSnapshot{
				severity: string(a.Severity),
				message:  a.Message,
				time:     a.TriggeredAt.Format("2006-01-02 15:04 UTC"),
			})
		}
	}

	return result
}

func severityRank(s string) int {
	switch s {
	case "high":
		return 0
	case "medium":
		return 1
	case "low":
		return 2
	default:
		return 3
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for the project",
	Long: `Launch an interactive terminal dashboard showing the breakdown tree, the
earned value indicators, work package counts and active alerts.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireProject(); err != nil {
			return err
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
