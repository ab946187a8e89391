// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the WBS project as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/wbs/internal/core"
	"github.com/valter-silva-au/wbs/internal/observability"
	"github.com/valter-silva-au/wbs/internal/render"
	"github.com/valter-silva-au/wbs/pkg/models"
)

// Server wraps the project manager and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	project     core.ProjectManager
	renderOpts  render.Options
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server over the given project.
// metricsCalc and alertEngine may be nil if events are disabled.
func NewServer(project core.ProjectManager, renderOpts render.Options, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		project:     project,
		renderOpts:  renderOpts,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "wbs", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type emptyInput struct{}

type textOutput struct {
	Text string `json:"text"`
}

type taskIDInput struct {
	ID string `json:"id" jsonschema:"the task identifier, e.g. 2.1.3; empty for the project root"`
}

type taskOutput struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	PlannedValue float64  `json:"planned_value"`
	ActualCost   float64  `json:"actual_cost"`
	Status       string   `json:"status"`
	IsLeaf       bool     `json:"is_leaf"`
	NumChild     uint32   `json:"num_child"`
	Dependencies []string `json:"dependencies,omitempty"`
	Members      []string `json:"members,omitempty"`
}

type listTasksInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"work package filter: all, todo, in_progress or done. Defaults to all."`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type addTaskInput struct {
	Parent string `json:"parent" jsonschema:"identifier of the parent task; empty for the project root"`
	Name   string `json:"name" jsonschema:"name of the new task"`
}

type setValueInput struct {
	ID    string  `json:"id" jsonschema:"identifier of a work package (leaf task)"`
	Value float64 `json:"value" jsonschema:"the new amount, zero or greater"`
}

type setStatusInput struct {
	ID     string `json:"id" jsonschema:"identifier of a work package (leaf task)"`
	Status string `json:"status" jsonschema:"the new status: in_progress or done"`
}

type messageOutput struct {
	Message string `json:"message"`
}

type evmOutput struct {
	Project              string  `json:"project"`
	PlannedValue         float64 `json:"planned_value"`
	ActualCost           float64 `json:"actual_cost"`
	CompletionPercentage float64 `json:"completion_percentage"`
	EarnedValue          float64 `json:"earned_value"`
	SPI                  float64 `json:"spi"`
	SV                   float64 `json:"sv"`
	CPI                  float64 `json:"cpi"`
	CV                   float64 `json:"cv"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
	Task  string `json:"task,omitempty" jsonschema:"only count events about this task identifier and its subtasks"`
}

type metricsOutput struct {
	TasksAdded        int            `json:"tasks_added"`
	TasksRemoved      int            `json:"tasks_removed"`
	PackagesCompleted int            `json:"packages_completed"`
	PackagesReopened  int            `json:"packages_reopened"`
	ValueChanges      int            `json:"value_changes"`
	CostChanges       int            `json:"cost_changes"`
	MemberChanges     int            `json:"member_changes"`
	DependencyChanges int            `json:"dependency_changes"`
	TasksByStatus     map[string]int `json:"tasks_by_status"`
	EventCount        int            `json:"event_count"`
	OldestEvent       string         `json:"oldest_event,omitempty"`
	NewestEvent       string         `json:"newest_event,omitempty"`
}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "wbs_tree",
		Description: "Render the work breakdown structure as an indented tree with planned value, actual cost and status per task.",
	}, s.handleTree)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "wbs_graph",
		Description: "Render the work breakdown structure as a Graphviz digraph labelled with the earned value indicators.",
	}, s.handleGraph)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "wbs_evm",
		Description: "Get the earned value indicators: planned value, actual cost, completion, earned value, SPI, SV, CPI and CV.",
	}, s.handleEVM)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "wbs_get_task",
		Description: "Get one task by identifier, including its aggregates, dependencies and members.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "wbs_list_tasks",
		Description: "List work packages (leaf tasks) with an optional status filter.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "wbs_add_task",
		Description: "Add a task as the last child of a parent task. Returns the new task with its identifier.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "wbs_remove_task",
		Description: "Remove a work package. Later siblings and their subtrees are renumbered to close the gap.",
	}, s.handleRemoveTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "wbs_set_planned_value",
		Description: "Set the planned value of a work package. The difference is added to every ancestor.",
	}, s.handleSetPlannedValue)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "wbs_set_actual_cost",
		Description: "Set the actual cost of a work package. The difference is added to every ancestor.",
	}, s.handleSetActualCost)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "wbs_set_status",
		Description: "Mark a work package in_progress or done. Parent tasks are done when all their children are.",
	}, s.handleSetStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "wbs_metrics",
		Description: "Get activity counts from the project event log: tasks added and removed, packages completed, value and cost changes.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "wbs_alerts",
		Description: "Evaluate and return active alerts (SPI or CPI below threshold, too many open work packages, stale project).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleTree(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, textOutput, error) {
	var out textOutput
	err := s.project.View(func(e *core.WBSEngine, store *core.TaskStore) error {
		out.Text = render.NewRenderer(e, s.renderOpts).Tree(store)
		return nil
	})
	if err != nil {
		return errorResult(fmt.Sprintf("rendering tree: %s", err)), textOutput{}, nil
	}
	return nil, out, nil
}

func (s *Server) handleGraph(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, textOutput, error) {
	var out textOutput
	err := s.project.View(func(e *core.WBSEngine, store *core.TaskStore) error {
		out.Text = render.NewRenderer(e, s.renderOpts).Graph(store)
		return nil
	})
	if err != nil {
		return errorResult(fmt.Sprintf("rendering graph: %s", err)), textOutput{}, nil
	}
	return nil, out, nil
}

func (s *Server) handleEVM(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, evmOutput, error) {
	var out evmOutput
	err := s.project.View(func(e *core.WBSEngine, store *core.TaskStore) error {
		sum := e.Summary(store)
		out = evmOutput{
			Project:              e.Name(store),
			PlannedValue:         sum.PlannedValue,
			ActualCost:           sum.ActualCost,
			CompletionPercentage: sum.CompletionPercentage,
			EarnedValue:          sum.EarnedValue,
			SPI:                  sum.SPI,
			SV:                   sum.SV,
			CPI:                  sum.CPI,
			CV:                   sum.CV,
		}
		return nil
	})
	if err != nil {
		return errorResult(fmt.Sprintf("computing earned value: %s", err)), evmOutput{}, nil
	}
	return nil, out, nil
}

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, taskOutput, error) {
	id, err := models.ParseTaskID(input.ID)
	if err != nil {
		return errorResult(err.Error()), taskOutput{}, nil
	}
	view, err := s.project.GetTask(id)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %q: %s", input.ID, err)), taskOutput{}, nil
	}
	out := taskToOutput(view)
	members, err := s.project.Members(id)
	if err != nil {
		return errorResult(fmt.Sprintf("getting members of %q: %s", input.ID, err)), taskOutput{}, nil
	}
	out.Members = members
	return nil, out, nil
}

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	views, err := s.project.ListTasks(core.TaskFilter(input.Filter))
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), listTasksOutput{}, nil
	}

	out := listTasksOutput{
		Tasks: make([]taskOutput, len(views)),
		Count: len(views),
	}
	for i, v := range views {
		out.Tasks[i] = taskToOutput(v)
	}
	return nil, out, nil
}

func (s *Server) handleAddTask(_ context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	parent, err := models.ParseTaskID(input.Parent)
	if err != nil {
		return errorResult(err.Error()), taskOutput{}, nil
	}
	if input.Name == "" {
		return errorResult("name is required"), taskOutput{}, nil
	}
	view, err := s.project.AddTask(parent, input.Name)
	if err != nil {
		return errorResult(err.Error()), taskOutput{}, nil
	}
	return nil, taskToOutput(view), nil
}

func (s *Server) handleRemoveTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, messageOutput, error) {
	id, err := models.ParseTaskID(input.ID)
	if err != nil {
		return errorResult(err.Error()), messageOutput{}, nil
	}
	view, err := s.project.RemoveTask(id)
	if err != nil {
		return errorResult(err.Error()), messageOutput{}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("removed task %s %q", view.ID, view.Name)}, nil
}

func (s *Server) handleSetPlannedValue(_ context.Context, _ *gomcp.CallToolRequest, input setValueInput) (*gomcp.CallToolResult, messageOutput, error) {
	id, err := models.ParseTaskID(input.ID)
	if err != nil {
		return errorResult(err.Error()), messageOutput{}, nil
	}
	if err := s.project.SetPlannedValue(id, input.Value); err != nil {
		return errorResult(err.Error()), messageOutput{}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("task %s planned value set to %s", input.ID, core.FormatFloat(input.Value))}, nil
}

func (s *Server) handleSetActualCost(_ context.Context, _ *gomcp.CallToolRequest, input setValueInput) (*gomcp.CallToolResult, messageOutput, error) {
	id, err := models.ParseTaskID(input.ID)
	if err != nil {
		return errorResult(err.Error()), messageOutput{}, nil
	}
	if err := s.project.SetActualCost(id, input.Value); err != nil {
		return errorResult(err.Error()), messageOutput{}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("task %s actual cost set to %s", input.ID, core.FormatFloat(input.Value))}, nil
}

func (s *Server) handleSetStatus(_ context.Context, _ *gomcp.CallToolRequest, input setStatusInput) (*gomcp.CallToolResult, messageOutput, error) {
	id, err := models.ParseTaskID(input.ID)
	if err != nil {
		return errorResult(err.Error()), messageOutput{}, nil
	}
	status, err := models.ParseTaskStatus(input.Status)
	if err != nil {
		return errorResult(err.Error()), messageOutput{}, nil
	}
	if err := s.project.SetStatus(id, status); err != nil {
		return errorResult(err.Error()), messageOutput{}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("task %s status set to %s", input.ID, status)}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (events may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	subtree := ""
	if input.Task != "" {
		id, err := models.ParseTaskID(input.Task)
		if err != nil {
			return errorResult(fmt.Sprintf("parsing task: %s", err)), emptyMetricsOutput(), nil
		}
		subtree = id.String()
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime, subtree)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}
	out := metricsOutput{
		TasksAdded:        metrics.TasksAdded,
		TasksRemoved:      metrics.TasksRemoved,
		PackagesCompleted: metrics.PackagesCompleted,
		PackagesReopened:  metrics.PackagesReopened,
		ValueChanges:      metrics.ValueChanges,
		CostChanges:       metrics.CostChanges,
		MemberChanges:     metrics.MemberChanges,
		DependencyChanges: metrics.DependencyChanges,
		TasksByStatus:     metrics.TasksByStatus,
		EventCount:        metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}
	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available (events may be disabled)"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

func taskToOutput(v models.TaskView) taskOutput {
	return taskOutput{
		ID:           v.ID,
		Name:         v.Name,
		PlannedValue: v.PlannedValue,
		ActualCost:   v.ActualCost,
		Status:       string(v.Status),
		IsLeaf:       v.IsLeaf(),
		NumChild:     v.NumChild,
		Dependencies: v.Dependencies,
		Members:      v.Members,
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{TasksByStatus: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
