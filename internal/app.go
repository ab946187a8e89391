// Package internal provides the App struct that wires all components of the
// wbs tool together and initializes the CLI layer.
package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/valter-silva-au/wbs/internal/cli"
	"github.com/valter-silva-au/wbs/internal/core"
	"github.com/valter-silva-au/wbs/internal/observability"
	"github.com/valter-silva-au/wbs/internal/render"
	"github.com/valter-silva-au/wbs/internal/storage"
	"github.com/valter-silva-au/wbs/pkg/models"
)

// Files kept next to the project file in the base path.
const (
	lockFileName     = ".wbs.lock"
	eventLogFileName = ".wbs_events.jsonl"
)

// App holds all service dependencies for the wbs tool.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Storage layer
	Store storage.ProjectStore

	// Core services
	Project core.ProjectManager

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of the wbs tool. basePath is the
// directory holding .wbsconfig and the project file (typically the current
// directory or WBS_HOME).
func NewApp(basePath string) (*App, error) {
	return newApp(basePath, afero.NewOsFs())
}

func newApp(basePath string, fsys afero.Fs) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	globalCfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(globalCfg); err != nil {
		return nil, err
	}
	app.Config = globalCfg

	// --- Storage layer ---
	projectPath := globalCfg.Project.File
	if !filepath.IsAbs(projectPath) {
		projectPath = filepath.Join(basePath, projectPath)
	}
	defFormat, err := storage.ParseFormat(globalCfg.Project.Format)
	if err != nil {
		return nil, err
	}
	app.Store = storage.NewProjectStore(fsys, projectPath, storage.FormatForPath(projectPath, defFormat))

	// --- Observability ---
	if globalCfg.Events.Enabled {
		app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, eventLogFileName))
		if err != nil {
			// Non-fatal: disable observability if log can't be created.
			app.EventLog = nil
		}
	}

	// --- Core services ---
	var evtAdapter core.EventLogger
	if app.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: app.EventLog}
	}
	app.Project = core.NewProjectManager(
		&projectStoreAdapter{store: app.Store},
		filepath.Join(basePath, lockFileName),
		evtAdapter,
	)

	status := &projectStatusAdapter{pm: app.Project}
	if app.EventLog != nil {
		thresholds := observability.DefaultAlertThresholds()
		thresholds.SPIThreshold = globalCfg.Alerts.SPIThreshold
		thresholds.CPIThreshold = globalCfg.Alerts.CPIThreshold
		if globalCfg.Alerts.MaxOpenPackages > 0 {
			thresholds.MaxOpenPackages = globalCfg.Alerts.MaxOpenPackages
		}
		app.AlertEngine = observability.NewAlertEngine(app.EventLog, status, thresholds)
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if globalCfg.Events.SlackWebhook != "" {
		// The project may not exist yet; the header then omits its name.
		name, _ := app.Project.Name()
		app.Notifier = observability.NewSlackNotifier(globalCfg.Events.SlackWebhook, name, status)
	}

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.ProjectFile = projectPath
	cli.Project = app.Project
	cli.RenderOpts = render.Options{
		Precision:        globalCfg.Render.Precision,
		WithDependencies: globalCfg.Render.WithDependencies,
	}

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the directory holding the project.
// It checks the WBS_HOME env var, then the nearest directory containing
// .wbsconfig, then falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("WBS_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	// Walk up to find a directory containing .wbsconfig.
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	// Fall back to cwd.
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// projectStoreAdapter adapts storage.ProjectStore to core.ProjectStore.
type projectStoreAdapter struct {
	store storage.ProjectStore
}

func (a *projectStoreAdapter) LoadProject() (string, map[string]models.TaskRecord, error) {
	pf, err := a.store.Load()
	if err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			return "", nil, core.ErrNoProject
		}
		return "", nil, err
	}
	records, err := pf.Records()
	if err != nil {
		return "", nil, err
	}
	return pf.Name, records, nil
}

func (a *projectStoreAdapter) SaveProject(name string, records map[string]models.TaskRecord) error {
	return a.store.Save(storage.NewProjectFile(name, records))
}

func (a *projectStoreAdapter) Exists() (bool, error) {
	return a.store.Exists()
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}

// projectStatusAdapter adapts core.ProjectManager to
// observability.ProjectStatusProvider.
type projectStatusAdapter struct {
	pm core.ProjectManager
}

func (a *projectStatusAdapter) ProjectStatus() (observability.ProjectStatus, error) {
	sum, err := a.pm.Summary()
	if err != nil {
		return observability.ProjectStatus{}, err
	}
	open, err := a.pm.ListTasks(core.FilterTodo)
	if err != nil {
		return observability.ProjectStatus{}, err
	}
	return observability.ProjectStatus{
		PlannedValue: sum.PlannedValue,
		ActualCost:   sum.ActualCost,
		SPI:          sum.SPI,
		CPI:          sum.CPI,
		OpenPackages: len(open),
	}, nil
}
