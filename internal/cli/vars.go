package cli

import (
	"github.com/valter-silva-au/wbs/internal/core"
	"github.com/valter-silva-au/wbs/internal/observability"
	"github.com/valter-silva-au/wbs/internal/render"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath    string
	ProjectFile string
	Project     core.ProjectManager
	RenderOpts  = render.DefaultOptions()
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
