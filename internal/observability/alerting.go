package observability

import (
	"fmt"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	SPIThreshold    float64 `yaml:"spi_threshold" json:"spi_threshold"`
	CPIThreshold    float64 `yaml:"cpi_threshold" json:"cpi_threshold"`
	MaxOpenPackages int     `yaml:"max_open_packages" json:"max_open_packages"`
	StaleDays       int     `yaml:"stale_threshold_days" json:"stale_threshold_days"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		SPIThreshold:    0.9,
		CPIThreshold:    0.9,
		MaxOpenPackages: 50,
		StaleDays:       7,
	}
}

// ProjectStatus is the slice of project state the alert engine checks.
type ProjectStatus struct {
	PlannedValue float64
	ActualCost   float64
	SPI          float64
	CPI          float64
	OpenPackages int
}

// ProjectStatusProvider reports the project's current EVM state. Defining it
// here keeps observability independent of the core package.
type ProjectStatusProvider interface {
	ProjectStatus() (ProjectStatus, error)
}

// AlertEngine evaluates alert conditions against the project and its event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine by checking EVM thresholds and event recency.
type alertEngine struct {
	eventLog   EventLog
	project    ProjectStatusProvider
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates a new AlertEngine with the given EventLog, project
// status source and thresholds.
func NewAlertEngine(eventLog EventLog, project ProjectStatusProvider, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		eventLog:   eventLog,
		project:    project,
		thresholds: thresholds,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate checks all alert conditions, returning any triggered alerts.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := ae.now()
	status, err := ae.project.ProjectStatus()
	if err != nil {
		return nil, fmt.Errorf("reading project status: %w", err)
	}

	var alerts []Alert
	alerts = append(alerts, ae.checkSchedule(status, now)...)
	alerts = append(alerts, ae.checkCost(status, now)...)
	alerts = append(alerts, ae.checkOpenPackages(status, now)...)

	staleAlerts, err := ae.checkStale(status, now)
	if err != nil {
		return nil, fmt.Errorf("checking stale project: %w", err)
	}
	alerts = append(alerts, staleAlerts...)

	return alerts, nil
}

// checkSchedule fires when the project is behind schedule. A project without
// planned value has no schedule to be behind.
func (ae *alertEngine) checkSchedule(status ProjectStatus, now time.Time) []Alert {
	if status.PlannedValue <= 0 || status.SPI >= ae.thresholds.SPIThreshold {
		return nil
	}
	return []Alert{{
		ID:          "spi-below-threshold",
		Condition:   "spi_below_threshold",
		Severity:    SeverityHigh,
		Message:     fmt.Sprintf("schedule performance index %.2f is below %.2f", status.SPI, ae.thresholds.SPIThreshold),
		TriggeredAt: now,
	}}
}

// checkCost fires when earned value lags actual cost. Nothing has been spent
// on a project without actual cost, so no alert.
func (ae *alertEngine) checkCost(status ProjectStatus, now time.Time) []Alert {
	if status.ActualCost <= 0 || status.CPI >= ae.thresholds.CPIThreshold {
		return nil
	}
	return []Alert{{
		ID:          "cpi-below-threshold",
		Condition:   "cpi_below_threshold",
		Severity:    SeverityHigh,
		Message:     fmt.Sprintf("cost performance index %.2f is below %.2f", status.CPI, ae.thresholds.CPIThreshold),
		TriggeredAt: now,
	}}
}

// checkOpenPackages fires when too many work packages are still open.
func (ae *alertEngine) checkOpenPackages(status ProjectStatus, now time.Time) []Alert {
	if status.OpenPackages <= ae.thresholds.MaxOpenPackages {
		return nil
	}
	return []Alert{{
		ID:          "open-packages",
		Condition:   "too_many_open_packages",
		Severity:    SeverityLow,
		Message:     fmt.Sprintf("%d work packages are open, exceeding the maximum of %d", status.OpenPackages, ae.thresholds.MaxOpenPackages),
		TriggeredAt: now,
	}}
}

// checkStale fires when packages are open but the event log shows no activity
// for longer than the stale threshold.
func (ae *alertEngine) checkStale(status ProjectStatus, now time.Time) ([]Alert, error) {
	if status.OpenPackages == 0 || ae.thresholds.StaleDays <= 0 {
		return nil, nil
	}
	events, err := ae.eventLog.Read(EventFilter{})
	if err != nil {
		return nil, err
	}
	var last time.Time
	for _, event := range events {
		if event.Time.After(last) {
			last = event.Time
		}
	}
	if last.IsZero() {
		return nil, nil
	}

	threshold := time.Duration(ae.thresholds.StaleDays) * 24 * time.Hour
	if now.Sub(last) <= threshold {
		return nil, nil
	}
	return []Alert{{
		ID:          "project-stale",
		Condition:   "project_stale",
		Severity:    SeverityMedium,
		Message:     fmt.Sprintf("no project activity for more than %d days with %d work packages open", ae.thresholds.StaleDays, status.OpenPackages),
		TriggeredAt: now,
	}}, nil
}
