package observability

import (
	"fmt"
	"time"
)

// Metrics holds activity counts derived from the event log.
type Metrics struct {
	TasksAdded        int            `json:"tasks_added"`
	TasksRemoved      int            `json:"tasks_removed"`
	PackagesCompleted int            `json:"packages_completed"`
	PackagesReopened  int            `json:"packages_reopened"`
	ValueChanges      int            `json:"value_changes"`
	CostChanges       int            `json:"cost_changes"`
	MemberChanges     int            `json:"member_changes"`
	DependencyChanges int            `json:"dependency_changes"`
	TasksByStatus     map[string]int `json:"tasks_by_status"`
	Subtree           string         `json:"subtree,omitempty"`
	EventCount        int            `json:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log. A non-empty subtree
// limits the count to events about that task and its descendants.
type MetricsCalculator interface {
	Calculate(since time.Time, subtree string) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
// TasksByStatus counts status transitions by their target status.
func (mc *metricsCalculator) Calculate(since time.Time, subtree string) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since, Subtree: subtree})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		TasksByStatus: make(map[string]int),
		Subtree:       subtree,
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "task.added":
			m.TasksAdded++
		case "task.removed":
			m.TasksRemoved++
		case "task.value_set":
			m.ValueChanges++
		case "task.cost_set":
			m.CostChanges++
		case "task.member_assigned", "task.member_removed":
			m.MemberChanges++
		case "task.dependency_added", "task.dependency_removed":
			m.DependencyChanges++
		case "task.status_changed":
			status, ok := event.Data["new_status"].(string)
			if !ok {
				continue
			}
			m.TasksByStatus[status]++
			switch status {
			case "done":
				m.PackagesCompleted++
			case "in_progress":
				if old, _ := event.Data["old_status"].(string); old == "done" {
					m.PackagesReopened++
				}
			}
		}
	}

	return m, nil
}
