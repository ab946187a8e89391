package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func TestMetricsCalculator_Calculate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Time: base, Type: "project.initialized", Data: map[string]any{"name": "Website"}},
		{Time: base.Add(time.Hour), Type: "task.added", Data: map[string]any{"id": "1", "parent": "", "name": "Design"}},
		{Time: base.Add(2 * time.Hour), Type: "task.added", Data: map[string]any{"id": "2", "parent": "", "name": "Build"}},
		{Time: base.Add(3 * time.Hour), Type: "task.value_set", Data: map[string]any{"id": "1", "planned_value": 10.0}},
		{Time: base.Add(4 * time.Hour), Type: "task.cost_set", Data: map[string]any{"id": "1", "actual_cost": 4.0}},
		{Time: base.Add(5 * time.Hour), Type: "task.status_changed", Data: map[string]any{"id": "1", "old_status": "in_progress", "new_status": "done"}},
		{Time: base.Add(6 * time.Hour), Type: "task.status_changed", Data: map[string]any{"id": "1", "old_status": "done", "new_status": "in_progress"}},
		{Time: base.Add(7 * time.Hour), Type: "task.member_assigned", Data: map[string]any{"id": "2", "member": "ana"}},
		{Time: base.Add(8 * time.Hour), Type: "task.dependency_added", Data: map[string]any{"id": "2", "depends_on": "1"}},
		{Time: base.Add(9 * time.Hour), Type: "task.dependency_removed", Data: map[string]any{"id": "2", "depends_on": "1"}},
		{Time: base.Add(10 * time.Hour), Type: "task.removed", Data: map[string]any{"id": "2", "name": "Build"}},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(base.Add(-time.Hour), "")
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}

	if m.TasksAdded != 2 {
		t.Errorf("expected 2 tasks added, got %d", m.TasksAdded)
	}
	if m.TasksRemoved != 1 {
		t.Errorf("expected 1 task removed, got %d", m.TasksRemoved)
	}
	if m.PackagesCompleted != 1 {
		t.Errorf("expected 1 package completed, got %d", m.PackagesCompleted)
	}
	if m.PackagesReopened != 1 {
		t.Errorf("expected 1 package reopened, got %d", m.PackagesReopened)
	}
	if m.ValueChanges != 1 || m.CostChanges != 1 {
		t.Errorf("expected 1 value and 1 cost change, got %d and %d", m.ValueChanges, m.CostChanges)
	}
	if m.MemberChanges != 1 {
		t.Errorf("expected 1 member change, got %d", m.MemberChanges)
	}
	if m.DependencyChanges != 2 {
		t.Errorf("expected 2 dependency changes, got %d", m.DependencyChanges)
	}
	if m.TasksByStatus["done"] != 1 || m.TasksByStatus["in_progress"] != 1 {
		t.Errorf("unexpected status counts %v", m.TasksByStatus)
	}
	if m.EventCount != len(events) {
		t.Errorf("expected %d events, got %d", len(events), m.EventCount)
	}
	if m.OldestEvent == nil || !m.OldestEvent.Equal(base) {
		t.Errorf("unexpected oldest event %v", m.OldestEvent)
	}
	if m.NewestEvent == nil || !m.NewestEvent.Equal(base.Add(10*time.Hour)) {
		t.Errorf("unexpected newest event %v", m.NewestEvent)
	}
}

func TestMetricsCalculator_EmptyLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	m, err := NewMetricsCalculator(log).Calculate(time.Time{}, "")
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.TasksAdded != 0 || m.EventCount != 0 {
		t.Errorf("expected empty metrics, got %+v", m)
	}
	if m.OldestEvent != nil || m.NewestEvent != nil {
		t.Error("expected no event timestamps")
	}
}

func TestMetricsCalculator_FiltersBySince(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{0, 48 * time.Hour} {
		e := Event{Time: base.Add(offset), Type: "task.added", Data: map[string]any{"id": string(rune('1' + i))}}
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	m, err := NewMetricsCalculator(log).Calculate(base.Add(24 * time.Hour), "")
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.TasksAdded != 1 {
		t.Errorf("expected 1 task added after since filter, got %d", m.TasksAdded)
	}
}

func TestMetricsCalculator_StatusWithoutData(t *testing.T) {
	log := &memEventLog{events: []Event{{Time: time.Now(), Type: "task.status_changed"}}}

	m, err := NewMetricsCalculator(log).Calculate(time.Time{}, "")
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.EventCount != 1 || len(m.TasksByStatus) != 0 || m.PackagesCompleted != 0 {
		t.Errorf("malformed status event must only be counted, got %+v", m)
	}
}

func TestMetricsCalculator_Subtree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Time: base, Type: "task.added", Data: map[string]any{"id": "1", "name": "Design"}},
		{Time: base, Type: "task.added", Data: map[string]any{"id": "2", "name": "Build"}},
		{Time: base, Type: "task.added", Data: map[string]any{"id": "2.1", "name": "Backend"}},
		{Time: base, Type: "task.cost_set", Data: map[string]any{"id": "2.1", "actual_cost": 12.0}},
		{Time: base, Type: "task.cost_set", Data: map[string]any{"id": "1", "actual_cost": 4.0}},
		{Time: base, Type: "task.status_changed", Data: map[string]any{"id": "2.1", "old_status": "in_progress", "new_status": "done"}},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	m, err := NewMetricsCalculator(log).Calculate(base.Add(-time.Hour), "2")
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.Subtree != "2" || m.EventCount != 4 {
		t.Errorf("subtree = %q, event count = %d, want 2 and 4", m.Subtree, m.EventCount)
	}
	if m.TasksAdded != 2 || m.CostChanges != 1 || m.PackagesCompleted != 1 {
		t.Errorf("metrics = %+v", m)
	}
}
