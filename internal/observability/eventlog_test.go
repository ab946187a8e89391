package observability

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEventLog_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	now := time.Now().UTC().Truncate(time.Millisecond)
	events := []Event{
		{
			Time:    now,
			Level:   "INFO",
			Type:    "task.added",
			Message: "task added",
			Data:    map[string]any{"id": "2.1"},
		},
		{
			Time:    now.Add(time.Second),
			Level:   "WARN",
			Type:    "task.status_changed",
			Message: "work package done",
			Data:    map[string]any{"id": "2.1", "new_status": "done"},
		},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result))
	}

	if result[0].Type != "task.added" {
		t.Errorf("expected type task.added, got %s", result[0].Type)
	}
	if result[0].Message != "task added" {
		t.Errorf("expected message 'task added', got %s", result[0].Message)
	}
	if result[1].Level != "WARN" {
		t.Errorf("expected level WARN, got %s", result[1].Level)
	}
}

func TestEventLog_FilterByType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	now := time.Now().UTC()
	events := []Event{
		{Time: now, Level: "INFO", Type: "task.added", Message: "added"},
		{Time: now.Add(time.Second), Level: "INFO", Type: "task.status_changed", Message: "status changed"},
		{Time: now.Add(2 * time.Second), Level: "INFO", Type: "task.added", Message: "another added"},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	result, err := log.Read(EventFilter{Type: "task.added"})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 events of type task.added, got %d", len(result))
	}

	for _, e := range result {
		if e.Type != "task.added" {
			t.Errorf("expected type task.added, got %s", e.Type)
		}
	}
}

func TestEventLog_FilterByTimeRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Time: base, Level: "INFO", Type: "task.added", Message: "first"},
		{Time: base.Add(time.Hour), Level: "INFO", Type: "task.added", Message: "second"},
		{Time: base.Add(2 * time.Hour), Level: "INFO", Type: "task.added", Message: "third"},
		{Time: base.Add(3 * time.Hour), Level: "INFO", Type: "task.added", Message: "fourth"},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	since := base.Add(30 * time.Minute)
	until := base.Add(2*time.Hour + 30*time.Minute)
	result, err := log.Read(EventFilter{Since: &since, Until: &until})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 events in time range, got %d", len(result))
	}

	if result[0].Message != "second" {
		t.Errorf("expected 'second', got %s", result[0].Message)
	}
	if result[1].Message != "third" {
		t.Errorf("expected 'third', got %s", result[1].Message)
	}
}

func TestEventLog_FilterByLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	now := time.Now().UTC()
	events := []Event{
		{Time: now, Level: "INFO", Type: "task.added", Message: "info event"},
		{Time: now.Add(time.Second), Level: "WARN", Type: "task.status_changed", Message: "warn event"},
		{Time: now.Add(2 * time.Second), Level: "ERROR", Type: "task.removed", Message: "error event"},
		{Time: now.Add(3 * time.Second), Level: "WARN", Type: "task.cost_set", Message: "another warn"},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	result, err := log.Read(EventFilter{Level: "WARN"})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 WARN events, got %d", len(result))
	}

	for _, e := range result {
		if e.Level != "WARN" {
			t.Errorf("expected level WARN, got %s", e.Level)
		}
	}
}

func TestEventLog_EmptyLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading empty log: %v", err)
	}

	if len(result) != 0 {
		t.Errorf("expected 0 events from empty log, got %d", len(result))
	}
}

func TestEventLog_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	const goroutines = 10
	const eventsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < eventsPerGoroutine; i++ {
				event := Event{
					Time:    time.Now().UTC(),
					Level:   "INFO",
					Type:    "task.added",
					Message: "concurrent event",
					Data:    map[string]any{"goroutine": id, "index": i},
				}
				if err := log.Write(event); err != nil {
					t.Errorf("concurrent write error: %v", err)
				}
			}
		}(g)
	}

	wg.Wait()

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events after concurrent writes: %v", err)
	}

	expected := goroutines * eventsPerGoroutine
	if len(result) != expected {
		t.Errorf("expected %d events, got %d", expected, len(result))
	}
}

func TestEventLog_AssignsIDAndTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	for i := 0; i < 2; i++ {
		if err := log.Write(Event{Level: "INFO", Type: "task.added"}); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}
	if err := log.Write(Event{ID: "fixed", Time: time.Unix(0, 0).UTC(), Type: "task.removed"}); err != nil {
		t.Fatalf("writing event: %v", err)
	}

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("expected 3 events, got %d", len(result))
	}
	for _, e := range result[:2] {
		if _, err := uuid.Parse(e.ID); err != nil {
			t.Errorf("expected a UUID event id, got %q", e.ID)
		}
		if e.Time.IsZero() {
			t.Error("expected a timestamp to be assigned")
		}
	}
	if result[0].ID == result[1].ID {
		t.Error("expected distinct event ids")
	}
	if result[2].ID != "fixed" || !result[2].Time.Equal(time.Unix(0, 0)) {
		t.Errorf("explicit id and time must be kept, got %q %v", result[2].ID, result[2].Time)
	}
}

func TestEventLog_FilterByTaskID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	for _, id := range []string{"1", "2.1", "1", "3"} {
		if err := log.Write(Event{Type: "task.value_set", Data: map[string]any{"id": id}}); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}
	if err := log.Write(Event{Type: "project.initialized"}); err != nil {
		t.Fatalf("writing event: %v", err)
	}

	result, err := log.Read(EventFilter{TaskID: "1"})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 events for task 1, got %d", len(result))
	}
}

func TestEventLog_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := os.WriteFile(path, []byte("{\"type\":\"task.added\"}\nnot json\n\n{\"type\":\"task.removed\"}\n"), 0o644); err != nil {
		t.Fatalf("seeding log: %v", err)
	}
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 well-formed events, got %d", len(result))
	}
}

func TestEventLog_FilterBySubtree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	for _, id := range []string{"2", "2.1", "2.1.3", "20", "1.2", ""} {
		if err := log.Write(Event{Type: "task.value_set", Data: map[string]any{"id": id}}); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}
	if err := log.Write(Event{Type: "project.initialized"}); err != nil {
		t.Fatalf("writing event: %v", err)
	}

	result, err := log.Read(EventFilter{Subtree: "2"})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	var got []string
	for _, e := range result {
		got = append(got, e.Data["id"].(string))
	}
	if len(got) != 3 || got[0] != "2" || got[1] != "2.1" || got[2] != "2.1.3" {
		t.Errorf("subtree 2 events = %v, want [2 2.1 2.1.3]", got)
	}
}
