package models

import "fmt"

// TaskStatus represents the completion state of a task.
type TaskStatus string

const (
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// ParseTaskStatus accepts the persisted form and a few human spellings.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch s {
	case string(StatusInProgress), "inprogress", "InProgress", "in-progress", "todo":
		return StatusInProgress, nil
	case string(StatusDone), "Done":
		return StatusDone, nil
	default:
		return "", fmt.Errorf("unknown task status %q: must be in_progress or done", s)
	}
}

// Icon returns the glyph shown next to a task in rendered views.
func (s TaskStatus) Icon() string {
	if s == StatusDone {
		return "✔"
	}
	return "✗"
}

// TaskRecord is the plain, serializable form of a single task. The key it is
// stored under in a project file is the task's identifier text.
type TaskRecord struct {
	Name         string     `yaml:"name" json:"name" toml:"name"`
	PlannedValue float64    `yaml:"planned_value" json:"planned_value" toml:"planned_value"`
	ActualCost   float64    `yaml:"actual_cost" json:"actual_cost" toml:"actual_cost"`
	NumChild     uint32     `yaml:"num_child" json:"num_child" toml:"num_child"`
	Status       TaskStatus `yaml:"status" json:"status" toml:"status"`
	Dependencies []string   `yaml:"dependencies,omitempty" json:"dependencies,omitempty" toml:"dependencies,omitempty"`
	Dependents   []string   `yaml:"dependents,omitempty" json:"dependents,omitempty" toml:"dependents,omitempty"`
	Members      []string   `yaml:"members,omitempty" json:"members,omitempty" toml:"members,omitempty"`
}

// TaskView is a copy of one task handed out by the project manager. It stays
// valid after the project lock is released.
type TaskView struct {
	ID         string `yaml:"id" json:"id"`
	TaskRecord `yaml:",inline"`
}

// IsLeaf reports whether the task is a work package.
func (v TaskView) IsLeaf() bool { return v.NumChild == 0 }
