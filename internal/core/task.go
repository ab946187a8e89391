package core

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/valter-silva-au/wbs/pkg/models"
)

// Task is a node of the work breakdown structure. Its aggregate fields are
// unexported: only the WBSEngine setters may change them, which keeps every
// trunk's planned value and actual cost equal to the sum over its children.
type Task struct {
	name         string
	id           models.TaskID
	plannedValue float64
	actualCost   float64
	numChild     uint32
	status       models.TaskStatus

	// Dependencies and their inverse are recorded for display only.
	dependencies map[models.TaskID]struct{}
	dependents   map[models.TaskID]struct{}
	members      map[string]struct{}
}

func newTask(id models.TaskID, name string) *Task {
	return &Task{
		name:         name,
		id:           id,
		status:       models.StatusInProgress,
		dependencies: make(map[models.TaskID]struct{}),
		dependents:   make(map[models.TaskID]struct{}),
		members:      make(map[string]struct{}),
	}
}

func (t *Task) Name() string                  { return t.name }
func (t *Task) ID() models.TaskID             { return t.id }
func (t *Task) PlannedValue() float64         { return t.plannedValue }
func (t *Task) ActualCost() float64           { return t.actualCost }
func (t *Task) NumChild() uint32              { return t.numChild }
func (t *Task) Status() models.TaskStatus     { return t.status }
func (t *Task) IsTrunk() bool                 { return t.numChild > 0 }
func (t *Task) IsLeaf() bool                  { return t.numChild == 0 }
func (t *Task) ChildIDs() []models.TaskID     { return t.id.Children(t.numChild) }
func (t *Task) Dependencies() []models.TaskID { return sortedIDs(t.dependencies) }
func (t *Task) Dependents() []models.TaskID   { return sortedIDs(t.dependents) }

// Members returns the names assigned directly to this task, sorted.
func (t *Task) Members() []string {
	names := make([]string, 0, len(t.members))
	for m := range t.members {
		names = append(names, m)
	}
	slices.Sort(names)
	return names
}

// HasMember reports whether name is assigned directly to this task.
func (t *Task) HasMember(name string) bool {
	_, ok := t.members[name]
	return ok
}

// String renders the task's display form: identifier and name, then the
// aggregates and the status glyph. The root omits the identifier.
func (t *Task) String() string {
	aggregates := fmt.Sprintf("pv: %s, ac: %s %s", FormatFloat(t.plannedValue), FormatFloat(t.actualCost), t.status.Icon())
	if t.id.IsRoot() {
		return t.name + "\n" + aggregates
	}
	return fmt.Sprintf("%s - %s\n%s", t.id, t.name, aggregates)
}

// StringWithDependencies is String followed by the dependency identifiers,
// when there are any.
func (t *Task) StringWithDependencies() string {
	deps := t.Dependencies()
	if len(deps) == 0 {
		return t.String()
	}
	texts := make([]string, len(deps))
	for i, d := range deps {
		texts[i] = d.String()
	}
	return t.String() + "\ndeps: " + strings.Join(texts, ", ")
}

// Record returns the plain serializable form of the task.
func (t *Task) Record() models.TaskRecord {
	return models.TaskRecord{
		Name:         t.name,
		PlannedValue: t.plannedValue,
		ActualCost:   t.actualCost,
		NumChild:     t.numChild,
		Status:       t.status,
		Dependencies: idTexts(t.Dependencies()),
		Dependents:   idTexts(t.Dependents()),
		Members:      t.Members(),
	}
}

// FormatFloat renders a float at Go's shortest round-tripping precision
// without an exponent, e.g. 2 and 0.5.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sortedIDs(set map[models.TaskID]struct{}) []models.TaskID {
	ids := make([]models.TaskID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, models.TaskID.Compare)
	return ids
}

func idTexts(ids []models.TaskID) []string {
	if len(ids) == 0 {
		return nil
	}
	texts := make([]string, len(ids))
	for i, id := range ids {
		texts[i] = id.String()
	}
	return texts
}
