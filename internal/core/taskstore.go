package core

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/valter-silva-au/wbs/pkg/models"
)

// ErrCorruptStore is returned by RestoreTaskStore when the records violate a
// structural or aggregate invariant.
var ErrCorruptStore = errors.New("corrupt task store")

// aggregateTolerance bounds the relative rounding drift accepted when checking
// that a restored trunk equals the sum of its children. Setters add
// differences to ancestors, so large values drift by a few ulps.
const aggregateTolerance = 1e-9

// TaskStore is the exclusively-owned mapping from identifier to task. It is
// the sole holder of all node data; the WBSEngine mutates it and the renderer
// reads it. A TaskStore is not safe for concurrent use; see ProjectManager.
type TaskStore struct {
	tasks map[models.TaskID]*Task
}

// NewTaskStore returns an empty store. WBSEngine.Construct inserts its root.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[models.TaskID]*Task)}
}

// Len returns the number of tasks, root included.
func (s *TaskStore) Len() int {
	return len(s.tasks)
}

// Get returns the task stored under id.
func (s *TaskStore) Get(id models.TaskID) (*Task, bool) {
	t, ok := s.tasks[id]
	return t, ok
}

// IDs returns every identifier in depth-first order.
func (s *TaskStore) IDs() []models.TaskID {
	ids := make([]models.TaskID, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, models.TaskID.Compare)
	return ids
}

// Records returns the plain identifier-text to task-fields mapping consumed by
// persistence collaborators.
func (s *TaskStore) Records() map[string]models.TaskRecord {
	out := make(map[string]models.TaskRecord, len(s.tasks))
	for id, t := range s.tasks {
		out[id.String()] = t.Record()
	}
	return out
}

func (s *TaskStore) insert(t *Task) {
	s.tasks[t.id] = t
}

func (s *TaskStore) delete(id models.TaskID) {
	delete(s.tasks, id)
}

// RestoreTaskStore rebuilds a store from records produced by Records. It
// rejects input that breaks the parent-presence, contiguous-children or
// sum invariants, so a restored store is as trustworthy as one built through
// the engine.
func RestoreTaskStore(records map[string]models.TaskRecord) (*TaskStore, error) {
	s := NewTaskStore()
	for key, rec := range records {
		id, err := models.ParseTaskID(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptStore, err)
		}
		t := newTask(id, rec.Name)
		t.plannedValue = rec.PlannedValue
		t.actualCost = rec.ActualCost
		t.numChild = rec.NumChild
		t.status = models.StatusInProgress
		if rec.Status != "" {
			status, err := models.ParseTaskStatus(string(rec.Status))
			if err != nil {
				return nil, fmt.Errorf("%w: task %q: %w", ErrCorruptStore, id, err)
			}
			t.status = status
		}
		for _, m := range rec.Members {
			t.members[m] = struct{}{}
		}
		if err := parseIDSet(rec.Dependencies, t.dependencies); err != nil {
			return nil, err
		}
		if err := parseIDSet(rec.Dependents, t.dependents); err != nil {
			return nil, err
		}
		s.insert(t)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	s.resum()
	return s, nil
}

func parseIDSet(texts []string, into map[models.TaskID]struct{}) error {
	for _, text := range texts {
		id, err := models.ParseTaskID(text)
		if err != nil {
			return fmt.Errorf("%w: dependency: %w", ErrCorruptStore, err)
		}
		into[id] = struct{}{}
	}
	return nil
}

// validate checks every invariant the engine maintains.
func (s *TaskStore) validate() error {
	if _, ok := s.tasks[models.RootTaskID()]; !ok {
		return fmt.Errorf("%w: missing root task", ErrCorruptStore)
	}
	children := make(map[models.TaskID]uint32)
	for id := range s.tasks {
		if id.IsRoot() {
			continue
		}
		parentID, _ := id.Parent()
		parent, ok := s.tasks[parentID]
		if !ok {
			return fmt.Errorf("%w: task %q has no parent %q", ErrCorruptStore, id, parentID)
		}
		idx, _ := id.ChildIndex()
		if idx > parent.numChild {
			return fmt.Errorf("%w: task %q is outside its parent's %d children", ErrCorruptStore, id, parent.numChild)
		}
		children[parentID]++
	}
	for id, t := range s.tasks {
		if children[id] != t.numChild {
			return fmt.Errorf("%w: task %q declares %d children, found %d", ErrCorruptStore, id, t.numChild, children[id])
		}
		if t.IsLeaf() {
			continue
		}
		var pv, ac float64
		for _, childID := range t.ChildIDs() {
			child := s.tasks[childID]
			pv += child.plannedValue
			ac += child.actualCost
		}
		if !closeEnough(pv, t.plannedValue) || !closeEnough(ac, t.actualCost) {
			return fmt.Errorf("%w: task %q aggregates do not match its children", ErrCorruptStore, id)
		}
	}
	return nil
}

// resum recomputes every trunk's aggregates from its children, leaves
// first, so rounding drift does not carry over between saves.
func (s *TaskStore) resum() {
	ids := s.IDs()
	for i := len(ids) - 1; i >= 0; i-- {
		t := s.tasks[ids[i]]
		if t.IsLeaf() {
			continue
		}
		var pv, ac float64
		for _, childID := range t.ChildIDs() {
			child := s.tasks[childID]
			pv += child.plannedValue
			ac += child.actualCost
		}
		t.plannedValue, t.actualCost = pv, ac
	}
}

func closeEnough(sum, stored float64) bool {
	return math.Abs(sum-stored) <= aggregateTolerance*math.Max(1, math.Max(math.Abs(sum), math.Abs(stored)))
}
