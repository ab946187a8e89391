package core

import (
	"fmt"
	"math"
	"slices"

	"github.com/valter-silva-au/wbs/pkg/models"
)

// ParentName is one (parent identifier text, task name) pair for Expand.
type ParentName struct {
	Parent string
	Name   string
}

// WBSEngine is the stateless set of operations over a TaskStore: structural
// mutation, aggregate propagation, completion propagation and EVM. Every
// method takes the store it acts on; the engine itself holds nothing.
type WBSEngine struct{}

// NewWBSEngine returns a WBSEngine.
func NewWBSEngine() *WBSEngine {
	return &WBSEngine{}
}

// Construct inserts the root task named name into store.
func (e *WBSEngine) Construct(name string, store *TaskStore) *Task {
	root := newTask(models.RootTaskID(), name)
	store.insert(root)
	return root
}

// root returns the root task. Every valid store has one from construction
// until it is discarded, so a missing root is a programming error.
func (e *WBSEngine) root(store *TaskStore) *Task {
	root, ok := store.Get(models.RootTaskID())
	if !ok {
		panic("wbs: task store has no root task")
	}
	return root
}

// Name returns the project name carried by the root task.
func (e *WBSEngine) Name(store *TaskStore) string {
	return e.root(store).name
}

// PlannedValue returns the root's planned value, the project total.
func (e *WBSEngine) PlannedValue(store *TaskStore) float64 {
	return e.root(store).plannedValue
}

// ActualCost returns the root's actual cost, the project total.
func (e *WBSEngine) ActualCost(store *TaskStore) float64 {
	return e.root(store).actualCost
}

// Lookup returns the task stored under id.
func (e *WBSEngine) Lookup(id models.TaskID, store *TaskStore) (*Task, error) {
	return e.lookupMutable(id, store)
}

// lookupMutable is Lookup for callers inside the engine that go on to write
// the task's fields.
func (e *WBSEngine) lookupMutable(id models.TaskID, store *TaskStore) (*Task, error) {
	t, ok := store.Get(id)
	if !ok {
		return nil, &models.TaskError{Err: models.ErrTaskNotFound, ID: id}
	}
	return t, nil
}

// NextSibling returns the task following id under the same parent.
func (e *WBSEngine) NextSibling(id models.TaskID, store *TaskStore) (*Task, error) {
	next, err := id.NextSibling()
	if err != nil {
		return nil, &models.TaskError{Err: models.ErrNoNextSibling, ID: id}
	}
	t, err := e.Lookup(next, store)
	if err != nil {
		return nil, &models.TaskError{Err: models.ErrNoNextSibling, ID: id}
	}
	return t, nil
}

// PrevSibling returns the task preceding id under the same parent.
func (e *WBSEngine) PrevSibling(id models.TaskID, store *TaskStore) (*Task, error) {
	prev, err := id.PrevSibling()
	if err != nil {
		return nil, &models.TaskError{Err: models.ErrNoPrevSibling, ID: id}
	}
	t, err := e.Lookup(prev, store)
	if err != nil {
		return nil, &models.TaskError{Err: models.ErrNoPrevSibling, ID: id}
	}
	return t, nil
}

// AddTask appends a new leaf named name under parentID. The new task has zero
// aggregates and is in progress, and so is every ancestor up to the root.
func (e *WBSEngine) AddTask(parentID models.TaskID, name string, store *TaskStore) (*Task, error) {
	parent, err := e.lookupMutable(parentID, store)
	if err != nil {
		return nil, err
	}
	id, err := parentID.NewChild(parent.numChild + 1)
	if err != nil {
		return nil, err
	}
	task := newTask(id, name)

	// A work package that becomes a trunk hands its authored values and
	// members to its first child; trunk aggregates are sums only.
	if parent.IsLeaf() && !parentID.IsRoot() {
		task.plannedValue, task.actualCost = parent.plannedValue, parent.actualCost
		task.members, parent.members = parent.members, make(map[string]struct{})
	}
	parent.numChild++
	store.insert(task)

	if err := e.applyAlongPath(id, store, func(t *Task) {
		t.status = models.StatusInProgress
	}); err != nil {
		return nil, err
	}
	return task, nil
}

// Expand adds each (parent, name) pair in order, stopping at the first error.
func (e *WBSEngine) Expand(pairs []ParentName, store *TaskStore) error {
	for _, p := range pairs {
		parentID, err := models.ParseTaskID(p.Parent)
		if err != nil {
			return err
		}
		if _, err := e.AddTask(parentID, p.Name, store); err != nil {
			return err
		}
	}
	return nil
}

// applyAlongPath calls fn on every task from the root down to id inclusive.
func (e *WBSEngine) applyAlongPath(id models.TaskID, store *TaskStore, fn func(*Task)) error {
	for _, step := range id.Path() {
		t, err := e.lookupMutable(step, store)
		if err != nil {
			return err
		}
		fn(t)
	}
	return nil
}

// SetPlannedValue authors the planned value of a leaf and adds the difference
// to every ancestor, so trunks stay equal to the sum of their leaves.
func (e *WBSEngine) SetPlannedValue(id models.TaskID, value float64, store *TaskStore) error {
	parentID, err := id.Parent()
	if err != nil {
		return err
	}
	task, err := e.lookupMutable(id, store)
	if err != nil {
		return err
	}
	if task.IsTrunk() {
		return &models.TaskError{Err: models.ErrTrunkCannotChangeValue, ID: id}
	}
	if !validAmount(value) {
		return &models.TaskError{Err: models.ErrInvalidValue, ID: id}
	}
	diff := value - task.plannedValue
	task.plannedValue = value
	return e.applyAlongPath(parentID, store, func(t *Task) {
		t.plannedValue += diff
	})
}

// SetActualCost authors the actual cost of a leaf, adds the difference to
// every ancestor and then re-evaluates trunk completion from the task up.
func (e *WBSEngine) SetActualCost(id models.TaskID, cost float64, store *TaskStore) error {
	parentID, err := id.Parent()
	if err != nil {
		return err
	}
	task, err := e.lookupMutable(id, store)
	if err != nil {
		return err
	}
	if task.IsTrunk() {
		return &models.TaskError{Err: models.ErrTrunkCannotChangeCost, ID: id}
	}
	if !validAmount(cost) {
		return &models.TaskError{Err: models.ErrInvalidValue, ID: id}
	}
	diff := cost - task.actualCost
	task.actualCost = cost
	if err := e.applyAlongPath(parentID, store, func(t *Task) {
		t.actualCost += diff
	}); err != nil {
		return err
	}
	return e.reevaluateCompletion(id, store)
}

// validAmount reports whether v can be stored as a planned value or actual
// cost: finite and not negative.
func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// SetStatus moves a leaf between in progress and done, then re-evaluates
// trunk completion from the leaf up. Trunk status is always derived.
func (e *WBSEngine) SetStatus(id models.TaskID, status models.TaskStatus, store *TaskStore) error {
	task, err := e.lookupMutable(id, store)
	if err != nil {
		return err
	}
	if task.IsTrunk() || id.IsRoot() {
		return &models.TaskError{Err: models.ErrTrunkCannotChangeStatus, ID: id}
	}
	task.status = status
	return e.reevaluateCompletion(id, store)
}

// reevaluateCompletion walks from id to the root. Each trunk on the way is
// done exactly when all of its direct children are done. Leaves are left as
// they are: a leaf only changes status through SetStatus.
func (e *WBSEngine) reevaluateCompletion(id models.TaskID, store *TaskStore) error {
	path := id.Path()
	for i := len(path) - 1; i >= 0; i-- {
		t, err := e.lookupMutable(path[i], store)
		if err != nil {
			return err
		}
		if t.IsLeaf() {
			continue
		}
		done, err := e.childrenAreDone(t, store)
		if err != nil {
			return err
		}
		if done {
			t.status = models.StatusDone
		} else {
			t.status = models.StatusInProgress
		}
	}
	return nil
}

func (e *WBSEngine) childrenAreDone(t *Task, store *TaskStore) (bool, error) {
	for _, childID := range t.ChildIDs() {
		child, err := e.lookupMutable(childID, store)
		if err != nil {
			return false, err
		}
		if child.status != models.StatusDone {
			return false, nil
		}
	}
	return true, nil
}

// Remove deletes the leaf id and renumbers its later siblings so the parent's
// children stay exactly 1..num_child. Each later sibling's whole subtree is
// relabeled at the removal depth; this costs time proportional to the size of
// those subtrees. The sequence is not atomic: callers sharing a store must
// hold an exclusive lock for the whole call.
func (e *WBSEngine) Remove(id models.TaskID, store *TaskStore) (*Task, error) {
	task, err := e.lookupMutable(id, store)
	if err != nil {
		return nil, err
	}
	if task.IsTrunk() {
		return nil, &models.TaskError{Err: models.ErrTrunkCannotBeRemoved, ID: id}
	}
	parentID, err := id.Parent()
	if err != nil {
		return nil, err
	}

	// Zero the aggregates first so the ancestors no longer count this task.
	if err := e.SetActualCost(id, 0, store); err != nil {
		return nil, err
	}
	if err := e.SetPlannedValue(id, 0, store); err != nil {
		return nil, err
	}

	parent, err := e.lookupMutable(parentID, store)
	if err != nil {
		return nil, err
	}
	siblings := parent.ChildIDs()
	parent.numChild--

	removedIdx, _ := id.ChildIndex()
	depth := id.Depth() - 1
	store.delete(id)

	renamed := make(map[models.TaskID]models.TaskID)
	for _, sibling := range siblings {
		idx, _ := sibling.ChildIndex()
		if idx <= removedIdx {
			continue
		}
		if err := e.shift(sibling, depth, store, renamed); err != nil {
			return nil, err
		}
	}
	// The highest index at this depth is vacant after the shifts.
	store.delete(siblings[len(siblings)-1])

	e.relabelReferences(id, renamed, store)

	if err := e.reevaluateCompletion(parentID, store); err != nil {
		return nil, err
	}
	return task, nil
}

// shift relabels oldID and its entire subtree by decrementing the index at
// depth. The old entry is removed before the new one is inserted, and
// children are visited under their pre-shift identifiers.
func (e *WBSEngine) shift(oldID models.TaskID, depth int, store *TaskStore, renamed map[models.TaskID]models.TaskID) error {
	task, err := e.lookupMutable(oldID, store)
	if err != nil {
		return err
	}
	newID := oldID.Shifted(depth)
	if _, taken := store.Get(newID); taken {
		return fmt.Errorf("shifting %q: %w", oldID, &models.TaskError{Err: models.ErrBadTaskIDNum, ID: newID})
	}
	store.delete(oldID)
	task.id = newID
	store.insert(task)
	renamed[oldID] = newID

	for _, childID := range oldID.Children(task.numChild) {
		if err := e.shift(childID, depth, store, renamed); err != nil {
			return err
		}
	}
	return nil
}

// relabelReferences rewrites the inert dependency sets after a removal: the
// removed identifier is dropped and shifted identifiers take their new value.
func (e *WBSEngine) relabelReferences(removed models.TaskID, renamed map[models.TaskID]models.TaskID, store *TaskStore) {
	for _, t := range store.tasks {
		t.dependencies = relabelSet(t.dependencies, removed, renamed)
		t.dependents = relabelSet(t.dependents, removed, renamed)
	}
}

func relabelSet(set map[models.TaskID]struct{}, removed models.TaskID, renamed map[models.TaskID]models.TaskID) map[models.TaskID]struct{} {
	if len(set) == 0 {
		return set
	}
	out := make(map[models.TaskID]struct{}, len(set))
	for id := range set {
		if id == removed {
			continue
		}
		if to, ok := renamed[id]; ok {
			id = to
		}
		out[id] = struct{}{}
	}
	return out
}

// AddDependency records that id depends on dependsOn, and the inverse. The
// relation is inert: it is shown in rendered views and never used for
// ordering or validation.
func (e *WBSEngine) AddDependency(id, dependsOn models.TaskID, store *TaskStore) error {
	if id == dependsOn {
		return &models.TaskError{Err: models.ErrInvalidValue, ID: id}
	}
	task, err := e.lookupMutable(id, store)
	if err != nil {
		return err
	}
	target, err := e.lookupMutable(dependsOn, store)
	if err != nil {
		return err
	}
	task.dependencies[dependsOn] = struct{}{}
	target.dependents[id] = struct{}{}
	return nil
}

// RemoveDependency drops a dependency recorded by AddDependency. Removing a
// dependency that was never recorded is not an error.
func (e *WBSEngine) RemoveDependency(id, dependsOn models.TaskID, store *TaskStore) error {
	task, err := e.lookupMutable(id, store)
	if err != nil {
		return err
	}
	target, err := e.lookupMutable(dependsOn, store)
	if err != nil {
		return err
	}
	delete(task.dependencies, dependsOn)
	delete(target.dependents, id)
	return nil
}

// AssignMember assigns name to the leaf id. Members live only on the leaf
// they are assigned to; Members derives trunk membership on read.
func (e *WBSEngine) AssignMember(id models.TaskID, name string, store *TaskStore) error {
	task, err := e.lookupMutable(id, store)
	if err != nil {
		return err
	}
	if task.IsTrunk() {
		return &models.TaskError{Err: models.ErrTrunkCannotAddMember, ID: id, Member: name}
	}
	task.members[name] = struct{}{}
	return nil
}

// RemoveMember unassigns name from the leaf id.
func (e *WBSEngine) RemoveMember(id models.TaskID, name string, store *TaskStore) error {
	task, err := e.lookupMutable(id, store)
	if err != nil {
		return err
	}
	if task.IsTrunk() {
		return &models.TaskError{Err: models.ErrTrunkCannotRemoveMember, ID: id, Member: name}
	}
	if !task.HasMember(name) {
		return &models.TaskError{Err: models.ErrCannotRemoveMemberFromTask, ID: id, Member: name}
	}
	delete(task.members, name)
	return nil
}

// Members returns the sorted union of members assigned anywhere in the
// subtree rooted at id.
func (e *WBSEngine) Members(id models.TaskID, store *TaskStore) ([]string, error) {
	task, err := e.Lookup(id, store)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var walk func(t *Task) error
	walk = func(t *Task) error {
		for m := range t.members {
			seen[m] = struct{}{}
		}
		for _, childID := range t.ChildIDs() {
			child, err := e.Lookup(childID, store)
			if err != nil {
				return err
			}
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(task); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(seen))
	for m := range seen {
		names = append(names, m)
	}
	slices.Sort(names)
	return names, nil
}
