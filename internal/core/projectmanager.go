package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/valter-silva-au/wbs/pkg/models"
)

// ErrProjectExists is returned by Init when a project file is already present.
var ErrProjectExists = errors.New("project already initialized")

// ProjectManager is the single-writer front of the engine used by the CLI and
// the MCP server. Every call loads the project under a lock, applies one
// engine operation, saves, and releases the lock, so an add or remove always
// runs to completion before another reader or writer sees the store.
type ProjectManager interface {
	Init(name string) error
	Name() (string, error)

	AddTask(parent models.TaskID, name string) (models.TaskView, error)
	RemoveTask(id models.TaskID) (models.TaskView, error)
	SetPlannedValue(id models.TaskID, value float64) error
	SetActualCost(id models.TaskID, cost float64) error
	SetStatus(id models.TaskID, status models.TaskStatus) error
	AddDependency(id, dependsOn models.TaskID) error
	RemoveDependency(id, dependsOn models.TaskID) error
	AssignMember(id models.TaskID, member string) error
	RemoveMember(id models.TaskID, member string) error

	GetTask(id models.TaskID) (models.TaskView, error)
	Members(id models.TaskID) ([]string, error)
	ListTasks(filter TaskFilter) ([]models.TaskView, error)
	Summary() (EVMSummary, error)

	// View runs fn with read access to the loaded store. fn must not retain
	// the store or any task after it returns.
	View(fn func(e *WBSEngine, s *TaskStore) error) error
}

// TaskFilter selects work packages for ListTasks.
type TaskFilter string

const (
	FilterAll        TaskFilter = "all"
	FilterTodo       TaskFilter = "todo"
	FilterInProgress TaskFilter = "in_progress"
	FilterDone       TaskFilter = "done"
)

// projectManager implements ProjectManager on top of a ProjectStore. The
// in-process RWMutex serializes goroutines; the advisory file lock at
// lockPath serializes separate wbs processes sharing one project file.
type projectManager struct {
	mu          sync.RWMutex
	engine      *WBSEngine
	store       ProjectStore
	lockPath    string
	eventLogger EventLogger
}

// NewProjectManager creates a ProjectManager. eventLogger may be nil.
func NewProjectManager(store ProjectStore, lockPath string, eventLogger EventLogger) ProjectManager {
	return &projectManager{
		engine:      NewWBSEngine(),
		store:       store,
		lockPath:    lockPath,
		eventLogger: eventLogger,
	}
}

func (pm *projectManager) logEvent(eventType string, data map[string]any) {
	if pm.eventLogger != nil {
		_ = pm.eventLogger.LogEvent(eventType, data)
	}
}

// read loads the project under shared locks and hands it to fn.
func (pm *projectManager) read(fn func(s *TaskStore) error) error {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	unlock, err := rlockFile(pm.lockPath)
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	s, err := pm.load()
	if err != nil {
		return err
	}
	return fn(s)
}

// write loads the project under exclusive locks, applies fn and saves the
// result. Nothing is saved when fn fails.
func (pm *projectManager) write(fn func(s *TaskStore) error) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	unlock, err := lockFile(pm.lockPath)
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	s, err := pm.load()
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	if err := pm.store.SaveProject(pm.engine.Name(s), s.Records()); err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

func (pm *projectManager) load() (*TaskStore, error) {
	_, records, err := pm.store.LoadProject()
	if err != nil {
		return nil, err
	}
	s, err := RestoreTaskStore(records)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return s, nil
}

// Init creates a new project whose root task is named name.
func (pm *projectManager) Init(name string) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	unlock, err := lockFile(pm.lockPath)
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	exists, err := pm.store.Exists()
	if err != nil {
		return fmt.Errorf("initializing project: %w", err)
	}
	if exists {
		return fmt.Errorf("initializing project: %w", ErrProjectExists)
	}
	s := NewTaskStore()
	pm.engine.Construct(name, s)
	if err := pm.store.SaveProject(name, s.Records()); err != nil {
		return fmt.Errorf("initializing project: %w", err)
	}
	pm.logEvent("project.initialized", map[string]any{"name": name})
	return nil
}

func (pm *projectManager) Name() (string, error) {
	var name string
	err := pm.read(func(s *TaskStore) error {
		name = pm.engine.Name(s)
		return nil
	})
	return name, err
}

func (pm *projectManager) AddTask(parent models.TaskID, name string) (models.TaskView, error) {
	var view models.TaskView
	err := pm.write(func(s *TaskStore) error {
		t, err := pm.engine.AddTask(parent, name, s)
		if err != nil {
			return err
		}
		view = viewOf(t)
		return nil
	})
	if err != nil {
		return models.TaskView{}, fmt.Errorf("adding task: %w", err)
	}
	pm.logEvent("task.added", map[string]any{"id": view.ID, "parent": parent.String(), "name": name})
	return view, nil
}

func (pm *projectManager) RemoveTask(id models.TaskID) (models.TaskView, error) {
	var view models.TaskView
	err := pm.write(func(s *TaskStore) error {
		t, err := pm.engine.Remove(id, s)
		if err != nil {
			return err
		}
		view = viewOf(t)
		return nil
	})
	if err != nil {
		return models.TaskView{}, fmt.Errorf("removing task: %w", err)
	}
	// The view keeps the identifier the task had before removal.
	view.ID = id.String()
	pm.logEvent("task.removed", map[string]any{"id": view.ID, "name": view.Name})
	return view, nil
}

func (pm *projectManager) SetPlannedValue(id models.TaskID, value float64) error {
	if err := pm.write(func(s *TaskStore) error {
		return pm.engine.SetPlannedValue(id, value, s)
	}); err != nil {
		return fmt.Errorf("setting planned value: %w", err)
	}
	pm.logEvent("task.value_set", map[string]any{"id": id.String(), "planned_value": value})
	return nil
}

func (pm *projectManager) SetActualCost(id models.TaskID, cost float64) error {
	if err := pm.write(func(s *TaskStore) error {
		return pm.engine.SetActualCost(id, cost, s)
	}); err != nil {
		return fmt.Errorf("setting actual cost: %w", err)
	}
	pm.logEvent("task.cost_set", map[string]any{"id": id.String(), "actual_cost": cost})
	return nil
}

func (pm *projectManager) SetStatus(id models.TaskID, status models.TaskStatus) error {
	var old models.TaskStatus
	if err := pm.write(func(s *TaskStore) error {
		t, err := pm.engine.Lookup(id, s)
		if err != nil {
			return err
		}
		old = t.Status()
		return pm.engine.SetStatus(id, status, s)
	}); err != nil {
		return fmt.Errorf("setting status: %w", err)
	}
	pm.logEvent("task.status_changed", map[string]any{"id": id.String(), "old_status": string(old), "new_status": string(status)})
	return nil
}

func (pm *projectManager) AddDependency(id, dependsOn models.TaskID) error {
	if err := pm.write(func(s *TaskStore) error {
		return pm.engine.AddDependency(id, dependsOn, s)
	}); err != nil {
		return fmt.Errorf("adding dependency: %w", err)
	}
	pm.logEvent("task.dependency_added", map[string]any{"id": id.String(), "depends_on": dependsOn.String()})
	return nil
}

func (pm *projectManager) RemoveDependency(id, dependsOn models.TaskID) error {
	if err := pm.write(func(s *TaskStore) error {
		return pm.engine.RemoveDependency(id, dependsOn, s)
	}); err != nil {
		return fmt.Errorf("removing dependency: %w", err)
	}
	pm.logEvent("task.dependency_removed", map[string]any{"id": id.String(), "depends_on": dependsOn.String()})
	return nil
}

func (pm *projectManager) AssignMember(id models.TaskID, member string) error {
	if err := pm.write(func(s *TaskStore) error {
		return pm.engine.AssignMember(id, member, s)
	}); err != nil {
		return fmt.Errorf("assigning member: %w", err)
	}
	pm.logEvent("task.member_assigned", map[string]any{"id": id.String(), "member": member})
	return nil
}

func (pm *projectManager) RemoveMember(id models.TaskID, member string) error {
	if err := pm.write(func(s *TaskStore) error {
		return pm.engine.RemoveMember(id, member, s)
	}); err != nil {
		return fmt.Errorf("removing member: %w", err)
	}
	pm.logEvent("task.member_removed", map[string]any{"id": id.String(), "member": member})
	return nil
}

func (pm *projectManager) GetTask(id models.TaskID) (models.TaskView, error) {
	var view models.TaskView
	err := pm.read(func(s *TaskStore) error {
		t, err := pm.engine.Lookup(id, s)
		if err != nil {
			return err
		}
		view = viewOf(t)
		return nil
	})
	return view, err
}

func (pm *projectManager) Members(id models.TaskID) ([]string, error) {
	var members []string
	err := pm.read(func(s *TaskStore) error {
		var err error
		members, err = pm.engine.Members(id, s)
		return err
	})
	return members, err
}

func (pm *projectManager) ListTasks(filter TaskFilter) ([]models.TaskView, error) {
	var views []models.TaskView
	err := pm.read(func(s *TaskStore) error {
		var tasks []*Task
		switch filter {
		case FilterAll, "":
			tasks = pm.engine.Tasks(s)
		case FilterTodo:
			tasks = pm.engine.TodoTasks(s)
		case FilterInProgress:
			tasks = pm.engine.InProgressTasks(s)
		case FilterDone:
			tasks = pm.engine.DoneTasks(s)
		default:
			return fmt.Errorf("unknown task filter %q", filter)
		}
		views = make([]models.TaskView, len(tasks))
		for i, t := range tasks {
			views[i] = viewOf(t)
		}
		return nil
	})
	return views, err
}

func (pm *projectManager) Summary() (EVMSummary, error) {
	var sum EVMSummary
	err := pm.read(func(s *TaskStore) error {
		sum = pm.engine.Summary(s)
		return nil
	})
	return sum, err
}

func (pm *projectManager) View(fn func(e *WBSEngine, s *TaskStore) error) error {
	return pm.read(func(s *TaskStore) error {
		return fn(pm.engine, s)
	})
}

func viewOf(t *Task) models.TaskView {
	return models.TaskView{ID: t.ID().String(), TaskRecord: t.Record()}
}
