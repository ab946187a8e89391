package core

import (
	"errors"

	"github.com/valter-silva-au/wbs/pkg/models"
)

// ErrNoProject is returned when no project file has been initialized.
var ErrNoProject = errors.New("no project initialized: run 'wbs init'")

// ProjectStore is the subset of storage.ProjectStore that ProjectManager
// needs. It is defined locally in core to avoid importing storage; the
// adapter in the app package maps between the two.
type ProjectStore interface {
	// LoadProject returns the project name and its task records, or
	// ErrNoProject when nothing has been saved yet.
	LoadProject() (name string, records map[string]models.TaskRecord, err error)
	SaveProject(name string, records map[string]models.TaskRecord) error
	Exists() (bool, error)
}
