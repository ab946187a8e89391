package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/wbs/pkg/models"
)

// ProjectFileVersion is written into every saved project file.
const ProjectFileVersion = "1.0"

// Format names a serialization of the project file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// ErrProjectNotFound is returned by Load when the project file does not exist.
var ErrProjectNotFound = errors.New("project file not found")

// ParseFormat accepts the names used in configuration and file extensions.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported project format %q: use yaml, json or toml", s)
	}
}

// FormatForPath picks the format from the file extension, falling back to
// def when the extension is not recognized.
func FormatForPath(path string, def Format) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return def
}

// TaskEntry is one task as written to disk.
type TaskEntry struct {
	ID           string            `yaml:"id" json:"id" toml:"id"`
	Name         string            `yaml:"name" json:"name" toml:"name"`
	PlannedValue float64           `yaml:"planned_value" json:"planned_value" toml:"planned_value"`
	ActualCost   float64           `yaml:"actual_cost" json:"actual_cost" toml:"actual_cost"`
	NumChild     uint32            `yaml:"num_child" json:"num_child" toml:"num_child"`
	Status       models.TaskStatus `yaml:"status" json:"status" toml:"status"`
	Dependencies []string          `yaml:"dependencies,omitempty" json:"dependencies,omitempty" toml:"dependencies,omitempty"`
	Dependents   []string          `yaml:"dependents,omitempty" json:"dependents,omitempty" toml:"dependents,omitempty"`
	Members      []string          `yaml:"members,omitempty" json:"members,omitempty" toml:"members,omitempty"`
}

// ProjectFile is the top-level structure of the project file. Tasks are kept
// as a list sorted by identifier so saved files diff cleanly.
type ProjectFile struct {
	Version string      `yaml:"version" json:"version" toml:"version"`
	Name    string      `yaml:"name" json:"name" toml:"name"`
	Tasks   []TaskEntry `yaml:"tasks" json:"tasks" toml:"tasks"`
}

// NewProjectFile builds a file from the store's plain records.
func NewProjectFile(name string, records map[string]models.TaskRecord) *ProjectFile {
	pf := &ProjectFile{Version: ProjectFileVersion, Name: name, Tasks: make([]TaskEntry, 0, len(records))}
	for id, rec := range records {
		pf.Tasks = append(pf.Tasks, TaskEntry{
			ID:           id,
			Name:         rec.Name,
			PlannedValue: rec.PlannedValue,
			ActualCost:   rec.ActualCost,
			NumChild:     rec.NumChild,
			Status:       rec.Status,
			Dependencies: rec.Dependencies,
			Dependents:   rec.Dependents,
			Members:      rec.Members,
		})
	}
	sort.Slice(pf.Tasks, func(i, j int) bool {
		return compareIDText(pf.Tasks[i].ID, pf.Tasks[j].ID) < 0
	})
	return pf
}

// Records returns the identifier-text to record mapping for restoring a store.
func (pf *ProjectFile) Records() (map[string]models.TaskRecord, error) {
	out := make(map[string]models.TaskRecord, len(pf.Tasks))
	for _, e := range pf.Tasks {
		if _, dup := out[e.ID]; dup {
			return nil, fmt.Errorf("project file: duplicate task %q", e.ID)
		}
		out[e.ID] = models.TaskRecord{
			Name:         e.Name,
			PlannedValue: e.PlannedValue,
			ActualCost:   e.ActualCost,
			NumChild:     e.NumChild,
			Status:       e.Status,
			Dependencies: e.Dependencies,
			Dependents:   e.Dependents,
			Members:      e.Members,
		}
	}
	return out, nil
}

// compareIDText orders identifier texts depth-first, falling back to plain
// text comparison for anything that does not parse.
func compareIDText(a, b string) int {
	ia, errA := models.ParseTaskID(a)
	ib, errB := models.ParseTaskID(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return ia.Compare(ib)
}

// ProjectStore reads and writes the project file.
type ProjectStore interface {
	Load() (*ProjectFile, error)
	Save(pf *ProjectFile) error
	Exists() (bool, error)
	Path() string
	Format() Format
}

type fileProjectStore struct {
	fs     afero.Fs
	path   string
	format Format
}

// NewProjectStore creates a ProjectStore for the file at path on fsys.
func NewProjectStore(fsys afero.Fs, path string, format Format) ProjectStore {
	return &fileProjectStore{fs: fsys, path: path, format: format}
}

func (s *fileProjectStore) Path() string   { return s.path }
func (s *fileProjectStore) Format() Format { return s.format }

func (s *fileProjectStore) Exists() (bool, error) {
	ok, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return false, fmt.Errorf("checking project file: %w", err)
	}
	return ok, nil
}

func (s *fileProjectStore) Load() (*ProjectFile, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading project %s: %w", s.path, ErrProjectNotFound)
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	pf, err := Decode(data, s.format)
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", s.path, err)
	}
	return pf, nil
}

func (s *fileProjectStore) Save(pf *ProjectFile) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("saving project: creating directory: %w", err)
	}
	data, err := Encode(pf, s.format)
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("saving project: writing file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("saving project: replacing file: %w", err)
	}
	return nil
}

// Encode serializes pf in the given format.
func Encode(pf *ProjectFile, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(pf)
		if err != nil {
			return nil, fmt.Errorf("marshaling YAML: %w", err)
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(pf, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(pf); err != nil {
			return nil, fmt.Errorf("marshaling TOML: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported project format %q", format)
	}
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (*ProjectFile, error) {
	var pf ProjectFile
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("parsing TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported project format %q", format)
	}
	return &pf, nil
}
