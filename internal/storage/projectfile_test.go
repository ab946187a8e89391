package storage

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valter-silva-au/wbs/pkg/models"
)

func sampleRecords() map[string]models.TaskRecord {
	return map[string]models.TaskRecord{
		"":    {Name: "Project", PlannedValue: 9.5, ActualCost: 2, NumChild: 2, Status: models.StatusInProgress},
		"1":   {Name: "Design", PlannedValue: 4, NumChild: 1, Status: models.StatusDone},
		"1.1": {Name: "Sketch", PlannedValue: 4, Status: models.StatusDone, Members: []string{"ana"}},
		"2":   {Name: "Build", PlannedValue: 5.5, ActualCost: 2, Status: models.StatusInProgress, Dependencies: []string{"1.1"}},
		"10":  {Name: "Ordering check"},
	}
}

func TestNewProjectFile_SortsByIdentifier(t *testing.T) {
	pf := NewProjectFile("Project", sampleRecords())

	var ids []string
	for _, e := range pf.Tasks {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"", "1", "1.1", "2", "10"}, ids)
	assert.Equal(t, ProjectFileVersion, pf.Version)
}

func TestProjectStore_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatJSON, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			store := NewProjectStore(fsys, "/work/wbs."+string(format), format)

			ok, err := store.Exists()
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Save(NewProjectFile("Project", sampleRecords())))

			ok, err = store.Exists()
			require.NoError(t, err)
			assert.True(t, ok)

			pf, err := store.Load()
			require.NoError(t, err)
			assert.Equal(t, "Project", pf.Name)

			got, err := pf.Records()
			require.NoError(t, err)
			assert.Equal(t, sampleRecords(), got)

			tmp, err := afero.Exists(fsys, store.Path()+".tmp")
			require.NoError(t, err)
			assert.False(t, tmp, "temporary file must not be left behind")
		})
	}
}

func TestProjectStore_LoadMissing(t *testing.T) {
	store := NewProjectStore(afero.NewMemMapFs(), "/nope/wbs.yaml", FormatYAML)
	_, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProjectNotFound))
}

func TestProjectStore_LoadMalformed(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/w/wbs.json", []byte("{not json"), 0o600))

	_, err := NewProjectStore(fsys, "/w/wbs.json", FormatJSON).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing JSON")
}

func TestProjectFile_DuplicateID(t *testing.T) {
	pf := &ProjectFile{Tasks: []TaskEntry{{ID: "1"}, {ID: "1"}}}
	_, err := pf.Records()
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{".yml", FormatYAML, false},
		{"JSON", FormatJSON, false},
		{".toml", FormatTOML, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatTOML, FormatForPath("plan.toml", FormatYAML))
	assert.Equal(t, FormatJSON, FormatForPath("/a/b/plan.json", FormatYAML))
	assert.Equal(t, FormatYAML, FormatForPath("plan.wbs", FormatYAML))
}
