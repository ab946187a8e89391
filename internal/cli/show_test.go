package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/wbs/internal/render"
	"github.com/valter-silva-au/wbs/pkg/models"
)

func TestShowCmd(t *testing.T) {
	useSampleProject(t)
	origOpts, origDeps := RenderOpts, showDeps
	defer func() { RenderOpts, showDeps = origOpts, origDeps }()
	RenderOpts, showDeps = render.DefaultOptions(), false

	out, err := runCmd(showCmd)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"Website",
		"pv: 40, ac: 12 ✗",
		"├─ 1 - Design",
		"│  pv: 10, ac: 0 ✔",
		"└─ 2 - Build",
		"   pv: 30, ac: 12 ✗",
		"   ├─ 2.1 - Backend",
		"   │  pv: 30, ac: 12 ✗",
		"   └─ 2.2 - Frontend",
		"      pv: 0, ac: 0 ✗",
		"",
	}, "\n")
	if out != want {
		t.Errorf("show output =\n%s\nwant\n%s", out, want)
	}
}

func TestShowCmd_WithDependencies(t *testing.T) {
	pm := useSampleProject(t)
	origOpts, origDeps := RenderOpts, showDeps
	defer func() { RenderOpts, showDeps = origOpts, origDeps }()
	RenderOpts, showDeps = render.DefaultOptions(), true

	if err := pm.AddDependency(models.MustTaskID("2.2"), models.MustTaskID("2.1")); err != nil {
		t.Fatal(err)
	}
	out, err := runCmd(showCmd)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "deps: 2.1") {
		t.Errorf("show --deps output missing dependency:\n%s", out)
	}
}

func TestGraphCmd_Stdout(t *testing.T) {
	useSampleProject(t)
	origOpts, origOutput := RenderOpts, graphOutput
	defer func() { RenderOpts, graphOutput = origOpts, origOutput }()
	RenderOpts, graphOutput = render.DefaultOptions(), ""

	out, err := runCmd(graphCmd)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph G {\n") || !strings.HasSuffix(out, "}\n") {
		t.Errorf("graph output is not a digraph:\n%s", out)
	}
	if !strings.Contains(out, `"2 - Build\npv: 30, ac: 12 ✗" -> "2.1 - Backend\npv: 30, ac: 12 ✗"`) {
		t.Errorf("graph output missing Build -> Backend edge:\n%s", out)
	}
}

func TestGraphCmd_File(t *testing.T) {
	useSampleProject(t)
	origOpts, origOutput := RenderOpts, graphOutput
	defer func() { RenderOpts, graphOutput = origOpts, origOutput }()

	path := filepath.Join(t.TempDir(), "wbs.dot")
	RenderOpts, graphOutput = render.DefaultOptions(), path

	out, err := runCmd(graphCmd)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Graph written to "+path) {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("file content = %q", data)
	}
}

func TestShowGraphCmd_NilProject(t *testing.T) {
	orig := Project
	defer func() { Project = orig }()
	Project = nil

	if _, err := runCmd(showCmd); err == nil {
		t.Error("show: expected error when Project is nil")
	}
	if _, err := runCmd(graphCmd); err == nil {
		t.Error("graph: expected error when Project is nil")
	}
}
