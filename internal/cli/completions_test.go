package cli

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCompleteTaskIDs_NilProject(t *testing.T) {
	orig := Project
	defer func() { Project = orig }()
	Project = nil

	ids, directive := completeTaskIDs(false)(nil, nil, "")
	if ids != nil {
		t.Errorf("expected nil ids, got %v", ids)
	}
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v, want NoFileComp", directive)
	}
}

func TestCompleteTaskIDs_NoProjectFile(t *testing.T) {
	useProject(t, "")

	ids, directive := completeTaskIDs(false)(nil, nil, "")
	if ids != nil {
		t.Errorf("expected nil ids, got %v", ids)
	}
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v, want NoFileComp", directive)
	}
}

func TestCompleteTaskIDs(t *testing.T) {
	useSampleProject(t)

	tests := []struct {
		name       string
		leavesOnly bool
		toComplete string
		want       []string
	}{
		{"all tasks", false, "", []string{"1\tDesign", "2\tBuild", "2.1\tBackend", "2.2\tFrontend"}},
		{"work packages only", true, "", []string{"1\tDesign", "2.1\tBackend", "2.2\tFrontend"}},
		{"prefix", false, "2.", []string{"2.1\tBackend", "2.2\tFrontend"}},
		{"no match", false, "9", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, directive := completeTaskIDs(tt.leavesOnly)(nil, nil, tt.toComplete)
			if directive != cobra.ShellCompDirectiveNoFileComp {
				t.Errorf("directive = %v, want NoFileComp", directive)
			}
			if strings.Join(ids, "|") != strings.Join(tt.want, "|") {
				t.Errorf("ids = %q, want %q", ids, tt.want)
			}
		})
	}
}
