package main

import (
	"encoding/json"
	"strings"
	"testing"

	"mercator-hq/configurator/pkg/cli"
	"mercator-hq/configurator/pkg/vehicle/tree"
)

func resetTreeFlags(path, format string) {
	treeFlags.tree = path
	treeFlags.format = format
	treeFlags.limit = 0
}

func TestTreeShow(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"text", []string{"Line 2024\n", "  Color\n", "    Red -> Sedan\n", "    Blue [OR] -> Coupe\n", "  Trim\n"}},
		{"csv", []string{"mark,option,group,model\n", "Color,Blue,OR,Coupe\n", "Trim,Base,AND,Sedan\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resetTreeFlags("testdata/tree.xml", tt.format)
			out, err := runCommand(t, showTree)
			if err != nil {
				t.Fatalf("tree show failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestTreeShowJSON(t *testing.T) {
	resetTreeFlags("testdata/tree.xml", "json")
	out, err := runCommand(t, showTree)
	if err != nil {
		t.Fatalf("tree show failed: %v", err)
	}

	var outline tree.Outline
	if err := json.Unmarshal([]byte(out), &outline); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if outline.Name != "Line 2024" || len(outline.Marks) != 2 {
		t.Fatalf("outline = %+v", outline)
	}
	base := outline.Marks[1].Options[0]
	if len(base.ModelDetails) != 1 || base.ModelDetails[0].Value != "1.6" {
		t.Errorf("model details = %+v", base.ModelDetails)
	}
}

func TestTreeResolve(t *testing.T) {
	resetTreeFlags("testdata/tree.xml", "text")
	out, err := runCommand(t, resolveTree, "Color", "Blue")
	if err != nil {
		t.Fatalf("tree resolve failed: %v", err)
	}
	if want := "Color=Blue -> Coupe\n"; out != want {
		t.Errorf("resolve = %q, want %q", out, want)
	}

	_, err = runCommand(t, resolveTree, "Colour", "Blue")
	if got := cli.ExitCode(err); got != cli.ExitSelection {
		t.Errorf("unknown mark exit code = %d, want %d (err: %v)", got, cli.ExitSelection, err)
	}

	resetTreeFlags("testdata/missing.xml", "text")
	_, err = runCommand(t, resolveTree, "Color", "Blue")
	if got := cli.ExitCode(err); got != cli.ExitIO {
		t.Errorf("missing tree exit code = %d, want %d", got, cli.ExitIO)
	}
}

func TestTreeEnumerate(t *testing.T) {
	resetTreeFlags("testdata/tree.xml", "json")
	out, err := runCommand(t, enumerateTree)
	if err != nil {
		t.Fatalf("tree enumerate failed: %v", err)
	}
	var paths []string
	if err := json.Unmarshal([]byte(out), &paths); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := []string{"Color=Red&Trim=Base", "Color=Blue&Trim=Base"}
	if strings.Join(paths, " ") != strings.Join(want, " ") {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	resetTreeFlags("testdata/tree.xml", "text")
	treeFlags.limit = 1
	out, err = runCommand(t, enumerateTree)
	if err != nil {
		t.Fatalf("tree enumerate --limit 1 failed: %v", err)
	}
	if strings.Count(out, "Color=") != 1 {
		t.Errorf("limit 1 printed:\n%s", out)
	}

	treeFlags.limit = -1
	if _, err := runCommand(t, enumerateTree); err == nil {
		t.Error("expected error for negative limit")
	}
}

func TestTreeFormatValidation(t *testing.T) {
	resetTreeFlags("testdata/tree.xml", "yaml")
	if _, err := runCommand(t, showTree); err == nil {
		t.Error("expected error for unknown format")
	}
}
