package tree

import (
	"errors"
	"strings"
	"testing"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
)

func TestResolvePath(t *testing.T) {
	tr := sample(t)

	tests := []struct {
		name       string
		mark       string
		option     string
		wantModel  string
		wantErr    bool
		suggestion string
	}{
		{name: "color red", mark: "Color", option: "Red", wantModel: "Sedan"},
		{name: "color blue", mark: "Color", option: "Blue", wantModel: "Coupe"},
		{name: "trim base", mark: "Trim", option: "Base", wantModel: "Sedan"},
		{name: "typo in mark", mark: "Colr", option: "Red", wantErr: true, suggestion: "'Color'"},
		{name: "typo in option", mark: "Color", option: "Bleu", wantErr: true, suggestion: "'Blue'"},
		{name: "option under wrong mark", mark: "Trim", option: "Red", wantErr: true},
		{name: "names are case-sensitive", mark: "color", option: "Red", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := tr.ResolvePath(tt.mark, tt.option)
			if tt.wantErr {
				if !errors.Is(err, vehErrors.ErrNotFound) {
					t.Fatalf("ResolvePath() error = %v, want NotFound", err)
				}
				var e *vehErrors.Error
				errors.As(err, &e)
				if tt.suggestion != "" && !strings.Contains(e.Suggestion, tt.suggestion) {
					t.Errorf("Suggestion = %q, want it to contain %q", e.Suggestion, tt.suggestion)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolvePath() failed: %v", err)
			}
			if ref.Name != tt.wantModel {
				t.Errorf("model = %q, want %q", ref.Name, tt.wantModel)
			}
		})
	}
}

func TestResolvePath_NoModel(t *testing.T) {
	tr := New("")
	color := mustMark(t, tr, "Color")
	mustOption(t, tr, color, "Red")

	if _, err := tr.ResolvePath("Color", "Red"); !errors.Is(err, vehErrors.ErrNotFound) {
		t.Errorf("ResolvePath() error = %v, want NotFound", err)
	}
	if tr.Complete(color) {
		t.Error("Complete() = true for an option without a model")
	}
}

func TestMarksAndOptions_Order(t *testing.T) {
	tr := New("")
	for _, name := range []string{"Wheels", "Color", "Audio"} {
		mustMark(t, tr, name)
	}
	got := tr.MarkNames()
	want := []string{"Wheels", "Color", "Audio"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("MarkNames() = %v, want insertion order %v", got, want)
	}

	marks := tr.Marks()
	if len(marks) != 3 {
		t.Fatalf("len(Marks()) = %d, want 3", len(marks))
	}
	if _, err := tr.Options(marks[1]); err != nil {
		t.Errorf("Options() failed: %v", err)
	}
	if _, err := tr.Options(MarkID(tr.AndOrTree())); !errors.Is(err, vehErrors.ErrNotFound) {
		t.Errorf("Options(and-or-tree) error = %v, want NotFound", err)
	}
}
