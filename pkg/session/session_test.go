package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"mercator-hq/configurator/pkg/archive"
	"mercator-hq/configurator/pkg/archive/storage"
	"mercator-hq/configurator/pkg/config"
	"mercator-hq/configurator/pkg/telemetry/logging"
	"mercator-hq/configurator/pkg/telemetry/metrics"
	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/engine"
	"mercator-hq/configurator/pkg/vehicle/serializer"
	"mercator-hq/configurator/pkg/vehicle/solution"
	"mercator-hq/configurator/pkg/vehicle/tree"
)

// writeTree saves a tree with Color{Red, Blue} -> Sedan and Trim{Base} ->
// Sedan to dir/data.xml.
func writeTree(t *testing.T, dir string) string {
	t.Helper()
	tr := tree.New("Line 2024")
	color, _ := tr.AddMark("Color")
	for _, name := range []string{"Red", "Blue"} {
		o, _ := tr.AddOption(color, name)
		tr.AddModelRef(o, "Sedan")
	}
	trim, _ := tr.AddMark("Trim")
	base, _ := tr.AddOption(trim, "Base")
	tr.AddModelRef(base, "Sedan")

	path := filepath.Join(dir, "data.xml")
	if _, err := serializer.WriteTree(path, tr); err != nil {
		t.Fatalf("WriteTree() failed: %v", err)
	}
	return path
}

type fixture struct {
	session *Session
	store   *storage.MemoryStorage
	rec     *archive.Recorder
	dir     string
}

func open(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewMemoryStorage()
	rec := archive.NewRecorder(store, nil, nil, logging.Discard())
	t.Cleanup(func() { rec.Close() })

	s, err := Open(context.Background(), Options{
		TreePath:         writeTree(t, dir),
		Archive:          rec,
		Logger:           logging.Discard(),
		DebounceInterval: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return &fixture{session: s, store: store, rec: rec, dir: dir}
}

// actions flushes the recorder and returns the archived actions in order.
func (f *fixture) actions(t *testing.T) []archive.Action {
	t.Helper()
	f.rec.Close()
	records, err := f.store.Query(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]archive.Action, len(records))
	for i, r := range records {
		out[i] = r.Action
	}
	return out
}

func build(t *testing.T, s *Session, option, price string) *solution.Solution {
	t.Helper()
	sol, _, err := s.Build(context.Background(), engine.BuildRequest{
		Selections: []solution.Selection{{Mark: "Color", Option: option}, {Mark: "Trim", Option: "Base"}},
		Price:      decimal.RequireFromString(price),
	})
	if err != nil {
		t.Fatalf("Build(%s) failed: %v", option, err)
	}
	return sol
}

func TestOpen(t *testing.T) {
	f := open(t)
	s := f.session

	if s.ID() == "" {
		t.Error("ID() is empty")
	}
	data, _ := os.ReadFile(s.opts.TreePath)
	if got, want := s.TreeRef(), solution.TreeRef(data); got != want {
		t.Errorf("TreeRef() = %s, want %s", got, want)
	}
	s.View(func(tr *tree.ConfigTree) {
		if names := tr.MarkNames(); len(names) != 2 {
			t.Errorf("MarkNames() = %v, want 2 marks", names)
		}
	})

	if _, err := Open(context.Background(), Options{}); err == nil {
		t.Error("Open() without a tree path succeeded")
	}
	_, err := Open(context.Background(), Options{TreePath: filepath.Join(f.dir, "missing.xml"), Logger: logging.Discard()})
	if vehErrors.TypeOf(err) != vehErrors.ErrorTypeIO {
		t.Errorf("Open(missing) error type = %q, want io", vehErrors.TypeOf(err))
	}
}

func TestSession_EditIsAtomic(t *testing.T) {
	s := open(t).session

	err := s.Edit(func(tr *tree.ConfigTree) error {
		color, _ := tr.FindMark("Color")
		if _, err := tr.AddOption(color, "Green"); err != nil {
			return err
		}
		// Fails: duplicate name. The Green option must not survive.
		_, err := tr.AddOption(color, "Red")
		return err
	})
	if vehErrors.TypeOf(err) != vehErrors.ErrorTypeDuplicateName {
		t.Fatalf("Edit() = %v, want duplicate name", err)
	}
	if s.Dirty() {
		t.Error("failed edit marked the session dirty")
	}
	s.View(func(tr *tree.ConfigTree) {
		color, _ := tr.FindMark("Color")
		if _, ok := tr.FindOption(color, "Green"); ok {
			t.Error("failed edit left a partial change")
		}
	})

	if err := s.Edit(func(tr *tree.ConfigTree) error {
		color, _ := tr.FindMark("Color")
		_, err := tr.AddOption(color, "Green")
		return err
	}); err != nil {
		t.Fatalf("Edit() failed: %v", err)
	}
	if !s.Dirty() {
		t.Error("Dirty() = false after an edit")
	}
}

func TestSession_SaveAndReloadTree(t *testing.T) {
	f := open(t)
	s := f.session
	before := s.TreeRef()

	s.Edit(func(tr *tree.ConfigTree) error {
		trim, _ := tr.FindMark("Trim")
		o, err := tr.AddOption(trim, "Sport")
		if err != nil {
			return err
		}
		_, err = tr.AddModelRef(o, "Coupe")
		return err
	})
	if err := s.SaveTree(context.Background(), ""); err != nil {
		t.Fatalf("SaveTree() failed: %v", err)
	}
	if s.Dirty() {
		t.Error("Dirty() = true after save")
	}
	if s.TreeRef() == before {
		t.Error("TreeRef() unchanged after saving an edit")
	}

	// Saving elsewhere leaves the reference alone.
	saved := s.TreeRef()
	if err := s.SaveTree(context.Background(), filepath.Join(f.dir, "copy.xml")); err != nil {
		t.Fatal(err)
	}
	if s.TreeRef() != saved {
		t.Error("saving a copy changed TreeRef()")
	}

	// Reload discards unsaved edits.
	s.Edit(func(tr *tree.ConfigTree) error {
		color, _ := tr.FindMark("Color")
		_, err := tr.AddOption(color, "Green")
		return err
	})
	changed, err := s.ReloadTree(context.Background())
	if err != nil {
		t.Fatalf("ReloadTree() failed: %v", err)
	}
	if changed {
		t.Error("ReloadTree() reported a change for the file just saved")
	}
	s.View(func(tr *tree.ConfigTree) {
		color, _ := tr.FindMark("Color")
		if _, ok := tr.FindOption(color, "Green"); ok {
			t.Error("ReloadTree() kept an unsaved edit")
		}
	})

	want := []archive.Action{archive.ActionSaved, archive.ActionSaved}
	if got := f.actions(t); !equalActions(got, want) {
		t.Errorf("archived %v, want %v", got, want)
	}
}

func TestSession_SolutionLifecycle(t *testing.T) {
	f := open(t)
	s := f.session
	ctx := context.Background()

	red := build(t, s, "Red", "19990.50")
	build(t, s, "Blue", "20990.00")
	if _, _, err := s.Build(ctx, engine.BuildRequest{
		Selections: []solution.Selection{{Mark: "Color", Option: "Red"}, {Mark: "Trim", Option: "Base"}},
		Price:      decimal.RequireFromString("19990.50"),
	}); vehErrors.TypeOf(err) != vehErrors.ErrorTypeDuplicateName {
		t.Errorf("rebuilding the same solution = %v, want duplicate name", err)
	}
	if _, _, err := s.Build(ctx, engine.BuildRequest{
		Selections: []solution.Selection{{Mark: "Color", Option: "Green"}},
	}); err == nil {
		t.Error("Build() with an unknown option succeeded")
	}

	if got := s.Total().StringFixed(2); got != "40980.50" {
		t.Errorf("Total() = %s, want 40980.50", got)
	}

	solutionsPath := filepath.Join(f.dir, "solutions.xml")
	if err := s.SaveSolutions(ctx, solutionsPath); err != nil {
		t.Fatalf("SaveSolutions() failed: %v", err)
	}
	exportPath := filepath.Join(f.dir, "red.xml")
	if err := s.ExportSolution(ctx, 0, exportPath); err != nil {
		t.Fatalf("ExportSolution() failed: %v", err)
	}
	if err := s.ExportSolution(ctx, 5, exportPath); vehErrors.TypeOf(err) != vehErrors.ErrorTypeInvalidSelection {
		t.Errorf("ExportSolution(5) = %v, want invalid selection", err)
	}

	removed, err := s.RemoveSolution(ctx, 0)
	if err != nil {
		t.Fatalf("RemoveSolution() failed: %v", err)
	}
	if removed.Hash() != red.Hash() {
		t.Errorf("removed %s, want %s", removed.Hash(), red.Hash())
	}
	if len(s.Solutions()) != 1 {
		t.Errorf("len(Solutions()) = %d, want 1", len(s.Solutions()))
	}

	// Loading the saved document restores both.
	report, err := s.LoadSolutions(ctx, solutionsPath)
	if err != nil {
		t.Fatalf("LoadSolutions() failed: %v", err)
	}
	if report.Outdated {
		t.Error("report.Outdated = true for solutions built on the current tree")
	}
	if len(report.Verdicts) != 2 || len(report.Stale()) != 0 {
		t.Errorf("verdicts = %+v, want 2 fresh", report.Verdicts)
	}

	exported, err := s.opts.Parser.ParseSolutions(exportPath)
	if err != nil {
		t.Fatal(err)
	}
	if exported.Solutions.Len() != 1 {
		t.Errorf("exported document holds %d solutions, want 1", exported.Solutions.Len())
	}

	want := []archive.Action{
		archive.ActionBuilt, archive.ActionBuilt, archive.ActionSaved,
		archive.ActionExported, archive.ActionRemoved,
	}
	if got := f.actions(t); !equalActions(got, want) {
		t.Errorf("archived %v, want %v", got, want)
	}
}

func TestSession_CheckArchivesNewlyStale(t *testing.T) {
	f := open(t)
	s := f.session
	ctx := context.Background()

	build(t, s, "Red", "100")
	build(t, s, "Blue", "200")

	rename := func(from, to string) {
		t.Helper()
		err := s.Edit(func(tr *tree.ConfigTree) error {
			color, _ := tr.FindMark("Color")
			o, ok := tr.FindOption(color, from)
			if !ok {
				return errors.New("option not found")
			}
			return tr.Rename(tree.NodeID(o), to)
		})
		if err != nil {
			t.Fatalf("rename %s -> %s: %v", from, to, err)
		}
	}

	rename("Red", "Crimson")
	verdicts := s.Check(ctx)
	if verdicts[0].Fresh() || !verdicts[1].Fresh() {
		t.Fatalf("verdicts = %+v, want [stale fresh]", verdicts)
	}
	// Checking again reports the same but archives nothing new.
	s.Check(ctx)

	// The solution itself is untouched.
	if path := s.Solutions()[0].MarkPath(); path[0].Option != "Red" {
		t.Errorf("stale solution was modified: %v", path)
	}

	rename("Crimson", "Red")
	if v := s.Check(ctx); !v[0].Fresh() {
		t.Errorf("verdict after undoing the rename = %+v, want fresh", v[0])
	}

	want := []archive.Action{archive.ActionBuilt, archive.ActionBuilt, archive.ActionStale}
	if got := f.actions(t); !equalActions(got, want) {
		t.Errorf("archived %v, want %v", got, want)
	}
}

func TestSession_LoadOutdated(t *testing.T) {
	f := open(t)
	s := f.session
	ctx := context.Background()

	build(t, s, "Red", "100")
	path := filepath.Join(f.dir, "solutions.xml")
	if err := s.SaveSolutions(ctx, path); err != nil {
		t.Fatal(err)
	}

	s.Edit(func(tr *tree.ConfigTree) error {
		color, _ := tr.FindMark("Color")
		o, _ := tr.FindOption(color, "Red")
		return tr.RemoveNode(tree.NodeID(o))
	})
	if err := s.SaveTree(ctx, ""); err != nil {
		t.Fatal(err)
	}

	report, err := s.LoadSolutions(ctx, path)
	if err != nil {
		t.Fatalf("LoadSolutions() failed: %v", err)
	}
	if !report.Outdated {
		t.Error("report.Outdated = false after the tree changed")
	}
	if stale := report.Stale(); len(stale) != 1 {
		t.Errorf("Stale() = %+v, want one stale solution", stale)
	}
	if len(s.Solutions()) != 1 {
		t.Error("stale solution was dropped on load")
	}
}

func TestSession_Watch(t *testing.T) {
	f := open(t)
	s := f.session
	build(t, s, "Red", "100")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var changes []Change
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func(c Change) {
			mu.Lock()
			changes = append(changes, c)
			mu.Unlock()
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	tr := tree.New("Line 2024")
	color, _ := tr.AddMark("Color")
	blue, _ := tr.AddOption(color, "Blue")
	tr.AddModelRef(blue, "Sedan")
	trim, _ := tr.AddMark("Trim")
	base, _ := tr.AddOption(trim, "Base")
	tr.AddModelRef(base, "Sedan")
	data, err := serializer.WriteTree(s.opts.TreePath, tr)
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := len(changes)
		mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no change delivered after rewriting the tree")
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	c := changes[0]
	mu.Unlock()
	if c.Err != nil {
		t.Fatalf("change error: %v", c.Err)
	}
	if c.TreeRef != solution.TreeRef(data) {
		t.Errorf("change TreeRef = %s, want the new document's", c.TreeRef)
	}
	if len(c.Verdicts) != 1 || c.Verdicts[0].Fresh() {
		t.Errorf("verdicts = %+v, want the Red solution stale", c.Verdicts)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watch() did not return after cancel")
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var mu sync.Mutex
	calls := 0
	last := ""

	for _, name := range []string{"a", "b", "c"} {
		name := name
		d.Trigger(func() {
			mu.Lock()
			calls++
			last = name
			mu.Unlock()
		})
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	if calls != 1 || last != "c" {
		t.Errorf("calls = %d, last = %q; want one call to the last callback", calls, last)
	}
	mu.Unlock()

	d.Stop()
	d.Stop()
	d.Trigger(func() { t.Error("callback ran after Stop()") })
	time.Sleep(60 * time.Millisecond)
}

func equalActions(a, b []archive.Action) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestVerdicts_DoNotCountAsChecks(t *testing.T) {
	cfg := config.DefaultConfig().Telemetry.Metrics
	cfg.Enabled = true
	collector := metrics.NewCollector(&cfg, nil)

	s, err := Open(context.Background(), Options{
		TreePath: writeTree(t, t.TempDir()),
		Metrics:  collector,
		Logger:   logging.Discard(),
	})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	build(t, s, "Red", "100")

	const name = "vehicle_configurator_solutions_checked_total"
	for i := 0; i < 3; i++ {
		verdicts := s.Verdicts()
		if len(verdicts) != 1 || !verdicts[0].Fresh() {
			t.Fatalf("Verdicts() = %+v, want one fresh verdict", verdicts)
		}
	}
	if n, err := testutil.GatherAndCount(collector.Registry(), name); err != nil || n != 0 {
		t.Errorf("%s series after Verdicts() = %d (%v), want 0", name, n, err)
	}

	s.Check(context.Background())
	if n, err := testutil.GatherAndCount(collector.Registry(), name); err != nil || n != 2 {
		t.Errorf("%s series after Check() = %d (%v), want 2", name, n, err)
	}
}
