package session

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"mercator-hq/configurator/pkg/archive"
	"mercator-hq/configurator/pkg/telemetry/logging"
	"mercator-hq/configurator/pkg/telemetry/tracing"
	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/engine"
	"mercator-hq/configurator/pkg/vehicle/serializer"
	"mercator-hq/configurator/pkg/vehicle/solution"
)

// LoadReport describes a loaded solutions document.
type LoadReport struct {
	Path    string
	TreeRef string // As recorded in the document

	// Outdated is true when the document was derived from a tree other
	// than the session's. Its solutions are loaded anyway and checked.
	Outdated bool

	Verdicts []engine.Verdict
}

// Stale returns the verdicts that are not fresh.
func (r LoadReport) Stale() []engine.Verdict {
	var stale []engine.Verdict
	for _, v := range r.Verdicts {
		if !v.Fresh() {
			stale = append(stale, v)
		}
	}
	return stale
}

// Build resolves req against the current tree and adds the solution to
// the live collection. It returns the solution and its index.
func (s *Session) Build(ctx context.Context, req engine.BuildRequest) (sol *solution.Solution, index int, err error) {
	ctx, span := s.opts.Tracer.Start(ctx, "session.Build")
	defer func() { tracing.End(span, err) }()

	s.mu.Lock()
	sol, err = s.opts.Engine.Build(s.tree, req)
	if err == nil {
		index, err = s.solutions.Add(sol)
	}
	count, total := s.solutions.Len(), s.solutions.TotalPrice()
	ref := s.treeRef
	s.mu.Unlock()

	if err != nil {
		s.opts.Metrics.RecordBuildFailure()
		tracing.SetErrorType(span, string(vehErrors.TypeOf(err)))
		s.log(ctx).Warn("solution build failed", "error", err)
		return nil, -1, err
	}

	s.opts.Metrics.RecordSolutionBuilt(sol.ModelName())
	s.opts.Metrics.SetCollection(count, total.InexactFloat64())
	tracing.SetSolution(span, sol.Hash(), sol.ModelName())
	s.record(ctx, archive.Event{Action: archive.ActionBuilt, TreeRef: ref, Solution: sol})
	s.log(logging.WithSolution(ctx, sol.Hash())).Info("solution built",
		"model", sol.ModelName(),
		"index", index,
		"price", sol.Price().String(),
	)
	return sol, index, nil
}

// LoadSolutions replaces the live solutions with the document at path and
// checks every solution against the current tree.
func (s *Session) LoadSolutions(ctx context.Context, path string) (report LoadReport, err error) {
	ctx, span := s.opts.Tracer.Start(logging.WithDocument(ctx, path), "session.LoadSolutions")
	defer func() { tracing.End(span, err) }()

	start := time.Now()
	doc, err := s.opts.Parser.ParseSolutions(path)
	errType := string(vehErrors.TypeOf(err))
	s.opts.Metrics.RecordParse("solutions", errType, time.Since(start))
	if err != nil {
		tracing.SetErrorType(span, errType)
		s.log(ctx).Error("solutions parse failed", "error", err)
		return LoadReport{}, err
	}

	s.mu.Lock()
	doc.Solutions.SortByPrice(s.opts.Sort)
	s.solutions = doc.Solutions
	s.stale = make(map[string]bool)
	report = LoadReport{
		Path:     path,
		TreeRef:  doc.TreeRef,
		Outdated: doc.Outdated(s.treeRef),
	}
	var stale int
	report.Verdicts, stale = s.checkLocked(ctx)
	count, total := s.solutions.Len(), s.solutions.TotalPrice()
	s.mu.Unlock()

	s.opts.Metrics.SetCollection(count, total.InexactFloat64())
	tracing.SetDocument(span, path, doc.TreeRef)
	tracing.SetCheck(span, count, stale)

	logger := s.log(ctx)
	if report.Outdated {
		logger.Warn("solutions were derived from another tree",
			"document_tree_ref", doc.TreeRef,
			"tree_ref", s.TreeRef(),
		)
	}
	logger.Info("solutions loaded", "count", count, "stale", stale)
	return report, nil
}

// SaveSolutions writes the live solutions to path, bound to the session's
// tree reference.
func (s *Session) SaveSolutions(ctx context.Context, path string) (err error) {
	ctx, span := s.opts.Tracer.Start(logging.WithDocument(ctx, path), "session.SaveSolutions")
	defer func() { tracing.End(span, err) }()

	s.mu.RLock()
	doc := &solution.Document{TreeRef: s.treeRef, Solutions: s.solutions}
	err = serializer.WriteSolutions(path, doc)
	count, dirty := s.solutions.Len(), s.dirty
	s.mu.RUnlock()

	s.opts.Metrics.RecordSave("solutions", string(vehErrors.TypeOf(err)))
	if err != nil {
		tracing.SetErrorType(span, string(vehErrors.TypeOf(err)))
		return err
	}

	if dirty {
		s.log(ctx).Warn("solutions saved against a tree with unsaved edits", "tree_ref", doc.TreeRef)
	}
	tracing.SetDocument(span, path, doc.TreeRef)
	s.record(ctx, archive.Event{Action: archive.ActionSaved, TreeRef: doc.TreeRef, Document: path, Detail: "solutions"})
	s.log(ctx).Info("solutions saved", "count", count)
	return nil
}

// ExportSolution writes the solution at index to path as a single-solution
// document.
func (s *Session) ExportSolution(ctx context.Context, index int, path string) (err error) {
	ctx, span := s.opts.Tracer.Start(logging.WithDocument(ctx, path), "session.ExportSolution")
	defer func() { tracing.End(span, err) }()

	s.mu.RLock()
	doc := &solution.Document{TreeRef: s.treeRef, Solutions: s.solutions}
	sol, _ := s.solutions.At(index)
	err = serializer.WriteSolutionAt(path, doc, index)
	s.mu.RUnlock()

	s.opts.Metrics.RecordSave("solutions", string(vehErrors.TypeOf(err)))
	if err != nil {
		tracing.SetErrorType(span, string(vehErrors.TypeOf(err)))
		return err
	}

	tracing.SetSolution(span, sol.Hash(), sol.ModelName())
	s.record(ctx, archive.Event{Action: archive.ActionExported, TreeRef: doc.TreeRef, Document: path, Solution: sol})
	s.log(logging.WithSolution(ctx, sol.Hash())).Info("solution exported", "index", index)
	return nil
}

// RemoveSolution deletes the solution at index from the live collection.
func (s *Session) RemoveSolution(ctx context.Context, index int) (*solution.Solution, error) {
	s.mu.Lock()
	sol, err := s.solutions.Remove(index)
	if err == nil {
		delete(s.stale, sol.Hash())
	}
	count, total, ref := s.solutions.Len(), s.solutions.TotalPrice(), s.treeRef
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.opts.Metrics.SetCollection(count, total.InexactFloat64())
	s.record(ctx, archive.Event{Action: archive.ActionRemoved, TreeRef: ref, Solution: sol})
	s.log(logging.WithSolution(ctx, sol.Hash())).Info("solution removed", "index", index)
	return sol, nil
}

// Check validates every live solution against the current tree. Solutions
// that turned stale since the last check are archived. Stale solutions
// are reported, never changed or removed.
func (s *Session) Check(ctx context.Context) []engine.Verdict {
	ctx, span := s.opts.Tracer.Start(ctx, "session.Check")
	defer span.End()

	s.mu.Lock()
	verdicts, stale := s.checkLocked(ctx)
	s.mu.Unlock()

	tracing.SetCheck(span, len(verdicts), stale)
	return verdicts
}

// Verdicts validates every live solution against the current tree
// without archiving or counting the check.
func (s *Session) Verdicts() []engine.Verdict {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts.Engine.ValidateAll(s.solutions, s.tree)
}

// checkLocked runs the staleness check. The caller holds the write lock.
func (s *Session) checkLocked(ctx context.Context) ([]engine.Verdict, int) {
	verdicts := s.opts.Engine.ValidateAll(s.solutions, s.tree)

	stale := 0
	current := make(map[string]bool)
	for i, v := range verdicts {
		if v.Fresh() {
			continue
		}
		stale++
		current[v.Hash] = true
		if s.stale[v.Hash] {
			continue
		}
		sol, _ := s.solutions.At(i)
		s.record(ctx, archive.Event{Action: archive.ActionStale, TreeRef: s.treeRef, Detail: v.Reason, Solution: sol})
	}
	s.stale = current

	s.opts.Metrics.RecordCheck(len(verdicts)-stale, stale)
	return verdicts, stale
}

// Solutions returns the live solutions in order.
func (s *Session) Solutions() []*solution.Solution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.solutions.All()
}

// Total returns the sum of the live solutions' prices.
func (s *Session) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.solutions.TotalPrice()
}
