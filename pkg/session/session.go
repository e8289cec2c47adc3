package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/configurator/pkg/archive"
	"mercator-hq/configurator/pkg/telemetry/logging"
	"mercator-hq/configurator/pkg/telemetry/metrics"
	"mercator-hq/configurator/pkg/telemetry/tracing"
	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/engine"
	"mercator-hq/configurator/pkg/vehicle/parser"
	"mercator-hq/configurator/pkg/vehicle/serializer"
	"mercator-hq/configurator/pkg/vehicle/solution"
	"mercator-hq/configurator/pkg/vehicle/tree"
)

// Options configures a Session. Only TreePath is required; the rest
// default to components that do nothing or use default settings.
type Options struct {
	// TreePath is the tree document the session edits.
	TreePath string

	Engine  *engine.Engine
	Parser  *parser.Parser
	Archive *archive.Recorder
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
	Logger  *slog.Logger

	// Sort is the price order of the live solutions.
	Sort solution.Order

	// DebounceInterval coalesces file events in Watch.
	// Default: 250ms
	DebounceInterval time.Duration
}

// Session is one operator working on a tree and its solutions. All methods
// are safe for concurrent use.
type Session struct {
	id     string
	opts   Options
	logger *slog.Logger

	mu        sync.RWMutex
	tree      *tree.ConfigTree
	treeRef   string
	dirty     bool
	solutions *solution.Collection
	stale     map[string]bool // Hashes last reported stale
}

// Open loads the tree document at opts.TreePath and starts a session with
// no solutions.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.TreePath == "" {
		return nil, fmt.Errorf("session: tree path is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Engine == nil {
		opts.Engine = engine.New(opts.Logger)
	}
	if opts.Parser == nil {
		opts.Parser = parser.NewParser()
	}
	if opts.DebounceInterval <= 0 {
		opts.DebounceInterval = 250 * time.Millisecond
	}

	s := &Session{
		id:        uuid.New().String(),
		opts:      opts,
		solutions: solution.NewCollection(),
		stale:     make(map[string]bool),
	}
	s.solutions.SortByPrice(opts.Sort)
	s.logger = opts.Logger.With("component", "session", "session", s.id)

	t, ref, err := s.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	s.tree, s.treeRef = t, ref

	s.logger.Info("session opened", "tree", opts.TreePath, "tree_ref", ref)
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// TreeRef returns the reference of the tree document as last loaded or
// saved. Unsaved edits do not change it.
func (s *Session) TreeRef() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.treeRef
}

// Dirty reports whether the tree has edits that were not saved.
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// View calls fn with the current tree. fn must not modify or retain it.
func (s *Session) View(fn func(t *tree.ConfigTree)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.tree)
}

// Edit applies fn to a copy of the tree. The copy replaces the tree only
// when fn succeeds, so a failed edit leaves no partial change behind.
func (s *Session) Edit(fn func(t *tree.ConfigTree) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.tree.Clone()
	if err := fn(draft); err != nil {
		return err
	}
	s.tree = draft
	s.dirty = true
	return nil
}

// SaveTree writes the tree to path, or to the session's tree path when
// path is empty. The written document becomes the session's tree
// reference.
func (s *Session) SaveTree(ctx context.Context, path string) (err error) {
	if path == "" {
		path = s.opts.TreePath
	}
	ctx, span := s.opts.Tracer.Start(logging.WithDocument(ctx, path), "session.SaveTree")
	defer func() { tracing.End(span, err) }()

	s.mu.Lock()
	data, err := serializer.WriteTree(path, s.tree)
	if err != nil {
		s.mu.Unlock()
		s.opts.Metrics.RecordSave("tree", string(vehErrors.TypeOf(err)))
		tracing.SetErrorType(span, string(vehErrors.TypeOf(err)))
		return err
	}
	ref := solution.TreeRef(data)
	if path == s.opts.TreePath {
		s.treeRef = ref
		s.dirty = false
	}
	s.mu.Unlock()

	s.opts.Metrics.RecordSave("tree", "")
	tracing.SetDocument(span, path, ref)
	s.record(ctx, archive.Event{Action: archive.ActionSaved, TreeRef: ref, Document: path, Detail: "tree"})
	s.log(ctx).Info("tree saved", "tree_ref", ref)
	return nil
}

// ReloadTree replaces the tree with the document on disk, discarding
// unsaved edits. It reports whether the tree reference changed.
func (s *Session) ReloadTree(ctx context.Context) (changed bool, err error) {
	ctx, span := s.opts.Tracer.Start(ctx, "session.ReloadTree")
	defer func() { tracing.End(span, err) }()

	t, ref, err := s.loadTree(ctx)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	changed = ref != s.treeRef
	s.tree, s.treeRef, s.dirty = t, ref, false
	s.mu.Unlock()

	tracing.SetDocument(span, s.opts.TreePath, ref)
	s.log(ctx).Info("tree reloaded", "tree_ref", ref, "changed", changed)
	return changed, nil
}

// loadTree parses the tree document and records parse metrics.
func (s *Session) loadTree(ctx context.Context) (*tree.ConfigTree, string, error) {
	ctx, span := s.opts.Tracer.Start(ctx, "parser.ParseTree")
	start := time.Now()

	t, ref, err := s.parseTree()

	errType := string(vehErrors.TypeOf(err))
	s.opts.Metrics.RecordParse("tree", errType, time.Since(start))
	tracing.SetDocument(span, s.opts.TreePath, ref)
	tracing.SetErrorType(span, errType)
	tracing.End(span, err)
	if err != nil {
		s.log(ctx).Error("tree parse failed", "path", s.opts.TreePath, "error", err)
		return nil, "", err
	}

	s.opts.Metrics.SetTreeNodes(countNodes(t))
	return t, ref, nil
}

func (s *Session) parseTree() (*tree.ConfigTree, string, error) {
	data, err := s.opts.Parser.ReadFile(s.opts.TreePath)
	if err != nil {
		return nil, "", err
	}
	t, err := s.opts.Parser.ParseTreeBytes(data, s.opts.TreePath)
	if err != nil {
		return nil, "", err
	}
	return t, solution.TreeRef(data), nil
}

func countNodes(t *tree.ConfigTree) (marks, options, models int) {
	for _, m := range t.Marks() {
		marks++
		opts, _ := t.Options(m)
		for _, o := range opts {
			options++
			if _, ok := t.ModelOf(o); ok {
				models++
			}
		}
	}
	return marks, options, models
}

func (s *Session) record(ctx context.Context, ev archive.Event) {
	ev.SessionID = s.id
	if err := s.opts.Archive.Record(ctx, ev); err != nil {
		s.log(ctx).Warn("failed to archive event", "action", ev.Action, "error", err)
	}
}

func (s *Session) log(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}
