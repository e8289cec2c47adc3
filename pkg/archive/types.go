package archive

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Action is what happened to a solution.
type Action string

const (
	ActionBuilt    Action = "built"
	ActionSaved    Action = "saved"
	ActionExported Action = "exported"
	ActionRemoved  Action = "removed"
	ActionStale    Action = "stale"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionBuilt, ActionSaved, ActionExported, ActionRemoved, ActionStale:
		return true
	}
	return false
}

// Record is one archived solution event.
type Record struct {
	// ID is a unique identifier for this record (UUID).
	ID string `json:"id"`

	Action    Action `json:"action"`
	SessionID string `json:"session_id"`

	// Solution data at the time of the event. Empty for events that do not
	// concern a single solution, such as saving a whole document.
	SolutionHash string          `json:"solution_hash,omitempty"`
	ModelName    string          `json:"model_name,omitempty"`
	MarkPath     string          `json:"mark_path,omitempty"`
	Price        decimal.Decimal `json:"price"`

	// TreeRef is the reference of the tree the session had loaded.
	TreeRef string `json:"tree_ref,omitempty"`

	// Document is the file written, when there was one.
	Document string `json:"document,omitempty"`

	// Detail is free text, e.g. the reason a solution went stale.
	Detail string `json:"detail,omitempty"`

	RecordedAt time.Time `json:"recorded_at"`
}

// Query filters archive records. Zero fields match everything.
type Query struct {
	Action    Action
	Hash      string
	SessionID string

	// Since and Until bound RecordedAt; Since is inclusive, Until exclusive.
	Since *time.Time
	Until *time.Time

	// Limit caps the result count. 0 means no limit.
	Limit  int
	Offset int
}

// Matches reports whether r satisfies the filters of q, ignoring
// pagination.
func (q *Query) Matches(r *Record) bool {
	if q == nil {
		return true
	}
	if q.Action != "" && r.Action != q.Action {
		return false
	}
	if q.Hash != "" && r.SolutionHash != q.Hash {
		return false
	}
	if q.SessionID != "" && r.SessionID != q.SessionID {
		return false
	}
	if q.Since != nil && r.RecordedAt.Before(*q.Since) {
		return false
	}
	if q.Until != nil && !r.RecordedAt.Before(*q.Until) {
		return false
	}
	return true
}

// Storage persists archive records. Query results are ordered oldest
// first.
type Storage interface {
	Store(ctx context.Context, record *Record) error
	Query(ctx context.Context, query *Query) ([]*Record, error)
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteOlderThan removes records recorded before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the oldest records until at most keep remain.
	DeleteOldest(ctx context.Context, keep int64) (int64, error)

	Close() error
}
