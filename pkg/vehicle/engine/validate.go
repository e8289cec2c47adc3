package engine

import (
	"fmt"
	"strings"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/solution"
	"mercator-hq/configurator/pkg/vehicle/tree"
)

// Status is the outcome of checking a solution against a tree.
type Status int

const (
	Fresh Status = iota
	Stale
)

func (s Status) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Verdict is the advisory result of Validate. A stale solution is never
// changed or removed by the engine.
type Verdict struct {
	Hash   string
	Status Status
	Reason string // Empty when fresh
}

// Fresh reports whether the solution still matches the tree.
func (v Verdict) Fresh() bool {
	return v.Status == Fresh
}

// Validate re-resolves the solution's path against t and recomputes its hash.
func (e *Engine) Validate(s *solution.Solution, t *tree.ConfigTree) Verdict {
	v := Verdict{Hash: s.Hash(), Status: Fresh}

	steps, err := resolve(t, s.MarkPath())
	if err != nil {
		v.Status = Stale
		v.Reason = reason(err)
		e.logger.Debug("solution is stale", "hash", s.Hash(), "reason", v.Reason)
		return v
	}

	// The stored model must match the tree even when the hash does.
	current := solution.Fingerprint(steps[0].Model, steps, s.Price())
	switch {
	case steps[0].Model != s.ModelName():
		v.Status = Stale
		v.Reason = fmt.Sprintf("model changed from '%s' to '%s'", s.ModelName(), steps[0].Model)
	case current != s.Hash():
		v.Status = Stale
		v.Reason = fmt.Sprintf("hash changed from %s to %s", s.Hash(), current)
	default:
		return v
	}
	e.logger.Debug("solution is stale", "hash", s.Hash(), "reason", v.Reason)
	return v
}

// ValidateAll checks every solution of c, in order.
func (e *Engine) ValidateAll(c *solution.Collection, t *tree.ConfigTree) []Verdict {
	all := c.All()
	verdicts := make([]Verdict, len(all))
	for i, s := range all {
		verdicts[i] = e.Validate(s, t)
	}
	return verdicts
}

// reason flattens an error chain into one line, outermost message first.
func reason(err error) string {
	var parts []string
	for err != nil {
		ve, ok := err.(*vehErrors.Error)
		if !ok {
			parts = append(parts, err.Error())
			break
		}
		parts = append(parts, ve.Message)
		err = ve.Cause
	}
	return strings.Join(parts, ": ")
}
