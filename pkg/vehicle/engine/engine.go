package engine

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/solution"
	"mercator-hq/configurator/pkg/vehicle/tree"
	"mercator-hq/configurator/pkg/vehicle/validator"
)

// BuildRequest describes the solution an operator assembled.
type BuildRequest struct {
	Selections       []solution.Selection // One option per mark, in the order chosen
	Price            decimal.Decimal
	FullDescription  string
	ShortDescription string
}

// Engine builds solutions from trees and checks saved solutions against them.
// It holds no tree state and can be shared.
type Engine struct {
	logger *slog.Logger
}

// New creates an engine. A nil logger uses the default logger.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With("component", "vehicle.engine")}
}

// Build resolves every selection against t and returns the resulting
// solution. The model name is the model reached by the first selection.
func (e *Engine) Build(t *tree.ConfigTree, req BuildRequest) (*solution.Solution, error) {
	if len(req.Selections) == 0 {
		return nil, vehErrors.NewInvalidSelection("at least one selection is required", nil)
	}
	if req.Price.IsNegative() {
		return nil, vehErrors.NewInvalidSelection(fmt.Sprintf("price %s must not be negative", req.Price), nil)
	}
	if err := validator.ValidateTree(t, ""); err != nil {
		return nil, vehErrors.NewInvalidSelection("tree is incomplete", err)
	}

	seen := make(map[string]bool, len(req.Selections))
	for _, sel := range req.Selections {
		if seen[sel.Mark] {
			return nil, vehErrors.NewInvalidSelection(fmt.Sprintf("mark '%s' is selected more than once", sel.Mark), nil)
		}
		seen[sel.Mark] = true
	}

	steps, err := resolve(t, req.Selections)
	if err != nil {
		return nil, err
	}
	modelName := steps[0].Model

	s, err := solution.New(solution.Fields{
		FullDescription:  req.FullDescription,
		ShortDescription: req.ShortDescription,
		Price:            req.Price,
		ModelName:        modelName,
		MarkPath:         req.Selections,
		Hash:             solution.Fingerprint(modelName, steps, req.Price),
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("solution built",
		"hash", s.Hash(),
		"model", modelName,
		"selections", len(steps),
		"price", req.Price.String(),
	)
	return s, nil
}

// resolve maps selections to steps. The first pair that does not resolve
// fails the whole call.
func resolve(t *tree.ConfigTree, selections []solution.Selection) ([]solution.Step, error) {
	steps := make([]solution.Step, 0, len(selections))
	for _, sel := range selections {
		ref, err := t.ResolvePath(sel.Mark, sel.Option)
		if err != nil {
			return nil, vehErrors.NewInvalidSelection(
				fmt.Sprintf("selection '%s' -> '%s' does not resolve", sel.Mark, sel.Option), err)
		}
		steps = append(steps, solution.Step{Mark: sel.Mark, Option: sel.Option, Model: ref.Name})
	}
	return steps, nil
}

// TotalPrice sums the prices of solutions exactly.
func (e *Engine) TotalPrice(solutions []*solution.Solution) decimal.Decimal {
	return solution.Total(solutions)
}
