package engine

import (
	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/solution"
	"mercator-hq/configurator/pkg/vehicle/tree"
)

// Enumerate lists every selection path that takes one option from each
// complete mark, marks in document order. The first mark changes fastest.
// A positive limit caps the number of paths; zero means no cap.
func (e *Engine) Enumerate(t *tree.ConfigTree, limit int) ([][]solution.Selection, error) {
	if limit < 0 {
		return nil, vehErrors.NewInvalidSelection("limit must not be negative", nil)
	}

	type column struct {
		mark    string
		options []string
	}
	var columns []column
	for _, m := range t.Marks() {
		if !t.Complete(m) {
			continue
		}
		n, _ := t.Node(tree.NodeID(m))
		columns = append(columns, column{mark: n.Name, options: t.OptionNames(m)})
	}
	if len(columns) == 0 {
		return nil, nil
	}

	var paths [][]solution.Selection
	index := make([]int, len(columns))
	for {
		path := make([]solution.Selection, len(columns))
		for i, c := range columns {
			path[i] = solution.Selection{Mark: c.mark, Option: c.options[index[i]]}
		}
		paths = append(paths, path)
		if limit > 0 && len(paths) == limit {
			break
		}

		// Advance like an odometer.
		i := 0
		for ; i < len(columns); i++ {
			index[i]++
			if index[i] < len(columns[i].options) {
				break
			}
			index[i] = 0
		}
		if i == len(columns) {
			break
		}
	}

	e.logger.Debug("enumerated selection paths", "marks", len(columns), "paths", len(paths))
	return paths, nil
}
