// Package engine builds priced solutions from a configuration tree and
// checks saved solutions against the live tree.
//
// # Building
//
//	e := engine.New(logger)
//	s, err := e.Build(t, engine.BuildRequest{
//	    Selections: []solution.Selection{{Mark: "Color", Option: "Red"}},
//	    Price:      decimal.RequireFromString("19990.50"),
//	})
//
// Every selection must resolve through tree.ConfigTree.ResolvePath and no
// mark may be selected twice. The tree must be complete.
//
// # Staleness
//
// Validate re-resolves a solution's selections and recomputes its hash.
// A solution whose names no longer resolve, or whose hash differs, is
// Stale. The verdict is advisory; callers decide what to do with it.
package engine
