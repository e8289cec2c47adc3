// Package session ties a tree document, its live solutions and the
// supporting services together for one operator.
//
// A Session owns a ConfigTree and a solution Collection behind a lock. Tree
// edits are applied to a copy and committed only when they succeed. Every
// operation that changes or writes solutions is archived, measured and
// traced when those components are configured; all of them are optional.
//
//	s, err := session.Open(ctx, session.Options{TreePath: "data.xml"})
//	if err != nil {
//		return err
//	}
//	sol, _, err := s.Build(ctx, engine.BuildRequest{
//		Selections: []solution.Selection{{Mark: "Color", Option: "Red"}},
//		Price:      decimal.RequireFromString("19990.50"),
//	})
//
// Watch keeps the session in step with a tree file edited elsewhere.
package session
