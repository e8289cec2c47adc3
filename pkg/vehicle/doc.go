// Package vehicle is the core of the vehicle configurator: a strict parser
// and serializer for the tree and solutions documents, the editable
// configuration tree, and the solution engine.
//
// # Architecture
//
// The package is organized into subpackages:
//
// - grammar: element names, node kinds and violation messages
// - tree: the arena-based ConfigTree and its edit operations
// - validator: completeness check run before saving and solving
// - parser: tree and solutions document parsing
// - serializer: tree and solutions document writing
// - solution: immutable solutions, fingerprints, collections
// - engine: building, validating and totalling solutions
// - errors: the shared error taxonomy
//
// # Basic Usage
//
//	t, ref, err := vehicle.LoadTree("data.xml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	e := engine.New(nil)
//	s, err := e.Build(t, engine.BuildRequest{
//	    Selections: []solution.Selection{{Mark: "Color", Option: "Red"}},
//	    Price:      decimal.RequireFromString("19990.50"),
//	})
//
//	doc := solution.NewDocument(ref)
//	doc.Solutions.Add(s)
//	err = vehicle.SerializeSolutions("solutions.xml", doc)
//
// # Concurrency
//
// Nothing in these packages is safe for concurrent use. The session
// package wraps a tree and its solutions behind a mutex.
package vehicle
