// Package tree provides ConfigTree, the in-memory configuration tree, and
// the edit operations that keep it consistent.
//
// # Structure
//
// A tree is an arena of nodes addressed by NodeID:
//
//	RootModel
//	└── AndOrTree
//	    └── Mark "Color"
//	        └── Option "Red"
//	            └── ModelRef "Sedan"
//
// Mark names are unique in the tree and option names are unique in their
// mark. Edits either apply fully or leave the tree unchanged.
//
// # Usage
//
//	t := tree.New("Line 2024")
//	color, _ := t.AddMark("Color")
//	red, _ := t.AddOption(color, "Red")
//	t.AddModelRef(red, "Sedan")
//
//	ref, err := t.ResolvePath("Color", "Red")
//
// Completeness (every mark has an option, every option a model) is not
// enforced while editing. See the validator package.
package tree
