// Package validator checks in-memory trees for completeness before they are
// serialized or used to build solutions. Violations reuse the grammar
// messages of the tree document format.
package validator
