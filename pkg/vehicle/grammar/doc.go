// Package grammar holds the names, kinds and messages shared by the tree
// and solutions document formats.
//
// A tree document nests vehicle-model, and-or-tree, mark nodes, option
// nodes (type "AND") and model nodes. A solutions document is a
// vehicle-solutions element with ordered solution records whose children
// appear in the order given by SolutionFields.
package grammar
