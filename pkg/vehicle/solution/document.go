package solution

import "strings"

// Document is a solutions document: the reference of the tree it was
// derived from and its ordered solutions.
type Document struct {
	TreeRef   string
	Solutions *Collection
}

// NewDocument returns an empty document bound to treeRef.
func NewDocument(treeRef string) *Document {
	return &Document{TreeRef: treeRef, Solutions: NewCollection()}
}

// Outdated reports whether the document was derived from a tree
// other than the one identified by currentRef.
func (d *Document) Outdated(currentRef string) bool {
	return !strings.EqualFold(d.TreeRef, currentRef)
}
