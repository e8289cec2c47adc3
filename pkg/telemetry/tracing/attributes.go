package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys of configurator spans.
const (
	AttrSession       = attribute.Key("vehicle.session")
	AttrDocument      = attribute.Key("vehicle.document")
	AttrTreeRef       = attribute.Key("vehicle.tree_ref")
	AttrSolutionHash  = attribute.Key("vehicle.solution.hash")
	AttrSolutionModel = attribute.Key("vehicle.solution.model")
	AttrSolutions     = attribute.Key("vehicle.solutions")
	AttrStale         = attribute.Key("vehicle.solutions.stale")
	AttrErrorType     = attribute.Key("vehicle.error.type")
)

// SetDocument tags span with the document it reads or writes.
func SetDocument(span trace.Span, path, treeRef string) {
	span.SetAttributes(AttrDocument.String(path))
	if treeRef != "" {
		span.SetAttributes(AttrTreeRef.String(treeRef))
	}
}

// SetSolution tags span with the solution it produced or touched.
func SetSolution(span trace.Span, hash, model string) {
	span.SetAttributes(AttrSolutionHash.String(hash), AttrSolutionModel.String(model))
}

// SetCheck tags span with the outcome of a staleness check.
func SetCheck(span trace.Span, total, stale int) {
	span.SetAttributes(AttrSolutions.Int(total), AttrStale.Int(stale))
}

// SetErrorType tags span with the taxonomy type of its failure.
func SetErrorType(span trace.Span, errType string) {
	if errType != "" {
		span.SetAttributes(AttrErrorType.String(errType))
	}
}
