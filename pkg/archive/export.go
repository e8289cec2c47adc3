package archive

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Exporter writes records to w in some format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}

// NewExporter returns the exporter for format ("json" or "csv").
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return NewJSONExporter(true), nil
	case "csv":
		return NewCSVExporter(true), nil
	default:
		return nil, fmt.Errorf("unknown export format %q: must be 'json' or 'csv'", format)
	}
}

// JSONExporter exports records as a JSON array.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes records to w. No records produce "[]".
func (e *JSONExporter) Export(ctx context.Context, records []*Record, w io.Writer) error {
	if records == nil {
		records = []*Record{}
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return &ExportError{Format: "json", RecordCount: len(records), Cause: err}
	}
	return nil
}

// CSVExporter exports records as CSV, one row per record.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

var csvHeader = []string{
	"id", "action", "session_id",
	"solution_hash", "model_name", "mark_path", "price",
	"tree_ref", "document", "detail", "recorded_at",
}

// Export writes records to w.
func (e *CSVExporter) Export(ctx context.Context, records []*Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return &ExportError{Format: "csv", RecordCount: len(records), Cause: err}
		}
	}

	for i, r := range records {
		if err := ctx.Err(); err != nil {
			return &ExportError{Format: "csv", RecordCount: i, Cause: err}
		}
		row := []string{
			r.ID,
			string(r.Action),
			r.SessionID,
			r.SolutionHash,
			r.ModelName,
			r.MarkPath,
			r.Price.String(),
			r.TreeRef,
			r.Document,
			r.Detail,
			r.RecordedAt.UTC().Format(time.RFC3339Nano),
		}
		if err := writer.Write(row); err != nil {
			return &ExportError{Format: "csv", RecordCount: i, Cause: err}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return &ExportError{Format: "csv", RecordCount: len(records), Cause: err}
	}
	return nil
}
