// Package export renders row sets to bounded-memory artifacts.
//
// CSVExporter writes delimiter-separated text through a RowBuffer whose
// capacity and flush schedule come from PlanBuffer. PagedExporter streams a
// paginated HTML document one chunk at a time: each chunk is built as an
// in-memory node tree, rendered as one page section, then dropped, so peak
// memory stays proportional to the chunk size rather than the export size.
//
// Exporters are not safe for concurrent use.
package export
