package results

import (
	"time"

	"analyticsadmin/internal/table"
)

// Result is a page of rows loaded from one registered report table
type Result struct {
	Table       string           `json:"table"`
	Structure   *table.Structure `json:"-"`
	Rows        []table.Row      `json:"-"`
	TotalRows   int              `json:"total_rows"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Headers returns the full component ids of the result structure, in column order
func (r *Result) Headers() []string {
	return Headers(r.Structure)
}

// Headers lists "column.component" for every component of the structure
func Headers(structure *table.Structure) []string {
	var headers []string
	for _, column := range structure.Columns() {
		for _, component := range column.Components {
			headers = append(headers, column.Name+"."+component.Name)
		}
	}
	return headers
}

// ExportFormat represents supported export formats
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	FormatTSV  ExportFormat = "tsv"
)

// ExportOptions represents options for data export
type ExportOptions struct {
	Format       ExportFormat `json:"format"`
	OutputPath   string       `json:"output_path"`
	Prettify     bool         `json:"prettify,omitempty"`      // JSON only
	IncludeStats bool         `json:"include_stats,omitempty"` // wrap JSON rows with table metadata
	MaxRows      int          `json:"max_rows,omitempty"`
}

// TableDisplayOptions represents options for formatting console output
type TableDisplayOptions struct {
	MaxRows      int  `json:"max_rows"`
	MaxColWidth  int  `json:"max_col_width"`
	ShowMetadata bool `json:"show_metadata"`
	NumberFormat bool `json:"number_format"` // group thousands
}

// DefaultDisplayOptions returns sensible defaults for table display
func DefaultDisplayOptions() TableDisplayOptions {
	return TableDisplayOptions{
		MaxRows:      50,
		MaxColWidth:  30,
		ShowMetadata: false,
		NumberFormat: true,
	}
}
