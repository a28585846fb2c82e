package results

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cast"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"analyticsadmin/internal/dashboard"
	"analyticsadmin/internal/errs"
	"analyticsadmin/internal/table"
)

// Manager loads rows from the report tables of a dashboard module and exports them
type Manager struct {
	module *dashboard.Module
	now    func() time.Time
}

// NewManager creates a new results manager
func NewManager(module *dashboard.Module) *Manager {
	return &Manager{module: module, now: time.Now}
}

// Tables lists the report tables available for loading
func (m *Manager) Tables() []string {
	return m.module.TableNames()
}

// Fetch loads one page of a table together with the unpaginated row count
func (m *Manager) Fetch(ctx context.Context, tableName string, query *table.RowQuery) (*Result, error) {
	source, ok := m.module.Table(tableName)
	if !ok {
		return nil, fmt.Errorf("%w: table %q", errs.ErrNotFound, tableName)
	}
	if query == nil {
		query = table.NewQuery()
	}

	rows, err := source.Load(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s: %w", tableName, err)
	}
	total, err := source.Count(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count table %s: %w", tableName, err)
	}

	return &Result{
		Table:       tableName,
		Structure:   source.Structure(),
		Rows:        rows,
		TotalRows:   total,
		GeneratedAt: m.now().UTC(),
	}, nil
}

// Count returns the number of rows matching query without loading them
func (m *Manager) Count(ctx context.Context, tableName string, query *table.RowQuery) (int, error) {
	source, ok := m.module.Table(tableName)
	if !ok {
		return 0, fmt.Errorf("%w: table %q", errs.ErrNotFound, tableName)
	}
	if query == nil {
		query = table.NewQuery()
	}
	return source.Count(ctx, query)
}

// Export writes result to options.OutputPath in the requested format
func (m *Manager) Export(result *Result, options ExportOptions) error {
	dir := filepath.Dir(options.OutputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", options.Format, err)
	}
	defer file.Close()

	return Write(file, result, options)
}

// Write streams result to w in the requested format
func Write(w io.Writer, result *Result, options ExportOptions) error {
	rows := result.Rows
	if options.MaxRows > 0 && len(rows) > options.MaxRows {
		rows = rows[:options.MaxRows]
	}

	switch options.Format {
	case FormatCSV, "":
		return writeDelimited(w, result.Structure, rows, ',')
	case FormatTSV:
		return writeDelimited(w, result.Structure, rows, '\t')
	case FormatJSON:
		return writeJSON(w, result, rows, options)
	default:
		return fmt.Errorf("unsupported export format %q", options.Format)
	}
}

func writeDelimited(w io.Writer, structure *table.Structure, rows []table.Row, comma rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = comma

	headers := Headers(structure)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, row := range rows {
		record := make([]string, len(headers))
		for i, id := range headers {
			record[i] = FormatValue(row.Get(id))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeJSON(w io.Writer, result *Result, rows []table.Row, options ExportOptions) error {
	headers := Headers(result.Structure)
	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]any, len(headers))
		for _, id := range headers {
			record[id] = jsonValue(row.Get(id))
		}
		records = append(records, record)
	}

	var payload any = records
	if options.IncludeStats {
		payload = struct {
			*Result
			Rows []map[string]any `json:"rows"`
		}{Result: result, Rows: records}
	}

	encoder := json.NewEncoder(w)
	if options.Prettify {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

func jsonValue(v any) any {
	switch value := v.(type) {
	case table.EnumValue:
		return value.Value
	case table.LatLngValue:
		return value
	case fmt.Stringer:
		return value.String()
	}
	return v
}

// FormatValue renders a typed table value as plain text
func FormatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case fmt.Stringer:
		return value.String()
	}
	return cast.ToString(v)
}

var printer = message.NewPrinter(language.English)

func displayValue(v any, numberFormat bool) string {
	switch value := v.(type) {
	case int, int32, int64:
		if numberFormat {
			return printer.Sprintf("%d", value)
		}
	case float64:
		format := "%.2f"
		if value == math.Trunc(value) {
			format = "%.0f"
		}
		if numberFormat {
			return printer.Sprintf(format, value)
		}
		return fmt.Sprintf(format, value)
	}
	return FormatValue(v)
}

// FormatResultTable formats a result for console display
func FormatResultTable(result *Result, options TableDisplayOptions) []string {
	if len(result.Rows) == 0 {
		return []string{"No data returned"}
	}

	headers := Headers(result.Structure)
	displayRows := result.Rows
	if options.MaxRows > 0 && len(displayRows) > options.MaxRows {
		displayRows = displayRows[:options.MaxRows]
	}

	cells := make([][]string, len(displayRows))
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = utf8.RuneCountInString(header)
	}
	for r, row := range displayRows {
		cells[r] = make([]string, len(headers))
		for i, id := range headers {
			cell := displayValue(row.Get(id), options.NumberFormat)
			cells[r][i] = cell
			if n := utf8.RuneCountInString(cell); n > colWidths[i] {
				colWidths[i] = n
			}
		}
	}
	if options.MaxColWidth > 0 {
		for i := range colWidths {
			colWidths[i] = min(colWidths[i], options.MaxColWidth)
		}
	}

	var lines []string
	if options.ShowMetadata {
		lines = append(lines, fmt.Sprintf("Table: %s (generated %s)", result.Table, result.GeneratedAt.Format(time.RFC3339)))
	}

	headerParts := make([]string, len(headers))
	for i, header := range headers {
		headerParts[i] = padOrTruncate(header, colWidths[i])
	}
	lines = append(lines, "| "+strings.Join(headerParts, " | ")+" |")

	separatorParts := make([]string, len(headers))
	for i, width := range colWidths {
		separatorParts[i] = strings.Repeat("-", width+2)
	}
	lines = append(lines, "|"+strings.Join(separatorParts, "|")+"|")

	for _, row := range cells {
		rowParts := make([]string, len(headers))
		for i, cell := range row {
			rowParts[i] = padOrTruncate(cell, colWidths[i])
		}
		lines = append(lines, "| "+strings.Join(rowParts, " | ")+" |")
	}

	total := max(result.TotalRows, len(result.Rows))
	if len(displayRows) < total {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("Showing %d of %d rows", len(displayRows), total))
	}

	return lines
}

func padOrTruncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		if width > 3 {
			return string(runes[:width-3]) + "..."
		}
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
