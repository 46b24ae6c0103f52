// Package output writes enriched guest records as CSV, a text table, or an
// HTML table, with whatever columns the records carry.
package output

import (
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"strings"
	"unicode/utf8"

	"Mist-Guest-Grabber/pkg/mist"
)

// Format selects a writer.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatText, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("output format must be one of: csv, text, html (got %q)", s)
	}
}

// Write dispatches to the writer for format.
func Write(w io.Writer, format Format, columns []string, records []mist.Record) error {
	switch format {
	case FormatCSV, "":
		return WriteCSV(w, columns, records)
	case FormatText:
		return WriteText(w, columns, records)
	case FormatHTML:
		return WriteHTML(w, columns, records)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// row renders one record against the column list; absent keys are "".
func row(columns []string, rec mist.Record) []string {
	values := make([]string, len(columns))
	for i, c := range columns {
		values[i] = rec.String(c)
	}
	return values
}

// WriteCSV writes a header of columns and one row per record. The header
// line is always written, even when it is empty.
func WriteCSV(w io.Writer, columns []string, records []mist.Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write(row(columns, rec)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteText writes an aligned plain text table.
func WriteText(w io.Writer, columns []string, records []mist.Record) error {
	if len(records) == 0 || len(columns) == 0 {
		_, err := fmt.Fprintln(w, "No results")
		return err
	}

	rows := make([][]string, len(records))
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for r, rec := range records {
		rows[r] = row(columns, rec)
		for i, v := range rows[r] {
			widths[i] = max(widths[i], utf8.RuneCountInString(v))
		}
	}

	var b strings.Builder
	separator := strings.Repeat("-", sum(widths)+len(widths)*3-1)
	b.WriteString(separator + "\n")
	b.WriteString(formatRow(columns, widths) + "\n")
	b.WriteString(separator + "\n")
	for _, values := range rows {
		b.WriteString(formatRow(values, widths) + "\n")
	}
	b.WriteString(separator + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteHTML writes an HTML table.
func WriteHTML(w io.Writer, columns []string, records []mist.Record) error {
	var b strings.Builder
	b.WriteString("<table>\n  <thead>\n    <tr>")
	for _, c := range columns {
		b.WriteString("<th>" + html.EscapeString(c) + "</th>")
	}
	b.WriteString("</tr>\n  </thead>\n  <tbody>\n")
	for _, rec := range records {
		b.WriteString("    <tr>")
		for _, v := range row(columns, rec) {
			b.WriteString("<td>" + html.EscapeString(v) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("  </tbody>\n</table>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// formatRow formats a row of values with column widths for text table output.
func formatRow(values []string, widths []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%-*s", widths[i], v)
	}
	return strings.Join(parts, " | ")
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
