// Package export serializes row sets for the presentation layer.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
)

// WriteCSV writes the rows with the stable column header. Nil metric
// fields become empty cells.
func WriteCSV(w io.Writer, rows []dashboard.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dashboard.RowColumns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.Target, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteJSON writes the rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []dashboard.Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	return nil
}
