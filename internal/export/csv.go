// Package export renders an assembled DataSet to delimited or spreadsheet
// output.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/paleoclim/noaapaleo/internal/dataset"
)

// WriteCSV writes the dataset as CSV: one header row of column names,
// then one record per observation. Missing cells render as empty fields.
func WriteCSV(w io.Writer, ds *dataset.DataSet) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ds.Columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range ds.Rows {
		record := make([]string, len(ds.Columns))
		for i, col := range ds.Columns {
			record[i] = row.Get(col).String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
