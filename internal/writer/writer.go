// Package writer serializes canonical rows to delimited files.
package writer

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"

	"github.com/samrub06/csv-converter-ai/internal/schema"
)

// WriteCSV writes canonical rows in schema column order, header row
// first. The schema's labels become the output column names.
func WriteCSV(path string, fields []schema.Field, rows []map[string]string, delimiter rune) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "writer: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if delimiter != 0 {
		w.Comma = delimiter
	}

	header := make([]string, len(fields))
	for i, field := range fields {
		header[i] = field.Label
	}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "writer: write header")
	}

	record := make([]string, len(fields))
	for _, row := range rows {
		for i, field := range fields {
			record[i] = row[field.Key]
		}
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "writer: write row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "writer: flush")
	}
	return nil
}
