// Package ingest reads tabular product files (XLSX, CSV) into normalized
// headers and row maps for the conversion pipeline.
package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/samrub06/csv-converter-ai/internal/model"
)

// Options configures file reading.
type Options struct {
	Delimiter  rune   // CSV only; default ','
	Encoding   string // CSV only; IANA charset name, empty means UTF-8
	SheetIndex int    // XLSX only; default 0
}

// ReadFile reads a tabular file into headers and rows. The first row is
// treated as the header row; headers are normalized (lowercase,
// punctuation stripped, spaces collapsed to underscores) and rows whose
// cells are all empty are dropped.
func ReadFile(path string, opts Options) (*model.FileData, error) {
	var raw [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		raw, err = readXLSX(path, opts)
	case ".csv", ".txt", ".tsv":
		raw, err = readCSV(path, opts)
	default:
		return nil, eris.Errorf("ingest: unsupported file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return nil, eris.Errorf("ingest: %s contains no rows", path)
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = NormalizeHeader(h)
	}

	rows := make([]model.RawRecord, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		if isEmptyRow(cells) {
			continue
		}
		record := make(model.RawRecord, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			value := ""
			if i < len(cells) {
				value = strings.TrimSpace(cells[i])
			}
			record[h] = value
		}
		rows = append(rows, record)
	}

	return &model.FileData{
		Headers:  headers,
		Rows:     rows,
		FileName: filepath.Base(path),
	}, nil
}

// NormalizeHeader lowercases a header, collapses whitespace runs into
// single underscores, and strips punctuation other than underscores and
// hyphens. Idempotent.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	var b strings.Builder
	b.Grow(len(h))
	lastUnderscore := false
	for _, r := range h {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case r == ' ' || r == '\t':
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		default:
			// punctuation and symbols dropped
		}
	}
	return strings.TrimRight(b.String(), "_")
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	return f, nil
}
