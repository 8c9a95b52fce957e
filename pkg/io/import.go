// Package io reads heterogeneous data rows from files and streams.
//
// Two row shapes are supported, matching the selector types in pkg/series:
// JSON arrays of objects yield map rows addressed by field name, and CSV
// files yield map rows (with a header) or slice rows (without one)
// addressed by position.
package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/barstack/pkg/errors"
)

// ReadRowsJSON decodes a JSON array of objects from r into rows.
//
// Numbers are decoded as json.Number so the geometry engine sees exact
// numerics. Each element must be an object; arrays of arrays are also
// accepted and yield slice rows for positional selectors.
func ReadRowsJSON(r io.Reader) ([]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode rows")
	}

	for i, row := range raw {
		switch row.(type) {
		case map[string]any, []any:
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"row %d: expected object or array, got %T", i, row)
		}
	}
	return raw, nil
}

// ReadRowsCSV decodes CSV records from r into rows.
//
// With hasHeader, the first record names the fields and each following
// record becomes a map row. Without it, each record becomes a slice row
// for positional selectors. Cells that parse as numbers become float64;
// everything else stays a string.
func ReadRowsCSV(r io.Reader, hasHeader bool) ([]any, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode csv rows")
	}
	if len(records) == 0 {
		return nil, nil
	}

	if !hasHeader {
		rows := make([]any, 0, len(records))
		for _, rec := range records {
			rows = append(rows, cellsToRow(rec))
		}
		return rows, nil
	}

	header := records[0]
	rows := make([]any, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"csv row %d has %d cells, header has %d", i+1, len(rec), len(header))
		}
		row := make(map[string]any, len(rec))
		for j, cell := range rec {
			row[header[j]] = cellValue(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cellsToRow(rec []string) []any {
	row := make([]any, len(rec))
	for i, cell := range rec {
		row[i] = cellValue(cell)
	}
	return row
}

func cellValue(cell string) any {
	if f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
		return f
	}
	return cell
}

// ImportRows reads rows from path, dispatching on the file extension
// (.json, .csv). CSV files are assumed to carry a header row.
func ImportRows(path string) ([]any, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "rows file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadRowsJSON(f)
	case ".csv":
		return ReadRowsCSV(f, true)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat,
		"unsupported rows file %s (expected .json or .csv)", path)
}
