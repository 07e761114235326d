package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

// record is one CSV data row keyed by lower-cased header name.
type record struct {
	line   int
	values map[string]string
}

func (r record) get(column string) string {
	return strings.TrimSpace(r.values[column])
}

// list splits a multi-valued cell on ';'.
func (r record) list(column string) []string {
	raw := r.get(column)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r record) optionalInt(column string) (*int, error) {
	raw := r.get(column)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not an integer", column, raw)
	}
	return &n, nil
}

func (r record) optionalFloat(column string) (*float64, error) {
	raw := r.get(column)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", column, raw)
	}
	return &f, nil
}

func readCSVFile(path string, required ...string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := readCSV(f, required...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// readCSV reads a header row followed by data rows. Header names are
// matched case-insensitively; blank lines are skipped.
func readCSV(r io.Reader, required ...string) ([]record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}
	for _, col := range required {
		if !slices.Contains(header, col) {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	var records []record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		values := make(map[string]string, len(header))
		blank := true
		for i, cell := range row {
			if i < len(header) {
				values[header[i]] = cell
			}
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		records = append(records, record{line: line, values: values})
	}
	return records, nil
}
