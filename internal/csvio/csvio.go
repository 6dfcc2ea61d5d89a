// Package csvio reads and writes the CSV interchange files. Parsing is
// header-driven and does no type coercion: every cell comes back as a string
// and the caller is responsible for parsing numbers, dates and list fields
// back out.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Row is one record keyed by column header.
type Row map[string]string

var ErrEmptyFile = errors.New("empty csv file")

// Parse reads a whole CSV document. The first line is the header.
func Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+2, err)
		}

		row := make(Row, len(headers))
		for i, h := range headers {
			row[h] = record[i]
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// Write emits rows under the given header order. Missing cells are written
// empty.
func Write(w io.Writer, headers []string, rows []Row) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(headers))
	for _, row := range rows {
		for i, h := range headers {
			record[i] = row[h]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
