package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// FromCSV reads a comma-separated stream whose first record is the header.
// Cells that parse as numbers become numeric, empty cells become missing,
// everything else stays a string. Ragged rows are padded with missing cells.
func FromCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV input")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	d := New(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		d.appendRow(cellsFromStrings(record, len(d.names)))
	}
	if d.RowCount() == 0 {
		return nil, fmt.Errorf("CSV input has no data rows")
	}
	return d, nil
}

func cellsFromStrings(record []string, width int) []Value {
	cells := make([]Value, width)
	for i := range cells {
		if i >= len(record) {
			cells[i] = Missing()
			continue
		}
		raw := strings.TrimSpace(record[i])
		if raw == "" {
			cells[i] = Missing()
			continue
		}
		if f, ok := ParseNumber(raw); ok {
			cells[i] = Number(f)
			continue
		}
		cells[i] = String(raw)
	}
	return cells
}
