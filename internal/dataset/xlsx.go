package dataset

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// FromXLSX reads the first sheet of an Excel workbook. The first row is the
// header; cell parsing follows the same rules as FromCSV.
func FromXLSX(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheets[0])
	}

	d := New(rows[0]...)
	for _, record := range rows[1:] {
		d.appendRow(cellsFromStrings(record, len(d.names)))
	}
	return d, nil
}
