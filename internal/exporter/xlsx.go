package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"tsanalyzer/pkg/contracts/domain"
)

const sheetName = "Sheet1"

// TimeDomainXLSX writes the time-domain projection as a single-sheet
// workbook with the same layout as TimeDomainCSV. Numbers and timestamps
// keep their native cell types; missing values stay blank.
func TimeDomainXLSX(w io.Writer, block *domain.TimeDomainBlock, timeColumn string, valueColumns []string) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, 0, len(valueColumns)+1)
	header = append(header, timeColumn)
	for _, col := range valueColumns {
		header = append(header, col)
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}

	for i, tv := range block.Time {
		row := make([]any, 0, len(header))
		row = append(row, xlsxCell(tv))
		for _, col := range valueColumns {
			vals := block.Series[col]
			if i < len(vals) && vals[i] != nil {
				row = append(row, *vals[i])
			} else {
				row = append(row, nil)
			}
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// FrequencyDomainXLSX writes one sheet per value column, each holding the
// frequency and amplitude columns of that column's spectrum.
func FrequencyDomainXLSX(w io.Writer, block *domain.FrequencyDomainBlock, valueColumns []string) error {
	f := excelize.NewFile()
	defer f.Close()

	for n, col := range valueColumns {
		sheet := col
		if n == 0 {
			if err := f.SetSheetName(sheetName, sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		if err := f.SetSheetRow(sheet, "A1", &[]any{"frequency", "amplitude"}); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		freqs := block.Frequencies[col]
		amps := block.Amplitudes[col]
		for i := range freqs {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return fmt.Errorf("failed to compute cell name: %w", err)
			}
			if err := f.SetSheetRow(sheet, cell, &[]any{freqs[i], amps[i]}); err != nil {
				return fmt.Errorf("failed to write row %d: %w", i, err)
			}
		}
	}

	return f.Write(w)
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func xlsxCell(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return v
}
