// Package exporter renders analysis projections as downloadable CSV and
// XLSX documents.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"tsanalyzer/pkg/contracts/domain"
)

// TimeDomainCSV writes one row per sample: the time cell followed by one
// cell per value column. Missing values become empty cells.
func TimeDomainCSV(w io.Writer, block *domain.TimeDomainBlock, timeColumn string, valueColumns []string) error {
	cw := csv.NewWriter(w)

	header := append([]string{timeColumn}, valueColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, tv := range block.Time {
		record := make([]string, 0, len(header))
		record = append(record, formatCell(tv))
		for _, col := range valueColumns {
			record = append(record, formatOptional(block.Series[col], i))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FrequencyDomainCSV writes, per value column, a frequency/amplitude pair
// of columns. Columns are stacked vertically with a blank line between
// them so spectra of different lengths stay readable.
func FrequencyDomainCSV(w io.Writer, block *domain.FrequencyDomainBlock, valueColumns []string) error {
	cw := csv.NewWriter(w)

	for n, col := range valueColumns {
		if n > 0 {
			if err := cw.Write([]string{""}); err != nil {
				return fmt.Errorf("failed to write separator: %w", err)
			}
		}
		header := []string{col + "_frequency", col + "_amplitude"}
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		freqs := block.Frequencies[col]
		amps := block.Amplitudes[col]
		for i := range freqs {
			record := []string{formatFloat(freqs[i]), formatFloat(amps[i])}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write row %d: %w", i, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatOptional(vals []*float64, i int) string {
	if i >= len(vals) || vals[i] == nil {
		return ""
	}
	return formatFloat(*vals[i])
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
