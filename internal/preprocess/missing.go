package preprocess

import (
	"sort"

	"tsanalyzer/internal/dataset"
)

// FillMethod selects how missing values are replaced.
type FillMethod string

const (
	FillForward  FillMethod = "ffill"
	FillBackward FillMethod = "bfill"
	FillMean     FillMethod = "mean"
	FillMedian   FillMethod = "median"
	FillMode     FillMethod = "mode"
	FillConstant FillMethod = "constant"
)

// MissingOptions configures HandleMissing. A nil Columns list targets every
// column. Limit, when positive, caps how many contiguous missing entries a
// forward or backward fill may bridge. Constant supplies the fill value for
// FillConstant.
type MissingOptions struct {
	Columns  []string
	Method   FillMethod
	Limit    int
	Constant dataset.Value
}

// HandleMissing fills missing values and replaces the held dataset with the
// result. Mean and median fills silently skip non-numeric columns; unknown
// column names are ignored.
func (p *Preprocessor) HandleMissing(opts MissingOptions) (*dataset.Dataset, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	result := p.data.Clone()

	for _, name := range p.targetColumns(opts.Columns, false) {
		cells := result.Column(name)
		switch opts.Method {
		case FillForward:
			fillForward(cells, opts.Limit)
		case FillBackward:
			fillBackward(cells, opts.Limit)
		case FillMean:
			if result.IsNumericColumn(name) {
				fillAll(cells, dataset.Number(mean(present(cells))))
			}
		case FillMedian:
			if result.IsNumericColumn(name) {
				fillAll(cells, dataset.Number(median(present(cells))))
			}
		case FillMode:
			if mode, ok := columnMode(cells); ok {
				fillAll(cells, mode)
			}
		case FillConstant:
			if !opts.Constant.IsMissing() {
				fillAll(cells, opts.Constant)
			}
		}
	}

	p.data = result
	return result, nil
}

func fillForward(cells []dataset.Value, limit int) {
	last := dataset.Missing()
	run := 0
	for i := range cells {
		if !cells[i].IsMissing() {
			last = cells[i]
			run = 0
			continue
		}
		run++
		if last.IsMissing() || (limit > 0 && run > limit) {
			continue
		}
		cells[i] = last
	}
}

func fillBackward(cells []dataset.Value, limit int) {
	next := dataset.Missing()
	run := 0
	for i := len(cells) - 1; i >= 0; i-- {
		if !cells[i].IsMissing() {
			next = cells[i]
			run = 0
			continue
		}
		run++
		if next.IsMissing() || (limit > 0 && run > limit) {
			continue
		}
		cells[i] = next
	}
}

func fillAll(cells []dataset.Value, fill dataset.Value) {
	for i := range cells {
		if cells[i].IsMissing() {
			cells[i] = fill
		}
	}
}

// columnMode finds the most frequent value in the column. Ties resolve to
// the first mode in sorted order (numeric values by magnitude, strings
// lexicographically). A fully missing column has no mode.
func columnMode(cells []dataset.Value) (dataset.Value, bool) {
	type entry struct {
		value dataset.Value
		count int
	}
	counts := make(map[string]*entry)
	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		key := c.Text()
		if e, ok := counts[key]; ok {
			e.count++
		} else {
			counts[key] = &entry{value: c, count: 1}
		}
	}
	if len(counts) == 0 {
		return dataset.Missing(), false
	}

	entries := make([]*entry, 0, len(counts))
	for _, e := range counts {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		fi, iNum := entries[i].value.Float()
		fj, jNum := entries[j].value.Float()
		if iNum && jNum {
			return fi < fj
		}
		return entries[i].value.Text() < entries[j].value.Text()
	})
	return entries[0].value, true
}
