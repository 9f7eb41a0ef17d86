package preprocess

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tsanalyzer/internal/dataset"
	"tsanalyzer/pkg/contracts/domain"
)

// AggFunc selects how values inside one resampling bucket are combined.
// Unrecognized functions fall back to the mean.
type AggFunc string

const (
	AggMean   AggFunc = "mean"
	AggSum    AggFunc = "sum"
	AggMedian AggFunc = "median"
	AggMin    AggFunc = "min"
	AggMax    AggFunc = "max"
)

// ResampleOptions configures Resample. TimeColumn and ValueColumns are
// required; Freq defaults to daily buckets and Agg to the mean.
type ResampleOptions struct {
	TimeColumn   string
	ValueColumns []string
	Freq         string
	Agg          AggFunc
}

// Resample groups rows into fixed-width time buckets and aggregates each
// value column per bucket. The output is a fresh table whose time column
// holds the bucket boundaries, covering the full span of the input
// including empty buckets. The held dataset is replaced with the result.
func (p *Preprocessor) Resample(opts ResampleOptions) (*dataset.Dataset, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	if !p.data.HasColumn(opts.TimeColumn) {
		return nil, domain.NewError(domain.ErrInvalidColumn,
			"time column %q not found in data", opts.TimeColumn)
	}

	var missing []string
	for _, name := range opts.ValueColumns {
		if !p.data.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NewError(domain.ErrMissingColumns,
			"value columns not found in data: %s", strings.Join(missing, ", "))
	}

	width, err := parseFrequency(opts.Freq)
	if err != nil {
		return nil, err
	}

	// Coerce the time axis to temporal before bucketing.
	timeCells := p.data.Column(opts.TimeColumn)
	stamps := make([]time.Time, len(timeCells))
	for i, c := range timeCells {
		t, ok := dataset.CoerceTime(c)
		if !ok {
			return nil, domain.NewError(domain.ErrUnparseableTime,
				"could not convert %q to a timestamp at row %d", opts.TimeColumn, i)
		}
		stamps[i] = t
	}

	// Group row values by bucket boundary.
	buckets := make(map[int64]map[string][]float64)
	var first, last time.Time
	for i, ts := range stamps {
		b := ts.Truncate(width)
		if i == 0 || b.Before(first) {
			first = b
		}
		if i == 0 || b.After(last) {
			last = b
		}
		key := b.UnixNano()
		if buckets[key] == nil {
			buckets[key] = make(map[string][]float64)
		}
		for _, name := range opts.ValueColumns {
			if f, ok := p.data.Column(name)[i].Float(); ok {
				buckets[key][name] = append(buckets[key][name], f)
			}
		}
	}

	result := dataset.New(append([]string{opts.TimeColumn}, opts.ValueColumns...)...)
	timeOut := make([]dataset.Value, 0)
	valueOut := make(map[string][]dataset.Value, len(opts.ValueColumns))
	for b := first; !b.After(last); b = b.Add(width) {
		timeOut = append(timeOut, dataset.Timestamp(b))
		group := buckets[b.UnixNano()]
		for _, name := range opts.ValueColumns {
			valueOut[name] = append(valueOut[name], aggregate(group[name], opts.Agg))
		}
	}
	if err := result.SetColumn(opts.TimeColumn, timeOut); err != nil {
		return nil, err
	}
	for _, name := range opts.ValueColumns {
		if err := result.SetColumn(name, valueOut[name]); err != nil {
			return nil, err
		}
	}

	p.data = result
	return result, nil
}

// aggregate combines a bucket's values. Empty buckets aggregate to missing.
func aggregate(vals []float64, fn AggFunc) dataset.Value {
	if len(vals) == 0 {
		return dataset.Missing()
	}
	switch fn {
	case AggSum:
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return dataset.Number(sum)
	case AggMedian:
		return dataset.Number(median(vals))
	case AggMin:
		lo, _ := minMax(vals)
		return dataset.Number(lo)
	case AggMax:
		_, hi := minMax(vals)
		return dataset.Number(hi)
	default: // AggMean, including unrecognized functions
		return dataset.Number(mean(vals))
	}
}

// parseFrequency interprets a resampling frequency string. Both Go duration
// syntax ("90m", "6h30m") and the short calendar aliases common in analysis
// tools ("D", "6H", "15min", "W") are accepted. Daily buckets are the
// default.
func parseFrequency(freq string) (time.Duration, error) {
	s := strings.TrimSpace(freq)
	if s == "" {
		return 24 * time.Hour, nil
	}

	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	count := 1.0
	if i > 0 {
		var err error
		count, err = strconv.ParseFloat(s[:i], 64)
		if err != nil || count <= 0 {
			return 0, fmt.Errorf("invalid resample frequency %q", freq)
		}
	}

	var unit time.Duration
	switch strings.ToLower(strings.TrimSpace(s[i:])) {
	case "d", "day", "days":
		unit = 24 * time.Hour
	case "w", "week", "weeks":
		unit = 7 * 24 * time.Hour
	case "h", "hr", "hour", "hours":
		unit = time.Hour
	case "t", "m", "min", "minute", "minutes":
		unit = time.Minute
	case "s", "sec", "second", "seconds":
		unit = time.Second
	default:
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return 0, fmt.Errorf("invalid resample frequency %q", freq)
		}
		return d, nil
	}
	return time.Duration(count * float64(unit)), nil
}
