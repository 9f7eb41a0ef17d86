package preprocess

import (
	"tsanalyzer/internal/dataset"
	"tsanalyzer/pkg/contracts/domain"
)

// Apply runs an ordered list of named operations against the held dataset,
// feeding each operation's output into the next. Unknown operation types
// are skipped silently, as is a resample step without its required
// time_column and value_columns parameters.
func (p *Preprocessor) Apply(ops []domain.Operation) (*dataset.Dataset, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}

	for _, op := range ops {
		params := op.Params
		var err error
		switch op.Type {
		case domain.OpMissingValues:
			_, err = p.HandleMissing(MissingOptions{
				Columns:  stringsParam(params, "columns"),
				Method:   FillMethod(stringParam(params, "method", string(FillForward))),
				Limit:    intParam(params, "limit"),
				Constant: constantParam(params),
			})
		case domain.OpOutliers:
			_, err = p.RemoveOutliers(OutlierOptions{
				Columns:   stringsParam(params, "columns"),
				Method:    OutlierMethod(stringParam(params, "method", string(OutlierIQR))),
				Threshold: floatParam(params, "threshold", DefaultIQRThreshold),
			})
		case domain.OpNormalize:
			_, err = p.Normalize(NormalizeOptions{
				Columns: stringsParam(params, "columns"),
				Method:  NormalizeMethod(stringParam(params, "method", string(NormMinMax))),
			})
		case domain.OpResample:
			timeColumn := stringParam(params, "time_column", "")
			valueColumns := stringsParam(params, "value_columns")
			if timeColumn == "" || valueColumns == nil {
				continue
			}
			_, err = p.Resample(ResampleOptions{
				TimeColumn:   timeColumn,
				ValueColumns: valueColumns,
				Freq:         stringParam(params, "freq", "D"),
				Agg:          AggFunc(stringParam(params, "agg_func", string(AggMean))),
			})
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return p.data, nil
}

func stringParam(params map[string]any, key, fallback string) string {
	if s, ok := params[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func stringsParam(params map[string]any, key string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func floatParam(params map[string]any, key string, fallback float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

func intParam(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// constantParam extracts the fill value for constant missing-value fills.
func constantParam(params map[string]any) dataset.Value {
	raw, ok := params["value"]
	if !ok {
		return dataset.Missing()
	}
	return dataset.FromNative(raw)
}
