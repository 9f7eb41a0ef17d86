// Package domain defines the wire-level contracts shared by the time series
// core and its HTTP boundary: request/response payload shapes, preprocessing
// operation descriptors, and the domain error taxonomy.
package domain

import (
	"bytes"
	"encoding/json"
)

// AnalysisRequest is the payload for creating or replacing a series. Rows
// are decoded JSON objects keyed by column name; TimeColumn and ValueColumns
// are optional and resolved by the domain model when omitted. ColumnOrder is
// the first row's key order as it appeared in the document; Go maps discard
// it, so UnmarshalJSON recovers it from the raw bytes.
type AnalysisRequest struct {
	Rows         []map[string]any `json:"rows" validate:"required,min=1"`
	TimeColumn   string           `json:"time_column,omitempty"`
	ValueColumns []string         `json:"value_columns,omitempty"`
	ColumnOrder  []string         `json:"-"`
}

func (r *AnalysisRequest) UnmarshalJSON(data []byte) error {
	type alias AnalysisRequest
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = AnalysisRequest(a)
	r.ColumnOrder = firstRowColumns(data, "rows")
	return nil
}

// firstRowColumns walks the document tokens to recover the key order of the
// first object inside the named top-level array field. Returns nil when the
// document does not match that shape.
func firstRowColumns(doc []byte, field string) []string {
	dec := json.NewDecoder(bytes.NewReader(doc))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}
		if key != field {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil
			}
			continue
		}
		if tok, err := dec.Token(); err != nil || tok != json.Delim('[') {
			return nil
		}
		if !dec.More() {
			return nil
		}
		if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
			return nil
		}
		var columns []string
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return nil
			}
			name, ok := nameTok.(string)
			if !ok {
				return nil
			}
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil
			}
			columns = append(columns, name)
		}
		return columns
	}
	return nil
}

// TimeDomainBlock lists time values verbatim plus one value sequence per
// column. Missing entries are explicit nulls, never NaN.
type TimeDomainBlock struct {
	Time   []any                 `json:"time"`
	Series map[string][]*float64 `json:"series"`
}

// FrequencyDomainBlock carries, per value column, ascending positive
// frequency bins and the corresponding magnitude spectrum.
type FrequencyDomainBlock struct {
	Frequencies map[string][]float64 `json:"frequencies"`
	Amplitudes  map[string][]float64 `json:"amplitudes"`
}

// AnalysisResponse is the full analysis payload returned for a series.
type AnalysisResponse struct {
	AnalysisID      string                `json:"analysis_id"`
	Columns         []string              `json:"columns"`
	TimeColumn      string                `json:"time_column"`
	ValueColumns    []string              `json:"value_columns"`
	TimeDomain      *TimeDomainBlock      `json:"time_domain,omitempty"`
	FrequencyDomain *FrequencyDomainBlock `json:"frequency_domain,omitempty"`
}

// SeriesSummary is the list-view shape for stored series.
type SeriesSummary struct {
	AnalysisID   string   `json:"analysis_id"`
	Columns      []string `json:"columns"`
	TimeColumn   string   `json:"time_column"`
	ValueColumns []string `json:"value_columns"`
	RowCount     int      `json:"row_count"`
}

// Operation is one step of a preprocessing pipeline: a type tag plus a
// parameter bag. Unknown types are skipped silently.
type Operation struct {
	Type   string         `json:"type" validate:"required"`
	Params map[string]any `json:"params,omitempty"`
}

// Operation type tags understood by the preprocessing pipeline.
const (
	OpMissingValues = "missing_values"
	OpOutliers      = "outliers"
	OpNormalize     = "normalize"
	OpResample      = "resample"
)

// PreprocessRequest is the payload for the preprocessing endpoint.
// ColumnOrder is recovered the same way as AnalysisRequest.ColumnOrder.
type PreprocessRequest struct {
	Rows        []map[string]any `json:"rows" validate:"required,min=1"`
	Operations  []Operation      `json:"operations" validate:"required,min=1,dive"`
	ColumnOrder []string         `json:"-"`
}

func (r *PreprocessRequest) UnmarshalJSON(data []byte) error {
	type alias PreprocessRequest
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = PreprocessRequest(a)
	r.ColumnOrder = firstRowColumns(data, "rows")
	return nil
}

// PreprocessResponse returns the processed table as JSON rows plus the
// resulting column order.
type PreprocessResponse struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}
