package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the concrete type held by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindTime
	KindString
)

// Value is a single tagged cell in a Dataset. The zero value is a missing
// cell.
type Value struct {
	kind Kind
	num  float64
	ts   time.Time
	str  string
}

// Missing returns a missing cell.
func Missing() Value {
	return Value{kind: KindMissing}
}

// Number returns a numeric cell.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Timestamp returns a temporal cell.
func Timestamp(t time.Time) Value {
	return Value{kind: KindTime, ts: t}
}

// String returns a string cell. An empty string is a missing cell.
func String(s string) Value {
	if s == "" {
		return Missing()
	}
	return Value{kind: KindString, str: s}
}

// Kind reports the concrete type of the cell.
func (v Value) Kind() Kind {
	return v.kind
}

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool {
	return v.kind == KindMissing
}

// Float returns the numeric value and whether the cell is numeric.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Time returns the temporal value and whether the cell is temporal.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.ts, true
}

// Text renders the cell for display and CSV export. Missing cells render as
// the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindTime:
		return v.ts.Format(time.RFC3339)
	case KindString:
		return v.str
	default:
		return ""
	}
}

// Native returns the cell as a JSON-serializable Go value: nil for missing,
// float64 for numbers, RFC 3339 string for timestamps, string otherwise.
func (v Value) Native() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindTime:
		return v.ts.Format(time.RFC3339)
	case KindString:
		return v.str
	default:
		return nil
	}
}

// FromNative builds a Value from a decoded JSON cell.
func FromNative(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Missing()
	case float64:
		return Number(x)
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case bool:
		if x {
			return Number(1)
		}
		return Number(0)
	case string:
		return String(strings.TrimSpace(x))
	case time.Time:
		return Timestamp(x)
	default:
		return String(fmt.Sprintf("%v", x))
	}
}

// ParseNumber parses a string cell into a float. Surrounding whitespace and
// thousands separators are tolerated.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// timeLayouts are tried in order by ParseTime. Date-only layouts parse in UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseTime attempts flexible date/time parsing of a string cell.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CoerceNumber maps a cell onto the numeric domain. Numbers pass through,
// parseable strings are converted, timestamps become epoch seconds, and
// everything else becomes missing.
func CoerceNumber(v Value) Value {
	switch v.kind {
	case KindNumber:
		return v
	case KindString:
		if f, ok := ParseNumber(v.str); ok {
			return Number(f)
		}
		return Missing()
	case KindTime:
		return Number(float64(v.ts.Unix()) + float64(v.ts.Nanosecond())/1e9)
	default:
		return Missing()
	}
}

// CoerceTime maps a cell onto the temporal domain. Timestamps pass through
// and parseable strings are converted. Numeric cells are interpreted as
// epoch seconds.
func CoerceTime(v Value) (time.Time, bool) {
	switch v.kind {
	case KindTime:
		return v.ts, true
	case KindString:
		return ParseTime(v.str)
	case KindNumber:
		sec, frac := int64(v.num), v.num-float64(int64(v.num))
		return time.Unix(sec, int64(frac*float64(time.Second))).UTC(), true
	default:
		return time.Time{}, false
	}
}
