package frame

import (
	"fmt"
	"strconv"
	"time"

	"github.com/montanaflynn/stats"
)

// Kind identifies the element type of a Series.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindString
	KindTime
	KindBool
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindBool:
		return "bool"
	}
	return "unknown"
}

// Series is a named, typed column. Exactly one backing slice is populated
// according to the series kind; valid marks non-null cells.
type Series struct {
	name string
	kind Kind

	floats []float64
	ints   []int64
	strs   []string
	times  []time.Time
	bools  []bool

	valid []bool
}

// NewFloatSeries creates a float column with all cells valid.
func NewFloatSeries(name string, values []float64) *Series {
	return &Series{name: name, kind: KindFloat, floats: values, valid: allValid(len(values))}
}

// NewIntSeries creates an integer column with all cells valid.
func NewIntSeries(name string, values []int64) *Series {
	return &Series{name: name, kind: KindInt, ints: values, valid: allValid(len(values))}
}

// NewStringSeries creates a string column with all cells valid.
func NewStringSeries(name string, values []string) *Series {
	return &Series{name: name, kind: KindString, strs: values, valid: allValid(len(values))}
}

// NewTimeSeries creates a timestamp column with all cells valid.
func NewTimeSeries(name string, values []time.Time) *Series {
	return &Series{name: name, kind: KindTime, times: values, valid: allValid(len(values))}
}

// NewBoolSeries creates a boolean column with all cells valid.
func NewBoolSeries(name string, values []bool) *Series {
	return &Series{name: name, kind: KindBool, bools: values, valid: allValid(len(values))}
}

// NewEmptySeries creates a zero-length column of the given kind.
func NewEmptySeries(name string, kind Kind) *Series {
	return &Series{name: name, kind: kind}
}

func allValid(n int) []bool {
	v := make([]bool, n)
	for i := range v {
		v[i] = true
	}
	return v
}

// Name returns the column name.
func (s *Series) Name() string { return s.name }

// Kind returns the element kind.
func (s *Series) Kind() Kind { return s.kind }

// Len returns the number of cells, including nulls.
func (s *Series) Len() int { return len(s.valid) }

// Rename returns a copy of the series header with a new name.
// The backing data is shared.
func (s *Series) Rename(name string) *Series {
	c := *s
	c.name = name
	return &c
}

// IsValid reports whether cell i is non-null.
func (s *Series) IsValid(i int) bool { return s.valid[i] }

// SetNull marks cell i as null.
func (s *Series) SetNull(i int) { s.valid[i] = false }

// Value returns cell i as an untyped value, or nil for null.
func (s *Series) Value(i int) any {
	if !s.valid[i] {
		return nil
	}
	switch s.kind {
	case KindFloat:
		return s.floats[i]
	case KindInt:
		return s.ints[i]
	case KindString:
		return s.strs[i]
	case KindTime:
		return s.times[i]
	case KindBool:
		return s.bools[i]
	}
	return nil
}

// Float returns cell i as a float64. Integer cells are widened.
// ok is false for nulls and non-numeric kinds.
func (s *Series) Float(i int) (v float64, ok bool) {
	if !s.valid[i] {
		return 0, false
	}
	switch s.kind {
	case KindFloat:
		return s.floats[i], true
	case KindInt:
		return float64(s.ints[i]), true
	}
	return 0, false
}

// Int returns cell i as an int64.
func (s *Series) Int(i int) (v int64, ok bool) {
	if !s.valid[i] || s.kind != KindInt {
		return 0, false
	}
	return s.ints[i], true
}

// Str returns cell i as a string.
func (s *Series) Str(i int) (v string, ok bool) {
	if !s.valid[i] || s.kind != KindString {
		return "", false
	}
	return s.strs[i], true
}

// Time returns cell i as a timestamp.
func (s *Series) Time(i int) (v time.Time, ok bool) {
	if !s.valid[i] || s.kind != KindTime {
		return time.Time{}, false
	}
	return s.times[i], true
}

// Bool returns cell i as a boolean.
func (s *Series) Bool(i int) (v bool, ok bool) {
	if !s.valid[i] || s.kind != KindBool {
		return false, false
	}
	return s.bools[i], true
}

// append adds an untyped value to the series. nil appends a null cell.
// The value must match the series kind (ints widen into float columns).
func (s *Series) append(v any) error {
	if v == nil {
		s.appendNull()
		return nil
	}
	switch s.kind {
	case KindFloat:
		switch x := v.(type) {
		case float64:
			s.floats = append(s.floats, x)
		case int64:
			s.floats = append(s.floats, float64(x))
		case int:
			s.floats = append(s.floats, float64(x))
		default:
			return fmt.Errorf("%w: column %q is float, got %T", ErrKindMismatch, s.name, v)
		}
	case KindInt:
		switch x := v.(type) {
		case int64:
			s.ints = append(s.ints, x)
		case int:
			s.ints = append(s.ints, int64(x))
		default:
			return fmt.Errorf("%w: column %q is int, got %T", ErrKindMismatch, s.name, v)
		}
	case KindString:
		x, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: column %q is string, got %T", ErrKindMismatch, s.name, v)
		}
		s.strs = append(s.strs, x)
	case KindTime:
		x, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("%w: column %q is time, got %T", ErrKindMismatch, s.name, v)
		}
		s.times = append(s.times, x)
	case KindBool:
		x, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: column %q is bool, got %T", ErrKindMismatch, s.name, v)
		}
		s.bools = append(s.bools, x)
	}
	s.valid = append(s.valid, true)
	return nil
}

// appendNull adds a null cell.
func (s *Series) appendNull() {
	switch s.kind {
	case KindFloat:
		s.floats = append(s.floats, 0)
	case KindInt:
		s.ints = append(s.ints, 0)
	case KindString:
		s.strs = append(s.strs, "")
	case KindTime:
		s.times = append(s.times, time.Time{})
	case KindBool:
		s.bools = append(s.bools, false)
	}
	s.valid = append(s.valid, false)
}

// take returns a new series containing the cells at idx, in order.
func (s *Series) take(idx []int) *Series {
	out := NewEmptySeries(s.name, s.kind)
	for _, i := range idx {
		if !s.valid[i] {
			out.appendNull()
			continue
		}
		// Values coming out of the same series always match the kind.
		_ = out.append(s.Value(i))
	}
	return out
}

// cellString renders cell i for display and composite-key building.
func (s *Series) cellString(i int) string {
	if !s.valid[i] {
		return "<nil>"
	}
	switch s.kind {
	case KindFloat:
		return strconv.FormatFloat(s.floats[i], 'g', -1, 64)
	case KindInt:
		return strconv.FormatInt(s.ints[i], 10)
	case KindString:
		return s.strs[i]
	case KindTime:
		return s.times[i].Format(time.RFC3339)
	case KindBool:
		return strconv.FormatBool(s.bools[i])
	}
	return ""
}

// Float64s returns the valid numeric cells as a float slice.
// Null cells are skipped. Errors for non-numeric kinds.
func (s *Series) Float64s() ([]float64, error) {
	if s.kind != KindFloat && s.kind != KindInt {
		return nil, fmt.Errorf("%w: column %q is %s, not numeric", ErrKindMismatch, s.name, s.kind)
	}
	out := make([]float64, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		if v, ok := s.Float(i); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Mean returns the arithmetic mean of the valid cells.
func (s *Series) Mean() (float64, error) { return s.stat(stats.Mean) }

// Sum returns the sum of the valid cells.
func (s *Series) Sum() (float64, error) { return s.stat(stats.Sum) }

// Min returns the minimum valid cell.
func (s *Series) Min() (float64, error) { return s.stat(stats.Min) }

// Max returns the maximum valid cell.
func (s *Series) Max() (float64, error) { return s.stat(stats.Max) }

// Median returns the median of the valid cells.
func (s *Series) Median() (float64, error) { return s.stat(stats.Median) }

// Std returns the sample standard deviation of the valid cells.
func (s *Series) Std() (float64, error) { return s.stat(stats.StandardDeviationSample) }

// Quantile returns the p-th percentile (0 < p <= 100) of the valid cells.
func (s *Series) Quantile(p float64) (float64, error) {
	vals, err := s.Float64s()
	if err != nil {
		return 0, err
	}
	return stats.Percentile(vals, p)
}

func (s *Series) stat(fn func(stats.Float64Data) (float64, error)) (float64, error) {
	vals, err := s.Float64s()
	if err != nil {
		return 0, err
	}
	return fn(vals)
}

// SeriesBuilder incrementally assembles a typed series, cell by cell.
type SeriesBuilder struct {
	s *Series
}

// NewSeriesBuilder creates a builder for a column of the given kind.
func NewSeriesBuilder(name string, kind Kind) *SeriesBuilder {
	return &SeriesBuilder{s: NewEmptySeries(name, kind)}
}

// Append adds a value; nil adds a null cell.
func (b *SeriesBuilder) Append(v any) error { return b.s.append(v) }

// AppendNull adds a null cell.
func (b *SeriesBuilder) AppendNull() { b.s.appendNull() }

// Len returns the number of cells appended so far.
func (b *SeriesBuilder) Len() int { return b.s.Len() }

// Series returns the built series. The builder must not be reused after.
func (b *SeriesBuilder) Series() *Series { return b.s }

// Summary holds descriptive statistics for a numeric series.
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Describe computes descriptive statistics over the valid cells.
func (s *Series) Describe() (Summary, error) {
	vals, err := s.Float64s()
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Count: len(vals)}
	if len(vals) == 0 {
		return sum, nil
	}
	sum.Mean, _ = stats.Mean(vals)
	sum.Std, _ = stats.StandardDeviationSample(vals)
	sum.Min, _ = stats.Min(vals)
	sum.Q25, _ = stats.Percentile(vals, 25)
	sum.Median, _ = stats.Median(vals)
	sum.Q75, _ = stats.Percentile(vals, 75)
	sum.Max, _ = stats.Max(vals)
	return sum, nil
}
