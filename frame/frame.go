// Package frame provides an in-memory columnar table: named, typed series
// with null tracking, column selection and derivation, filtering, sorting,
// and grouped aggregation.
package frame

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Errors returned by frame operations.
var (
	ErrColumnNotFound = errors.New("column not found")
	ErrDuplicateName  = errors.New("duplicate column name")
	ErrLengthMismatch = errors.New("column length mismatch")
	ErrKindMismatch   = errors.New("column kind mismatch")
	ErrEmptyFrame     = errors.New("frame has no columns")
)

// Frame is an ordered collection of equal-length named series.
type Frame struct {
	cols   []*Series
	byName map[string]int
}

// New creates a frame from the given columns. All columns must have the
// same length and distinct names.
func New(cols ...*Series) (*Frame, error) {
	if len(cols) == 0 {
		return nil, ErrEmptyFrame
	}
	f := &Frame{byName: make(map[string]int, len(cols))}
	n := cols[0].Len()
	for i, c := range cols {
		if c.Len() != n {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrLengthMismatch, c.Name(), c.Len(), n)
		}
		if _, exists := f.byName[c.Name()]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, c.Name())
		}
		f.byName[c.Name()] = i
		f.cols = append(f.cols, c)
	}
	return f, nil
}

// FromRecords builds a frame from row-oriented data. The kind of each column
// is taken from its first non-nil value; nil cells become nulls.
func FromRecords(columns []string, rows [][]any) (*Frame, error) {
	if len(columns) == 0 {
		return nil, ErrEmptyFrame
	}
	kinds := make([]Kind, len(columns))
	found := make([]bool, len(columns))
	for _, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row has %d cells, want %d", ErrLengthMismatch, len(row), len(columns))
		}
		for j, v := range row {
			if v == nil || found[j] {
				continue
			}
			k, err := kindOf(v)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", columns[j], err)
			}
			kinds[j] = k
			found[j] = true
		}
	}
	cols := make([]*Series, len(columns))
	for j, name := range columns {
		// Columns with no values at all default to string.
		if !found[j] {
			kinds[j] = KindString
		}
		cols[j] = NewEmptySeries(name, kinds[j])
	}
	for _, row := range rows {
		for j, v := range row {
			if err := cols[j].append(v); err != nil {
				return nil, err
			}
		}
	}
	return New(cols...)
}

func kindOf(v any) (Kind, error) {
	switch v.(type) {
	case float64:
		return KindFloat, nil
	case int, int64:
		return KindInt, nil
	case string:
		return KindString, nil
	case time.Time:
		return KindTime, nil
	case bool:
		return KindBool, nil
	}
	return 0, fmt.Errorf("%w: unsupported value type %T", ErrKindMismatch, v)
}

// Shape returns (rows, columns).
func (f *Frame) Shape() (rows, cols int) {
	return f.cols[0].Len(), len(f.cols)
}

// Rows returns the number of rows.
func (f *Frame) Rows() int { return f.cols[0].Len() }

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name()
	}
	return names
}

// Column returns the named series.
func (f *Frame) Column(name string) (*Series, error) {
	i, ok := f.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return f.cols[i], nil
}

// HasColumn reports whether the frame contains the named column.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.byName[name]
	return ok
}

// Select returns a frame containing only the named columns, in the given
// order. The series are shared, not copied.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]*Series, 0, len(names))
	for _, n := range names {
		c, err := f.Column(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// Drop returns a frame without the named columns.
func (f *Frame) Drop(names ...string) (*Frame, error) {
	dropped := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := f.byName[n]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, n)
		}
		dropped[n] = true
	}
	var kept []*Series
	for _, c := range f.cols {
		if !dropped[c.Name()] {
			kept = append(kept, c)
		}
	}
	return New(kept...)
}

// WithColumn returns a frame with s appended, or replacing an existing
// column of the same name.
func (f *Frame) WithColumn(s *Series) (*Frame, error) {
	if s.Len() != f.Rows() {
		return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrLengthMismatch, s.Name(), s.Len(), f.Rows())
	}
	cols := make([]*Series, len(f.cols))
	copy(cols, f.cols)
	if i, ok := f.byName[s.Name()]; ok {
		cols[i] = s
		return New(cols...)
	}
	return New(append(cols, s)...)
}

// MapFloat derives a float column dst by applying fn to the numeric column
// src. Null cells stay null.
func (f *Frame) MapFloat(src, dst string, fn func(float64) float64) (*Frame, error) {
	c, err := f.Column(src)
	if err != nil {
		return nil, err
	}
	out := NewEmptySeries(dst, KindFloat)
	for i := 0; i < c.Len(); i++ {
		v, ok := c.Float(i)
		if !ok {
			if c.IsValid(i) {
				return nil, fmt.Errorf("%w: column %q is %s, not numeric", ErrKindMismatch, src, c.Kind())
			}
			out.appendNull()
			continue
		}
		if err := out.append(fn(v)); err != nil {
			return nil, err
		}
	}
	return f.WithColumn(out)
}

// MapIntToTime derives a time column dst by applying fn to the integer
// column src. Null cells stay null.
func (f *Frame) MapIntToTime(src, dst string, fn func(int64) time.Time) (*Frame, error) {
	c, err := f.Column(src)
	if err != nil {
		return nil, err
	}
	if c.Kind() != KindInt {
		return nil, fmt.Errorf("%w: column %q is %s, want int", ErrKindMismatch, src, c.Kind())
	}
	out := NewEmptySeries(dst, KindTime)
	for i := 0; i < c.Len(); i++ {
		v, ok := c.Int(i)
		if !ok {
			out.appendNull()
			continue
		}
		if err := out.append(fn(v)); err != nil {
			return nil, err
		}
	}
	return f.WithColumn(out)
}

// Row is a lightweight view of one frame row.
type Row struct {
	f *Frame
	i int
}

// Row returns a view of row i.
func (f *Frame) Row(i int) Row { return Row{f: f, i: i} }

// Index returns the row position within the frame.
func (r Row) Index() int { return r.i }

// Value returns the named cell as an untyped value, nil for null or
// unknown columns.
func (r Row) Value(name string) any {
	i, ok := r.f.byName[name]
	if !ok {
		return nil
	}
	return r.f.cols[i].Value(r.i)
}

// Float returns the named cell as a float64.
func (r Row) Float(name string) (float64, bool) {
	i, ok := r.f.byName[name]
	if !ok {
		return 0, false
	}
	return r.f.cols[i].Float(r.i)
}

// Int returns the named cell as an int64.
func (r Row) Int(name string) (int64, bool) {
	i, ok := r.f.byName[name]
	if !ok {
		return 0, false
	}
	return r.f.cols[i].Int(r.i)
}

// Str returns the named cell as a string.
func (r Row) Str(name string) (string, bool) {
	i, ok := r.f.byName[name]
	if !ok {
		return "", false
	}
	return r.f.cols[i].Str(r.i)
}

// Time returns the named cell as a timestamp.
func (r Row) Time(name string) (time.Time, bool) {
	i, ok := r.f.byName[name]
	if !ok {
		return time.Time{}, false
	}
	return r.f.cols[i].Time(r.i)
}

// Filter returns a frame containing the rows for which keep returns true.
func (f *Frame) Filter(keep func(Row) bool) *Frame {
	var idx []int
	for i := 0; i < f.Rows(); i++ {
		if keep(Row{f: f, i: i}) {
			idx = append(idx, i)
		}
	}
	return f.take(idx)
}

// Head returns the first n rows (fewer if the frame is shorter).
func (f *Frame) Head(n int) *Frame {
	if n < 0 {
		n = 0
	}
	if n > f.Rows() {
		n = f.Rows()
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return f.take(idx)
}

// Tail returns the last n rows.
func (f *Frame) Tail(n int) *Frame {
	rows := f.Rows()
	if n < 0 {
		n = 0
	}
	if n > rows {
		n = rows
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rows - n + i
	}
	return f.take(idx)
}

// SortBy returns a frame with rows stably sorted ascending by the named
// columns, compared left to right. Nulls sort first.
func (f *Frame) SortBy(names ...string) (*Frame, error) {
	keys := make([]*Series, 0, len(names))
	for _, n := range names {
		c, err := f.Column(n)
		if err != nil {
			return nil, err
		}
		keys = append(keys, c)
	}
	idx := make([]int, f.Rows())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for _, k := range keys {
			if c := compareCells(k, idx[a], idx[b]); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return f.take(idx), nil
}

// compareCells orders two cells of the same series: -1, 0 or 1.
func compareCells(s *Series, a, b int) int {
	av, bv := s.IsValid(a), s.IsValid(b)
	if !av || !bv {
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	}
	switch s.Kind() {
	case KindFloat, KindInt:
		x, _ := s.Float(a)
		y, _ := s.Float(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case KindString:
		x, _ := s.Str(a)
		y, _ := s.Str(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case KindTime:
		x, _ := s.Time(a)
		y, _ := s.Time(b)
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		}
	case KindBool:
		x, _ := s.Bool(a)
		y, _ := s.Bool(b)
		switch {
		case !x && y:
			return -1
		case x && !y:
			return 1
		}
	}
	return 0
}

// take returns a frame containing the rows at idx, in order.
func (f *Frame) take(idx []int) *Frame {
	cols := make([]*Series, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c.take(idx)
	}
	out, _ := New(cols...)
	return out
}
