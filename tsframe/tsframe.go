// Package tsframe layers a panel time-series index on top of a frame.Frame:
// a composite key of (timestamp, grain columns) identifying one observation
// of one individual series, with an optional coarser group column for
// rollups above the grain.
package tsframe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/panelframe/panelframe/frame"
)

// Errors returned by tsframe operations.
var (
	ErrNoTimeColumn    = errors.New("index time column missing")
	ErrNotTimeKind     = errors.New("index time column is not time-kind")
	ErrDuplicateKey    = errors.New("duplicate composite key")
	ErrGrainMismatch   = errors.New("grain value count mismatch")
	ErrNoGroupColumn   = errors.New("no group column in index")
	ErrIndexColumn     = errors.New("operation would remove an index column")
	ErrColumnCollision = errors.New("column name collision in merge")
)

// IndexSpec describes the composite index of a panel frame.
type IndexSpec struct {
	// TimeColumn is the timestamp column name.
	TimeColumn string
	// Grain lists the columns identifying one individual series within
	// the panel (e.g. store, brand).
	Grain []string
	// Group optionally names a coarser partition column for rollups
	// above the grain.
	Group string
}

// TimeFrame is a frame indexed by (grain, timestamp), kept sorted by grain
// then time. The composite key is unique.
type TimeFrame struct {
	f    *frame.Frame
	spec IndexSpec
}

// FromFrame indexes f by spec. The frame is sorted by (grain, time) and the
// composite key is checked for uniqueness.
func FromFrame(f *frame.Frame, spec IndexSpec) (*TimeFrame, error) {
	tc, err := f.Column(spec.TimeColumn)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNoTimeColumn, spec.TimeColumn)
	}
	if tc.Kind() != frame.KindTime {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotTimeKind, spec.TimeColumn, tc.Kind())
	}
	for _, g := range spec.Grain {
		if !f.HasColumn(g) {
			return nil, fmt.Errorf("index grain column: %w: %q", frame.ErrColumnNotFound, g)
		}
	}
	if spec.Group != "" && !f.HasColumn(spec.Group) {
		return nil, fmt.Errorf("index group column: %w: %q", frame.ErrColumnNotFound, spec.Group)
	}

	sortCols := append(append([]string{}, spec.Grain...), spec.TimeColumn)
	sorted, err := f.SortBy(sortCols...)
	if err != nil {
		return nil, fmt.Errorf("sort by index: %w", err)
	}

	tf := &TimeFrame{f: sorted, spec: spec}
	if err := tf.checkUnique(); err != nil {
		return nil, err
	}
	return tf, nil
}

// checkUnique walks the sorted rows and rejects adjacent duplicate keys.
func (tf *TimeFrame) checkUnique() error {
	keyCols := append(append([]string{}, tf.spec.Grain...), tf.spec.TimeColumn)
	prev := ""
	for i := 0; i < tf.f.Rows(); i++ {
		key := rowKey(tf.f, i, keyCols)
		if i > 0 && key == prev {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
		}
		prev = key
	}
	return nil
}

// rowKey builds a composite key string for row i over the named columns.
func rowKey(f *frame.Frame, i int, cols []string) string {
	var sb strings.Builder
	r := f.Row(i)
	for j, name := range cols {
		if j > 0 {
			sb.WriteByte(0x1f)
		}
		sb.WriteString(cellKey(r.Value(name)))
	}
	return sb.String()
}

// cellKey renders one key cell. Timestamps key by instant, so equal
// moments compare equal regardless of the zone they were loaded in.
func cellKey(v any) string {
	if t, ok := v.(time.Time); ok {
		return strconv.FormatInt(t.UnixNano(), 10)
	}
	return fmt.Sprintf("%v", v)
}

// Frame returns the underlying frame, sorted by the index.
func (tf *TimeFrame) Frame() *frame.Frame { return tf.f }

// Spec returns the index specification.
func (tf *TimeFrame) Spec() IndexSpec { return tf.spec }

// Rows returns the number of rows.
func (tf *TimeFrame) Rows() int { return tf.f.Rows() }

// String renders the underlying frame.
func (tf *TimeFrame) String() string { return tf.f.String() }

// WithColumn adds or replaces a data column. Index columns cannot be
// replaced.
func (tf *TimeFrame) WithColumn(s *frame.Series) (*TimeFrame, error) {
	if tf.isIndexColumn(s.Name()) {
		return nil, fmt.Errorf("%w: %q", ErrIndexColumn, s.Name())
	}
	f, err := tf.f.WithColumn(s)
	if err != nil {
		return nil, err
	}
	return &TimeFrame{f: f, spec: tf.spec}, nil
}

// MapFloat derives a float column from a numeric column, preserving the
// index.
func (tf *TimeFrame) MapFloat(src, dst string, fn func(float64) float64) (*TimeFrame, error) {
	if tf.isIndexColumn(dst) {
		return nil, fmt.Errorf("%w: %q", ErrIndexColumn, dst)
	}
	f, err := tf.f.MapFloat(src, dst, fn)
	if err != nil {
		return nil, err
	}
	return &TimeFrame{f: f, spec: tf.spec}, nil
}

// Drop removes data columns. Index columns cannot be dropped.
func (tf *TimeFrame) Drop(names ...string) (*TimeFrame, error) {
	for _, n := range names {
		if tf.isIndexColumn(n) {
			return nil, fmt.Errorf("%w: %q", ErrIndexColumn, n)
		}
	}
	f, err := tf.f.Drop(names...)
	if err != nil {
		return nil, err
	}
	return &TimeFrame{f: f, spec: tf.spec}, nil
}

func (tf *TimeFrame) isIndexColumn(name string) bool {
	if name == tf.spec.TimeColumn || name == tf.spec.Group {
		return true
	}
	for _, g := range tf.spec.Grain {
		if name == g {
			return true
		}
	}
	return false
}

// withRows wraps an already index-consistent frame. Used by slicing, where
// sortedness and uniqueness survive row selection.
func (tf *TimeFrame) withRows(f *frame.Frame) *TimeFrame {
	return &TimeFrame{f: f, spec: tf.spec}
}
