package tsframe

import (
	"fmt"
	"time"

	"github.com/panelframe/panelframe/frame"
)

// Loc selects the rows of one individual series by its grain labels, in
// grain-column order. The result keeps the full index.
func (tf *TimeFrame) Loc(grain ...any) (*TimeFrame, error) {
	keep, err := tf.grainMatcher(grain)
	if err != nil {
		return nil, err
	}
	return tf.withRows(tf.f.Filter(keep)), nil
}

// Between selects rows whose timestamp falls in [from, to], inclusive on
// both ends, across every series in the panel.
func (tf *TimeFrame) Between(from, to time.Time) *TimeFrame {
	return tf.withRows(tf.f.Filter(func(r frame.Row) bool {
		ts, ok := r.Time(tf.spec.TimeColumn)
		if !ok {
			return false
		}
		return !ts.Before(from) && !ts.After(to)
	}))
}

// LocRange combines Loc and Between: one series' rows within [from, to].
func (tf *TimeFrame) LocRange(grain []any, from, to time.Time) (*TimeFrame, error) {
	sub, err := tf.Loc(grain...)
	if err != nil {
		return nil, err
	}
	return sub.Between(from, to), nil
}

// grainMatcher builds a row predicate comparing grain cells to labels.
func (tf *TimeFrame) grainMatcher(grain []any) (func(frame.Row) bool, error) {
	if len(grain) != len(tf.spec.Grain) {
		return nil, fmt.Errorf("%w: got %d labels, index grain has %d columns",
			ErrGrainMismatch, len(grain), len(tf.spec.Grain))
	}
	want := make([]string, len(grain))
	for i, v := range grain {
		want[i] = fmt.Sprintf("%v", v)
	}
	cols := tf.spec.Grain
	return func(r frame.Row) bool {
		for i, name := range cols {
			if fmt.Sprintf("%v", r.Value(name)) != want[i] {
				return false
			}
		}
		return true
	}, nil
}
