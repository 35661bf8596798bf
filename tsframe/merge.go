package tsframe

import (
	"fmt"

	"github.com/panelframe/panelframe/frame"
)

// MergeLeft left-joins another panel onto this one. Rows are matched on
// the timestamp plus the given key columns, which must exist on both
// sides (the right side's timestamp column may be named differently; its
// index spec decides). Every left row is kept; unmatched rows carry nulls
// in the merged-in columns. Right-side key columns are not duplicated
// into the result.
func (tf *TimeFrame) MergeLeft(right *TimeFrame, on ...string) (*TimeFrame, error) {
	leftKeys := append([]string{tf.spec.TimeColumn}, on...)
	rightKeys := append([]string{right.spec.TimeColumn}, on...)

	for _, k := range leftKeys {
		if !tf.f.HasColumn(k) {
			return nil, fmt.Errorf("merge left side: %w: %q", frame.ErrColumnNotFound, k)
		}
	}
	for _, k := range rightKeys {
		if !right.f.HasColumn(k) {
			return nil, fmt.Errorf("merge right side: %w: %q", frame.ErrColumnNotFound, k)
		}
	}

	// Columns the join brings in: everything on the right that is not a
	// join key.
	isRightKey := make(map[string]bool, len(rightKeys))
	for _, k := range rightKeys {
		isRightKey[k] = true
	}
	var valueCols []string
	for _, name := range right.f.Columns() {
		if isRightKey[name] {
			continue
		}
		if tf.f.HasColumn(name) {
			return nil, fmt.Errorf("%w: %q", ErrColumnCollision, name)
		}
		valueCols = append(valueCols, name)
	}

	// Hash the right side by composite key. First match wins; right keys
	// are unique by the panel invariant anyway.
	lookup := make(map[string]int, right.f.Rows())
	for i := 0; i < right.f.Rows(); i++ {
		key := rowKey(right.f, i, rightKeys)
		if _, dup := lookup[key]; !dup {
			lookup[key] = i
		}
	}

	builders := make([]*frame.SeriesBuilder, len(valueCols))
	for i, name := range valueCols {
		c, _ := right.f.Column(name)
		builders[i] = frame.NewSeriesBuilder(name, c.Kind())
	}

	matched := 0
	for i := 0; i < tf.f.Rows(); i++ {
		key := rowKey(tf.f, i, leftKeys)
		ri, ok := lookup[key]
		if ok {
			matched++
		}
		for j, name := range valueCols {
			if !ok {
				builders[j].AppendNull()
				continue
			}
			c, _ := right.f.Column(name)
			if err := builders[j].Append(c.Value(ri)); err != nil {
				return nil, fmt.Errorf("merge column %q: %w", name, err)
			}
		}
	}

	out := tf.f
	var err error
	for _, b := range builders {
		out, err = out.WithColumn(b.Series())
		if err != nil {
			return nil, err
		}
	}

	// Left keys are untouched, so index sortedness and uniqueness hold.
	return tf.withRows(out), nil
}
