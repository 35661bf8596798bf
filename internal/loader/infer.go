package loader

import (
	"fmt"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/panelframe/panelframe/frame"
)

// resolveKinds decides the kind of every column: pinned kinds win, the
// rest are inferred from the data. Inference tries int, float, bool, then
// time; a column where nothing sticks is a string column.
func resolveKinds(header []string, records [][]string, opts Options) ([]frame.Kind, error) {
	kinds := make([]frame.Kind, len(header))
	for j, name := range header {
		if k, ok := opts.Kinds[name]; ok {
			kinds[j] = k
			continue
		}
		kinds[j] = inferKind(j, records, opts)
	}
	return kinds, nil
}

func inferKind(col int, records [][]string, opts Options) frame.Kind {
	isInt, isFloat, isBool, isTime := true, true, true, true
	seen := false
	for _, rec := range records {
		cell := rec[col]
		if opts.isNA(cell) {
			continue
		}
		seen = true
		cellNumeric := false
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			cellNumeric = true
		} else {
			isFloat = false
		}
		if isInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				isInt = false
			}
		}
		if isBool {
			if _, err := strconv.ParseBool(cell); err != nil {
				isBool = false
			}
		}
		// A numeric cell is never evidence for a time column; every cell
		// must hold the hypothesis or the column falls back to string.
		if isTime {
			if cellNumeric {
				isTime = false
			} else if _, err := parseTime(cell, opts); err != nil {
				isTime = false
			}
		}
		if !isInt && !isFloat && !isBool && !isTime {
			return frame.KindString
		}
	}
	switch {
	case !seen:
		return frame.KindString
	case isInt:
		return frame.KindInt
	case isFloat:
		return frame.KindFloat
	case isBool:
		return frame.KindBool
	case isTime:
		return frame.KindTime
	}
	return frame.KindString
}

// parseTime tries the explicit layouts first, then lenient parsing.
// Everything lands in UTC unless the value carries its own offset.
func parseTime(s string, opts Options) (time.Time, error) {
	for _, layout := range opts.TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return dateparse.ParseIn(s, time.UTC)
}

// typedColumn is a parse buffer for one column: a preallocated backing
// slice plus a validity mask, written at absolute row positions.
type typedColumn struct {
	name  string
	kind  frame.Kind
	valid []bool

	floats []float64
	ints   []int64
	strs   []string
	times  []time.Time
	bools  []bool
}

func newTypedColumns(header []string, kinds []frame.Kind, n int) []*typedColumn {
	cols := make([]*typedColumn, len(header))
	for j, name := range header {
		c := &typedColumn{name: name, kind: kinds[j], valid: make([]bool, n)}
		switch kinds[j] {
		case frame.KindFloat:
			c.floats = make([]float64, n)
		case frame.KindInt:
			c.ints = make([]int64, n)
		case frame.KindString:
			c.strs = make([]string, n)
		case frame.KindTime:
			c.times = make([]time.Time, n)
		case frame.KindBool:
			c.bools = make([]bool, n)
		}
		cols[j] = c
	}
	return cols
}

// set parses cell into row i. The cell is known to be non-NA.
func (c *typedColumn) set(i int, cell string, opts Options) error {
	switch c.kind {
	case frame.KindFloat:
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return fmt.Errorf("%w: %q as float", ErrBadCell, cell)
		}
		c.floats[i] = v
	case frame.KindInt:
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q as int", ErrBadCell, cell)
		}
		c.ints[i] = v
	case frame.KindString:
		c.strs[i] = cell
	case frame.KindTime:
		v, err := parseTime(cell, opts)
		if err != nil {
			return fmt.Errorf("%w: %q as time", ErrBadCell, cell)
		}
		c.times[i] = v
	case frame.KindBool:
		v, err := strconv.ParseBool(cell)
		if err != nil {
			return fmt.Errorf("%w: %q as bool", ErrBadCell, cell)
		}
		c.bools[i] = v
	}
	c.valid[i] = true
	return nil
}

// series converts the buffer into a frame series, transferring nulls.
func (c *typedColumn) series() *frame.Series {
	var s *frame.Series
	switch c.kind {
	case frame.KindFloat:
		s = frame.NewFloatSeries(c.name, c.floats)
	case frame.KindInt:
		s = frame.NewIntSeries(c.name, c.ints)
	case frame.KindString:
		s = frame.NewStringSeries(c.name, c.strs)
	case frame.KindTime:
		s = frame.NewTimeSeries(c.name, c.times)
	case frame.KindBool:
		s = frame.NewBoolSeries(c.name, c.bools)
	}
	for i, ok := range c.valid {
		if !ok {
			s.SetNull(i)
		}
	}
	return s
}
