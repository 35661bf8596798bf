package frame

import (
	"fmt"
	"strings"
)

// Agg names one aggregation over one column.
type Agg struct {
	Col string // source column
	Op  string // "sum", "mean", "count", "min", "max" or "std"
	As  string // output column name; defaults to Col_Op
}

// Sum aggregates the sum of col.
func Sum(col string) Agg { return Agg{Col: col, Op: "sum"} }

// Mean aggregates the mean of col.
func Mean(col string) Agg { return Agg{Col: col, Op: "mean"} }

// Count aggregates the count of valid cells in col.
func Count(col string) Agg { return Agg{Col: col, Op: "count"} }

// Min aggregates the minimum of col.
func Min(col string) Agg { return Agg{Col: col, Op: "min"} }

// Max aggregates the maximum of col.
func Max(col string) Agg { return Agg{Col: col, Op: "max"} }

// Std aggregates the sample standard deviation of col.
func Std(col string) Agg { return Agg{Col: col, Op: "std"} }

// Named sets the output column name.
func (a Agg) Named(name string) Agg {
	a.As = name
	return a
}

func (a Agg) outName() string {
	if a.As != "" {
		return a.As
	}
	return a.Col + "_" + a.Op
}

// Grouped is the result of GroupBy: row indices partitioned by key, in
// first-seen key order.
type Grouped struct {
	f      *Frame
	keys   []*Series
	order  []string
	groups map[string][]int
}

// GroupBy partitions the frame rows by the values of the named columns.
func (f *Frame) GroupBy(names ...string) (*Grouped, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("group by: no key columns")
	}
	keys := make([]*Series, 0, len(names))
	for _, n := range names {
		c, err := f.Column(n)
		if err != nil {
			return nil, fmt.Errorf("group by: %w", err)
		}
		keys = append(keys, c)
	}
	g := &Grouped{f: f, keys: keys, groups: make(map[string][]int)}
	var sb strings.Builder
	for i := 0; i < f.Rows(); i++ {
		sb.Reset()
		for j, k := range keys {
			if j > 0 {
				sb.WriteByte(0x1f)
			}
			sb.WriteString(k.cellString(i))
		}
		key := sb.String()
		if _, seen := g.groups[key]; !seen {
			g.order = append(g.order, key)
		}
		g.groups[key] = append(g.groups[key], i)
	}
	return g, nil
}

// Len returns the number of groups.
func (g *Grouped) Len() int { return len(g.order) }

// Each calls fn once per group, in first-seen key order, with the group's
// rows as a sub-frame.
func (g *Grouped) Each(fn func(sub *Frame) error) error {
	for _, key := range g.order {
		if err := fn(g.f.take(g.groups[key])); err != nil {
			return err
		}
	}
	return nil
}

// Agg reduces every group to one row: the key columns followed by one
// output column per aggregation.
func (g *Grouped) Agg(aggs ...Agg) (*Frame, error) {
	if len(aggs) == 0 {
		return nil, fmt.Errorf("agg: no aggregations")
	}
	keyCols := make([]*Series, len(g.keys))
	for i, k := range g.keys {
		keyCols[i] = NewEmptySeries(k.Name(), k.Kind())
	}
	outCols := make([]*Series, len(aggs))
	srcCols := make([]*Series, len(aggs))
	for i, a := range aggs {
		c, err := g.f.Column(a.Col)
		if err != nil {
			return nil, fmt.Errorf("agg: %w", err)
		}
		srcCols[i] = c
		kind := KindFloat
		if a.Op == "count" {
			kind = KindInt
		}
		outCols[i] = NewEmptySeries(a.outName(), kind)
	}

	for _, key := range g.order {
		idx := g.groups[key]
		first := idx[0]
		for i, k := range g.keys {
			if err := keyCols[i].append(k.Value(first)); err != nil {
				return nil, err
			}
		}
		for i, a := range aggs {
			v, ok, err := reduce(srcCols[i], idx, a.Op)
			if err != nil {
				return nil, fmt.Errorf("agg %s(%s): %w", a.Op, a.Col, err)
			}
			if !ok {
				outCols[i].appendNull()
				continue
			}
			if a.Op == "count" {
				if err := outCols[i].append(int64(v)); err != nil {
					return nil, err
				}
			} else if err := outCols[i].append(v); err != nil {
				return nil, err
			}
		}
	}
	return New(append(keyCols, outCols...)...)
}

// reduce applies op over the valid cells of s at idx. ok is false when the
// group has no valid cells (count still reports 0).
func reduce(s *Series, idx []int, op string) (v float64, ok bool, err error) {
	if op == "count" {
		n := 0
		for _, i := range idx {
			if s.IsValid(i) {
				n++
			}
		}
		return float64(n), true, nil
	}
	if s.Kind() != KindFloat && s.Kind() != KindInt {
		return 0, false, fmt.Errorf("%w: column %q is %s, not numeric", ErrKindMismatch, s.Name(), s.Kind())
	}
	sub := s.take(idx)
	vals, err := sub.Float64s()
	if err != nil {
		return 0, false, err
	}
	if len(vals) == 0 {
		return 0, false, nil
	}
	switch op {
	case "sum":
		v, err = sub.Sum()
	case "mean":
		v, err = sub.Mean()
	case "min":
		v, err = sub.Min()
	case "max":
		v, err = sub.Max()
	case "std":
		if len(vals) < 2 {
			return 0, false, nil
		}
		v, err = sub.Std()
	default:
		return 0, false, fmt.Errorf("unknown aggregation %q", op)
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
