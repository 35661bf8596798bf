package tsframe

import (
	"fmt"
	"time"

	"github.com/panelframe/panelframe/frame"
)

// By groups the underlying rows by arbitrary columns.
func (tf *TimeFrame) By(cols ...string) (*frame.Grouped, error) {
	return tf.f.GroupBy(cols...)
}

// ByGrain groups by the grain columns: one group per individual series.
func (tf *TimeFrame) ByGrain() (*frame.Grouped, error) {
	return tf.f.GroupBy(tf.spec.Grain...)
}

// ByGroup groups by the coarser group column for rollups above the grain.
func (tf *TimeFrame) ByGroup() (*frame.Grouped, error) {
	if tf.spec.Group == "" {
		return nil, ErrNoGroupColumn
	}
	return tf.f.GroupBy(tf.spec.Group)
}

// TimeBucket maps a timestamp onto a coarser calendar, e.g. the start of
// its containing week.
type TimeBucket func(time.Time) time.Time

// ResampleTime coarsens the time axis: every timestamp is mapped through
// bucket, then rows are aggregated per (grain, mapped time). The group
// column, when present, rides along as an extra key. The result is a panel
// on the coarsened calendar.
func (tf *TimeFrame) ResampleTime(bucket TimeBucket, aggs ...frame.Agg) (*TimeFrame, error) {
	tc, err := tf.f.Column(tf.spec.TimeColumn)
	if err != nil {
		return nil, err
	}

	mapped := make([]time.Time, tc.Len())
	for i := range mapped {
		ts, ok := tc.Time(i)
		if !ok {
			return nil, fmt.Errorf("resample: null timestamp at row %d", i)
		}
		mapped[i] = bucket(ts)
	}

	f, err := tf.f.WithColumn(frame.NewTimeSeries(tf.spec.TimeColumn, mapped))
	if err != nil {
		return nil, err
	}

	keys := append(append([]string{}, tf.spec.Grain...), tf.spec.TimeColumn)
	if tf.spec.Group != "" {
		keys = append(keys, tf.spec.Group)
	}
	g, err := f.GroupBy(keys...)
	if err != nil {
		return nil, err
	}
	agged, err := g.Agg(aggs...)
	if err != nil {
		return nil, err
	}
	return FromFrame(agged, tf.spec)
}

// ResampleWeekly buckets onto the fixed weekly calendar anchored at origin.
func (tf *TimeFrame) ResampleWeekly(origin time.Time, aggs ...frame.Agg) (*TimeFrame, error) {
	return tf.ResampleTime(WeekBucket(origin), aggs...)
}
