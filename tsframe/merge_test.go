package tsframe

import (
	"errors"
	"testing"
	"time"

	"github.com/panelframe/panelframe/frame"
)

// weatherFixture is a weekly weather panel covering week 0 only.
func weatherFixture(t *testing.T) *TimeFrame {
	t.Helper()
	f, err := frame.New(
		frame.NewTimeSeries("week_start", []time.Time{wk(0), wk(0)}),
		frame.NewIntSeries("store", []int64{2, 5}),
		frame.NewFloatSeries("tavg", []float64{11.5, 14.0}),
		frame.NewFloatSeries("precip", []float64{3.2, 0.0}),
	)
	if err != nil {
		t.Fatalf("frame.New failed: %v", err)
	}
	tf, err := FromFrame(f, IndexSpec{TimeColumn: "week_start", Grain: []string{"store"}})
	if err != nil {
		t.Fatalf("FromFrame failed: %v", err)
	}
	return tf
}

func TestMergeLeft(t *testing.T) {
	sales := panelFixture(t)
	weather := weatherFixture(t)

	out, err := sales.MergeLeft(weather, "store")
	if err != nil {
		t.Fatalf("MergeLeft failed: %v", err)
	}

	if out.Rows() != sales.Rows() {
		t.Fatalf("Rows = %d, want %d (left join keeps all left rows)", out.Rows(), sales.Rows())
	}
	if !out.Frame().HasColumn("tavg") || !out.Frame().HasColumn("precip") {
		t.Fatal("merged columns missing")
	}

	tavg, _ := out.Frame().Column("tavg")
	// Row 0 is store 2, dominicks, week 0: matched.
	if v, ok := tavg.Float(0); !ok || v != 11.5 {
		t.Errorf("tavg[0] = %v, %v; want 11.5, true", v, ok)
	}
	// Row 1 is store 2, dominicks, week 1: no weather row, null.
	if tavg.IsValid(1) {
		t.Error("tavg[1] should be null for unmatched week")
	}
}

func TestMergeLeftAcrossZones(t *testing.T) {
	sales := panelFixture(t)

	// Right side carries the same instants in a non-UTC zone.
	cet := time.FixedZone("CET", 2*3600)
	f, err := frame.New(
		frame.NewTimeSeries("week_start", []time.Time{wk(0).In(cet), wk(0).In(cet)}),
		frame.NewIntSeries("store", []int64{2, 5}),
		frame.NewFloatSeries("tavg", []float64{11.5, 14.0}),
	)
	if err != nil {
		t.Fatalf("frame.New failed: %v", err)
	}
	weather, err := FromFrame(f, IndexSpec{TimeColumn: "week_start", Grain: []string{"store"}})
	if err != nil {
		t.Fatalf("FromFrame failed: %v", err)
	}

	out, err := sales.MergeLeft(weather, "store")
	if err != nil {
		t.Fatalf("MergeLeft failed: %v", err)
	}
	tavg, _ := out.Frame().Column("tavg")
	// Row 0 is store 2, dominicks, week 0: must match despite the zone.
	if v, ok := tavg.Float(0); !ok || v != 11.5 {
		t.Errorf("tavg[0] = %v, %v; want 11.5, true", v, ok)
	}
}

func TestMergeLeftColumnCollision(t *testing.T) {
	sales := panelFixture(t)

	f, err := frame.New(
		frame.NewTimeSeries("week_start", []time.Time{wk(0)}),
		frame.NewIntSeries("store", []int64{2}),
		frame.NewFloatSeries("price", []float64{1.0}),
	)
	if err != nil {
		t.Fatalf("frame.New failed: %v", err)
	}
	right, err := FromFrame(f, IndexSpec{TimeColumn: "week_start", Grain: []string{"store"}})
	if err != nil {
		t.Fatalf("FromFrame failed: %v", err)
	}

	if _, err := sales.MergeLeft(right, "store"); !errors.Is(err, ErrColumnCollision) {
		t.Errorf("err = %v, want ErrColumnCollision", err)
	}
}

func TestMergeLeftMissingKey(t *testing.T) {
	sales := panelFixture(t)
	weather := weatherFixture(t)

	if _, err := sales.MergeLeft(weather, "zone"); !errors.Is(err, frame.ErrColumnNotFound) {
		t.Errorf("err = %v, want ErrColumnNotFound", err)
	}
}

func TestResampleTime(t *testing.T) {
	// Daily observations for one station across two weeks.
	days := []time.Time{
		wk(0), wk(0).AddDate(0, 0, 1), wk(0).AddDate(0, 0, 2),
		wk(1), wk(1).AddDate(0, 0, 3),
	}
	f, err := frame.New(
		frame.NewTimeSeries("date", days),
		frame.NewStringSeries("station", []string{"KORD", "KORD", "KORD", "KORD", "KORD"}),
		frame.NewFloatSeries("tavg", []float64{10, 12, 14, 20, 22}),
	)
	if err != nil {
		t.Fatalf("frame.New failed: %v", err)
	}
	daily, err := FromFrame(f, IndexSpec{TimeColumn: "date", Grain: []string{"station"}})
	if err != nil {
		t.Fatalf("FromFrame failed: %v", err)
	}

	weekly, err := daily.ResampleTime(WeekBucket(origin), frame.Mean("tavg").Named("tavg"))
	if err != nil {
		t.Fatalf("ResampleTime failed: %v", err)
	}
	if weekly.Rows() != 2 {
		t.Fatalf("Rows = %d, want 2", weekly.Rows())
	}
	c, _ := weekly.Frame().Column("tavg")
	if v, _ := c.Float(0); v != 12 {
		t.Errorf("week 0 tavg = %v, want 12", v)
	}
	if v, _ := c.Float(1); v != 21 {
		t.Errorf("week 1 tavg = %v, want 21", v)
	}
	ts, _ := weekly.Frame().Column("date")
	if v, _ := ts.Time(1); !v.Equal(wk(1)) {
		t.Errorf("week 1 start = %v, want %v", v, wk(1))
	}

	byOrigin, err := daily.ResampleWeekly(origin, frame.Mean("tavg").Named("tavg"))
	if err != nil {
		t.Fatalf("ResampleWeekly failed: %v", err)
	}
	if byOrigin.Rows() != weekly.Rows() {
		t.Errorf("ResampleWeekly rows = %d, want %d", byOrigin.Rows(), weekly.Rows())
	}
}

func TestWeekHelpers(t *testing.T) {
	if got := WeekStart(origin, 3); !got.Equal(origin.AddDate(0, 0, 21)) {
		t.Errorf("WeekStart(3) = %v", got)
	}
	if got := WeekOf(origin, origin.AddDate(0, 0, 20)); got != 2 {
		t.Errorf("WeekOf(+20d) = %d, want 2", got)
	}
	if got := WeekOf(origin, origin.Add(-time.Hour)); got != -1 {
		t.Errorf("WeekOf(-1h) = %d, want -1", got)
	}
	if got := WeekStartOf(origin, origin.AddDate(0, 0, 9)); !got.Equal(WeekStart(origin, 1)) {
		t.Errorf("WeekStartOf(+9d) = %v, want week 1 start", got)
	}
}
