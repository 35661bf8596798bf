package frame

import (
	"math"
	"testing"
)

func TestGroupByAgg(t *testing.T) {
	f := salesFixture(t)

	g, err := f.GroupBy("brand")
	if err != nil {
		t.Fatalf("GroupBy failed: %v", err)
	}
	if g.Len() != 2 {
		t.Fatalf("groups = %d, want 2", g.Len())
	}

	out, err := g.Agg(Mean("price"), Count("store"))
	if err != nil {
		t.Fatalf("Agg failed: %v", err)
	}

	rows, cols := out.Shape()
	if rows != 2 || cols != 3 {
		t.Fatalf("Shape = (%d, %d), want (2, 3)", rows, cols)
	}

	// First-seen order: tropicana first.
	brand, _ := out.Column("brand")
	if v, _ := brand.Str(0); v != "tropicana" {
		t.Errorf("brand[0] = %q, want tropicana", v)
	}
	mean, _ := out.Column("price_mean")
	if v, _ := mean.Float(0); v != 3.87 {
		t.Errorf("price_mean[0] = %v, want 3.87", v)
	}
	cnt, _ := out.Column("store_count")
	if v, _ := cnt.Int(0); v != 2 {
		t.Errorf("store_count[0] = %d, want 2", v)
	}
}

func TestGroupByMultipleKeys(t *testing.T) {
	f := salesFixture(t)

	g, err := f.GroupBy("store", "brand")
	if err != nil {
		t.Fatalf("GroupBy failed: %v", err)
	}
	if g.Len() != 4 {
		t.Errorf("groups = %d, want 4", g.Len())
	}

	out, err := g.Agg(Sum("logmove").Named("logmove_total"))
	if err != nil {
		t.Fatalf("Agg failed: %v", err)
	}
	if !out.HasColumn("logmove_total") {
		t.Error("Named output column missing")
	}
}

func TestGroupByUnknownColumn(t *testing.T) {
	f := salesFixture(t)
	if _, err := f.GroupBy("nope"); err == nil {
		t.Error("GroupBy(nope) should fail")
	}
}

func TestAggNullHandling(t *testing.T) {
	price := NewFloatSeries("price", []float64{1, 2, 3})
	price.SetNull(2)
	f, err := New(
		NewStringSeries("brand", []string{"a", "a", "b"}),
		price,
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	g, _ := f.GroupBy("brand")
	out, err := g.Agg(Mean("price"), Count("price"))
	if err != nil {
		t.Fatalf("Agg failed: %v", err)
	}

	mean, _ := out.Column("price_mean")
	if mean.IsValid(1) {
		t.Error("all-null group mean should be null")
	}
	cnt, _ := out.Column("price_count")
	if v, _ := cnt.Int(1); v != 0 {
		t.Errorf("price_count[1] = %d, want 0", v)
	}
}

func TestAggStdSingleRow(t *testing.T) {
	f := salesFixture(t)
	g, _ := f.GroupBy("store", "brand")

	out, err := g.Agg(Std("price"))
	if err != nil {
		t.Fatalf("Agg failed: %v", err)
	}
	c, _ := out.Column("price_std")
	if c.IsValid(0) {
		t.Error("std of single-row group should be null")
	}
}

func TestGroupedEach(t *testing.T) {
	f := salesFixture(t)
	g, _ := f.GroupBy("brand")

	total := 0
	err := g.Each(func(sub *Frame) error {
		total += sub.Rows()
		return nil
	})
	if err != nil {
		t.Fatalf("Each failed: %v", err)
	}
	if total != 4 {
		t.Errorf("rows across groups = %d, want 4", total)
	}
}

func TestAggMinMax(t *testing.T) {
	f := salesFixture(t)
	g, _ := f.GroupBy("brand")

	out, err := g.Agg(Min("logmove"), Max("logmove"))
	if err != nil {
		t.Fatalf("Agg failed: %v", err)
	}
	lo, _ := out.Column("logmove_min")
	hi, _ := out.Column("logmove_max")
	v1, _ := lo.Float(0)
	v2, _ := hi.Float(0)
	if math.Abs(v1-8.25) > 1e-12 || math.Abs(v2-9.02) > 1e-12 {
		t.Errorf("min/max = %v/%v, want 8.25/9.02", v1, v2)
	}
}
