package loader

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/panelframe/panelframe/frame"
)

const salesCSV = `store,brand,week,logmove,price,income
2,tropicana,40,9.02,3.87,10.55
2,dominicks,40,8.72,1.59,10.55
5,tropicana,40,8.25,3.87,10.92
5,dominicks,41,8.99,NA,10.92
`

func writeTempCSV(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeTempCSV(t, salesCSV)

	f, err := ReadCSV(path, SalesSchema())
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	rows, cols := f.Shape()
	if rows != 4 || cols != 6 {
		t.Fatalf("Shape = (%d, %d), want (4, 6)", rows, cols)
	}

	store, _ := f.Column("store")
	if store.Kind() != frame.KindInt {
		t.Errorf("store kind = %v, want int", store.Kind())
	}
	if v, _ := store.Int(0); v != 2 {
		t.Errorf("store[0] = %d, want 2", v)
	}

	price, _ := f.Column("price")
	if price.IsValid(3) {
		t.Error("price[3] should be null (NA token)")
	}
}

func TestReadCSVInference(t *testing.T) {
	csv := `id,ratio,flag,day,label
1,0.5,true,2024-01-15,a
2,1.5,false,2024-01-16,b
`
	f, err := ReadCSVReader(strings.NewReader(csv), DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSVReader failed: %v", err)
	}

	wantKinds := map[string]frame.Kind{
		"id":    frame.KindInt,
		"ratio": frame.KindFloat,
		"flag":  frame.KindBool,
		"day":   frame.KindTime,
		"label": frame.KindString,
	}
	for name, want := range wantKinds {
		c, err := f.Column(name)
		if err != nil {
			t.Fatalf("Column(%q) failed: %v", name, err)
		}
		if c.Kind() != want {
			t.Errorf("%s kind = %v, want %v", name, c.Kind(), want)
		}
	}

	day, _ := f.Column("day")
	v, _ := day.Time(0)
	if !v.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("day[0] = %v, want 2024-01-15", v)
	}
}

func TestReadCSVMixedColumnFallsBackToString(t *testing.T) {
	// No single kind fits both cells: integer first, then a date. The
	// column must load as string instead of failing the parse.
	csv := "note\n123\n2021-06-05\n"
	f, err := ReadCSVReader(strings.NewReader(csv), DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSVReader failed on mixed column: %v", err)
	}

	note, _ := f.Column("note")
	if note.Kind() != frame.KindString {
		t.Errorf("note kind = %v, want string", note.Kind())
	}
	if v, _ := note.Str(0); v != "123" {
		t.Errorf("note[0] = %q, want 123", v)
	}
	if v, _ := note.Str(1); v != "2021-06-05" {
		t.Errorf("note[1] = %q, want 2021-06-05", v)
	}
}

func TestReadCSVExplicitLayout(t *testing.T) {
	csv := "when,v\n15/01/2024,1\n16/01/2024,2\n"
	opts := DefaultOptions()
	opts.Kinds = map[string]frame.Kind{"when": frame.KindTime}
	opts.TimeLayouts = []string{"02/01/2006"}

	f, err := ReadCSVReader(strings.NewReader(csv), opts)
	if err != nil {
		t.Fatalf("ReadCSVReader failed: %v", err)
	}
	c, _ := f.Column("when")
	v, _ := c.Time(0)
	if v.Month() != time.January || v.Day() != 15 {
		t.Errorf("when[0] = %v, want Jan 15", v)
	}
}

func TestReadCSVBadCell(t *testing.T) {
	csv := "store,price\nabc,1.5\n"
	opts := DefaultOptions()
	opts.Kinds = map[string]frame.Kind{"store": frame.KindInt}

	_, err := ReadCSVReader(strings.NewReader(csv), opts)
	if !errors.Is(err, ErrBadCell) {
		t.Errorf("err = %v, want ErrBadCell", err)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSVReader(strings.NewReader("a,b\n"), DefaultOptions())
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestReadCSVChunksMatchesSequential(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("store,brand,week,logmove\n")
	for i := 0; i < 250; i++ {
		sb.WriteString(strconv.Itoa(i%10) + ",brand" + strconv.Itoa(i%3) + "," +
			strconv.Itoa(i/10) + "," + strconv.FormatFloat(float64(i)/7, 'f', 4, 64) + "\n")
	}
	path := writeTempCSV(t, sb.String())

	opts := DefaultOptions()
	opts.ChunkSize = 32

	seq, err := ReadCSV(path, opts)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	chunked, err := ReadCSVChunks(path, opts)
	if err != nil {
		t.Fatalf("ReadCSVChunks failed: %v", err)
	}

	if sr, _ := seq.Shape(); sr != 250 {
		t.Fatalf("sequential rows = %d, want 250", sr)
	}
	for _, name := range seq.Columns() {
		a, _ := seq.Column(name)
		b, _ := chunked.Column(name)
		if a.Kind() != b.Kind() {
			t.Fatalf("%s kind mismatch: %v vs %v", name, a.Kind(), b.Kind())
		}
		for i := 0; i < a.Len(); i++ {
			if a.Value(i) != b.Value(i) {
				t.Fatalf("%s[%d] = %v (chunked %v)", name, i, a.Value(i), b.Value(i))
			}
		}
	}
}

func TestSalesRecords(t *testing.T) {
	path := writeTempCSV(t, salesCSV)
	f, err := ReadCSV(path, SalesSchema())
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	origin := time.Date(1989, 9, 7, 0, 0, 0, 0, time.UTC)
	recs, err := SalesRecords(f, origin)
	if err != nil {
		t.Fatalf("SalesRecords failed: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("len = %d, want 4", len(recs))
	}

	r := recs[0]
	if r.Store != 2 || r.Brand != "tropicana" || r.Week != 40 {
		t.Errorf("record = %+v", r)
	}
	if want := origin.AddDate(0, 0, 40*7); !r.WeekStart.Equal(want) {
		t.Errorf("WeekStart = %v, want %v", r.WeekStart, want)
	}
	if r.LogMove != 9.02 || r.Price != 3.87 {
		t.Errorf("measures = %+v", r)
	}

	// Null price row still converts; the measure is zero.
	if recs[3].Price != 0 {
		t.Errorf("null price = %v, want 0", recs[3].Price)
	}
}

func TestSalesRecordsMissingColumn(t *testing.T) {
	path := writeTempCSV(t, "store,brand\n2,tropicana\n")
	f, err := ReadCSV(path, SalesSchema())
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if _, err := SalesRecords(f, time.Now()); !errors.Is(err, frame.ErrColumnNotFound) {
		t.Errorf("err = %v, want ErrColumnNotFound", err)
	}
}

func TestLoadPanel(t *testing.T) {
	path := writeTempCSV(t, salesCSV)
	origin := time.Date(1989, 9, 7, 0, 0, 0, 0, time.UTC)

	tf, err := LoadPanel(path, origin, SalesSchema())
	if err != nil {
		t.Fatalf("LoadPanel failed: %v", err)
	}

	if tf.Rows() != 4 {
		t.Fatalf("Rows = %d, want 4", tf.Rows())
	}
	spec := tf.Spec()
	if spec.TimeColumn != "week_start" || spec.Group != "brand" {
		t.Errorf("spec = %+v", spec)
	}

	// Sorted by (store, brand, time): first row is store 2, dominicks.
	r := tf.Frame().Row(0)
	if v, _ := r.Int("store"); v != 2 {
		t.Errorf("store[0] = %d, want 2", v)
	}
	if v, _ := r.Str("brand"); v != "dominicks" {
		t.Errorf("brand[0] = %q, want dominicks", v)
	}
	if v, _ := r.Time("week_start"); !v.Equal(origin.AddDate(0, 0, 40*7)) {
		t.Errorf("week_start[0] = %v", v)
	}

	logmove, _ := r.Float("logmove")
	sales, _ := r.Float("sales")
	if want := math.Exp(logmove); math.Abs(sales-want) > 1e-9 {
		t.Errorf("sales[0] = %v, want exp(%v) = %v", sales, logmove, want)
	}
}
