// Command salesdemo walks through the panelframe API on the weekly
// orange-juice sales panel: load, derive, index, slice, aggregate, and
// join daily weather resampled to the sales calendar.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/panelframe/panelframe/frame"
	"github.com/panelframe/panelframe/internal/loader"
	"github.com/panelframe/panelframe/internal/weather"
	"github.com/panelframe/panelframe/tsframe"
)

// First week of the sales calendar.
var origin = time.Date(1989, 9, 7, 0, 0, 0, 0, time.UTC)

// Weather station nearest each store.
var storeStation = map[int64]string{
	2: "KORD",
	5: "KMDW",
	8: "KPWK",
}

const demoWeeks = 8

func main() {
	csvPath := flag.String("csv", "sales.csv", "path to the sales panel CSV")
	weatherURL := flag.String("weather-url", "", "weather API base URL (empty synthesizes data)")
	weatherKey := flag.String("weather-key", "", "weather API key")
	flag.Parse()

	fmt.Println("panelframe demo")
	fmt.Println("===============")

	ensureSampleData(*csvPath)

	f := loadPanel(*csvPath)
	tf := buildPanel(f)
	slicePanel(tf)
	aggregatePanel(tf)
	describeSales(tf)

	weekly := weeklyWeather(*weatherURL, *weatherKey)
	mergeWeather(tf, weekly)
}

// ensureSampleData writes a small deterministic panel so the demo runs
// without any external files.
func ensureSampleData(path string) {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("using existing %s\n", path)
		return
	}

	stores := []int64{2, 5, 8}
	brands := []string{"tropicana", "minute.maid", "dominicks"}
	intercept := map[string]float64{"tropicana": 10.2, "minute.maid": 9.6, "dominicks": 9.1}
	basePrice := map[string]float64{"tropicana": 3.87, "minute.maid": 2.98, "dominicks": 1.59}

	out := "store,brand,week,logmove,price,income,feat,deal\n"
	for si, store := range stores {
		for _, brand := range brands {
			for week := int64(0); week < demoWeeks; week++ {
				price := basePrice[brand] + 0.02*float64(si) - 0.05*float64(week%3)
				feat := 0.0
				if week%4 == 3 {
					feat = 1.0
				}
				logmove := intercept[brand] - 1.8*price + 0.6*feat + 0.04*float64(si)
				income := 10.55 + 0.03*float64(si)
				deal := feat
				out += fmt.Sprintf("%d,%s,%d,%.4f,%.2f,%.2f,%.0f,%.0f\n",
					store, brand, week, logmove, price, income, feat, deal)
			}
		}
	}

	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		log.Fatal("write sample csv: ", err)
	}
	fmt.Printf("wrote sample panel to %s\n", path)
}

func loadPanel(path string) *frame.Frame {
	fmt.Println("\n1. Loading the panel")
	fmt.Println("--------------------")

	f, err := loader.ReadCSVChunks(path, loader.SalesSchema())
	if err != nil {
		log.Fatal("load csv: ", err)
	}

	rows, cols := f.Shape()
	fmt.Printf("shape: (%d, %d)\n", rows, cols)
	fmt.Printf("columns: %v\n", f.Columns())
	fmt.Println(f.Head(5))

	recs, err := loader.SalesRecords(f, origin)
	if err != nil {
		log.Fatal("typed records: ", err)
	}
	fmt.Printf("first record: %+v\n", recs[0])
	return f
}

// buildPanel derives sales and the calendar column, then indexes the
// frame by (store, brand) over week_start.
func buildPanel(f *frame.Frame) *tsframe.TimeFrame {
	fmt.Println("\n2. Deriving columns and indexing")
	fmt.Println("--------------------------------")

	f, err := f.MapFloat("logmove", "sales", math.Exp)
	if err != nil {
		log.Fatal("derive sales: ", err)
	}
	f, err = f.MapIntToTime("week", "week_start", func(n int64) time.Time {
		return tsframe.WeekStart(origin, n)
	})
	if err != nil {
		log.Fatal("derive week_start: ", err)
	}

	tf, err := tsframe.FromFrame(f, tsframe.IndexSpec{
		TimeColumn: "week_start",
		Grain:      []string{"store", "brand"},
		Group:      "brand",
	})
	if err != nil {
		log.Fatal("index panel: ", err)
	}

	tf, err = tf.Drop("feat", "deal")
	if err != nil {
		log.Fatal("drop promo columns: ", err)
	}

	fmt.Printf("indexed %d rows by (store, brand) over week_start\n", tf.Rows())
	fmt.Println(tf.Frame().Head(5))
	return tf
}

func slicePanel(tf *tsframe.TimeFrame) {
	fmt.Println("\n3. Slicing")
	fmt.Println("----------")

	one, err := tf.Loc(2, "tropicana")
	if err != nil {
		log.Fatal("loc: ", err)
	}
	fmt.Printf("store 2 / tropicana: %d weeks\n", one.Rows())

	window := tf.Between(tsframe.WeekStart(origin, 2), tsframe.WeekStart(origin, 5))
	fmt.Printf("weeks 2..5 across the panel: %d rows\n", window.Rows())

	both, err := tf.LocRange([]any{5, "dominicks"},
		tsframe.WeekStart(origin, 0), tsframe.WeekStart(origin, 3))
	if err != nil {
		log.Fatal("loc range: ", err)
	}
	fmt.Println(both)
}

func aggregatePanel(tf *tsframe.TimeFrame) {
	fmt.Println("\n4. Aggregation")
	fmt.Println("--------------")

	byGrain, err := tf.ByGrain()
	if err != nil {
		log.Fatal("group by grain: ", err)
	}
	perSeries, err := byGrain.Agg(
		frame.Mean("sales").Named("avg_sales"),
		frame.Count("sales").Named("weeks"),
	)
	if err != nil {
		log.Fatal("agg by grain: ", err)
	}
	fmt.Println("per (store, brand):")
	fmt.Println(perSeries)

	byBrand, err := tf.ByGroup()
	if err != nil {
		log.Fatal("group by brand: ", err)
	}
	brandStats, err := byBrand.Agg(
		frame.Mean("price").Named("avg_price"),
		frame.Std("logmove").Named("logmove_std"),
	)
	if err != nil {
		log.Fatal("agg by brand: ", err)
	}
	fmt.Println("per brand:")
	fmt.Println(brandStats)

	byStore, err := tf.By("store")
	if err != nil {
		log.Fatal("group by store: ", err)
	}
	storeTotals, err := byStore.Agg(frame.Sum("sales").Named("total_sales"))
	if err != nil {
		log.Fatal("agg by store: ", err)
	}
	fmt.Println("per store:")
	fmt.Println(storeTotals)
}

func describeSales(tf *tsframe.TimeFrame) {
	fmt.Println("\n5. Descriptive statistics")
	fmt.Println("-------------------------")

	col, err := tf.Frame().Column("sales")
	if err != nil {
		log.Fatal("sales column: ", err)
	}
	s, err := col.Describe()
	if err != nil {
		log.Fatal("describe: ", err)
	}
	fmt.Printf("sales: count=%d mean=%.1f std=%.1f min=%.1f median=%.1f max=%.1f\n",
		s.Count, s.Mean, s.Std, s.Min, s.Median, s.Max)
}

// weeklyWeather produces station weather on the sales calendar: daily
// records (fetched or synthesized) resampled to week buckets.
func weeklyWeather(baseURL, apiKey string) *tsframe.TimeFrame {
	fmt.Println("\n6. Weather on the sales calendar")
	fmt.Println("--------------------------------")

	var days []weather.Daily
	if baseURL != "" {
		days = fetchDailies(baseURL, apiKey)
	} else {
		days = synthesizeDailies()
	}

	daily, err := weather.FrameFromDailies(days)
	if err != nil {
		log.Fatal("weather frame: ", err)
	}
	fmt.Printf("daily weather: %d rows\n", daily.Rows())

	weekly, err := daily.ResampleTime(tsframe.WeekBucket(origin),
		frame.Mean("tavg").Named("tavg"),
		frame.Mean("dewpoint").Named("dewpoint"),
		frame.Mean("wind").Named("wind"),
		frame.Sum("precip").Named("precip"),
	)
	if err != nil {
		log.Fatal("resample weather: ", err)
	}
	fmt.Printf("weekly weather: %d rows\n", weekly.Rows())
	fmt.Println(weekly.Frame().Head(4))
	return weekly
}

func fetchDailies(baseURL, apiKey string) []weather.Daily {
	client, err := weather.NewClient(baseURL, apiKey)
	if err != nil {
		log.Fatal("weather client: ", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	from := tsframe.WeekStart(origin, 0)
	to := tsframe.WeekStart(origin, demoWeeks).AddDate(0, 0, -1)

	var days []weather.Daily
	for _, station := range storeStation {
		got, err := client.DayRange(ctx, station, from, to)
		if err != nil {
			log.Fatalf("fetch %s: %v", station, err)
		}
		days = append(days, got...)
	}
	return days
}

// synthesizeDailies generates one record per station per day over the
// demo window, deterministic so the resampled output is stable.
func synthesizeDailies() []weather.Daily {
	var days []weather.Daily
	for i, station := range []string{"KORD", "KMDW", "KPWK"} {
		for d := 0; d < demoWeeks*7; d++ {
			date := origin.AddDate(0, 0, d)
			phase := float64(d) * 2 * math.Pi / 28
			days = append(days, weather.Daily{
				Station:   station,
				Date:      date,
				TempMeanC: 18 + 6*math.Sin(phase) + float64(i),
				DewPointC: 11 + 4*math.Sin(phase),
				WindKPH:   14 + 5*math.Cos(phase),
				PrecipMM:  math.Max(0, 3*math.Sin(phase*3)),
			})
		}
	}
	return days
}

// mergeWeather joins weekly weather onto the panel through each store's
// station.
func mergeWeather(tf *tsframe.TimeFrame, weekly *tsframe.TimeFrame) {
	fmt.Println("\n7. Joining weather onto the panel")
	fmt.Println("---------------------------------")

	stationCol := frame.NewSeriesBuilder("station", frame.KindString)
	storeCol, err := tf.Frame().Column("store")
	if err != nil {
		log.Fatal("store column: ", err)
	}
	for i := 0; i < tf.Rows(); i++ {
		id, _ := storeCol.Int(i)
		if err := stationCol.Append(storeStation[id]); err != nil {
			log.Fatal("station column: ", err)
		}
	}
	withStation, err := tf.WithColumn(stationCol.Series())
	if err != nil {
		log.Fatal("add station: ", err)
	}

	merged, err := withStation.MergeLeft(weekly, "station")
	if err != nil {
		log.Fatal("merge weather: ", err)
	}

	fmt.Printf("merged panel: %d rows, columns %v\n", merged.Rows(), merged.Frame().Columns())
	fmt.Println(merged.Frame().Head(6))
}
