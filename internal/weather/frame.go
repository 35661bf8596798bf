package weather

import (
	"time"

	"github.com/panelframe/panelframe/frame"
	"github.com/panelframe/panelframe/tsframe"
)

// FrameFromDailies converts accessor output into a daily panel indexed by
// (station, date).
func FrameFromDailies(days []Daily) (*tsframe.TimeFrame, error) {
	n := len(days)
	stations := make([]string, n)
	dates := make([]time.Time, n)
	tavg := make([]float64, n)
	dew := make([]float64, n)
	wind := make([]float64, n)
	precip := make([]float64, n)

	for i, d := range days {
		stations[i] = d.Station
		dates[i] = d.Date
		tavg[i] = d.TempMeanC
		dew[i] = d.DewPointC
		wind[i] = d.WindKPH
		precip[i] = d.PrecipMM
	}

	f, err := frame.New(
		frame.NewTimeSeries("date", dates),
		frame.NewStringSeries("station", stations),
		frame.NewFloatSeries("tavg", tavg),
		frame.NewFloatSeries("dewpoint", dew),
		frame.NewFloatSeries("wind", wind),
		frame.NewFloatSeries("precip", precip),
	)
	if err != nil {
		return nil, err
	}

	return tsframe.FromFrame(f, tsframe.IndexSpec{
		TimeColumn: "date",
		Grain:      []string{"station"},
	})
}
