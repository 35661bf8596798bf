package loader

import (
	"fmt"
	"math"
	"time"

	"github.com/panelframe/panelframe/tsframe"
)

// LoadPanel reads the weekly sales CSV and builds the indexed panel:
// sales derived from log sales, the week offset mapped onto the calendar
// anchored at origin, rows keyed by (store, brand) over week_start.
func LoadPanel(path string, origin time.Time, opts Options) (*tsframe.TimeFrame, error) {
	f, err := ReadCSVChunks(path, opts)
	if err != nil {
		return nil, fmt.Errorf("load panel: %w", err)
	}

	f, err = f.MapFloat("logmove", "sales", math.Exp)
	if err != nil {
		return nil, fmt.Errorf("derive sales: %w", err)
	}
	f, err = f.MapIntToTime("week", "week_start", func(n int64) time.Time {
		return tsframe.WeekStart(origin, n)
	})
	if err != nil {
		return nil, fmt.Errorf("derive week_start: %w", err)
	}

	tf, err := tsframe.FromFrame(f, tsframe.IndexSpec{
		TimeColumn: "week_start",
		Grain:      []string{"store", "brand"},
		Group:      "brand",
	})
	if err != nil {
		return nil, fmt.Errorf("index panel: %w", err)
	}
	return tf, nil
}
