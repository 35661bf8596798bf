package loader

import (
	"fmt"
	"time"

	"github.com/panelframe/panelframe/frame"
	"github.com/panelframe/panelframe/internal/model"
	"github.com/panelframe/panelframe/tsframe"
)

// SalesRecords converts a frame loaded with SalesSchema into typed records.
// WeekStart is derived from the week offset against origin. Rows with a
// null identifier or week are rejected; null measures come back zero.
func SalesRecords(f *frame.Frame, origin time.Time) ([]model.SalesRecord, error) {
	for _, name := range []string{"store", "brand", "week", "logmove", "price", "income"} {
		if !f.HasColumn(name) {
			return nil, fmt.Errorf("sales records: %w: %s", frame.ErrColumnNotFound, name)
		}
	}

	out := make([]model.SalesRecord, 0, f.Rows())
	for i := 0; i < f.Rows(); i++ {
		r := f.Row(i)
		store, ok := r.Int("store")
		if !ok {
			return nil, fmt.Errorf("sales records: null store at row %d", i)
		}
		brand, ok := r.Str("brand")
		if !ok {
			return nil, fmt.Errorf("sales records: null brand at row %d", i)
		}
		week, ok := r.Int("week")
		if !ok {
			return nil, fmt.Errorf("sales records: null week at row %d", i)
		}

		rec := model.SalesRecord{
			Store:     store,
			Brand:     brand,
			Week:      week,
			WeekStart: tsframe.WeekStart(origin, week),
		}
		rec.LogMove, _ = r.Float("logmove")
		rec.Price, _ = r.Float("price")
		rec.Income, _ = r.Float("income")
		out = append(out, rec)
	}
	return out, nil
}
