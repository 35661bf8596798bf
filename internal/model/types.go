package model

import "time"

// SalesRecord is one row of the weekly retail sales panel: one store, one
// brand, one week.
type SalesRecord struct {
	Store     int64     // Store identifier
	Brand     string    // Brand identifier
	Week      int64     // Week offset from the panel origin
	WeekStart time.Time // Start of the week (derived from Week)
	LogMove   float64   // Natural log of unit sales
	Price     float64   // Shelf price
	Income    float64   // Median trade-area income (log scale)
}

// Observation is one live weather observation from the streaming feed.
type Observation struct {
	Station    string    // Reporting station identifier
	ObservedAt time.Time // Provider observation timestamp
	ReceivedAt time.Time // Local receive timestamp
	TempC      float64   // Air temperature
	DewPointC  float64   // Dew point temperature
	WindKPH    float64   // Sustained wind speed
	PrecipMM   float64   // Precipitation since previous observation
}
