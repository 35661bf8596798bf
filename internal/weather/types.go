package weather

import (
	"fmt"
	"time"
)

// Station is one reporting location in the provider's catalog.
type Station struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Active    bool    `json:"active"`
}

// Daily is one day of observations for one station.
type Daily struct {
	Station   string    `json:"station"`
	Date      time.Time `json:"date"`
	TempMeanC float64   `json:"temp_mean_c"`
	DewPointC float64   `json:"dew_point_c"`
	WindKPH   float64   `json:"wind_kph"`
	PrecipMM  float64   `json:"precip_mm"`
}

// APIError represents an error response from the weather provider.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("weather api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
