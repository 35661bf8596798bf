// Package model defines shared record types used across the ingest paths.
//
// Conventions:
//   - Temperatures: degrees Celsius
//   - Wind: kilometers per hour
//   - Precipitation: millimeters
//   - Wire timestamps: int64 microseconds since Unix epoch; in-process
//     timestamps use time.Time
package model
