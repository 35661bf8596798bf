// Package store persists panels and live observations to PostgreSQL.
//
// Two write paths:
//   - PanelWriter bulk-inserts a whole panel frame in one batched pass
//   - ObservationWriter drains the stream buffer continuously, batching by
//     size and flush interval
//
// All inserts are append-only with ON CONFLICT DO NOTHING; the composite
// index key doubles as the table's unique constraint.
package store
