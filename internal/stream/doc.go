// Package stream ingests live weather observations over WebSocket.
//
// The Feed owns one connection to the provider: it subscribes to a set of
// stations, answers pings, and reconnects with capped exponential backoff.
// The Router parses raw feed messages into observations and hands them to
// a growable buffer for the storage writers to drain.
package stream
