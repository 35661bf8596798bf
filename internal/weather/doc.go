// Package weather provides the daily weather accessor: a REST client with
// retries and an LRU response cache, a station registry kept fresh by a
// reconcile loop, and a poller that fans out daily fetches for the active
// stations.
//
// Units follow internal/model: Celsius, km/h, millimeters.
package weather
