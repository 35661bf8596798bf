// Package loader reads delimited files into frames.
//
// Column kinds are inferred from the data (int, float, bool, time, string)
// unless pinned explicitly. Timestamps go through the configured layouts
// first and fall back to lenient parsing. Large files can be parsed in
// fixed-size row chunks across goroutines.
package loader
