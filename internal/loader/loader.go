package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/panelframe/panelframe/frame"
)

// Errors returned by the loader.
var (
	ErrNoData    = errors.New("no data rows")
	ErrBadCell   = errors.New("cell does not parse as column kind")
	ErrRaggedRow = errors.New("row has wrong field count")
)

// Options control CSV parsing.
type Options struct {
	// Comma is the field delimiter. Default ','.
	Comma rune
	// NATokens are cell values treated as null. Default "", "NA", "NaN", "null".
	NATokens []string
	// Kinds pins column kinds by name, overriding inference.
	Kinds map[string]frame.Kind
	// TimeLayouts are tried, in order, before lenient timestamp parsing.
	TimeLayouts []string
	// ChunkSize is the number of rows per parse chunk in ReadCSVChunks.
	// Default 5000.
	ChunkSize int
}

// DefaultOptions returns the default parse options.
func DefaultOptions() Options {
	return Options{
		Comma:     ',',
		NATokens:  []string{"", "NA", "NaN", "null"},
		ChunkSize: 5000,
	}
}

func (o Options) isNA(s string) bool {
	for _, t := range o.NATokens {
		if s == t {
			return true
		}
	}
	return false
}

// ReadCSV reads an entire CSV file into a frame.
func ReadCSV(path string, opts Options) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSVReader(f, opts)
}

// ReadCSVReader reads CSV data from r into a frame. The first record is
// the header.
func ReadCSVReader(r io.Reader, opts Options) (*frame.Frame, error) {
	header, records, err := readAll(r, opts)
	if err != nil {
		return nil, err
	}
	kinds, err := resolveKinds(header, records, opts)
	if err != nil {
		return nil, err
	}
	cols := newTypedColumns(header, kinds, len(records))
	if err := parseInto(header, records, cols, opts, 0, len(records)); err != nil {
		return nil, err
	}
	return buildFrame(cols)
}

// readAll pulls the header and all data records off the reader.
func readAll(r io.Reader, opts Options) (header []string, records [][]string, err error) {
	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.TrimLeadingSpace = true

	header, err = cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read record: %w", err)
		}
		if len(rec) != len(header) {
			return nil, nil, fmt.Errorf("%w: got %d fields, want %d", ErrRaggedRow, len(rec), len(header))
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, nil, ErrNoData
	}
	return header, records, nil
}

// parseInto converts records[start:end) into the preallocated columns,
// writing each cell at its absolute row position. Chunks operating on
// disjoint ranges may run concurrently.
func parseInto(header []string, records [][]string, cols []*typedColumn, opts Options, start, end int) error {
	for i := start; i < end; i++ {
		for j, cell := range records[i] {
			if opts.isNA(cell) {
				continue // slot stays null
			}
			if err := cols[j].set(i, cell, opts); err != nil {
				return fmt.Errorf("row %d column %q: %w", i+1, header[j], err)
			}
		}
	}
	return nil
}

func buildFrame(cols []*typedColumn) (*frame.Frame, error) {
	out := make([]*frame.Series, len(cols))
	for j, c := range cols {
		out[j] = c.series()
	}
	return frame.New(out...)
}
