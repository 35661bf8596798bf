package frame

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// String renders the frame as an aligned table. Frames longer than 20 rows
// are elided in the middle; use Head/Tail for explicit windows.
func (f *Frame) String() string {
	const maxRows = 20

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 2, 4, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(f.Columns(), "\t"))

	rows := f.Rows()
	writeRow := func(i int) {
		cells := make([]string, len(f.cols))
		for j, c := range f.cols {
			cells[j] = c.cellString(i)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}

	if rows <= maxRows {
		for i := 0; i < rows; i++ {
			writeRow(i)
		}
	} else {
		for i := 0; i < maxRows/2; i++ {
			writeRow(i)
		}
		fmt.Fprintln(w, "...")
		for i := rows - maxRows/2; i < rows; i++ {
			writeRow(i)
		}
	}

	w.Flush()
	nrows, ncols := f.Shape()
	fmt.Fprintf(&sb, "[%d rows x %d columns]\n", nrows, ncols)
	return sb.String()
}
