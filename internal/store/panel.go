package store

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panelframe/panelframe/tsframe"
)

// identPattern is the set of identifiers passed through to SQL verbatim.
// Frame columns and table names come from config and file headers, not
// user input, but a typo should fail loudly rather than inject.
var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PanelWriter bulk-inserts panel frames into a table whose columns match
// the frame's. The index columns (grain + timestamp) must form the
// table's unique constraint; duplicate rows are skipped, not updated.
type PanelWriter struct {
	db        *pgxpool.Pool
	logger    *slog.Logger
	batchSize int
}

// NewPanelWriter creates a panel writer.
func NewPanelWriter(db *pgxpool.Pool, logger *slog.Logger, batchSize int) *PanelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize < 1 {
		batchSize = 1000
	}
	return &PanelWriter{db: db, logger: logger, batchSize: batchSize}
}

// Write inserts every row of the panel into table. Returns the number of
// inserted rows and the number skipped as conflicts.
func (w *PanelWriter) Write(ctx context.Context, tf *tsframe.TimeFrame, table string) (inserted, conflicts int, err error) {
	sql, err := insertSQL(tf, table)
	if err != nil {
		return 0, 0, err
	}

	f := tf.Frame()
	cols := f.Columns()
	start := time.Now()

	for lo := 0; lo < f.Rows(); lo += w.batchSize {
		hi := lo + w.batchSize
		if hi > f.Rows() {
			hi = f.Rows()
		}

		batch := &pgx.Batch{}
		for i := lo; i < hi; i++ {
			args := make([]any, len(cols))
			r := f.Row(i)
			for j, name := range cols {
				args[j] = r.Value(name)
			}
			batch.Queue(sql, args...)
		}

		results := w.db.SendBatch(ctx, batch)
		for i := lo; i < hi; i++ {
			ct, err := results.Exec()
			if err != nil {
				results.Close()
				return inserted, conflicts, fmt.Errorf("insert row %d: %w", i, err)
			}
			if ct.RowsAffected() == 0 {
				conflicts++
			} else {
				inserted++
			}
		}
		if err := results.Close(); err != nil {
			return inserted, conflicts, fmt.Errorf("close batch: %w", err)
		}
	}

	w.logger.Info("panel written",
		"table", table,
		"rows", f.Rows(),
		"inserted", inserted,
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
	return inserted, conflicts, nil
}

// insertSQL renders the INSERT statement for the panel's layout, with the
// index columns as the conflict target.
func insertSQL(tf *tsframe.TimeFrame, table string) (string, error) {
	cols := tf.Frame().Columns()
	spec := tf.Spec()
	conflict := append(append([]string{}, spec.Grain...), spec.TimeColumn)

	for _, ident := range append(append([]string{table}, cols...), conflict...) {
		if !identPattern.MatchString(ident) {
			return "", fmt.Errorf("unsafe identifier %q", ident)
		}
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(conflict, ", "),
	), nil
}
