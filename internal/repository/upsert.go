package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sportsync/ingestion/internal/metrics"
	"sportsync/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// StoreWriteError reports the record that made a batch fail. The whole batch
// has been rolled back when this is returned.
type StoreWriteError struct {
	Table  string
	Index  int
	Key    string
	Record models.Record
	Err    error
}

func (e *StoreWriteError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("upsert %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("upsert %s: record %d (key %q): %v", e.Table, e.Index, e.Key, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// BatchOutcome summarizes one committed upsert batch. Changed counts rows
// that were inserted or whose values differed from the stored row.
type BatchOutcome struct {
	Table    string
	Written  int
	Changed  int
	Duration time.Duration
}

// TxBeginner is the part of pgxpool.Pool the writer needs.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UpsertWriter writes normalized records with insert-or-overwrite semantics.
type UpsertWriter struct {
	db TxBeginner

	mu      sync.Mutex
	queries map[string]string
}

// NewUpsertWriter creates a writer on top of a pool or any other TxBeginner.
func NewUpsertWriter(db TxBeginner) *UpsertWriter {
	return &UpsertWriter{db: db, queries: make(map[string]string)}
}

func (w *UpsertWriter) query(table models.Table) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	q, ok := w.queries[table.Name]
	if !ok {
		q = buildUpsertSQL(table)
		w.queries[table.Name] = q
	}
	return q
}

// Upsert writes records to table inside one transaction. Either every record
// is applied or none is.
func (w *UpsertWriter) Upsert(ctx context.Context, table models.Table, records []models.Record) (BatchOutcome, error) {
	start := time.Now()
	out := BatchOutcome{Table: table.Name}
	if len(records) == 0 {
		return out, nil
	}

	query := w.query(table)

	tx, err := w.db.Begin(ctx)
	if err != nil {
		metrics.RecordDBQuery("upsert", table.Name, "error", time.Since(start).Seconds())
		return out, &StoreWriteError{Table: table.Name, Index: -1, Err: fmt.Errorf("starting transaction: %w", err)}
	}
	defer tx.Rollback(ctx)

	for i, rec := range records {
		if rec.Kind() != table.Kind {
			metrics.RecordDBQuery("upsert", table.Name, "error", time.Since(start).Seconds())
			return out, &StoreWriteError{
				Table: table.Name, Index: i, Key: rec.NaturalKey(), Record: rec,
				Err: fmt.Errorf("record kind %s does not belong in table %s", rec.Kind(), table.Name),
			}
		}

		tag, err := tx.Exec(ctx, query, rec.Values()...)
		if err != nil {
			metrics.RecordDBQuery("upsert", table.Name, "error", time.Since(start).Seconds())
			return out, &StoreWriteError{Table: table.Name, Index: i, Key: rec.NaturalKey(), Record: rec, Err: err}
		}
		out.Changed += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		metrics.RecordDBQuery("upsert", table.Name, "error", time.Since(start).Seconds())
		return BatchOutcome{Table: table.Name}, &StoreWriteError{Table: table.Name, Index: -1, Err: fmt.Errorf("committing transaction: %w", err)}
	}

	out.Written = len(records)
	out.Duration = time.Since(start)
	metrics.RecordDBQuery("upsert", table.Name, "success", out.Duration.Seconds())
	metrics.RecordRowsUpserted(table.Name, out.Changed)

	log.Ctx(ctx).Debug().
		Str("table", table.Name).
		Int("written", out.Written).
		Int("changed", out.Changed).
		Dur("duration", out.Duration).
		Msg("Batch upserted")

	return out, nil
}

// buildUpsertSQL renders the insert-or-overwrite statement for table. Rows
// whose mutable values are unchanged are left alone so updated_at only moves
// on real changes.
func buildUpsertSQL(table models.Table) string {
	placeholders := make([]string, len(table.Columns))
	for i := range table.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s)\nVALUES (%s)\nON CONFLICT (%s) ",
		table.Name,
		strings.Join(table.Columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(table.ConflictKey, ", "),
	)

	mutable := table.MutableColumns()
	if len(mutable) == 0 {
		b.WriteString("DO NOTHING")
		return b.String()
	}

	sets := make([]string, 0, len(mutable)+1)
	current := make([]string, len(mutable))
	incoming := make([]string, len(mutable))
	for i, c := range mutable {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		current[i] = table.Name + "." + c
		incoming[i] = "EXCLUDED." + c
	}
	sets = append(sets, "updated_at = NOW()")

	fmt.Fprintf(&b, "DO UPDATE SET\n\t%s\nWHERE (%s) IS DISTINCT FROM (%s)",
		strings.Join(sets, ",\n\t"),
		strings.Join(current, ", "),
		strings.Join(incoming, ", "),
	)
	return b.String()
}
