package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sportsync/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpsertSQL_SingleKey(t *testing.T) {
	table := models.Table{
		Name:        "teams",
		Kind:        models.KindTeam,
		ConflictKey: []string{"code"},
		Columns:     []string{"code", "name", "conference"},
	}

	sql := buildUpsertSQL(table)

	assert.Contains(t, sql, "INSERT INTO teams (code, name, conference)")
	assert.Contains(t, sql, "VALUES ($1, $2, $3)")
	assert.Contains(t, sql, "ON CONFLICT (code) DO UPDATE SET")
	assert.Contains(t, sql, "name = EXCLUDED.name")
	assert.Contains(t, sql, "conference = EXCLUDED.conference")
	assert.Contains(t, sql, "updated_at = NOW()")
	assert.Contains(t, sql, "WHERE (teams.name, teams.conference) IS DISTINCT FROM (EXCLUDED.name, EXCLUDED.conference)")
	assert.NotContains(t, sql, "code = EXCLUDED.code", "key columns are never overwritten")
}

func TestBuildUpsertSQL_CompositeKey(t *testing.T) {
	sql := buildUpsertSQL(models.TimeframesTable)

	assert.Contains(t, sql, "ON CONFLICT (api_season, short_name)")
	assert.NotContains(t, sql, "api_season = EXCLUDED")
	assert.NotContains(t, sql, "short_name = EXCLUDED")
	assert.Contains(t, sql, "has_last_game_ended = EXCLUDED.has_last_game_ended")
	assert.Contains(t, sql, "$18)")
}

func TestBuildUpsertSQL_AllTablesCoverEveryColumn(t *testing.T) {
	for _, kind := range models.Kinds {
		table, ok := models.TableFor(kind)
		require.True(t, ok)

		sql := buildUpsertSQL(table)
		for _, col := range table.MutableColumns() {
			assert.Contains(t, sql, col+" = EXCLUDED."+col, "%s.%s", table.Name, col)
		}
		assert.Equal(t, len(table.Columns), strings.Count(sql, "$"), table.Name)
	}
}

// fakeTx records Exec calls; the embedded nil interface panics on anything
// the writer is not expected to use.
type fakeTx struct {
	pgx.Tx

	failAt     int
	execs      int
	committed  bool
	rolledBack bool
	changed    []bool
}

func (tx *fakeTx) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	i := tx.execs
	tx.execs++
	if i == tx.failAt {
		return pgconn.CommandTag{}, errors.New("value too long for type character varying")
	}
	if i < len(tx.changed) && !tx.changed[i] {
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

type fakeBeginner struct{ tx *fakeTx }

func (b fakeBeginner) Begin(context.Context) (pgx.Tx, error) { return b.tx, nil }

func teams(codes ...string) []models.Record {
	out := make([]models.Record, len(codes))
	for i, c := range codes {
		out[i] = &models.Team{Code: c, Name: "Team " + c}
	}
	return out
}

func TestUpsertWriter_CommitsBatch(t *testing.T) {
	tx := &fakeTx{failAt: -1, changed: []bool{true, false, true}}
	w := NewUpsertWriter(fakeBeginner{tx: tx})

	out, err := w.Upsert(context.Background(), models.TeamsTable, teams("ALA", "UGA", "OSU"))
	require.NoError(t, err)

	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
	assert.Equal(t, 3, out.Written)
	assert.Equal(t, 2, out.Changed, "unchanged rows are not counted")
	assert.Equal(t, "teams", out.Table)
}

func TestUpsertWriter_RollsBackOnRowError(t *testing.T) {
	tx := &fakeTx{failAt: 1}
	w := NewUpsertWriter(fakeBeginner{tx: tx})

	out, err := w.Upsert(context.Background(), models.TeamsTable, teams("ALA", "UGA", "OSU"))
	require.Error(t, err)

	var serr *StoreWriteError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 1, serr.Index)
	assert.Equal(t, "UGA", serr.Key)
	assert.Equal(t, "teams", serr.Table)
	require.NotNil(t, serr.Record)
	assert.Equal(t, "UGA", serr.Record.NaturalKey())

	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
	assert.Equal(t, 2, tx.execs, "no rows are written after the failure")
	assert.Zero(t, out.Written)
}

func TestUpsertWriter_RejectsWrongKind(t *testing.T) {
	tx := &fakeTx{failAt: -1}
	w := NewUpsertWriter(fakeBeginner{tx: tx})

	records := []models.Record{&models.Player{Code: "1"}}
	_, err := w.Upsert(context.Background(), models.TeamsTable, records)

	var serr *StoreWriteError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 0, serr.Index)
	assert.True(t, tx.rolledBack)
}

func TestUpsertWriter_EmptyBatchSkipsTransaction(t *testing.T) {
	w := NewUpsertWriter(fakeBeginner{})

	out, err := w.Upsert(context.Background(), models.TeamsTable, nil)
	require.NoError(t, err)
	assert.Zero(t, out.Written)
}
