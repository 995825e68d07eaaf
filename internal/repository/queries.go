package repository

import (
	"context"
	"fmt"
	"time"

	"sportsync/ingestion/internal/metrics"
	"sportsync/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// ListPlayerRefs returns every stored player in code order. It drives the
// per-player statline fan-out.
func (db *Database) ListPlayerRefs(ctx context.Context) ([]models.PlayerRef, error) {
	start := time.Now()
	query := `SELECT code, COALESCE(name, '') FROM players ORDER BY code`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		metrics.RecordDBQuery("select", "players", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	refs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PlayerRef, error) {
		var ref models.PlayerRef
		err := row.Scan(&ref.Code, &ref.Name)
		return ref, err
	})
	if err != nil {
		metrics.RecordDBQuery("select", "players", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to scan players: %w", err)
	}

	metrics.RecordDBQuery("select", "players", "success", time.Since(start).Seconds())
	return refs, nil
}

// ListTeamCodes returns every stored team code in order.
func (db *Database) ListTeamCodes(ctx context.Context) ([]string, error) {
	start := time.Now()

	rows, err := db.Pool.Query(ctx, `SELECT code FROM teams ORDER BY code`)
	if err != nil {
		metrics.RecordDBQuery("select", "teams", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	codes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		metrics.RecordDBQuery("select", "teams", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to scan teams: %w", err)
	}

	metrics.RecordDBQuery("select", "teams", "success", time.Since(start).Seconds())
	return codes, nil
}

// ListGameIDs returns every stored game id in order. It drives the per-game
// roster fan-out.
func (db *Database) ListGameIDs(ctx context.Context) ([]string, error) {
	start := time.Now()

	rows, err := db.Pool.Query(ctx, `SELECT game_id FROM games ORDER BY game_id`)
	if err != nil {
		metrics.RecordDBQuery("select", "games", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		metrics.RecordDBQuery("select", "games", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to scan games: %w", err)
	}

	metrics.RecordDBQuery("select", "games", "success", time.Since(start).Seconds())
	return ids, nil
}

// Count returns the number of rows stored for kind.
func (db *Database) Count(ctx context.Context, kind models.Kind) (int64, error) {
	table, ok := models.TableFor(kind)
	if !ok {
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}

	var n int64
	if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table.Name).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table.Name, err)
	}
	return n, nil
}
