package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// schemaStatements create the ingestion tables. Every statement is
// idempotent so EnsureSchema can run on each process start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id                    BIGSERIAL PRIMARY KEY,
		code                  TEXT NOT NULL UNIQUE,
		name                  TEXT NOT NULL,
		provider_id           TEXT,
		location              TEXT,
		nickname              TEXT,
		full_name             TEXT,
		conference            TEXT,
		division              TEXT,
		head_coach            TEXT,
		offensive_coordinator TEXT,
		defensive_coordinator TEXT,
		special_teams_coach   TEXT,
		primary_color         TEXT,
		secondary_color       TEXT,
		logo_url              TEXT,
		api_url               TEXT,
		site_url              TEXT,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS players (
		id           BIGSERIAL PRIMARY KEY,
		code         TEXT NOT NULL UNIQUE,
		name         TEXT,
		first_name   TEXT,
		last_name    TEXT,
		team_code    TEXT,
		team_name    TEXT,
		position     TEXT,
		jersey       INTEGER,
		height       TEXT,
		weight       INTEGER,
		experience   TEXT,
		birth_date   DATE,
		college      TEXT,
		active       BOOLEAN,
		headshot_url TEXT,
		api_url      TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_players_team_code ON players (team_code)`,

	`CREATE TABLE IF NOT EXISTS games (
		id             BIGSERIAL PRIMARY KEY,
		game_id        TEXT NOT NULL UNIQUE,
		season         INTEGER,
		week           INTEGER,
		gameday        DATE,
		start_time     TEXT,
		status         TEXT,
		visitor_code   TEXT,
		visitor_name   TEXT,
		visitor_score  INTEGER,
		home_code      TEXT,
		home_name      TEXT,
		home_score     INTEGER,
		winner_code    TEXT,
		loser_code     TEXT,
		overtime       TEXT,
		venue_name     TEXT,
		venue_location TEXT,
		attendance     INTEGER,
		api_url        TEXT,
		statline_count INTEGER,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_games_gameday ON games (gameday)`,

	`CREATE TABLE IF NOT EXISTS game_participants (
		id          BIGSERIAL PRIMARY KEY,
		game_id     TEXT NOT NULL,
		player_code TEXT NOT NULL,
		player_name TEXT,
		team_code   TEXT,
		team_name   TEXT,
		position    TEXT,
		starter     BOOLEAN,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (game_id, player_code)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_game_participants_player_code ON game_participants (player_code)`,

	`CREATE TABLE IF NOT EXISTS timeframes (
		id                     BIGSERIAL PRIMARY KEY,
		api_season             TEXT NOT NULL,
		short_name             TEXT NOT NULL,
		api_week               TEXT,
		name                   TEXT,
		season                 INTEGER,
		season_type            INTEGER,
		week                   INTEGER,
		start_date             TIMESTAMPTZ,
		end_date               TIMESTAMPTZ,
		first_game_start       TIMESTAMPTZ,
		first_game_end         TIMESTAMPTZ,
		last_game_end          TIMESTAMPTZ,
		has_started            BOOLEAN,
		has_ended              BOOLEAN,
		has_games              BOOLEAN,
		has_first_game_started BOOLEAN,
		has_first_game_ended   BOOLEAN,
		has_last_game_ended    BOOLEAN,
		created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (api_season, short_name)
	)`,

	`CREATE TABLE IF NOT EXISTS statlines (
		id                        BIGSERIAL PRIMARY KEY,
		statline_id               TEXT NOT NULL UNIQUE,
		player_code               TEXT,
		player_name               TEXT,
		team_code                 TEXT,
		game_id                   TEXT,
		gameday                   DATE,
		season                    INTEGER,
		position                  TEXT,
		passing_completions       INTEGER,
		passing_attempts          INTEGER,
		passing_yards             INTEGER,
		passing_touchdowns        INTEGER,
		passing_interceptions     INTEGER,
		passing_long              INTEGER,
		passing_sacks             INTEGER,
		passing_rating            DOUBLE PRECISION,
		rushing_attempts          INTEGER,
		rushing_yards             INTEGER,
		rushing_touchdowns        INTEGER,
		rushing_long              INTEGER,
		rushing_yards_per_attempt DOUBLE PRECISION,
		receiving_targets         INTEGER,
		receptions                INTEGER,
		receiving_yards           INTEGER,
		receiving_touchdowns      INTEGER,
		receiving_long            INTEGER,
		fumbles                   INTEGER,
		fumbles_lost              INTEGER,
		two_point_conversions     INTEGER,
		kick_return_yards         INTEGER,
		kick_return_touchdowns    INTEGER,
		punt_return_yards         INTEGER,
		punt_return_touchdowns    INTEGER,
		pcr_value                 DOUBLE PRECISION,
		pcr_offense               DOUBLE PRECISION,
		pcr_defense               DOUBLE PRECISION,
		pcr_grade                 TEXT,
		created_at                TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at                TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_statlines_player_code ON statlines (player_code)`,
	`CREATE INDEX IF NOT EXISTS idx_statlines_game_id ON statlines (game_id)`,
}

// EnsureSchema creates any missing tables and indexes.
func (db *Database) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	log.Info().Int("statements", len(schemaStatements)).Msg("Database schema ready")
	return nil
}
