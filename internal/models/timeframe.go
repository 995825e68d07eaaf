package models

import "database/sql"

// TimeframesTable is keyed by the provider season descriptor and the short
// week name, e.g. ("2024REG", "Week 3").
var TimeframesTable = Table{
	Name:        "timeframes",
	Kind:        KindTimeframe,
	ConflictKey: []string{"api_season", "short_name"},
	Columns: []string{
		"api_season", "short_name", "api_week", "name", "season",
		"season_type", "week", "start_date", "end_date",
		"first_game_start", "first_game_end", "last_game_end",
		"has_started", "has_ended", "has_games",
		"has_first_game_started", "has_first_game_ended", "has_last_game_ended",
	},
}

// Timeframe describes one week of a season
type Timeframe struct {
	APISeason           string         `db:"api_season" validate:"required"`
	ShortName           string         `db:"short_name" validate:"required"`
	APIWeek             sql.NullString `db:"api_week"`
	Name                sql.NullString `db:"name"`
	Season              sql.NullInt64  `db:"season"`
	SeasonType          sql.NullInt64  `db:"season_type"`
	Week                sql.NullInt64  `db:"week"`
	StartDate           sql.NullTime   `db:"start_date"`
	EndDate             sql.NullTime   `db:"end_date"`
	FirstGameStart      sql.NullTime   `db:"first_game_start"`
	FirstGameEnd        sql.NullTime   `db:"first_game_end"`
	LastGameEnd         sql.NullTime   `db:"last_game_end"`
	HasStarted          sql.NullBool   `db:"has_started"`
	HasEnded            sql.NullBool   `db:"has_ended"`
	HasGames            sql.NullBool   `db:"has_games"`
	HasFirstGameStarted sql.NullBool   `db:"has_first_game_started"`
	HasFirstGameEnded   sql.NullBool   `db:"has_first_game_ended"`
	HasLastGameEnded    sql.NullBool   `db:"has_last_game_ended"`
}

func (t *Timeframe) Kind() Kind { return KindTimeframe }

func (t *Timeframe) NaturalKey() string { return t.APISeason + "/" + t.ShortName }

func (t *Timeframe) Values() []any {
	return []any{
		t.APISeason, t.ShortName, t.APIWeek, t.Name, t.Season,
		t.SeasonType, t.Week, t.StartDate, t.EndDate,
		t.FirstGameStart, t.FirstGameEnd, t.LastGameEnd,
		t.HasStarted, t.HasEnded, t.HasGames,
		t.HasFirstGameStarted, t.HasFirstGameEnded, t.HasLastGameEnded,
	}
}
