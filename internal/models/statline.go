package models

import "database/sql"

// StatlinesTable holds one row per player per game. The pcr_* columns carry
// the flattened performance rating and are all null when it is absent.
var StatlinesTable = Table{
	Name:        "statlines",
	Kind:        KindStatline,
	ConflictKey: []string{"statline_id"},
	Columns: []string{
		"statline_id", "player_code", "player_name", "team_code", "game_id",
		"gameday", "season", "position",
		"passing_completions", "passing_attempts", "passing_yards",
		"passing_touchdowns", "passing_interceptions", "passing_long",
		"passing_sacks", "passing_rating",
		"rushing_attempts", "rushing_yards", "rushing_touchdowns",
		"rushing_long", "rushing_yards_per_attempt",
		"receiving_targets", "receptions", "receiving_yards",
		"receiving_touchdowns", "receiving_long",
		"fumbles", "fumbles_lost", "two_point_conversions",
		"kick_return_yards", "kick_return_touchdowns",
		"punt_return_yards", "punt_return_touchdowns",
		"pcr_value", "pcr_offense", "pcr_defense", "pcr_grade",
	},
}

// Statline is one player's offensive performance in one game
type Statline struct {
	StatlineID string         `db:"statline_id" validate:"required"`
	PlayerCode sql.NullString `db:"player_code"`
	PlayerName sql.NullString `db:"player_name"`
	TeamCode   sql.NullString `db:"team_code"`
	GameID     sql.NullString `db:"game_id"`
	Gameday    sql.NullTime   `db:"gameday"`
	Season     sql.NullInt64  `db:"season"`
	Position   sql.NullString `db:"position"`

	PassingCompletions   sql.NullInt64   `db:"passing_completions"`
	PassingAttempts      sql.NullInt64   `db:"passing_attempts"`
	PassingYards         sql.NullInt64   `db:"passing_yards"`
	PassingTouchdowns    sql.NullInt64   `db:"passing_touchdowns"`
	PassingInterceptions sql.NullInt64   `db:"passing_interceptions"`
	PassingLong          sql.NullInt64   `db:"passing_long"`
	PassingSacks         sql.NullInt64   `db:"passing_sacks"`
	PassingRating        sql.NullFloat64 `db:"passing_rating"`

	RushingAttempts        sql.NullInt64   `db:"rushing_attempts"`
	RushingYards           sql.NullInt64   `db:"rushing_yards"`
	RushingTouchdowns      sql.NullInt64   `db:"rushing_touchdowns"`
	RushingLong            sql.NullInt64   `db:"rushing_long"`
	RushingYardsPerAttempt sql.NullFloat64 `db:"rushing_yards_per_attempt"`

	ReceivingTargets    sql.NullInt64 `db:"receiving_targets"`
	Receptions          sql.NullInt64 `db:"receptions"`
	ReceivingYards      sql.NullInt64 `db:"receiving_yards"`
	ReceivingTouchdowns sql.NullInt64 `db:"receiving_touchdowns"`
	ReceivingLong       sql.NullInt64 `db:"receiving_long"`

	Fumbles              sql.NullInt64 `db:"fumbles"`
	FumblesLost          sql.NullInt64 `db:"fumbles_lost"`
	TwoPointConversions  sql.NullInt64 `db:"two_point_conversions"`
	KickReturnYards      sql.NullInt64 `db:"kick_return_yards"`
	KickReturnTouchdowns sql.NullInt64 `db:"kick_return_touchdowns"`
	PuntReturnYards      sql.NullInt64 `db:"punt_return_yards"`
	PuntReturnTouchdowns sql.NullInt64 `db:"punt_return_touchdowns"`

	PCRValue   sql.NullFloat64 `db:"pcr_value"`
	PCROffense sql.NullFloat64 `db:"pcr_offense"`
	PCRDefense sql.NullFloat64 `db:"pcr_defense"`
	PCRGrade   sql.NullString  `db:"pcr_grade"`
}

func (s *Statline) Kind() Kind         { return KindStatline }
func (s *Statline) NaturalKey() string { return s.StatlineID }

func (s *Statline) Values() []any {
	return []any{
		s.StatlineID, s.PlayerCode, s.PlayerName, s.TeamCode, s.GameID,
		s.Gameday, s.Season, s.Position,
		s.PassingCompletions, s.PassingAttempts, s.PassingYards,
		s.PassingTouchdowns, s.PassingInterceptions, s.PassingLong,
		s.PassingSacks, s.PassingRating,
		s.RushingAttempts, s.RushingYards, s.RushingTouchdowns,
		s.RushingLong, s.RushingYardsPerAttempt,
		s.ReceivingTargets, s.Receptions, s.ReceivingYards,
		s.ReceivingTouchdowns, s.ReceivingLong,
		s.Fumbles, s.FumblesLost, s.TwoPointConversions,
		s.KickReturnYards, s.KickReturnTouchdowns,
		s.PuntReturnYards, s.PuntReturnTouchdowns,
		s.PCRValue, s.PCROffense, s.PCRDefense, s.PCRGrade,
	}
}

// HasPCR reports whether any performance rating field is populated.
func (s *Statline) HasPCR() bool {
	return s.PCRValue.Valid || s.PCROffense.Valid || s.PCRDefense.Valid || s.PCRGrade.Valid
}
