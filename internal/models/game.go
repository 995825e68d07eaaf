package models

import "database/sql"

// GamesTable is keyed by the provider game id.
var GamesTable = Table{
	Name:        "games",
	Kind:        KindGame,
	ConflictKey: []string{"game_id"},
	Columns: []string{
		"game_id", "season", "week", "gameday", "start_time", "status",
		"visitor_code", "visitor_name", "visitor_score",
		"home_code", "home_name", "home_score",
		"winner_code", "loser_code", "overtime",
		"venue_name", "venue_location", "attendance",
		"api_url", "statline_count",
	},
}

// Game represents a single scheduled or completed game
type Game struct {
	GameID        string         `db:"game_id" validate:"required"`
	Season        sql.NullInt64  `db:"season"`
	Week          sql.NullInt64  `db:"week"`
	Gameday       sql.NullTime   `db:"gameday"`
	StartTime     sql.NullString `db:"start_time"`
	Status        sql.NullString `db:"status"`
	VisitorCode   sql.NullString `db:"visitor_code"`
	VisitorName   sql.NullString `db:"visitor_name"`
	VisitorScore  sql.NullInt64  `db:"visitor_score"`
	HomeCode      sql.NullString `db:"home_code"`
	HomeName      sql.NullString `db:"home_name"`
	HomeScore     sql.NullInt64  `db:"home_score"`
	WinnerCode    sql.NullString `db:"winner_code"`
	LoserCode     sql.NullString `db:"loser_code"`
	Overtime      sql.NullString `db:"overtime"`
	VenueName     sql.NullString `db:"venue_name"`
	VenueLocation sql.NullString `db:"venue_location"`
	Attendance    sql.NullInt64  `db:"attendance"`
	APIURL        sql.NullString `db:"api_url"`
	StatlineCount sql.NullInt64  `db:"statline_count"`
}

func (g *Game) Kind() Kind         { return KindGame }
func (g *Game) NaturalKey() string { return g.GameID }

func (g *Game) Values() []any {
	return []any{
		g.GameID, g.Season, g.Week, g.Gameday, g.StartTime, g.Status,
		g.VisitorCode, g.VisitorName, g.VisitorScore,
		g.HomeCode, g.HomeName, g.HomeScore,
		g.WinnerCode, g.LoserCode, g.Overtime,
		g.VenueName, g.VenueLocation, g.Attendance,
		g.APIURL, g.StatlineCount,
	}
}

// IsFinal returns true if the game has a recorded final status
func (g *Game) IsFinal() bool {
	if !g.Status.Valid {
		return false
	}
	switch g.Status.String {
	case "Final", "F/OT", "Final/OT":
		return true
	}
	return false
}
