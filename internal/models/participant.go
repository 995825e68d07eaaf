package models

import "database/sql"

// ParticipantsTable holds the per-game roster: one row per player who took
// part in a game.
var ParticipantsTable = Table{
	Name:        "game_participants",
	Kind:        KindParticipant,
	ConflictKey: []string{"game_id", "player_code"},
	Columns: []string{
		"game_id", "player_code", "player_name",
		"team_code", "team_name", "position", "starter",
	},
}

// Participant is one player on a game's roster
type Participant struct {
	GameID     string         `db:"game_id" validate:"required"`
	PlayerCode string         `db:"player_code" validate:"required"`
	PlayerName sql.NullString `db:"player_name"`
	TeamCode   sql.NullString `db:"team_code"`
	TeamName   sql.NullString `db:"team_name"`
	Position   sql.NullString `db:"position"`
	Starter    sql.NullBool   `db:"starter"`
}

func (p *Participant) Kind() Kind         { return KindParticipant }
func (p *Participant) NaturalKey() string { return p.GameID + "/" + p.PlayerCode }

func (p *Participant) Values() []any {
	return []any{
		p.GameID, p.PlayerCode, p.PlayerName,
		p.TeamCode, p.TeamName, p.Position, p.Starter,
	}
}
