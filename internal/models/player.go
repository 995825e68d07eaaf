package models

import "database/sql"

// PlayersTable is keyed by the provider player code. team_code is a soft
// reference to teams.code and carries no foreign key.
var PlayersTable = Table{
	Name:        "players",
	Kind:        KindPlayer,
	ConflictKey: []string{"code"},
	Columns: []string{
		"code", "name", "first_name", "last_name", "team_code", "team_name",
		"position", "jersey", "height", "weight", "experience", "birth_date",
		"college", "active", "headshot_url", "api_url",
	},
}

// Player represents a rostered player
type Player struct {
	Code        string         `db:"code" validate:"required"`
	Name        sql.NullString `db:"name"`
	FirstName   sql.NullString `db:"first_name"`
	LastName    sql.NullString `db:"last_name"`
	TeamCode    sql.NullString `db:"team_code"`
	TeamName    sql.NullString `db:"team_name"`
	Position    sql.NullString `db:"position"`
	Jersey      sql.NullInt64  `db:"jersey"`
	Height      sql.NullString `db:"height"`
	Weight      sql.NullInt64  `db:"weight"`
	Experience  sql.NullString `db:"experience"`
	BirthDate   sql.NullTime   `db:"birth_date"`
	College     sql.NullString `db:"college"`
	Active      sql.NullBool   `db:"active"`
	HeadshotURL sql.NullString `db:"headshot_url"`
	APIURL      sql.NullString `db:"api_url"`
}

func (p *Player) Kind() Kind         { return KindPlayer }
func (p *Player) NaturalKey() string { return p.Code }

func (p *Player) Values() []any {
	return []any{
		p.Code, p.Name, p.FirstName, p.LastName, p.TeamCode, p.TeamName,
		p.Position, p.Jersey, p.Height, p.Weight, p.Experience, p.BirthDate,
		p.College, p.Active, p.HeadshotURL, p.APIURL,
	}
}

// Ref returns the identity used for per-player fan-out.
func (p *Player) Ref() PlayerRef {
	return PlayerRef{Code: p.Code, Name: p.Name.String}
}
