package models

import "database/sql"

// TeamsTable is keyed by the provider team code.
var TeamsTable = Table{
	Name:        "teams",
	Kind:        KindTeam,
	ConflictKey: []string{"code"},
	Columns: []string{
		"code", "name", "provider_id", "location", "nickname", "full_name",
		"conference", "division", "head_coach", "offensive_coordinator",
		"defensive_coordinator", "special_teams_coach", "primary_color",
		"secondary_color", "logo_url", "api_url", "site_url",
	},
}

// Team represents a team as stored in the teams table
type Team struct {
	Code                 string         `db:"code" validate:"required"`
	Name                 string         `db:"name" validate:"required"`
	ProviderID           sql.NullString `db:"provider_id"`
	Location             sql.NullString `db:"location"`
	Nickname             sql.NullString `db:"nickname"`
	FullName             sql.NullString `db:"full_name"`
	Conference           sql.NullString `db:"conference"`
	Division             sql.NullString `db:"division"`
	HeadCoach            sql.NullString `db:"head_coach"`
	OffensiveCoordinator sql.NullString `db:"offensive_coordinator"`
	DefensiveCoordinator sql.NullString `db:"defensive_coordinator"`
	SpecialTeamsCoach    sql.NullString `db:"special_teams_coach"`
	PrimaryColor         sql.NullString `db:"primary_color"`
	SecondaryColor       sql.NullString `db:"secondary_color"`
	LogoURL              sql.NullString `db:"logo_url"`
	APIURL               sql.NullString `db:"api_url"`
	SiteURL              sql.NullString `db:"site_url"`
}

func (t *Team) Kind() Kind         { return KindTeam }
func (t *Team) NaturalKey() string { return t.Code }

func (t *Team) Values() []any {
	return []any{
		t.Code, t.Name, t.ProviderID, t.Location, t.Nickname, t.FullName,
		t.Conference, t.Division, t.HeadCoach, t.OffensiveCoordinator,
		t.DefensiveCoordinator, t.SpecialTeamsCoach, t.PrimaryColor,
		t.SecondaryColor, t.LogoURL, t.APIURL, t.SiteURL,
	}
}
