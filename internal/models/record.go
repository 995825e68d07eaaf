package models

import "database/sql"

// Kind identifies one ingested entity type.
type Kind string

const (
	KindTeam      Kind = "team"
	KindPlayer    Kind = "player"
	KindGame      Kind = "game"
	KindTimeframe Kind = "timeframe"
	KindStatline  Kind = "statline"

	KindParticipant Kind = "participant"
)

// Kinds lists every entity kind in job dependency order.
var Kinds = []Kind{KindTeam, KindPlayer, KindGame, KindParticipant, KindTimeframe, KindStatline}

// Record is one flat, normalized row ready for upsert. Values are returned in
// the same order as the owning Table's Columns.
type Record interface {
	Kind() Kind
	NaturalKey() string
	Values() []any
}

// Table describes the relational target of one entity kind.
type Table struct {
	Name        string
	Kind        Kind
	ConflictKey []string
	Columns     []string
}

// MutableColumns returns the columns that are not part of the conflict key.
func (t Table) MutableColumns() []string {
	key := make(map[string]struct{}, len(t.ConflictKey))
	for _, k := range t.ConflictKey {
		key[k] = struct{}{}
	}
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if _, ok := key[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

var tables = map[Kind]Table{
	KindTeam:      TeamsTable,
	KindPlayer:    PlayersTable,
	KindGame:      GamesTable,
	KindTimeframe: TimeframesTable,
	KindStatline:  StatlinesTable,

	KindParticipant: ParticipantsTable,
}

// TableFor returns the table descriptor for kind.
func TableFor(kind Kind) (Table, bool) {
	t, ok := tables[kind]
	return t, ok
}

// PlayerRef is the minimal player identity used to drive per-player fan-out.
type PlayerRef struct {
	Code string
	Name string
}

// NullString returns a valid sql.NullString unless s is empty.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
