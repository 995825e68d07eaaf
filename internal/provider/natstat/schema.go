package natstat

import (
	"encoding/json"

	"sportsync/ingestion/internal/provider"
)

// Wire shapes of the NatStat (interst.at) API. Every field is optional on
// the wire; required keys are enforced on the normalized record.

type envelope struct {
	Success provider.Bool             `json:"success"`
	Meta    provider.Nested[pageMeta] `json:"meta"`
}

type pageMeta struct {
	PageNext provider.String `json:"page-next"`
}

type links struct {
	APIURL          provider.String `json:"apiurl"`
	SiteURL         provider.String `json:"siteurl"`
	PlayerStatlines provider.Int    `json:"playerstatlines"`
	PlayByPlay      provider.Int    `json:"playbyplay"`
}

type team struct {
	ID         provider.String        `json:"id"`
	Code       provider.String        `json:"code"`
	Name       provider.String        `json:"name"`
	Nickname   provider.String        `json:"nickname"`
	FullName   provider.String        `json:"fullname"`
	Location   provider.String        `json:"location"`
	Conference provider.String        `json:"conference"`
	Division   provider.String        `json:"division"`
	Coach      provider.String        `json:"coach"`
	Meta       provider.Nested[links] `json:"meta"`
}

type teamRef struct {
	ID   provider.String `json:"id"`
	Code provider.String `json:"code"`
	Name provider.String `json:"name"`
}

type bio struct {
	HeightFtIn provider.String `json:"height_ftin"`
	WeightLbs  provider.Int    `json:"weight_lbs"`
	Birthday   provider.Time   `json:"birthday"`
	College    provider.String `json:"college"`
}

type player struct {
	ID         provider.String          `json:"id"`
	Name       provider.String          `json:"name"`
	FirstName  provider.String          `json:"firstname"`
	LastName   provider.String          `json:"lastname"`
	Position   provider.String          `json:"position"`
	Jersey     provider.Int             `json:"jersey"`
	Experience provider.String          `json:"experience"`
	Active     provider.Bool            `json:"active"`
	Team       provider.Nested[teamRef] `json:"team"`
	Bio        provider.Nested[bio]     `json:"bio"`
	Meta       provider.Nested[links]   `json:"meta"`
}

type side struct {
	ID           provider.String `json:"id"`
	Code         provider.String `json:"code"`
	Team         provider.String `json:"team"`
	TeamFullName provider.String `json:"team_fullname"`
	Score        provider.Int    `json:"score"`
}

type outcome struct {
	Code provider.String `json:"code"`
	Team provider.String `json:"team"`
}

type venue struct {
	Name      provider.String `json:"name"`
	CityState provider.String `json:"citystate"`
	Nation    provider.String `json:"nation"`
}

type game struct {
	ID         provider.String          `json:"id"`
	Season     provider.Int             `json:"season"`
	Week       provider.Int             `json:"week"`
	Gameday    provider.Time            `json:"gameday"`
	StartTime  provider.String          `json:"starttime"`
	Status     provider.String          `json:"status"`
	Overtime   provider.String          `json:"overtime"`
	Visitor    provider.Nested[side]    `json:"visitor"`
	Home       provider.Nested[side]    `json:"home"`
	Winner     provider.Nested[outcome] `json:"winner"`
	Loser      provider.Nested[outcome] `json:"loser"`
	Venue      provider.Nested[venue]   `json:"venue"`
	Attendance provider.Int             `json:"attendance"`
	Meta       provider.Nested[links]   `json:"meta"`
}

type gameRef struct {
	ID      provider.String `json:"id"`
	Gameday provider.Time   `json:"gameday"`
	Season  provider.Int    `json:"season"`
}

type pcr struct {
	Value   provider.Float  `json:"value"`
	Offense provider.Float  `json:"offense"`
	Defense provider.Float  `json:"defense"`
	Grade   provider.String `json:"grade"`
}

type performance struct {
	ID       provider.String          `json:"id"`
	Player   provider.Nested[teamRef] `json:"player"`
	Team     provider.Nested[teamRef] `json:"team"`
	Game     provider.Nested[gameRef] `json:"game"`
	Position provider.String          `json:"position"`

	PassCmp  provider.Int   `json:"passcmp"`
	PassAtt  provider.Int   `json:"passatt"`
	PassYds  provider.Int   `json:"passyds"`
	PassTD   provider.Int   `json:"passtd"`
	PassInt  provider.Int   `json:"passint"`
	PassLong provider.Int   `json:"passlong"`
	Sacked   provider.Int   `json:"sacked"`
	PassRtg  provider.Float `json:"passrtg"`

	RushAtt  provider.Int   `json:"rushatt"`
	RushYds  provider.Int   `json:"rushyds"`
	RushTD   provider.Int   `json:"rushtd"`
	RushLong provider.Int   `json:"rushlong"`
	RushAvg  provider.Float `json:"rushavg"`

	RecTgt  provider.Int `json:"rectgt"`
	Rec     provider.Int `json:"rec"`
	RecYds  provider.Int `json:"recyds"`
	RecTD   provider.Int `json:"rectd"`
	RecLong provider.Int `json:"reclong"`

	Fum     provider.Int `json:"fum"`
	FumLost provider.Int `json:"fumlost"`
	TwoPt   provider.Int `json:"twopt"`
	KRYds   provider.Int `json:"kryds"`
	KRTD    provider.Int `json:"krtd"`
	PRYds   provider.Int `json:"pryds"`
	PRTD    provider.Int `json:"prtd"`

	PCR provider.Nested[pcr] `json:"pcr"`
}

// rosterGame is a game detail document reduced to what the roster needs.
type rosterGame struct {
	ID      provider.String        `json:"id"`
	Players json.RawMessage        `json:"players"`
	Meta    provider.Nested[links] `json:"meta"`
}

// rosterEntry is built by rosterItems; rosterEntryWire reads it back.
type rosterEntry struct {
	GameID string          `json:"game_id"`
	Player json.RawMessage `json:"player"`
}

type rosterEntryWire struct {
	GameID provider.String              `json:"game_id"`
	Player provider.Nested[participant] `json:"player"`
}

type participant struct {
	ID       provider.String          `json:"id"`
	Code     provider.String          `json:"code"`
	Name     provider.String          `json:"name"`
	Position provider.String          `json:"position"`
	Starter  provider.Bool            `json:"starter"`
	Team     provider.Nested[teamRef] `json:"team"`
}
