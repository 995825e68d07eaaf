// Package natstat adapts the NatStat sports API. Listings are keyed objects
// ({"teams": {"team_1": {...}}}) wrapped in a success flag, with the next page
// under meta.page-next.
package natstat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"sportsync/ingestion/internal/client"
	"sportsync/ingestion/internal/models"
	"sportsync/ingestion/internal/provider"

	"github.com/bytedance/sonic"
)

// Name identifies this provider in config and logs.
const Name = "natstat"

var collectionKeys = map[models.Kind]string{
	models.KindTeam:     "teams",
	models.KindPlayer:   "players",
	models.KindGame:     "games",
	models.KindStatline: "performances",

	models.KindParticipant: "games",
}

// gameIDPattern pulls the numeric game id out of a game api url such as
// https://interst.at/game/pfb/123456.
var gameIDPattern = regexp.MustCompile(`/[A-Za-z]+/(\d+)(?:[/?#]|$)`)

// Adapter implements provider.Adapter for NatStat.
type Adapter struct {
	baseURL string
	apiKey  string
	league  string
	season  string
}

// New creates a NatStat adapter. apiKey may be empty.
func New(baseURL, apiKey, league, season string) *Adapter {
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		league:  league,
		season:  season,
	}
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) Supports(kind models.Kind) bool {
	_, ok := collectionKeys[kind]
	return ok
}

func (a *Adapter) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	u := a.baseURL + "/" + strings.Join(escaped, "/")
	if a.apiKey != "" {
		u += "?key=" + url.QueryEscape(a.apiKey)
	}
	return u
}

func (a *Adapter) ListURL(kind models.Kind) (string, error) {
	switch kind {
	case models.KindTeam:
		return a.endpoint("team", a.league, a.season), nil
	case models.KindGame:
		return a.endpoint("game", a.league, a.season), nil
	}
	return "", fmt.Errorf("%s list %s: %w", Name, kind, provider.ErrUnsupportedKind)
}

func (a *Adapter) PlayersURL(teamCode string) string {
	return a.endpoint("player", a.league, teamCode)
}

func (a *Adapter) StatlinesURL(player models.PlayerRef) string {
	return a.endpoint("playerperfs", a.league, player.Code)
}

func (a *Adapter) GameURL(gameID string) string {
	return a.endpoint("game", a.league, gameID)
}

type rules struct {
	key string
}

// Inspect accepts a page when success is truthy and the collection key is
// present and non-null.
func (r rules) Inspect(body []byte) (bool, string, error) {
	var top map[string]json.RawMessage
	if err := sonic.Unmarshal(body, &top); err != nil {
		return false, "", fmt.Errorf("natstat page is not an object: %w", err)
	}
	var env envelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return false, "", fmt.Errorf("natstat envelope: %w", err)
	}
	if !env.Success.Valid || !env.Success.V {
		return false, "", nil
	}
	coll, ok := top[r.key]
	if !ok || strings.TrimSpace(string(coll)) == "null" {
		return false, "", nil
	}
	return true, env.Meta.V.PageNext.V, nil
}

func (a *Adapter) Rules(kind models.Kind) client.PageRules {
	return rules{key: collectionKeys[kind]}
}

func (a *Adapter) Items(kind models.Kind, body []byte) ([]json.RawMessage, error) {
	key, ok := collectionKeys[kind]
	if !ok {
		return nil, provider.ErrUnsupportedKind
	}
	if kind == models.KindParticipant {
		return rosterItems(body)
	}
	return provider.KeyedItems(body, key)
}

// rosterItems flattens the players of each game in a game detail document
// into roster entries that carry their game id.
func rosterItems(body []byte) ([]json.RawMessage, error) {
	games, err := provider.KeyedItems(body, "games")
	if err != nil {
		return nil, err
	}

	var out []json.RawMessage
	for _, raw := range games {
		var g rosterGame
		if err := sonic.Unmarshal(raw, &g); err != nil {
			return nil, fmt.Errorf("natstat game detail: %w", err)
		}
		id := g.ID.V
		if !g.ID.Valid {
			id = GameIDFromURL(g.Meta.V.APIURL.V)
		}

		players, err := provider.CollectionItems(g.Players)
		if err != nil {
			return nil, fmt.Errorf("natstat game %s players: %w", id, err)
		}
		for _, p := range players {
			entry, err := sonic.Marshal(rosterEntry{GameID: id, Player: p})
			if err != nil {
				return nil, err
			}
			out = append(out, entry)
		}
	}
	return out, nil
}

func (a *Adapter) Normalize(ctx context.Context, kind models.Kind, raw []byte) (models.Record, error) {
	var (
		rec models.Record
		err error
	)
	switch kind {
	case models.KindTeam:
		rec, err = normalizeTeam(raw)
	case models.KindPlayer:
		rec, err = normalizePlayer(ctx, raw)
	case models.KindGame:
		rec, err = normalizeGame(ctx, raw)
	case models.KindStatline:
		rec, err = normalizeStatline(ctx, raw)
	case models.KindParticipant:
		rec, err = normalizeParticipant(raw)
	default:
		return nil, &provider.NormalizationError{Provider: Name, Kind: kind, Err: provider.ErrUnsupportedKind}
	}
	if err != nil {
		return nil, err
	}
	if err := provider.Check(Name, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func normalizeTeam(raw []byte) (*models.Team, error) {
	var t team
	if err := provider.Unmarshal(Name, models.KindTeam, raw, &t); err != nil {
		return nil, err
	}
	meta := t.Meta.V
	return &models.Team{
		Code:       t.Code.V,
		Name:       t.Name.Or(t.FullName).V,
		ProviderID: t.ID.Null(),
		Location:   t.Location.Null(),
		Nickname:   t.Nickname.Null(),
		FullName:   t.FullName.Null(),
		Conference: t.Conference.Null(),
		Division:   t.Division.Null(),
		HeadCoach:  t.Coach.Null(),
		APIURL:     meta.APIURL.Null(),
		SiteURL:    meta.SiteURL.Null(),
	}, nil
}

func normalizePlayer(ctx context.Context, raw []byte) (*models.Player, error) {
	var p player
	if err := provider.Unmarshal(Name, models.KindPlayer, raw, &p); err != nil {
		return nil, err
	}
	name := p.Name
	if !name.Valid {
		full := strings.TrimSpace(p.FirstName.V + " " + p.LastName.V)
		name = provider.String{V: full, Valid: full != ""}
	}
	return &models.Player{
		Code:       p.ID.V,
		Name:       name.Null(),
		FirstName:  p.FirstName.Null(),
		LastName:   p.LastName.Null(),
		TeamCode:   p.Team.V.Code.Null(),
		TeamName:   p.Team.V.Name.Null(),
		Position:   p.Position.Null(),
		Jersey:     p.Jersey.Null(),
		Height:     p.Bio.V.HeightFtIn.Null(),
		Weight:     p.Bio.V.WeightLbs.Null(),
		Experience: p.Experience.Null(),
		BirthDate:  p.Bio.V.Birthday.Null(ctx, "bio.birthday"),
		College:    p.Bio.V.College.Null(),
		Active:     p.Active.Null(),
		APIURL:     p.Meta.V.APIURL.Null(),
	}, nil
}

func normalizeGame(ctx context.Context, raw []byte) (*models.Game, error) {
	var g game
	if err := provider.Unmarshal(Name, models.KindGame, raw, &g); err != nil {
		return nil, err
	}
	id := g.ID.V
	if !g.ID.Valid {
		id = GameIDFromURL(g.Meta.V.APIURL.V)
	}
	visitor, home, v := g.Visitor.V, g.Home.V, g.Venue.V
	return &models.Game{
		GameID:        id,
		Season:        g.Season.Null(),
		Week:          g.Week.Null(),
		Gameday:       g.Gameday.Null(ctx, "gameday"),
		StartTime:     g.StartTime.Null(),
		Status:        g.Status.Null(),
		VisitorCode:   visitor.Code.Null(),
		VisitorName:   visitor.TeamFullName.Or(visitor.Team).Null(),
		VisitorScore:  visitor.Score.Null(),
		HomeCode:      home.Code.Null(),
		HomeName:      home.TeamFullName.Or(home.Team).Null(),
		HomeScore:     home.Score.Null(),
		WinnerCode:    g.Winner.V.Code.Or(g.Winner.V.Team).Null(),
		LoserCode:     g.Loser.V.Code.Or(g.Loser.V.Team).Null(),
		Overtime:      g.Overtime.Null(),
		VenueName:     v.Name.Null(),
		VenueLocation: models.NullString(joinNonEmpty(", ", v.CityState.V, v.Nation.V)),
		Attendance:    g.Attendance.Null(),
		APIURL:        g.Meta.V.APIURL.Null(),
		StatlineCount: g.Meta.V.PlayerStatlines.Null(),
	}, nil
}

func normalizeStatline(ctx context.Context, raw []byte) (*models.Statline, error) {
	var p performance
	if err := provider.Unmarshal(Name, models.KindStatline, raw, &p); err != nil {
		return nil, err
	}
	rating := p.PCR.V
	return &models.Statline{
		StatlineID: p.ID.V,
		PlayerCode: p.Player.V.ID.Or(p.Player.V.Code).Null(),
		PlayerName: p.Player.V.Name.Null(),
		TeamCode:   p.Team.V.Code.Null(),
		GameID:     p.Game.V.ID.Null(),
		Gameday:    p.Game.V.Gameday.Null(ctx, "game.gameday"),
		Season:     p.Game.V.Season.Null(),
		Position:   p.Position.Null(),

		PassingCompletions:   p.PassCmp.Null(),
		PassingAttempts:      p.PassAtt.Null(),
		PassingYards:         p.PassYds.Null(),
		PassingTouchdowns:    p.PassTD.Null(),
		PassingInterceptions: p.PassInt.Null(),
		PassingLong:          p.PassLong.Null(),
		PassingSacks:         p.Sacked.Null(),
		PassingRating:        p.PassRtg.Null(),

		RushingAttempts:        p.RushAtt.Null(),
		RushingYards:           p.RushYds.Null(),
		RushingTouchdowns:      p.RushTD.Null(),
		RushingLong:            p.RushLong.Null(),
		RushingYardsPerAttempt: p.RushAvg.Null(),

		ReceivingTargets:    p.RecTgt.Null(),
		Receptions:          p.Rec.Null(),
		ReceivingYards:      p.RecYds.Null(),
		ReceivingTouchdowns: p.RecTD.Null(),
		ReceivingLong:       p.RecLong.Null(),

		Fumbles:              p.Fum.Null(),
		FumblesLost:          p.FumLost.Null(),
		TwoPointConversions:  p.TwoPt.Null(),
		KickReturnYards:      p.KRYds.Null(),
		KickReturnTouchdowns: p.KRTD.Null(),
		PuntReturnYards:      p.PRYds.Null(),
		PuntReturnTouchdowns: p.PRTD.Null(),

		PCRValue:   rating.Value.Null(),
		PCROffense: rating.Offense.Null(),
		PCRDefense: rating.Defense.Null(),
		PCRGrade:   rating.Grade.Null(),
	}, nil
}

func normalizeParticipant(raw []byte) (*models.Participant, error) {
	var e rosterEntryWire
	if err := provider.Unmarshal(Name, models.KindParticipant, raw, &e); err != nil {
		return nil, err
	}
	p := e.Player.V
	return &models.Participant{
		GameID:     e.GameID.V,
		PlayerCode: p.ID.Or(p.Code).V,
		PlayerName: p.Name.Null(),
		TeamCode:   p.Team.V.Code.Null(),
		TeamName:   p.Team.V.Name.Null(),
		Position:   p.Position.Null(),
		Starter:    p.Starter.Null(),
	}, nil
}

// GameIDFromURL returns the numeric id in a NatStat game url, or "".
func GameIDFromURL(apiURL string) string {
	m := gameIDPattern.FindStringSubmatch(apiURL)
	if m == nil {
		return ""
	}
	return m[1]
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
