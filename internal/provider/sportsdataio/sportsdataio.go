// Package sportsdataio adapts the SportsDataIO NFL API. Every endpoint
// returns one unpaginated JSON array; errors come back as an object.
package sportsdataio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"sportsync/ingestion/internal/client"
	"sportsync/ingestion/internal/models"
	"sportsync/ingestion/internal/provider"
)

// Name identifies this provider in config and logs.
const Name = "sportsdataio"

// Adapter implements provider.Adapter for SportsDataIO.
type Adapter struct {
	baseURL string
	apiKey  string
	season  string
}

// New creates a SportsDataIO adapter. season is used for season-scoped
// endpoints (Scores, PlayerGameStatsBySeason).
func New(baseURL, apiKey, season string) *Adapter {
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		season:  season,
	}
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) Supports(kind models.Kind) bool {
	switch kind {
	case models.KindTeam, models.KindPlayer, models.KindGame, models.KindTimeframe, models.KindStatline:
		return true
	}
	return false
}

func (a *Adapter) endpoint(path string) string {
	return a.baseURL + "/" + path + "?key=" + url.QueryEscape(a.apiKey)
}

func (a *Adapter) ListURL(kind models.Kind) (string, error) {
	switch kind {
	case models.KindTeam:
		return a.endpoint("scores/json/TeamsBasic"), nil
	case models.KindGame:
		return a.endpoint("scores/json/Scores/" + url.PathEscape(a.season)), nil
	case models.KindTimeframe:
		return a.endpoint("scores/json/Timeframes/all"), nil
	}
	return "", fmt.Errorf("%s list %s: %w", Name, kind, provider.ErrUnsupportedKind)
}

func (a *Adapter) PlayersURL(teamCode string) string {
	return a.endpoint("scores/json/Players/" + url.PathEscape(teamCode))
}

func (a *Adapter) StatlinesURL(player models.PlayerRef) string {
	return a.endpoint(fmt.Sprintf("stats/json/PlayerGameStatsBySeason/%s/%s/all",
		url.PathEscape(a.season), url.PathEscape(player.Code)))
}

// GameURL returns "": participant rosters are not ingested from SportsDataIO.
func (a *Adapter) GameURL(string) string { return "" }

// arrayRules treats a top-level array as the single page of data. An object
// body is a provider error message and ends the walk.
type arrayRules struct{}

func (arrayRules) Inspect(body []byte) (bool, string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return false, "", nil
	}
	switch trimmed[0] {
	case '[':
		return true, "", nil
	case '{':
		return false, "", nil
	}
	return false, "", fmt.Errorf("sportsdataio page is neither array nor object")
}

func (a *Adapter) Rules(models.Kind) client.PageRules { return arrayRules{} }

func (a *Adapter) Items(_ models.Kind, body []byte) ([]json.RawMessage, error) {
	return provider.ArrayItems(body)
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
	case models.KindTimeframe:
		rec, err = normalizeTimeframe(ctx, raw)
	case models.KindStatline:
		rec, err = normalizeStatline(ctx, raw)
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
	return &models.Team{
		Code:                 t.Key.V,
		Name:                 t.Name.Or(t.FullName).V,
		ProviderID:           t.TeamID.Null(),
		Location:             t.City.Null(),
		FullName:             t.FullName.Null(),
		Conference:           t.Conference.Null(),
		Division:             t.Division.Null(),
		HeadCoach:            t.HeadCoach.Null(),
		OffensiveCoordinator: t.OffensiveCoordinator.Null(),
		DefensiveCoordinator: t.DefensiveCoordinator.Null(),
		SpecialTeamsCoach:    t.SpecialTeamsCoach.Null(),
		PrimaryColor:         t.PrimaryColor.Null(),
		SecondaryColor:       t.SecondaryColor.Null(),
		LogoURL:              t.WikipediaLogoURL.Null(),
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
		Code:        p.PlayerID.V,
		Name:        name.Null(),
		FirstName:   p.FirstName.Null(),
		LastName:    p.LastName.Null(),
		TeamCode:    p.Team.Null(),
		Position:    p.Position.Null(),
		Jersey:      p.Number.Null(),
		Height:      p.Height.Null(),
		Weight:      p.Weight.Null(),
		Experience:  p.Experience.Null(),
		BirthDate:   p.BirthDate.Null(ctx, "BirthDate"),
		College:     p.College.Null(),
		Active:      p.Active.Null(),
		HeadshotURL: p.PhotoURL.Null(),
	}, nil
}

func normalizeGame(ctx context.Context, raw []byte) (*models.Game, error) {
	var s score
	if err := provider.Unmarshal(Name, models.KindGame, raw, &s); err != nil {
		return nil, err
	}
	g := &models.Game{
		GameID:       s.GameKey.Or(s.ScoreID).V,
		Season:       s.Season.Null(),
		Week:         s.Week.Null(),
		Gameday:      s.Day.Null(ctx, "Day"),
		StartTime:    s.DateTime.Null(),
		Status:       s.Status.Null(),
		VisitorCode:  s.AwayTeam.Null(),
		VisitorScore: s.AwayScore.Null(),
		HomeCode:     s.HomeTeam.Null(),
		HomeScore:    s.HomeScore.Null(),
	}

	if st := s.StadiumDetails; st.Present {
		g.VenueName = st.V.Name.Null()
		g.VenueLocation = models.NullString(joinNonEmpty(", ", st.V.City.V, st.V.State.V, st.V.Country.V))
	}

	if s.Status.V == "F/OT" {
		g.Overtime = models.NullString("OT")
	}

	over := (s.IsOver.Valid && s.IsOver.V) || g.IsFinal()
	if over && s.AwayScore.Valid && s.HomeScore.Valid && s.AwayScore.V != s.HomeScore.V {
		if s.HomeScore.V > s.AwayScore.V {
			g.WinnerCode, g.LoserCode = s.HomeTeam.Null(), s.AwayTeam.Null()
		} else {
			g.WinnerCode, g.LoserCode = s.AwayTeam.Null(), s.HomeTeam.Null()
		}
	}
	return g, nil
}

func normalizeTimeframe(ctx context.Context, raw []byte) (*models.Timeframe, error) {
	var t timeframe
	if err := provider.Unmarshal(Name, models.KindTimeframe, raw, &t); err != nil {
		return nil, err
	}
	return &models.Timeframe{
		APISeason:           t.APISeason.V,
		ShortName:           t.ShortName.V,
		APIWeek:             t.APIWeek.Null(),
		Name:                t.Name.Null(),
		Season:              t.Season.Null(),
		SeasonType:          t.SeasonType.Null(),
		Week:                t.Week.Null(),
		StartDate:           t.StartDate.Null(ctx, "StartDate"),
		EndDate:             t.EndDate.Null(ctx, "EndDate"),
		FirstGameStart:      t.FirstGameStart.Null(ctx, "FirstGameStart"),
		FirstGameEnd:        t.FirstGameEnd.Null(ctx, "FirstGameEnd"),
		LastGameEnd:         t.LastGameEnd.Null(ctx, "LastGameEnd"),
		HasStarted:          t.HasStarted.Null(),
		HasEnded:            t.HasEnded.Null(),
		HasGames:            t.HasGames.Null(),
		HasFirstGameStarted: t.HasFirstGameStarted.Null(),
		HasFirstGameEnded:   t.HasFirstGameEnded.Null(),
		HasLastGameEnded:    t.HasLastGameEnded.Null(),
	}, nil
}

func normalizeStatline(ctx context.Context, raw []byte) (*models.Statline, error) {
	var p playerGame
	if err := provider.Unmarshal(Name, models.KindStatline, raw, &p); err != nil {
		return nil, err
	}
	return &models.Statline{
		StatlineID: p.PlayerGameID.V,
		PlayerCode: p.PlayerID.Null(),
		PlayerName: p.Name.Null(),
		TeamCode:   p.Team.Null(),
		GameID:     p.GameKey.Or(p.ScoreID).Null(),
		Gameday:    p.GameDate.Null(ctx, "GameDate"),
		Season:     p.Season.Null(),
		Position:   p.Position.Null(),

		PassingCompletions:   p.PassingCompletions.Null(),
		PassingAttempts:      p.PassingAttempts.Null(),
		PassingYards:         p.PassingYards.Null(),
		PassingTouchdowns:    p.PassingTouchdowns.Null(),
		PassingInterceptions: p.PassingInterceptions.Null(),
		PassingLong:          p.PassingLong.Null(),
		PassingSacks:         p.PassingSacks.Null(),
		PassingRating:        p.PassingRating.Null(),

		RushingAttempts:        p.RushingAttempts.Null(),
		RushingYards:           p.RushingYards.Null(),
		RushingTouchdowns:      p.RushingTouchdowns.Null(),
		RushingLong:            p.RushingLong.Null(),
		RushingYardsPerAttempt: p.RushingYardsPerAttempt.Null(),

		ReceivingTargets:    p.ReceivingTargets.Null(),
		Receptions:          p.Receptions.Null(),
		ReceivingYards:      p.ReceivingYards.Null(),
		ReceivingTouchdowns: p.ReceivingTouchdowns.Null(),
		ReceivingLong:       p.ReceivingLong.Null(),

		Fumbles:              p.Fumbles.Null(),
		FumblesLost:          p.FumblesLost.Null(),
		TwoPointConversions:  sumInts(p.TwoPointConversionPasses, p.TwoPointConversionRuns, p.TwoPointConversionReceptions).Null(),
		KickReturnYards:      p.KickReturnYards.Null(),
		KickReturnTouchdowns: p.KickReturnTouchdowns.Null(),
		PuntReturnYards:      p.PuntReturnYards.Null(),
		PuntReturnTouchdowns: p.PuntReturnTouchdowns.Null(),
	}, nil
}

// sumInts adds the valid values; the result is null only if all are null.
func sumInts(vals ...provider.Int) provider.Int {
	var out provider.Int
	for _, v := range vals {
		if v.Valid {
			out.V += v.V
			out.Valid = true
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
