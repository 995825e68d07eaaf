package sportsdataio

import (
	"context"
	"errors"
	"testing"
	"time"

	"sportsync/ingestion/internal/models"
	"sportsync/ingestion/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter() *Adapter {
	return New("https://api.sportsdata.io/v3/nfl/", "secret", "2024REG")
}

func TestAdapter_URLs(t *testing.T) {
	a := newTestAdapter()

	u, err := a.ListURL(models.KindTimeframe)
	require.NoError(t, err)
	assert.Equal(t, "https://api.sportsdata.io/v3/nfl/scores/json/Timeframes/all?key=secret", u)

	u, err = a.ListURL(models.KindTeam)
	require.NoError(t, err)
	assert.Equal(t, "https://api.sportsdata.io/v3/nfl/scores/json/TeamsBasic?key=secret", u)

	u, err = a.ListURL(models.KindGame)
	require.NoError(t, err)
	assert.Equal(t, "https://api.sportsdata.io/v3/nfl/scores/json/Scores/2024REG?key=secret", u)

	_, err = a.ListURL(models.KindStatline)
	assert.True(t, errors.Is(err, provider.ErrUnsupportedKind))

	assert.Equal(t, "https://api.sportsdata.io/v3/nfl/scores/json/Players/KC?key=secret", a.PlayersURL("KC"))
	assert.Equal(t,
		"https://api.sportsdata.io/v3/nfl/stats/json/PlayerGameStatsBySeason/2024REG/18890/all?key=secret",
		a.StatlinesURL(models.PlayerRef{Code: "18890", Name: "Patrick Mahomes"}),
	)

	assert.False(t, a.Supports(models.KindParticipant))
	assert.Empty(t, a.GameURL("18890"))
}

func TestRules(t *testing.T) {
	r := newTestAdapter().Rules(models.KindTeam)

	ok, next, err := r.Inspect([]byte(` [{"Key":"KC"}]`))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, next, "single page")

	ok, _, err = r.Inspect([]byte(`{"HttpStatusCode":401,"Code":401,"Description":"Access denied"}`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNormalize_TeamsBasic(t *testing.T) {
	raw := []byte(`{"Key":"KC","TeamID":16,"City":"Kansas City","Name":"Chiefs","FullName":"Kansas City Chiefs",
		"Conference":"AFC","Division":"West","HeadCoach":"Andy Reid","PrimaryColor":"E31837","WikipediaLogoUrl":""}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindTeam, raw)
	require.NoError(t, err)

	team := rec.(*models.Team)
	assert.Equal(t, "KC", team.Code)
	assert.Equal(t, "Chiefs", team.Name)
	assert.Equal(t, "Kansas City", team.Location.String)
	assert.Equal(t, "16", team.ProviderID.String)
	assert.False(t, team.LogoURL.Valid, "empty strings are null")
}

func TestNormalize_TeamMissingNameIsSkipped(t *testing.T) {
	_, err := newTestAdapter().Normalize(context.Background(), models.KindTeam, []byte(`{"Key":"KC"}`))
	assert.True(t, errors.Is(err, provider.ErrMissingKey))
}

func TestNormalize_Timeframe(t *testing.T) {
	raw := []byte(`{"SeasonType":1,"Season":2024,"Week":3,"Name":"Week 3","ShortName":"Week 3",
		"StartDate":"2024-09-17T00:00:00","EndDate":"2024-09-23T23:59:59",
		"FirstGameStart":"2024-09-19T20:15:00","FirstGameEnd":"not-a-date","LastGameEnd":null,
		"HasGames":true,"HasStarted":"TRUE","HasEnded":"false","HasFirstGameStarted":null,
		"ApiSeason":"2024REG","ApiWeek":"3"}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindTimeframe, raw)
	require.NoError(t, err)

	tf := rec.(*models.Timeframe)
	assert.Equal(t, "2024REG/Week 3", tf.NaturalKey())
	assert.Equal(t, time.Date(2024, 9, 17, 0, 0, 0, 0, time.UTC), tf.StartDate.Time)
	assert.False(t, tf.FirstGameEnd.Valid, "unparseable date becomes null")
	assert.False(t, tf.LastGameEnd.Valid)

	assert.True(t, tf.HasGames.Valid && tf.HasGames.Bool)
	assert.True(t, tf.HasStarted.Valid && tf.HasStarted.Bool, "string booleans are case-insensitive")
	assert.True(t, tf.HasEnded.Valid)
	assert.False(t, tf.HasEnded.Bool)
	assert.False(t, tf.HasFirstGameStarted.Valid, "null booleans stay null")
	assert.False(t, tf.HasLastGameEnded.Valid, "absent booleans stay null")
}

func TestNormalize_TimeframeMissingCompositeKey(t *testing.T) {
	raw := []byte(`{"ShortName":"Week 3","Season":2024}`)

	_, err := newTestAdapter().Normalize(context.Background(), models.KindTimeframe, raw)
	var nerr *provider.NormalizationError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, "APISeason", nerr.Field)
}

func TestNormalize_Player(t *testing.T) {
	raw := []byte(`{"PlayerID":18890,"FirstName":"Patrick","LastName":"Mahomes","Team":"KC","Number":15,
		"Position":"QB","Height":"6'2\"","Weight":225,"BirthDate":"1995-09-17T00:00:00","Experience":8,"Active":true}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindPlayer, raw)
	require.NoError(t, err)

	p := rec.(*models.Player)
	assert.Equal(t, "18890", p.Code)
	assert.Equal(t, "Patrick Mahomes", p.Name.String)
	assert.Equal(t, `6'2"`, p.Height.String)
	assert.Equal(t, "8", p.Experience.String)
	assert.True(t, p.Active.Bool)
	assert.Equal(t, models.PlayerRef{Code: "18890", Name: "Patrick Mahomes"}, p.Ref())
}

func TestNormalize_ScoreWinnerAndOvertime(t *testing.T) {
	raw := []byte(`{"GameKey":"202410101","ScoreID":19001,"Season":2024,"Week":1,"Day":"2024-09-05T00:00:00",
		"DateTime":"2024-09-05T20:20:00","Status":"F/OT","AwayTeam":"BAL","HomeTeam":"KC","AwayScore":20,"HomeScore":27,
		"StadiumDetails":{"Name":"GEHA Field at Arrowhead Stadium","City":"Kansas City","State":"MO","Country":"USA"}}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindGame, raw)
	require.NoError(t, err)

	g := rec.(*models.Game)
	assert.Equal(t, "202410101", g.GameID)
	assert.Equal(t, "KC", g.WinnerCode.String)
	assert.Equal(t, "BAL", g.LoserCode.String)
	assert.Equal(t, "OT", g.Overtime.String)
	assert.Equal(t, "Kansas City, MO, USA", g.VenueLocation.String)
}

func TestNormalize_ScheduledGameHasNoWinner(t *testing.T) {
	raw := []byte(`{"GameKey":"202410201","Status":"Scheduled","AwayTeam":"BAL","HomeTeam":"LV","AwayScore":null,"HomeScore":null,"StadiumDetails":null}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindGame, raw)
	require.NoError(t, err)

	g := rec.(*models.Game)
	assert.False(t, g.WinnerCode.Valid)
	assert.False(t, g.VenueName.Valid)
	assert.False(t, g.HomeScore.Valid)
}

func TestNormalize_PlayerGameStatline(t *testing.T) {
	raw := []byte(`{"PlayerGameID":"5001","PlayerID":18890,"Name":"Patrick Mahomes","Team":"KC","GameKey":"202410101",
		"GameDate":"2024-09-05T20:20:00","Season":2024,"Position":"QB",
		"PassingCompletions":20.0,"PassingAttempts":28.0,"PassingYards":291.0,"PassingRating":101.3,
		"TwoPointConversionPasses":1,"TwoPointConversionRuns":null}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindStatline, raw)
	require.NoError(t, err)

	s := rec.(*models.Statline)
	assert.Equal(t, "5001", s.StatlineID)
	assert.Equal(t, int64(291), s.PassingYards.Int64)
	assert.Equal(t, 101.3, s.PassingRating.Float64)
	assert.Equal(t, int64(1), s.TwoPointConversions.Int64)
	assert.False(t, s.HasPCR())
}

func TestItems_RejectsErrorObject(t *testing.T) {
	_, err := newTestAdapter().Items(models.KindTeam, []byte(`{"Message":"nope"}`))
	assert.True(t, errors.Is(err, provider.ErrMissingCollection))
}
