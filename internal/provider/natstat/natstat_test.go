package natstat

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
	return New("https://interst.at/", "", "pfb", "2024")
}

func TestAdapter_URLs(t *testing.T) {
	a := newTestAdapter()

	u, err := a.ListURL(models.KindTeam)
	require.NoError(t, err)
	assert.Equal(t, "https://interst.at/team/pfb/2024", u)

	u, err = a.ListURL(models.KindGame)
	require.NoError(t, err)
	assert.Equal(t, "https://interst.at/game/pfb/2024", u)

	_, err = a.ListURL(models.KindTimeframe)
	assert.True(t, errors.Is(err, provider.ErrUnsupportedKind))
	assert.False(t, a.Supports(models.KindTimeframe))

	assert.Equal(t, "https://interst.at/player/pfb/ALA", a.PlayersURL("ALA"))

	keyed := New("https://interst.at", "k1", "pfb", "2024")
	assert.Equal(t, "https://interst.at/playerperfs/pfb/991?key=k1", keyed.StatlinesURL(models.PlayerRef{Code: "991"}))
}

func TestRules_Inspect(t *testing.T) {
	r := newTestAdapter().Rules(models.KindTeam)

	ok, next, err := r.Inspect([]byte(`{"success":"1","teams":{"team_1":{}},"meta":{"page-next":"https://interst.at/team/pfb/2024/2"}}`))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://interst.at/team/pfb/2024/2", next)

	ok, next, err = r.Inspect([]byte(`{"success":"1","teams":{"team_1":{}}}`))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, next)

	ok, _, err = r.Inspect([]byte(`{"success":"0","error":{"message":"invalid key"}}`))
	require.NoError(t, err)
	assert.False(t, ok, "provider failure ends pagination")

	ok, _, err = r.Inspect([]byte(`{"success":"1","players":{}}`))
	require.NoError(t, err)
	assert.False(t, ok, "missing collection key ends pagination")

	_, _, err = r.Inspect([]byte(`[]`))
	assert.Error(t, err)
}

func TestItems_KeyedObjectInKeyOrder(t *testing.T) {
	body := []byte(`{"success":"1","teams":{"team_b":{"code":"B"},"team_a":{"code":"A"}}}`)

	items, err := newTestAdapter().Items(models.KindTeam, body)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.JSONEq(t, `{"code":"A"}`, string(items[0]))
}

func TestNormalize_Team(t *testing.T) {
	raw := []byte(`{"id":"55","code":"ALA","name":"Alabama","nickname":"Crimson Tide","fullname":"Alabama Crimson Tide",
		"meta":{"apiurl":"https://interst.at/team/pfb/ALA","siteurl":"https://natst.at/pfb/team/ALA"}}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindTeam, raw)
	require.NoError(t, err)

	team := rec.(*models.Team)
	assert.Equal(t, "ALA", team.Code)
	assert.Equal(t, "Alabama", team.Name)
	assert.Equal(t, "Crimson Tide", team.Nickname.String)
	assert.Equal(t, "55", team.ProviderID.String)
	assert.Equal(t, "https://interst.at/team/pfb/ALA", team.APIURL.String)
	assert.False(t, team.Conference.Valid)
}

func TestNormalize_PlayerMissingBio(t *testing.T) {
	raw := []byte(`{"id":"1001","name":"Jalen Milroe","position":"QB","jersey":"4","experience":"JR"}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindPlayer, raw)
	require.NoError(t, err)

	p := rec.(*models.Player)
	assert.Equal(t, "1001", p.Code)
	assert.Equal(t, int64(4), p.Jersey.Int64)
	assert.False(t, p.Height.Valid, "height is null when bio is absent")
	assert.False(t, p.Weight.Valid, "weight is null when bio is absent")
	assert.False(t, p.BirthDate.Valid)
	assert.Len(t, p.Values(), len(models.PlayersTable.Columns))
}

func TestNormalize_PlayerEmptyBioArray(t *testing.T) {
	raw := []byte(`{"id":"1002","name":"Ryan Williams","bio":[]}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindPlayer, raw)
	require.NoError(t, err)
	p := rec.(*models.Player)
	assert.False(t, p.Height.Valid)
	assert.False(t, p.Weight.Valid)
}

func TestNormalize_PlayerWithBio(t *testing.T) {
	raw := []byte(`{"id":"1003","name":"Kadyn Proctor","team":{"code":"ALA","name":"Alabama"},
		"bio":{"height_ftin":"6-7","weight_lbs":"360","birthday":"2005-01-08"}}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindPlayer, raw)
	require.NoError(t, err)
	p := rec.(*models.Player)
	assert.Equal(t, "6-7", p.Height.String)
	assert.Equal(t, int64(360), p.Weight.Int64)
	assert.Equal(t, "ALA", p.TeamCode.String)
	require.True(t, p.BirthDate.Valid)
	assert.Equal(t, time.Date(2005, 1, 8, 0, 0, 0, 0, time.UTC), p.BirthDate.Time)
}

func TestNormalize_PlayerMissingKeyIsSkipped(t *testing.T) {
	raw := []byte(`{"name":"No Id","position":"WR"}`)

	_, err := newTestAdapter().Normalize(context.Background(), models.KindPlayer, raw)
	require.Error(t, err)

	var nerr *provider.NormalizationError
	require.True(t, errors.As(err, &nerr))
	assert.True(t, errors.Is(err, provider.ErrMissingKey))
	assert.Equal(t, "Code", nerr.Field)
}

func TestNormalize_Game(t *testing.T) {
	raw := []byte(`{
		"gameday":"2024-08-31","starttime":"3:30 PM","status":"Final",
		"visitor":{"id":"9","code":"WKU","team":"Western Kentucky","team_fullname":"Western Kentucky Hilltoppers","score":"0"},
		"home":{"id":"1","code":"ALA","team":"Alabama","score":63},
		"winner":{"team":"Alabama"},"loser":{"code":"WKU"},
		"venue":{"name":"Bryant-Denny Stadium","citystate":"Tuscaloosa, AL","nation":"USA"},
		"attendance":null,
		"meta":{"apiurl":"https://interst.at/game/pfb/884201","playerstatlines":"44"}
	}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindGame, raw)
	require.NoError(t, err)

	g := rec.(*models.Game)
	assert.Equal(t, "884201", g.GameID, "game id falls back to the api url")
	assert.Equal(t, "Western Kentucky Hilltoppers", g.VisitorName.String)
	assert.Equal(t, "Alabama", g.HomeName.String)
	assert.Equal(t, int64(0), g.VisitorScore.Int64)
	assert.True(t, g.VisitorScore.Valid)
	assert.Equal(t, int64(63), g.HomeScore.Int64)
	assert.Equal(t, "Alabama", g.WinnerCode.String)
	assert.Equal(t, "WKU", g.LoserCode.String)
	assert.Equal(t, "Tuscaloosa, AL, USA", g.VenueLocation.String)
	assert.False(t, g.Attendance.Valid)
	assert.Equal(t, int64(44), g.StatlineCount.Int64)
	assert.True(t, g.Gameday.Valid)
}

func TestNormalize_GameUnparseableDateIsNull(t *testing.T) {
	raw := []byte(`{"id":"7","gameday":"TBD","visitor":null,"home":""}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindGame, raw)
	require.NoError(t, err)
	g := rec.(*models.Game)
	assert.False(t, g.Gameday.Valid)
	assert.False(t, g.HomeCode.Valid)
	assert.False(t, g.VisitorScore.Valid)
}

func TestNormalize_StatlineWithoutPCR(t *testing.T) {
	raw := []byte(`{"id":"s-1","player":{"id":"1001","name":"Jalen Milroe"},"team":{"code":"ALA"},
		"game":{"id":"884201","gameday":"2024-08-31"},"passcmp":"11","passatt":14,"passyds":"196","rushyds":"-3"}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindStatline, raw)
	require.NoError(t, err)

	s := rec.(*models.Statline)
	assert.Equal(t, "s-1", s.StatlineID)
	assert.Equal(t, "1001", s.PlayerCode.String)
	assert.Equal(t, int64(11), s.PassingCompletions.Int64)
	assert.Equal(t, int64(-3), s.RushingYards.Int64)
	assert.False(t, s.HasPCR(), "absent PCR yields an all-null group")
	assert.False(t, s.PCRValue.Valid)
	assert.False(t, s.PCRGrade.Valid)
}

func TestNormalize_StatlineWithPCR(t *testing.T) {
	raw := []byte(`{"id":"s-2","pcr":{"value":"12.5","offense":10,"defense":2.5,"grade":"B+"}}`)

	rec, err := newTestAdapter().Normalize(context.Background(), models.KindStatline, raw)
	require.NoError(t, err)

	s := rec.(*models.Statline)
	assert.Equal(t, 12.5, s.PCRValue.Float64)
	assert.Equal(t, 10.0, s.PCROffense.Float64)
	assert.Equal(t, "B+", s.PCRGrade.String)
}

func TestNormalizePage_SkipsBadRecords(t *testing.T) {
	body := []byte(`{"success":"1","players":{
		"player_1":{"id":"1","name":"A"},
		"player_2":{"name":"missing id"},
		"player_3":{"id":"3","name":"C"}
	}}`)

	records, skipped, err := provider.NormalizePage(context.Background(), newTestAdapter(), models.KindPlayer, body)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].NaturalKey())
	assert.Equal(t, "3", records[1].NaturalKey())
}

func TestGameIDFromURL(t *testing.T) {
	assert.Equal(t, "123456", GameIDFromURL("https://interst.at/game/pfb/123456"))
	assert.Equal(t, "42", GameIDFromURL("https://interst.at/game/pfb/42?key=x"))
	assert.Empty(t, GameIDFromURL("https://interst.at/game/pfb/"))
	assert.Empty(t, GameIDFromURL(""))
}

const gameDetail = `{"success":"1","games":{"game_4321":{
	"id":"4321","gameday":"2024-09-07",
	"players":{
		"player_2":{"id":"2","name":"Bench Player","team":{"code":"UGA","name":"Georgia"},"starter":"false"},
		"player_1":{"id":"1","name":"Starting QB","position":"QB","team":{"code":"UGA","name":"Georgia"},"starter":"TRUE"},
		"player_3":{"name":"No Id"},
		"player_4":{"id":"4","position":"K"}
	}
}}}`

func TestRoster_ItemsCarryGameID(t *testing.T) {
	a := newTestAdapter()
	assert.True(t, a.Supports(models.KindParticipant))
	assert.Equal(t, "https://interst.at/game/pfb/4321", a.GameURL("4321"))

	ok, _, err := a.Rules(models.KindParticipant).Inspect([]byte(gameDetail))
	require.NoError(t, err)
	assert.True(t, ok)

	records, skipped, err := provider.NormalizePage(context.Background(), a, models.KindParticipant, []byte(gameDetail))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped, "player without an id is skipped")
	require.Len(t, records, 3)

	qb := records[0].(*models.Participant)
	assert.Equal(t, "4321/1", qb.NaturalKey())
	assert.Equal(t, "Starting QB", qb.PlayerName.String)
	assert.Equal(t, "UGA", qb.TeamCode.String)
	assert.Equal(t, "Georgia", qb.TeamName.String)
	assert.Equal(t, "QB", qb.Position.String)
	assert.True(t, qb.Starter.Valid)
	assert.True(t, qb.Starter.Bool)

	bench := records[1].(*models.Participant)
	assert.True(t, bench.Starter.Valid)
	assert.False(t, bench.Starter.Bool)

	kicker := records[2].(*models.Participant)
	assert.False(t, kicker.Starter.Valid, "absent starter flag stays null")
	assert.False(t, kicker.TeamCode.Valid)
}

func TestRoster_GameIDFromMetaAndNoPlayers(t *testing.T) {
	body := []byte(`{"success":"1","games":{"game_9":{"meta":{"apiurl":"https://interst.at/game/pfb/9"},
		"players":{"player_1":{"id":"1"}}}}}`)
	records, _, err := provider.NormalizePage(context.Background(), newTestAdapter(), models.KindParticipant, body)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "9", records[0].(*models.Participant).GameID)

	items, err := newTestAdapter().Items(models.KindParticipant, []byte(`{"success":"1","games":{"game_9":{"id":"9"}}}`))
	require.NoError(t, err)
	assert.Empty(t, items, "a game without a roster yields nothing")
}
