package sportsdataio

import "sportsync/ingestion/internal/provider"

// Wire shapes of the SportsDataIO NFL v3 API. Responses are bare arrays of
// PascalCase objects.

type team struct {
	Key                  provider.String `json:"Key"`
	TeamID               provider.String `json:"TeamID"`
	City                 provider.String `json:"City"`
	Name                 provider.String `json:"Name"`
	FullName             provider.String `json:"FullName"`
	Conference           provider.String `json:"Conference"`
	Division             provider.String `json:"Division"`
	HeadCoach            provider.String `json:"HeadCoach"`
	OffensiveCoordinator provider.String `json:"OffensiveCoordinator"`
	DefensiveCoordinator provider.String `json:"DefensiveCoordinator"`
	SpecialTeamsCoach    provider.String `json:"SpecialTeamsCoach"`
	PrimaryColor         provider.String `json:"PrimaryColor"`
	SecondaryColor       provider.String `json:"SecondaryColor"`
	WikipediaLogoURL     provider.String `json:"WikipediaLogoUrl"`
}

type player struct {
	PlayerID   provider.String `json:"PlayerID"`
	Name       provider.String `json:"Name"`
	FirstName  provider.String `json:"FirstName"`
	LastName   provider.String `json:"LastName"`
	Team       provider.String `json:"Team"`
	Position   provider.String `json:"Position"`
	Number     provider.Int    `json:"Number"`
	Height     provider.String `json:"Height"`
	Weight     provider.Int    `json:"Weight"`
	Experience provider.String `json:"Experience"`
	BirthDate  provider.Time   `json:"BirthDate"`
	College    provider.String `json:"College"`
	Active     provider.Bool   `json:"Active"`
	PhotoURL   provider.String `json:"PhotoUrl"`
}

type stadium struct {
	Name    provider.String `json:"Name"`
	City    provider.String `json:"City"`
	State   provider.String `json:"State"`
	Country provider.String `json:"Country"`
}

type score struct {
	GameKey        provider.String          `json:"GameKey"`
	ScoreID        provider.String          `json:"ScoreID"`
	Season         provider.Int             `json:"Season"`
	Week           provider.Int             `json:"Week"`
	Day            provider.Time            `json:"Day"`
	DateTime       provider.String          `json:"DateTime"`
	Status         provider.String          `json:"Status"`
	AwayTeam       provider.String          `json:"AwayTeam"`
	HomeTeam       provider.String          `json:"HomeTeam"`
	AwayScore      provider.Int             `json:"AwayScore"`
	HomeScore      provider.Int             `json:"HomeScore"`
	IsOver         provider.Bool            `json:"IsOver"`
	StadiumDetails provider.Nested[stadium] `json:"StadiumDetails"`
}

type timeframe struct {
	SeasonType          provider.Int    `json:"SeasonType"`
	Season              provider.Int    `json:"Season"`
	Week                provider.Int    `json:"Week"`
	Name                provider.String `json:"Name"`
	ShortName           provider.String `json:"ShortName"`
	StartDate           provider.Time   `json:"StartDate"`
	EndDate             provider.Time   `json:"EndDate"`
	FirstGameStart      provider.Time   `json:"FirstGameStart"`
	FirstGameEnd        provider.Time   `json:"FirstGameEnd"`
	LastGameEnd         provider.Time   `json:"LastGameEnd"`
	HasGames            provider.Bool   `json:"HasGames"`
	HasStarted          provider.Bool   `json:"HasStarted"`
	HasEnded            provider.Bool   `json:"HasEnded"`
	HasFirstGameStarted provider.Bool   `json:"HasFirstGameStarted"`
	HasFirstGameEnded   provider.Bool   `json:"HasFirstGameEnded"`
	HasLastGameEnded    provider.Bool   `json:"HasLastGameEnded"`
	APISeason           provider.String `json:"ApiSeason"`
	APIWeek             provider.String `json:"ApiWeek"`
}

type playerGame struct {
	PlayerGameID provider.String `json:"PlayerGameID"`
	PlayerID     provider.String `json:"PlayerID"`
	Name         provider.String `json:"Name"`
	Team         provider.String `json:"Team"`
	GameKey      provider.String `json:"GameKey"`
	ScoreID      provider.String `json:"ScoreID"`
	GameDate     provider.Time   `json:"GameDate"`
	Season       provider.Int    `json:"Season"`
	Position     provider.String `json:"Position"`

	PassingCompletions   provider.Int   `json:"PassingCompletions"`
	PassingAttempts      provider.Int   `json:"PassingAttempts"`
	PassingYards         provider.Int   `json:"PassingYards"`
	PassingTouchdowns    provider.Int   `json:"PassingTouchdowns"`
	PassingInterceptions provider.Int   `json:"PassingInterceptions"`
	PassingLong          provider.Int   `json:"PassingLong"`
	PassingSacks         provider.Int   `json:"PassingSacks"`
	PassingRating        provider.Float `json:"PassingRating"`

	RushingAttempts        provider.Int   `json:"RushingAttempts"`
	RushingYards           provider.Int   `json:"RushingYards"`
	RushingTouchdowns      provider.Int   `json:"RushingTouchdowns"`
	RushingLong            provider.Int   `json:"RushingLong"`
	RushingYardsPerAttempt provider.Float `json:"RushingYardsPerAttempt"`

	ReceivingTargets    provider.Int `json:"ReceivingTargets"`
	Receptions          provider.Int `json:"Receptions"`
	ReceivingYards      provider.Int `json:"ReceivingYards"`
	ReceivingTouchdowns provider.Int `json:"ReceivingTouchdowns"`
	ReceivingLong       provider.Int `json:"ReceivingLong"`

	Fumbles                      provider.Int `json:"Fumbles"`
	FumblesLost                  provider.Int `json:"FumblesLost"`
	TwoPointConversionPasses     provider.Int `json:"TwoPointConversionPasses"`
	TwoPointConversionRuns       provider.Int `json:"TwoPointConversionRuns"`
	TwoPointConversionReceptions provider.Int `json:"TwoPointConversionReceptions"`
	KickReturnYards              provider.Int `json:"KickReturnYards"`
	KickReturnTouchdowns         provider.Int `json:"KickReturnTouchdowns"`
	PuntReturnYards              provider.Int `json:"PuntReturnYards"`
	PuntReturnTouchdowns         provider.Int `json:"PuntReturnTouchdowns"`
}
