package ingest

import (
	"context"
	"fmt"
	"time"

	"sportsync/ingestion/internal/config"
	"sportsync/ingestion/internal/models"
	"sportsync/ingestion/internal/provider"
	"sportsync/ingestion/internal/provider/natstat"
	"sportsync/ingestion/internal/provider/sportsdataio"
	"sportsync/ingestion/internal/scheduler"

	"github.com/rs/zerolog/log"
)

// Job names, one per entity kind.
const (
	JobTeams      = "teams"
	JobPlayers    = "players"
	JobGames      = "games"
	JobTimeframes = "timeframes"
	JobStatlines  = "statlines"

	JobParticipants = "participants"
)

// NewAdapter returns the provider adapter selected by cfg.Provider.
func NewAdapter(cfg *config.Config) (provider.Adapter, error) {
	switch cfg.Provider {
	case config.ProviderNatStat:
		return natstat.New(cfg.NatStatBaseURL, cfg.NatStatAPIKey, cfg.League, cfg.Season), nil
	case config.ProviderSportsDataIO:
		return sportsdataio.New(cfg.SportsDataIOBaseURL, cfg.SportsDataIOAPIKey, cfg.Season), nil
	}
	return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
}

var jobKinds = map[string]models.Kind{
	JobTeams:        models.KindTeam,
	JobPlayers:      models.KindPlayer,
	JobGames:        models.KindGame,
	JobParticipants: models.KindParticipant,
	JobTimeframes:   models.KindTimeframe,
	JobStatlines:    models.KindStatline,
}

// JobKind returns the entity kind a job writes.
func JobKind(name string) (models.Kind, bool) {
	kind, ok := jobKinds[name]
	return kind, ok
}

type entry struct {
	name string
	run  func(context.Context) (Summary, error)
}

func (p *Pipeline) catalog() []entry {
	return []entry{
		{JobTeams, p.IngestTeams},
		{JobPlayers, p.IngestPlayers},
		{JobGames, p.IngestGames},
		{JobParticipants, p.IngestParticipants},
		{JobTimeframes, p.IngestTimeframes},
		{JobStatlines, p.IngestStatlines},
	}
}

// Jobs returns one scheduler job per entity kind the adapter supports, in
// dependency order: teams before players, games before participants,
// players before statlines.
func (p *Pipeline) Jobs(interval time.Duration) []scheduler.Job {
	var jobs []scheduler.Job
	for _, e := range p.catalog() {
		if !p.Adapter.Supports(jobKinds[e.name]) {
			continue
		}
		e := e
		jobs = append(jobs, scheduler.Job{
			Name:     e.name,
			Interval: interval,
			Run: func(ctx context.Context) error {
				sum, err := e.run(ctx)
				log.Ctx(ctx).Info().
					Str("provider", p.Adapter.Name()).
					Int("pages", sum.Pages).
					Int("fetched", sum.Fetched).
					Int("written", sum.Written).
					Int("changed", sum.Changed).
					Int("skipped", sum.Skipped).
					Int("failed", sum.Failed).
					Msg("Ingestion summary")
				return err
			},
		})
	}
	return jobs
}
