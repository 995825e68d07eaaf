// Package ingest composes fetching, normalization and storage into the
// ingestion jobs run by the scheduler.
package ingest

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"sportsync/ingestion/internal/cache"
	"sportsync/ingestion/internal/client"
	"sportsync/ingestion/internal/models"
	"sportsync/ingestion/internal/provider"
	"sportsync/ingestion/internal/repository"

	crerr "github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

// DefaultBatchSize is the number of records per upsert transaction when
// BatchSize is unset.
const DefaultBatchSize = 500

var (
	ErrNoTeams     = crerr.New("no team codes available for player fan-out")
	ErrAllFailed   = crerr.New("every fan-out request failed")
	ErrUnsupported = crerr.New("provider does not support this job")
)

// Store persists normalized records and serves the identities that drive
// fan-out jobs.
type Store interface {
	Upsert(ctx context.Context, table models.Table, records []models.Record) (repository.BatchOutcome, error)
	ListPlayerRefs(ctx context.Context) ([]models.PlayerRef, error)
	ListTeamCodes(ctx context.Context) ([]string, error)
	ListGameIDs(ctx context.Context) ([]string, error)
}

// Cache is optional state shared across runs.
type Cache interface {
	GetJSON(ctx context.Context, key string, v any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// Pipeline runs ingestion for one provider.
type Pipeline struct {
	Fetcher     client.Fetcher
	Adapter     provider.Adapter
	Store       Store
	Cache       Cache
	Concurrency int
	BatchSize   int
	TeamsTTL    time.Duration
}

// Summary counts what one ingestion run did.
type Summary struct {
	Pages   int
	Fetched int
	Written int
	Changed int
	Skipped int
	Failed  int
}

func (s *Summary) add(out repository.BatchOutcome) {
	s.Written += out.Written
	s.Changed += out.Changed
}

// IngestTeams upserts the team listing.
func (p *Pipeline) IngestTeams(ctx context.Context) (Summary, error) {
	return p.ingestListing(ctx, models.KindTeam)
}

// IngestGames upserts the season schedule and results.
func (p *Pipeline) IngestGames(ctx context.Context) (Summary, error) {
	return p.ingestListing(ctx, models.KindGame)
}

// IngestTimeframes upserts the season calendar.
func (p *Pipeline) IngestTimeframes(ctx context.Context) (Summary, error) {
	return p.ingestListing(ctx, models.KindTimeframe)
}

// ingestListing walks a paginated listing and upserts each page as one
// batch. Pages committed before a failure stay committed.
func (p *Pipeline) ingestListing(ctx context.Context, kind models.Kind) (Summary, error) {
	var sum Summary
	if !p.Adapter.Supports(kind) {
		return sum, fmt.Errorf("%s %s: %w", p.Adapter.Name(), kind, ErrUnsupported)
	}
	table, _ := models.TableFor(kind)

	seed, err := p.Adapter.ListURL(kind)
	if err != nil {
		return sum, err
	}

	pages := client.Paginate(p.Fetcher, seed, p.Adapter.Rules(kind))
	for pages.Next(ctx) {
		records, skipped, err := provider.NormalizePage(ctx, p.Adapter, kind, pages.Page().Body)
		if err != nil {
			return sum, err
		}
		sum.Pages++
		sum.Fetched += len(records) + skipped
		sum.Skipped += skipped

		out, err := p.Store.Upsert(ctx, table, records)
		if err != nil {
			return sum, err
		}
		sum.add(out)
	}
	if err := pages.Err(); err != nil {
		return sum, fmt.Errorf("%s listing stopped after %d pages: %w", kind, sum.Pages, err)
	}

	log.Ctx(ctx).Info().
		Str("kind", string(kind)).
		Int("pages", sum.Pages).
		Int("fetched", sum.Fetched).
		Int("written", sum.Written).
		Int("changed", sum.Changed).
		Int("skipped", sum.Skipped).
		Msg("Listing ingested")

	return sum, nil
}

// IngestPlayers fetches every team's roster concurrently and upserts the
// players in batches.
func (p *Pipeline) IngestPlayers(ctx context.Context) (Summary, error) {
	var sum Summary
	if !p.Adapter.Supports(models.KindPlayer) {
		return sum, fmt.Errorf("%s %s: %w", p.Adapter.Name(), models.KindPlayer, ErrUnsupported)
	}

	codes, err := p.teamCodes(ctx)
	if err != nil {
		return sum, err
	}

	var pages, skipped atomic.Int64
	fo := client.FanOut[string, models.Record]{
		Name:    "players",
		Fetcher: p.Fetcher,
		Limit:   p.Concurrency,
		URL:     p.Adapter.PlayersURL,
		Label:   func(code string) string { return code },
		Decode: func(ctx context.Context, code string, resp *client.Response) ([]models.Record, error) {
			records, err := p.decodeAll(ctx, models.KindPlayer, resp, &pages, &skipped)
			for _, rec := range records {
				if pl, ok := rec.(*models.Player); ok && !pl.TeamCode.Valid {
					pl.TeamCode = models.NullString(code)
				}
			}
			return records, err
		},
	}

	res, err := fo.Run(ctx, codes)
	out := fanOutOutcome{successes: res.Successes, failed: len(res.Failures), succeeded: res.Succeeded}
	return p.storeFanOut(ctx, models.PlayersTable, out, err, pages.Load(), skipped.Load())
}

// IngestStatlines fetches the game statlines of every stored player
// concurrently and upserts them in batches.
func (p *Pipeline) IngestStatlines(ctx context.Context) (Summary, error) {
	var sum Summary
	if !p.Adapter.Supports(models.KindStatline) {
		return sum, fmt.Errorf("%s %s: %w", p.Adapter.Name(), models.KindStatline, ErrUnsupported)
	}

	refs, err := p.Store.ListPlayerRefs(ctx)
	if err != nil {
		return sum, err
	}
	if len(refs) == 0 {
		log.Ctx(ctx).Warn().Msg("No players stored yet, skipping statline fan-out")
		return sum, nil
	}

	var pages, skipped atomic.Int64
	fo := client.FanOut[models.PlayerRef, models.Record]{
		Name:    "statlines",
		Fetcher: p.Fetcher,
		Limit:   p.Concurrency,
		URL:     p.Adapter.StatlinesURL,
		Label:   playerLabel,
		Decode: func(ctx context.Context, ref models.PlayerRef, resp *client.Response) ([]models.Record, error) {
			records, err := p.decodeAll(ctx, models.KindStatline, resp, &pages, &skipped)
			for _, rec := range records {
				if s, ok := rec.(*models.Statline); ok {
					if !s.PlayerCode.Valid {
						s.PlayerCode = models.NullString(ref.Code)
					}
					if !s.PlayerName.Valid {
						s.PlayerName = models.NullString(ref.Name)
					}
				}
			}
			return records, err
		},
	}

	res, err := fo.Run(ctx, refs)
	out := fanOutOutcome{successes: res.Successes, failed: len(res.Failures), succeeded: res.Succeeded}
	return p.storeFanOut(ctx, models.StatlinesTable, out, err, pages.Load(), skipped.Load())
}

// IngestParticipants fetches the roster of every stored game concurrently
// and upserts the participants in batches.
func (p *Pipeline) IngestParticipants(ctx context.Context) (Summary, error) {
	var sum Summary
	if !p.Adapter.Supports(models.KindParticipant) {
		return sum, fmt.Errorf("%s %s: %w", p.Adapter.Name(), models.KindParticipant, ErrUnsupported)
	}

	ids, err := p.Store.ListGameIDs(ctx)
	if err != nil {
		return sum, err
	}
	if len(ids) == 0 {
		log.Ctx(ctx).Warn().Msg("No games stored yet, skipping roster fan-out")
		return sum, nil
	}

	var pages, skipped atomic.Int64
	fo := client.FanOut[string, models.Record]{
		Name:    "participants",
		Fetcher: p.Fetcher,
		Limit:   p.Concurrency,
		URL:     p.Adapter.GameURL,
		Label:   func(id string) string { return "game " + id },
		Decode: func(ctx context.Context, _ string, resp *client.Response) ([]models.Record, error) {
			return p.decodeAll(ctx, models.KindParticipant, resp, &pages, &skipped)
		},
	}

	res, err := fo.Run(ctx, ids)
	out := fanOutOutcome{successes: res.Successes, failed: len(res.Failures), succeeded: res.Succeeded}
	return p.storeFanOut(ctx, models.ParticipantsTable, out, err, pages.Load(), skipped.Load())
}

// playerLabel names a player in fan-out failure logs.
func playerLabel(ref models.PlayerRef) string {
	if ref.Name == "" {
		return ref.Code
	}
	return fmt.Sprintf("%s (%s)", ref.Name, ref.Code)
}

type fanOutOutcome struct {
	successes []models.Record
	failed    int
	succeeded int
}

// storeFanOut upserts fan-out results in batches. A run in which every
// request failed is reported as an error.
func (p *Pipeline) storeFanOut(ctx context.Context, table models.Table, res fanOutOutcome, runErr error, pages, skipped int64) (Summary, error) {
	sum := Summary{
		Pages:   int(pages),
		Skipped: int(skipped),
		Fetched: len(res.successes) + int(skipped),
		Failed:  res.failed,
	}
	if runErr != nil {
		return sum, runErr
	}

	for _, batch := range chunk(res.successes, p.batchSize()) {
		out, err := p.Store.Upsert(ctx, table, batch)
		if err != nil {
			return sum, err
		}
		sum.add(out)
	}

	log.Ctx(ctx).Info().
		Str("table", table.Name).
		Int("pages", sum.Pages).
		Int("fetched", sum.Fetched).
		Int("written", sum.Written).
		Int("changed", sum.Changed).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Msg("Fan-out ingested")

	if res.succeeded == 0 && res.failed > 0 {
		return sum, fmt.Errorf("%s: %w (%d requests)", table.Name, ErrAllFailed, res.failed)
	}
	return sum, nil
}

// decodeAll normalizes a fan-out response and, when the provider links
// further pages, follows them on the same worker.
func (p *Pipeline) decodeAll(ctx context.Context, kind models.Kind, first *client.Response, pages, skipped *atomic.Int64) ([]models.Record, error) {
	rules := p.Adapter.Rules(kind)
	ok, next, err := rules.Inspect(first.Body)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	records, n, err := provider.NormalizePage(ctx, p.Adapter, kind, first.Body)
	if err != nil {
		return nil, err
	}
	pages.Add(1)
	skipped.Add(int64(n))

	if next == "" {
		return records, nil
	}

	rest := client.Paginate(p.Fetcher, next, rules)
	for rest.Next(ctx) {
		more, n, err := provider.NormalizePage(ctx, p.Adapter, kind, rest.Page().Body)
		if err != nil {
			return records, err
		}
		pages.Add(1)
		skipped.Add(int64(n))
		records = append(records, more...)
	}
	return records, rest.Err()
}

// teamCodes lists team codes from the teams listing. When the listing yields
// nothing it falls back to the codes cached by an earlier complete listing,
// then to the teams already stored.
func (p *Pipeline) teamCodes(ctx context.Context) ([]string, error) {
	logger := log.Ctx(ctx)
	key := cache.Key("teams", p.Adapter.Name())

	var codes []string
	seed, err := p.Adapter.ListURL(models.KindTeam)
	if err != nil {
		return nil, err
	}

	complete := true
	seen := make(map[string]struct{})
	pages := client.Paginate(p.Fetcher, seed, p.Adapter.Rules(models.KindTeam))
	for pages.Next(ctx) {
		records, _, err := provider.NormalizePage(ctx, p.Adapter, models.KindTeam, pages.Page().Body)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read teams page")
			complete = false
			break
		}
		for _, rec := range records {
			code := rec.NaturalKey()
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			codes = append(codes, code)
		}
	}
	if err := pages.Err(); err != nil {
		complete = false
		logger.Warn().Err(err).Int("codes", len(codes)).Msg("Teams listing failed")
	}

	if len(codes) > 0 {
		// A partial listing must not replace a complete cached one.
		if complete && p.Cache != nil {
			if err := p.Cache.SetJSON(ctx, key, codes, p.TeamsTTL); err != nil {
				logger.Warn().Err(err).Msg("Failed to cache team codes")
			}
		}
		return codes, nil
	}

	if p.Cache != nil {
		if err := p.Cache.GetJSON(ctx, key, &codes); err == nil && len(codes) > 0 {
			logger.Info().Int("codes", len(codes)).Msg("Using cached team codes")
			return codes, nil
		}
	}

	stored, err := p.Store.ListTeamCodes(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read stored team codes")
	} else if len(stored) > 0 {
		logger.Info().Int("codes", len(stored)).Msg("Using stored team codes")
		return stored, nil
	}
	return nil, ErrNoTeams
}

func (p *Pipeline) batchSize() int {
	if p.BatchSize > 0 {
		return p.BatchSize
	}
	return DefaultBatchSize
}

func chunk[T any](items []T, size int) [][]T {
	var out [][]T
	for size < len(items) {
		items, out = items[size:], append(out, items[:size:size])
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
