// Package provider turns upstream JSON into flat records. Each upstream API
// is an Adapter; the ingestion pipeline is written against the interface and
// the adapter is chosen by configuration.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"sportsync/ingestion/internal/client"
	"sportsync/ingestion/internal/metrics"
	"sportsync/ingestion/internal/models"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingKey        = crerr.New("record is missing its natural key")
	ErrUnsupportedKind   = crerr.New("entity kind not supported by provider")
	ErrMissingCollection = crerr.New("payload is missing the expected collection")
)

// NormalizationError marks one raw record that could not be turned into a
// row. The record is skipped; the batch continues.
type NormalizationError struct {
	Provider string
	Kind     models.Kind
	Field    string
	Err      error
}

func (e *NormalizationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("normalize %s %s: field %s: %v", e.Provider, e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("normalize %s %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// Adapter is one upstream API.
type Adapter interface {
	Name() string
	Supports(kind models.Kind) bool

	// ListURL is the seed URL for kinds fetched as one paginated listing
	// (teams, games, timeframes).
	ListURL(kind models.Kind) (string, error)
	// PlayersURL lists the roster of one team.
	PlayersURL(teamCode string) string
	// StatlinesURL lists the game statlines of one player.
	StatlinesURL(player models.PlayerRef) string
	// GameURL is the detail document of one game, which carries its
	// participant roster. Adapters without rosters return "".
	GameURL(gameID string) string

	Rules(kind models.Kind) client.PageRules
	// Items splits one page into raw entity objects in a stable order.
	Items(kind models.Kind, body []byte) ([]json.RawMessage, error)
	Normalize(ctx context.Context, kind models.Kind, raw []byte) (models.Record, error)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Check verifies that rec carries its natural key and required columns.
func Check(providerName string, rec models.Record) error {
	validateOnce.Do(func() { validate = validator.New() })

	if err := validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &NormalizationError{
				Provider: providerName,
				Kind:     rec.Kind(),
				Field:    verrs[0].Field(),
				Err:      ErrMissingKey,
			}
		}
		return &NormalizationError{Provider: providerName, Kind: rec.Kind(), Err: err}
	}
	return nil
}

// Unmarshal decodes raw into v, wrapping failures as NormalizationError.
func Unmarshal(providerName string, kind models.Kind, raw []byte, v any) error {
	if err := sonic.Unmarshal(raw, v); err != nil {
		return &NormalizationError{Provider: providerName, Kind: kind, Err: err}
	}
	return nil
}

// KeyedItems extracts the collection stored under key. NatStat style keyed
// objects ({"team_1": {...}}) are returned in key order; arrays keep their
// order. A null or empty collection yields no items.
func KeyedItems(body []byte, key string) ([]json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := sonic.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	coll, ok := top[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingCollection, key)
	}
	return CollectionItems(coll)
}

// ArrayItems extracts items from a top-level JSON array.
func ArrayItems(body []byte) ([]json.RawMessage, error) {
	if isNull(body) {
		return nil, nil
	}
	var arr []json.RawMessage
	if err := sonic.Unmarshal(body, &arr); err != nil {
		return nil, fmt.Errorf("%w: expected a top-level array", ErrMissingCollection)
	}
	return arr, nil
}

// CollectionItems splits a keyed object or an array into its items. Keyed
// objects come back in key order.
func CollectionItems(coll json.RawMessage) ([]json.RawMessage, error) {
	if isNull(coll) {
		return nil, nil
	}

	var arr []json.RawMessage
	if err := sonic.Unmarshal(coll, &arr); err == nil {
		return arr, nil
	}

	var keyed map[string]json.RawMessage
	if err := sonic.Unmarshal(coll, &keyed); err != nil {
		return nil, fmt.Errorf("collection is neither an array nor an object: %w", err)
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]json.RawMessage, 0, len(keys))
	for _, k := range keys {
		out = append(out, keyed[k])
	}
	return out, nil
}

// NormalizePage splits a page and normalizes every item. Items that fail
// normalization are logged and counted in skipped; they never fail the page.
func NormalizePage(ctx context.Context, a Adapter, kind models.Kind, body []byte) (records []models.Record, skipped int, err error) {
	items, err := a.Items(kind, body)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s page: %w", a.Name(), kind, err)
	}

	records = make([]models.Record, 0, len(items))
	for i, raw := range items {
		rec, err := a.Normalize(ctx, kind, raw)
		if err != nil {
			var nerr *NormalizationError
			if !errors.As(err, &nerr) {
				return records, skipped, err
			}
			skipped++
			metrics.RecordNormalized(string(kind), "skipped")
			log.Ctx(ctx).Warn().
				Err(err).
				Str("provider", a.Name()).
				Str("kind", string(kind)).
				Int("index", i).
				Msg("Skipping record that failed normalization")
			continue
		}
		metrics.RecordNormalized(string(kind), "ok")
		records = append(records, rec)
	}
	return records, skipped, nil
}
