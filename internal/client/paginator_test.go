package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapFetcher serves canned bodies by URL and records calls.
type mapFetcher struct {
	bodies map[string]string
	errs   map[string]error
	calls  []string
}

func (m *mapFetcher) Fetch(_ context.Context, url string) (*Response, error) {
	m.calls = append(m.calls, url)
	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	body, ok := m.bodies[url]
	if !ok {
		return nil, &FetchError{Kind: Permanent, Status: 404, URL: url}
	}
	return &Response{URL: url, Status: 200, Body: []byte(body)}, nil
}

// testRules accepts pages with success=1 and an "items" key, following "next".
var testRules = PageRulesFunc(func(body []byte) (bool, string, error) {
	var page struct {
		Success string          `json:"success"`
		Items   json.RawMessage `json:"items"`
		Next    string          `json:"next"`
	}
	if err := sonic.Unmarshal(body, &page); err != nil {
		return false, "", err
	}
	if page.Success != "1" || len(page.Items) == 0 {
		return false, "", nil
	}
	return true, page.Next, nil
})

func TestPaginator_ThreePagesThenStop(t *testing.T) {
	f := &mapFetcher{bodies: map[string]string{
		"p1": `{"success":"1","items":[1],"next":"p2"}`,
		"p2": `{"success":"1","items":[2],"next":"p3"}`,
		"p3": `{"success":"1","items":[3]}`,
	}}

	pages, err := Paginate(f, "p1", testRules).Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, pages, 3)
	assert.Equal(t, []string{"p1", "p2", "p3"}, f.calls)
}

func TestPaginator_ProviderFailureEndsNormally(t *testing.T) {
	f := &mapFetcher{bodies: map[string]string{
		"p1": `{"success":"1","items":[1],"next":"p2"}`,
		"p2": `{"success":"0","error":"quota"}`,
	}}

	p := Paginate(f, "p1", testRules)
	pages, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.Equal(t, 1, p.Pages())
}

func TestPaginator_MissingCollectionKeyEnds(t *testing.T) {
	f := &mapFetcher{bodies: map[string]string{
		"p1": `{"success":"1","next":"p2"}`,
	}}

	pages, err := Paginate(f, "p1", testRules).Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestPaginator_FetchErrorKeepsPartialPages(t *testing.T) {
	boom := &FetchError{Kind: Transient, Status: 503, URL: "p3"}
	f := &mapFetcher{
		bodies: map[string]string{
			"p1": `{"success":"1","items":[1],"next":"p2"}`,
			"p2": `{"success":"1","items":[2],"next":"p3"}`,
		},
		errs: map[string]error{"p3": boom},
	}

	p := Paginate(f, "p1", testRules)
	pages, err := p.Collect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransient))
	assert.Len(t, pages, 2, "pages yielded before the failure are preserved")

	assert.False(t, p.Next(context.Background()), "not restartable")
	assert.Len(t, f.calls, 3)
}

func TestPaginator_InspectErrorTerminates(t *testing.T) {
	f := &mapFetcher{bodies: map[string]string{"p1": `[1,2,3]`}}

	_, err := Paginate(f, "p1", testRules).Collect(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "inspect page 1"))
}

func TestPaginator_CycleGuard(t *testing.T) {
	f := &mapFetcher{bodies: map[string]string{
		"p1": `{"success":"1","items":[1],"next":"p2"}`,
		"p2": `{"success":"1","items":[2],"next":"p1"}`,
	}}

	pages, err := Paginate(f, "p1", testRules).Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestPaginator_MaxPages(t *testing.T) {
	f := &mapFetcher{bodies: map[string]string{
		"p1": `{"success":"1","items":[1],"next":"p2"}`,
		"p2": `{"success":"1","items":[2],"next":"p3"}`,
		"p3": `{"success":"1","items":[3]}`,
	}}

	p := Paginate(f, "p1", testRules)
	p.MaxPages = 2
	pages, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}
