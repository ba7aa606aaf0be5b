// internal/platform/collector_test.go
package platform_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/autoscan-cli/api/schemas"
	"github.com/xkilldash9x/autoscan-cli/internal/platform"
)

// fakeSearcher serves a fixed issue set page by page and counts requests.
// It relies on the collector issuing requests strictly in order.
type fakeSearcher struct {
	issues   []schemas.Issue
	requests int
	served   int
	// perPageCap serves at most this many issues per page regardless of the
	// requested page size, to simulate a server-side page limit.
	perPageCap int
	// totalFn overrides the reported total per request, for divergence cases.
	totalFn func(page int) int
}

func (f *fakeSearcher) SearchIssues(_ context.Context, req schemas.SearchRequest) (*schemas.SearchResponse, error) {
	f.requests++
	total := len(f.issues)
	if f.totalFn != nil {
		total = f.totalFn(req.PageIndex)
	}
	n := req.PageSize
	if f.perPageCap > 0 && f.perPageCap < n {
		n = f.perPageCap
	}
	start := f.served
	end := start + n
	if end > len(f.issues) {
		end = len(f.issues)
	}
	f.served = end
	return &schemas.SearchResponse{
		Total:     total,
		PageIndex: req.PageIndex,
		PageSize:  req.PageSize,
		Issues:    f.issues[start:end],
	}, nil
}

func makeIssues(n int) []schemas.Issue {
	issues := make([]schemas.Issue, n)
	for i := range issues {
		issues[i] = schemas.Issue{
			Key:      fmt.Sprintf("issue-%d", i),
			Rule:     "java:S100",
			Severity: schemas.SeverityInfo,
			Status:   schemas.StatusOpen,
		}
	}
	return issues
}

// TestCollectAll_PaginatesToDeclaredTotal checks that 1200 issues at page
// size 500 take exactly 3 requests and come back complete, in order, with
// no duplicates.
func TestCollectAll_PaginatesToDeclaredTotal(t *testing.T) {
	searcher := &fakeSearcher{issues: makeIssues(1200)}
	collector := platform.NewCollector(searcher, 500, zaptest.NewLogger(t))

	collected, err := collector.CollectAll(context.Background(), "demo", schemas.StatusOpen)
	require.NoError(t, err)

	assert.Equal(t, 3, searcher.requests)
	require.Len(t, collected, 1200)

	seen := make(map[string]bool, len(collected))
	for _, is := range collected {
		assert.False(t, seen[is.Key], "duplicate issue %s", is.Key)
		seen[is.Key] = true
	}
}

func TestCollectAll_EmptyResultSet(t *testing.T) {
	searcher := &fakeSearcher{}
	collector := platform.NewCollector(searcher, 500, zaptest.NewLogger(t))

	collected, err := collector.CollectAll(context.Background(), "demo", schemas.StatusOpen)
	require.NoError(t, err)
	assert.Empty(t, collected)
	assert.Equal(t, 1, searcher.requests)
}

// TestCollectAll_ShortPageDoesNotTerminate: the server's declared total is
// authoritative, so a short page with items still owed keeps paginating
// until the totals match.
func TestCollectAll_ShortPageDoesNotTerminate(t *testing.T) {
	// The server caps pages at 300 although 500 were requested; collection
	// must keep going until the declared total is reached.
	searcher := &fakeSearcher{issues: makeIssues(900), perPageCap: 300}
	collector := platform.NewCollector(searcher, 500, zaptest.NewLogger(t))

	collected, err := collector.CollectAll(context.Background(), "demo", schemas.StatusOpen)
	require.NoError(t, err)
	assert.Len(t, collected, 900)
	assert.Equal(t, 3, searcher.requests)
}

func TestCollectAll_DivergenceOnStallingServer(t *testing.T) {
	// The server trickles 10 issues per page against a declared total of
	// 500; the page allowance runs out before convergence.
	searcher := &fakeSearcher{
		issues:     makeIssues(1000),
		perPageCap: 10,
		totalFn:    func(int) int { return 500 },
	}
	collector := platform.NewCollector(searcher, 50, zaptest.NewLogger(t))

	_, err := collector.CollectAll(context.Background(), "demo", schemas.StatusOpen)
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrRetrievalDivergence)
	assert.Equal(t, 11, searcher.requests, "one page of slack past ceil(total/pageSize)")
}

func TestCollectAll_DivergenceOnShrinkingTotal(t *testing.T) {
	searcher := &fakeSearcher{
		issues:  makeIssues(100),
		totalFn: func(page int) int { return 120 - page*40 }, // page 2 reports 40 < collected 100
	}
	collector := platform.NewCollector(searcher, 50, zaptest.NewLogger(t))

	_, err := collector.CollectAll(context.Background(), "demo", schemas.StatusOpen)
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrRetrievalDivergence)
}

func TestCollectAll_DivergenceOnEmptyPageWithItemsOwed(t *testing.T) {
	searcher := &fakeSearcher{
		issues:  makeIssues(50),
		totalFn: func(int) int { return 80 },
	}
	collector := platform.NewCollector(searcher, 50, zaptest.NewLogger(t))

	_, err := collector.CollectAll(context.Background(), "demo", schemas.StatusOpen)
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrRetrievalDivergence)
}

func TestCollectAll_SearchErrorIsWrapped(t *testing.T) {
	collector := platform.NewCollector(failingSearcher{}, 500, zaptest.NewLogger(t))

	_, err := collector.CollectAll(context.Background(), "demo", schemas.StatusOpen)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search page 1")
}

type failingSearcher struct{}

func (failingSearcher) SearchIssues(context.Context, schemas.SearchRequest) (*schemas.SearchResponse, error) {
	return nil, fmt.Errorf("connection refused")
}
