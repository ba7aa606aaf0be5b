// File: internal/platform/collector.go
package platform

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/autoscan-cli/api/schemas"
)

// ErrRetrievalDivergence reports a pagination run that can never converge
// with the server-declared total. Fatal to the scenario; not retried.
var ErrRetrievalDivergence = errors.New("issue retrieval diverged from server-declared total")

// Collector retrieves the complete issue set of a project, one page at a
// time. Requests are strictly sequential, one in flight.
type Collector struct {
	searcher IssueSearcher
	pageSize int
	log      *zap.Logger
}

// NewCollector wires a collector over the given searcher. pageSize bounds
// the number of issues requested per page.
func NewCollector(searcher IssueSearcher, pageSize int, logger *zap.Logger) *Collector {
	return &Collector{
		searcher: searcher,
		pageSize: pageSize,
		log:      logger.Named("collector"),
	}
}

// CollectAll returns every issue of the project matching the status filter.
// Pages are 1-based. Collection terminates when the number of collected
// issues equals the total the server declared on the most recent page; a
// short page alone does not terminate. Runs that cannot converge (total
// shrinking below the collected count, an empty page with items still
// owed, or more pages requested than the declared total can occupy) fail
// with ErrRetrievalDivergence.
func (c *Collector) CollectAll(ctx context.Context, projectKey string, status schemas.IssueStatus) ([]schemas.Issue, error) {
	issues := make([]schemas.Issue, 0, c.pageSize)
	page := 1

	for {
		resp, err := c.searcher.SearchIssues(ctx, schemas.SearchRequest{
			Projects:  []string{projectKey},
			Statuses:  []schemas.IssueStatus{status},
			PageIndex: page,
			PageSize:  c.pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("search page %d of project %q: %w", page, projectKey, err)
		}

		issues = append(issues, resp.Issues...)
		collected := len(issues)
		total := resp.Total
		c.log.Info("Collected issues",
			zap.String("project", projectKey),
			zap.Int("collected", collected),
			zap.Int("total", total),
		)

		if collected == total {
			return issues, nil
		}
		if collected > total {
			return nil, fmt.Errorf("%w: collected %d issues but server reports only %d", ErrRetrievalDivergence, collected, total)
		}
		if len(resp.Issues) == 0 {
			return nil, fmt.Errorf("%w: page %d came back empty with %d of %d issues collected", ErrRetrievalDivergence, page, collected, total)
		}
		// One page of slack beyond ceil(total/pageSize) tolerates a total
		// adjusted upward mid-retrieval; past that the run cannot converge.
		if maxPages := (total+c.pageSize-1)/c.pageSize + 1; page >= maxPages {
			return nil, fmt.Errorf("%w: %d pages requested without reaching declared total %d", ErrRetrievalDivergence, page, total)
		}
		page++
	}
}
