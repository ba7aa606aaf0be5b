// File: internal/platform/client.go
// Description: Thin HTTP client for the analysis platform's issue search
// endpoint. The search call itself is an external collaborator; this layer
// only shapes requests and decodes responses.
package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/autoscan-cli/api/schemas"
	"github.com/xkilldash9x/autoscan-cli/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// IssueSearcher executes one page of an issue search. Implemented by
// Client; faked in tests.
type IssueSearcher interface {
	SearchIssues(ctx context.Context, req schemas.SearchRequest) (*schemas.SearchResponse, error)
}

// Client talks to the analysis platform's web API.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewClient builds a platform client from the server configuration.
func NewClient(cfg config.ServerConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		log:     logger.Named("platform"),
	}
}

// SearchIssues fetches a single page of the issue search result set.
func (c *Client) SearchIssues(ctx context.Context, req schemas.SearchRequest) (*schemas.SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	q := url.Values{}
	q.Set("projects", strings.Join(req.Projects, ","))
	if len(req.Statuses) > 0 {
		statuses := make([]string, len(req.Statuses))
		for i, s := range req.Statuses {
			statuses[i] = string(s)
		}
		q.Set("statuses", strings.Join(statuses, ","))
	}
	q.Set("p", strconv.Itoa(req.PageIndex))
	q.Set("ps", strconv.Itoa(req.PageSize))

	endpoint := c.baseURL + "/api/issues/search?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	if c.token != "" {
		// The platform accepts an access token as the basic-auth username.
		httpReq.SetBasicAuth(c.token, "")
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("issue search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("issue search returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var searchResp schemas.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	c.log.Debug("Search page retrieved",
		zap.Int("page", req.PageIndex),
		zap.Int("issues", len(searchResp.Issues)),
		zap.Int("total", searchResp.Total),
	)
	return &searchResp, nil
}
