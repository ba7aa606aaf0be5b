// internal/platform/client_test.go
package platform_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/autoscan-cli/api/schemas"
	"github.com/xkilldash9x/autoscan-cli/internal/config"
	"github.com/xkilldash9x/autoscan-cli/internal/platform"
)

func serverCfg(url string) config.ServerConfig {
	return config.ServerConfig{
		URL:               url,
		Token:             "squ_test_token",
		PageSize:          500,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
	}
}

func TestSearchIssues_BuildsRequestAndDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/issues/search", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "demo-project", q.Get("projects"))
		assert.Equal(t, "OPEN", q.Get("statuses"))
		assert.Equal(t, "2", q.Get("p"))
		assert.Equal(t, "500", q.Get("ps"))

		// The access token travels as the basic-auth username.
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "squ_test_token", user)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total": 742,
			"p": 2,
			"ps": 500,
			"issues": [
				{"key": "i1", "rule": "java:S128", "severity": "BLOCKER", "status": "OPEN"},
				{"key": "i2", "rule": "java:S1028", "severity": "INFO", "status": "OPEN", "component": "demo:src/A.java", "line": 42}
			]
		}`))
	}))
	defer srv.Close()

	client := platform.NewClient(serverCfg(srv.URL), zaptest.NewLogger(t))
	resp, err := client.SearchIssues(context.Background(), schemas.SearchRequest{
		Projects:  []string{"demo-project"},
		Statuses:  []schemas.IssueStatus{schemas.StatusOpen},
		PageIndex: 2,
		PageSize:  500,
	})
	require.NoError(t, err)

	assert.Equal(t, 742, resp.Total)
	assert.Equal(t, 2, resp.PageIndex)
	require.Len(t, resp.Issues, 2)
	assert.Equal(t, schemas.SeverityBlocker, resp.Issues[0].Severity)
	assert.Equal(t, "java:S1028", resp.Issues[1].Rule)
	assert.Equal(t, 42, resp.Issues[1].Line)
}

func TestSearchIssues_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"msg":"Insufficient privileges"}]}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client := platform.NewClient(serverCfg(srv.URL), zaptest.NewLogger(t))
	_, err := client.SearchIssues(context.Background(), schemas.SearchRequest{
		Projects:  []string{"demo-project"},
		PageIndex: 1,
		PageSize:  500,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "Insufficient privileges")
}

func TestSearchIssues_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total": "not-a-number"}`))
	}))
	defer srv.Close()

	client := platform.NewClient(serverCfg(srv.URL), zaptest.NewLogger(t))
	_, err := client.SearchIssues(context.Background(), schemas.SearchRequest{
		Projects:  []string{"demo-project"},
		PageIndex: 1,
		PageSize:  500,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
