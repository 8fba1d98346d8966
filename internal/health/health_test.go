// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name   string
	result CheckResult
}

func (c stubChecker) Name() string                           { return c.name }
func (c stubChecker) Check(_ context.Context) CheckResult    { return c.result }

func TestHealth_NoCheckers(t *testing.T) {
	m := NewManager("1.0.0")

	resp := m.Health(context.Background(), true)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
}

func TestHealth_VerboseAggregates(t *testing.T) {
	m := NewManager("1.0.0")
	m.RegisterChecker(stubChecker{"db", CheckResult{Status: StatusHealthy}})
	m.RegisterChecker(stubChecker{"cache", CheckResult{Status: StatusDegraded}})

	resp := m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)

	// Non-verbose liveness ignores component state.
	resp = m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestReady_UnhealthyBlocksReadiness(t *testing.T) {
	m := NewManager("1.0.0")
	m.RegisterChecker(stubChecker{"db", CheckResult{Status: StatusUnhealthy, Error: "down"}})

	resp := m.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestReady_DegradedStaysReady(t *testing.T) {
	m := NewManager("1.0.0")
	m.RegisterChecker(stubChecker{"cache", CheckResult{Status: StatusDegraded}})

	resp := m.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusDegraded, resp.Status)
}

func TestServeReady_StatusCodes(t *testing.T) {
	m := NewManager("1.0.0")
	m.RegisterChecker(stubChecker{"db", CheckResult{Status: StatusUnhealthy, Error: "down"}})

	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Ready)
}

func TestCacheChecker_DegradesOnly(t *testing.T) {
	c := NewCacheChecker("cache", func(_ context.Context) error {
		return errors.New("connection refused")
	})

	result := c.Check(context.Background())
	assert.Equal(t, StatusDegraded, result.Status)
	assert.Contains(t, result.Error, "connection refused")
}
