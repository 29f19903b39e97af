package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightsCase1HandlerWithoutRuns(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/v1/insights/case1.json?key=TEST")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 200, model.Code)

	entry := entryData(t, model)
	assert.Equal(t, "Superman Plus", entry["target"])

	weeks, ok := entry["weeks"].([]interface{})
	require.True(t, ok)
	assert.Len(t, weeks, 15)

	insightsList, ok := entry["insights"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, insightsList)
	first, ok := insightsList[0].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, first["kind"])
	assert.NotEmpty(t, first["headline"])

	band, ok := entry["confidenceBand"].(map[string]interface{})
	require.True(t, ok)
	lower, ok := band["lower"].([]interface{})
	require.True(t, ok)
	assert.Len(t, lower, 15)
}

func TestInsightsCase1HandlerPrefersLatestRun(t *testing.T) {
	api := createTestApi(t)

	_, _ = servePostEndpoint(t, api, "/api/v1/forecast/run.json?key=TEST", map[string]interface{}{
		"targetProduct": "Gnome Max",
	})

	_, model := serveApiAndRetrieveEndpoint(t, api, "/api/v1/insights/case1.json?key=TEST")
	entry := entryData(t, model)
	assert.Equal(t, "Gnome Max", entry["target"])
}
