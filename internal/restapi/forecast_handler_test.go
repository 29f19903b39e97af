package restapi

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastRunHandlerDefaults(t *testing.T) {
	api := createTestApi(t)

	resp, model := servePostEndpoint(t, api, "/api/v1/forecast/run.json?key=TEST", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 200, model.Code)
	assert.Equal(t, "OK", model.Text)

	entry := entryData(t, model)

	params, ok := entry["params"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Superman Plus", params["targetProduct"])
	assert.EqualValues(t, 205, params["targetPrice"])

	result, ok := entry["result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Superman Plus", result["target"])

	weeks, ok := result["weeks"].([]interface{})
	require.True(t, ok)
	assert.Len(t, weeks, 15)
	assert.Equal(t, "2024-Sep-Wk1", weeks[0])

	// 3 regions over the 15-week horizon.
	points, ok := result["points"].([]interface{})
	require.True(t, ok)
	assert.Len(t, points, 45)

	insightsList, ok := entry["insights"].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, insightsList)

	band, ok := entry["confidenceBand"].(map[string]interface{})
	require.True(t, ok)
	upper, ok := band["upper"].([]interface{})
	require.True(t, ok)
	assert.Len(t, upper, 15)
}

func TestForecastRunHandlerOverrides(t *testing.T) {
	api := createTestApi(t)

	_, model := servePostEndpoint(t, api, "/api/v1/forecast/run.json?key=TEST", map[string]interface{}{
		"targetProduct": "Dwarf Max",
		"targetPrice":   150,
		"horizonWeeks":  8,
	})

	entry := entryData(t, model)
	params, ok := entry["params"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Dwarf Max", params["targetProduct"])
	assert.EqualValues(t, 150, params["targetPrice"])

	result, ok := entry["result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Dwarf Max", result["target"])
	weeks, ok := result["weeks"].([]interface{})
	require.True(t, ok)
	assert.Len(t, weeks, 8)
}

func TestForecastRunHandlerFutureWeeks(t *testing.T) {
	api := createTestApi(t)

	_, model := servePostEndpoint(t, api, "/api/v1/forecast/run.json?key=TEST", map[string]interface{}{
		"futureWeeks": 10,
	})

	entry := entryData(t, model)
	result, ok := entry["result"].(map[string]interface{})
	require.True(t, ok)

	weeks, ok := result["weeks"].([]interface{})
	require.True(t, ok)
	require.Len(t, weeks, 25)
	assert.Equal(t, "2025-Mar-Wk1", weeks[24])

	// The last generated weeks run past the reference history, so their
	// totals are zero.
	totals, ok := result["totals"].([]interface{})
	require.True(t, ok)
	require.Len(t, totals, 25)
	last, ok := totals[24].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 0, last["quantity"])
}

func TestForecastRunHandlerRejectsBadInput(t *testing.T) {
	api := createTestApi(t)

	t.Run("negative futureWeeks", func(t *testing.T) {
		resp, _ := servePostEndpoint(t, api, "/api/v1/forecast/run.json?key=TEST", map[string]interface{}{
			"futureWeeks": -1,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := newTestServer(t, api)
		resp, err := http.Post(server.URL+"/api/v1/forecast/run.json?key=TEST",
			"application/json", bytes.NewBufferString("{not json"))
		require.NoError(t, err)
		model := decodeEnvelope(t, resp)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, model.Text, "invalid request body")
	})
}

func TestForecastLatestHandler(t *testing.T) {
	api := createTestApi(t)

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/v1/forecast/latest.json?key=TEST")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "no forecast runs recorded yet", model.Text)

	_, _ = servePostEndpoint(t, api, "/api/v1/forecast/run.json?key=TEST", nil)

	resp, model = serveApiAndRetrieveEndpoint(t, api, "/api/v1/forecast/latest.json?key=TEST")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := entryData(t, model)
	assert.Equal(t, "forecast", entry["kind"])
	assert.Equal(t, "ok", entry["status"])
	assert.EqualValues(t, 1, entry["id"])

	stored, ok := entry["result"].(map[string]interface{})
	require.True(t, ok)
	_, ok = stored["result"].(map[string]interface{})
	assert.True(t, ok)
}
