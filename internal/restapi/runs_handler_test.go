package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunsHandlerEmptyHistory(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/v1/runs.json?key=TEST")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 200, model.Code)
	assert.Empty(t, listData(t, model))
}

func TestRunsHandlerListsNewestFirst(t *testing.T) {
	api := createTestApi(t)

	_, _ = servePostEndpoint(t, api, "/api/v1/forecast/run.json?key=TEST", nil)
	_, _ = servePostEndpoint(t, api, "/api/v1/allocation/run.json?key=TEST", nil)

	_, model := serveApiAndRetrieveEndpoint(t, api, "/api/v1/runs.json?key=TEST")
	runs := listData(t, model)
	require.Len(t, runs, 2)

	first, ok := runs[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "allocation", first["kind"])

	second, ok := runs[1].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "forecast", second["kind"])
}

func TestRunsHandlerFilters(t *testing.T) {
	api := createTestApi(t)

	_, _ = servePostEndpoint(t, api, "/api/v1/forecast/run.json?key=TEST", nil)
	_, _ = servePostEndpoint(t, api, "/api/v1/forecast/run.json?key=TEST", nil)
	_, _ = servePostEndpoint(t, api, "/api/v1/allocation/run.json?key=TEST", nil)

	_, model := serveApiAndRetrieveEndpoint(t, api, "/api/v1/runs.json?key=TEST&kind=forecast")
	runs := listData(t, model)
	require.Len(t, runs, 2)
	for _, r := range runs {
		run, ok := r.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "forecast", run["kind"])
	}

	_, model = serveApiAndRetrieveEndpoint(t, api, "/api/v1/runs.json?key=TEST&limit=1")
	assert.Len(t, listData(t, model), 1)
}

func TestRunsHandlerRejectsBadLimit(t *testing.T) {
	api := createTestApi(t)

	resp, _ := serveApiAndRetrieveEndpoint(t, api, "/api/v1/runs.json?key=TEST&limit=abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
