package restapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laiyunwu/casestudy12/internal/app"
	"github.com/laiyunwu/casestudy12/internal/appconf"
	"github.com/laiyunwu/casestudy12/internal/logging"
	"github.com/laiyunwu/casestudy12/internal/models"
)

// createTestApi creates a RestAPI over the generated datasets and an
// in-memory run database for use in tests.
func createTestApi(t *testing.T) *RestAPI {
	application, err := app.NewApplication(appconf.Config{
		Env:       appconf.EnvFlagToEnvironment("test"),
		ApiKeys:   []string{"TEST"},
		DBPath:    ":memory:",
		RateLimit: 100,
		RateBurst: 100,
		Version:   "test",
	}, logging.NewStructuredLogger(io.Discard, slog.LevelError))
	require.NoError(t, err)

	api := NewRestAPI(application)
	t.Cleanup(func() {
		api.Stop()
		_ = application.Shutdown()
	})
	return api
}

func newTestServer(t *testing.T, api *RestAPI) *httptest.Server {
	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// serveAndRetrieveEndpoint sets up a test server, makes a GET request to the
// specified endpoint, and returns the response and decoded envelope.
func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	server := newTestServer(t, api)
	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

// servePostEndpoint posts body (JSON-encoded, nil for an empty body) to the
// endpoint on an already running API.
func servePostEndpoint(t *testing.T, api *RestAPI, endpoint string, body interface{}) (*http.Response, models.ResponseModel) {
	server := newTestServer(t, api)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(server.URL+endpoint, "application/json", &buf)
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func decodeEnvelope(t *testing.T, resp *http.Response) models.ResponseModel {
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var response models.ResponseModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	return response
}

// entryData digs the entry object out of a decoded envelope.
func entryData(t *testing.T, model models.ResponseModel) map[string]interface{} {
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok)
	entry, ok := data["entry"].(map[string]interface{})
	require.True(t, ok)
	return entry
}

// listData digs the list out of a decoded envelope.
func listData(t *testing.T, model models.ResponseModel) []interface{} {
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok)
	list, ok := data["list"].([]interface{})
	require.True(t, ok)
	return list
}
