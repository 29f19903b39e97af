package webui

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laiyunwu/casestudy12/internal/app"
	"github.com/laiyunwu/casestudy12/internal/appconf"
	"github.com/laiyunwu/casestudy12/internal/logging"
	"github.com/laiyunwu/casestudy12/plandb"
)

func createTestWebUI(t *testing.T) *WebUI {
	t.Helper()

	config := appconf.Config{
		Env:     appconf.EnvFlagToEnvironment("test"),
		ApiKeys: []string{"TEST"},
		DBPath:  ":memory:",
		Version: "test",
	}
	application, err := app.NewApplication(config,
		logging.NewStructuredLogger(io.Discard, slog.LevelError))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, application.Shutdown())
	})

	return NewWebUI(application)
}

func serveWebUI(t *testing.T) (*WebUI, *httptest.Server) {
	t.Helper()

	webUI := createTestWebUI(t)
	mux := http.NewServeMux()
	webUI.SetRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return webUI, server
}

func retrievePage(t *testing.T, server *httptest.Server, path string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHomePage(t *testing.T) {
	_, server := serveWebUI(t)

	resp, body := retrievePage(t, server, "/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	assert.Contains(t, body, "Supply Chain Analytics")
	// Both cases report the generated dataset as their source.
	assert.Contains(t, body, "mock")
	// All embedded scenarios are listed.
	for _, name := range []string{"aggressive-launch", "baseline", "pac-push", "price-cut", "supply-squeeze"} {
		assert.Contains(t, body, name)
	}
	assert.Contains(t, body, "No runs recorded yet")
}

func TestHomePageShowsRecentRuns(t *testing.T) {
	webUI, server := serveWebUI(t)

	_, err := webUI.App.DB.SaveRun(context.Background(), plandb.Run{
		Kind:   plandb.KindForecast,
		Params: json.RawMessage(`{}`),
		Result: json.RawMessage(`{}`),
		Status: "ok",
	})
	require.NoError(t, err)

	resp, body := retrievePage(t, server, "/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "No runs recorded yet")
	assert.Contains(t, body, "forecast")
}

func TestHomePageInjectsAPIKey(t *testing.T) {
	_, server := serveWebUI(t)

	_, body := retrievePage(t, server, "/")

	assert.Contains(t, body, `const API_KEY = "TEST";`)
	assert.Contains(t, body, "const BOOTSTRAP = ")
}

func TestCase1Page(t *testing.T) {
	_, server := serveWebUI(t)

	resp, body := retrievePage(t, server, "/case1")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Sales Forecast Analysis")
	// Default parameters prefill the form.
	assert.Contains(t, body, "Superman Plus")
	assert.Contains(t, body, "Princess Plus")
	assert.Contains(t, body, "Dwarf Plus")
	// The preview table shows the start of the generated history.
	assert.Contains(t, body, "2024-Sep-Wk1")
	// Region parameter rows for every region in the defaults.
	for _, region := range []string{"AMR", "Europe", "PAC"} {
		assert.Contains(t, body, `data-region="`+region+`"`)
	}
	// The page script reads the bootstrap payload.
	assert.Contains(t, body, `"regions":["AMR","Europe","PAC"]`)
}

func TestCase2Page(t *testing.T) {
	_, server := serveWebUI(t)

	resp, body := retrievePage(t, server, "/case2")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Supply Allocation Optimization")
	// The gap table covers the generated supply weeks.
	for _, week := range []string{"Jan-Wk1", "Jan-Wk2", "Jan-Wk3", "Jan-Wk4", "Jan-Wk5"} {
		assert.Contains(t, body, week)
	}
	// Priority sliders for every channel; the internal Default dimension
	// stays off the form.
	assert.Contains(t, body, `data-name="Online Store"`)
	assert.Contains(t, body, `data-name="Reseller Partners"`)
	assert.NotContains(t, body, `data-name="Default"`)
	// Constraint selects carry the dataset's products.
	assert.Contains(t, body, "<option>Superman Plus</option>")
}

func TestStaticAssets(t *testing.T) {
	_, server := serveWebUI(t)

	resp, body := retrievePage(t, server, "/static/style.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	assert.Contains(t, body, ".topnav")

	resp, body = retrievePage(t, server, "/static/dashboard.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "function apiPost")
}

func TestDebugDataPage(t *testing.T) {
	_, server := serveWebUI(t)

	resp, body := retrievePage(t, server, "/debug/data?dataType=total_supply")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Case 2 - Total Supply")
	assert.Contains(t, body, "Jan-Wk1")

	resp, body = retrievePage(t, server, "/debug/data?dataType=nope")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Choose a data type")
}

func TestUnknownPageIs404(t *testing.T) {
	_, server := serveWebUI(t)

	resp, _ := retrievePage(t, server, "/nonexistent")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
