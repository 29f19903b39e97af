package restapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/laiyunwu/casestudy12/internal/forecast"
	"github.com/laiyunwu/casestudy12/internal/insights"
	"github.com/laiyunwu/casestudy12/internal/models"
	"github.com/laiyunwu/casestudy12/plandb"
)

// insightsCase1Handler narrates the most recent forecast: growth, peak week,
// regional trends, and the confidence band around the weekly totals. With no
// runs recorded yet it forecasts under the default parameters so the panel
// is never empty.
func (api *RestAPI) insightsCase1Handler(w http.ResponseWriter, r *http.Request) {
	fc, err := api.latestForecastEntry(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	entry := struct {
		Target   string             `json:"target"`
		Weeks    []string           `json:"weeks"`
		Insights []insights.Insight `json:"insights"`
		Band     insights.Band      `json:"confidenceBand"`
	}{
		Target:   fc.Result.Target,
		Weeks:    fc.Result.Weeks,
		Insights: fc.Insights,
		Band:     fc.Band,
	}

	api.sendResponse(w, r, models.NewEntryResponse(entry, api.case1References()))
}

// latestForecastEntry prefers the most recent persisted forecast run and
// falls back to a fresh default-parameter run.
func (api *RestAPI) latestForecastEntry(ctx context.Context) (forecastEntry, error) {
	runs, err := api.DB.ListRuns(ctx, plandb.KindForecast, 1)
	if err != nil {
		return forecastEntry{}, err
	}
	if len(runs) > 0 && len(runs[0].Result) > 0 {
		var entry forecastEntry
		if err := json.Unmarshal(runs[0].Result, &entry); err == nil && entry.Result != nil {
			return entry, nil
		}
	}

	params := forecast.DefaultParams()
	result, err := forecast.Predict(api.Data.Case1().Records, params)
	if err != nil {
		return forecastEntry{}, err
	}
	return newForecastEntry(params, result), nil
}
