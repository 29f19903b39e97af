package restapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/laiyunwu/casestudy12/internal/forecast"
	"github.com/laiyunwu/casestudy12/internal/insights"
	"github.com/laiyunwu/casestudy12/internal/models"
	"github.com/laiyunwu/casestudy12/plandb"
)

// confidenceMargin is the +/-15% band drawn around forecast totals.
const confidenceMargin = 0.15

// forecastRunRequest patches forecast.DefaultParams. Absent fields keep the
// default; futureWeeks extends the horizon past the end of history with
// generated week labels.
type forecastRunRequest struct {
	TargetProduct string                           `json:"targetProduct,omitempty"`
	TargetPrice   *float64                         `json:"targetPrice,omitempty"`
	BatteryImpact *float64                         `json:"batteryImpact,omitempty"`
	References    []forecast.Reference             `json:"references,omitempty"`
	Regions       map[string]forecast.RegionParams `json:"regions,omitempty"`
	LaunchWeeks   *int                             `json:"launchWeeks,omitempty"`
	HorizonWeeks  *int                             `json:"horizonWeeks,omitempty"`
	Weeks         []string                         `json:"weeks,omitempty"`
	FutureWeeks   int                              `json:"futureWeeks,omitempty"`
}

func (req forecastRunRequest) params() forecast.Params {
	p := forecast.DefaultParams()
	if req.TargetProduct != "" {
		p.TargetProduct = req.TargetProduct
	}
	if req.TargetPrice != nil {
		p.TargetPrice = *req.TargetPrice
	}
	if req.BatteryImpact != nil {
		p.BatteryImpact = *req.BatteryImpact
	}
	if len(req.References) > 0 {
		p.References = req.References
	}
	if len(req.Regions) > 0 {
		p.Regions = req.Regions
	}
	if req.LaunchWeeks != nil {
		p.LaunchWeeks = *req.LaunchWeeks
	}
	if req.HorizonWeeks != nil {
		p.HorizonWeeks = *req.HorizonWeeks
	}
	if len(req.Weeks) > 0 {
		p.Weeks = req.Weeks
	}
	return p
}

// forecastEntry is the persisted and returned payload of one forecast run.
type forecastEntry struct {
	Params   forecast.Params    `json:"params"`
	Result   *forecast.Result   `json:"result"`
	Insights []insights.Insight `json:"insights"`
	Band     insights.Band      `json:"confidenceBand"`
}

func newForecastEntry(params forecast.Params, result *forecast.Result) forecastEntry {
	totals := make([]float64, 0, len(result.Totals))
	for _, t := range result.Totals {
		totals = append(totals, t.Quantity)
	}
	return forecastEntry{
		Params:   params,
		Result:   result,
		Insights: insights.ForForecast(result),
		Band:     insights.ConfidenceBand(totals, confidenceMargin),
	}
}

// decodeJSONBody decodes an optional JSON request body into dst. An empty
// body leaves dst untouched.
func decodeJSONBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (api *RestAPI) forecastRunHandler(w http.ResponseWriter, r *http.Request) {
	var req forecastRunRequest
	if err := decodeJSONBody(r, &req); err != nil {
		api.badRequestResponse(w, r, "invalid request body: "+err.Error())
		return
	}
	if req.FutureWeeks < 0 {
		api.validationErrorResponse(w, r, map[string][]string{
			"futureWeeks": {"must not be negative"},
		})
		return
	}

	params := req.params()
	records := api.Data.Case1().Records

	result, err := forecast.Predict(records, params)
	if errors.Is(err, forecast.ErrNoHistory) {
		api.badRequestResponse(w, r, err.Error())
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	// Projecting past history: append generated labels to the resolved
	// horizon and rerun. Weeks with no reference history forecast at zero,
	// same as the engine's handling of gaps inside the history.
	if req.FutureWeeks > 0 && len(result.Weeks) > 0 {
		future, err := forecast.NextWeeks(result.Weeks[len(result.Weeks)-1], req.FutureWeeks)
		if err != nil {
			api.badRequestResponse(w, r, "cannot extend horizon: "+err.Error())
			return
		}
		params.Weeks = append(append([]string{}, result.Weeks...), future...)
		result, err = forecast.Predict(records, params)
		if err != nil {
			api.serverErrorResponse(w, r, err)
			return
		}
	}

	entry := newForecastEntry(params, result)
	if err := api.saveRun(r.Context(), plandb.KindForecast, params, entry, "ok"); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(entry, api.case1References()))
}

func (api *RestAPI) forecastLatestHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := api.DB.ListRuns(r.Context(), plandb.KindForecast, 1)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	if len(runs) == 0 {
		api.notFoundResponse(w, r, "no forecast runs recorded yet")
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(runs[0], api.case1References()))
}
