package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/laiyunwu/casestudy12/internal/allocation"
	"github.com/laiyunwu/casestudy12/internal/models"
	"github.com/laiyunwu/casestudy12/plandb"
)

// allocationRunRequest overrides the default priorities and adds special
// constraints for one optimizer run. Priority entries overlay the defaults;
// named cells keep at least MinRate of their demand.
type allocationRunRequest struct {
	Priorities  *allocation.Priorities  `json:"priorities,omitempty"`
	Constraints []allocation.Constraint `json:"constraints,omitempty"`
}

// allocationEntry is the persisted and returned payload of one optimizer
// run.
type allocationEntry struct {
	Priorities   allocation.Priorities         `json:"priorities"`
	Constraints  []allocation.Constraint       `json:"constraints,omitempty"`
	Status       string                        `json:"status"`
	Objective    decimal.Decimal               `json:"objective"`
	Satisfaction decimal.Decimal               `json:"satisfaction"`
	Lines        []allocation.Line             `json:"lines"`
	Summaries    map[string]allocation.Summary `json:"summaries"`
	GapAnalysis  []allocation.Gap              `json:"gapAnalysis"`
}

func (api *RestAPI) allocationRunHandler(w http.ResponseWriter, r *http.Request) {
	var req allocationRunRequest
	if err := decodeJSONBody(r, &req); err != nil {
		api.badRequestResponse(w, r, "invalid request body: "+err.Error())
		return
	}

	c := api.Data.Case2()
	input := allocation.BuildInput(c.AllocationTables())

	priorities := allocation.DefaultPriorities(input.Products, input.Regions)
	if req.Priorities != nil {
		for k, v := range req.Priorities.Product {
			priorities.Product[k] = v
		}
		for k, v := range req.Priorities.Channel {
			priorities.Channel[k] = v
		}
		for k, v := range req.Priorities.Region {
			priorities.Region[k] = v
		}
	}

	result, err := allocation.Optimize(input, priorities, req.Constraints)
	if err != nil && !errors.Is(err, allocation.ErrInfeasible) {
		api.serverErrorResponse(w, r, err)
		return
	}

	entry := allocationEntry{
		Priorities:   priorities,
		Constraints:  req.Constraints,
		Status:       result.Status,
		Objective:    result.Objective,
		Satisfaction: allocation.OverallSatisfaction(result),
		Lines:        result.Lines,
		Summaries:    allocation.Summaries(result),
		GapAnalysis:  allocation.GapAnalysis(c.SupplyByWeek(), c.DemandByWeek()),
	}

	if err := api.saveRun(r.Context(), plandb.KindAllocation, req, entry, result.Status); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(entry, api.case2References()))
}

func (api *RestAPI) allocationSummaryHandler(w http.ResponseWriter, r *http.Request) {
	group := r.URL.Query().Get("group")
	if group == "" {
		group = allocation.GroupProduct
	}

	result, err := api.latestAllocationResult(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	summary, err := allocation.Summarize(result, group)
	if err != nil {
		api.badRequestResponse(w, r, err.Error())
		return
	}

	entry := struct {
		allocation.Summary
		Satisfaction decimal.Decimal `json:"satisfaction"`
	}{summary, allocation.OverallSatisfaction(result)}

	api.sendResponse(w, r, models.NewEntryResponse(entry, api.case2References()))
}

// latestAllocationResult reconstructs the most recent persisted optimizer
// run; with no history yet it solves the current dataset under default
// priorities without persisting, so the dashboard has data on first load.
func (api *RestAPI) latestAllocationResult(ctx context.Context) (*allocation.Result, error) {
	runs, err := api.DB.ListRuns(ctx, plandb.KindAllocation, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) > 0 && len(runs[0].Result) > 0 {
		var entry allocationEntry
		if err := json.Unmarshal(runs[0].Result, &entry); err == nil {
			return &allocation.Result{
				Lines:     entry.Lines,
				Status:    entry.Status,
				Objective: entry.Objective,
			}, nil
		}
	}

	input := allocation.BuildInput(api.Data.Case2().AllocationTables())
	return allocation.Optimize(input, allocation.DefaultPriorities(input.Products, input.Regions), nil)
}
