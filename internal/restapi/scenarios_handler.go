package restapi

import (
	"errors"
	"net/http"

	"github.com/laiyunwu/casestudy12/internal/models"
	"github.com/laiyunwu/casestudy12/internal/scenarios"
	"github.com/laiyunwu/casestudy12/internal/utils"
	"github.com/laiyunwu/casestudy12/plandb"
)

func (api *RestAPI) scenariosListHandler(w http.ResponseWriter, r *http.Request) {
	list, err := scenarios.List()
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewListResponse(list, models.NewEmptyReferences()))
}

func (api *RestAPI) scenarioRunHandler(w http.ResponseWriter, r *http.Request) {
	name := utils.ExtractIDFromParams(r, "name")
	if err := utils.ValidateID(name); err != nil {
		api.badRequestResponse(w, r, err.Error())
		return
	}

	outcome, err := api.Scenarios.RunByName(r.Context(), name)
	if errors.Is(err, scenarios.ErrUnknownScenario) {
		api.notFoundResponse(w, r, err.Error())
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	params := struct {
		Name string `json:"name"`
	}{name}
	if err := api.saveRun(r.Context(), plandb.KindScenario, params, outcome, outcome.Status); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(outcome, models.NewEmptyReferences()))
}

// scenariosCompareHandler runs every embedded scenario and returns the
// outcomes side by side. Comparisons are exploratory, so nothing is
// persisted.
func (api *RestAPI) scenariosCompareHandler(w http.ResponseWriter, r *http.Request) {
	outcomes, err := api.Scenarios.RunAll(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewListResponse(outcomes, models.NewEmptyReferences()))
}
