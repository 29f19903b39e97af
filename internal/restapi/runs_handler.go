package restapi

import (
	"context"
	"net/http"

	"github.com/laiyunwu/casestudy12/internal/models"
	"github.com/laiyunwu/casestudy12/internal/utils"
	"github.com/laiyunwu/casestudy12/plandb"
)

// saveRun records a completed run in the history database. Params and result
// are stored as the JSON the API exchanged.
func (api *RestAPI) saveRun(ctx context.Context, kind string, params, result interface{}, status string) error {
	return api.RecordRun(ctx, kind, params, result, status)
}

func (api *RestAPI) runsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, fieldErrors := utils.ParseIntParam(query, "limit", nil)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	runs, err := api.DB.ListRuns(r.Context(), query.Get("kind"), limit)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	if runs == nil {
		runs = []plandb.Run{}
	}

	api.sendResponse(w, r, models.NewListResponse(runs, models.NewEmptyReferences()))
}
