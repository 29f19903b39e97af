package restapi

import (
	"net/http"
	"time"

	"github.com/laiyunwu/casestudy12/internal/models"
)

func (api *RestAPI) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := models.NewServerStatusModel(
		time.Now(),
		api.Config.Version,
		api.Config.Env.String(),
		api.StartedAt(),
		api.Data.Case1().Source,
		api.Data.Case2().Source,
	)

	api.sendResponse(w, r, models.NewEntryResponse(status, models.NewEmptyReferences()))
}
