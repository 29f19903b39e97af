package restapi

import (
	"net/http"
	"net/http/pprof"

	"github.com/laiyunwu/casestudy12/internal/appconf"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func registerPprofHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/v1/status.json", validateAPIKey(api, api.statusHandler))
	mux.Handle("GET /api/v1/datasets/case1.json", validateAPIKey(api, api.datasetCase1Handler))
	mux.Handle("GET /api/v1/datasets/case2.json", validateAPIKey(api, api.datasetCase2Handler))
	mux.Handle("POST /api/v1/datasets/{kind}", validateAPIKey(api, api.datasetUploadHandler))
	mux.Handle("POST /api/v1/forecast/run.json", validateAPIKey(api, api.forecastRunHandler))
	mux.Handle("GET /api/v1/forecast/latest.json", validateAPIKey(api, api.forecastLatestHandler))
	mux.Handle("POST /api/v1/allocation/run.json", validateAPIKey(api, api.allocationRunHandler))
	mux.Handle("GET /api/v1/allocation/summary.json", validateAPIKey(api, api.allocationSummaryHandler))
	mux.Handle("GET /api/v1/scenarios.json", validateAPIKey(api, api.scenariosListHandler))
	mux.Handle("POST /api/v1/scenarios/compare.json", validateAPIKey(api, api.scenariosCompareHandler))
	mux.Handle("POST /api/v1/scenarios/{name}/run.json", validateAPIKey(api, api.scenarioRunHandler))
	mux.Handle("GET /api/v1/runs.json", validateAPIKey(api, api.runsHandler))
	mux.Handle("GET /api/v1/insights/case1.json", validateAPIKey(api, api.insightsCase1Handler))

	if api.Config.Env == appconf.Development {
		registerPprofHandlers(mux)
	}
}
