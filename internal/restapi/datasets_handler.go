package restapi

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/laiyunwu/casestudy12/internal/dataset"
	"github.com/laiyunwu/casestudy12/internal/logging"
	"github.com/laiyunwu/casestudy12/internal/models"
	"github.com/laiyunwu/casestudy12/internal/utils"
	"github.com/laiyunwu/casestudy12/plandb"
)

const (
	// maxUploadBytes caps dataset uploads at 10 MiB.
	maxUploadBytes = 10 << 20

	defaultPreviewRows = 10
	maxPreviewRows     = 100
)

func (api *RestAPI) datasetCase1Handler(w http.ResponseWriter, r *http.Request) {
	limit, fieldErrors := utils.ParseIntParam(r.URL.Query(), "limit", nil)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}
	if limit <= 0 {
		limit = defaultPreviewRows
	}
	if limit > maxPreviewRows {
		limit = maxPreviewRows
	}

	overview := api.Data.Case1Overview()
	records := api.Data.Case1().Records
	if limit > len(records) {
		limit = len(records)
	}
	overview.Preview = records[:limit]

	api.sendResponse(w, r, models.NewEntryResponse(overview, api.case1References()))
}

func (api *RestAPI) datasetCase2Handler(w http.ResponseWriter, r *http.Request) {
	c := api.Data.Case2()

	entry := struct {
		dataset.Case2Overview
		TotalSupply    []dataset.SupplyRow   `json:"totalSupply"`
		ActualBuild    []dataset.BuildRow    `json:"actualBuild"`
		DemandForecast []dataset.ForecastRow `json:"demandForecast"`
	}{
		Case2Overview:  api.Data.Case2Overview(),
		TotalSupply:    c.TotalSupply,
		ActualBuild:    c.ActualBuild,
		DemandForecast: c.DemandForecast,
	}

	api.sendResponse(w, r, models.NewEntryResponse(entry, api.case2References()))
}

// datasetUploadHandler accepts a multipart dataset upload, swaps it in as the
// live dataset for its kind, and persists the canonical CSV rendering so the
// upload survives restarts.
func (api *RestAPI) datasetUploadHandler(w http.ResponseWriter, r *http.Request) {
	kind := utils.ExtractIDFromParams(r, "kind")
	if err := utils.ValidateDatasetKind(kind); err != nil {
		api.notFoundResponse(w, r, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		api.badRequestResponse(w, r, "multipart form with a \"file\" field is required")
		return
	}
	defer file.Close() // nolint:errcheck

	name := utils.SanitizeInput(header.Filename)
	if err := utils.ValidateUploadFilename(name); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"file": {err.Error()}})
		return
	}

	switch kind {
	case utils.DatasetKindCase1:
		api.uploadCase1(w, r, name, file)
	case utils.DatasetKindCase2:
		api.uploadCase2(w, r, name, file)
	}
}

func (api *RestAPI) uploadCase1(w http.ResponseWriter, r *http.Request, name string, file io.Reader) {
	c, err := dataset.ParseCase1(name, file)
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"file": {err.Error()}})
		return
	}

	var buf bytes.Buffer
	if err := dataset.WriteCase1CSV(&buf, c); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	id, err := api.DB.SaveDataset(r.Context(), plandb.Dataset{
		Kind:    plandb.KindCase1,
		Name:    name,
		Source:  fmt.Sprintf("upload:%s", name),
		Payload: buf.String(),
	})
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.Data.SwapCase1(c)

	logger := logging.FromContext(r.Context()).With(slog.String("component", "dataset_upload"))
	logging.LogOperation(logger, "case1_dataset_swapped",
		slog.String("name", name),
		slog.Int64("dataset_id", id),
		slog.Int("rows", len(c.Records)))

	entry := struct {
		DatasetID int64                 `json:"datasetId"`
		Overview  dataset.Case1Overview `json:"overview"`
	}{id, api.Data.Case1Overview()}
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.case1References()))
}

func (api *RestAPI) uploadCase2(w http.ResponseWriter, r *http.Request, name string, file io.Reader) {
	c, err := dataset.ParseCase2(name, file)
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"file": {err.Error()}})
		return
	}

	var buf bytes.Buffer
	if err := dataset.WriteCase2CSV(&buf, c); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	id, err := api.DB.SaveDataset(r.Context(), plandb.Dataset{
		Kind:    plandb.KindCase2,
		Name:    name,
		Source:  fmt.Sprintf("upload:%s", name),
		Payload: buf.String(),
	})
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.Data.SwapCase2(c)

	logger := logging.FromContext(r.Context()).With(slog.String("component", "dataset_upload"))
	logging.LogOperation(logger, "case2_dataset_swapped",
		slog.String("name", name),
		slog.Int64("dataset_id", id),
		slog.Int("rows", len(c.CustomerDemand)))

	entry := struct {
		DatasetID int64                 `json:"datasetId"`
		Overview  dataset.Case2Overview `json:"overview"`
	}{id, api.Data.Case2Overview()}
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.case2References()))
}
