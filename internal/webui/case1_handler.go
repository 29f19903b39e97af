package webui

import (
	"net/http"
	"sort"

	"github.com/laiyunwu/casestudy12/internal/dataset"
	"github.com/laiyunwu/casestudy12/internal/forecast"
)

type case1Page struct {
	basePage
	Overview dataset.Case1Overview
	Params   forecast.Params
	Regions  []regionParamRow
}

// regionParamRow flattens Params.Regions for the parameter form, one row per
// region in name order.
type regionParamRow struct {
	Region string
	forecast.RegionParams
}

// case1Bootstrap is what the page script needs to assemble a run request
// from the form.
type case1Bootstrap struct {
	Regions  []string        `json:"regions"`
	Defaults forecast.Params `json:"defaults"`
}

func (webUI *WebUI) case1Handler(w http.ResponseWriter, r *http.Request) {
	overview := webUI.App.Data.Case1Overview()
	params := forecast.DefaultParams()

	regions := make([]regionParamRow, 0, len(params.Regions))
	for name, rp := range params.Regions {
		regions = append(regions, regionParamRow{Region: name, RegionParams: rp})
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Region < regions[j].Region })

	names := make([]string, 0, len(regions))
	for _, row := range regions {
		names = append(names, row.Region)
	}

	base, err := webUI.newBasePage("Sales Forecast", "case1", case1Bootstrap{
		Regions:  names,
		Defaults: params,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	webUI.renderPage(w, "case1.html", case1Page{
		basePage: base,
		Overview: overview,
		Params:   params,
		Regions:  regions,
	})
}
