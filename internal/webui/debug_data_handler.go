package webui

import (
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"
)

type debugData struct {
	Title string
	Pre   string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	content := spew.Sdump(data)
	w.Header().Set("Content-Type", "text/html")
	tmpl, err := template.ParseFS(assetFS, "templates/debug.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dataStruct := debugData{
		Title: title,
		Pre:   content,
	}

	err = tmpl.Execute(w, dataStruct)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugDataHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	switch dataType {
	case "sales":
		data = webUI.App.Data.Case1().Records
		title = "Case 1 - Sales History"
	case "sales_warnings":
		data = webUI.App.Data.Case1().Warnings
		title = "Case 1 - Parse Warnings"
	case "total_supply":
		data = webUI.App.Data.Case2().TotalSupply
		title = "Case 2 - Total Supply"
	case "actual_build":
		data = webUI.App.Data.Case2().ActualBuild
		title = "Case 2 - Actual Build"
	case "demand_forecast":
		data = webUI.App.Data.Case2().DemandForecast
		title = "Case 2 - Demand Forecast"
	case "customer_demand":
		data = webUI.App.Data.Case2().CustomerDemand
		title = "Case 2 - Customer Demand"
	case "supply_warnings":
		data = webUI.App.Data.Case2().Warnings
		title = "Case 2 - Parse Warnings"
	default:
		data = map[string]string{
			"error": "Please use one of the following: sales, sales_warnings, total_supply, actual_build, demand_forecast, customer_demand, supply_warnings.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
