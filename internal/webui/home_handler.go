package webui

import (
	"net/http"
	"time"

	"github.com/laiyunwu/casestudy12/internal/dataset"
	"github.com/laiyunwu/casestudy12/internal/logging"
	"github.com/laiyunwu/casestudy12/internal/scenarios"
)

const recentRunLimit = 8

type homePage struct {
	basePage
	Case1     dataset.Case1Overview
	Case2     dataset.Case2Overview
	Scenarios []scenarios.Scenario
	Runs      []runRow
	Version   string
	Env       string
}

// runRow is one run-history line with the timestamp preformatted for the
// template.
type runRow struct {
	ID      int64
	Kind    string
	Status  string
	Created string
}

func (webUI *WebUI) homeHandler(w http.ResponseWriter, r *http.Request) {
	list, err := scenarios.List()
	if err != nil {
		logging.LogError(webUI.App.Logger, "failed to load scenarios", err)
	}

	runs, err := webUI.App.DB.ListRuns(r.Context(), "", recentRunLimit)
	if err != nil {
		logging.LogError(webUI.App.Logger, "failed to list runs", err)
	}
	rows := make([]runRow, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, runRow{
			ID:      run.ID,
			Kind:    run.Kind,
			Status:  run.Status,
			Created: time.UnixMilli(run.CreatedAt).UTC().Format("2006-01-02 15:04"),
		})
	}

	page := homePage{
		Case1:     webUI.App.Data.Case1Overview(),
		Case2:     webUI.App.Data.Case2Overview(),
		Scenarios: list,
		Runs:      rows,
		Version:   webUI.App.Config.Version,
		Env:       webUI.App.Config.Env.String(),
	}

	base, err := webUI.newBasePage("Overview", "home", struct{}{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	page.basePage = base

	webUI.renderPage(w, "home.html", page)
}
