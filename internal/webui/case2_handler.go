package webui

import (
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/laiyunwu/casestudy12/internal/allocation"
	"github.com/laiyunwu/casestudy12/internal/dataset"
)

type case2Page struct {
	basePage
	Overview dataset.Case2Overview
	Gaps     []gapRow
	Products []priorityRow
	Channels []priorityRow
	Regions  []priorityRow
	Weeks    []string
}

// gapRow is one week of the supply-demand table, preformatted for display.
// Short marks weeks where demand exceeds supply.
type gapRow struct {
	Week   string
	Supply string
	Demand string
	Gap    string
	Ratio  string
	Short  bool
	HasGap bool
}

// priorityRow backs one slider of the priority form.
type priorityRow struct {
	Name  string
	Value int
}

type case2Bootstrap struct {
	Products []string `json:"products"`
	Channels []string `json:"channels"`
	Regions  []string `json:"regions"`
	Weeks    []string `json:"weeks"`
}

var hundred = decimal.NewFromInt(100)

func (webUI *WebUI) case2Handler(w http.ResponseWriter, r *http.Request) {
	c := webUI.App.Data.Case2()
	overview := webUI.App.Data.Case2Overview()

	gaps := allocation.GapAnalysis(c.SupplyByWeek(), c.DemandByWeek())
	gapRows := make([]gapRow, 0, len(gaps))
	for _, g := range gaps {
		row := gapRow{
			Week:   g.Week,
			Supply: g.Supply.StringFixed(0),
			Demand: g.Demand.StringFixed(0),
			Gap:    g.Gap.StringFixed(0),
			Short:  g.Gap.IsNegative(),
			HasGap: g.Demand.IsPositive(),
		}
		if row.HasGap {
			row.Ratio = g.Ratio.Mul(hundred).StringFixed(1)
		}
		gapRows = append(gapRows, row)
	}

	defaults := allocation.DefaultPriorities(c.Products(), c.Regions())

	base, err := webUI.newBasePage("Supply Allocation", "case2", case2Bootstrap{
		Products: c.Products(),
		Channels: c.Channels(),
		Regions:  c.Regions(),
		Weeks:    c.DemandWeeks,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	webUI.renderPage(w, "case2.html", case2Page{
		basePage: base,
		Overview: overview,
		Gaps:     gapRows,
		Products: priorityRows(defaults.Product),
		Channels: priorityRows(defaults.Channel),
		Regions:  priorityRows(defaults.Region),
		Weeks:    c.DemandWeeks,
	})
}

// priorityRows turns a priority map into name-sorted form rows. The internal
// Default entry covers dimensions the user never names and stays off the
// form.
func priorityRows(priorities map[string]int) []priorityRow {
	rows := make([]priorityRow, 0, len(priorities))
	for name, value := range priorities {
		if name == allocation.DefaultKey {
			continue
		}
		rows = append(rows, priorityRow{Name: name, Value: value})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}
