package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/laiyunwu/casestudy12/internal/forecast"
)

// Gap compares one week's supply against its total demand.
type Gap struct {
	Week         string          `json:"week"`
	Supply       decimal.Decimal `json:"supply"`
	Demand       decimal.Decimal `json:"demand"`
	Gap          decimal.Decimal `json:"gap"`
	Ratio        decimal.Decimal `json:"ratio"`
	Satisfaction decimal.Decimal `json:"satisfaction"`
}

// GapAnalysis builds the weekly supply-demand gap table: gap = supply -
// demand, ratio = supply/demand (0 when demand is 0), satisfaction capped at
// 1. Weeks from either map appear once, in week-label order.
func GapAnalysis(supply, demand map[string]decimal.Decimal) []Gap {
	weekSet := make(map[string]struct{}, len(supply))
	for w := range supply {
		weekSet[w] = struct{}{}
	}
	for w := range demand {
		weekSet[w] = struct{}{}
	}
	weeks := make([]string, 0, len(weekSet))
	for w := range weekSet {
		weeks = append(weeks, w)
	}
	sort.SliceStable(weeks, func(i, j int) bool {
		return forecast.CompareWeekLabels(weeks[i], weeks[j]) < 0
	})

	gaps := make([]Gap, 0, len(weeks))
	for _, w := range weeks {
		s, d := supply[w], demand[w]
		g := Gap{
			Week:   w,
			Supply: s,
			Demand: d,
			Gap:    s.Sub(d),
		}
		if d.IsPositive() {
			g.Ratio = s.Div(d)
			g.Satisfaction = g.Ratio
			if g.Satisfaction.GreaterThan(one) {
				g.Satisfaction = one
			}
		}
		gaps = append(gaps, g)
	}
	return gaps
}
