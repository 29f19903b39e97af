// Package insights derives short business readings from a forecast: horizon
// growth, the peak week, regional winners and laggards, volatility, and
// where volume concentrates.
package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/laiyunwu/casestudy12/internal/forecast"
)

// Insight kinds, in the order they are produced.
const (
	KindGrowth       = "growth"
	KindPeak         = "peak"
	KindRegionGrowth = "region_growth"
	KindVolatility   = "volatility"
	KindRegionShare  = "region_share"
)

// volatilityThreshold flags week-over-week swings above 10%.
const volatilityThreshold = 0.1

// Insight is one generated reading.
type Insight struct {
	Kind     string `json:"kind"`
	Headline string `json:"headline"`
	Detail   string `json:"detail"`
}

// ForSeries generates the insights derivable from a single weekly total
// series: horizon growth, peak week, and volatility. Degenerate series
// (fewer than two weeks, zero opening volume) skip the affected insights.
func ForSeries(weeks []string, totals []float64) []Insight {
	weeks, totals = trim(weeks, totals)

	var out []Insight
	if in, ok := growthInsight(weeks, totals); ok {
		out = append(out, in)
	}
	if in, ok := peakInsight(weeks, totals); ok {
		out = append(out, in)
	}
	if in, ok := volatilityInsight(weeks, totals); ok {
		out = append(out, in)
	}
	return out
}

// ForForecast generates the full insight set for a forecast result,
// including the per-region comparisons.
func ForForecast(result *forecast.Result) []Insight {
	if result == nil {
		return nil
	}
	weeks := make([]string, 0, len(result.Totals))
	totals := make([]float64, 0, len(result.Totals))
	for _, t := range result.Totals {
		weeks = append(weeks, t.Week)
		totals = append(totals, t.Quantity)
	}
	regions, series := regionSeries(result, weeks)

	var out []Insight
	if in, ok := growthInsight(weeks, totals); ok {
		out = append(out, in)
	}
	if in, ok := peakInsight(weeks, totals); ok {
		out = append(out, in)
	}
	if in, ok := regionGrowthInsight(regions, series); ok {
		out = append(out, in)
	}
	if in, ok := volatilityInsight(weeks, totals); ok {
		out = append(out, in)
	}
	if in, ok := regionShareInsight(regions, series, totals); ok {
		out = append(out, in)
	}
	return out
}

// Band is a symmetric confidence envelope around a total series.
type Band struct {
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

// ConfidenceBand scales a series by +/-margin (0.15 gives an 85%..115%
// envelope), rounded to 2 decimals.
func ConfidenceBand(totals []float64, margin float64) Band {
	if margin < 0 {
		margin = 0
	}
	band := Band{
		Lower: make([]float64, len(totals)),
		Upper: make([]float64, len(totals)),
	}
	for i, t := range totals {
		band.Lower[i] = round2(t * (1 - margin))
		band.Upper[i] = round2(t * (1 + margin))
	}
	return band
}

func trim(weeks []string, totals []float64) ([]string, []float64) {
	n := len(weeks)
	if len(totals) < n {
		n = len(totals)
	}
	return weeks[:n], totals[:n]
}

func growthInsight(weeks []string, totals []float64) (Insight, bool) {
	if len(totals) < 2 || totals[0] == 0 {
		return Insight{}, false
	}
	growth := (totals[len(totals)-1]/totals[0] - 1) * 100
	direction := "declines"
	if growth > 0 {
		direction = "grows"
	}
	return Insight{
		Kind:     KindGrowth,
		Headline: fmt.Sprintf("Total volume %s %.1f%% over the horizon", direction, math.Abs(growth)),
		Detail: fmt.Sprintf("Projected weekly totals move from %.2f in %s to %.2f in %s.",
			totals[0], weeks[0], totals[len(totals)-1], weeks[len(weeks)-1]),
	}, true
}

func peakInsight(weeks []string, totals []float64) (Insight, bool) {
	if len(totals) == 0 {
		return Insight{}, false
	}
	peak := 0
	for i, t := range totals {
		if t > totals[peak] {
			peak = i
		}
	}
	return Insight{
		Kind:     KindPeak,
		Headline: fmt.Sprintf("Volume peaks in week %d (%s)", peak+1, weeks[peak]),
		Detail:   fmt.Sprintf("Projected total sales top out at %.2f.", totals[peak]),
	}, true
}

func regionGrowthInsight(regions []string, series map[string][]float64) (Insight, bool) {
	type growth struct {
		region string
		pct    float64
	}
	var growths []growth
	for _, region := range regions {
		s := series[region]
		if len(s) < 2 || s[0] == 0 {
			continue
		}
		growths = append(growths, growth{region, (s[len(s)-1]/s[0] - 1) * 100})
	}
	if len(growths) < 2 {
		return Insight{}, false
	}
	fastest, slowest := growths[0], growths[0]
	for _, g := range growths[1:] {
		if g.pct > fastest.pct {
			fastest = g
		}
		if g.pct < slowest.pct {
			slowest = g
		}
	}
	return Insight{
		Kind:     KindRegionGrowth,
		Headline: fmt.Sprintf("%s grows fastest at %.1f%%", fastest.region, fastest.pct),
		Detail:   fmt.Sprintf("%s is the slowest mover at %.1f%%, first to last horizon week.", slowest.region, slowest.pct),
	}, true
}

func volatilityInsight(weeks []string, totals []float64) (Insight, bool) {
	if len(totals) < 2 {
		return Insight{}, false
	}
	var volatile []string
	for i := 1; i < len(totals); i++ {
		prev, cur := totals[i-1], totals[i]
		if prev == 0 {
			if cur != 0 {
				volatile = append(volatile, weeks[i])
			}
			continue
		}
		if math.Abs(cur/prev-1) > volatilityThreshold {
			volatile = append(volatile, weeks[i])
		}
	}
	if len(volatile) == 0 {
		return Insight{
			Kind:     KindVolatility,
			Headline: "Projected volume is stable week over week",
			Detail:   "No week-over-week change above 10% in the horizon.",
		}, true
	}
	return Insight{
		Kind:     KindVolatility,
		Headline: fmt.Sprintf("Notable swings in %d week(s)", len(volatile)),
		Detail:   fmt.Sprintf("Week-over-week changes above 10%%: %s.", strings.Join(volatile, ", ")),
	}, true
}

func regionShareInsight(regions []string, series map[string][]float64, totals []float64) (Insight, bool) {
	var top string
	topShare := -1.0
	for _, region := range regions {
		s := series[region]
		var sum float64
		var weeks int
		for i, t := range totals {
			if i >= len(s) || t == 0 {
				continue
			}
			sum += s[i] / t
			weeks++
		}
		if weeks == 0 {
			continue
		}
		if share := sum / float64(weeks); share > topShare {
			top, topShare = region, share
		}
	}
	if top == "" {
		return Insight{}, false
	}
	return Insight{
		Kind:     KindRegionShare,
		Headline: fmt.Sprintf("%s carries %.1f%% of projected volume", top, topShare*100),
		Detail:   fmt.Sprintf("Average weekly share across the horizon; weight supply and channel resources toward %s.", top),
	}, true
}

// regionSeries aligns per-region quantities to the result's week order.
func regionSeries(result *forecast.Result, weeks []string) ([]string, map[string][]float64) {
	byRegion := make(map[string]map[string]float64)
	for _, p := range result.Points {
		if byRegion[p.Region] == nil {
			byRegion[p.Region] = make(map[string]float64)
		}
		byRegion[p.Region][p.Week] += p.Quantity
	}
	regions := make([]string, 0, len(byRegion))
	for region := range byRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	series := make(map[string][]float64, len(regions))
	for _, region := range regions {
		s := make([]float64, len(weeks))
		for i, w := range weeks {
			s[i] = byRegion[region][w]
		}
		series[region] = s
	}
	return regions, series
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
