package forecast

import (
	"errors"
	"math"
	"sort"

	"github.com/laiyunwu/casestudy12/internal/models"
)

// ErrNoHistory is returned when a forecast is requested without any
// historical sales rows to derive it from.
var ErrNoHistory = errors.New("forecast: no historical sales data")

const (
	// DefaultHorizonWeeks is the number of weeks the canonical demo
	// forecast covers.
	DefaultHorizonWeeks = 15

	// DefaultLaunchWeeks is how many weeks at the start of the horizon
	// receive the launch uplift.
	DefaultLaunchWeeks = 4

	defaultElasticity   = -0.5
	defaultSensitivity  = 1.0
	defaultLaunchUplift = 0.0
)

// Reference is a shipped product whose weekly sales history anchors the
// forecast for the target product.
type Reference struct {
	Product string  `json:"product"`
	Price   float64 `json:"price"`
	Weight  float64 `json:"weight"`
}

// RegionParams tunes how a region responds to the target product's pricing
// and launch.
type RegionParams struct {
	PriceElasticity  float64 `json:"priceElasticity"`
	PriceSensitivity float64 `json:"priceSensitivity"`
	LaunchUplift     float64 `json:"launchUplift"`
}

// Params configures a forecast run.
type Params struct {
	TargetProduct string                  `json:"targetProduct"`
	TargetPrice   float64                 `json:"targetPrice"`
	BatteryImpact float64                 `json:"batteryImpact"`
	References    []Reference             `json:"references"`
	Regions       map[string]RegionParams `json:"regions,omitempty"`
	LaunchWeeks   int                     `json:"launchWeeks"`

	// HorizonWeeks limits the forecast to the first N weeks of the
	// history. Zero means every week the history covers.
	HorizonWeeks int `json:"horizonWeeks,omitempty"`

	// Weeks, when set, names the exact horizon labels and overrides
	// HorizonWeeks. Weeks absent from the reference history contribute a
	// zero base.
	Weeks []string `json:"weeks,omitempty"`
}

// DefaultParams returns the canonical demo scenario: forecasting the
// Superman Plus launch from Princess Plus and Dwarf Plus history.
func DefaultParams() Params {
	return Params{
		TargetProduct: "Superman Plus",
		TargetPrice:   205,
		BatteryImpact: 0.05,
		References: []Reference{
			{Product: "Princess Plus", Price: 180, Weight: 0.7},
			{Product: "Dwarf Plus", Price: 120, Weight: 0.3},
		},
		Regions: map[string]RegionParams{
			"AMR":    {PriceElasticity: -1.0, PriceSensitivity: 1.0, LaunchUplift: 0.05},
			"Europe": {PriceElasticity: -0.5, PriceSensitivity: 0.5, LaunchUplift: 0.05},
			"PAC":    {PriceElasticity: -1.5, PriceSensitivity: 1.5, LaunchUplift: 0.05},
		},
		LaunchWeeks:  DefaultLaunchWeeks,
		HorizonWeeks: DefaultHorizonWeeks,
	}
}

// Point is one forecast quantity for a region and week.
type Point struct {
	Region   string  `json:"region"`
	Week     string  `json:"week"`
	Quantity float64 `json:"quantity"`
}

// WeekTotal is the forecast quantity summed across regions for one week.
type WeekTotal struct {
	Week     string  `json:"week"`
	Quantity float64 `json:"quantity"`
}

// Result is a completed forecast.
type Result struct {
	Target string      `json:"target"`
	Weeks  []string    `json:"weeks"`
	Points []Point     `json:"points"`
	Totals []WeekTotal `json:"totals"`
}

// priceImpactFactor models demand elasticity: the sales multiplier implied
// by pricing the target at targetPrice when the reference sold at refPrice.
func priceImpactFactor(targetPrice, refPrice, elasticity float64) float64 {
	if refPrice == 0 {
		return 1.0
	}
	return math.Pow(targetPrice/refPrice, elasticity)
}

// linearPriceAdjustment applies a linear demand correction per point of
// price increase over the reference, scaled by the region's sensitivity.
func linearPriceAdjustment(targetPrice, refPrice, sensitivity float64) float64 {
	if refPrice == 0 {
		return 1.0
	}
	increase := (targetPrice / refPrice) - 1
	return 1.0 - increase*sensitivity
}

// normalizedWeights returns the reference weights scaled to sum to 1. An
// all-zero weight set becomes an equal split.
func normalizedWeights(refs []Reference) []float64 {
	weights := make([]float64, len(refs))
	var total float64
	for i, ref := range refs {
		weights[i] = ref.Weight
		total += ref.Weight
	}

	if math.Abs(total-1.0) <= 1e-9 {
		return weights
	}
	if total > 0 {
		for i := range weights {
			weights[i] /= total
		}
		return weights
	}
	if len(refs) > 0 {
		equal := 1.0 / float64(len(refs))
		for i := range weights {
			weights[i] = equal
		}
	}
	return weights
}

// horizonWeeks resolves the week labels a forecast covers, in
// chronological order.
func horizonWeeks(history []models.SalesRecord, params Params) []string {
	if len(params.Weeks) > 0 {
		weeks := make([]string, len(params.Weeks))
		copy(weeks, params.Weeks)
		SortWeekLabels(weeks)
		return weeks
	}

	seen := make(map[string]bool)
	var weeks []string
	for _, rec := range history {
		if !seen[rec.Week] {
			seen[rec.Week] = true
			weeks = append(weeks, rec.Week)
		}
	}
	SortWeekLabels(weeks)

	if params.HorizonWeeks > 0 && params.HorizonWeeks < len(weeks) {
		weeks = weeks[:params.HorizonWeeks]
	}
	return weeks
}

func (p Params) regionParams(region string) RegionParams {
	if rp, ok := p.Regions[region]; ok {
		return rp
	}
	return RegionParams{
		PriceElasticity:  defaultElasticity,
		PriceSensitivity: defaultSensitivity,
		LaunchUplift:     defaultLaunchUplift,
	}
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// Predict forecasts weekly sales of the target product per region by
// scaling each reference product's history with the region's price factors,
// then applying the battery uplift to every week and the launch uplift to
// the first LaunchWeeks weeks of the horizon.
func Predict(history []models.SalesRecord, params Params) (*Result, error) {
	if len(history) == 0 {
		return nil, ErrNoHistory
	}

	weights := normalizedWeights(params.References)
	weeks := horizonWeeks(history, params)

	regionSet := make(map[string]bool)
	var regions []string
	for _, rec := range history {
		if !regionSet[rec.Region] {
			regionSet[rec.Region] = true
			regions = append(regions, rec.Region)
		}
	}
	sort.Strings(regions)

	// Weekly sales per (reference product, region), duplicates summed.
	refSales := make(map[string]map[string]float64)
	for _, rec := range history {
		key := rec.Product + "\x00" + rec.Region
		if refSales[key] == nil {
			refSales[key] = make(map[string]float64)
		}
		refSales[key][rec.Week] += rec.Sales
	}

	launchCount := params.LaunchWeeks
	if launchCount > len(weeks) {
		launchCount = len(weeks)
	}

	result := &Result{
		Target: params.TargetProduct,
		Weeks:  weeks,
		Points: make([]Point, 0, len(regions)*len(weeks)),
	}
	totals := make(map[string]float64, len(weeks))

	for _, region := range regions {
		rp := params.regionParams(region)

		series := make(map[string]float64, len(weeks))
		available := false

		for i, ref := range params.References {
			if weights[i] == 0 {
				continue
			}
			sales, ok := refSales[ref.Product+"\x00"+region]
			if !ok || len(sales) == 0 {
				continue
			}
			available = true

			elastic := priceImpactFactor(params.TargetPrice, ref.Price, rp.PriceElasticity)
			linear := linearPriceAdjustment(params.TargetPrice, ref.Price, rp.PriceSensitivity)

			for _, week := range weeks {
				series[week] += sales[week] * weights[i] * elastic * linear
			}
		}

		if !available {
			// A region with no usable reference history still appears
			// in the forecast, at zero.
			for _, week := range weeks {
				result.Points = append(result.Points, Point{Region: region, Week: week})
			}
			continue
		}

		for i, week := range weeks {
			q := series[week] * (1 + params.BatteryImpact)
			if i < launchCount {
				q *= 1 + rp.LaunchUplift
			}
			q = round2(q)
			result.Points = append(result.Points, Point{Region: region, Week: week, Quantity: q})
			totals[week] += q
		}
	}

	result.Totals = make([]WeekTotal, 0, len(weeks))
	for _, week := range weeks {
		result.Totals = append(result.Totals, WeekTotal{Week: week, Quantity: round2(totals[week])})
	}

	return result, nil
}
