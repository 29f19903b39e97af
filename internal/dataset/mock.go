package dataset

import (
	"math"
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/laiyunwu/casestudy12/internal/forecast"
	"github.com/laiyunwu/casestudy12/internal/models"
)

// mockSeed keeps the generated datasets stable across runs so tests and
// demos see the same numbers.
const mockSeed = 42

// MockCase1 builds a two-product sales history matching the default
// forecast references: Princess Plus around 180 and Dwarf Plus around 120,
// across AMR, Europe and PAC for twenty weeks starting 2024-Sep-Wk1.
func MockCase1() *Case1 {
	rng := rand.New(rand.NewSource(mockSeed))

	products := []struct {
		name  string
		price float64
	}{
		{"Princess Plus", 180},
		{"Dwarf Plus", 120},
	}
	regions := []string{"AMR", "Europe", "PAC"}
	weeks := mockCase1Weeks()

	c := &Case1{Source: SourceMock}
	for _, p := range products {
		for _, region := range regions {
			for _, week := range weeks {
				base := 100.0
				if p.name == "Princess Plus" && region == "PAC" {
					base += 70
				}
				if region == "AMR" {
					base += 30
				}
				if strings.Contains(week, "Dec") {
					base += 20
				}
				sales := math.Floor(base + rng.NormFloat64()*20)
				if sales < 10 {
					sales = 10
				}
				c.Records = append(c.Records, models.SalesRecord{
					Week:    week,
					Product: p.name,
					Region:  region,
					Sales:   sales,
					Price:   math.Round(p.price + rng.Float64()*20 - 10),
				})
			}
		}
	}
	return c
}

func mockCase1Weeks() []string {
	weeks := []string{"2024-Sep-Wk1"}
	rest, _ := forecast.NextWeeks(weeks[0], 19)
	return append(weeks, rest...)
}

// MockCase2 builds a five-week supply picture with a PAC demand spike on
// Jan-Wk4.
func MockCase2() *Case2 {
	rng := rand.New(rand.NewSource(mockSeed))

	weeks := []string{"Jan-Wk1", "Jan-Wk2", "Jan-Wk3", "Jan-Wk4", "Jan-Wk5"}
	products := []string{"Superman Plus", "Dwarf Plus", "Princess Plus"}
	channels := []string{"Online Store", "Retail Store", "Reseller Partners"}
	regions := []string{"AMR", "Europe", "PAC"}

	c := &Case2{
		Source:        SourceMock,
		ForecastWeeks: append([]string(nil), weeks...),
		DemandWeeks:   append([]string(nil), weeks...),
	}

	for _, week := range weeks {
		c.TotalSupply = append(c.TotalSupply, SupplyRow{
			Week:   week,
			Supply: decimal.NewFromInt(int64(800 + rng.Intn(201))),
		})
	}

	for _, week := range weeks {
		for _, product := range products {
			var build int
			switch product {
			case "Superman Plus":
				build = 200 + rng.Intn(101)
			case "Dwarf Plus":
				build = 150 + rng.Intn(101)
			default:
				build = 250 + rng.Intn(101)
			}
			c.ActualBuild = append(c.ActualBuild, BuildRow{
				Week:    week,
				Product: product,
				Build:   decimal.NewFromInt(int64(build)),
			})
		}
	}

	for _, product := range products {
		row := ForecastRow{Product: product, Demand: map[string]decimal.Decimal{}}
		for _, week := range weeks {
			var demand int
			switch product {
			case "Superman Plus":
				demand = 280 + rng.Intn(71)
			case "Dwarf Plus":
				demand = 200 + rng.Intn(81)
			default:
				demand = 300 + rng.Intn(101)
			}
			row.Demand[week] = decimal.NewFromInt(int64(demand))
		}
		c.DemandForecast = append(c.DemandForecast, row)
	}

	type cellKey struct{ channel, region, week string }
	combined := map[cellKey]int{}
	for _, channel := range channels {
		for _, region := range regions {
			for _, week := range weeks {
				base := 100.0
				switch channel {
				case "Online Store":
					base += 20
				case "Reseller Partners":
					base += 40
				}
				switch region {
				case "AMR":
					base += 30
				case "PAC":
					base += 50
				}
				if week == "Jan-Wk4" && region == "PAC" {
					base += 100
				}
				demand := int(base + rng.NormFloat64()*10)
				if demand < 50 {
					demand = 50
				}
				combined[cellKey{channel, region, week}] = demand
			}
		}
	}

	// The channel/region demand is split across the three products so every
	// allocation cell is populated.
	for _, product := range products {
		for _, channel := range channels {
			for _, region := range regions {
				row := CustomerRow{
					Product: product,
					Channel: channel,
					Region:  region,
					Demand:  map[string]decimal.Decimal{},
				}
				for _, week := range weeks {
					total := combined[cellKey{channel, region, week}]
					row.Demand[week] = decimal.NewFromInt(int64(productShare(product, total)))
				}
				c.CustomerDemand = append(c.CustomerDemand, row)
			}
		}
	}

	return c
}

// productShare splits a combined demand figure: Superman Plus takes 40%,
// Dwarf Plus 25%, and Princess Plus the remainder, so the three always sum
// back to the input.
func productShare(product string, total int) int {
	superman := int(math.Round(0.40 * float64(total)))
	dwarf := int(math.Round(0.25 * float64(total)))
	switch product {
	case "Superman Plus":
		return superman
	case "Dwarf Plus":
		return dwarf
	default:
		return total - superman - dwarf
	}
}
