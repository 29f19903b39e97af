// Package allocation distributes constrained weekly supply across
// (product, channel, region) demand cells, maximizing priority-weighted
// satisfaction. The objective decomposes per week into a continuous
// knapsack, so a greedy fill in priority-per-unit-demand order reaches the
// same optimum a linear-programming solver would.
package allocation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInfeasible reports that the minimum-satisfaction constraints cannot all
// be met, either against each other or against a week's supply.
var ErrInfeasible = errors.New("infeasible allocation constraints")

// Solver statuses, mirrored into persisted runs and API responses.
const (
	StatusOptimal    = "Optimal"
	StatusInfeasible = "Infeasible"
)

// DefaultKey is the catch-all channel and region name. It is always part of
// the index sets so demand rows that name no channel or region still get a
// priority.
const DefaultKey = "Default"

// Cell addresses one unit of demand.
type Cell struct {
	Product string `json:"product"`
	Channel string `json:"channel"`
	Region  string `json:"region"`
	Week    string `json:"week"`
}

// Input is the optimizer's working form of a case 2 dataset. Weeks absent
// from Supply are uncapped.
type Input struct {
	Supply   map[string]decimal.Decimal
	Demand   map[Cell]decimal.Decimal
	Products []string
	Channels []string
	Regions  []string
	Weeks    []string
}

// Tables carries the raw case 2 tables into BuildInput.
type Tables struct {
	Supply        map[string]decimal.Decimal
	BuildProducts []string
	Weeks         []string
	Demand        []DemandRow
}

// DemandRow is one customer demand row: quantities per week label for a
// (product, channel, region) cell.
type DemandRow struct {
	Product string
	Channel string
	Region  string
	Demand  map[string]decimal.Decimal
}

// BuildInput derives the optimizer index sets from the case 2 tables:
// products are the union of demand and build-plan products, channels and
// regions come from demand rows with "Default" always present, weeks keep
// the demand table's column order. Demand accumulates across duplicate rows.
func BuildInput(t Tables) Input {
	productSet := make(map[string]struct{})
	channelSet := make(map[string]struct{})
	regionSet := make(map[string]struct{})
	for _, row := range t.Demand {
		productSet[row.Product] = struct{}{}
		channelSet[row.Channel] = struct{}{}
		regionSet[row.Region] = struct{}{}
	}
	for _, p := range t.BuildProducts {
		productSet[p] = struct{}{}
	}
	channelSet[DefaultKey] = struct{}{}
	regionSet[DefaultKey] = struct{}{}

	weekSet := make(map[string]struct{}, len(t.Weeks))
	for _, w := range t.Weeks {
		weekSet[w] = struct{}{}
	}

	demand := make(map[Cell]decimal.Decimal)
	for _, row := range t.Demand {
		for week, qty := range row.Demand {
			if _, ok := weekSet[week]; !ok {
				continue
			}
			cell := Cell{Product: row.Product, Channel: row.Channel, Region: row.Region, Week: week}
			demand[cell] = demand[cell].Add(qty)
		}
	}

	return Input{
		Supply:   t.Supply,
		Demand:   demand,
		Products: sortedKeys(productSet),
		Channels: sortedKeys(channelSet),
		Regions:  sortedKeys(regionSet),
		Weeks:    t.Weeks,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Priorities weight the objective per product, channel, and region. A nil
// map falls back to the default weights for that dimension; a missing name
// falls back to 5 (product), 1 (channel), or 1 (region).
type Priorities struct {
	Product map[string]int `json:"product,omitempty"`
	Channel map[string]int `json:"channel,omitempty"`
	Region  map[string]int `json:"region,omitempty"`
}

// DefaultPriorities returns the stock weighting: premium ("plus") products
// ahead of everything, budget ("mini") products behind, reseller and online
// channels ahead of retail, all regions equal.
func DefaultPriorities(products, regions []string) Priorities {
	return Priorities{
		Product: defaultProductPriorities(products),
		Channel: DefaultChannelPriorities(),
		Region:  defaultRegionPriorities(regions),
	}
}

func defaultProductPriorities(products []string) map[string]int {
	weights := make(map[string]int, len(products))
	for _, p := range products {
		switch lower := strings.ToLower(p); {
		case strings.Contains(lower, "plus"):
			weights[p] = 8
		case strings.Contains(lower, "mini"):
			weights[p] = 3
		default:
			weights[p] = 5
		}
	}
	return weights
}

// DefaultChannelPriorities returns the stock channel weights.
func DefaultChannelPriorities() map[string]int {
	return map[string]int{
		DefaultKey:          1,
		"Online Store":      7,
		"Retail Store":      5,
		"Reseller Partners": 8,
	}
}

func defaultRegionPriorities(regions []string) map[string]int {
	weights := make(map[string]int, len(regions))
	for _, r := range regions {
		weights[r] = 1
	}
	return weights
}

func (p Priorities) normalized(products, regions []string) Priorities {
	if p.Product == nil {
		p.Product = defaultProductPriorities(products)
	}
	if p.Channel == nil {
		p.Channel = DefaultChannelPriorities()
	}
	if p.Region == nil {
		p.Region = defaultRegionPriorities(regions)
	}
	return p
}

func (p Priorities) composite(product, channel, region string) int {
	pw, ok := p.Product[product]
	if !ok {
		pw = 5
	}
	cw, ok := p.Channel[channel]
	if !ok {
		cw = 1
	}
	rw, ok := p.Region[region]
	if !ok {
		rw = 1
	}
	return pw * cw * rw
}

// Constraint forces a minimum satisfaction rate on one cell: at least
// MinRate of the cell's demand must be allocated. A zero MinRate means the
// demand must be fully met. Constraints on cells without demand are ignored.
type Constraint struct {
	Product string          `json:"product"`
	Channel string          `json:"channel"`
	Region  string          `json:"region"`
	Week    string          `json:"week"`
	MinRate decimal.Decimal `json:"minRate"`
}

// Line is one allocated cell of the result.
type Line struct {
	Cell
	Demand       decimal.Decimal `json:"demand"`
	Allocated    decimal.Decimal `json:"allocated"`
	Satisfaction decimal.Decimal `json:"satisfaction"`
	Priority     int             `json:"priority"`
}

// Result is a solved allocation. Lines hold only cells with positive demand
// that received a positive allocation, ordered by the product, channel,
// region, and week index sets.
type Result struct {
	Lines     []Line          `json:"lines"`
	Status    string          `json:"status"`
	Objective decimal.Decimal `json:"objective"`
}

var one = decimal.NewFromInt(1)

// Optimize allocates supply week by week. Cells named by constraints are
// reserved their minimum first; remaining capacity fills cells in decreasing
// priority-per-unit-demand order, ties broken by (product, channel, region).
// Any week whose reserves cannot fit returns ErrInfeasible and no lines,
// matching the all-or-nothing character of the underlying program.
func Optimize(input Input, priorities Priorities, constraints []Constraint) (*Result, error) {
	weights := priorities.normalized(input.Products, input.Regions)

	reserves, err := constraintReserves(input, constraints)
	if err != nil {
		return &Result{Status: StatusInfeasible}, err
	}

	alloc := make(map[Cell]decimal.Decimal, len(input.Demand))
	for _, week := range input.Weeks {
		if err := allocateWeek(input, weights, reserves, week, alloc); err != nil {
			return &Result{Status: StatusInfeasible}, err
		}
	}

	result := &Result{Status: StatusOptimal}
	for _, p := range input.Products {
		for _, c := range input.Channels {
			for _, r := range input.Regions {
				for _, w := range input.Weeks {
					cell := Cell{Product: p, Channel: c, Region: r, Week: w}
					demand, ok := input.Demand[cell]
					if !ok || !demand.IsPositive() {
						continue
					}
					allocated := alloc[cell]
					if !allocated.IsPositive() {
						continue
					}
					priority := weights.composite(p, c, r)
					result.Lines = append(result.Lines, Line{
						Cell:         cell,
						Demand:       demand,
						Allocated:    allocated,
						Satisfaction: allocated.Div(demand),
						Priority:     priority,
					})
					result.Objective = result.Objective.Add(
						decimal.NewFromInt(int64(priority)).Mul(allocated).Div(demand))
				}
			}
		}
	}
	return result, nil
}

// constraintReserves resolves the minimum allocation per constrained cell.
// Overlapping constraints keep the strictest rate.
func constraintReserves(input Input, constraints []Constraint) (map[Cell]decimal.Decimal, error) {
	reserves := make(map[Cell]decimal.Decimal)
	for _, c := range constraints {
		if c.Product == "" || c.Channel == "" || c.Region == "" || c.Week == "" {
			continue
		}
		cell := Cell{Product: c.Product, Channel: c.Channel, Region: c.Region, Week: c.Week}
		demand, ok := input.Demand[cell]
		if !ok || !demand.IsPositive() {
			continue
		}
		rate := c.MinRate
		if rate.IsZero() {
			rate = one
		}
		if rate.GreaterThan(one) {
			return nil, fmt.Errorf("%w: %s/%s/%s %s requires rate %s above full demand",
				ErrInfeasible, c.Product, c.Channel, c.Region, c.Week, rate)
		}
		reserve := rate.Mul(demand)
		if reserve.GreaterThan(reserves[cell]) {
			reserves[cell] = reserve
		}
	}
	return reserves, nil
}

type rankedCell struct {
	cell     Cell
	demand   decimal.Decimal
	priority int
}

func allocateWeek(input Input, weights Priorities, reserves map[Cell]decimal.Decimal, week string, alloc map[Cell]decimal.Decimal) error {
	var cells []rankedCell
	var reserved decimal.Decimal
	for _, p := range input.Products {
		for _, c := range input.Channels {
			for _, r := range input.Regions {
				cell := Cell{Product: p, Channel: c, Region: r, Week: week}
				demand, ok := input.Demand[cell]
				if !ok || !demand.IsPositive() {
					continue
				}
				cells = append(cells, rankedCell{cell: cell, demand: demand, priority: weights.composite(p, c, r)})
				if reserve, ok := reserves[cell]; ok {
					alloc[cell] = reserve
					reserved = reserved.Add(reserve)
				}
			}
		}
	}

	supply, capped := input.Supply[week]
	if capped && reserved.GreaterThan(supply) {
		return fmt.Errorf("%w: week %s reserves %s exceed supply %s",
			ErrInfeasible, week, reserved, supply)
	}

	sort.SliceStable(cells, func(i, j int) bool {
		// priority_i/demand_i vs priority_j/demand_j, cross-multiplied.
		left := decimal.NewFromInt(int64(cells[i].priority)).Mul(cells[j].demand)
		right := decimal.NewFromInt(int64(cells[j].priority)).Mul(cells[i].demand)
		if !left.Equal(right) {
			return left.GreaterThan(right)
		}
		a, b := cells[i].cell, cells[j].cell
		if a.Product != b.Product {
			return a.Product < b.Product
		}
		if a.Channel != b.Channel {
			return a.Channel < b.Channel
		}
		return a.Region < b.Region
	})

	remaining := supply.Sub(reserved)
	for _, rc := range cells {
		if capped && !remaining.IsPositive() {
			break
		}
		want := rc.demand.Sub(alloc[rc.cell])
		if !want.IsPositive() {
			continue
		}
		if capped && want.GreaterThan(remaining) {
			want = remaining
		}
		alloc[rc.cell] = alloc[rc.cell].Add(want)
		if capped {
			remaining = remaining.Sub(want)
		}
	}
	return nil
}
