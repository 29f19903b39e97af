package scenarios

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/laiyunwu/casestudy12/internal/allocation"
	"github.com/laiyunwu/casestudy12/internal/dataset"
	"github.com/laiyunwu/casestudy12/internal/forecast"
)

// maxConcurrentRuns caps how many scenarios RunAll executes at once.
const maxConcurrentRuns = 4

// DataSource provides the datasets scenarios run against. *dataset.Manager
// satisfies it.
type DataSource interface {
	Case1() *dataset.Case1
	Case2() *dataset.Case2
}

// Runner executes scenario presets against the live datasets.
type Runner struct {
	data DataSource
}

func NewRunner(data DataSource) *Runner {
	return &Runner{data: data}
}

// Outcome is one scenario's headline numbers for the comparison table.
type Outcome struct {
	Scenario      Scenario        `json:"scenario"`
	ForecastTotal float64         `json:"forecastTotal"`
	Allocated     decimal.Decimal `json:"allocated"`
	Demand        decimal.Decimal `json:"demand"`
	Satisfaction  decimal.Decimal `json:"satisfaction"`
	Status        string          `json:"status"`
	Error         string          `json:"error,omitempty"`
}

// Run executes one scenario: the forecast over the case 1 history, then
// the constrained allocation over case 2. An infeasible allocation is a
// valid outcome, not an error.
func (r *Runner) Run(ctx context.Context, sc Scenario) (Outcome, error) {
	outcome := Outcome{Scenario: sc}
	if err := ctx.Err(); err != nil {
		return outcome, err
	}

	params := sc.Forecast.Apply(forecast.DefaultParams())
	fc, err := forecast.Predict(r.data.Case1().Records, params)
	if err != nil {
		return outcome, fmt.Errorf("scenario %s: forecast: %w", sc.Name, err)
	}
	for _, wt := range fc.Totals {
		outcome.ForecastTotal += wt.Quantity
	}

	tables := r.data.Case2().AllocationTables()
	tables.Supply = sc.Allocation.ScaleSupply(tables.Supply)
	input := allocation.BuildInput(tables)
	priorities := sc.Allocation.Apply(allocation.DefaultPriorities(input.Products, input.Regions))
	constraints := expandConstraints(input, sc.Allocation.Constraints)

	result, err := allocation.Optimize(input, priorities, constraints)
	if errors.Is(err, allocation.ErrInfeasible) {
		outcome.Status = allocation.StatusInfeasible
		return outcome, nil
	}
	if err != nil {
		return outcome, fmt.Errorf("scenario %s: allocation: %w", sc.Name, err)
	}

	outcome.Status = result.Status
	for _, line := range result.Lines {
		outcome.Allocated = outcome.Allocated.Add(line.Allocated)
		outcome.Demand = outcome.Demand.Add(line.Demand)
	}
	outcome.Satisfaction = allocation.OverallSatisfaction(result)
	return outcome, nil
}

// RunByName loads and runs a single scenario.
func (r *Runner) RunByName(ctx context.Context, name string) (Outcome, error) {
	sc, err := Load(name)
	if err != nil {
		return Outcome{}, err
	}
	return r.Run(ctx, sc)
}

// RunAll executes every embedded scenario, at most maxConcurrentRuns at a
// time, and returns outcomes ordered by scenario name. A failing scenario
// lands in its outcome's Error field so the comparison still covers the
// rest.
func (r *Runner) RunAll(ctx context.Context) ([]Outcome, error) {
	all, err := List()
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(all))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRuns)
	for i, sc := range all {
		g.Go(func() error {
			outcome, err := r.Run(ctx, sc)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				outcome.Status = "error"
				outcome.Error = err.Error()
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// expandConstraints resolves wildcard fields against the input's index
// sets, so one preset entry can constrain e.g. every PAC cell for a week.
// Expanded cells with no demand are ignored by the optimizer.
func expandConstraints(input allocation.Input, specs []ConstraintSpec) []allocation.Constraint {
	var out []allocation.Constraint
	for _, spec := range specs {
		rate := decimal.NewFromFloat(spec.MinRate)
		for _, p := range pick(spec.Product, input.Products) {
			for _, c := range pick(spec.Channel, input.Channels) {
				for _, r := range pick(spec.Region, input.Regions) {
					for _, w := range pick(spec.Week, input.Weeks) {
						out = append(out, allocation.Constraint{
							Product: p, Channel: c, Region: r, Week: w, MinRate: rate,
						})
					}
				}
			}
		}
	}
	return out
}

func pick(v string, all []string) []string {
	if v == "" {
		return all
	}
	return []string{v}
}
