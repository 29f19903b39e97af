package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/laiyunwu/casestudy12/internal/allocation"
	"github.com/laiyunwu/casestudy12/internal/app"
	"github.com/laiyunwu/casestudy12/internal/forecast"
	"github.com/laiyunwu/casestudy12/internal/insights"
	"github.com/laiyunwu/casestudy12/internal/logging"
	"github.com/laiyunwu/casestudy12/internal/scenarios"
	"github.com/laiyunwu/casestudy12/plandb"
)

// Server exposes the analytics as MCP tools over the same app.Application
// the REST API and dashboard use. Tool runs land in the shared run history,
// in the same stored shape as API runs, so the dashboard's "latest" views
// pick them up.
type Server struct {
	MCPServer *sdkmcp.Server
	App       *app.Application
}

func NewServer(application *app.Application) *Server {
	version := application.Config.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{App: application}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "supplyboard", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP over stdin/stdout until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_forecast",
		Description: "Forecast launch sales for the target product over the case 1 history. Omitted parameters keep the stock scenario (Superman Plus at 205, Princess Plus and Dwarf Plus as references).",
	}, s.handleRunForecast)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "optimize_allocation",
		Description: "Distribute the case 2 weekly supply across product, channel, and region demand by business priority. Omitted priorities use the stock weights.",
	}, s.handleOptimizeAllocation)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_scenarios",
		Description: "List the embedded what-if scenarios with their descriptions.",
	}, s.handleListScenarios)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_scenario",
		Description: "Run one embedded scenario: the forecast with its overrides, then the constrained allocation.",
	}, s.handleRunScenario)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "dataset_overview",
		Description: "Summarize the loaded dataset for one case (case1 = sales history, case2 = supply tables).",
	}, s.handleDatasetOverview)
}

// --- Tool input/output types ---

type runForecastInput struct {
	TargetProduct string   `json:"target_product,omitempty" jsonschema:"product to forecast (default Superman Plus)"`
	TargetPrice   float64  `json:"target_price,omitempty" jsonschema:"launch price (default 205)"`
	BatteryImpact *float64 `json:"battery_impact,omitempty" jsonschema:"battery upgrade uplift as a fraction, e.g. 0.05"`
	LaunchWeeks   int      `json:"launch_weeks,omitempty" jsonschema:"weeks receiving the launch uplift (default 4)"`
	HorizonWeeks  int      `json:"horizon_weeks,omitempty" jsonschema:"forecast length in weeks (default 15)"`
	FutureWeeks   int      `json:"future_weeks,omitempty" jsonschema:"extra generated weeks beyond the history (forecast at zero without reference data)"`
}

type weekTotal struct {
	Week     string  `json:"week"`
	Quantity float64 `json:"quantity"`
}

type insightLine struct {
	Kind     string `json:"kind"`
	Headline string `json:"headline"`
	Detail   string `json:"detail"`
}

type runForecastOutput struct {
	Target   string        `json:"target"`
	Weeks    int           `json:"weeks"`
	Total    float64       `json:"total"`
	Totals   []weekTotal   `json:"totals"`
	Insights []insightLine `json:"insights"`
}

type constraintInput struct {
	Product string  `json:"product" jsonschema:"product name"`
	Channel string  `json:"channel" jsonschema:"channel name"`
	Region  string  `json:"region" jsonschema:"region name"`
	Week    string  `json:"week" jsonschema:"week label, e.g. Jan-Wk4"`
	MinRate float64 `json:"min_rate" jsonschema:"minimum satisfaction rate 0..1 for this cell"`
}

type optimizeAllocationInput struct {
	ProductPriorities map[string]int    `json:"product_priorities,omitempty" jsonschema:"priority 1-10 per product"`
	ChannelPriorities map[string]int    `json:"channel_priorities,omitempty" jsonschema:"priority 1-10 per channel"`
	RegionPriorities  map[string]int    `json:"region_priorities,omitempty" jsonschema:"priority 1-10 per region"`
	Constraints       []constraintInput `json:"constraints,omitempty" jsonschema:"minimum satisfaction constraints"`
}

type allocationGroupRow struct {
	Name         string  `json:"name"`
	Demand       float64 `json:"demand"`
	Allocated    float64 `json:"allocated"`
	Satisfaction float64 `json:"satisfaction"`
}

type optimizeAllocationOutput struct {
	Status       string               `json:"status"`
	Satisfaction float64              `json:"satisfaction"`
	Allocated    float64              `json:"allocated"`
	Demand       float64              `json:"demand"`
	ByProduct    []allocationGroupRow `json:"by_product"`
	ByWeek       []allocationGroupRow `json:"by_week"`
}

type listScenariosInput struct{}

type scenarioInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type listScenariosOutput struct {
	Scenarios []scenarioInfo `json:"scenarios"`
}

type runScenarioInput struct {
	Name string `json:"name" jsonschema:"scenario name from list_scenarios"`
}

type runScenarioOutput struct {
	Scenario      string  `json:"scenario"`
	Status        string  `json:"status"`
	ForecastTotal float64 `json:"forecast_total"`
	Allocated     float64 `json:"allocated"`
	Demand        float64 `json:"demand"`
	Satisfaction  float64 `json:"satisfaction"`
	Error         string  `json:"error,omitempty"`
}

type datasetOverviewInput struct {
	Kind string `json:"kind" jsonschema:"dataset kind: case1 or case2"`
}

type datasetOverviewOutput struct {
	Kind      string         `json:"kind"`
	Source    string         `json:"source"`
	Rows      int            `json:"rows,omitempty"`
	Products  []string       `json:"products"`
	Regions   []string       `json:"regions"`
	Channels  []string       `json:"channels,omitempty"`
	Weeks     []string       `json:"weeks"`
	TableRows map[string]int `json:"table_rows,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// forecastRecord mirrors the REST layer's persisted forecast run payload so
// both surfaces read each other's history.
type forecastRecord struct {
	Params   forecast.Params    `json:"params"`
	Result   *forecast.Result   `json:"result"`
	Insights []insights.Insight `json:"insights"`
	Band     insights.Band      `json:"confidenceBand"`
}

// allocationRecord mirrors the REST layer's persisted allocation run
// payload.
type allocationRecord struct {
	Priorities   allocation.Priorities         `json:"priorities"`
	Constraints  []allocation.Constraint       `json:"constraints,omitempty"`
	Status       string                        `json:"status"`
	Objective    decimal.Decimal               `json:"objective"`
	Satisfaction decimal.Decimal               `json:"satisfaction"`
	Lines        []allocation.Line             `json:"lines"`
	Summaries    map[string]allocation.Summary `json:"summaries"`
	Gaps         []allocation.Gap              `json:"gapAnalysis"`
}

const confidenceMargin = 0.15

// --- Tool handlers ---

func (s *Server) handleRunForecast(ctx context.Context, _ *sdkmcp.CallToolRequest, input runForecastInput) (*sdkmcp.CallToolResult, runForecastOutput, error) {
	if input.FutureWeeks < 0 {
		return nil, runForecastOutput{}, fmt.Errorf("future_weeks must not be negative")
	}

	params := forecast.DefaultParams()
	if input.TargetProduct != "" {
		params.TargetProduct = input.TargetProduct
	}
	if input.TargetPrice > 0 {
		params.TargetPrice = input.TargetPrice
	}
	if input.BatteryImpact != nil {
		params.BatteryImpact = *input.BatteryImpact
	}
	if input.LaunchWeeks > 0 {
		params.LaunchWeeks = input.LaunchWeeks
	}
	if input.HorizonWeeks > 0 {
		params.HorizonWeeks = input.HorizonWeeks
	}

	records := s.App.Data.Case1().Records
	result, err := forecast.Predict(records, params)
	if err != nil {
		return nil, runForecastOutput{}, fmt.Errorf("run_forecast: %w", err)
	}

	if input.FutureWeeks > 0 && len(result.Weeks) > 0 {
		future, err := forecast.NextWeeks(result.Weeks[len(result.Weeks)-1], input.FutureWeeks)
		if err != nil {
			return nil, runForecastOutput{}, fmt.Errorf("run_forecast: extend horizon: %w", err)
		}
		params.Weeks = append(append([]string{}, result.Weeks...), future...)
		result, err = forecast.Predict(records, params)
		if err != nil {
			return nil, runForecastOutput{}, fmt.Errorf("run_forecast: %w", err)
		}
	}

	record := newForecastRecord(params, result)
	if err := s.App.RecordRun(ctx, plandb.KindForecast, params, record, "ok"); err != nil {
		logging.LogError(s.App.Logger, "failed to record forecast run", err)
	}

	out := runForecastOutput{
		Target: result.Target,
		Weeks:  len(result.Weeks),
	}
	for _, wt := range result.Totals {
		out.Total += wt.Quantity
		out.Totals = append(out.Totals, weekTotal{Week: wt.Week, Quantity: wt.Quantity})
	}
	for _, in := range record.Insights {
		out.Insights = append(out.Insights, insightLine{Kind: in.Kind, Headline: in.Headline, Detail: in.Detail})
	}
	return nil, out, nil
}

func newForecastRecord(params forecast.Params, result *forecast.Result) forecastRecord {
	totals := make([]float64, 0, len(result.Totals))
	for _, t := range result.Totals {
		totals = append(totals, t.Quantity)
	}
	return forecastRecord{
		Params:   params,
		Result:   result,
		Insights: insights.ForForecast(result),
		Band:     insights.ConfidenceBand(totals, confidenceMargin),
	}
}

func (s *Server) handleOptimizeAllocation(ctx context.Context, _ *sdkmcp.CallToolRequest, input optimizeAllocationInput) (*sdkmcp.CallToolResult, optimizeAllocationOutput, error) {
	in := allocation.BuildInput(s.App.Data.Case2().AllocationTables())

	priorities := allocation.DefaultPriorities(in.Products, in.Regions)
	for name, value := range input.ProductPriorities {
		priorities.Product[name] = value
	}
	for name, value := range input.ChannelPriorities {
		priorities.Channel[name] = value
	}
	for name, value := range input.RegionPriorities {
		priorities.Region[name] = value
	}

	constraints := make([]allocation.Constraint, 0, len(input.Constraints))
	for _, c := range input.Constraints {
		constraints = append(constraints, allocation.Constraint{
			Product: c.Product,
			Channel: c.Channel,
			Region:  c.Region,
			Week:    c.Week,
			MinRate: decimal.NewFromFloat(c.MinRate),
		})
	}

	result, err := allocation.Optimize(in, priorities, constraints)
	if err != nil && !errors.Is(err, allocation.ErrInfeasible) {
		return nil, optimizeAllocationOutput{}, fmt.Errorf("optimize_allocation: %w", err)
	}

	satisfaction := allocation.OverallSatisfaction(result)
	c := s.App.Data.Case2()
	record := allocationRecord{
		Priorities:   priorities,
		Constraints:  constraints,
		Status:       result.Status,
		Objective:    result.Objective,
		Satisfaction: satisfaction,
		Lines:        result.Lines,
		Summaries:    allocation.Summaries(result),
		Gaps:         allocation.GapAnalysis(c.SupplyByWeek(), c.DemandByWeek()),
	}
	if err := s.App.RecordRun(ctx, plandb.KindAllocation, input, record, result.Status); err != nil {
		logging.LogError(s.App.Logger, "failed to record allocation run", err)
	}

	out := optimizeAllocationOutput{
		Status:       result.Status,
		Satisfaction: satisfaction.InexactFloat64(),
	}
	for _, line := range result.Lines {
		out.Allocated += line.Allocated.InexactFloat64()
		out.Demand += line.Demand.InexactFloat64()
	}
	out.ByProduct = groupRows(record.Summaries[allocation.GroupProduct], func(r allocation.SummaryRow) string { return r.Product })
	out.ByWeek = groupRows(record.Summaries[allocation.GroupWeek], func(r allocation.SummaryRow) string { return r.Week })
	return nil, out, nil
}

func groupRows(summary allocation.Summary, name func(allocation.SummaryRow) string) []allocationGroupRow {
	rows := make([]allocationGroupRow, 0, len(summary.Rows))
	for _, r := range summary.Rows {
		rows = append(rows, allocationGroupRow{
			Name:         name(r),
			Demand:       r.Demand.InexactFloat64(),
			Allocated:    r.Allocated.InexactFloat64(),
			Satisfaction: r.Satisfaction.InexactFloat64(),
		})
	}
	return rows
}

func (s *Server) handleListScenarios(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listScenariosInput) (*sdkmcp.CallToolResult, listScenariosOutput, error) {
	list, err := scenarios.List()
	if err != nil {
		return nil, listScenariosOutput{}, fmt.Errorf("list_scenarios: %w", err)
	}

	out := listScenariosOutput{Scenarios: make([]scenarioInfo, 0, len(list))}
	for _, sc := range list {
		out.Scenarios = append(out.Scenarios, scenarioInfo{Name: sc.Name, Description: sc.Description})
	}
	return nil, out, nil
}

func (s *Server) handleRunScenario(ctx context.Context, _ *sdkmcp.CallToolRequest, input runScenarioInput) (*sdkmcp.CallToolResult, runScenarioOutput, error) {
	outcome, err := s.App.Scenarios.RunByName(ctx, input.Name)
	if err != nil {
		return nil, runScenarioOutput{}, fmt.Errorf("run_scenario: %w", err)
	}

	params := struct {
		Name string `json:"name"`
	}{input.Name}
	if err := s.App.RecordRun(ctx, plandb.KindScenario, params, outcome, outcome.Status); err != nil {
		logging.LogError(s.App.Logger, "failed to record scenario run", err)
	}

	return nil, runScenarioOutput{
		Scenario:      outcome.Scenario.Name,
		Status:        outcome.Status,
		ForecastTotal: outcome.ForecastTotal,
		Allocated:     outcome.Allocated.InexactFloat64(),
		Demand:        outcome.Demand.InexactFloat64(),
		Satisfaction:  outcome.Satisfaction.InexactFloat64(),
		Error:         outcome.Error,
	}, nil
}

func (s *Server) handleDatasetOverview(ctx context.Context, _ *sdkmcp.CallToolRequest, input datasetOverviewInput) (*sdkmcp.CallToolResult, datasetOverviewOutput, error) {
	switch input.Kind {
	case "case1":
		o := s.App.Data.Case1Overview()
		return nil, datasetOverviewOutput{
			Kind:     input.Kind,
			Source:   o.Source,
			Rows:     o.Rows,
			Products: o.Products,
			Regions:  o.Regions,
			Weeks:    o.Weeks,
			Warnings: o.Warnings,
		}, nil
	case "case2":
		o := s.App.Data.Case2Overview()
		return nil, datasetOverviewOutput{
			Kind:      input.Kind,
			Source:    o.Source,
			Products:  o.Products,
			Regions:   o.Regions,
			Channels:  o.Channels,
			Weeks:     o.SupplyWeeks,
			TableRows: o.TableRows,
			Warnings:  o.Warnings,
		}, nil
	default:
		return nil, datasetOverviewOutput{}, fmt.Errorf("unknown dataset kind %q (use case1 or case2)", input.Kind)
	}
}
