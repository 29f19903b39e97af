package allocation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBuildInput(t *testing.T) {
	input := BuildInput(Tables{
		Supply: map[string]decimal.Decimal{"Jan-Wk1": dec("100")},
		// Build plan knows a product that has no customer demand yet.
		BuildProducts: []string{"Gamma Mini"},
		Weeks:         []string{"Jan-Wk1", "Jan-Wk2"},
		Demand: []DemandRow{
			{
				Product: "Alpha Plus", Channel: "Online Store", Region: "AMR",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("30"), "Jan-Wk2": dec("40")},
			},
			{
				Product: "Alpha Plus", Channel: "Online Store", Region: "AMR",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("20")},
			},
			{
				Product: "Beta", Channel: "Retail Store", Region: "PAC",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("10"), "Feb-Wk1": dec("99")},
			},
		},
	})

	assert.Equal(t, []string{"Alpha Plus", "Beta", "Gamma Mini"}, input.Products)
	assert.Equal(t, []string{"Default", "Online Store", "Retail Store"}, input.Channels)
	assert.Equal(t, []string{"AMR", "Default", "PAC"}, input.Regions)
	assert.Equal(t, []string{"Jan-Wk1", "Jan-Wk2"}, input.Weeks)

	// Duplicate rows accumulate.
	got := input.Demand[Cell{Product: "Alpha Plus", Channel: "Online Store", Region: "AMR", Week: "Jan-Wk1"}]
	assert.Equal(t, "50", got.String())

	// Weeks outside the table's columns are dropped.
	_, ok := input.Demand[Cell{Product: "Beta", Channel: "Retail Store", Region: "PAC", Week: "Feb-Wk1"}]
	assert.False(t, ok)
}

func TestDefaultPriorities(t *testing.T) {
	p := DefaultPriorities(
		[]string{"Alpha Plus", "Beta", "Gamma Mini"},
		[]string{"AMR", "Default"},
	)

	assert.Equal(t, 8, p.Product["Alpha Plus"])
	assert.Equal(t, 5, p.Product["Beta"])
	assert.Equal(t, 3, p.Product["Gamma Mini"])
	assert.Equal(t, 7, p.Channel["Online Store"])
	assert.Equal(t, 8, p.Channel["Reseller Partners"])
	assert.Equal(t, 1, p.Region["AMR"])

	// Composite falls back to 5/1/1 for unknown names.
	assert.Equal(t, 8*7*1, p.composite("Alpha Plus", "Online Store", "AMR"))
	assert.Equal(t, 5, p.composite("Unknown", "Nowhere", "Mars"))
}

func ampleInput() Input {
	return BuildInput(Tables{
		Supply: map[string]decimal.Decimal{"Jan-Wk1": dec("1000")},
		Weeks:  []string{"Jan-Wk1"},
		Demand: []DemandRow{
			{Product: "Alpha Plus", Channel: "Online Store", Region: "AMR",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("80")}},
			{Product: "Beta", Channel: "Retail Store", Region: "PAC",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("50")}},
		},
	})
}

func TestOptimizeMeetsDemandWithAmpleSupply(t *testing.T) {
	result, err := Optimize(ampleInput(), Priorities{}, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusOptimal, result.Status)
	require.Len(t, result.Lines, 2)
	for _, line := range result.Lines {
		assert.Equal(t, "1", line.Satisfaction.String(), "cell %+v", line.Cell)
		assert.True(t, line.Allocated.Equal(line.Demand))
	}
	// Lines follow the product index order.
	assert.Equal(t, "Alpha Plus", result.Lines[0].Product)
	assert.Equal(t, "Beta", result.Lines[1].Product)
}

func TestOptimizeShortageFillsByPriorityDensity(t *testing.T) {
	input := BuildInput(Tables{
		Supply: map[string]decimal.Decimal{"Jan-Wk1": dec("100")},
		Weeks:  []string{"Jan-Wk1"},
		Demand: []DemandRow{
			// priority 8*8*1=64 over demand 80: density 0.8
			{Product: "Alpha Plus", Channel: "Reseller Partners", Region: "AMR",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("80")}},
			// priority 5*7*1=35 over demand 50: density 0.7
			{Product: "Beta", Channel: "Online Store", Region: "Europe",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("50")}},
			// priority 3*5*1=15 over demand 40: density 0.375
			{Product: "Gamma Mini", Channel: "Retail Store", Region: "PAC",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("40")}},
		},
	})

	result, err := Optimize(input, Priorities{}, nil)
	require.NoError(t, err)
	require.Len(t, result.Lines, 2, "the lowest-density cell gets nothing and is omitted")

	alpha, beta := result.Lines[0], result.Lines[1]
	assert.Equal(t, "Alpha Plus", alpha.Product)
	assert.Equal(t, "80", alpha.Allocated.String())
	assert.Equal(t, "1", alpha.Satisfaction.String())
	assert.Equal(t, 64, alpha.Priority)

	assert.Equal(t, "Beta", beta.Product)
	assert.Equal(t, "20", beta.Allocated.String())
	assert.Equal(t, "0.4", beta.Satisfaction.String())

	// 64*1 + 35*0.4
	assert.Equal(t, "78", result.Objective.String())
}

func TestOptimizeDensityBeatsRawPriority(t *testing.T) {
	// The big cell has the higher priority but the thin cell satisfies more
	// objective per unit.
	input := BuildInput(Tables{
		Supply: map[string]decimal.Decimal{"Jan-Wk1": dec("100")},
		Weeks:  []string{"Jan-Wk1"},
		Demand: []DemandRow{
			{Product: "Alpha Plus", Channel: "Reseller Partners", Region: "AMR",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("1000")}},
			{Product: "Beta", Channel: "Online Store", Region: "AMR",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("100")}},
		},
	})

	result, err := Optimize(input, Priorities{}, nil)
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)
	assert.Equal(t, "Beta", result.Lines[0].Product)
	assert.Equal(t, "100", result.Lines[0].Allocated.String())
}

func TestOptimizeSpecialConstraintReservesSupply(t *testing.T) {
	input := BuildInput(Tables{
		Supply: map[string]decimal.Decimal{"Jan-Wk4": dec("100")},
		Weeks:  []string{"Jan-Wk4"},
		Demand: []DemandRow{
			{Product: "Alpha Plus", Channel: "Reseller Partners", Region: "AMR",
				Demand: map[string]decimal.Decimal{"Jan-Wk4": dec("100")}},
			{Product: "Gamma Mini", Channel: "Retail Store", Region: "PAC",
				Demand: map[string]decimal.Decimal{"Jan-Wk4": dec("100")}},
		},
	})

	constraints := []Constraint{{
		Product: "Gamma Mini", Channel: "Retail Store", Region: "PAC",
		Week: "Jan-Wk4", MinRate: dec("0.3"),
	}}

	result, err := Optimize(input, Priorities{}, constraints)
	require.NoError(t, err)
	require.Len(t, result.Lines, 2)

	alpha, gamma := result.Lines[0], result.Lines[1]
	assert.Equal(t, "70", alpha.Allocated.String())
	assert.Equal(t, "30", gamma.Allocated.String())
	assert.Equal(t, "0.3", gamma.Satisfaction.String())
}

func TestOptimizeInfeasibleReserves(t *testing.T) {
	input := BuildInput(Tables{
		Supply: map[string]decimal.Decimal{"Jan-Wk1": dec("50")},
		Weeks:  []string{"Jan-Wk1"},
		Demand: []DemandRow{
			{Product: "Alpha Plus", Channel: "Online Store", Region: "AMR",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("40")}},
			{Product: "Beta", Channel: "Online Store", Region: "PAC",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("40")}},
		},
	})

	// Zero MinRate means the cell must be fully met; 40+40 cannot fit in 50.
	constraints := []Constraint{
		{Product: "Alpha Plus", Channel: "Online Store", Region: "AMR", Week: "Jan-Wk1"},
		{Product: "Beta", Channel: "Online Store", Region: "PAC", Week: "Jan-Wk1"},
	}

	result, err := Optimize(input, Priorities{}, constraints)
	assert.ErrorIs(t, err, ErrInfeasible)
	assert.Equal(t, StatusInfeasible, result.Status)
	assert.Empty(t, result.Lines)
}

func TestOptimizeRateAboveFullDemandInfeasible(t *testing.T) {
	input := ampleInput()
	constraints := []Constraint{{
		Product: "Alpha Plus", Channel: "Online Store", Region: "AMR",
		Week: "Jan-Wk1", MinRate: dec("1.5"),
	}}

	_, err := Optimize(input, Priorities{}, constraints)
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestOptimizeConstraintOnZeroDemandCellIgnored(t *testing.T) {
	constraints := []Constraint{{
		Product: "Nobody", Channel: "Online Store", Region: "AMR", Week: "Jan-Wk1",
	}}

	result, err := Optimize(ampleInput(), Priorities{}, constraints)
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, result.Status)
	assert.Len(t, result.Lines, 2)
}

func TestOptimizeUncappedWeek(t *testing.T) {
	input := BuildInput(Tables{
		// No supply row for Jan-Wk2: that week has no cap.
		Supply: map[string]decimal.Decimal{"Jan-Wk1": dec("10")},
		Weeks:  []string{"Jan-Wk1", "Jan-Wk2"},
		Demand: []DemandRow{
			{Product: "Alpha Plus", Channel: "Online Store", Region: "AMR",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("80"), "Jan-Wk2": dec("80")}},
		},
	})

	result, err := Optimize(input, Priorities{}, nil)
	require.NoError(t, err)
	require.Len(t, result.Lines, 2)
	assert.Equal(t, "10", result.Lines[0].Allocated.String())
	assert.Equal(t, "80", result.Lines[1].Allocated.String())
}

func TestOptimizeEmptyDemand(t *testing.T) {
	result, err := Optimize(Input{}, Priorities{}, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, result.Status)
	assert.Empty(t, result.Lines)
	assert.Equal(t, "0", result.Objective.String())
}

func TestOptimizeCustomPrioritiesOverrideDefaults(t *testing.T) {
	input := BuildInput(Tables{
		Supply: map[string]decimal.Decimal{"Jan-Wk1": dec("50")},
		Weeks:  []string{"Jan-Wk1"},
		Demand: []DemandRow{
			{Product: "Alpha Plus", Channel: "Online Store", Region: "AMR",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("50")}},
			{Product: "Beta", Channel: "Online Store", Region: "AMR",
				Demand: map[string]decimal.Decimal{"Jan-Wk1": dec("50")}},
		},
	})

	// Flip the default ordering: Beta outranks the premium product.
	priorities := Priorities{Product: map[string]int{"Alpha Plus": 1, "Beta": 9}}

	result, err := Optimize(input, priorities, nil)
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)
	assert.Equal(t, "Beta", result.Lines[0].Product)
	assert.Equal(t, "50", result.Lines[0].Allocated.String())
}
