package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryFixture() *Result {
	line := func(p, c, r, w, demand, allocated string) Line {
		return Line{
			Cell:      Cell{Product: p, Channel: c, Region: r, Week: w},
			Demand:    dec(demand),
			Allocated: dec(allocated),
		}
	}
	return &Result{
		Status: StatusOptimal,
		Lines: []Line{
			line("Alpha Plus", "Online Store", "AMR", "Jan-Wk2", "100", "80"),
			line("Alpha Plus", "Retail Store", "PAC", "Jan-Wk2", "50", "50"),
			line("Alpha Plus", "Online Store", "AMR", "Jan-Wk10", "50", "20"),
			line("Beta", "Online Store", "AMR", "Jan-Wk2", "100", "50"),
		},
	}
}

func TestSummarizeByProduct(t *testing.T) {
	summary, err := Summarize(summaryFixture(), GroupProduct)
	require.NoError(t, err)
	require.Len(t, summary.Rows, 2)

	alpha := summary.Rows[0]
	assert.Equal(t, "Alpha Plus", alpha.Product)
	assert.Empty(t, alpha.Week)
	assert.Equal(t, "200", alpha.Demand.String())
	assert.Equal(t, "150", alpha.Allocated.String())
	assert.Equal(t, "0.75", alpha.Satisfaction.String())

	beta := summary.Rows[1]
	assert.Equal(t, "Beta", beta.Product)
	assert.Equal(t, "0.5", beta.Satisfaction.String())
}

func TestSummarizeByProductWeek(t *testing.T) {
	summary, err := Summarize(summaryFixture(), GroupProductWeek)
	require.NoError(t, err)
	require.Len(t, summary.Rows, 3)

	// Weeks order chronologically, not lexically: Wk2 before Wk10.
	assert.Equal(t, "Jan-Wk2", summary.Rows[0].Week)
	assert.Equal(t, "Jan-Wk10", summary.Rows[1].Week)
	assert.Equal(t, "Alpha Plus", summary.Rows[1].Product)
	assert.Equal(t, "Beta", summary.Rows[2].Product)

	// Alpha's Jan-Wk2 rows merge across channels.
	assert.Equal(t, "150", summary.Rows[0].Demand.String())
	assert.Equal(t, "130", summary.Rows[0].Allocated.String())
}

func TestSummarizeByChannelRegion(t *testing.T) {
	summary, err := Summarize(summaryFixture(), GroupChannelRegion)
	require.NoError(t, err)
	require.Len(t, summary.Rows, 3)

	first := summary.Rows[0]
	assert.Equal(t, "Alpha Plus", first.Product)
	assert.Equal(t, "Online Store", first.Channel)
	assert.Equal(t, "AMR", first.Region)
	assert.Equal(t, "150", first.Demand.String())
	assert.Equal(t, "100", first.Allocated.String())
}

func TestSummarizeByWeek(t *testing.T) {
	summary, err := Summarize(summaryFixture(), GroupWeek)
	require.NoError(t, err)
	require.Len(t, summary.Rows, 2)

	wk2 := summary.Rows[0]
	assert.Equal(t, "Jan-Wk2", wk2.Week)
	assert.Empty(t, wk2.Product)
	assert.Equal(t, "250", wk2.Demand.String())
	assert.Equal(t, "180", wk2.Allocated.String())
	assert.Equal(t, "0.72", wk2.Satisfaction.String())
}

func TestSummarizeUnknownGrouping(t *testing.T) {
	_, err := Summarize(summaryFixture(), "galaxy")
	assert.Error(t, err)
}

func TestSummariesCoversAllGroupings(t *testing.T) {
	summaries := Summaries(summaryFixture())
	require.Len(t, summaries, 4)
	for _, key := range GroupKeys {
		assert.Contains(t, summaries, key)
		assert.Equal(t, key, summaries[key].GroupBy)
	}
}

func TestOverallSatisfaction(t *testing.T) {
	// 200 allocated over 300 demanded.
	assert.Equal(t, "0.6666666666666667", OverallSatisfaction(summaryFixture()).String())
	assert.Equal(t, "0", OverallSatisfaction(&Result{}).String())
}
