package allocation

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/laiyunwu/casestudy12/internal/forecast"
)

// Grouping keys accepted by Summarize.
const (
	GroupProduct       = "product"
	GroupProductWeek   = "product_week"
	GroupChannelRegion = "channel_region"
	GroupWeek          = "week"
)

// GroupKeys lists the supported groupings in presentation order.
var GroupKeys = []string{GroupProduct, GroupProductWeek, GroupChannelRegion, GroupWeek}

// SummaryRow aggregates result lines sharing a grouping key. Fields outside
// the grouping stay empty.
type SummaryRow struct {
	Product      string          `json:"product,omitempty"`
	Channel      string          `json:"channel,omitempty"`
	Region       string          `json:"region,omitempty"`
	Week         string          `json:"week,omitempty"`
	Demand       decimal.Decimal `json:"demand"`
	Allocated    decimal.Decimal `json:"allocated"`
	Satisfaction decimal.Decimal `json:"satisfaction"`
}

// Summary is one grouped view of a result.
type Summary struct {
	GroupBy string       `json:"groupBy"`
	Rows    []SummaryRow `json:"rows"`
}

type groupKey struct {
	product string
	channel string
	region  string
	week    string
}

func (k groupKey) less(other groupKey) bool {
	if k.product != other.product {
		return k.product < other.product
	}
	if k.channel != other.channel {
		return k.channel < other.channel
	}
	if k.region != other.region {
		return k.region < other.region
	}
	return forecast.CompareWeekLabels(k.week, other.week) < 0
}

// Summarize aggregates a result by one of the GroupKeys groupings. Each row
// carries summed demand, summed allocation, and their ratio as satisfaction.
func Summarize(result *Result, groupBy string) (Summary, error) {
	var keyOf func(Line) groupKey
	switch groupBy {
	case GroupProduct:
		keyOf = func(l Line) groupKey { return groupKey{product: l.Product} }
	case GroupProductWeek:
		keyOf = func(l Line) groupKey { return groupKey{product: l.Product, week: l.Week} }
	case GroupChannelRegion:
		keyOf = func(l Line) groupKey {
			return groupKey{product: l.Product, channel: l.Channel, region: l.Region}
		}
	case GroupWeek:
		keyOf = func(l Line) groupKey { return groupKey{week: l.Week} }
	default:
		return Summary{}, fmt.Errorf("unknown summary grouping %q", groupBy)
	}

	type bucket struct {
		demand    decimal.Decimal
		allocated decimal.Decimal
	}
	buckets := make(map[groupKey]*bucket)
	keys := make([]groupKey, 0)
	for _, line := range result.Lines {
		key := keyOf(line)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.demand = b.demand.Add(line.Demand)
		b.allocated = b.allocated.Add(line.Allocated)
	}

	sort.SliceStable(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	rows := make([]SummaryRow, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		row := SummaryRow{
			Product:   key.product,
			Channel:   key.channel,
			Region:    key.region,
			Week:      key.week,
			Demand:    b.demand,
			Allocated: b.allocated,
		}
		if b.demand.IsPositive() {
			row.Satisfaction = b.allocated.Div(b.demand)
		}
		rows = append(rows, row)
	}
	return Summary{GroupBy: groupBy, Rows: rows}, nil
}

// Summaries returns all four grouped views keyed by grouping name.
func Summaries(result *Result) map[string]Summary {
	out := make(map[string]Summary, len(GroupKeys))
	for _, key := range GroupKeys {
		summary, err := Summarize(result, key)
		if err != nil {
			continue
		}
		out[key] = summary
	}
	return out
}

// OverallSatisfaction is the headline metric: total allocated over total
// demanded across all result lines. Zero when the result is empty.
func OverallSatisfaction(result *Result) decimal.Decimal {
	var demand, allocated decimal.Decimal
	for _, line := range result.Lines {
		demand = demand.Add(line.Demand)
		allocated = allocated.Add(line.Allocated)
	}
	if !demand.IsPositive() {
		return decimal.Zero
	}
	return allocated.Div(demand)
}
