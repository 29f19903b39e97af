package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/laiyunwu/casestudy12/internal/allocation"
)

// Case 2 table names, used in errors, XLSX sheet names, and overviews.
const (
	TableTotalSupply    = "total_supply"
	TableActualBuild    = "actual_build"
	TableDemandForecast = "demand_forecast"
	TableCustomerDemand = "customer_demand"
)

// SupplyRow is one week of total supply.
type SupplyRow struct {
	Week   string          `json:"week"`
	Supply decimal.Decimal `json:"supply"`
}

// BuildRow is one product's planned build for one week.
type BuildRow struct {
	Week    string          `json:"week"`
	Product string          `json:"product"`
	Build   decimal.Decimal `json:"build"`
}

// ForecastRow is one product's demand forecast across the week columns.
type ForecastRow struct {
	Product string                     `json:"product"`
	Demand  map[string]decimal.Decimal `json:"demand"`
}

// CustomerRow is one (product, channel, region) cell's demand across the
// week columns.
type CustomerRow struct {
	Product string                     `json:"product"`
	Channel string                     `json:"channel"`
	Region  string                     `json:"region"`
	Demand  map[string]decimal.Decimal `json:"demand"`
}

// Case2 is the supply allocation dataset: weekly total supply, the build
// plan, the product-level demand forecast, and customer demand by product,
// channel, and region. ForecastWeeks and DemandWeeks keep the wide tables'
// column order.
type Case2 struct {
	TotalSupply    []SupplyRow
	ActualBuild    []BuildRow
	DemandForecast []ForecastRow
	CustomerDemand []CustomerRow
	ForecastWeeks  []string
	DemandWeeks    []string
	Source         string
	Warnings       []string
}

type case2Section int

const (
	sectionNone case2Section = iota
	sectionSupply
	sectionBuild
	sectionForecast
	sectionCustomer
)

// ReadCase2CSV parses the sectioned case 2 format: four tables in one file,
// each introduced by its own header row. Tables are recognized by their
// fixed leading columns, case-insensitively:
//
//	week,total_supply
//	week,product,actual_build
//	product,<week columns...>
//	product,channel,region,<week columns...>
//
// Lines starting with '#' and blank lines are skipped. Unparseable demand
// values in the wide tables are skipped with a warning; bad numbers in the
// supply and build tables are errors.
func ReadCase2CSV(r io.Reader) (*Case2, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	c := &Case2{}
	section := sectionNone
	seen := make(map[case2Section]bool)

	for row := 1; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		cells := trimAll(record)

		if s, weeks, ok := matchSectionHeader(cells); ok {
			if seen[s] {
				return nil, fmt.Errorf("row %d: duplicate %s table", row, sectionName(s))
			}
			seen[s] = true
			section = s
			switch s {
			case sectionForecast:
				c.ForecastWeeks = weeks
			case sectionCustomer:
				c.DemandWeeks = weeks
			}
			continue
		}

		if section == sectionNone {
			return nil, fmt.Errorf("row %d: data before any table header", row)
		}
		if err := c.addRow(section, row, cells); err != nil {
			return nil, err
		}
	}

	var missing []string
	for s, name := range map[case2Section]string{
		sectionSupply:   TableTotalSupply,
		sectionBuild:    TableActualBuild,
		sectionForecast: TableDemandForecast,
		sectionCustomer: TableCustomerDemand,
	} {
		if !seen[s] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing tables: %s", strings.Join(missing, ", "))
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Case2) addRow(section case2Section, row int, cells []string) error {
	switch section {
	case sectionSupply:
		if len(cells) < 2 {
			return fmt.Errorf("row %d: total_supply row needs week and value", row)
		}
		supply, err := decimal.NewFromString(cells[1])
		if err != nil {
			return fmt.Errorf("row %d: invalid total_supply value %q", row, cells[1])
		}
		c.TotalSupply = append(c.TotalSupply, SupplyRow{Week: cells[0], Supply: supply})
	case sectionBuild:
		if len(cells) < 3 {
			return fmt.Errorf("row %d: actual_build row needs week, product, and value", row)
		}
		build, err := decimal.NewFromString(cells[2])
		if err != nil {
			return fmt.Errorf("row %d: invalid actual_build value %q", row, cells[2])
		}
		c.ActualBuild = append(c.ActualBuild, BuildRow{Week: cells[0], Product: cells[1], Build: build})
	case sectionForecast:
		if len(cells) < 1 || cells[0] == "" {
			return fmt.Errorf("row %d: demand_forecast row needs a product", row)
		}
		fr := ForecastRow{Product: cells[0], Demand: make(map[string]decimal.Decimal)}
		c.readWideCells(row, cells, 1, c.ForecastWeeks, fr.Demand, fr.Product)
		c.DemandForecast = append(c.DemandForecast, fr)
	case sectionCustomer:
		if len(cells) < 3 {
			return fmt.Errorf("row %d: customer_demand row needs product, channel, and region", row)
		}
		cu := CustomerRow{Product: cells[0], Channel: cells[1], Region: cells[2], Demand: make(map[string]decimal.Decimal)}
		c.readWideCells(row, cells, 3, c.DemandWeeks, cu.Demand, strings.Join(cells[:3], "/"))
		c.CustomerDemand = append(c.CustomerDemand, cu)
	}
	return nil
}

// readWideCells fills a wide-table row's demand map, skipping blank cells
// and recording a warning for unparseable ones.
func (c *Case2) readWideCells(row int, cells []string, offset int, weeks []string, dest map[string]decimal.Decimal, label string) {
	for j, week := range weeks {
		i := offset + j
		if i >= len(cells) || cells[i] == "" {
			continue
		}
		v, err := decimal.NewFromString(cells[i])
		if err != nil {
			c.Warnings = append(c.Warnings,
				fmt.Sprintf("row %d: skipped value %q for %s %s", row, cells[i], label, week))
			continue
		}
		dest[week] = v
	}
}

func (c *Case2) validate() error {
	var empty []string
	if len(c.TotalSupply) == 0 {
		empty = append(empty, TableTotalSupply)
	}
	if len(c.ActualBuild) == 0 {
		empty = append(empty, TableActualBuild)
	}
	if len(c.DemandForecast) == 0 {
		empty = append(empty, TableDemandForecast)
	}
	if len(c.CustomerDemand) == 0 {
		empty = append(empty, TableCustomerDemand)
	}
	if len(empty) > 0 {
		return fmt.Errorf("empty tables: %s", strings.Join(empty, ", "))
	}
	return nil
}

func matchSectionHeader(cells []string) (case2Section, []string, bool) {
	lower := make([]string, len(cells))
	for i, c := range cells {
		lower[i] = strings.ToLower(c)
	}
	switch {
	case len(lower) >= 2 && lower[0] == "week" && lower[1] == "total_supply":
		return sectionSupply, nil, true
	case len(lower) >= 3 && lower[0] == "week" && lower[1] == "product" && lower[2] == "actual_build":
		return sectionBuild, nil, true
	case len(lower) >= 4 && lower[0] == "product" && lower[1] == "channel" && lower[2] == "region":
		return sectionCustomer, cells[3:], true
	case len(lower) >= 2 && lower[0] == "product":
		return sectionForecast, cells[1:], true
	}
	return sectionNone, nil, false
}

func sectionName(s case2Section) string {
	switch s {
	case sectionSupply:
		return TableTotalSupply
	case sectionBuild:
		return TableActualBuild
	case sectionForecast:
		return TableDemandForecast
	case sectionCustomer:
		return TableCustomerDemand
	default:
		return "unknown"
	}
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// WriteCase2CSV emits the canonical sectioned file.
func WriteCase2CSV(w io.Writer, c *Case2) error {
	cw := csv.NewWriter(w)

	writeSection := func(comment string, header []string, rows [][]string) error {
		if _, err := fmt.Fprintln(w, comment); err != nil {
			return err
		}
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, row := range rows {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}

	supplyRows := make([][]string, 0, len(c.TotalSupply))
	for _, r := range c.TotalSupply {
		supplyRows = append(supplyRows, []string{r.Week, r.Supply.String()})
	}
	if err := writeSection("# table 1: weekly total supply",
		[]string{"week", "total_supply"}, supplyRows); err != nil {
		return err
	}

	buildRows := make([][]string, 0, len(c.ActualBuild))
	for _, r := range c.ActualBuild {
		buildRows = append(buildRows, []string{r.Week, r.Product, r.Build.String()})
	}
	if err := writeSection("# table 2: actual build plan",
		[]string{"week", "product", "actual_build"}, buildRows); err != nil {
		return err
	}

	forecastRows := make([][]string, 0, len(c.DemandForecast))
	for _, r := range c.DemandForecast {
		row := []string{r.Product}
		for _, wk := range c.ForecastWeeks {
			row = append(row, wideCell(r.Demand, wk))
		}
		forecastRows = append(forecastRows, row)
	}
	if err := writeSection("# table 3: demand forecast by product",
		append([]string{"product"}, c.ForecastWeeks...), forecastRows); err != nil {
		return err
	}

	customerRows := make([][]string, 0, len(c.CustomerDemand))
	for _, r := range c.CustomerDemand {
		row := []string{r.Product, r.Channel, r.Region}
		for _, wk := range c.DemandWeeks {
			row = append(row, wideCell(r.Demand, wk))
		}
		customerRows = append(customerRows, row)
	}
	return writeSection("# table 4: customer demand by product, channel, and region",
		append([]string{"product", "channel", "region"}, c.DemandWeeks...), customerRows)
}

func wideCell(demand map[string]decimal.Decimal, week string) string {
	v, ok := demand[week]
	if !ok {
		return ""
	}
	return v.String()
}

// AllocationTables shapes the dataset for the optimizer.
func (c *Case2) AllocationTables() allocation.Tables {
	buildProducts := make([]string, 0)
	seen := make(map[string]struct{})
	for _, r := range c.ActualBuild {
		if _, ok := seen[r.Product]; ok {
			continue
		}
		seen[r.Product] = struct{}{}
		buildProducts = append(buildProducts, r.Product)
	}

	rows := make([]allocation.DemandRow, 0, len(c.CustomerDemand))
	for _, r := range c.CustomerDemand {
		rows = append(rows, allocation.DemandRow{
			Product: r.Product,
			Channel: r.Channel,
			Region:  r.Region,
			Demand:  r.Demand,
		})
	}

	return allocation.Tables{
		Supply:        c.SupplyByWeek(),
		BuildProducts: buildProducts,
		Weeks:         c.DemandWeeks,
		Demand:        rows,
	}
}

// SupplyByWeek returns total supply keyed by week label.
func (c *Case2) SupplyByWeek() map[string]decimal.Decimal {
	supply := make(map[string]decimal.Decimal, len(c.TotalSupply))
	for _, r := range c.TotalSupply {
		supply[r.Week] = supply[r.Week].Add(r.Supply)
	}
	return supply
}

// DemandByWeek returns customer demand summed per week label, the demand
// side of the gap analysis.
func (c *Case2) DemandByWeek() map[string]decimal.Decimal {
	demand := make(map[string]decimal.Decimal)
	for _, r := range c.CustomerDemand {
		for week, v := range r.Demand {
			demand[week] = demand[week].Add(v)
		}
	}
	return demand
}

// Products returns the distinct products across the build plan and customer
// demand, sorted.
func (c *Case2) Products() []string {
	set := make(map[string]struct{})
	for _, r := range c.ActualBuild {
		set[r.Product] = struct{}{}
	}
	for _, r := range c.CustomerDemand {
		set[r.Product] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Channels returns the distinct customer demand channels, sorted.
func (c *Case2) Channels() []string {
	set := make(map[string]struct{})
	for _, r := range c.CustomerDemand {
		set[r.Channel] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Regions returns the distinct customer demand regions, sorted.
func (c *Case2) Regions() []string {
	set := make(map[string]struct{})
	for _, r := range c.CustomerDemand {
		set[r.Region] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
