package dataset

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadCase1XLSX parses the first sheet of a workbook holding the case 1
// columns. Rows whose first cell starts with '#' and blank rows are skipped,
// mirroring the CSV reader.
func ReadCase1XLSX(r io.Reader) (*Case1, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close() // nolint:errcheck

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}

	c := &Case1{}
	var header case1Header
	headerSeen := false
	for i, cells := range rows {
		cells = trimAll(cells)
		if skipRow(cells) {
			continue
		}
		if !headerSeen {
			header, err = parseCase1Header(cells)
			if err != nil {
				return nil, err
			}
			headerSeen = true
			continue
		}
		rec, err := header.record(i+1, cells)
		if err != nil {
			return nil, err
		}
		c.Records = append(c.Records, rec)
	}

	if len(c.Records) == 0 {
		return nil, fmt.Errorf("no data rows")
	}
	return c, nil
}

// case2Sheets pairs the expected sheet names with their table parsers, in
// workbook order for the index fallback.
var case2Sheets = []struct {
	name    string
	section case2Section
}{
	{TableTotalSupply, sectionSupply},
	{TableActualBuild, sectionBuild},
	{TableDemandForecast, sectionForecast},
	{TableCustomerDemand, sectionCustomer},
}

// ReadCase2XLSX parses a workbook with the four case 2 tables on sheets
// named total_supply, actual_build, demand_forecast, and customer_demand
// (case-insensitive), falling back to sheet index order when the names
// don't match. Each sheet carries the same header its CSV section would.
func ReadCase2XLSX(r io.Reader) (*Case2, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close() // nolint:errcheck

	sheets := f.GetSheetList()
	c := &Case2{}
	var missing []string
	for i, table := range case2Sheets {
		sheet := findSheet(sheets, table.name, i)
		if sheet == "" {
			missing = append(missing, table.name)
			continue
		}
		if err := c.readSheet(f, sheet, table.section, table.name); err != nil {
			return nil, err
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

func findSheet(sheets []string, name string, idx int) string {
	for _, s := range sheets {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return s
		}
	}
	if idx < len(sheets) {
		return sheets[idx]
	}
	return ""
}

func (c *Case2) readSheet(f *excelize.File, sheet string, section case2Section, table string) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	headerSeen := false
	for i, cells := range rows {
		cells = trimAll(cells)
		if skipRow(cells) {
			continue
		}
		if !headerSeen {
			s, weeks, ok := matchSectionHeader(cells)
			if !ok || s != section {
				return fmt.Errorf("sheet %s: row %d is not a %s header", sheet, i+1, table)
			}
			switch s {
			case sectionForecast:
				c.ForecastWeeks = weeks
			case sectionCustomer:
				c.DemandWeeks = weeks
			}
			headerSeen = true
			continue
		}
		if err := c.addRow(section, i+1, cells); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	if !headerSeen {
		return fmt.Errorf("sheet %s: missing %s header", sheet, table)
	}
	return nil
}

// skipRow reports comment rows and rows with no content.
func skipRow(cells []string) bool {
	if len(cells) == 0 {
		return true
	}
	if strings.HasPrefix(cells[0], "#") {
		return true
	}
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// WriteCase1XLSX writes the dataset as a single-sheet workbook.
func WriteCase1XLSX(w io.Writer, c *Case1) error {
	f := excelize.NewFile()
	defer f.Close() // nolint:errcheck

	const sheet = "historical_sales"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, toCells(case1OutputColumns())); err != nil {
		return err
	}
	for i, rec := range c.Records {
		row := []interface{}{rec.Week, rec.Product, rec.Region, rec.Sales, rec.Price, 0}
		if rec.NewTech {
			row[5] = 1
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// WriteCase2XLSX writes the four tables to their canonical sheets.
func WriteCase2XLSX(w io.Writer, c *Case2) error {
	f := excelize.NewFile()
	defer f.Close() // nolint:errcheck

	if err := f.SetSheetName(f.GetSheetName(0), TableTotalSupply); err != nil {
		return err
	}
	for _, name := range []string{TableActualBuild, TableDemandForecast, TableCustomerDemand} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	if err := setRow(f, TableTotalSupply, 1, []interface{}{"week", "total_supply"}); err != nil {
		return err
	}
	for i, r := range c.TotalSupply {
		if err := setRow(f, TableTotalSupply, i+2, []interface{}{r.Week, r.Supply.String()}); err != nil {
			return err
		}
	}

	if err := setRow(f, TableActualBuild, 1, []interface{}{"week", "product", "actual_build"}); err != nil {
		return err
	}
	for i, r := range c.ActualBuild {
		if err := setRow(f, TableActualBuild, i+2, []interface{}{r.Week, r.Product, r.Build.String()}); err != nil {
			return err
		}
	}

	if err := setRow(f, TableDemandForecast, 1, toCells(append([]string{"product"}, c.ForecastWeeks...))); err != nil {
		return err
	}
	for i, r := range c.DemandForecast {
		row := []interface{}{r.Product}
		for _, wk := range c.ForecastWeeks {
			row = append(row, wideCell(r.Demand, wk))
		}
		if err := setRow(f, TableDemandForecast, i+2, row); err != nil {
			return err
		}
	}

	if err := setRow(f, TableCustomerDemand, 1, toCells(append([]string{"product", "channel", "region"}, c.DemandWeeks...))); err != nil {
		return err
	}
	for i, r := range c.CustomerDemand {
		row := []interface{}{r.Product, r.Channel, r.Region}
		for _, wk := range c.DemandWeeks {
			row = append(row, wideCell(r.Demand, wk))
		}
		if err := setRow(f, TableCustomerDemand, i+2, row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
