package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/laiyunwu/casestudy12/internal/forecast"
	"github.com/laiyunwu/casestudy12/internal/models"
)

// SourceMock marks a dataset produced by the built-in generators.
const SourceMock = "mock"

// Case1 is the historical weekly sales dataset behind the forecast engine.
type Case1 struct {
	Records  []models.SalesRecord
	Source   string
	Warnings []string
}

// case1Columns are required in the header; new_tech is optional.
var case1Columns = []string{"date", "product", "region", "sales", "price"}

// case1Header maps the dataset's column positions, located
// case-insensitively so hand-edited files keep working.
type case1Header struct {
	index   map[string]int
	newTech int
}

func parseCase1Header(cells []string) (case1Header, error) {
	h := case1Header{index: make(map[string]int, len(cells)), newTech: -1}
	for i, col := range cells {
		h.index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	var missing []string
	for _, col := range case1Columns {
		if _, ok := h.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return h, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	if i, ok := h.index["new_tech"]; ok {
		h.newTech = i
	}
	return h, nil
}

func (h case1Header) record(row int, cells []string) (models.SalesRecord, error) {
	cell := func(i int) string {
		if i >= 0 && i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	sales, err := strconv.ParseFloat(cell(h.index["sales"]), 64)
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("row %d: invalid sales value %q", row, cell(h.index["sales"]))
	}
	price, err := strconv.ParseFloat(cell(h.index["price"]), 64)
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("row %d: invalid price value %q", row, cell(h.index["price"]))
	}
	newTech := false
	if h.newTech >= 0 {
		newTech, err = parseFlag(cell(h.newTech))
		if err != nil {
			return models.SalesRecord{}, fmt.Errorf("row %d: invalid new_tech value %q", row, cell(h.newTech))
		}
	}

	return models.SalesRecord{
		Week:    cell(h.index["date"]),
		Product: cell(h.index["product"]),
		Region:  cell(h.index["region"]),
		Sales:   sales,
		Price:   price,
		NewTech: newTech,
	}, nil
}

// ReadCase1CSV parses the case 1 format: a header with at least the
// date/product/region/sales/price columns (any order, case-insensitive),
// then one row per product, region, and week. Lines starting with '#' and
// blank lines are skipped.
func ReadCase1CSV(r io.Reader) (*Case1, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	headerCells, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	header, err := parseCase1Header(headerCells)
	if err != nil {
		return nil, err
	}

	c := &Case1{}
	for row := 2; ; row++ {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		rec, err := header.record(row, cells)
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

// parseFlag reads 0/1 new_tech markers, tolerating booleans and an empty
// cell.
func parseFlag(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "", "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, fmt.Errorf("not a flag: %q", v)
	}
}

// WriteCase1CSV emits the canonical case 1 file.
func WriteCase1CSV(w io.Writer, c *Case1) error {
	if _, err := fmt.Fprintln(w, "# historical weekly sales by product and region"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(case1OutputColumns()); err != nil {
		return err
	}
	for _, rec := range c.Records {
		if err := cw.Write(case1OutputRow(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func case1OutputColumns() []string {
	return []string{"date", "product", "region", "sales", "price", "new_tech"}
}

func case1OutputRow(rec models.SalesRecord) []string {
	flag := "0"
	if rec.NewTech {
		flag = "1"
	}
	return []string{
		rec.Week,
		rec.Product,
		rec.Region,
		strconv.FormatFloat(rec.Sales, 'f', -1, 64),
		strconv.FormatFloat(rec.Price, 'f', -1, 64),
		flag,
	}
}

// Products returns the distinct product names, sorted.
func (c *Case1) Products() []string {
	return distinct(c.Records, func(r models.SalesRecord) string { return r.Product })
}

// Regions returns the distinct region names, sorted.
func (c *Case1) Regions() []string {
	return distinct(c.Records, func(r models.SalesRecord) string { return r.Region })
}

// Weeks returns the distinct week labels in chronological label order.
func (c *Case1) Weeks() []string {
	weeks := distinct(c.Records, func(r models.SalesRecord) string { return r.Week })
	forecast.SortWeekLabels(weeks)
	return weeks
}

func distinct(records []models.SalesRecord, key func(models.SalesRecord) string) []string {
	set := make(map[string]struct{})
	for _, r := range records {
		set[key(r)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
