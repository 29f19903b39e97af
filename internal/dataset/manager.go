package dataset

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/laiyunwu/casestudy12/internal/logging"
	"github.com/laiyunwu/casestudy12/internal/models"
)

const previewRows = 5

// Manager owns the datasets the server works from. It starts with the
// generated datasets so callers always see data, and swaps in uploaded or
// on-disk files atomically.
type Manager struct {
	logger *slog.Logger

	mu    sync.RWMutex
	case1 *Case1
	case2 *Case2
}

func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger: logger,
		case1:  MockCase1(),
		case2:  MockCase2(),
	}
}

// ParseCase1 reads r in the format implied by name's extension (.xlsx or
// CSV) and stamps the result with name as its source.
func ParseCase1(name string, r io.Reader) (*Case1, error) {
	var (
		c   *Case1
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		c, err = ReadCase1XLSX(r)
	default:
		c, err = ReadCase1CSV(r)
	}
	if err != nil {
		return nil, err
	}
	c.Source = name
	return c, nil
}

// ParseCase2 is the case 2 counterpart of ParseCase1.
func ParseCase2(name string, r io.Reader) (*Case2, error) {
	var (
		c   *Case2
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		c, err = ReadCase2XLSX(r)
	default:
		c, err = ReadCase2CSV(r)
	}
	if err != nil {
		return nil, err
	}
	c.Source = name
	return c, nil
}

// LoadCase1 reads the sales history at path. An empty path or a file that
// cannot be read keeps the generated dataset, so the server always has
// case 1 data after this returns.
func (manager *Manager) LoadCase1(path string) {
	c := manager.readCase1(path)
	manager.logWarnings("case1", c.Warnings)
	logging.LogOperation(manager.logger, "case 1 dataset loaded",
		slog.String("source", c.Source),
		slog.Int("rows", len(c.Records)))
	manager.SwapCase1(c)
}

// LoadCase2 mirrors LoadCase1 for the supply dataset.
func (manager *Manager) LoadCase2(path string) {
	c := manager.readCase2(path)
	manager.logWarnings("case2", c.Warnings)
	logging.LogOperation(manager.logger, "case 2 dataset loaded",
		slog.String("source", c.Source),
		slog.Int("supplyRows", len(c.TotalSupply)),
		slog.Int("demandRows", len(c.CustomerDemand)))
	manager.SwapCase2(c)
}

func (manager *Manager) readCase1(path string) *Case1 {
	if path == "" {
		return MockCase1()
	}
	f, err := os.Open(path)
	if err != nil {
		logging.LogError(manager.logger, "case 1 dataset unavailable, using generated data", err,
			slog.String("path", path))
		return MockCase1()
	}
	defer logging.SafeCloseWithLogging(f, manager.logger, "case1_dataset_file")

	c, err := ParseCase1(path, f)
	if err != nil {
		logging.LogError(manager.logger, "case 1 dataset invalid, using generated data", err,
			slog.String("path", path))
		return MockCase1()
	}
	return c
}

func (manager *Manager) readCase2(path string) *Case2 {
	if path == "" {
		return MockCase2()
	}
	f, err := os.Open(path)
	if err != nil {
		logging.LogError(manager.logger, "case 2 dataset unavailable, using generated data", err,
			slog.String("path", path))
		return MockCase2()
	}
	defer logging.SafeCloseWithLogging(f, manager.logger, "case2_dataset_file")

	c, err := ParseCase2(path, f)
	if err != nil {
		logging.LogError(manager.logger, "case 2 dataset invalid, using generated data", err,
			slog.String("path", path))
		return MockCase2()
	}
	return c
}

func (manager *Manager) logWarnings(kind string, warnings []string) {
	if manager.logger == nil {
		return
	}
	for _, w := range warnings {
		manager.logger.Warn("dataset warning",
			slog.String("dataset", kind),
			slog.String("warning", w))
	}
}

// SwapCase1 replaces the current sales history.
func (manager *Manager) SwapCase1(c *Case1) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	manager.case1 = c
}

// SwapCase2 replaces the current supply dataset.
func (manager *Manager) SwapCase2(c *Case2) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	manager.case2 = c
}

// Case1 returns the current sales history. The returned dataset is shared;
// callers must treat it as read-only.
func (manager *Manager) Case1() *Case1 {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.case1
}

// Case2 returns the current supply dataset, read-only for callers.
func (manager *Manager) Case2() *Case2 {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.case2
}

// Case1Overview summarizes the sales history for the dashboard and MCP
// clients.
type Case1Overview struct {
	Source   string               `json:"source"`
	Rows     int                  `json:"rows"`
	Products []string             `json:"products"`
	Regions  []string             `json:"regions"`
	Weeks    []string             `json:"weeks"`
	Preview  []models.SalesRecord `json:"preview"`
	Warnings []string             `json:"warnings,omitempty"`
}

// Case2Overview summarizes the supply dataset.
type Case2Overview struct {
	Source        string         `json:"source"`
	TableRows     map[string]int `json:"tableRows"`
	Products      []string       `json:"products"`
	Channels      []string       `json:"channels"`
	Regions       []string       `json:"regions"`
	SupplyWeeks   []string       `json:"supplyWeeks"`
	ForecastWeeks []string       `json:"forecastWeeks"`
	DemandWeeks   []string       `json:"demandWeeks"`
	Warnings      []string       `json:"warnings,omitempty"`
}

func (manager *Manager) Case1Overview() Case1Overview {
	c := manager.Case1()
	preview := c.Records
	if len(preview) > previewRows {
		preview = preview[:previewRows]
	}
	return Case1Overview{
		Source:   c.Source,
		Rows:     len(c.Records),
		Products: c.Products(),
		Regions:  c.Regions(),
		Weeks:    c.Weeks(),
		Preview:  preview,
		Warnings: c.Warnings,
	}
}

func (manager *Manager) Case2Overview() Case2Overview {
	c := manager.Case2()
	supplyWeeks := make([]string, 0, len(c.TotalSupply))
	for _, row := range c.TotalSupply {
		supplyWeeks = append(supplyWeeks, row.Week)
	}
	return Case2Overview{
		Source: c.Source,
		TableRows: map[string]int{
			TableTotalSupply:    len(c.TotalSupply),
			TableActualBuild:    len(c.ActualBuild),
			TableDemandForecast: len(c.DemandForecast),
			TableCustomerDemand: len(c.CustomerDemand),
		},
		Products:      c.Products(),
		Channels:      c.Channels(),
		Regions:       c.Regions(),
		SupplyWeeks:   supplyWeeks,
		ForecastWeeks: c.ForecastWeeks,
		DemandWeeks:   c.DemandWeeks,
		Warnings:      c.Warnings,
	}
}
