package scenarios

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/laiyunwu/casestudy12/internal/allocation"
	"github.com/laiyunwu/casestudy12/internal/forecast"
)

//go:embed *.yaml
var presets embed.FS

// ErrUnknownScenario is wrapped by Load for names with no preset.
var ErrUnknownScenario = errors.New("unknown scenario")

// ForecastOverrides patches the default forecast parameters. Nil fields
// keep the defaults.
type ForecastOverrides struct {
	TargetPrice   *float64 `yaml:"target_price" json:"targetPrice,omitempty"`
	BatteryImpact *float64 `yaml:"battery_impact" json:"batteryImpact,omitempty"`
	LaunchWeeks   *int     `yaml:"launch_weeks" json:"launchWeeks,omitempty"`
	HorizonWeeks  *int     `yaml:"horizon_weeks" json:"horizonWeeks,omitempty"`

	// LaunchUplift applies to every region.
	LaunchUplift *float64 `yaml:"launch_uplift" json:"launchUplift,omitempty"`
}

// Apply overlays the overrides on a parameter set.
func (o ForecastOverrides) Apply(p forecast.Params) forecast.Params {
	if o.TargetPrice != nil {
		p.TargetPrice = *o.TargetPrice
	}
	if o.BatteryImpact != nil {
		p.BatteryImpact = *o.BatteryImpact
	}
	if o.LaunchWeeks != nil {
		p.LaunchWeeks = *o.LaunchWeeks
	}
	if o.HorizonWeeks != nil {
		p.HorizonWeeks = *o.HorizonWeeks
	}
	if o.LaunchUplift != nil {
		regions := make(map[string]forecast.RegionParams, len(p.Regions))
		for name, rp := range p.Regions {
			rp.LaunchUplift = *o.LaunchUplift
			regions[name] = rp
		}
		p.Regions = regions
	}
	return p
}

// ConstraintSpec is a YAML-friendly minimum-satisfaction constraint. Empty
// fields are wildcards, resolved against the allocation input when the
// scenario runs.
type ConstraintSpec struct {
	Product string  `yaml:"product" json:"product,omitempty"`
	Channel string  `yaml:"channel" json:"channel,omitempty"`
	Region  string  `yaml:"region" json:"region,omitempty"`
	Week    string  `yaml:"week" json:"week,omitempty"`
	MinRate float64 `yaml:"min_rate" json:"minRate"`
}

// AllocationOverrides patches priorities, adds constraints, and optionally
// scales the supply.
type AllocationOverrides struct {
	ProductPriorities map[string]int   `yaml:"product_priorities" json:"productPriorities,omitempty"`
	ChannelPriorities map[string]int   `yaml:"channel_priorities" json:"channelPriorities,omitempty"`
	RegionPriorities  map[string]int   `yaml:"region_priorities" json:"regionPriorities,omitempty"`
	Constraints       []ConstraintSpec `yaml:"constraints" json:"constraints,omitempty"`
	SupplyScale       *float64         `yaml:"supply_scale" json:"supplyScale,omitempty"`
}

// Apply overlays the scenario's priorities on the defaults.
func (o AllocationOverrides) Apply(base allocation.Priorities) allocation.Priorities {
	return allocation.Priorities{
		Product: overlay(base.Product, o.ProductPriorities),
		Channel: overlay(base.Channel, o.ChannelPriorities),
		Region:  overlay(base.Region, o.RegionPriorities),
	}
}

func overlay(base, patch map[string]int) map[string]int {
	out := make(map[string]int, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// ScaleSupply returns the supply scaled by the scenario's factor, or the
// input untouched when no factor is set.
func (o AllocationOverrides) ScaleSupply(supply map[string]decimal.Decimal) map[string]decimal.Decimal {
	if o.SupplyScale == nil {
		return supply
	}
	scale := decimal.NewFromFloat(*o.SupplyScale)
	out := make(map[string]decimal.Decimal, len(supply))
	for week, v := range supply {
		out[week] = v.Mul(scale)
	}
	return out
}

// Scenario is one embedded preset: named forecast and allocation overrides
// applied on top of the defaults.
type Scenario struct {
	Name        string              `yaml:"name" json:"name"`
	Description string              `yaml:"description" json:"description"`
	Forecast    ForecastOverrides   `yaml:"forecast" json:"forecast"`
	Allocation  AllocationOverrides `yaml:"allocation" json:"allocation"`
}

var (
	loadOnce sync.Once
	byName   map[string]Scenario
	loadErr  error
)

func loadAll() (map[string]Scenario, error) {
	loadOnce.Do(func() {
		byName = make(map[string]Scenario)
		entries, err := presets.ReadDir(".")
		if err != nil {
			loadErr = err
			return
		}
		for _, e := range entries {
			data, err := presets.ReadFile(e.Name())
			if err != nil {
				loadErr = err
				return
			}
			var s Scenario
			if err := yaml.Unmarshal(data, &s); err != nil {
				loadErr = fmt.Errorf("parsing %s: %w", e.Name(), err)
				return
			}
			if s.Name == "" {
				s.Name = strings.TrimSuffix(e.Name(), ".yaml")
			}
			byName[s.Name] = s
		}
	})
	return byName, loadErr
}

// Names returns the embedded scenario names, sorted.
func Names() ([]string, error) {
	all, err := loadAll()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// List returns every embedded scenario, sorted by name.
func List() ([]Scenario, error) {
	all, err := loadAll()
	if err != nil {
		return nil, err
	}
	names, err := Names()
	if err != nil {
		return nil, err
	}
	out := make([]Scenario, 0, len(names))
	for _, name := range names {
		out = append(out, all[name])
	}
	return out, nil
}

// Load returns the named scenario. Unknown names get an error listing what
// is available.
func Load(name string) (Scenario, error) {
	all, err := loadAll()
	if err != nil {
		return Scenario{}, err
	}
	s, ok := all[name]
	if !ok {
		names, _ := Names()
		return Scenario{}, fmt.Errorf("%w: %q (available: %s)",
			ErrUnknownScenario, name, strings.Join(names, ", "))
	}
	return s, nil
}
