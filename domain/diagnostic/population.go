package diagnostic

import (
	"sort"

	"dxsim/domain/core"
)

// MinPopulationSize is the population floor; a valid size must exceed it.
const MinPopulationSize = 30

// PopulationConfig describes the synthetic population to generate.
type PopulationConfig struct {
	Size       int                `json:"size" yaml:"size"`
	Conditions map[string]float64 `json:"conditions" yaml:"conditions"`
}

// ConditionNames returns the configured condition names in sorted order.
func (c PopulationConfig) ConditionNames() []string {
	return sortedKeys(c.Conditions)
}

// Clone returns a deep copy so later edits by the caller cannot leak into a run.
func (c PopulationConfig) Clone() PopulationConfig {
	conditions := make(map[string]float64, len(c.Conditions))
	for k, v := range c.Conditions {
		conditions[k] = v
	}
	return PopulationConfig{Size: c.Size, Conditions: conditions}
}

// Population is a table of Size rows with one boolean column per condition.
// It is read-only once built.
type Population struct {
	size    int
	names   []string
	columns map[string][]bool
}

// NewPopulation takes ownership of columns; every column must hold size rows.
func NewPopulation(size int, columns map[string][]bool) (*Population, error) {
	if len(columns) == 0 {
		return nil, core.NewValidationError("columns", "population needs at least one condition column")
	}
	for name, col := range columns {
		if len(col) != size {
			return nil, core.NewValidationError(name, "column length does not match population size")
		}
	}
	return &Population{
		size:    size,
		names:   sortedKeys(columns),
		columns: columns,
	}, nil
}

// Size returns the row count.
func (p *Population) Size() int {
	return p.size
}

// Conditions returns the column names in sorted order.
func (p *Population) Conditions() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Has reports whether the population carries a column for condition.
func (p *Population) Has(condition string) bool {
	_, ok := p.columns[condition]
	return ok
}

// Column returns a copy of the column for condition.
func (p *Population) Column(condition string) ([]bool, bool) {
	col, ok := p.columns[condition]
	if !ok {
		return nil, false
	}
	out := make([]bool, len(col))
	copy(out, col)
	return out, true
}

// CountTrue returns how many individuals carry condition.
func (p *Population) CountTrue(condition string) int {
	n := 0
	for _, v := range p.columns[condition] {
		if v {
			n++
		}
	}
	return n
}

// ObservedPrevalence returns the sampled fraction of positives per condition.
func (p *Population) ObservedPrevalence() map[string]float64 {
	out := make(map[string]float64, len(p.names))
	for _, name := range p.names {
		if p.size == 0 {
			out[name] = 0
			continue
		}
		out[name] = float64(p.CountTrue(name)) / float64(p.size)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
