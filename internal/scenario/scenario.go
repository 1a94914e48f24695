package scenario

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownScenario is returned when a scenario name is not in the catalog.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario defines a named contact population made of one or more groups.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Groups      []Group `yaml:"groups"`
}

// Group draws contacts uniformly from Classifications. Count fixes the group
// size; otherwise the size is drawn uniformly from [Min, Max].
type Group struct {
	Classifications []string `yaml:"classifications"`
	Count           int      `yaml:"count,omitempty"`
	Min             int      `yaml:"min,omitempty"`
	Max             int      `yaml:"max,omitempty"`
}

// Size returns the number of contacts the group produces for one draw.
func (g Group) Size(r *rand.Rand) int {
	if g.Count > 0 {
		return g.Count
	}
	if g.Max <= g.Min {
		return g.Min
	}
	return g.Min + r.Intn(g.Max-g.Min+1)
}

// Pick returns one classification key from the group.
func (g Group) Pick(r *rand.Rand) string {
	return g.Classifications[r.Intn(len(g.Classifications))]
}

// Validate checks that the scenario can be generated.
func (s Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("scenario name required")
	}
	if len(s.Groups) == 0 {
		return fmt.Errorf("scenario %s: at least one group required", s.Name)
	}
	for i, g := range s.Groups {
		if len(g.Classifications) == 0 {
			return fmt.Errorf("scenario %s group %d: no classifications", s.Name, i)
		}
		if g.Count < 0 || g.Min < 0 || g.Max < 0 {
			return fmt.Errorf("scenario %s group %d: negative size", s.Name, i)
		}
		if g.Count == 0 && g.Max < g.Min {
			return fmt.Errorf("scenario %s group %d: max %d below min %d", s.Name, i, g.Max, g.Min)
		}
	}
	return nil
}

// Catalog holds scenarios keyed by lower-case name.
type Catalog struct {
	scenarios map[string]Scenario
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{scenarios: make(map[string]Scenario)}
}

// Add validates and registers a scenario, replacing any with the same name.
func (c *Catalog) Add(s Scenario) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.scenarios[strings.ToLower(s.Name)] = s
	return nil
}

// Lookup returns the named scenario.
func (c *Catalog) Lookup(name string) (Scenario, error) {
	s, ok := c.scenarios[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return s, nil
}

// Names lists the registered scenario names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.scenarios))
	for _, s := range c.scenarios {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

type file struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Load reads scenario definitions from a YAML file.
func Load(path string) ([]Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	for _, s := range f.Scenarios {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Scenarios, nil
}

// LoadInto reads a YAML file and adds every scenario to the catalog.
func (c *Catalog) LoadInto(path string) error {
	scenarios, err := Load(path)
	if err != nil {
		return err
	}
	for _, s := range scenarios {
		if err := c.Add(s); err != nil {
			return err
		}
	}
	return nil
}
