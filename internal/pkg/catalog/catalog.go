// Package catalog holds the fixed vocabulary of the dashboard: English regions, the
// index columns of each published dataset and the decile colour palettes.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/ougirez/iodmap/internal/domain"
)

//go:embed catalog.yaml
var raw []byte

type Catalog struct {
	Regions  []string                              `yaml:"regions"`
	Domains  map[domain.IndexDomain][]domain.Index `yaml:"domains"`
	Palettes []domain.Palette                      `yaml:"palettes"`

	byID   map[domain.IndexDomain]map[domain.IndexID]domain.Index
	byName map[domain.IndexDomain]map[string]domain.Index
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalogue.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(raw)
	})
	return defaultCat, defaultErr
}

// MustDefault is Default for package initialisation and tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	c := new(Catalog)
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %w", err)
	}
	if len(c.Regions) == 0 {
		return nil, fmt.Errorf("catalog has no regions")
	}

	c.byID = make(map[domain.IndexDomain]map[domain.IndexID]domain.Index, len(c.Domains))
	c.byName = make(map[domain.IndexDomain]map[string]domain.Index, len(c.Domains))
	for d, indices := range c.Domains {
		if len(indices) == 0 {
			return nil, fmt.Errorf("domain %s has no indices", d)
		}
		c.byID[d] = make(map[domain.IndexID]domain.Index, len(indices))
		c.byName[d] = make(map[string]domain.Index, len(indices))
		for _, idx := range indices {
			if _, dup := c.byID[d][idx.ID]; dup {
				return nil, fmt.Errorf("domain %s: duplicate index id %s", d, idx.ID)
			}
			c.byID[d][idx.ID] = idx
			c.byName[d][idx.Name] = idx
		}
	}

	for _, p := range c.Palettes {
		if len(p.Colors) != domain.MaxDecile {
			return nil, fmt.Errorf("palette %s: want %d colours, got %d", p.Name, domain.MaxDecile, len(p.Colors))
		}
	}
	return c, nil
}

func (c *Catalog) Indices(d domain.IndexDomain) []domain.Index {
	return c.Domains[d]
}

func (c *Catalog) IndexByID(d domain.IndexDomain, id domain.IndexID) (domain.Index, bool) {
	idx, ok := c.byID[d][id]
	return idx, ok
}

func (c *Catalog) IndexByName(d domain.IndexDomain, name string) (domain.Index, bool) {
	idx, ok := c.byName[d][name]
	return idx, ok
}

// IndicesByName resolves display names, silently skipping unknown ones.
func (c *Catalog) IndicesByName(d domain.IndexDomain, names []string) []domain.Index {
	out := make([]domain.Index, 0, len(names))
	for _, n := range names {
		if idx, ok := c.byName[d][n]; ok {
			out = append(out, idx)
		}
	}
	return out
}

func (c *Catalog) Palette(name string) (domain.Palette, bool) {
	for _, p := range c.Palettes {
		if p.Name == name {
			return p, true
		}
	}
	return domain.Palette{}, false
}

func (c *Catalog) PaletteNames() []string {
	out := make([]string, 0, len(c.Palettes))
	for _, p := range c.Palettes {
		out = append(out, p.Name)
	}
	return out
}

// Rules builds the selection universe from the catalogue.
func (c *Catalog) Rules(comparisonMax int) *domain.SelectionRules {
	return &domain.SelectionRules{
		Regions:       append([]string(nil), c.Regions...),
		Indices:       c.Domains,
		Palettes:      c.PaletteNames(),
		ComparisonMax: comparisonMax,
	}
}
