package domain

import (
	"fmt"
	"sort"

	"github.com/ougirez/iodmap/internal/pkg/constants"
)

// SelectionRules is the universe of values a Selection may take.
type SelectionRules struct {
	Regions       []string
	Indices       map[IndexDomain][]Index
	Palettes      []string
	ComparisonMax int
}

func (r *SelectionRules) indexNames(d IndexDomain) []string {
	out := make([]string, 0, len(r.Indices[d]))
	for _, idx := range r.Indices[d] {
		out = append(out, idx.Name)
	}
	return out
}

// Selection is the per-session state of the dashboard controls. It is only mutated
// through its setters; every setter keeps ActiveRegion within Regions and ActiveIndex
// within Indices.
type Selection struct {
	Regions              []string `json:"regions"`
	Indices              []string `json:"indices"`
	Palette              string   `json:"palette"`
	ActiveRegion         string   `json:"active_region"`
	ActiveIndex          string   `json:"active_index"`
	ActiveArea           string   `json:"active_area"`
	ActiveLocalAuthority string   `json:"active_local_authority"`
	Comparison           []string `json:"comparison"`
	WelshRegion          string   `json:"welsh_region"`
	WelshLocalAuthority  string   `json:"welsh_local_authority"`
	WelshIndex           string   `json:"welsh_index"`
	CombinedIndex        string   `json:"combined_index"`
	Highlighted          []string `json:"highlighted"`

	rules *SelectionRules
}

// NewSelection returns the defaults of a fresh session: every region, every English
// index and the first palette.
func NewSelection(rules *SelectionRules) *Selection {
	s := &Selection{rules: rules}
	s.Regions = append([]string(nil), rules.Regions...)
	s.Indices = rules.indexNames(DomainEnglish)
	if len(rules.Palettes) > 0 {
		s.Palette = rules.Palettes[0]
	}
	s.ActiveRegion = firstSorted(s.Regions)
	if len(s.Indices) > 0 {
		s.ActiveIndex = s.Indices[0]
	}
	if welsh := rules.indexNames(DomainWelsh); len(welsh) > 0 {
		s.WelshIndex = welsh[0]
	}
	if combined := rules.indexNames(DomainCombined); len(combined) > 0 {
		s.CombinedIndex = combined[0]
	}
	return s
}

func (s *Selection) Clone() *Selection {
	c := *s
	c.Regions = append([]string(nil), s.Regions...)
	c.Indices = append([]string(nil), s.Indices...)
	c.Comparison = append([]string(nil), s.Comparison...)
	c.Highlighted = append([]string(nil), s.Highlighted...)
	return &c
}

// SetRegions replaces the region filter. Unknown names are rejected, an empty set is
// allowed and empties every downstream view.
func (s *Selection) SetRegions(regions []string) error {
	next, err := canonical(regions, s.rules.Regions, "region")
	if err != nil {
		return err
	}
	s.Regions = next
	if !contains(s.Regions, s.ActiveRegion) {
		s.setActiveRegion(firstSorted(s.Regions))
	}
	return nil
}

// SetIndices replaces the English index filter.
func (s *Selection) SetIndices(indices []string) error {
	next, err := canonical(indices, s.rules.indexNames(DomainEnglish), "index")
	if err != nil {
		return err
	}
	s.Indices = next
	if !contains(s.Indices, s.ActiveIndex) {
		s.ActiveIndex = ""
		if len(s.Indices) > 0 {
			s.ActiveIndex = s.Indices[0]
		}
	}
	return nil
}

func (s *Selection) SetActiveRegion(region string) error {
	if !contains(s.Regions, region) {
		return fmt.Errorf("%w: region %q is not in the region filter", constants.ErrInvalidSelection, region)
	}
	s.setActiveRegion(region)
	return nil
}

// setActiveRegion drops the area choices that belonged to the previous region.
func (s *Selection) setActiveRegion(region string) {
	if region == s.ActiveRegion {
		return
	}
	s.ActiveRegion = region
	s.ActiveLocalAuthority = ""
	s.ActiveArea = ""
}

func (s *Selection) SetActiveIndex(index string) error {
	if !contains(s.Indices, index) {
		return fmt.Errorf("%w: index %q is not in the index filter", constants.ErrInvalidSelection, index)
	}
	s.ActiveIndex = index
	return nil
}

// SetActiveArea records the area clicked on a map; empty clears it.
func (s *Selection) SetActiveArea(area string) {
	s.ActiveArea = area
}

// SetActiveLocalAuthority accepts any name. A name missing from the data yields empty
// views rather than an error.
func (s *Selection) SetActiveLocalAuthority(la string) {
	s.ActiveLocalAuthority = la
}

func (s *Selection) SetPalette(name string) error {
	if !contains(s.rules.Palettes, name) {
		return fmt.Errorf("%w: unknown palette %q", constants.ErrInvalidSelection, name)
	}
	s.Palette = name
	return nil
}

// SetComparison keeps the first ComparisonMax distinct names and ignores the rest.
func (s *Selection) SetComparison(areas []string) {
	s.Comparison = distinct(areas, s.rules.ComparisonMax)
}

func (s *Selection) SetWelshRegion(region string) {
	if region == s.WelshRegion {
		return
	}
	s.WelshRegion = region
	s.WelshLocalAuthority = ""
}

func (s *Selection) SetWelshLocalAuthority(la string) {
	s.WelshLocalAuthority = la
}

func (s *Selection) SetWelshIndex(index string) error {
	if !contains(s.rules.indexNames(DomainWelsh), index) {
		return fmt.Errorf("%w: unknown welsh index %q", constants.ErrInvalidSelection, index)
	}
	s.WelshIndex = index
	return nil
}

func (s *Selection) SetCombinedIndex(index string) error {
	if !contains(s.rules.indexNames(DomainCombined), index) {
		return fmt.Errorf("%w: unknown combined index %q", constants.ErrInvalidSelection, index)
	}
	s.CombinedIndex = index
	return nil
}

func (s *Selection) SetHighlighted(areas []string) {
	s.Highlighted = distinct(areas, 0)
}

// Reconcile defaults an empty local authority to the first option of the active
// region, the way a freshly rendered selector shows its first entry.
func (s *Selection) Reconcile(localAuthorities []string) {
	if s.ActiveLocalAuthority == "" && len(localAuthorities) > 0 {
		s.ActiveLocalAuthority = localAuthorities[0]
	}
}

func (s *Selection) ReconcileWelsh(regions, localAuthorities []string) {
	if s.WelshRegion == "" && len(regions) > 0 {
		s.WelshRegion = regions[0]
	}
	if s.WelshLocalAuthority == "" && len(localAuthorities) > 0 {
		s.WelshLocalAuthority = localAuthorities[0]
	}
}

// canonical validates values against universe and returns them deduplicated in
// universe order.
func canonical(values, universe []string, what string) ([]string, error) {
	want := make(map[string]struct{}, len(values))
	for _, v := range values {
		if !contains(universe, v) {
			return nil, fmt.Errorf("%w: unknown %s %q", constants.ErrInvalidSelection, what, v)
		}
		want[v] = struct{}{}
	}
	out := make([]string, 0, len(want))
	for _, u := range universe {
		if _, ok := want[u]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func distinct(values []string, max int) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		if max > 0 && len(out) == max {
			break
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func firstSorted(values []string) string {
	if len(values) == 0 {
		return ""
	}
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return sorted[0]
}
