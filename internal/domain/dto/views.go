package dto

import "github.com/ougirez/iodmap/internal/domain"

type Options struct {
	Regions          []string       `json:"regions,omitempty"`
	Indices          []domain.Index `json:"indices,omitempty"`
	LocalAuthorities []string       `json:"local_authorities,omitempty"`
	WelshRegions     []string       `json:"welsh_regions,omitempty"`
	WelshLAs         []string       `json:"welsh_local_authorities,omitempty"`
	Areas            []string       `json:"areas,omitempty"`
	Palettes         []string       `json:"palettes,omitempty"`
}

// MapPanel is one choropleth. Rows are matched to the features at BoundaryURL by
// comparing the row field JoinKey with the feature property BoundaryKey.
type MapPanel struct {
	Title       string           `json:"title"`
	ColorIndex  domain.Index     `json:"color_index"`
	JoinKey     string           `json:"join_key"`
	BoundaryKey string           `json:"boundary_key"`
	BoundaryURL string           `json:"boundary_url"`
	Partition   domain.Partition `json:"partition,omitempty"`
	Rows        []domain.MapRow  `json:"rows"`
	Stats       domain.JoinStats `json:"stats"`
}

// ChartPanel is a horizontal bar chart of deciles. GroupBy names the LongRow field the
// bars are labelled with.
type ChartPanel struct {
	Title   string           `json:"title"`
	GroupBy string           `json:"group_by"`
	Rows    []domain.LongRow `json:"rows"`
}

type ViewResult struct {
	View      string            `json:"view"`
	Selection *domain.Selection `json:"selection"`
	Palette   domain.Palette    `json:"palette"`
	Options   Options           `json:"options"`
	Maps      []MapPanel        `json:"maps"`
	Chart     *ChartPanel       `json:"chart,omitempty"`
}

type Catalog struct {
	Regions  []string                              `json:"regions"`
	Domains  map[domain.IndexDomain][]domain.Index `json:"domains"`
	Palettes []domain.Palette                      `json:"palettes"`
}
