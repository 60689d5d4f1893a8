package domain

// MapRow is an area row that found its boundary, ready for colour encoding.
// Value is the decile of the colour index, nil when the source had none.
type MapRow struct {
	AreaCode       string          `json:"area_code"`
	AreaName       string          `json:"area_name"`
	ParentAreaName string          `json:"parent_area_name,omitempty"`
	RegionName     string          `json:"region_name,omitempty"`
	Value          *int            `json:"value"`
	Deciles        map[IndexID]int `json:"deciles"`
}

// LongRow is one (area, index) pair of the unpivoted table used by bar charts.
type LongRow struct {
	AreaCode       string  `json:"area_code"`
	AreaName       string  `json:"area_name"`
	ParentAreaCode string  `json:"parent_area_code,omitempty"`
	ParentAreaName string  `json:"parent_area_name,omitempty"`
	RegionName     string  `json:"region_name,omitempty"`
	IndexID        IndexID `json:"index_id"`
	IndexName      string  `json:"index_name"`
	Decile         *int    `json:"decile"`
}

// JoinStats describes how lossy a boundary join was. Dropped rows are not errors.
type JoinStats struct {
	Input         int `json:"input"`
	Matched       int `json:"matched"`
	Dropped       int `json:"dropped"`
	DuplicateKeys int `json:"duplicate_keys"`
}

// FilteredSubset is everything one render needs. It is recomputed on every selection
// change and never cached.
type FilteredSubset struct {
	MapRows    []MapRow         `json:"map_rows"`
	Boundaries []BoundaryRecord `json:"-"`
	ChartRows  []LongRow        `json:"chart_rows"`
	Options    []string         `json:"options"`
	Partition  Partition        `json:"partition,omitempty"`
	Stats      JoinStats        `json:"stats"`
}
