// Package pipeline turns reference tables, boundary collections and the user's
// selection into the rows one chart needs. Everything here is pure: the same inputs
// always give the same output, in the same order.
package pipeline

import (
	"sort"

	"github.com/ougirez/iodmap/internal/domain"
)

type Partition = domain.Partition

const (
	PartitionMain     = domain.PartitionMain
	PartitionOverflow = domain.PartitionOverflow
)

// JoinKey selects the attribute area rows and boundaries are matched on.
type JoinKey string

const (
	// JoinByCode matches on the unique area code.
	JoinByCode JoinKey = "code"
	// JoinByName matches on the area name, as the published dashboards did. Renamed or
	// duplicate names silently misjoin with it.
	JoinByName JoinKey = "name"
)

func ParseJoinKey(s string) JoinKey {
	if s == string(JoinByName) {
		return JoinByName
	}
	return JoinByCode
}

// Request is one render's worth of filtering instructions.
type Request struct {
	Regions RegionScope

	// NarrowToParent keeps only rows whose parent LA is ParentArea (code or name).
	NarrowToParent bool
	ParentArea     string

	// Partition, when set, restricts rows and boundaries to the bucket ParentArea
	// belongs to.
	Partition *PartitionRule

	ColorIndex domain.IndexID
	JoinKey    JoinKey

	ChartAreas   []string
	ChartIndices []domain.Index
}

// Compute runs the filter steps in order: region, partition, parent narrowing, boundary
// join, option derivation and the long-form reshape for charts.
func Compute(areas *domain.AreaTable, boundaries *domain.BoundaryTable, req Request) domain.FilteredSubset {
	out := domain.FilteredSubset{
		MapRows:    []domain.MapRow{},
		Boundaries: []domain.BoundaryRecord{},
		ChartRows:  []domain.LongRow{},
		Options:    []string{},
		Partition:  PartitionMain,
	}
	if areas == nil {
		return out
	}

	rows := FilterRegions(areas.Records, req.Regions)

	if req.Partition != nil {
		out.Partition = req.Partition.Select(req.ParentArea)
		rows = RestrictToPartition(rows, req.Partition, out.Partition)
	}

	if req.NarrowToParent {
		rows = NarrowToParent(rows, req.ParentArea)
	}

	out.Options = Options(rows)

	if boundaries != nil && req.ColorIndex != "" {
		out.MapRows, out.Boundaries, out.Stats = Join(rows, boundaries.Bucket(out.Partition), req.JoinKey, req.ColorIndex)
	}

	out.ChartRows = Melt(SelectAreas(rows, req.ChartAreas), req.ChartIndices)
	return out
}

func FilterRegions(records []domain.AreaRecord, scope RegionScope) []domain.AreaRecord {
	if scope.Empty() {
		return []domain.AreaRecord{}
	}
	out := make([]domain.AreaRecord, 0, len(records))
	for _, r := range records {
		if scope.Match(r.RegionName) {
			out = append(out, r)
		}
	}
	return out
}

// NarrowToParent keeps the children of one LA. An LA nobody has heard of gives an
// empty slice.
func NarrowToParent(records []domain.AreaRecord, parent string) []domain.AreaRecord {
	out := make([]domain.AreaRecord, 0)
	if parent == "" {
		return out
	}
	for _, r := range records {
		if r.ParentAreaCode == parent || r.ParentAreaName == parent {
			out = append(out, r)
		}
	}
	return out
}

func RestrictToPartition(records []domain.AreaRecord, rule *PartitionRule, p Partition) []domain.AreaRecord {
	out := make([]domain.AreaRecord, 0, len(records))
	for _, r := range records {
		if rule.Select(partitionKey(r)) == p {
			out = append(out, r)
		}
	}
	return out
}

func partitionKey(r domain.AreaRecord) string {
	if r.ParentAreaName != "" {
		return r.ParentAreaName
	}
	return r.AreaName
}

// Options returns the sorted distinct area names, used to fill the next selector.
func Options(records []domain.AreaRecord) []string {
	return sortedDistinct(records, func(r domain.AreaRecord) string { return r.AreaName })
}

// ParentOptions returns the sorted distinct parent LA names.
func ParentOptions(records []domain.AreaRecord) []string {
	return sortedDistinct(records, func(r domain.AreaRecord) string { return r.ParentAreaName })
}

// RegionOptions returns the sorted distinct region names.
func RegionOptions(records []domain.AreaRecord) []string {
	return sortedDistinct(records, func(r domain.AreaRecord) string { return r.RegionName })
}

func sortedDistinct(records []domain.AreaRecord, key func(domain.AreaRecord) string) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SelectAreas keeps the rows named (or coded) in areas, in table order.
func SelectAreas(records []domain.AreaRecord, areas []string) []domain.AreaRecord {
	out := make([]domain.AreaRecord, 0, len(areas))
	if len(areas) == 0 {
		return out
	}
	want := make(map[string]struct{}, len(areas))
	for _, a := range areas {
		want[a] = struct{}{}
	}
	for _, r := range records {
		_, byName := want[r.AreaName]
		_, byCode := want[r.AreaCode]
		if byName || byCode {
			out = append(out, r)
		}
	}
	return out
}
