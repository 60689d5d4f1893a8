package pipeline

import "github.com/ougirez/iodmap/internal/domain"

func areaKey(key JoinKey, code, name string) string {
	if key == JoinByName {
		return name
	}
	return code
}

// Join inner-joins rows to boundaries. Rows without a boundary are dropped and only
// counted; when several boundaries share a key the first one wins.
func Join(
	rows []domain.AreaRecord,
	boundaries []domain.BoundaryRecord,
	key JoinKey,
	colorIndex domain.IndexID,
) ([]domain.MapRow, []domain.BoundaryRecord, domain.JoinStats) {
	stats := domain.JoinStats{Input: len(rows)}

	lookup := make(map[string]int, len(boundaries))
	for i, b := range boundaries {
		k := areaKey(key, b.AreaCode, b.AreaName)
		if k == "" {
			continue
		}
		if _, dup := lookup[k]; dup {
			stats.DuplicateKeys++
			continue
		}
		lookup[k] = i
	}

	mapRows := make([]domain.MapRow, 0, len(rows))
	matched := make([]domain.BoundaryRecord, 0, len(rows))
	used := make(map[int]struct{}, len(rows))
	for _, r := range rows {
		bi, ok := lookup[areaKey(key, r.AreaCode, r.AreaName)]
		if !ok {
			stats.Dropped++
			continue
		}
		stats.Matched++

		row := domain.MapRow{
			AreaCode:       r.AreaCode,
			AreaName:       r.AreaName,
			ParentAreaName: r.ParentAreaName,
			RegionName:     r.RegionName,
			Deciles:        copyDeciles(r.Deciles),
		}
		if d, ok := r.Decile(colorIndex); ok {
			row.Value = &d
		}
		mapRows = append(mapRows, row)

		if _, seen := used[bi]; !seen {
			used[bi] = struct{}{}
			matched = append(matched, boundaries[bi])
		}
	}
	return mapRows, matched, stats
}

func copyDeciles(in map[domain.IndexID]int) map[domain.IndexID]int {
	out := make(map[domain.IndexID]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
