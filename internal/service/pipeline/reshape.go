package pipeline

import "github.com/ougirez/iodmap/internal/domain"

// Melt unpivots wide rows into one row per (area, index), in row then index order.
// It only relabels: no value is aggregated or altered.
func Melt(records []domain.AreaRecord, indices []domain.Index) []domain.LongRow {
	out := make([]domain.LongRow, 0, len(records)*len(indices))
	for _, r := range records {
		for _, idx := range indices {
			lr := domain.LongRow{
				AreaCode:       r.AreaCode,
				AreaName:       r.AreaName,
				ParentAreaCode: r.ParentAreaCode,
				ParentAreaName: r.ParentAreaName,
				RegionName:     r.RegionName,
				IndexID:        idx.ID,
				IndexName:      idx.Name,
			}
			if d, ok := r.Decile(idx.ID); ok {
				lr.Decile = &d
			}
			out = append(out, lr)
		}
	}
	return out
}

// Cast is the inverse of Melt: rows are regrouped by area code in first-seen order and
// rows without a decile stay absent.
func Cast(rows []domain.LongRow) []domain.AreaRecord {
	pos := make(map[string]int)
	out := make([]domain.AreaRecord, 0)
	for _, lr := range rows {
		i, ok := pos[lr.AreaCode]
		if !ok {
			i = len(out)
			pos[lr.AreaCode] = i
			out = append(out, domain.AreaRecord{
				AreaCode:       lr.AreaCode,
				AreaName:       lr.AreaName,
				ParentAreaCode: lr.ParentAreaCode,
				ParentAreaName: lr.ParentAreaName,
				RegionName:     lr.RegionName,
				Deciles:        make(map[domain.IndexID]int),
			})
		}
		if lr.Decile != nil {
			out[i].Deciles[lr.IndexID] = *lr.Decile
		}
	}
	return out
}
