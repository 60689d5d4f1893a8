package store

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/ougirez/iodmap/internal/pkg/store/xpgx"
)

type regionRow struct {
	RegionName string `db:"region_name"`
}

func listRegionsQuery(dataset string) squirrel.SelectBuilder {
	return builder().Select("distinct region_name").
		From(tableAreas).
		Where(squirrel.And{
			squirrel.Eq{"dataset": dataset},
			squirrel.NotEq{"region_name": nil},
		}).
		OrderBy("region_name")
}

func (s *store) ListRegions(ctx context.Context, dataset string) ([]string, error) {
	rows, err := xpgx.Selectx[regionRow](ctx, s.pool, listRegionsQuery(dataset))
	if err != nil {
		return nil, wrapErr(err)
	}

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.RegionName)
	}
	return out, nil
}
