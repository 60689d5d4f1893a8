package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/iodmap/internal/domain"
	"github.com/ougirez/iodmap/internal/pkg/logger"
	"github.com/ougirez/iodmap/internal/pkg/store/xpgx"
)

type ListAreasOpts struct {
	Dataset    string
	RegionName *string
	ParentArea *string
}

var areaColumns = []string{
	"area_code",
	"area_name",
	"coalesce(parent_area_code, '') as parent_area_code",
	"coalesce(parent_area_name, '') as parent_area_name",
	"coalesce(region_name, '') as region_name",
	"deciles",
}

func listAreasQuery(opts ListAreasOpts) sq.SelectBuilder {
	query := builder().Select(areaColumns...).
		From(tableAreas).
		Where(sq.Eq{"dataset": opts.Dataset}).
		OrderBy("row_no")

	if opts.RegionName != nil {
		query = query.Where(sq.Eq{"region_name": *opts.RegionName})
	}
	if opts.ParentArea != nil {
		query = query.Where(sq.Or{
			sq.Eq{"parent_area_code": *opts.ParentArea},
			sq.Eq{"parent_area_name": *opts.ParentArea},
		})
	}
	return query
}

func (s *store) ListAreas(ctx context.Context, opts ListAreasOpts) ([]domain.AreaRecord, error) {
	selected, err := xpgx.Selectx[domain.AreaRecord](ctx, s.pool, listAreasQuery(opts))
	if err != nil {
		logger.Errorf(ctx, "ListAreas, dataset-%s: %s", opts.Dataset, err.Error())
		return nil, fmt.Errorf("ListAreas, dataset-%s: %w", opts.Dataset, wrapErr(err))
	}
	return selected, nil
}

func (s *store) GetArea(ctx context.Context, dataset, areaCode string) (*domain.AreaRecord, error) {
	query := builder().Select(areaColumns...).
		From(tableAreas).
		Where(sq.Eq{"dataset": dataset, "area_code": areaCode})

	selected, err := xpgx.Getx[domain.AreaRecord](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &selected, nil
}
