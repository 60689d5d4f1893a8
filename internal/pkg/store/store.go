package store

import (
	"context"

	"github.com/ougirez/iodmap/internal/domain"
	"github.com/ougirez/iodmap/internal/pkg/store/xpgx"
)

type Pool = xpgx.Querier

// Store is a read-only mirror of the published area tables. Rows are loaded into the
// areas table out of band; the service never writes.
type Store interface {
	ListAreas(ctx context.Context, opts ListAreasOpts) ([]domain.AreaRecord, error)
	ListRegions(ctx context.Context, dataset string) ([]string, error)
	GetArea(ctx context.Context, dataset, areaCode string) (*domain.AreaRecord, error)
}

type store struct {
	pool Pool
}

func NewStore(pool Pool) Store {
	return &store{pool}
}
