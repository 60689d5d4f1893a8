// Package datasource loads the published IoD tables and boundary collections and keeps
// them for the lifetime of the process. Upstream files are immutable per release, so
// nothing is ever invalidated.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ougirez/iodmap/internal/domain"
	"github.com/ougirez/iodmap/internal/domain/dto"
	"github.com/ougirez/iodmap/internal/pkg/catalog"
	"github.com/ougirez/iodmap/internal/pkg/config"
	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/ougirez/iodmap/internal/pkg/logger"
	"github.com/ougirez/iodmap/internal/pkg/metrics"
	"github.com/ougirez/iodmap/internal/pkg/store"
	"github.com/ougirez/iodmap/internal/pkg/utils"
	"github.com/ougirez/iodmap/internal/service/pipeline"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type areaDataset struct {
	country     domain.Country
	granularity domain.Granularity
	domain      domain.IndexDomain
}

var areaDatasets = map[string]areaDataset{
	config.DatasetEnglishLA:    {domain.CountryEngland, domain.GranularityLA, domain.DomainEnglish},
	config.DatasetEnglishLSOA:  {domain.CountryEngland, domain.GranularityLSOA, domain.DomainEnglish},
	config.DatasetWelshLSOA:    {domain.CountryWales, domain.GranularityLSOA, domain.DomainWelsh},
	// Holds English and Welsh LSOAs; Welsh rows have no region.
	config.DatasetEnglandWales: {domain.CountryEngland, domain.GranularityLSOA, domain.DomainCombined},
}

// URLResolver maps a dataset id to its URL.
type URLResolver func(id string) (string, error)

type Repository struct {
	fetcher  *Fetcher
	catalog  *catalog.Catalog
	overflow *pipeline.PartitionRule
	resolve  URLResolver
	mirror   store.Store

	group      singleflight.Group
	mu         sync.RWMutex
	areas      map[string]*domain.AreaTable
	boundaries map[string]*domain.BoundaryTable
}

type Option func(*Repository)

// WithMirror reads area tables from the Postgres mirror instead of HTTP.
func WithMirror(s store.Store) Option {
	return func(r *Repository) { r.mirror = s }
}

func WithURLResolver(resolve URLResolver) Option {
	return func(r *Repository) { r.resolve = resolve }
}

func NewRepository(fetcher *Fetcher, cat *catalog.Catalog, overflow *pipeline.PartitionRule, opts ...Option) *Repository {
	r := &Repository{
		fetcher:    fetcher,
		catalog:    cat,
		overflow:   overflow,
		resolve:    config.DatasetURL,
		areas:      make(map[string]*domain.AreaTable),
		boundaries: make(map[string]*domain.BoundaryTable),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Areas returns the area table of a dataset, loading it on first use. Concurrent first
// loads share one fetch; failures are not remembered.
func (r *Repository) Areas(ctx context.Context, id string) (*domain.AreaTable, error) {
	spec, ok := areaDatasets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", constants.ErrUnknownDataset, id)
	}
	url, err := r.resolve(id)
	if err != nil {
		return nil, err
	}
	key := id + "|" + url

	r.mu.RLock()
	cached, ok := r.areas[key]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := r.group.Do("areas:"+key, func() (interface{}, error) {
		started := time.Now()
		table, err := r.loadAreas(context.WithoutCancel(ctx), id, url, spec)
		metrics.ObserveFetch(id, started, err)
		if err != nil {
			logger.Errorf(ctx, "load dataset %s: %s", id, err.Error())
			return nil, err
		}

		r.mu.Lock()
		r.areas[key] = table
		r.mu.Unlock()

		logger.Infof(ctx, "loaded dataset %s: %d rows", id, len(table.Records))
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.AreaTable), nil
}

func (r *Repository) loadAreas(ctx context.Context, id, url string, spec areaDataset) (*domain.AreaTable, error) {
	table := &domain.AreaTable{
		Country:     spec.country,
		Granularity: spec.granularity,
		Domain:      spec.domain,
	}

	var err error
	if r.mirror != nil {
		table.Records, err = r.mirror.ListAreas(ctx, store.ListAreasOpts{Dataset: id})
		if err != nil {
			return nil, fmt.Errorf("%w: mirror: %s", constants.ErrDataUnavailable, err)
		}
	} else {
		table.Records, err = r.fetcher.FetchAreas(ctx, url, dto.SchemaFor(spec.granularity), r.catalog.Indices(spec.domain))
		if err != nil {
			return nil, err
		}
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", constants.ErrDataUnavailable, id, err)
	}
	return table, nil
}

// Area returns one record of a dataset by area code.
func (r *Repository) Area(ctx context.Context, id, code string) (*domain.AreaRecord, error) {
	if _, ok := areaDatasets[id]; !ok {
		return nil, fmt.Errorf("%w: %q", constants.ErrUnknownDataset, id)
	}
	if r.mirror != nil {
		rec, err := r.mirror.GetArea(ctx, id, code)
		if errors.Is(err, constants.ErrDBNotFound) {
			return nil, err
		}
		if err != nil {
			return nil, fmt.Errorf("%w: mirror: %s", constants.ErrDataUnavailable, err)
		}
		return rec, nil
	}

	table, err := r.Areas(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range table.Records {
		if table.Records[i].AreaCode == code {
			rec := table.Records[i]
			return &rec, nil
		}
	}
	return nil, constants.ErrDBNotFound
}

// ListAreas returns the records of a dataset in table order, optionally restricted to
// one region and to the children of one parent area (code or name).
func (r *Repository) ListAreas(ctx context.Context, id, region, parent string) ([]domain.AreaRecord, error) {
	if _, ok := areaDatasets[id]; !ok {
		return nil, fmt.Errorf("%w: %q", constants.ErrUnknownDataset, id)
	}
	if r.mirror != nil {
		opts := store.ListAreasOpts{Dataset: id}
		if region != "" {
			opts.RegionName = &region
		}
		if parent != "" {
			opts.ParentArea = &parent
		}
		records, err := r.mirror.ListAreas(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: mirror: %s", constants.ErrDataUnavailable, err)
		}
		return records, nil
	}

	table, err := r.Areas(ctx, id)
	if err != nil {
		return nil, err
	}
	records := table.Records
	if region != "" {
		records = pipeline.FilterRegions(records, pipeline.OnlyRegions(region))
	}
	if parent != "" {
		records = pipeline.NarrowToParent(records, parent)
	}
	return records, nil
}

// Regions lists the distinct region names of a dataset, sorted.
func (r *Repository) Regions(ctx context.Context, id string) ([]string, error) {
	if _, ok := areaDatasets[id]; !ok {
		return nil, fmt.Errorf("%w: %q", constants.ErrUnknownDataset, id)
	}
	if r.mirror != nil {
		regions, err := r.mirror.ListRegions(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: mirror: %s", constants.ErrDataUnavailable, err)
		}
		return regions, nil
	}

	table, err := r.Areas(ctx, id)
	if err != nil {
		return nil, err
	}
	return pipeline.RegionOptions(table.Records), nil
}

// LABoundaries returns the boundaries of every English and Welsh LA.
func (r *Repository) LABoundaries(ctx context.Context) (*domain.BoundaryTable, error) {
	return r.loadBoundaries(ctx, config.DatasetLABoundaries, "", dto.LASchema, false)
}

// EnglishLSOABoundaries returns the LSOA boundaries of one English region, split into
// the main and overflow buckets.
func (r *Repository) EnglishLSOABoundaries(ctx context.Context, region string) (*domain.BoundaryTable, error) {
	if region == "" {
		return domain.NewBoundaryTable("", []domain.BoundaryRecord{}), nil
	}
	return r.loadBoundaries(ctx, config.DatasetEnglishLSOABoundaries, region, dto.LSOASchema, true)
}

func (r *Repository) WelshLSOABoundaries(ctx context.Context) (*domain.BoundaryTable, error) {
	return r.loadBoundaries(ctx, config.DatasetWelshLSOABoundaries, "", dto.LSOASchema, false)
}

// BoundaryURL resolves the URL of a boundary dataset without loading it.
func (r *Repository) BoundaryURL(id, region string) (string, error) {
	url, err := r.resolve(id)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(url, "{region}", utils.Slug(region)), nil
}

func (r *Repository) loadBoundaries(
	ctx context.Context,
	id, region string,
	schema dto.Schema,
	partitioned bool,
) (*domain.BoundaryTable, error) {
	url, err := r.BoundaryURL(id, region)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	cached, ok := r.boundaries[url]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := r.group.Do("boundaries:"+url, func() (interface{}, error) {
		detached := context.WithoutCancel(ctx)
		started := time.Now()
		records, err := r.fetcher.FetchBoundaries(detached, url, schema)
		metrics.ObserveFetch(id, started, err)
		if err != nil {
			logger.Errorf(ctx, "load boundaries %s: %s", url, err.Error())
			return nil, err
		}

		table := domain.NewBoundaryTable(url, records)
		if partitioned {
			parents, err := r.lsoaParents(detached)
			if err != nil {
				return nil, err
			}
			table = Partition(url, records, r.overflow, parents)
			for p, bucket := range table.Buckets {
				if r.overflow.Exceeds(len(bucket)) {
					logger.Warnf(ctx, "boundary bucket %s of %s has %d rows, over the ceiling of %d",
						p, url, len(bucket), r.overflow.Ceiling)
				}
			}
		}

		r.mu.Lock()
		r.boundaries[url] = table
		r.mu.Unlock()

		logger.Infof(ctx, "loaded boundaries %s: %d features", url, len(records))
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.BoundaryTable), nil
}

// lsoaParents maps English LSOA codes and names to their LA name, for boundary files
// whose features do not carry the parent.
func (r *Repository) lsoaParents(ctx context.Context) (map[string]string, error) {
	table, err := r.Areas(ctx, config.DatasetEnglishLSOA)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, 2*len(table.Records))
	for _, rec := range table.Records {
		out[rec.AreaCode] = rec.ParentAreaName
		if _, ok := out[rec.AreaName]; !ok {
			out[rec.AreaName] = rec.ParentAreaName
		}
	}
	return out, nil
}

// Partition buckets LSOA boundaries by whether their parent LA is on the overflow list.
func Partition(url string, records []domain.BoundaryRecord, rule *pipeline.PartitionRule, parents map[string]string) *domain.BoundaryTable {
	table := &domain.BoundaryTable{
		URL: url,
		Buckets: map[domain.Partition][]domain.BoundaryRecord{
			domain.PartitionMain:     {},
			domain.PartitionOverflow: {},
		},
	}
	for _, b := range records {
		parent := b.ParentAreaName
		if parent == "" {
			parent = parents[b.AreaCode]
		}
		if parent == "" {
			parent = parents[b.AreaName]
		}
		p := rule.Select(parent)
		table.Buckets[p] = append(table.Buckets[p], b)
	}
	return table
}

// Warm loads every area table and the unpartitioned boundary collections concurrently.
func (r *Repository) Warm(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for id := range areaDatasets {
		id := id
		eg.Go(func() error {
			if _, err := r.Areas(egCtx, id); err != nil {
				return fmt.Errorf("Areas, id-%s: %w", id, err)
			}
			return nil
		})
	}
	eg.Go(func() error {
		_, err := r.LABoundaries(egCtx)
		return err
	})
	eg.Go(func() error {
		_, err := r.WelshLSOABoundaries(egCtx)
		return err
	})
	return eg.Wait()
}
