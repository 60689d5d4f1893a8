package dashboard

import (
	"github.com/ougirez/iodmap/internal/domain"
	"github.com/ougirez/iodmap/internal/domain/dto"
	"github.com/ougirez/iodmap/internal/pkg/config"
	"github.com/ougirez/iodmap/internal/service/pipeline"
)

const (
	ViewLABreakdown   = "la-breakdown"
	ViewLAComparison  = "la-comparison"
	ViewLSOABreakdown = "lsoa-breakdown"
	ViewWalesLSOA     = "wales-lsoa-breakdown"
	ViewEnglandWales  = "england-wales"
)

const overviewIndexID domain.IndexID = "a_index_of_multiple_deprivation_imd"

var views = map[string]func(r *render) (*dto.ViewResult, error){
	ViewLABreakdown:   laBreakdown,
	ViewLAComparison:  laComparison,
	ViewLSOABreakdown: lsoaBreakdown,
	ViewWalesLSOA:     walesLSOABreakdown,
	ViewEnglandWales:  englandWales,
}

// laBreakdown: an England overview coloured by IMD, a map of the active region coloured
// by the active index, and all ten indices of the clicked LA as bars. The index filter
// only narrows the colour choices, never the bars.
func laBreakdown(r *render) (*dto.ViewResult, error) {
	cat := r.svc.catalog
	areas, err := r.svc.source.Areas(r.ctx, config.DatasetEnglishLA)
	if err != nil {
		return nil, err
	}
	boundaries, err := r.svc.source.LABoundaries(r.ctx)
	if err != nil {
		return nil, err
	}

	indices := cat.IndicesByName(domain.DomainEnglish, r.sel.Indices)
	overviewIndex, _ := cat.IndexByID(domain.DomainEnglish, overviewIndexID)
	activeIndex, _ := cat.IndexByName(domain.DomainEnglish, r.sel.ActiveIndex)

	overview, _ := r.mapPanel("England", areas, boundaries, pipeline.Request{
		Regions: pipeline.OnlyRegions(r.sel.Regions...),
	}, overviewIndex)

	regional, subset := r.mapPanel(r.sel.ActiveRegion, areas, boundaries, pipeline.Request{
		Regions:      activeScope(r.sel.ActiveRegion),
		ChartAreas:   nonEmpty(r.sel.ActiveArea),
		ChartIndices: cat.Indices(domain.DomainEnglish),
	}, activeIndex)

	return &dto.ViewResult{
		Options: dto.Options{
			Regions: sortedCopy(r.sel.Regions),
			Indices: indices,
			Areas:   subset.Options,
		},
		Maps: []dto.MapPanel{overview, regional},
		Chart: &dto.ChartPanel{
			Title:   r.sel.ActiveArea,
			GroupBy: "index_name",
			Rows:    subset.ChartRows,
		},
	}, nil
}

// laComparison: one index for up to five LAs from anywhere in the selected regions.
func laComparison(r *render) (*dto.ViewResult, error) {
	areas, err := r.svc.source.Areas(r.ctx, config.DatasetEnglishLA)
	if err != nil {
		return nil, err
	}

	var chartIndices []domain.Index
	if idx, ok := r.svc.catalog.IndexByName(domain.DomainEnglish, r.sel.ActiveIndex); ok {
		chartIndices = []domain.Index{idx}
	}

	subset := pipeline.Compute(areas, nil, pipeline.Request{
		Regions:      pipeline.OnlyRegions(r.sel.Regions...),
		ChartAreas:   r.sel.Comparison,
		ChartIndices: chartIndices,
	})

	return &dto.ViewResult{
		Options: dto.Options{
			Indices: r.svc.catalog.IndicesByName(domain.DomainEnglish, r.sel.Indices),
			Areas:   subset.Options,
		},
		Maps: []dto.MapPanel{},
		Chart: &dto.ChartPanel{
			Title:   r.sel.ActiveIndex,
			GroupBy: "area_name",
			Rows:    subset.ChartRows,
		},
	}, nil
}

// lsoaBreakdown: region, then LA, then the LSOAs of that LA from the matching
// boundary partition.
func lsoaBreakdown(r *render) (*dto.ViewResult, error) {
	cat := r.svc.catalog
	las, err := r.svc.source.Areas(r.ctx, config.DatasetEnglishLA)
	if err != nil {
		return nil, err
	}
	laOptions := pipeline.Options(pipeline.FilterRegions(las.Records, activeScope(r.sel.ActiveRegion)))
	r.reconcile(func(sel *domain.Selection) { sel.Reconcile(laOptions) })

	lsoas, err := r.svc.source.Areas(r.ctx, config.DatasetEnglishLSOA)
	if err != nil {
		return nil, err
	}
	boundaries, err := r.svc.source.EnglishLSOABoundaries(r.ctx, r.sel.ActiveRegion)
	if err != nil {
		return nil, err
	}

	activeIndex, _ := cat.IndexByName(domain.DomainEnglish, r.sel.ActiveIndex)
	indices := cat.IndicesByName(domain.DomainEnglish, r.sel.Indices)
	panel, subset := r.mapPanel(r.sel.ActiveLocalAuthority, lsoas, boundaries, pipeline.Request{
		Regions:        activeScope(r.sel.ActiveRegion),
		NarrowToParent: true,
		ParentArea:     r.sel.ActiveLocalAuthority,
		Partition:      r.svc.overflow,
		ChartAreas:     nonEmpty(r.sel.ActiveArea),
		ChartIndices:   cat.Indices(domain.DomainEnglish),
	}, activeIndex)

	return &dto.ViewResult{
		Options: dto.Options{
			Regions:          sortedCopy(r.sel.Regions),
			Indices:          indices,
			LocalAuthorities: laOptions,
			Areas:            subset.Options,
		},
		Maps: []dto.MapPanel{panel},
		Chart: &dto.ChartPanel{
			Title:   r.sel.ActiveArea,
			GroupBy: "index_name",
			Rows:    subset.ChartRows,
		},
	}, nil
}

// walesLSOABreakdown: Welsh region, then Welsh LA, coloured by a Welsh index.
func walesLSOABreakdown(r *render) (*dto.ViewResult, error) {
	lsoas, err := r.svc.source.Areas(r.ctx, config.DatasetWelshLSOA)
	if err != nil {
		return nil, err
	}
	regions := pipeline.RegionOptions(lsoas.Records)
	scope := func(region string) pipeline.RegionScope {
		if region == "" {
			return pipeline.AnyRegion()
		}
		return pipeline.OnlyRegions(region)
	}
	r.reconcile(func(sel *domain.Selection) {
		sel.ReconcileWelsh(regions, nil)
	})
	laOptions := pipeline.ParentOptions(pipeline.FilterRegions(lsoas.Records, scope(r.sel.WelshRegion)))
	r.reconcile(func(sel *domain.Selection) {
		sel.ReconcileWelsh(regions, laOptions)
	})

	boundaries, err := r.svc.source.WelshLSOABoundaries(r.ctx)
	if err != nil {
		return nil, err
	}
	welshIndex, _ := r.svc.catalog.IndexByName(domain.DomainWelsh, r.sel.WelshIndex)
	panel, subset := r.mapPanel(r.sel.WelshLocalAuthority, lsoas, boundaries, pipeline.Request{
		Regions:        scope(r.sel.WelshRegion),
		NarrowToParent: true,
		ParentArea:     r.sel.WelshLocalAuthority,
	}, welshIndex)

	return &dto.ViewResult{
		Options: dto.Options{
			Indices:      r.svc.catalog.Indices(domain.DomainWelsh),
			WelshRegions: regions,
			WelshLAs:     laOptions,
			Areas:        subset.Options,
		},
		Maps: []dto.MapPanel{panel},
	}, nil
}

// englandWales: an English LA and a Welsh LA side by side on the combined dataset,
// with the highlighted LSOAs of both as bars.
func englandWales(r *render) (*dto.ViewResult, error) {
	cat := r.svc.catalog
	welsh, err := r.svc.source.Areas(r.ctx, config.DatasetWelshLSOA)
	if err != nil {
		return nil, err
	}
	combined, err := r.svc.source.Areas(r.ctx, config.DatasetEnglandWales)
	if err != nil {
		return nil, err
	}

	// English LAs come from the combined table itself so every option has rows to map.
	laOptions := pipeline.ParentOptions(pipeline.FilterRegions(combined.Records, activeScope(r.sel.ActiveRegion)))
	welshLAs := pipeline.ParentOptions(welsh.Records)
	r.reconcile(func(sel *domain.Selection) {
		sel.Reconcile(laOptions)
		if sel.WelshLocalAuthority == "" && len(welshLAs) > 0 {
			sel.SetWelshLocalAuthority(welshLAs[0])
		}
	})

	englishBoundaries, err := r.svc.source.EnglishLSOABoundaries(r.ctx, r.sel.ActiveRegion)
	if err != nil {
		return nil, err
	}
	welshBoundaries, err := r.svc.source.WelshLSOABoundaries(r.ctx)
	if err != nil {
		return nil, err
	}

	var chartIndices []domain.Index
	index, ok := cat.IndexByName(domain.DomainCombined, r.sel.CombinedIndex)
	if ok {
		chartIndices = []domain.Index{index}
	}

	english, englishSubset := r.mapPanel(r.sel.ActiveLocalAuthority, combined, englishBoundaries, pipeline.Request{
		Regions:        activeScope(r.sel.ActiveRegion),
		NarrowToParent: true,
		ParentArea:     r.sel.ActiveLocalAuthority,
		Partition:      r.svc.overflow,
		ChartAreas:     r.sel.Highlighted,
		ChartIndices:   chartIndices,
	}, index)
	wales, welshSubset := r.mapPanel(r.sel.WelshLocalAuthority, combined, welshBoundaries, pipeline.Request{
		Regions:        pipeline.AnyRegion(),
		NarrowToParent: true,
		ParentArea:     r.sel.WelshLocalAuthority,
		ChartAreas:     r.sel.Highlighted,
		ChartIndices:   chartIndices,
	}, index)

	rows := make([]domain.LongRow, 0, len(englishSubset.ChartRows)+len(welshSubset.ChartRows))
	rows = append(rows, englishSubset.ChartRows...)
	rows = append(rows, welshSubset.ChartRows...)

	return &dto.ViewResult{
		Options: dto.Options{
			Regions:          sortedCopy(r.sel.Regions),
			Indices:          cat.Indices(domain.DomainCombined),
			LocalAuthorities: laOptions,
			WelshLAs:         welshLAs,
			Areas:            append(append([]string{}, englishSubset.Options...), welshSubset.Options...),
		},
		Maps: []dto.MapPanel{english, wales},
		Chart: &dto.ChartPanel{
			Title:   r.sel.CombinedIndex,
			GroupBy: "area_name",
			Rows:    rows,
		},
	}, nil
}

func nonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}
