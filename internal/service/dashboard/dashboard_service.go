// Package dashboard composes the dashboard views from the data sources, the pipeline
// and the visitor's selection.
package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/ougirez/iodmap/internal/domain"
	"github.com/ougirez/iodmap/internal/domain/dto"
	"github.com/ougirez/iodmap/internal/pkg/catalog"
	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/ougirez/iodmap/internal/pkg/logger"
	"github.com/ougirez/iodmap/internal/pkg/metrics"
	"github.com/ougirez/iodmap/internal/service/pipeline"
	"github.com/ougirez/iodmap/internal/service/session"
)

// Source is what the views read. datasource.Repository implements it.
type Source interface {
	Areas(ctx context.Context, id string) (*domain.AreaTable, error)
	LABoundaries(ctx context.Context) (*domain.BoundaryTable, error)
	EnglishLSOABoundaries(ctx context.Context, region string) (*domain.BoundaryTable, error)
	WelshLSOABoundaries(ctx context.Context) (*domain.BoundaryTable, error)
	Area(ctx context.Context, id, code string) (*domain.AreaRecord, error)
	ListAreas(ctx context.Context, id, region, parent string) ([]domain.AreaRecord, error)
	Regions(ctx context.Context, id string) ([]string, error)
}

type Service struct {
	source   Source
	catalog  *catalog.Catalog
	sessions *session.Store
	overflow *pipeline.PartitionRule
	joinKey  pipeline.JoinKey
}

func NewService(
	source Source,
	cat *catalog.Catalog,
	sessions *session.Store,
	overflow *pipeline.PartitionRule,
	joinKey pipeline.JoinKey,
) *Service {
	return &Service{
		source:   source,
		catalog:  cat,
		sessions: sessions,
		overflow: overflow,
		joinKey:  joinKey,
	}
}

func (s *Service) Catalog() dto.Catalog {
	return dto.Catalog{
		Regions:  s.catalog.Regions,
		Domains:  s.catalog.Domains,
		Palettes: s.catalog.Palettes,
	}
}

// Area is the detail of one area, as shown in a map tooltip.
func (s *Service) Area(ctx context.Context, dataset, code string) (*domain.AreaRecord, error) {
	return s.source.Area(ctx, dataset, code)
}

// Areas lists the records of a dataset, optionally within one region and one parent.
func (s *Service) Areas(ctx context.Context, dataset, region, parent string) ([]domain.AreaRecord, error) {
	return s.source.ListAreas(ctx, dataset, region, parent)
}

func (s *Service) Regions(ctx context.Context, dataset string) ([]string, error) {
	return s.source.Regions(ctx, dataset)
}

func (s *Service) Selection(sessionID string) (*domain.Selection, error) {
	sel, ok := s.sessions.Snapshot(sessionID)
	if !ok {
		return nil, constants.ErrUnauthorized
	}
	return sel, nil
}

// ApplyPatch runs the patch through the selection setters in a fixed order. Either the
// whole patch applies or none of it does.
func (s *Service) ApplyPatch(ctx context.Context, sessionID string, patch dto.SelectionPatch) (*domain.Selection, error) {
	sel, ok, err := s.sessions.Update(sessionID, func(sel *domain.Selection) error {
		return applyPatch(sel, patch)
	})
	if !ok {
		return nil, constants.ErrUnauthorized
	}
	if err != nil {
		logger.Infof(ctx, "selection patch rejected: %s", err.Error())
		return nil, err
	}
	return sel, nil
}

func applyPatch(sel *domain.Selection, p dto.SelectionPatch) error {
	if p.Regions != nil {
		if err := sel.SetRegions(*p.Regions); err != nil {
			return err
		}
	}
	if p.Indices != nil {
		if err := sel.SetIndices(*p.Indices); err != nil {
			return err
		}
	}
	if p.ActiveRegion != nil {
		if err := sel.SetActiveRegion(*p.ActiveRegion); err != nil {
			return err
		}
	}
	if p.ActiveIndex != nil {
		if err := sel.SetActiveIndex(*p.ActiveIndex); err != nil {
			return err
		}
	}
	if p.ActiveArea != nil {
		sel.SetActiveArea(*p.ActiveArea)
	}
	if p.LocalAuthority != nil {
		sel.SetActiveLocalAuthority(*p.LocalAuthority)
	}
	if p.Palette != nil {
		if err := sel.SetPalette(*p.Palette); err != nil {
			return err
		}
	}
	if p.Comparison != nil {
		sel.SetComparison(*p.Comparison)
	}
	if p.WelshRegion != nil {
		sel.SetWelshRegion(*p.WelshRegion)
	}
	if p.WelshLocalAuthority != nil {
		sel.SetWelshLocalAuthority(*p.WelshLocalAuthority)
	}
	if p.WelshIndex != nil {
		if err := sel.SetWelshIndex(*p.WelshIndex); err != nil {
			return err
		}
	}
	if p.CombinedIndex != nil {
		if err := sel.SetCombinedIndex(*p.CombinedIndex); err != nil {
			return err
		}
	}
	if p.Highlighted != nil {
		sel.SetHighlighted(*p.Highlighted)
	}
	return nil
}

// Render builds one view for the session. Defaults filled in while rendering, such as
// the first local authority of a region, are written back to the session.
func (s *Service) Render(ctx context.Context, sessionID, view string) (*dto.ViewResult, error) {
	build, ok := views[view]
	if !ok {
		return nil, fmt.Errorf("%w: %q", constants.ErrUnknownView, view)
	}
	sel, ok := s.sessions.Snapshot(sessionID)
	if !ok {
		return nil, constants.ErrUnauthorized
	}

	ctx = logger.WithFields(ctx, "view", view)
	r := &render{svc: s, ctx: ctx, sessionID: sessionID, sel: sel}
	res, err := build(r)
	if err != nil {
		return nil, err
	}

	res.View = view
	res.Selection = r.sel
	res.Palette, _ = s.catalog.Palette(r.sel.Palette)
	res.Options.Palettes = s.catalog.PaletteNames()
	for _, m := range res.Maps {
		metrics.ObservePipeline(view, m.Stats.Dropped)
		if m.Stats.Dropped > 0 {
			logger.Debugf(ctx, "map %q dropped %d of %d rows without a boundary", m.Title, m.Stats.Dropped, m.Stats.Input)
		}
	}
	if len(res.Maps) == 0 {
		metrics.ObservePipeline(view, 0)
	}
	return res, nil
}

// Views lists the view ids in menu order.
func Views() []string {
	return []string{ViewLABreakdown, ViewLAComparison, ViewLSOABreakdown, ViewWalesLSOA, ViewEnglandWales}
}

// render carries one view computation.
type render struct {
	svc       *Service
	ctx       context.Context
	sessionID string
	sel       *domain.Selection
}

// reconcile applies fn to the local selection and to the stored one.
func (r *render) reconcile(fn func(sel *domain.Selection)) {
	before := *r.sel
	fn(r.sel)
	if before.ActiveLocalAuthority == r.sel.ActiveLocalAuthority &&
		before.WelshRegion == r.sel.WelshRegion &&
		before.WelshLocalAuthority == r.sel.WelshLocalAuthority {
		return
	}
	_, _, _ = r.svc.sessions.Update(r.sessionID, func(stored *domain.Selection) error {
		fn(stored)
		return nil
	})
}

func (r *render) mapPanel(
	title string,
	areas *domain.AreaTable,
	boundaries *domain.BoundaryTable,
	req pipeline.Request,
	colorIndex domain.Index,
) (dto.MapPanel, domain.FilteredSubset) {
	req.JoinKey = r.svc.joinKey
	req.ColorIndex = colorIndex.ID
	subset := pipeline.Compute(areas, boundaries, req)

	if r.svc.overflow.Exceeds(len(subset.MapRows)) {
		logger.Warnf(r.ctx, "map %q has %d rows, over the renderer ceiling of %d", title, len(subset.MapRows), r.svc.overflow.Ceiling)
	}

	schema := dto.SchemaFor(areas.Granularity)
	panel := dto.MapPanel{
		Title:       title,
		ColorIndex:  colorIndex,
		JoinKey:     "area_code",
		BoundaryKey: "properties." + schema.Code,
		Partition:   subset.Partition,
		Rows:        subset.MapRows,
		Stats:       subset.Stats,
	}
	if r.svc.joinKey == pipeline.JoinByName {
		panel.JoinKey = "area_name"
		panel.BoundaryKey = "properties." + schema.Name
	}
	if boundaries != nil {
		panel.BoundaryURL = boundaries.URL
	}
	return panel, subset
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}

// activeScope restricts to the active region, or to nothing when there is none.
func activeScope(region string) pipeline.RegionScope {
	if region == "" {
		return pipeline.OnlyRegions()
	}
	return pipeline.OnlyRegions(region)
}
