package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ougirez/iodmap/internal/domain"
	"github.com/ougirez/iodmap/internal/domain/dto"
	"github.com/ougirez/iodmap/internal/pkg/catalog"
	"github.com/ougirez/iodmap/internal/pkg/config"
	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/ougirez/iodmap/internal/service/pipeline"
	"github.com/ougirez/iodmap/internal/service/session"
)

type memSource struct {
	areas map[string]*domain.AreaTable
	fail  error
}

func (m *memSource) Areas(_ context.Context, id string) (*domain.AreaTable, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	t, ok := m.areas[id]
	if !ok {
		return nil, fmt.Errorf("no table %s", id)
	}
	return t, nil
}

func (m *memSource) boundaries(id string, keep func(domain.AreaRecord) bool) *domain.BoundaryTable {
	var out []domain.BoundaryRecord
	for _, r := range m.areas[id].Records {
		if keep(r) {
			out = append(out, domain.BoundaryRecord{AreaCode: r.AreaCode, AreaName: r.AreaName, ParentAreaName: r.ParentAreaName})
		}
	}
	return domain.NewBoundaryTable("mem://"+id, out)
}

func (m *memSource) LABoundaries(context.Context) (*domain.BoundaryTable, error) {
	return m.boundaries(config.DatasetEnglishLA, func(domain.AreaRecord) bool { return true }), nil
}

func (m *memSource) EnglishLSOABoundaries(_ context.Context, region string) (*domain.BoundaryTable, error) {
	rule := pipeline.NewPartitionRule(config.DefaultOverflowLAs, 5000)
	table := &domain.BoundaryTable{URL: "mem://lsoa/" + region, Buckets: map[domain.Partition][]domain.BoundaryRecord{
		domain.PartitionMain: {}, domain.PartitionOverflow: {},
	}}
	for _, id := range []string{config.DatasetEnglishLSOA, config.DatasetEnglandWales} {
		for _, r := range m.areas[id].Records {
			if r.RegionName != region {
				continue
			}
			p := rule.Select(r.ParentAreaName)
			table.Buckets[p] = append(table.Buckets[p], domain.BoundaryRecord{AreaCode: r.AreaCode, AreaName: r.AreaName})
		}
	}
	return table, nil
}

func (m *memSource) WelshLSOABoundaries(context.Context) (*domain.BoundaryTable, error) {
	return m.boundaries(config.DatasetWelshLSOA, func(domain.AreaRecord) bool { return true }), nil
}

func (m *memSource) Area(_ context.Context, id, code string) (*domain.AreaRecord, error) {
	for _, r := range m.areas[id].Records {
		if r.AreaCode == code {
			return &r, nil
		}
	}
	return nil, constants.ErrDBNotFound
}

func (m *memSource) ListAreas(_ context.Context, id, region, parent string) ([]domain.AreaRecord, error) {
	records := m.areas[id].Records
	if region != "" {
		records = pipeline.FilterRegions(records, pipeline.OnlyRegions(region))
	}
	if parent != "" {
		records = pipeline.NarrowToParent(records, parent)
	}
	return records, nil
}

func (m *memSource) Regions(_ context.Context, id string) ([]string, error) {
	return pipeline.RegionOptions(m.areas[id].Records), nil
}

func deciles(d domain.IndexDomain, seed int) map[domain.IndexID]int {
	out := make(map[domain.IndexID]int)
	for i, idx := range catalog.MustDefault().Indices(d) {
		out[idx.ID] = (seed+i)%10 + 1
	}
	return out
}

func newMemSource() *memSource {
	las := []domain.AreaRecord{
		{AreaCode: "E09000007", AreaName: "Camden", RegionName: "London"},
		{AreaCode: "E09000002", AreaName: "Barking and Dagenham", RegionName: "London"},
		{AreaCode: "E08000035", AreaName: "Leeds", RegionName: "Yorkshire and The Humber"},
		{AreaCode: "E06000023", AreaName: "Bristol", RegionName: "South West"},
		{AreaCode: "E06000035", AreaName: "Medway", RegionName: "South East"},
		{AreaCode: "E07000223", AreaName: "Adur", RegionName: "South East"},
	}
	for i := range las {
		las[i].Deciles = deciles(domain.DomainEnglish, i)
	}

	var lsoas, combined []domain.AreaRecord
	for _, la := range las {
		for i := 0; i < 2; i++ {
			r := domain.AreaRecord{
				AreaCode:       fmt.Sprintf("%s%d", la.AreaCode, i),
				AreaName:       fmt.Sprintf("%s 00%dA", la.AreaName, i),
				ParentAreaCode: la.AreaCode,
				ParentAreaName: la.AreaName,
				RegionName:     la.RegionName,
			}
			r.Deciles = deciles(domain.DomainEnglish, i)
			lsoas = append(lsoas, r)
			r.Deciles = deciles(domain.DomainCombined, i)
			combined = append(combined, r)
		}
	}

	var welsh []domain.AreaRecord
	for i, la := range []struct{ code, name, region string }{
		{"W06000015", "Cardiff", "South East Wales"},
		{"W06000001", "Isle of Anglesey", "North Wales"},
	} {
		r := domain.AreaRecord{
			AreaCode:       fmt.Sprintf("W0100%d", i),
			AreaName:       la.name + " 001A",
			ParentAreaCode: la.code,
			ParentAreaName: la.name,
			RegionName:     la.region,
			Deciles:        deciles(domain.DomainWelsh, i),
		}
		welsh = append(welsh, r)
		c := r
		c.RegionName = ""
		c.Deciles = deciles(domain.DomainCombined, i)
		combined = append(combined, c)
	}

	return &memSource{areas: map[string]*domain.AreaTable{
		config.DatasetEnglishLA:    {Country: domain.CountryEngland, Granularity: domain.GranularityLA, Domain: domain.DomainEnglish, Records: las},
		config.DatasetEnglishLSOA:  {Country: domain.CountryEngland, Granularity: domain.GranularityLSOA, Domain: domain.DomainEnglish, Records: lsoas},
		config.DatasetWelshLSOA:    {Country: domain.CountryWales, Granularity: domain.GranularityLSOA, Domain: domain.DomainWelsh, Records: welsh},
		config.DatasetEnglandWales: {Country: domain.CountryEngland, Granularity: domain.GranularityLSOA, Domain: domain.DomainCombined, Records: combined},
	}}
}

func newTestService(src Source) (*Service, *session.Store, string) {
	cat := catalog.MustDefault()
	sessions := session.NewStore(cat.Rules(5), time.Hour)
	svc := NewService(src, cat, sessions, pipeline.NewPartitionRule(config.DefaultOverflowLAs, 5000), pipeline.JoinByCode)
	return svc, sessions, sessions.Create()
}

func strs(v ...string) *[]string { return &v }
func str(v string) *string       { return &v }

func TestRenderComparison(t *testing.T) {
	svc, _, id := newTestService(newMemSource())
	ctx := context.Background()

	_, err := svc.ApplyPatch(ctx, id, dto.SelectionPatch{
		Comparison:  strs("Leeds", "Bristol", "Camden"),
		ActiveIndex: str("Income Deprivation"),
	})
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}

	res, err := svc.Render(ctx, id, ViewLAComparison)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(res.Chart.Rows) != 3 {
		t.Fatalf("chart rows: want=3 got=%d", len(res.Chart.Rows))
	}
	src := newMemSource().areas[config.DatasetEnglishLA]
	for _, row := range res.Chart.Rows {
		var want int
		for _, r := range src.Records {
			if r.AreaName == row.AreaName {
				want = r.Deciles["b_income_deprivation_domain"]
			}
		}
		if row.Decile == nil || *row.Decile != want {
			t.Fatalf("%s: want=%d got=%v", row.AreaName, want, row.Decile)
		}
	}
}

func TestRenderLSOABreakdownReconcilesAndPartitions(t *testing.T) {
	svc, sessions, id := newTestService(newMemSource())
	ctx := context.Background()

	if _, err := svc.ApplyPatch(ctx, id, dto.SelectionPatch{ActiveRegion: str("South East")}); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	res, err := svc.Render(ctx, id, ViewLSOABreakdown)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Selection.ActiveLocalAuthority != "Adur" {
		t.Fatalf("reconciled LA: want=Adur got=%s", res.Selection.ActiveLocalAuthority)
	}
	stored, _ := sessions.Snapshot(id)
	if stored.ActiveLocalAuthority != "Adur" {
		t.Fatalf("reconciled LA not stored: got=%s", stored.ActiveLocalAuthority)
	}
	if got := res.Options.LocalAuthorities; len(got) != 2 || got[0] != "Adur" || got[1] != "Medway" {
		t.Fatalf("LA options: got=%v", got)
	}
	if m := res.Maps[0]; m.Partition != domain.PartitionMain || len(m.Rows) != 2 {
		t.Fatalf("Adur map: partition=%s rows=%d", m.Partition, len(m.Rows))
	}

	if _, err := svc.ApplyPatch(ctx, id, dto.SelectionPatch{LocalAuthority: str("Medway")}); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	res, err = svc.Render(ctx, id, ViewLSOABreakdown)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if m := res.Maps[0]; m.Partition != domain.PartitionOverflow || len(m.Rows) != 2 || m.Stats.Dropped != 0 {
		t.Fatalf("Medway map: partition=%s rows=%d stats=%+v", m.Partition, len(m.Rows), m.Stats)
	}
}

func TestRenderUnknownLocalAuthorityIsEmpty(t *testing.T) {
	svc, _, id := newTestService(newMemSource())
	ctx := context.Background()
	if _, err := svc.ApplyPatch(ctx, id, dto.SelectionPatch{ActiveRegion: str("London"), LocalAuthority: str("Gotham")}); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	res, err := svc.Render(ctx, id, ViewLSOABreakdown)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(res.Maps[0].Rows) != 0 {
		t.Fatalf("unknown LA: want no rows got=%d", len(res.Maps[0].Rows))
	}
}

func TestRenderEmptyRegions(t *testing.T) {
	svc, _, id := newTestService(newMemSource())
	ctx := context.Background()
	if _, err := svc.ApplyPatch(ctx, id, dto.SelectionPatch{Regions: strs(), ActiveArea: str("Camden")}); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	res, err := svc.Render(ctx, id, ViewLABreakdown)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, m := range res.Maps {
		if len(m.Rows) != 0 {
			t.Fatalf("map %q: want no rows got=%d", m.Title, len(m.Rows))
		}
	}
	if len(res.Chart.Rows) != 0 {
		t.Fatalf("chart: want no rows got=%d", len(res.Chart.Rows))
	}
}

func TestRenderLABreakdownChartForClickedArea(t *testing.T) {
	svc, _, id := newTestService(newMemSource())
	ctx := context.Background()
	if _, err := svc.ApplyPatch(ctx, id, dto.SelectionPatch{ActiveRegion: str("London"), ActiveArea: str("Camden")}); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	res, err := svc.Render(ctx, id, ViewLABreakdown)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(res.Chart.Rows) != 10 {
		t.Fatalf("chart rows: want=10 got=%d", len(res.Chart.Rows))
	}
	if len(res.Maps) != 2 || len(res.Maps[0].Rows) != 6 || len(res.Maps[1].Rows) != 2 {
		t.Fatalf("maps: got=%d overview=%d regional=%d", len(res.Maps), len(res.Maps[0].Rows), len(res.Maps[1].Rows))
	}
	if res.Maps[0].BoundaryKey != "properties.lad19cd" || res.Maps[0].JoinKey != "area_code" {
		t.Fatalf("join keys: got=%s/%s", res.Maps[0].JoinKey, res.Maps[0].BoundaryKey)
	}
}

func TestRenderBreakdownChartsKeepEveryIndex(t *testing.T) {
	svc, _, id := newTestService(newMemSource())
	ctx := context.Background()
	_, err := svc.ApplyPatch(ctx, id, dto.SelectionPatch{
		Indices:      strs("Crime", "Income Deprivation"),
		ActiveRegion: str("London"),
		ActiveArea:   str("Camden"),
	})
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	res, err := svc.Render(ctx, id, ViewLABreakdown)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(res.Chart.Rows) != 10 {
		t.Fatalf("chart rows: want=10 got=%d", len(res.Chart.Rows))
	}
	if len(res.Options.Indices) != 2 {
		t.Fatalf("index options follow the filter: want=2 got=%d", len(res.Options.Indices))
	}

	if _, err := svc.ApplyPatch(ctx, id, dto.SelectionPatch{LocalAuthority: str("Camden"), ActiveArea: str("Camden 000A")}); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	res, err = svc.Render(ctx, id, ViewLSOABreakdown)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(res.Chart.Rows) != 10 {
		t.Fatalf("lsoa chart rows: want=10 got=%d", len(res.Chart.Rows))
	}
}

func TestRenderWales(t *testing.T) {
	svc, _, id := newTestService(newMemSource())
	res, err := svc.Render(context.Background(), id, ViewWalesLSOA)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Selection.WelshRegion != "North Wales" || res.Selection.WelshLocalAuthority != "Isle of Anglesey" {
		t.Fatalf("welsh defaults: %s/%s", res.Selection.WelshRegion, res.Selection.WelshLocalAuthority)
	}
	if len(res.Maps[0].Rows) != 1 {
		t.Fatalf("welsh map rows: want=1 got=%d", len(res.Maps[0].Rows))
	}
}

func TestRenderEnglandWalesHighlights(t *testing.T) {
	svc, _, id := newTestService(newMemSource())
	ctx := context.Background()
	_, err := svc.ApplyPatch(ctx, id, dto.SelectionPatch{
		ActiveRegion:        str("London"),
		LocalAuthority:      str("Camden"),
		WelshLocalAuthority: str("Cardiff"),
		CombinedIndex:       str("Employment Deprivation"),
		Highlighted:         strs("Camden 000A", "Cardiff 001A", "Leeds 000A"),
	})
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	res, err := svc.Render(ctx, id, ViewEnglandWales)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(res.Maps) != 2 || len(res.Maps[0].Rows) != 2 || len(res.Maps[1].Rows) != 1 {
		t.Fatalf("maps: %+v", res.Maps)
	}
	if len(res.Chart.Rows) != 2 {
		t.Fatalf("highlighted rows: want=2 got=%d", len(res.Chart.Rows))
	}
}

func TestRenderEnglandWalesOptionsFromCombinedTable(t *testing.T) {
	src := newMemSource()
	// The LA table knows Ashford but not Adur; the combined table has it the other way round.
	var las []domain.AreaRecord
	for _, r := range src.areas[config.DatasetEnglishLA].Records {
		if r.AreaName != "Adur" {
			las = append(las, r)
		}
	}
	las = append(las, domain.AreaRecord{AreaCode: "E07000105", AreaName: "Ashford", RegionName: "South East"})
	src.areas[config.DatasetEnglishLA].Records = las

	svc, _, id := newTestService(src)
	ctx := context.Background()
	if _, err := svc.ApplyPatch(ctx, id, dto.SelectionPatch{ActiveRegion: str("South East")}); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	res, err := svc.Render(ctx, id, ViewEnglandWales)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := res.Options.LocalAuthorities
	if len(got) != 2 || got[0] != "Adur" || got[1] != "Medway" {
		t.Fatalf("local authorities: want=[Adur Medway] got=%v", got)
	}
	if res.Selection.ActiveLocalAuthority != "Adur" {
		t.Fatalf("default LA: want=Adur got=%s", res.Selection.ActiveLocalAuthority)
	}
	if len(res.Maps[0].Rows) != 2 {
		t.Fatalf("english map rows: want=2 got=%d", len(res.Maps[0].Rows))
	}
}

func TestApplyPatchIsAtomic(t *testing.T) {
	svc, _, id := newTestService(newMemSource())
	_, err := svc.ApplyPatch(context.Background(), id, dto.SelectionPatch{
		Regions:    strs("London"),
		WelshIndex: str("Crime"),
	})
	if !errors.Is(err, constants.ErrInvalidSelection) {
		t.Fatalf("want ErrInvalidSelection got=%v", err)
	}
	sel, _ := svc.Selection(id)
	if len(sel.Regions) != 9 {
		t.Fatalf("rejected patch partly applied: %v", sel.Regions)
	}
}

func TestRenderErrors(t *testing.T) {
	src := newMemSource()
	svc, _, id := newTestService(src)
	ctx := context.Background()

	if _, err := svc.Render(ctx, id, "nope"); !errors.Is(err, constants.ErrUnknownView) {
		t.Fatalf("unknown view: got=%v", err)
	}
	if _, err := svc.Render(ctx, "missing", ViewLABreakdown); !errors.Is(err, constants.ErrUnauthorized) {
		t.Fatalf("unknown session: got=%v", err)
	}

	src.fail = fmt.Errorf("%w: upstream down", constants.ErrDataUnavailable)
	if _, err := svc.Render(ctx, id, ViewLABreakdown); !errors.Is(err, constants.ErrDataUnavailable) {
		t.Fatalf("data unavailable: got=%v", err)
	}
}
