package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/ougirez/iodmap/internal/pkg/store/xpgx"
)

func TestListAreasQuery(t *testing.T) {
	region := "London"
	sql, args, err := listAreasQuery(ListAreasOpts{Dataset: "english_la", RegionName: &region}).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if !strings.Contains(sql, "FROM areas WHERE dataset = $1 AND region_name = $2") {
		t.Fatalf("unexpected sql: %s", sql)
	}
	if !strings.Contains(sql, "coalesce(parent_area_code, '') as parent_area_code") {
		t.Fatalf("parent columns must be null-safe: %s", sql)
	}
	if len(args) != 2 || args[0] != "english_la" || args[1] != "London" {
		t.Fatalf("args: got=%v", args)
	}
}

func TestListAreasQueryParent(t *testing.T) {
	parent := "Camden"
	sql, args, err := listAreasQuery(ListAreasOpts{Dataset: "english_lsoa", ParentArea: &parent}).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if !strings.Contains(sql, "(parent_area_code = $2 OR parent_area_name = $3)") {
		t.Fatalf("unexpected sql: %s", sql)
	}
	if len(args) != 3 {
		t.Fatalf("args: want=3 got=%d", len(args))
	}
}

func TestListRegionsQuery(t *testing.T) {
	sql, _, err := listRegionsQuery("english_la").ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if !strings.Contains(sql, "region_name IS NOT NULL") || !strings.HasPrefix(sql, "SELECT distinct region_name") {
		t.Fatalf("unexpected sql: %s", sql)
	}
}

func TestWrapErr(t *testing.T) {
	if !errors.Is(wrapErr(pgx.ErrNoRows), constants.ErrDBNotFound) {
		t.Fatalf("ErrNoRows must map to ErrDBNotFound")
	}
	other := errors.New("boom")
	if wrapErr(other) != other {
		t.Fatalf("unrelated errors must pass through")
	}
}

// TestStoreIntegration runs against a real database seeded with schema.sql.
func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("IOD_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("IOD_TEST_PG_DSN not set")
	}
	ctx := context.Background()

	pool, err := xpgx.Connect(ctx, dsn, 5*time.Second)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer pool.Close()

	schema, err := os.ReadFile("schema.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `delete from areas where dataset = 'test_la'`); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	_, err = pool.Execx(ctx, builder().Insert(tableAreas).
		Columns("dataset", "row_no", "area_code", "area_name", "region_name", "deciles").
		Values("test_la", 1, "E09000007", "Camden", "London", `{"b_income_deprivation_domain": 4}`).
		Values("test_la", 2, "E08000035", "Leeds", "Yorkshire and The Humber", `{}`))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := NewStore(pool)
	areas, err := s.ListAreas(ctx, ListAreasOpts{Dataset: "test_la"})
	if err != nil {
		t.Fatalf("ListAreas: %v", err)
	}
	if len(areas) != 2 || areas[0].AreaName != "Camden" || areas[0].Deciles["b_income_deprivation_domain"] != 4 {
		t.Fatalf("ListAreas: got=%+v", areas)
	}

	regions, err := s.ListRegions(ctx, "test_la")
	if err != nil {
		t.Fatalf("ListRegions: %v", err)
	}
	if len(regions) != 2 || regions[0] != "London" {
		t.Fatalf("ListRegions: got=%v", regions)
	}

	if _, err := s.GetArea(ctx, "test_la", "missing"); !errors.Is(err, constants.ErrDBNotFound) {
		t.Fatalf("GetArea(missing): want ErrDBNotFound got=%v", err)
	}
}
