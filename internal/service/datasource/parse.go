package datasource

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/ougirez/iodmap/internal/domain"
	"github.com/ougirez/iodmap/internal/domain/dto"
	"github.com/shopspring/decimal"
)

var errAbsent = errors.New("absent")

// ParseAreasCSV reads a published table. The header must carry every identity column of
// schema and every index column; extra columns are ignored.
func ParseAreasCSV(data []byte, schema dto.Schema, indices []domain.Index) ([]domain.AreaRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("csv has no header")
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	for _, k := range schema.Required() {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}
	for _, idx := range indices {
		if _, ok := col[string(idx.ID)]; !ok {
			return nil, fmt.Errorf("missing index column: %s", idx.ID)
		}
	}

	out := make([]domain.AreaRecord, 0, len(rows)-1)
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		rec := rows[rowIdx]
		get := func(name string) string {
			if name == "" {
				return ""
			}
			i := col[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		area := domain.AreaRecord{
			AreaCode:       get(schema.Code),
			AreaName:       get(schema.Name),
			ParentAreaCode: get(schema.ParentCode),
			ParentAreaName: get(schema.ParentName),
			RegionName:     get(schema.Region),
			Deciles:        make(map[domain.IndexID]int, len(indices)),
		}
		if area.AreaCode == "" {
			return nil, fmt.Errorf("row %d: %s is required", rowIdx+1, schema.Code)
		}

		for _, idx := range indices {
			d, err := parseDecile(get(string(idx.ID)))
			if errors.Is(err, errAbsent) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", rowIdx+1, idx.ID, err)
			}
			area.Deciles[idx.ID] = d
		}
		out = append(out, area)
	}
	return out, nil
}

// parseDecile accepts "3" and "3.0"; blank and NaN cells are absent values.
func parseDecile(cell string) (int, error) {
	if cell == "" || strings.EqualFold(cell, "nan") {
		return 0, errAbsent
	}
	v, err := decimal.NewFromString(cell)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", cell)
	}
	if !v.IsInteger() {
		return 0, fmt.Errorf("decile %s is not an integer", cell)
	}
	d := v.IntPart()
	if d < domain.MinDecile || d > domain.MaxDecile {
		return 0, fmt.Errorf("decile %d out of range [%d,%d]", d, domain.MinDecile, domain.MaxDecile)
	}
	return int(d), nil
}

// ParseBoundaries reads a GeoJSON FeatureCollection whose feature properties carry the
// identity columns of schema.
func ParseBoundaries(data []byte, schema dto.Schema) ([]domain.BoundaryRecord, error) {
	var fc dto.FeatureCollection
	if err := sonic.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("sonic.Unmarshal: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("want a FeatureCollection, got %q", fc.Type)
	}

	out := make([]domain.BoundaryRecord, 0, len(fc.Features))
	for i, f := range fc.Features {
		b := domain.BoundaryRecord{
			AreaCode:       property(f.Properties, schema.Code),
			AreaName:       property(f.Properties, schema.Name),
			ParentAreaName: property(f.Properties, schema.ParentName),
			Geometry:       f.Geometry,
		}
		if b.AreaCode == "" && b.AreaName == "" {
			return nil, fmt.Errorf("feature %d has neither %s nor %s", i, schema.Code, schema.Name)
		}
		out = append(out, b)
	}
	return out, nil
}

func property(props map[string]interface{}, key string) string {
	if key == "" {
		return ""
	}
	switch v := props[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
