// Package render turns view results into something a browser can draw: a Vega-Lite
// document for the maps and charts, or a PNG bar chart.
package render

import (
	"github.com/ougirez/iodmap/internal/domain"
	"github.com/ougirez/iodmap/internal/domain/dto"
)

const vegaLiteSchema = "https://vega.github.io/schema/vega-lite/v5.json"

type Spec = map[string]interface{}

// VegaLite builds the document of a view: the maps side by side, the bar chart below.
func VegaLite(res *dto.ViewResult) Spec {
	rows := make([]interface{}, 0, 2)
	if len(res.Maps) > 0 {
		maps := make([]interface{}, 0, len(res.Maps))
		for _, m := range res.Maps {
			maps = append(maps, mapLayer(m, res.Palette))
		}
		rows = append(rows, Spec{"hconcat": maps})
	}
	if res.Chart != nil {
		rows = append(rows, barLayer(res.Chart))
	}

	return Spec{
		"$schema": vegaLiteSchema,
		"title":   res.View,
		"vconcat": rows,
		"config": Spec{
			"view":   Spec{"strokeWidth": 0},
			"axis":   Spec{"labelLimit": 0, "titleLimit": 0},
			"legend": Spec{"labelLimit": 0, "titleLimit": 0, "titleFontSize": 13, "labelFontSize": 13},
		},
	}
}

// ColorScale is the ordinal decile scale of a palette.
func ColorScale(p domain.Palette) Spec {
	domainValues := make([]int, 0, domain.MaxDecile)
	for d := domain.MinDecile; d <= domain.MaxDecile; d++ {
		domainValues = append(domainValues, d)
	}
	scale := Spec{"domain": domainValues, "reverse": p.Reverse}
	if p.Scheme != "" {
		scale["scheme"] = p.Scheme
	} else {
		scale["range"] = p.Colors
	}
	return scale
}

func mapLayer(m dto.MapPanel, palette domain.Palette) Spec {
	values := make([]interface{}, 0, len(m.Rows))
	for _, r := range m.Rows {
		row := Spec{"area_code": r.AreaCode, "area_name": r.AreaName}
		if r.Value != nil {
			row["value"] = *r.Value
		}
		values = append(values, row)
	}

	return Spec{
		"title":  m.Title,
		"width":  500,
		"height": 500,
		"data": Spec{
			"url":    m.BoundaryURL,
			"format": Spec{"type": "json", "property": "features"},
		},
		"transform": []interface{}{
			Spec{
				"lookup": m.BoundaryKey,
				"from": Spec{
					"data":   Spec{"values": values},
					"key":    m.JoinKey,
					"fields": []string{"area_code", "area_name", "value"},
				},
			},
			// Features without a matching row stay out of the map.
			Spec{"filter": "isValid(datum.area_code)"},
		},
		"projection": Spec{"type": "identity", "reflectY": true},
		"mark":       Spec{"type": "geoshape", "stroke": "black"},
		"encoding": Spec{
			"color": Spec{
				"field":  "value",
				"type":   "ordinal",
				"title":  m.ColorIndex.Name,
				"scale":  ColorScale(palette),
				"legend": Spec{"orient": "top"},
			},
			"tooltip": []interface{}{
				Spec{"field": "area_name", "type": "nominal", "title": "Area"},
				Spec{"field": "value", "type": "ordinal", "title": m.ColorIndex.Name},
			},
		},
	}
}

func barLayer(c *dto.ChartPanel) Spec {
	values := make([]interface{}, 0, len(c.Rows))
	order := make([]string, 0, len(c.Rows))
	seen := make(map[string]struct{}, len(c.Rows))
	for _, r := range c.Rows {
		label := Label(r, c.GroupBy)
		row := Spec{"label": label, "area_name": r.AreaName, "index_name": r.IndexName}
		if r.Decile != nil {
			row["decile"] = *r.Decile
		}
		values = append(values, row)
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			order = append(order, label)
		}
	}

	return Spec{
		"title":  c.Title,
		"width":  400,
		"height": 400,
		"data":   Spec{"values": values},
		"mark":   Spec{"type": "bar", "color": "#0000ff"},
		"encoding": Spec{
			"x": Spec{
				"field": "decile",
				"type":  "quantitative",
				"title": "Decile",
				"scale": Spec{"domain": []int{0, domain.MaxDecile}},
				"axis":  Spec{"tickMinStep": 1},
			},
			"y": Spec{"field": "label", "type": "nominal", "title": nil, "sort": order},
		},
	}
}

// Label is the bar label of a long row.
func Label(r domain.LongRow, groupBy string) string {
	if groupBy == "index_name" {
		return r.IndexName
	}
	return r.AreaName
}
