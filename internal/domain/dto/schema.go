package dto

import "github.com/ougirez/iodmap/internal/domain"

// Schema names the identity columns of a published table or the identity properties of
// a boundary collection. Index columns come from the catalogue.
type Schema struct {
	Code       string
	Name       string
	ParentCode string
	ParentName string
	Region     string
}

var (
	LASchema = Schema{
		Code:   "lad19cd",
		Name:   "lad19nm",
		Region: "region_name",
	}
	LSOASchema = Schema{
		Code:       "lsoa11cd",
		Name:       "lsoa11nm",
		ParentCode: "lad19cd",
		ParentName: "lad19nm",
		Region:     "region_name",
	}
)

func SchemaFor(g domain.Granularity) Schema {
	if g == domain.GranularityLSOA {
		return LSOASchema
	}
	return LASchema
}

// Required lists the identity columns that must be present in a header.
func (s Schema) Required() []string {
	out := []string{s.Code, s.Name}
	for _, c := range []string{s.ParentCode, s.ParentName, s.Region} {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
