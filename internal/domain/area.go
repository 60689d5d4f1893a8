package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Country string

const (
	CountryEngland Country = "england"
	CountryWales   Country = "wales"
)

type Granularity string

const (
	GranularityLA   Granularity = "la"
	GranularityLSOA Granularity = "lsoa"
)

type IndexDomain string

const (
	DomainEnglish  IndexDomain = "english"
	DomainWelsh    IndexDomain = "welsh"
	DomainCombined IndexDomain = "combined"
)

// IndexID is the column name of an index in the published tables.
type IndexID string

type Index struct {
	ID      IndexID `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Tooltip string  `json:"tooltip" yaml:"tooltip"`
}

const (
	MinDecile = 1
	MaxDecile = 10
)

// AreaRecord is one row of a published IoD table. A missing Deciles key means the
// source had no value for that index.
type AreaRecord struct {
	AreaCode       string          `json:"area_code" db:"area_code" validate:"required"`
	AreaName       string          `json:"area_name" db:"area_name" validate:"required"`
	ParentAreaCode string          `json:"parent_area_code,omitempty" db:"parent_area_code"`
	ParentAreaName string          `json:"parent_area_name,omitempty" db:"parent_area_name"`
	RegionName     string          `json:"region_name,omitempty" db:"region_name"`
	Deciles        map[IndexID]int `json:"deciles" db:"deciles" validate:"dive,min=1,max=10"`
}

func (r AreaRecord) Decile(id IndexID) (int, bool) {
	d, ok := r.Deciles[id]
	return d, ok
}

type AreaTable struct {
	Country     Country
	Granularity Granularity
	Domain      IndexDomain
	Records     []AreaRecord
}

var validate = validator.New()

// Validate checks every record and that area codes are unique within the table.
func (t *AreaTable) Validate() error {
	seen := make(map[string]int, len(t.Records))
	for i := range t.Records {
		r := &t.Records[i]
		if err := validate.Struct(r); err != nil {
			return fmt.Errorf("record %d (%s): %w", i, r.AreaCode, err)
		}
		if prev, ok := seen[r.AreaCode]; ok {
			return fmt.Errorf("record %d: area_code %s duplicates record %d", i, r.AreaCode, prev)
		}
		seen[r.AreaCode] = i
	}
	return nil
}
