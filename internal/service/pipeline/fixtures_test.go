package pipeline

import (
	"fmt"

	"github.com/ougirez/iodmap/internal/domain"
)

var testIndices = []domain.Index{
	{ID: "a_index_of_multiple_deprivation_imd", Name: "Index of Multiple Deprivation (IMD)"},
	{ID: "b_income_deprivation_domain", Name: "Income Deprivation"},
	{ID: "c_employment_deprivation_domain", Name: "Employment Deprivation"},
	{ID: "d_education_skills_and_training_domain", Name: "Education, Skills and Training"},
	{ID: "e_health_deprivation_and_disability_domain", Name: "Health Deprivation and Disability"},
	{ID: "f_crime_domain", Name: "Crime"},
	{ID: "g_barriers_to_housing_and_services_domain", Name: "Barriers to Housing and Services"},
	{ID: "h_living_environment_deprivation_domain", Name: "Living Environment Deprivation"},
	{ID: "i_income_deprivation_affecting_children_index_idaci", Name: "Income Deprivation Affecting Children (IDACI)"},
	{ID: "j_income_deprivation_affecting_older_people_index_idaopi", Name: "Income Deprivation Affecting Older People (IDAOPI)"},
}

const incomeID domain.IndexID = "b_income_deprivation_domain"

func deciles(seed int) map[domain.IndexID]int {
	out := make(map[domain.IndexID]int, len(testIndices))
	for i, idx := range testIndices {
		out[idx.ID] = (seed+i)%10 + 1
	}
	return out
}

func la(code, name, region string, seed int) domain.AreaRecord {
	return domain.AreaRecord{AreaCode: code, AreaName: name, RegionName: region, Deciles: deciles(seed)}
}

func laTable() *domain.AreaTable {
	return &domain.AreaTable{
		Country:     domain.CountryEngland,
		Granularity: domain.GranularityLA,
		Domain:      domain.DomainEnglish,
		Records: []domain.AreaRecord{
			la("E09000007", "Camden", "London", 3),
			la("E09000002", "Barking and Dagenham", "London", 0),
			la("E09000003", "Barnet", "London", 6),
			la("E08000035", "Leeds", "Yorkshire and The Humber", 2),
			la("E06000023", "Bristol, City of", "South West", 4),
			la("E06000035", "Medway", "South East", 5),
			la("E06000043", "Brighton and Hove", "South East", 7),
			la("E07000223", "Adur", "South East", 8),
		},
	}
}

func laBoundaries(t *domain.AreaTable) *domain.BoundaryTable {
	records := make([]domain.BoundaryRecord, 0, len(t.Records))
	for _, r := range t.Records {
		records = append(records, domain.BoundaryRecord{AreaCode: r.AreaCode, AreaName: r.AreaName})
	}
	return domain.NewBoundaryTable("mem://la", records)
}

// lsoaTable gives every LA n child LSOAs.
func lsoaTable(parents []domain.AreaRecord, n int) *domain.AreaTable {
	t := &domain.AreaTable{Country: domain.CountryEngland, Granularity: domain.GranularityLSOA, Domain: domain.DomainEnglish}
	for _, p := range parents {
		for i := 0; i < n; i++ {
			t.Records = append(t.Records, domain.AreaRecord{
				AreaCode:       fmt.Sprintf("%s-%03d", p.AreaCode, i),
				AreaName:       fmt.Sprintf("%s %03d", p.AreaName, i),
				ParentAreaCode: p.AreaCode,
				ParentAreaName: p.AreaName,
				RegionName:     p.RegionName,
				Deciles:        deciles(i),
			})
		}
	}
	return t
}

// lsoaBoundaries buckets LSOA boundaries the way the published files are split.
func lsoaBoundaries(t *domain.AreaTable, rule *PartitionRule) *domain.BoundaryTable {
	bt := &domain.BoundaryTable{URL: "mem://lsoa", Buckets: map[domain.Partition][]domain.BoundaryRecord{
		PartitionMain:     {},
		PartitionOverflow: {},
	}}
	for _, r := range t.Records {
		p := rule.Select(r.ParentAreaName)
		bt.Buckets[p] = append(bt.Buckets[p], domain.BoundaryRecord{
			AreaCode:       r.AreaCode,
			AreaName:       r.AreaName,
			ParentAreaName: r.ParentAreaName,
		})
	}
	return bt
}
