package catalog

import (
	"testing"

	"github.com/ougirez/iodmap/internal/domain"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(c.Regions) != 9 {
		t.Fatalf("regions: want=9 got=%d", len(c.Regions))
	}
	for d, want := range map[domain.IndexDomain]int{
		domain.DomainEnglish:  10,
		domain.DomainWelsh:    9,
		domain.DomainCombined: 4,
	} {
		if got := len(c.Indices(d)); got != want {
			t.Fatalf("%s indices: want=%d got=%d", d, want, got)
		}
	}

	idx, ok := c.IndexByName(domain.DomainEnglish, "Income Deprivation")
	if !ok || idx.ID != "b_income_deprivation_domain" {
		t.Fatalf("IndexByName: got=%+v ok=%v", idx, ok)
	}
	if _, ok := c.IndexByID(domain.DomainWelsh, "b_income_deprivation_domain"); ok {
		t.Fatalf("english id resolved in welsh domain")
	}

	if got := c.PaletteNames(); len(got) != 4 || got[0] != "Spring" {
		t.Fatalf("palettes: got=%v", got)
	}
}

func TestPaletteColorForHonoursReverse(t *testing.T) {
	c := MustDefault()
	summer, _ := c.Palette("Summer")
	if got := summer.ColorFor(1); got != "#f94144" {
		t.Fatalf("summer decile 1: got=%s", got)
	}
	winter, _ := c.Palette("Winter")
	if got := winter.ColorFor(1); got != "#80ffdb" {
		t.Fatalf("winter decile 1 (reversed): got=%s", got)
	}
	if got := winter.ColorFor(11); got != "" {
		t.Fatalf("out of range decile: got=%s", got)
	}
}

func TestParseRejectsShortPalette(t *testing.T) {
	_, err := Parse([]byte("regions: [London]\ndomains:\n  english:\n    - id: a\n      name: A\npalettes:\n  - name: Bad\n    colors: ['#000000']\n"))
	if err == nil {
		t.Fatalf("Parse: expected error for short palette")
	}
}
