package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.BritishEnglish)

// Slug turns a region name into the fragment used by the boundary file names:
// "Yorkshire and The Humber" -> "yorkshire_and_the_humber".
func Slug(name string) string {
	return strings.ReplaceAll(lower.String(strings.TrimSpace(name)), " ", "_")
}
