package domain

type Palette struct {
	Name    string   `json:"name" yaml:"name"`
	Scheme  string   `json:"scheme,omitempty" yaml:"scheme"`
	Colors  []string `json:"colors" yaml:"colors"`
	Reverse bool     `json:"reverse,omitempty" yaml:"reverse"`
}

// ColorFor returns the colour of a decile, honouring Reverse.
func (p Palette) ColorFor(decile int) string {
	if len(p.Colors) == 0 || decile < MinDecile || decile > MaxDecile {
		return ""
	}
	i := decile - 1
	if i >= len(p.Colors) {
		i = len(p.Colors) - 1
	}
	if p.Reverse {
		i = len(p.Colors) - 1 - i
	}
	return p.Colors[i]
}
