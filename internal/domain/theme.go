package domain

import "fmt"

// Theme is the editorial tag every collection and atelier belongs to
type Theme string

const (
	ThemeSea    Theme = "Sea"
	ThemeRitual Theme = "Ritual"
	ThemeGrain  Theme = "Grain"
	ThemeRaw    Theme = "Raw"
	ThemeTaste  Theme = "Taste"
)

// AllThemes contains all valid themes in display order
var AllThemes = []Theme{ThemeSea, ThemeRitual, ThemeGrain, ThemeRaw, ThemeTaste}

// IsValid checks if a theme is valid
func (t Theme) IsValid() bool {
	switch t {
	case ThemeSea, ThemeRitual, ThemeGrain, ThemeRaw, ThemeTaste:
		return true
	}
	return false
}

func (t Theme) String() string {
	return string(t)
}

// Tagline returns the short line shown next to the theme in the route builder
func (t Theme) Tagline() string {
	switch t {
	case ThemeSea:
		return "The Infinite Horizon"
	case ThemeRitual:
		return "Sacred Silence"
	case ThemeGrain:
		return "Earth's Texture"
	case ThemeRaw:
		return "Wild Elements"
	case ThemeTaste:
		return "The Korean Table"
	default:
		return string(t)
	}
}

// ParseTheme converts a raw string into a Theme
func ParseTheme(s string) (Theme, error) {
	t := Theme(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
	return t, nil
}

// ThemeAny is the route builder's "surprise me" choice
const ThemeAny = "Any"

// ThemeFilter is either a concrete Theme or Any.
// The zero value means Any.
type ThemeFilter struct {
	theme Theme
}

// AnyTheme returns a filter matching every theme
func AnyTheme() ThemeFilter {
	return ThemeFilter{}
}

// OnlyTheme returns a filter matching exactly one theme
func OnlyTheme(t Theme) ThemeFilter {
	return ThemeFilter{theme: t}
}

// ParseThemeFilter accepts "Any" or a valid theme name
func ParseThemeFilter(s string) (ThemeFilter, error) {
	if s == ThemeAny || s == "" {
		return AnyTheme(), nil
	}
	t, err := ParseTheme(s)
	if err != nil {
		return ThemeFilter{}, err
	}
	return OnlyTheme(t), nil
}

// Theme returns the concrete theme and false when the filter is Any
func (f ThemeFilter) Theme() (Theme, bool) {
	if f.theme == "" {
		return "", false
	}
	return f.theme, true
}

func (f ThemeFilter) String() string {
	if f.theme == "" {
		return ThemeAny
	}
	return string(f.theme)
}

// Pace is how densely a trip is scheduled
type Pace string

const (
	PaceSlow     Pace = "Slow"
	PaceBalanced Pace = "Balanced"
	PaceDeep     Pace = "Deep"
)

// AllPaces contains all valid paces in order
var AllPaces = []Pace{PaceSlow, PaceBalanced, PaceDeep}

// IsValid checks if a pace is valid
func (p Pace) IsValid() bool {
	switch p {
	case PaceSlow, PaceBalanced, PaceDeep:
		return true
	}
	return false
}

func (p Pace) String() string {
	return string(p)
}

// ParsePace converts a raw string into a Pace
func ParsePace(s string) (Pace, error) {
	p := Pace(s)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPace, s)
	}
	return p, nil
}
