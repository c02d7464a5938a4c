package domain

import "slices"

// Collection is a named thematic grouping of ateliers
type Collection struct {
	ID           Theme    `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Subtitle     string   `json:"subtitle" yaml:"subtitle"`
	HeroImage    string   `json:"heroImage" yaml:"heroImage"`
	Description  string   `json:"description" yaml:"description"`
	AtelierSlugs []string `json:"atelierSlugs" yaml:"atelierSlugs"`
}

// Clone returns a deep copy
func (c Collection) Clone() Collection {
	c.AtelierSlugs = slices.Clone(c.AtelierSlugs)
	return c
}
