package domain

import "slices"

// Atelier is a single curated destination in the static catalog
type Atelier struct {
	Slug                string   `json:"slug" yaml:"slug"`
	DisplayName         string   `json:"displayName" yaml:"displayName"`
	CollectionID        Theme    `json:"collectionId" yaml:"collectionId"`
	HeroImage           string   `json:"heroImage" yaml:"heroImage"`
	GalleryImages       []string `json:"galleryImages" yaml:"galleryImages"`
	ConceptLines        []string `json:"conceptLines" yaml:"conceptLines"` // 4-6 lines
	RarityText          string   `json:"rarityText" yaml:"rarityText"`
	RecommendedNights   int      `json:"recommendedNights" yaml:"recommendedNights"`
	BestSeason          string   `json:"bestSeason" yaml:"bestSeason"`
	PaceTag             Pace     `json:"paceTag" yaml:"paceTag"`
	StayRecommendations []Stay   `json:"stayRecommendations" yaml:"stayRecommendations"`
	TableHighlights     []Table  `json:"tableHighlights" yaml:"tableHighlights"`
	HowToArrive         Arrival  `json:"howToArrive" yaml:"howToArrive"`
	Piece               Piece    `json:"piece" yaml:"piece"`
	Location            Location `json:"location" yaml:"location"`
}

type Stay struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Type        string `json:"type" yaml:"type"` // e.g. "Hanok", "Boutique"
	Image       string `json:"image,omitempty" yaml:"image,omitempty"`
}

type Table struct {
	Name        string `json:"name" yaml:"name"`
	Dish        string `json:"dish" yaml:"dish"`
	Description string `json:"description" yaml:"description"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Image       string `json:"image,omitempty" yaml:"image,omitempty"`
}

type Arrival struct {
	Time                   string `json:"time" yaml:"time"`
	Method                 string `json:"method" yaml:"method"`
	TransferSimplicity     string `json:"transferSimplicity" yaml:"transferSimplicity"`
	TravelMinutesFromSeoul *int   `json:"travelMinutesFromSeoul,omitempty" yaml:"travelMinutesFromSeoul,omitempty"`
}

type Location struct {
	Region string   `json:"region" yaml:"region"`
	Lat    *float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lng    *float64 `json:"lng,omitempty" yaml:"lng,omitempty"`
}

// Piece is the reflective question a visitor answers once per atelier
type Piece struct {
	ID           string        `json:"id" yaml:"id"`
	BaseName     string        `json:"baseName" yaml:"baseName"` // e.g. "Harbor Dawn"
	Question     string        `json:"question" yaml:"question"`
	Choices      []PieceChoice `json:"choices" yaml:"choices"`
	CardTemplate string        `json:"cardTemplate" yaml:"cardTemplate"`
}

type PieceChoice struct {
	ID            string `json:"id" yaml:"id"`
	Label         string `json:"label" yaml:"label"`
	GeneratedLine string `json:"generatedLine" yaml:"generatedLine"`
}

// Choice returns the choice with the given id
func (p Piece) Choice(id string) (PieceChoice, bool) {
	for _, c := range p.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return PieceChoice{}, false
}

// Clone returns a deep copy, so a caller can't change the catalog through its result
func (a Atelier) Clone() Atelier {
	a.GalleryImages = slices.Clone(a.GalleryImages)
	a.ConceptLines = slices.Clone(a.ConceptLines)
	a.StayRecommendations = slices.Clone(a.StayRecommendations)
	a.TableHighlights = slices.Clone(a.TableHighlights)
	a.Piece.Choices = slices.Clone(a.Piece.Choices)
	a.HowToArrive.TravelMinutesFromSeoul = clonePtr(a.HowToArrive.TravelMinutesFromSeoul)
	a.Location.Lat = clonePtr(a.Location.Lat)
	a.Location.Lng = clonePtr(a.Location.Lng)
	return a
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
