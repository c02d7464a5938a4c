package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dom/atelier-korea/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.json
var bundled embed.FS

// Catalog is the read-only editorial data: ateliers and the collections that group them.
// It is built once at startup and shared by every request.
type Catalog struct {
	ateliers    []domain.Atelier
	bySlug      map[string]int
	collections []domain.Collection
	byTheme     map[domain.Theme]int
}

// LoadBundled reads the data files compiled into the binary.
func LoadBundled() (*Catalog, error) {
	return load(bundled, "data")
}

// LoadDir reads ateliers and collections from dir. Each file may be JSON
// (ateliers.json) or YAML (ateliers.yaml / ateliers.yml).
func LoadDir(dir string) (*Catalog, error) {
	return load(os.DirFS(dir), ".")
}

func load(fsys fs.FS, root string) (*Catalog, error) {
	var ateliers []domain.Atelier
	if err := decodeFile(fsys, root, "ateliers", &ateliers); err != nil {
		return nil, err
	}

	var collections []domain.Collection
	if err := decodeFile(fsys, root, "collections", &collections); err != nil {
		return nil, err
	}

	return New(ateliers, collections)
}

func decodeFile(fsys fs.FS, root, name string, v interface{}) error {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.ToSlash(filepath.Join(root, name+ext))
		data, err := fs.ReadFile(fsys, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		if ext == ".json" {
			err = json.Unmarshal(data, v)
		} else {
			err = yaml.Unmarshal(data, v)
		}
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("no %s data file found", name)
}

// New validates the records and indexes them.
func New(ateliers []domain.Atelier, collections []domain.Collection) (*Catalog, error) {
	c := &Catalog{
		ateliers:    cloneAteliers(ateliers),
		bySlug:      make(map[string]int, len(ateliers)),
		collections: make([]domain.Collection, len(collections)),
		byTheme:     make(map[domain.Theme]int, len(collections)),
	}
	for i, col := range collections {
		c.collections[i] = col.Clone()
	}

	for i, a := range c.ateliers {
		if a.Slug == "" {
			return nil, fmt.Errorf("atelier %d has no slug", i)
		}
		if _, dup := c.bySlug[a.Slug]; dup {
			return nil, fmt.Errorf("duplicate atelier slug %q", a.Slug)
		}
		if !a.CollectionID.IsValid() {
			return nil, fmt.Errorf("atelier %q: %w: %q", a.Slug, domain.ErrInvalidTheme, a.CollectionID)
		}
		if !a.PaceTag.IsValid() {
			return nil, fmt.Errorf("atelier %q: %w: %q", a.Slug, domain.ErrInvalidPace, a.PaceTag)
		}
		if err := validatePiece(a.Piece); err != nil {
			return nil, fmt.Errorf("atelier %q: %w", a.Slug, err)
		}
		c.bySlug[a.Slug] = i
	}

	for i, col := range c.collections {
		if !col.ID.IsValid() {
			return nil, fmt.Errorf("collection %d: %w: %q", i, domain.ErrInvalidTheme, col.ID)
		}
		if _, dup := c.byTheme[col.ID]; dup {
			return nil, fmt.Errorf("duplicate collection %q", col.ID)
		}
		c.byTheme[col.ID] = i
	}

	return c, nil
}

func validatePiece(p domain.Piece) error {
	if p.ID == "" {
		return errors.New("piece has no id")
	}
	if len(p.Choices) == 0 {
		return fmt.Errorf("piece %q has no choices", p.ID)
	}
	seen := make(map[string]bool, len(p.Choices))
	for _, choice := range p.Choices {
		if seen[choice.ID] {
			return fmt.Errorf("piece %q has duplicate choice %q", p.ID, choice.ID)
		}
		seen[choice.ID] = true
	}
	return nil
}

// Ateliers returns every atelier in catalog order. Like every query here it
// returns deep copies, so the catalog never changes after New.
func (c *Catalog) Ateliers() []domain.Atelier {
	return cloneAteliers(c.ateliers)
}

func cloneAteliers(ateliers []domain.Atelier) []domain.Atelier {
	out := make([]domain.Atelier, len(ateliers))
	for i, a := range ateliers {
		out[i] = a.Clone()
	}
	return out
}

func (c *Catalog) Atelier(slug string) (domain.Atelier, error) {
	i, ok := c.bySlug[slug]
	if !ok {
		return domain.Atelier{}, fmt.Errorf("%w: %s", domain.ErrAtelierNotFound, slug)
	}
	return c.ateliers[i].Clone(), nil
}

// AteliersByCollection returns the ateliers whose collectionId equals theme.
func (c *Catalog) AteliersByCollection(theme domain.Theme) []domain.Atelier {
	out := []domain.Atelier{}
	for _, a := range c.ateliers {
		if a.CollectionID == theme {
			out = append(out, a.Clone())
		}
	}
	return out
}

// AteliersBySlugs resolves slugs in the given order, skipping unknown ones.
func (c *Catalog) AteliersBySlugs(slugs []string) []domain.Atelier {
	out := make([]domain.Atelier, 0, len(slugs))
	for _, slug := range slugs {
		if i, ok := c.bySlug[slug]; ok {
			out = append(out, c.ateliers[i].Clone())
		}
	}
	return out
}

func (c *Catalog) Collections() []domain.Collection {
	out := make([]domain.Collection, len(c.collections))
	for i, col := range c.collections {
		out[i] = col.Clone()
	}
	return out
}

func (c *Catalog) Collection(id domain.Theme) (domain.Collection, error) {
	i, ok := c.byTheme[id]
	if !ok {
		return domain.Collection{}, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, id)
	}
	return c.collections[i].Clone(), nil
}
