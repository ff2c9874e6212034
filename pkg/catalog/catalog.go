// Package catalog holds the icon and background catalogs.
//
// The catalogs are configuration data injected into the editor: a built-in
// set embedded in the binary (builtin.toml), optionally replaced by a TOML
// file named in the config, plus the custom icons a user defines inside a
// project.
//
// Resolution never fails. An unknown icon id resolves to [DefaultIcon] and an
// unknown background id resolves to the first background of the catalog, so
// a document with dangling references stays renderable.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/meteomap/pkg/errors"
)

//go:embed builtin.toml
var builtinTOML []byte

// Icon is a placeable glyph.
type Icon struct {
	ID    string `toml:"id" json:"id"`
	Glyph string `toml:"glyph" json:"glyph"`
	Label string `toml:"label" json:"label"`
}

// Background is a map image the stage can be drawn on.
type Background struct {
	ID          string `toml:"id"`
	Label       string `toml:"label"`
	URL         string `toml:"url"`
	AspectRatio string `toml:"aspect_ratio"`
}

// DefaultIcon is what dangling icon references degrade to.
var DefaultIcon = Icon{ID: "unknown", Glyph: "?", Label: "Inconnu"}

// DefaultAspectRatio is used when neither project nor background has one.
const DefaultAspectRatio = "16:9"

// Catalog is the set of built-in icons and backgrounds.
type Catalog struct {
	Icons       []Icon       `toml:"icons"`
	Backgrounds []Background `toml:"backgrounds"`
}

// Builtin returns the catalog embedded in the binary.
func Builtin() *Catalog {
	c, err := Parse(builtinTOML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
	}
	return c
}

// Parse decodes a TOML catalog and validates it.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode catalog")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads a TOML catalog from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "read catalog %s", path)
	}
	return Parse(data)
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool, len(c.Icons))
	for _, ic := range c.Icons {
		if ic.ID == "" {
			return errors.New(errors.ErrCodeInvalidCatalog, "icon without id")
		}
		if seen[ic.ID] {
			return errors.New(errors.ErrCodeInvalidCatalog, "duplicate icon id %q", ic.ID)
		}
		seen[ic.ID] = true
	}
	if len(c.Backgrounds) == 0 {
		return errors.New(errors.ErrCodeInvalidCatalog, "catalog needs at least one background")
	}
	for _, bg := range c.Backgrounds {
		if bg.ID == "" {
			return errors.New(errors.ErrCodeInvalidCatalog, "background without id")
		}
		if bg.AspectRatio != "" {
			if _, err := errors.ParseAspectRatio(bg.AspectRatio); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "background %q", bg.ID)
			}
		}
	}
	return nil
}

// Background returns the background with the given id, falling back to the
// first catalog entry. The boolean reports whether id was found.
func (c *Catalog) Background(id string) (Background, bool) {
	for _, bg := range c.Backgrounds {
		if bg.ID == id {
			return bg, true
		}
	}
	return c.Backgrounds[0], false
}

// Resolver resolves icon references against built-in and custom icons.
type Resolver struct {
	builtin map[string]Icon
	custom  map[string]Icon
}

// NewResolver builds a resolver. Custom icons shadow built-ins with the same id.
func NewResolver(c *Catalog, custom []Icon) *Resolver {
	r := &Resolver{
		builtin: make(map[string]Icon),
		custom:  make(map[string]Icon, len(custom)),
	}
	if c != nil {
		for _, ic := range c.Icons {
			r.builtin[ic.ID] = ic
		}
	}
	for _, ic := range custom {
		r.custom[ic.ID] = ic
	}
	return r
}

// Lookup returns the icon for ref and whether it exists.
func (r *Resolver) Lookup(ref string) (Icon, bool) {
	if r == nil {
		return Icon{}, false
	}
	if ic, ok := r.custom[ref]; ok {
		return ic, true
	}
	ic, ok := r.builtin[ref]
	return ic, ok
}

// Resolve returns the icon for ref, or DefaultIcon when it is dangling.
func (r *Resolver) Resolve(ref string) Icon {
	if ic, ok := r.Lookup(ref); ok {
		return ic
	}
	return DefaultIcon
}
