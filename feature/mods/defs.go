package mods

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"mod-loader/core/patch"

	"github.com/BurntSushi/toml"
)

// DefsDir holds a mod's content definition files.
const DefsDir = "defs/"

// Category orders content files within a mod: declarations load before the patches that
// reference them.
type Category int

const (
	NonPatchOnly Category = iota
	Mixed
	PatchOnly
)

func (c Category) String() string {
	switch c {
	case NonPatchOnly:
		return "non_patch_only"
	case Mixed:
		return "mixed"
	default:
		return "patch_only"
	}
}

// Habitat declares a new habitat type.
type Habitat struct {
	Name string `toml:"name" json:"name"`
	Icon string `toml:"icon" json:"icon,omitempty"`
}

// Location declares a new map location.
type Location struct {
	Name     string   `toml:"name" json:"name"`
	Icon     string   `toml:"icon" json:"icon,omitempty"`
	Habitats []string `toml:"habitats" json:"habitats,omitempty"`
}

// ContentFile is one decoded defs/*.toml file.
type ContentFile struct {
	Name      string
	Category  Category
	Habitats  map[string]Habitat
	Locations map[string]Location
	Batch     patch.Batch
}

type rawDefs struct {
	Habitats  map[string]Habitat        `toml:"habitats"`
	Locations map[string]Location       `toml:"locations"`
	PatchMeta patch.Meta                `toml:"patch_meta"`
	Patches   map[string]toml.Primitive `toml:"patches"`
}

// IsDefsFile reports whether an archive entry is a content definition file.
func IsDefsFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, DefsDir) && path.Ext(lower) == ".toml"
}

// ParseContentFile decodes a defs file. Patches keep their declaration order.
func ParseContentFile(name string, data []byte) (*ContentFile, error) {
	var raw rawDefs
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	f := &ContentFile{
		Name:      name,
		Habitats:  raw.Habitats,
		Locations: raw.Locations,
		Batch:     patch.Batch{Meta: raw.PatchMeta},
	}
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "patches" {
			continue
		}
		prim, ok := raw.Patches[key[1]]
		if !ok {
			continue
		}
		var p patch.Patch
		if err := md.PrimitiveDecode(prim, &p); err != nil {
			return nil, fmt.Errorf("decode %s: patch %q: %w", name, key[1], err)
		}
		f.Batch.Patches = append(f.Batch.Patches, patch.NamedPatch{Name: key[1], Patch: p})
	}

	declares := len(f.Habitats) > 0 || len(f.Locations) > 0
	switch {
	case len(f.Batch.Patches) == 0:
		f.Category = NonPatchOnly
	case declares:
		f.Category = Mixed
	default:
		f.Category = PatchOnly
	}
	return f, nil
}

// SortContentFiles orders files by category, then by name.
func SortContentFiles(files []*ContentFile) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Category != files[j].Category {
			return files[i].Category < files[j].Category
		}
		return files[i].Name < files[j].Name
	})
}

// HabitatNames returns the declared habitat keys in lexical order.
func (f *ContentFile) HabitatNames() []string {
	return sortedKeys(f.Habitats)
}

// LocationNames returns the declared location keys in lexical order.
func (f *ContentFile) LocationNames() []string {
	return sortedKeys(f.Locations)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
