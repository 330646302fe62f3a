package mods

import (
	"errors"
	"fmt"
	"strings"

	"mod-loader/core/resolver"

	"github.com/pelletier/go-toml/v2"
)

// MetaFile is the reserved archive entry that marks an archive as a mod.
const MetaFile = "meta.toml"

// ErrInvalidMeta is returned when meta.toml cannot be used.
var ErrInvalidMeta = errors.New("invalid mod metadata")

// Meta is the decoded meta.toml of a mod.
type Meta struct {
	Mod          ModInfo          `toml:"mod" json:"mod"`
	Dependencies []MetaDependency `toml:"dependencies" json:"dependencies,omitempty"`
}

// ModInfo identifies a mod.
type ModInfo struct {
	ID          string   `toml:"id" json:"id"`
	Name        string   `toml:"name" json:"name,omitempty"`
	Version     string   `toml:"version" json:"version,omitempty"`
	Authors     []string `toml:"authors" json:"authors,omitempty"`
	Description string   `toml:"description" json:"description,omitempty"`
}

// MetaDependency is one [[dependencies]] entry.
type MetaDependency struct {
	ModID      string `toml:"mod_id" json:"mod_id,omitempty"`
	ZtdName    string `toml:"ztd_name" json:"ztd_name,omitempty"`
	MinVersion string `toml:"min_version" json:"min_version,omitempty"`
	Optional   bool   `toml:"optional" json:"optional"`
	Ordering   string `toml:"ordering" json:"ordering,omitempty"`
}

// ParseMeta decodes and validates meta.toml.
func ParseMeta(data []byte) (*Meta, error) {
	var m Meta
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMeta, err)
	}
	m.Mod.ID = strings.TrimSpace(m.Mod.ID)
	if m.Mod.ID == "" {
		return nil, fmt.Errorf("%w: mod.id is required", ErrInvalidMeta)
	}
	for i, d := range m.Dependencies {
		if d.ModID == "" && d.ZtdName == "" {
			return nil, fmt.Errorf("%w: dependency %d names neither mod_id nor ztd_name", ErrInvalidMeta, i)
		}
		switch resolver.Ordering(strings.ToLower(d.Ordering)) {
		case "", resolver.OrderingNone, resolver.OrderingBefore, resolver.OrderingAfter:
		default:
			return nil, fmt.Errorf("%w: dependency %d has unknown ordering %q", ErrInvalidMeta, i, d.Ordering)
		}
	}
	return &m, nil
}

// Descriptor converts the metadata to the resolver's view of the mod.
func (m *Meta) Descriptor(archive string) resolver.Descriptor {
	d := resolver.Descriptor{
		ModID:   m.Mod.ID,
		Name:    m.Mod.Name,
		Version: m.Mod.Version,
		Archive: archive,
	}
	for _, dep := range m.Dependencies {
		ordering := resolver.Ordering(strings.ToLower(dep.Ordering))
		if ordering == "" {
			ordering = resolver.OrderingNone
		}
		d.Dependencies = append(d.Dependencies, resolver.Dependency{
			Target:     dep.ModID,
			ZtdName:    dep.ZtdName,
			MinVersion: dep.MinVersion,
			Optional:   dep.Optional,
			Ordering:   ordering,
		})
	}
	return d
}
