package resource

import (
	"path"
	"strings"
)

// Key is the canonical, case-insensitive name of a resource.
type Key string

// Canonical normalises a resource name: forward slashes, no leading "./" or "/", lower case.
func Canonical(name string) Key {
	n := strings.ReplaceAll(name, "\\", "/")
	for strings.HasPrefix(n, "./") {
		n = n[2:]
	}
	n = strings.TrimLeft(n, "/")
	return Key(strings.ToLower(n))
}

func (k Key) String() string {
	return string(k)
}

// Kind tags the content of a resource.
type Kind uint8

const (
	KindOther Kind = iota
	KindConfig
	KindAnimation
	KindPalette
	KindImage
	KindSound
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindAnimation:
		return "animation"
	case KindPalette:
		return "palette"
	case KindImage:
		return "image"
	case KindSound:
		return "sound"
	default:
		return "other"
	}
}

// KindFromName derives the content kind from a resource name.
// Animation frames carry no extension in the game archives.
func KindFromName(name string) Kind {
	switch strings.ToLower(path.Ext(name)) {
	case ".ini", ".ai", ".ani", ".cfg", ".uca", ".ucs", ".ucb", ".scn", ".lyt", ".toml", ".txt":
		return KindConfig
	case ".pal":
		return KindPalette
	case ".tga", ".bmp", ".png":
		return KindImage
	case ".wav":
		return KindSound
	case "":
		return KindAnimation
	default:
		return KindOther
	}
}
