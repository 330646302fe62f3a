package mods

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderFile_MissingFile(t *testing.T) {
	o, err := ReadOrderFile(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Empty(t, o.Order)
	assert.Empty(t, o.Disabled)
}

func TestOrderFile_WritePreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod-loader.toml")
	original := `
title = "zoo"

[mod_loading]
order = ["old"]
mode = "strict"

[display]
width = 800
`
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	require.NoError(t, WriteOrderFile(path, OrderFile{Order: []string{"a.mod", "b.mod"}, Disabled: []string{"c.mod"}}))

	o, err := ReadOrderFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mod", "b.mod"}, o.Order)
	assert.Equal(t, []string{"c.mod"}, o.Disabled)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, toml.Unmarshal(data, &doc))
	assert.Equal(t, "zoo", doc["title"])
	assert.Equal(t, int64(800), doc["display"].(map[string]any)["width"])
	assert.Equal(t, "strict", doc["mod_loading"].(map[string]any)["mode"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestOrderFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "order.toml")
	require.NoError(t, WriteOrderFile(path, OrderFile{}))

	o, err := ReadOrderFile(path)
	require.NoError(t, err)
	assert.Empty(t, o.Order)
}

func TestOrderFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[mod_loading\n"},
		{"order not array", "[mod_loading]\norder = \"a\"\n"},
		{"disabled not strings", "[mod_loading]\ndisabled = [1, 2]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "order.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))
			_, err := ReadOrderFile(path)
			assert.Error(t, err)
		})
	}
}

func TestOrderFile_DisabledSet(t *testing.T) {
	set := OrderFile{Disabled: []string{"Old.ZTD", "x.mod"}}.DisabledSet()
	assert.True(t, set["old.ztd"])
	assert.True(t, set["Old.ZTD"])
	assert.True(t, set["x.mod"])
	assert.False(t, set["y.mod"])
}
