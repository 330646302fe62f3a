package mods

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"mod-loader/core/codec"
	"mod-loader/core/resource"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeArchive(t *testing.T, dir, name string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), zipBytes(t, files), 0o644))
}

func modMeta(id string, deps ...string) string {
	s := "[mod]\nid = \"" + id + "\"\nversion = \"1.0.0\"\n"
	for _, d := range deps {
		s += "\n[[dependencies]]\nmod_id = \"" + d + "\"\nordering = \"after\"\n"
	}
	return s
}

func iniValue(t *testing.T, s *resource.Store, key, section, name string) string {
	t.Helper()
	res, ok := s.Fetch(resource.Canonical(key))
	require.True(t, ok, "missing %s", key)
	doc, err := codec.Parse(res.Data)
	require.NoError(t, err)
	v, _ := doc.Value(section, name)
	return v
}
