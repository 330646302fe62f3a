package cmd

import (
	"bytes"
	"testing"
	"time"

	"mod-loader/core/resolver"
	"mod-loader/feature/mods"

	"github.com/stretchr/testify/assert"
)

func TestPrintReport(t *testing.T) {
	report := &mods.CycleReport{
		ID:       "cycle-1",
		Duration: 2 * time.Second,
		Order:    []string{"base.mod", "extra.mod"},
		Enabled:  []string{"base.mod"},
		Legacy:   []string{"legacy.ztd"},
		Warnings: []resolver.Warning{{Kind: resolver.MissingOptionalDependency, Mod: "extra.mod", Target: "gone.mod"}},
		Failures: []mods.Failure{{ModID: "base.mod", File: "patches/a.toml", Patch: "p1", Error: "boom"}},
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "Cycle cycle-1 (2s)")
	assert.Contains(t, out, "Archives: 1 legacy")
	assert.Contains(t, out, " 1. base.mod\n")
	assert.Contains(t, out, " 2. extra.mod (disabled)")
	assert.Contains(t, out, "[missing_optional_dependency]")
	assert.Contains(t, out, "base.mod:patches/a.toml#p1: boom")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, writeJSON(&buf, map[string]int{"records": 3}))
	assert.JSONEq(t, `{"records":3}`, buf.String())
}
