package mods

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"mod-loader/core/database"
	"mod-loader/core/resolver"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupHistory(t *testing.T) *History {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	h := NewHistory(db)
	require.NoError(t, h.Migrate(context.Background()))
	return h
}

func TestHistory_RecordAndRecent(t *testing.T) {
	h := setupHistory(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, h.Record(ctx, &CycleReport{
		ID:        "11111111-1111-1111-1111-111111111111",
		StartedAt: start,
		Order:     []string{"a.mod"},
		Enabled:   []string{"a.mod"},
	}))
	require.NoError(t, h.Record(ctx, &CycleReport{
		ID:        "22222222-2222-2222-2222-222222222222",
		StartedAt: start.Add(time.Minute),
		Duration:  1500 * time.Millisecond,
		Order:     []string{"a.mod", "b.mod"},
		Enabled:   []string{"a.mod"},
		Warnings:  []resolver.Warning{{Kind: resolver.MissingOptionalDependency, Mod: "a.mod", Target: "c.mod"}},
		Failures:  []Failure{{ModID: "b.mod", Error: "boom"}},
	}))

	records, err := h.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)

	latest := records[0]
	assert.Equal(t, "22222222-2222-2222-2222-222222222222", latest.ID)
	assert.Equal(t, int64(1500), latest.Duration)
	assert.Equal(t, 1, latest.Enabled)

	var order []string
	require.NoError(t, json.Unmarshal([]byte(latest.Order), &order))
	assert.Equal(t, []string{"a.mod", "b.mod"}, order)

	var warnings []string
	require.NoError(t, json.Unmarshal([]byte(latest.Warnings), &warnings))
	assert.Equal(t, []string{`a.mod: optional dependency "c.mod" is missing`}, warnings)

	var failures []Failure
	require.NoError(t, json.Unmarshal([]byte(latest.Failures), &failures))
	assert.Equal(t, []Failure{{ModID: "b.mod", Error: "boom"}}, failures)

	all, err := h.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestHistory_RecordFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `load_cycles`").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = NewHistory(db).Record(context.Background(), &CycleReport{ID: "x", StartedAt: time.Now()})
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLoadCycle_RecordsHistory(t *testing.T) {
	f := newFixture(t)
	h := setupHistory(t)
	f.withHistory(h)
	writeArchive(t, f.dir, "a.ztd", map[string]string{"meta.toml": modMeta("a.mod")})

	report := f.run(t)

	records, err := h.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, report.ID, records[0].ID)
}
