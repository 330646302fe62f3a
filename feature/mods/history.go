package mods

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mod-loader/core/database"

	"gorm.io/gorm"
)

// CycleRecord is one persisted load cycle.
type CycleRecord struct {
	ID        string    `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	StartedAt time.Time `gorm:"column:started_at;index" json:"started_at"`
	Duration  int64     `gorm:"column:duration_ms" json:"duration_ms"`
	Enabled   int       `gorm:"column:enabled" json:"enabled"`
	Order     string    `gorm:"column:load_order;type:text" json:"order"`
	Warnings  string    `gorm:"column:warnings;type:text" json:"warnings"`
	Failures  string    `gorm:"column:failures;type:text" json:"failures"`
}

// TableName pins the table used for load cycles.
func (CycleRecord) TableName() string {
	return "load_cycles"
}

// History stores load cycle summaries in the database.
type History struct {
	db *gorm.DB
}

// NewHistory creates a history backed by db.
func NewHistory(db *gorm.DB) *History {
	return &History{db: db}
}

// Migrate creates the load_cycles table and verifies its columns.
func (h *History) Migrate(ctx context.Context) error {
	if err := h.db.WithContext(ctx).AutoMigrate(&CycleRecord{}); err != nil {
		return fmt.Errorf("migrate load_cycles: %w", err)
	}
	missing, err := database.MissingColumns(h.db.WithContext(ctx), CycleRecord{}.TableName(),
		"id", "started_at", "duration_ms", "enabled", "load_order", "warnings", "failures")
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("load_cycles is missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Record stores a summary of report.
func (h *History) Record(ctx context.Context, report *CycleReport) error {
	rec, err := newCycleRecord(report)
	if err != nil {
		return err
	}
	if err := h.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("record load cycle %s: %w", report.ID, err)
	}
	return nil
}

// Recent returns the latest n cycles, newest first.
func (h *History) Recent(ctx context.Context, n int) ([]CycleRecord, error) {
	if n <= 0 {
		n = 20
	}
	var records []CycleRecord
	err := h.db.WithContext(ctx).Order("started_at DESC").Limit(n).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list load cycles: %w", err)
	}
	return records, nil
}

func newCycleRecord(report *CycleReport) (CycleRecord, error) {
	order, err := json.Marshal(nonNil(report.Order))
	if err != nil {
		return CycleRecord{}, err
	}
	warnings := make([]string, len(report.Warnings))
	for i, w := range report.Warnings {
		warnings[i] = w.String()
	}
	warn, err := json.Marshal(warnings)
	if err != nil {
		return CycleRecord{}, err
	}
	failures := report.Failures
	if failures == nil {
		failures = []Failure{}
	}
	fail, err := json.Marshal(failures)
	if err != nil {
		return CycleRecord{}, err
	}
	return CycleRecord{
		ID:        report.ID,
		StartedAt: report.StartedAt,
		Duration:  report.Duration.Milliseconds(),
		Enabled:   len(report.Enabled),
		Order:     string(order),
		Warnings:  string(warn),
		Failures:  string(fail),
	}, nil
}
