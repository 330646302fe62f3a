package mods

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrHistoryDisabled is returned when history is requested without a database.
var ErrHistoryDisabled = errors.New("load history is disabled")

// Service runs load cycles over a fixed set of sources and keeps the latest report.
type Service struct {
	pipeline *Pipeline
	sources  []Source
	history  *History
	logger   *zap.Logger

	mu   sync.RWMutex
	last *CycleReport
}

// NewService creates a new mods service. history may be nil.
func NewService(pipeline *Pipeline, sources []Source, history *History, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pipeline: pipeline,
		sources:  sources,
		history:  history,
		logger:   logger,
	}
}

// Reload runs a full load cycle.
func (s *Service) Reload(ctx context.Context) (*CycleReport, error) {
	report, err := s.pipeline.RunLoadCycle(ctx, s.sources...)
	if report != nil {
		s.mu.Lock()
		s.last = report
		s.mu.Unlock()
	}
	return report, err
}

// Last returns the report of the most recent cycle, or nil.
func (s *Service) Last() *CycleReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Order resolves the current load order without loading anything.
func (s *Service) Order(ctx context.Context) (*CycleReport, error) {
	return s.pipeline.Resolve(ctx, s.sources...)
}

// History returns up to limit recorded cycles.
func (s *Service) History(ctx context.Context, limit int) ([]CycleRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Recent(ctx, limit)
}

// Registry exposes the habitats, locations and mods of the last cycle.
func (s *Service) Registry() *Registry {
	return s.pipeline.Registry()
}
