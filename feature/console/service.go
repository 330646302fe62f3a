package console

import (
	"sort"
	"strings"

	"mod-loader/core/resource"

	"go.uber.org/zap"
)

// Service exposes the resource store to operators.
type Service struct {
	store  *resource.Store
	logger *zap.Logger
}

// NewService creates a new console service.
func NewService(store *resource.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// List returns the keys starting with prefix, in lexical order.
func (s *Service) List(prefix string) []resource.Key {
	keys := s.store.Keys()
	if prefix == "" {
		return keys
	}
	p := resource.Canonical(prefix).String()
	start := sort.Search(len(keys), func(i int) bool { return keys[i].String() >= p })
	end := start
	for end < len(keys) && strings.HasPrefix(keys[end].String(), p) {
		end++
	}
	return keys[start:end]
}

// Stats reports the store counters.
func (s *Service) Stats() resource.Stats {
	return s.store.Stats()
}

// Check reports whether name is registered.
func (s *Service) Check(name string) bool {
	return s.store.Contains(resource.Canonical(name))
}

// Get returns the contents of name, materialising it when needed.
func (s *Service) Get(name string) (resource.Resource, bool) {
	return s.store.Fetch(resource.Canonical(name))
}

// Describe returns metadata about name.
func (s *Service) Describe(name string) (resource.Info, bool) {
	return s.store.Describe(resource.Canonical(name))
}

// Put installs data under name as pinned content.
func (s *Service) Put(name string, data []byte) resource.Key {
	key := resource.Canonical(name)
	s.store.RegisterPinned(key, resource.KindFromName(key.String()), data)
	s.logger.Info("Resource installed", zap.String("key", key.String()), zap.Int("size", len(data)))
	return key
}

// Remove drops name from the store.
func (s *Service) Remove(name string) bool {
	key := resource.Canonical(name)
	ok := s.store.Remove(key)
	if ok {
		s.logger.Info("Resource removed", zap.String("key", key.String()))
	}
	return ok
}

// Acquire pins name in memory until released.
func (s *Service) Acquire(name string) (int64, bool) {
	return s.store.Acquire(resource.Canonical(name))
}

// Release drops one reference to name.
func (s *Service) Release(name string) (int64, bool) {
	return s.store.Release(resource.Canonical(name))
}
