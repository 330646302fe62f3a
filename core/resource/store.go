package resource

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// OriginMemory is reported for pinned records that were not installed by a mod.
const OriginMemory = "memory"

// Source is the archive handle backing a lazy record.
type Source interface {
	// Name identifies the archive the bytes come from.
	Name() string
	// Read returns the full contents of the entry.
	Read() ([]byte, error)
}

// Resource is a private copy of a record's bytes returned by Fetch.
type Resource struct {
	Key    Key
	Kind   Kind
	Origin string
	Data   []byte
}

// State names the backing state of a record.
type State string

const (
	StateLazy         State = "lazy"
	StateMaterialized State = "materialized"
	StatePinned       State = "pinned"
)

// Info describes a record without copying its bytes.
type Info struct {
	Key        Key       `json:"key"`
	Kind       string    `json:"kind"`
	Origin     string    `json:"origin"`
	State      State     `json:"state"`
	Size       int64     `json:"size"`
	Refs       int64     `json:"refs"`
	LastAccess time.Time `json:"last_access"`
}

// Stats summarises the store.
type Stats struct {
	Records      int   `json:"records"`
	Lazy         int   `json:"lazy"`
	Materialized int   `json:"materialized"`
	Pinned       int   `json:"pinned"`
	TotalBytes   int64 `json:"total_bytes"`
}

// Write is one pinned install applied by Commit.
type Write struct {
	Kind   Kind
	Origin string
	Data   []byte
}

// backing states are replaced as a whole on every transition.
type backing interface {
	state() State
}

type lazyState struct {
	src Source
}

type materialState struct {
	src Source
	buf []byte
}

type pinnedState struct {
	buf []byte
}

func (lazyState) state() State     { return StateLazy }
func (materialState) state() State { return StateMaterialized }
func (pinnedState) state() State   { return StatePinned }

type record struct {
	key        Key
	kind       Kind
	origin     string
	backing    backing
	lastAccess time.Time
	refs       atomic.Int64
}

// owned returns the number of buffer bytes this record owns.
func (r *record) owned() int64 {
	switch b := r.backing.(type) {
	case materialState:
		return int64(len(b.buf))
	case pinnedState:
		return int64(len(b.buf))
	}
	return 0
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for access tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store maps canonical keys to lazily materialised byte blobs.
type Store struct {
	mu      sync.Mutex
	cfg     Config
	records map[Key]*record
	total   int64
	now     func() time.Time
	logger  *zap.Logger
}

// New creates an empty store with the given budget.
func New(cfg Config, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		cfg:     cfg,
		records: make(map[Key]*record),
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterLazy declares a resource backed by an archive entry without reading it.
// Any previous record under the key is replaced and its buffer released.
func (s *Store) RegisterLazy(key Key, src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaceLocked(&record{
		key:     key,
		kind:    KindFromName(string(key)),
		origin:  src.Name(),
		backing: lazyState{src: src},
	})
}

// RegisterPinned installs content that is never evicted.
// The bytes are copied; the caller keeps ownership of data.
func (s *Store) RegisterPinned(key Key, kind Kind, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.installPinnedLocked(key, Write{Kind: kind, Origin: OriginMemory, Data: data})
}

// Commit applies a set of removals and pinned installs as one step.
// Readers observe either none or all of the changes.
func (s *Store) Commit(writes map[Key]Write, deletes []Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range deletes {
		s.removeLocked(key)
	}
	for key, w := range writes {
		s.installPinnedLocked(key, w)
	}
}

func (s *Store) installPinnedLocked(key Key, w Write) {
	buf := make([]byte, len(w.Data))
	copy(buf, w.Data)
	origin := w.Origin
	if origin == "" {
		origin = OriginMemory
	}
	s.replaceLocked(&record{
		key:     key,
		kind:    w.Kind,
		origin:  origin,
		backing: pinnedState{buf: buf},
	})
}

func (s *Store) replaceLocked(rec *record) {
	if old, ok := s.records[rec.key]; ok {
		s.total -= old.owned()
	}
	rec.lastAccess = s.now()
	s.records[rec.key] = rec
	s.total += rec.owned()
}

// Contains reports whether a record exists for key.
func (s *Store) Contains(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.records[key]
	return ok
}

// Fetch returns a private copy of the resource, reading it from its archive on first use.
// Unknown keys and archive read failures are logged and reported as absent.
func (s *Store) Fetch(key Key) (Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		s.logger.Debug("Resource not found", zap.String("key", key.String()))
		return Resource{}, false
	}

	var (
		buf          []byte
		materialized bool
	)
	switch b := rec.backing.(type) {
	case lazyState:
		data, err := b.src.Read()
		if err != nil {
			s.logger.Warn("Failed to materialize resource",
				zap.String("key", key.String()),
				zap.String("archive", b.src.Name()),
				zap.Error(err))
			return Resource{}, false
		}
		rec.backing = materialState{src: b.src, buf: data}
		s.total += int64(len(data))
		buf = data
		materialized = true
	case materialState:
		buf = b.buf
	case pinnedState:
		buf = b.buf
	}

	rec.lastAccess = s.now()
	res := Resource{
		Key:    rec.key,
		Kind:   rec.kind,
		Origin: rec.origin,
		Data:   append([]byte{}, buf...),
	}

	if materialized {
		s.evictLocked()
	}
	return res, true
}

// Describe returns metadata about a record.
func (s *Store) Describe(key Key) (Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return Info{}, false
	}
	return Info{
		Key:        rec.key,
		Kind:       rec.kind.String(),
		Origin:     rec.origin,
		State:      rec.backing.state(),
		Size:       rec.owned(),
		Refs:       rec.refs.Load(),
		LastAccess: rec.lastAccess,
	}, true
}

// Acquire increments the reference count of key, protecting it from eviction.
func (s *Store) Acquire(key Key) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return 0, false
	}
	return rec.refs.Add(1), true
}

// Release decrements the reference count of key. The count never drops below zero.
func (s *Store) Release(key Key) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return 0, false
	}
	return saturatingDecrement(&rec.refs), true
}

func saturatingDecrement(v *atomic.Int64) int64 {
	for {
		cur := v.Load()
		if cur <= 0 {
			return 0
		}
		if v.CompareAndSwap(cur, cur-1) {
			return cur - 1
		}
	}
}

// Remove drops a record and frees its buffer regardless of its reference count.
func (s *Store) Remove(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeLocked(key)
}

func (s *Store) removeLocked(key Key) bool {
	rec, ok := s.records[key]
	if !ok {
		return false
	}
	s.total -= rec.owned()
	delete(s.records, key)
	return true
}

// Keys lists every registered key in lexical order.
func (s *Store) Keys() []Key {
	s.mu.Lock()
	keys := make([]Key, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	s.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Stats reports record counts and owned bytes.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Records: len(s.records), TotalBytes: s.total}
	for _, rec := range s.records {
		switch rec.backing.(type) {
		case lazyState:
			st.Lazy++
		case materialState:
			st.Materialized++
		case pinnedState:
			st.Pinned++
		}
	}
	return st
}

// Sibling returns an empty store sharing this store's budget, clock and logger.
func (s *Store) Sibling() *Store {
	return &Store{
		cfg:     s.cfg,
		records: make(map[Key]*record),
		now:     s.now,
		logger:  s.logger,
	}
}

// Replace takes over every record of next in one step and leaves next empty. Pinned records
// installed through RegisterPinned are kept and shadow next's record under the same key.
func (s *Store) Replace(next *Store) {
	if next == s {
		return
	}
	next.mu.Lock()
	records, total := next.records, next.total
	next.records = make(map[Key]*record)
	next.total = 0
	next.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, rec := range s.records {
		if rec.origin != OriginMemory {
			continue
		}
		if shadowed, ok := records[key]; ok {
			total -= shadowed.owned()
		}
		records[key] = rec
		total += rec.owned()
	}
	s.records = records
	s.total = total
	s.evictLocked()
}

// Reset drops every record.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[Key]*record)
	s.total = 0
}

// evictLocked reverts idle materialised records to lazy once the high watermark is exceeded.
func (s *Store) evictLocked() {
	if s.cfg.MaxMemoryBytes <= 0 || s.total <= s.cfg.MaxMemoryBytes {
		return
	}

	var candidates []*record
	for _, rec := range s.records {
		if _, ok := rec.backing.(materialState); ok && rec.refs.Load() == 0 {
			candidates = append(candidates, rec)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].lastAccess.Equal(candidates[j].lastAccess) {
			return candidates[i].lastAccess.Before(candidates[j].lastAccess)
		}
		return candidates[i].key < candidates[j].key
	})

	now := s.now()
	target := s.cfg.Target()
	before := s.total
	evicted := 0
	for _, rec := range candidates {
		stale := s.cfg.StaleTimeout > 0 && now.Sub(rec.lastAccess) > s.cfg.StaleTimeout
		if s.total <= target && !stale {
			break
		}
		b := rec.backing.(materialState)
		rec.backing = lazyState{src: b.src}
		s.total -= int64(len(b.buf))
		evicted++
	}

	if s.total > target {
		s.logger.Debug("Memory budget still exceeded after eviction",
			zap.Int64("total_bytes", s.total),
			zap.Int64("target_bytes", target))
	}
	if evicted > 0 {
		s.logger.Debug("Evicted resources",
			zap.Int("count", evicted),
			zap.Int64("freed_bytes", before-s.total))
	}
}

